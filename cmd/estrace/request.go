package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/blang/semver/v4"
	elasticsearch8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	version "github.com/tracekit/estrace"
	"github.com/tracekit/estrace/contrib/elasticsearch"
	"github.com/tracekit/estrace/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const opaqueIDHeader = "X-Opaque-Id"

// clientVariant is the variant of the client this command is linked with.
const clientVariant = "elasticsearch8"

type requestOptions struct {
	root         *rootOptions
	addr         string
	body         string
	repeat       int
	concurrency  int
	printMetrics bool
}

func newRequestCommand(root *rootOptions) *cobra.Command {
	opts := &requestOptions{root: root}

	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send a traced request to the cluster",
		Long: `Send a request through a traced transport and print the response.

The request is performed by the go-elasticsearch client of the chosen variant.
Each request carries a fresh X-Opaque-Id so it can be matched with the slow
log of the cluster.`,
		Example: `  # Create an index
  estrace request PUT /my_index

  # Search it, 10 times over 4 connections
  estrace request GET '/my_index/_search?size=100' \
    --body '{"query":{"match_all":{}}}' --repeat 10 --concurrency 4`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, opts, strings.ToUpper(args[0]), args[1])
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "http://localhost:9200", "Address of the cluster")
	cmd.Flags().StringVarP(&opts.body, "body", "d", "", "Request body")
	cmd.Flags().IntVarP(&opts.repeat, "repeat", "n", 1, "Number of requests to send")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 1, "Maximum number of requests in flight")
	cmd.Flags().BoolVar(&opts.printMetrics, "print-metrics", false, "Print the request metrics when done")

	return cmd
}

func runRequest(cmd *cobra.Command, opts *requestOptions, method, path string) (err error) {
	if opts.repeat < 1 || opts.concurrency < 1 {
		return fmt.Errorf("--repeat and --concurrency must be positive")
	}
	ctx := cmd.Context()

	tp, err := tracing.Init(ctx)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		if serr := tp.Shutdown(context.WithoutCancel(ctx)); serr != nil && err == nil {
			err = fmt.Errorf("flushing spans: %w", serr)
		}
	}()

	cfg, err := loadConfig(opts.root)
	if err != nil {
		return err
	}
	clientVersion, err := semver.ParseTolerant(elasticsearch8.Version)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	ctl, err := elasticsearch.NewController(
		elasticsearch.WithConfig(cfg),
		elasticsearch.WithMetrics(reg),
		elasticsearch.WithoutBuiltins(),
		elasticsearch.WithVariants(elasticsearch.NewVariant(clientVariant, clientVersion)),
	)
	if err != nil {
		return err
	}
	ctl.Patch()
	defer ctl.Unpatch()

	tr, err := ctl.Transport(clientVariant, nil)
	if err != nil {
		return err
	}
	elasticsearch.NewPin(nil).Onto(tr)

	es, err := elasticsearch8.NewClient(elasticsearch8.Config{
		Addresses: []string{opts.addr},
		Transport: tr,
		Header:    http.Header{"User-Agent": {version.GetVersionInfo().UserAgent()}},
	})
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	var mu sync.Mutex
	out := cmd.OutOrStdout()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for i := 0; i < opts.repeat; i++ {
		g.Go(func() error {
			status, id, body, err := send(gctx, es, method, path, opts.body)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(out, "%d %s %s\n", status, http.StatusText(status), id)
			if opts.repeat == 1 {
				fmt.Fprintln(out, string(body))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if !opts.printMetrics {
		return nil
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	return printMetrics(out, families)
}

func send(ctx context.Context, es *elasticsearch8.Client, method, path, body string) (int, string, []byte, error) {
	ctx, span := tracing.Span(ctx, "estrace", "request")
	defer span.End()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, path, r)
	if err != nil {
		return 0, "", nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	id := uuid.New().String()
	req.Header.Set(opaqueIDHeader, id)

	span.SetAttributes(attribute.String("estrace.opaque_id", id))

	res, err := es.Perform(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, id, nil, fmt.Errorf("request %s: %w", id, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, id, nil, fmt.Errorf("request %s: reading response: %w", id, err)
	}
	return res.StatusCode, id, b, nil
}

func printMetrics(w io.Writer, families []*dto.MetricFamily) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
