package elasticsearch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tracekit/estrace/config"
	"github.com/tracekit/estrace/ext"
)

// queryOperation is the name of every span the interceptor opens.
const queryOperation = "elasticsearch.query"

// intercept wraps the original request method of a class with tracing.
func (c *Controller) intercept(next PerformFunc) PerformFunc {
	return func(t *Transport, req *http.Request) (*http.Response, error) {
		pin := t.pinned()
		if !pin.Enabled() {
			return next(t, req)
		}

		ctx, s := startSpan(req.Context(), pin.tracer, queryOperation, c.serviceName(pin), ext.SpanTypeElasticsearch)
		defer s.Finish()
		s.SetMetric(ext.Measured, 1)

		v := t.variant
		out := req.WithContext(ctx)
		if !s.Sampled() {
			resp, err := next(t, out)
			c.metrics.request(v.Name(), req.Method, err)
			return resp, err
		}

		modern := isModern(v)
		var (
			path   string
			params url.Values
		)
		if modern {
			path, params = parseURLParams(req.URL.RequestURI())
		} else {
			path, params = legacyParams(req.URL)
		}
		encoded := encodeParams(params)
		s.SetTag(ext.ElasticsearchMethod, req.Method)
		s.SetTag(ext.ElasticsearchURL, path)
		s.SetTag(ext.ElasticsearchParams, encoded)
		if c.cfg.Elasticsearch.TraceQueryString.WithDefault(config.DefaultTraceQueryString) {
			s.SetTag(ext.HTTPQueryString, encoded)
		}

		if req.Method == http.MethodGet || req.Method == http.MethodPost {
			body, err := readBody(out)
			if err != nil {
				closeBody(req)
				err = fmt.Errorf("reading request body: %w", err)
				s.SetError(err)
				return nil, err
			}
			if err := tagBody(s, v.Serializer(t), body); err != nil {
				if !c.cfg.Elasticsearch.SoftFailBody.WithDefault(config.DefaultSoftFailBody) {
					closeBody(req)
					s.SetError(err)
					return nil, err
				}
				log.Debugf("not tagging request body: %s", err)
			}
		}

		if rate, ok := c.cfg.Elasticsearch.AnalyticsRate(); ok {
			s.SetMetric(ext.AnalyticsSampleRate, rate)
		}
		s = quantize(s)

		resp, err := next(t, out)
		if err != nil {
			c.metrics.request(v.Name(), req.Method, err)
			s.SetTag(ext.HTTPStatusCode, strconv.Itoa(statusCodeOf(err)))
			s.SetError(err)
			return resp, err
		}
		// pre-8 clients report error responses as transport errors
		if !modern && resp != nil && resp.StatusCode >= http.StatusBadRequest {
			herr := fmt.Errorf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
			c.metrics.request(v.Name(), req.Method, herr)
			s.SetTag(ext.HTTPStatusCode, strconv.Itoa(resp.StatusCode))
			s.SetError(herr)
			return resp, nil
		}
		c.metrics.request(v.Name(), req.Method, nil)

		if !isJSON(resp) {
			return resp, nil
		}
		raw, complete, rerr := peekBody(resp)
		if rerr != nil {
			log.Debugf("reading result body: %s", rerr)
			return resp, nil
		}
		info, ierr := inspectResult(raw, modern, complete)
		if ierr != nil {
			log.Debugf("inspecting result: %s", ierr)
		}
		if info.HasTook {
			s.SetMetric(ext.ElasticsearchTook, float64(info.Took))
			c.metrics.observeTook(v.Name(), info.Took)
		}
		if info.Status != 0 {
			s.SetTag(ext.HTTPStatusCode, strconv.Itoa(info.Status))
		}
		return resp, nil
	}
}

// serviceName resolves the span service: the pin override, else the
// configured one, renamed through the service mapping.
func (c *Controller) serviceName(p *Pin) string {
	es := &c.cfg.Elasticsearch
	if p.Service == "" {
		return es.ServiceName()
	}
	if mapped, ok := es.ServiceMapping[p.Service]; ok && mapped != "" {
		return mapped
	}
	return p.Service
}

// statusCodeOf returns the status code carried by err, 500 when it has none.
func statusCodeOf(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// tagBody sets the body tag of s from the serialized request body.
func tagBody(s *span, ser Serializer, body []byte) error {
	if body == nil {
		return nil
	}
	text, err := ser.Dumps(body)
	if err != nil {
		return err
	}
	s.SetTag(ext.ElasticsearchBody, text)
	return nil
}

// readBody returns the request body and makes it readable again.
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return body, nil
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}

// maxResultPeek bounds how much of a result is read ahead of the caller.
// Elasticsearch writes took first, so a prefix is enough.
const maxResultPeek = 64 << 10

// isJSON reports whether resp carries a JSON result.
func isJSON(resp *http.Response) bool {
	if resp == nil {
		return false
	}
	mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// peekBody reads at most maxResultPeek bytes of the response body and puts
// them back in front of the unread rest. complete is set when the whole body
// fit. On a read error the replacement yields the bytes read, then the same
// error.
func peekBody(resp *http.Response) (prefix []byte, complete bool, err error) {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, true, nil
	}
	orig := resp.Body
	prefix, err = io.ReadAll(io.LimitReader(orig, maxResultPeek+1))
	if err != nil {
		resp.Body = readCloser{io.MultiReader(bytes.NewReader(prefix), errReader{err}), orig}
		return nil, false, err
	}
	resp.Body = readCloser{io.MultiReader(bytes.NewReader(prefix), orig), orig}
	return prefix, len(prefix) <= maxResultPeek, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
