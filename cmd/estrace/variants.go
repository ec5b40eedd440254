package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tracekit/estrace/contrib/elasticsearch"
)

func newVariantsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the go-elasticsearch client variants",
		Long: `List the known go-elasticsearch client variants, the version linked into
this binary and the transport class each one performs through.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			ctl, err := elasticsearch.NewController(elasticsearch.WithConfig(cfg))
			if err != nil {
				if ctl == nil {
					return err
				}
				log.Warnf("some variants were skipped: %s", err)
			}
			return printVariants(cmd, cfg.Variants.IsDisabled, ctl)
		},
	}
}

func printVariants(cmd *cobra.Command, disabled func(string) bool, ctl *elasticsearch.Controller) error {
	resolved := make(map[string]elasticsearch.Variant)
	for _, v := range ctl.Variants() {
		resolved[v.Name()] = v
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODULE\tVERSION\tCLASS")
	for _, l := range elasticsearch.Builtins {
		module := "-"
		if ml, ok := l.(elasticsearch.ModuleLoader); ok {
			module = ml.ModulePath
		}
		ver, class := "-", "-"
		if v, ok := resolved[l.Name()]; ok {
			ver = v.Version().String()
			if c, err := ctl.TransportClass(l.Name()); err == nil {
				class = c.Name()
			}
		} else if disabled(l.Name()) {
			ver = "disabled"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.Name(), module, ver, class)
	}
	return w.Flush()
}
