package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tracekit/estrace/config"
	"github.com/tracekit/estrace/config/serialize"
	"github.com/tracekit/estrace/misc/fsutil"
)

func newConfigCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the estrace configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(root))
	cmd.AddCommand(newConfigShowCommand(root))
	return cmd
}

func newConfigInitCommand(root *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Write a configuration file with the default settings",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename, err := config.Filename("", root.configFile)
			if err != nil {
				return err
			}
			if err := fsutil.DirWritable(filepath.Dir(filename)); err != nil {
				return err
			}
			if !force && fsutil.FileExists(filename) {
				return fmt.Errorf("%s already exists, use --force to overwrite", filename)
			}
			if err := serialize.WriteConfigFile(filename, defaultConfig()); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", filename)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")
	return cmd
}

func newConfigShowCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "show",
		Short:        "Print the effective configuration",
		Long:         "Print the configuration file with the ESTRACE_* environment overrides applied.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			out, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

// defaultConfig spells out the defaults so the written file documents them.
func defaultConfig() *config.Config {
	return &config.Config{
		Elasticsearch: config.Elasticsearch{
			Service:             config.NewOptionalString(config.DefaultElasticsearchService),
			AnalyticsSampleRate: config.NewOptionalFloat(config.DefaultAnalyticsSampleRate),
		},
	}
}

func loadConfig(root *rootOptions) (*config.Config, error) {
	filename, err := config.Filename("", root.configFile)
	if err != nil {
		return nil, err
	}
	cfg, err := serialize.LoadOrDefault(filename)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filename, err)
	}
	return cfg, nil
}
