package main

import (
	"fmt"

	"github.com/spf13/cobra"
	version "github.com/tracekit/estrace"
)

func newVersionCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show estrace version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetVersionInfo()
			w := cmd.OutOrStdout()
			if !all {
				fmt.Fprintf(w, "estrace version %s\n", info.Version)
				return nil
			}
			fmt.Fprintf(w, "estrace version: %s\n", info.Version)
			fmt.Fprintf(w, "Commit: %s\n", info.Commit)
			fmt.Fprintf(w, "System version: %s\n", info.System)
			fmt.Fprintf(w, "Golang version: %s\n", info.Golang)
			fmt.Fprintf(w, "User agent: %s\n", info.UserAgent())
			for _, c := range info.Clients {
				fmt.Fprintf(w, "Client: %s %s\n", c.Path, c.Version)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Show all version information")
	return cmd
}
