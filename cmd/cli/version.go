package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/storygen/internal/buildinfo"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "storygen version %s\n", buildinfo.Version())
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
