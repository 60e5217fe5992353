package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Multiverse-io/anonymiser-sub000/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			fmt.Printf("pg-anonymise %s (commit %s, built %s)\n", info.Version, info.GitCommit, info.BuildDate)
			return nil
		},
	}
}
