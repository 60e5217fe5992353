package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Multiverse-io/anonymiser-sub000/internal/csvexport"
	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

func newToCsvCmd() *cobra.Command {
	var (
		strategyFile string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "to-csv",
		Short: "Emit a PII inventory CSV from the strategy file",
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := strategy.Read(strategyFile)
			if err != nil {
				return err
			}

			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file %q: %w", outputFile, err)
			}
			defer f.Close()

			return csvexport.Write(f, tables)
		},
	}

	cmd.Flags().StringVar(&strategyFile, "strategy-file", "./strategy.json", "Path to the strategy JSON file")
	cmd.Flags().StringVar(&outputFile, "output-file", "./output.csv", "Path to write the PII inventory CSV")

	return cmd
}
