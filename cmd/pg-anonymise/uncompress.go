package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Multiverse-io/anonymiser-sub000/internal/stream"
)

func newUncompressCmd() *cobra.Command {
	var (
		inputFile  string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "uncompress",
		Short: "Decompress a zstd-compressed dump to stdout or a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("failed to create output file %q: %w", outputFile, err)
				}
				defer f.Close()
				w = f
			}
			return stream.Uncompress(inputFile, w)
		},
	}

	cmd.Flags().StringVar(&inputFile, "input-file", "", "Path to the zstd-compressed input file")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "Path to write decompressed output (defaults to stdout)")
	cmd.MarkFlagRequired("input-file")

	return cmd
}
