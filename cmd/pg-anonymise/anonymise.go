package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Multiverse-io/anonymiser-sub000/internal/dump"
	"github.com/Multiverse-io/anonymiser-sub000/internal/report"
	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
	"github.com/Multiverse-io/anonymiser-sub000/internal/stream"
)

func newAnonymiseCmd() *cobra.Command {
	var (
		inputFile                  string
		outputFile                 string
		strategyFile               string
		compressOutput             string
		allowPotentialPii          bool
		allowCommerciallySensitive bool
		salt                       string
		progressInterval           int
	)

	cmd := &cobra.Command{
		Use:   "anonymise",
		Short: "Stream a dump through the anonymisation policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if salt == "" {
				salt = viper.GetString("salt")
			}

			tables, err := strategy.Read(strategyFile)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("strategy file '%s' does not exist", strategyFile)
				}
				return err
			}

			overrides := strategy.TransformerOverrides{
				AllowPotentialPii:          allowPotentialPii,
				AllowCommerciallySensitive: allowCommerciallySensitive,
			}
			strategies, err := strategy.Build(tables, overrides)
			if err != nil {
				var ve *strategy.ValidationErrors
				if errors.As(err, &ve) {
					fmt.Fprintln(cmd.ErrOrStderr(), report.ValidationErrors(ve))
				}
				return err
			}

			in, closeIn, err := stream.OpenInput(inputFile, stream.None)
			if err != nil {
				return err
			}
			defer closeIn()

			codec := stream.Codec(compressOutput)
			switch codec {
			case stream.None, stream.Zstd, stream.Gzip:
			default:
				return fmt.Errorf("unsupported --compress-output codec %q (want zstd or gzip)", compressOutput)
			}
			if codec == stream.None {
				codec = stream.CodecForFile(outputFile)
			}
			out, err := stream.OpenOutput(outputFile, codec)
			if err != nil {
				return err
			}
			defer out.Close()

			machine := dump.NewMachine(strategies, salt)
			stats, err := stream.Run(in, out, machine, progressInterval, func(s stream.Stats) {
				elapsed := time.Since(s.StartTime)
				log.Printf("processed %d lines, %d rows rewritten (%.0f lines/sec)", s.LinesRead, s.RowsRewritten, float64(s.LinesRead)/elapsed.Seconds())
			})
			if err != nil {
				return err
			}
			logFinalStatistics(stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputFile, "input-file", "./clear_text_dump.sql", "Path to the input dump")
	cmd.Flags().StringVar(&outputFile, "output-file", "./output.sql", "Path to write the anonymised dump")
	cmd.Flags().StringVar(&strategyFile, "strategy-file", "./strategy.json", "Path to the strategy JSON file")
	cmd.Flags().StringVar(&compressOutput, "compress-output", "", "Compress output with zstd or gzip")
	cmd.Flags().BoolVar(&allowPotentialPii, "allow-potential-pii", false, "Do not transform PotentialPii data types")
	cmd.Flags().BoolVar(&allowCommerciallySensitive, "allow-commercially-sensitive", false, "Do not transform CommerciallySensitive data types")
	cmd.Flags().StringVar(&salt, "salt", "", "Salt for deterministic transformers (env ANONYMISER_SALT)")
	cmd.Flags().IntVar(&progressInterval, "progress-interval", 100000, "Log progress every N lines")

	return cmd
}

// logFinalStatistics logs the completed run's summary, in the same vein as
// the teacher's bootstrap Statistics report: duration, counts, and the
// distinct tables seen.
func logFinalStatistics(stats stream.Stats) {
	log.Println("anonymise completed")
	log.Printf("duration: %v", stats.Duration())
	log.Printf("lines read: %d", stats.LinesRead)
	log.Printf("rows rewritten: %d", stats.RowsRewritten)
	log.Printf("tables processed: %d (%v)", len(stats.TablesProcessed), stats.TablesProcessed)
	if stats.RowsRewritten > 0 && stats.Duration().Seconds() > 0 {
		log.Printf("average rate: %.1f rows/sec", float64(stats.RowsRewritten)/stats.Duration().Seconds())
	}
}
