package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Multiverse-io/anonymiser-sub000/internal/dbschema"
	"github.com/Multiverse-io/anonymiser-sub000/internal/fixer"
	"github.com/Multiverse-io/anonymiser-sub000/internal/report"
	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

func newCheckStrategiesCmd() *cobra.Command {
	var (
		strategyFile string
		fix          bool
		dbURL        string
	)

	cmd := &cobra.Command{
		Use:   "check-strategies",
		Short: "Validate the strategy file against a live database",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if dbURL == "" {
				dbURL = viper.GetString("db-url")
			}
			if dbURL == "" {
				return fmt.Errorf("--db-url is required (or set DATABASE_URL)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := strategy.Read(strategyFile)
			if err != nil {
				return err
			}

			dbColumns, err := dbschema.Columns(dbURL)
			if err != nil {
				return err
			}

			if fix {
				// Fixing works on the raw file form, before validation: a
				// freshly generated skeleton full of Unknown/Error
				// placeholders must still be fixable. Even a clean diff gets
				// deduped and re-sorted so a second run is byte-identical.
				fixed := fixer.Fix(tables, dbColumns)
				if err := strategy.Write(strategyFile, fixed); err != nil {
					return err
				}
				fmt.Printf("fixed strategy file written to %s\n", strategyFile)
				return nil
			}

			strategies, err := strategy.Build(tables, strategy.TransformerOverrides{})
			if err != nil {
				var ve *strategy.ValidationErrors
				if errors.As(err, &ve) {
					fmt.Fprintln(cmd.ErrOrStderr(), report.ValidationErrors(ve))
				}
				return err
			}

			dbErrs := strategy.ValidateAgainstDb(strategies, dbColumns)
			fmt.Println(report.DbErrors(dbErrs))
			if dbErrs.IsEmpty() {
				return nil
			}
			return dbErrs
		},
	}

	cmd.Flags().StringVar(&strategyFile, "strategy-file", "./strategy.json", "Path to the strategy JSON file")
	cmd.Flags().BoolVar(&fix, "fix", false, "Rewrite the strategy file to match the database")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "Database connection URL (env DATABASE_URL)")

	return cmd
}
