package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Multiverse-io/anonymiser-sub000/internal/dbschema"
	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

func newGenerateStrategiesCmd() *cobra.Command {
	var (
		strategyFile string
		dbURL        string
	)

	cmd := &cobra.Command{
		Use:   "generate-strategies",
		Short: "Emit a skeleton strategy file from a live database's schema",
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
			tablesByName, err := dbschema.Tables(dbURL)
			if err != nil {
				return err
			}

			tableNames := make([]string, 0, len(tablesByName))
			for name := range tablesByName {
				tableNames = append(tableNames, name)
			}
			sort.Strings(tableNames)

			var tables []strategy.TablePolicy
			for _, name := range tableNames {
				columns := tablesByName[name]
				sort.Strings(columns)
				cols := make([]strategy.ColumnPolicy, len(columns))
				for i, c := range columns {
					cols[i] = strategy.ColumnPolicy{
						Name:         c,
						DataCategory: strategy.Unknown,
						Transformer:  strategy.Transformer{Kind: strategy.Error},
					}
				}
				tables = append(tables, strategy.TablePolicy{TableName: name, Columns: cols})
			}

			if err := strategy.Write(strategyFile, tables); err != nil {
				return err
			}
			fmt.Printf("generated strategy skeleton for %d tables at %s\n", len(tables), strategyFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategyFile, "strategy-file", "./strategy.json", "Path to write the generated strategy JSON file")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "Database connection URL (env DATABASE_URL)")

	return cmd
}
