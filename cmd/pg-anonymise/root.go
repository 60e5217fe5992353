package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRootCmd wires up the subcommand tree and binds DATABASE_URL /
// ANONYMISER_SALT via viper so either flag or environment can supply them.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pg-anonymise",
		Short: "Anonymise PostgreSQL text dumps",
		Long: `pg-anonymise streams a PostgreSQL text-format dump through an
anonymisation policy, replacing designated columns of designated tables
with generated values while preserving the surrounding SQL structure.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	viper.SetEnvPrefix("ANONYMISER")
	viper.AutomaticEnv()
	viper.BindEnv("db-url", "DATABASE_URL")
	viper.BindEnv("salt", "ANONYMISER_SALT")

	root.AddCommand(
		newAnonymiseCmd(),
		newCheckStrategiesCmd(),
		newGenerateStrategiesCmd(),
		newToCsvCmd(),
		newUncompressCmd(),
		newVersionCmd(),
	)
	return root
}
