// Command pg-anonymise streams a PostgreSQL text dump through an
// anonymisation policy, producing an equivalent dump with designated
// columns replaced by generated values.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Multiverse-io/anonymiser-sub000/internal/dump"
	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps the error taxonomy to the CLI's exit codes: validation
// failures exit 1, stream/IO failures exit 2.
func exitCodeFor(err error) int {
	var validationErr *strategy.ValidationErrors
	var dbErr *strategy.DbErrors
	if errors.As(err, &validationErr) || errors.As(err, &dbErr) {
		return 1
	}
	var streamErr *dump.StreamError
	if errors.As(err, &streamErr) {
		return 2
	}
	return 2
}
