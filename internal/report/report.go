// Package report renders validation and DB-diff aggregates for the
// terminal, styled with lipgloss the way nethalo-dbsafe/internal/output
// renders its reports.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Multiverse-io/anonymiser-sub000/internal/strategy"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// ValidationErrors renders a *strategy.ValidationErrors as a styled,
// human-readable report.
func ValidationErrors(errs *strategy.ValidationErrors) string {
	if errs.IsEmpty() {
		return okStyle.Render("strategy file is valid")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Strategy file validation failed"))
	b.WriteString("\n")
	for _, line := range strings.Split(errs.Error(), "\n") {
		fmt.Fprintf(&b, "  %s\n", errStyle.Render(line))
	}
	return strings.TrimRight(b.String(), "\n")
}

// DbErrors renders a *strategy.DbErrors as a styled, human-readable
// report of the two-way diff against a live database.
func DbErrors(errs *strategy.DbErrors) string {
	if errs.IsEmpty() {
		return okStyle.Render("strategy file matches the database schema")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Strategy file does not match the database schema"))
	b.WriteString("\n")
	for _, line := range strings.Split(errs.Error(), "\n") {
		fmt.Fprintf(&b, "  %s\n", errStyle.Render(line))
	}
	return strings.TrimRight(b.String(), "\n")
}
