// Package export serialises reporting aggregates into deliverable payloads:
// CSV attachments and a printable tabular document rendered to PDF. Both
// paths consume the same Table built by the shared builders, so rows and
// column order always match between formats.
package export

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/toko-ops/toko-ops/internal/reporting"
)

// ErrNothingToExport signals an export request over an empty data set. It is
// a no-op for the caller to report, not a failure.
var ErrNothingToExport = errors.New("nothing to export")

// Table is the single tabular shape both serialisation paths consume.
type Table struct {
	Header []string
	Rows   [][]string
}

// SalesTable shapes a sales series for export.
func SalesTable(buckets []reporting.AggregateBucket) Table {
	t := Table{Header: []string{"Bucket", "Label", "Total Sales", "Units Sold"}}
	for _, b := range buckets {
		t.Rows = append(t.Rows, []string{
			b.Key,
			b.Label,
			formatFloat(b.TotalSales),
			strconv.Itoa(b.UnitsSold),
		})
	}
	return t
}

// ProfitTable shapes a profit report for export, one row per product plus a
// trailing grand-total row.
func ProfitTable(report reporting.ProfitReport) Table {
	t := Table{Header: []string{"Product", "Today", "Last 7 Days", "This Month", "All Time"}}
	for _, p := range report.PerProduct {
		t.Rows = append(t.Rows, []string{
			p.Label,
			formatFloat(p.Totals.Daily),
			formatFloat(p.Totals.Weekly),
			formatFloat(p.Totals.Monthly),
			formatFloat(p.Totals.Total),
		})
	}
	if len(report.PerProduct) > 0 {
		t.Rows = append(t.Rows, []string{
			"TOTAL",
			formatFloat(report.Totals.Daily),
			formatFloat(report.Totals.Weekly),
			formatFloat(report.Totals.Monthly),
			formatFloat(report.Totals.Total),
		})
	}
	return t
}

// FormatAmount renders a monetary value the way every export column does.
func FormatAmount(v float64) string {
	return formatFloat(v)
}

// WriteCSV emits the table as CSV. Every field is wrapped in double quotes
// with embedded quotes doubled, which keeps the output byte-stable across
// runs regardless of field content.
func WriteCSV(w io.Writer, t Table) error {
	if len(t.Rows) == 0 {
		return ErrNothingToExport
	}
	var b strings.Builder
	writeCSVRow(&b, t.Header)
	for _, row := range t.Rows {
		writeCSVRow(&b, row)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
