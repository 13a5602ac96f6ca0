package payroll

import (
	"strconv"

	"github.com/toko-ops/toko-ops/internal/reporting/export"
)

// ExportTable shapes payroll rows plus the aggregate row for the CSV and
// printable export paths.
func ExportTable(rows []Row, totals Totals) export.Table {
	t := export.Table{Header: []string{
		"Employee", "Role", "Present", "Late", "Absent", "Leave",
		"Regular Hours", "Regular Pay", "Overtime Pay", "Bonus", "Deductions", "Net Pay",
	}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Name,
			r.Role,
			strconv.Itoa(r.Counts.Present),
			strconv.Itoa(r.Counts.Late),
			strconv.Itoa(r.Counts.Absent),
			strconv.Itoa(r.Counts.Leave),
			export.FormatAmount(r.RegularHours),
			export.FormatAmount(r.RegularPay),
			export.FormatAmount(r.OvertimePay),
			export.FormatAmount(r.Bonus),
			export.FormatAmount(r.Deductions),
			export.FormatAmount(r.NetPay),
		})
	}
	if len(rows) > 0 {
		t.Rows = append(t.Rows, []string{
			"TOTAL", "", "", "", "", "",
			export.FormatAmount(totals.RegularHours),
			export.FormatAmount(totals.RegularPay),
			export.FormatAmount(totals.OvertimePay),
			export.FormatAmount(totals.Bonus),
			export.FormatAmount(totals.Deductions),
			export.FormatAmount(totals.NetPay),
		})
	}
	return t
}
