package payroll

import "math"

const (
	workdayHours      = 8.0
	defaultMultiplier = 1.5
)

// dailyRateByRole is the fixed role compensation table the finance console
// derives default hourly rates from (IDR per day, divided by the 8-hour
// workday).
var dailyRateByRole = map[string]float64{
	"owner":   400000,
	"manager": 320000,
	"cashier": 240000,
	"staff":   200000,
}

// DefaultHourlyRate returns the role's default hourly rate. Unknown roles
// fall back to the staff rate.
func DefaultHourlyRate(role string) float64 {
	daily, ok := dailyRateByRole[role]
	if !ok {
		daily = dailyRateByRole["staff"]
	}
	return daily / workdayHours
}

// Project derives payroll rows from an attendance summary and the working
// session's overrides. Paid hours weight a full day at 8h, a late day at 6h
// and approved leave at 4h; absences earn nothing. All monetary outputs are
// rounded to 2 decimals at this boundary, after accumulation.
func Project(summary AttendanceSummary, overrides map[string]Override) ([]Row, Totals) {
	rows := make([]Row, 0, len(summary.Users))
	var totals Totals
	for _, emp := range summary.Users {
		row := projectRow(emp, overrides[emp.UserID])
		totals.RegularHours += row.RegularHours
		totals.RegularPay += row.RegularPay
		totals.OvertimePay += row.OvertimePay
		totals.Bonus += row.Bonus
		totals.Deductions += row.Deductions
		totals.GrossPay += row.GrossPay
		totals.NetPay += row.NetPay
		rows = append(rows, row)
	}
	totals.RegularHours = round2(totals.RegularHours)
	totals.RegularPay = round2(totals.RegularPay)
	totals.OvertimePay = round2(totals.OvertimePay)
	totals.Bonus = round2(totals.Bonus)
	totals.Deductions = round2(totals.Deductions)
	totals.GrossPay = round2(totals.GrossPay)
	totals.NetPay = round2(totals.NetPay)
	return rows, totals
}

func projectRow(emp Employee, ov Override) Row {
	row := Row{
		UserID:             emp.UserID,
		Name:               emp.Name,
		Role:               emp.Role,
		Counts:             emp.Counts,
		HourlyRate:         DefaultHourlyRate(emp.Role),
		OvertimeMultiplier: defaultMultiplier,
	}
	if ov.HourlyRate != nil {
		row.HourlyRate = clampNonNegative(*ov.HourlyRate)
	}
	if ov.OvertimeHours != nil {
		row.OvertimeHours = clampNonNegative(*ov.OvertimeHours)
	}
	if ov.OvertimeMultiplier != nil && *ov.OvertimeMultiplier > 0 {
		row.OvertimeMultiplier = *ov.OvertimeMultiplier
	}
	if ov.Bonus != nil {
		row.Bonus = *ov.Bonus
	}
	if ov.Deductions != nil {
		row.Deductions = clampNonNegative(*ov.Deductions)
	}

	row.RegularHours = round2(float64(emp.Counts.Present)*workdayHours +
		float64(emp.Counts.Late)*workdayHours*0.75 +
		float64(emp.Counts.Leave)*workdayHours*0.5)

	// Components are rounded first and gross/net derived from the rounded
	// values, so netPay == regularPay + overtimePay + bonus - deductions
	// holds to the cent on the exposed numbers.
	row.RegularPay = round2(row.RegularHours * row.HourlyRate)
	row.OvertimePay = round2(row.OvertimeHours * row.HourlyRate * row.OvertimeMultiplier)
	row.Bonus = round2(row.Bonus)
	row.Deductions = round2(row.Deductions)
	row.GrossPay = round2(row.RegularPay + row.OvertimePay + row.Bonus)
	row.NetPay = round2(row.GrossPay - row.Deductions)
	row.HourlyRate = round2(row.HourlyRate)
	return row
}

func clampNonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
