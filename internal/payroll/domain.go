// Package payroll projects attendance counts into payroll rows for the
// finance console. The projection is derived state: it is recomputed from
// the attendance source plus the console's working-session overrides every
// time either changes, and never written back.
package payroll

import "time"

// Counts is the attendance tally for one employee over the reporting window.
type Counts struct {
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
	Leave   int `json:"leave"`
}

// Employee is one entry of the attendance summary.
type Employee struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Counts Counts `json:"counts"`
}

// AttendanceSummary is the attendance source snapshot for a window.
type AttendanceSummary struct {
	Users []Employee `json:"users"`
	From  time.Time  `json:"from"`
	To    time.Time  `json:"to"`
}

// Override carries the console's per-employee adjustments. Nil fields keep
// their defaults. Negative rate, overtime hours and deductions are clamped
// to zero on input; bonus may go negative as a penalty adjustment.
type Override struct {
	HourlyRate         *float64 `json:"hourly_rate,omitempty" validate:"omitempty"`
	OvertimeHours      *float64 `json:"overtime_hours,omitempty" validate:"omitempty"`
	OvertimeMultiplier *float64 `json:"overtime_multiplier,omitempty" validate:"omitempty,gt=0"`
	Bonus              *float64 `json:"bonus,omitempty" validate:"omitempty"`
	Deductions         *float64 `json:"deductions,omitempty" validate:"omitempty"`
}

// Row is one employee's projected payroll line.
type Row struct {
	UserID             string  `json:"user_id"`
	Name               string  `json:"name"`
	Role               string  `json:"role"`
	Counts             Counts  `json:"counts"`
	HourlyRate         float64 `json:"hourly_rate"`
	OvertimeHours      float64 `json:"overtime_hours"`
	OvertimeMultiplier float64 `json:"overtime_multiplier"`
	Bonus              float64 `json:"bonus"`
	Deductions         float64 `json:"deductions"`
	RegularHours       float64 `json:"regular_hours"`
	RegularPay         float64 `json:"regular_pay"`
	OvertimePay        float64 `json:"overtime_pay"`
	GrossPay           float64 `json:"gross_pay"`
	NetPay             float64 `json:"net_pay"`
}

// Totals is the column-wise sum over all rows.
type Totals struct {
	RegularHours float64 `json:"regular_hours"`
	RegularPay   float64 `json:"regular_pay"`
	OvertimePay  float64 `json:"overtime_pay"`
	Bonus        float64 `json:"bonus"`
	Deductions   float64 `json:"deductions"`
	GrossPay     float64 `json:"gross_pay"`
	NetPay       float64 `json:"net_pay"`
}
