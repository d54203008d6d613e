// Package report aggregates leave usage for a calendar year.
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Filter scopes a report to one year and optionally one faculty.
type Filter struct {
	Year    int
	Faculty string
}

type DepartmentRow struct {
	DepartmentID   *int64          `db:"department_id" json:"department_id,omitempty"`
	DepartmentName string          `db:"department_name" json:"department_name"`
	Faculty        string          `db:"faculty" json:"faculty,omitempty"`
	LeaveTypeName  string          `db:"leave_type_name" json:"leave_type"`
	Applications   int64           `db:"applications" json:"applications"`
	ApprovedDays   decimal.Decimal `db:"approved_days" json:"approved_days"`
}

type UtilisationRow struct {
	LeaveTypeID   int64           `db:"leave_type_id" json:"leave_type_id"`
	LeaveTypeName string          `db:"leave_type_name" json:"leave_type"`
	Employees     int64           `db:"employees" json:"employees"`
	AllocatedDays decimal.Decimal `db:"allocated_days" json:"allocated_days"`
	UsedDays      decimal.Decimal `db:"used_days" json:"used_days"`
	Percent       decimal.Decimal `db:"-" json:"utilisation_percent"`
}

type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int64  `db:"count" json:"count"`
}

type LeaveReport struct {
	Year              int               `json:"year"`
	Faculty           string            `json:"faculty,omitempty"`
	Departments       []*DepartmentRow  `json:"departments"`
	Utilisation       []*UtilisationRow `json:"utilisation"`
	Statuses          []*StatusCount    `json:"statuses"`
	TotalApprovedDays decimal.Decimal   `json:"total_approved_days"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

var hundred = decimal.NewFromInt(100)

// percentOf returns used/allocated as a percentage rounded to two places.
func percentOf(used, allocated decimal.Decimal) decimal.Decimal {
	if allocated.IsZero() {
		return decimal.Zero
	}
	return used.Div(allocated).Mul(hundred).Round(2)
}
