package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes the report as three blocks separated by an empty line.
func WriteCSV(w io.Writer, r *LeaveReport) error {
	cw := csv.NewWriter(w)

	records := [][]string{{"department", "faculty", "leave_type", "applications", "approved_days"}}
	for _, row := range r.Departments {
		records = append(records, []string{
			row.DepartmentName,
			row.Faculty,
			row.LeaveTypeName,
			strconv.FormatInt(row.Applications, 10),
			row.ApprovedDays.StringFixed(1),
		})
	}

	records = append(records, nil, []string{"leave_type", "employees", "allocated_days", "used_days", "utilisation_percent"})
	for _, row := range r.Utilisation {
		records = append(records, []string{
			row.LeaveTypeName,
			strconv.FormatInt(row.Employees, 10),
			row.AllocatedDays.StringFixed(1),
			row.UsedDays.StringFixed(1),
			row.Percent.StringFixed(2),
		})
	}

	records = append(records, nil, []string{"status", "count"})
	for _, row := range r.Statuses {
		records = append(records, []string{row.Status, strconv.FormatInt(row.Count, 10)})
	}

	return cw.WriteAll(records)
}
