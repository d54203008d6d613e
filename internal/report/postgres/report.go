package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/leave-management/internal/report"
)

const departmentSummaryQuery = `
SELECT d.id AS department_id,
       COALESCE(d.name, 'Unassigned') AS department_name,
       COALESCE(d.faculty, '') AS faculty,
       lt.name AS leave_type_name,
       COUNT(la.id) AS applications,
       COALESCE(SUM(CASE WHEN la.status = 'approved' THEN la.working_days ELSE 0 END), 0) AS approved_days
FROM leave_applications la
JOIN users u ON u.id = la.user_id
JOIN leave_types lt ON lt.id = la.leave_type_id
LEFT JOIN departments d ON d.id = u.department_id
WHERE la.start_date >= $1 AND la.start_date < $2
  AND ($3::text = '' OR d.faculty = $3)
GROUP BY d.id, d.name, d.faculty, lt.name
ORDER BY department_name, leave_type_name`

const balanceUtilisationQuery = `
SELECT lt.id AS leave_type_id,
       lt.name AS leave_type_name,
       COUNT(lb.id) AS employees,
       COALESCE(SUM(lb.total_days), 0) AS allocated_days,
       COALESCE(SUM(lb.used_days), 0) AS used_days
FROM leave_balances lb
JOIN leave_types lt ON lt.id = lb.leave_type_id
JOIN users u ON u.id = lb.user_id
LEFT JOIN departments d ON d.id = u.department_id
WHERE lb.year = $1
  AND ($2::text = '' OR d.faculty = $2)
GROUP BY lt.id, lt.name
ORDER BY lt.name`

const statusCountsQuery = `
SELECT la.status AS status, COUNT(*) AS count
FROM leave_applications la
JOIN users u ON u.id = la.user_id
LEFT JOIN departments d ON d.id = u.department_id
WHERE la.start_date >= $1 AND la.start_date < $2
  AND ($3::text = '' OR d.faculty = $3)
GROUP BY la.status
ORDER BY la.status`

// ReportRepository runs read-only aggregate queries on the shared sqlx pool.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

func yearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

func (r *ReportRepository) DepartmentSummary(ctx context.Context, filter report.Filter) ([]*report.DepartmentRow, error) {
	from, to := yearBounds(filter.Year)
	var rows []*report.DepartmentRow
	if err := r.db.SelectContext(ctx, &rows, departmentSummaryQuery, from, to, filter.Faculty); err != nil {
		return nil, fmt.Errorf("department summary: %w", err)
	}
	return rows, nil
}

func (r *ReportRepository) BalanceUtilisation(ctx context.Context, filter report.Filter) ([]*report.UtilisationRow, error) {
	var rows []*report.UtilisationRow
	if err := r.db.SelectContext(ctx, &rows, balanceUtilisationQuery, filter.Year, filter.Faculty); err != nil {
		return nil, fmt.Errorf("balance utilisation: %w", err)
	}
	return rows, nil
}

func (r *ReportRepository) StatusCounts(ctx context.Context, filter report.Filter) ([]*report.StatusCount, error) {
	from, to := yearBounds(filter.Year)
	var rows []*report.StatusCount
	if err := r.db.SelectContext(ctx, &rows, statusCountsQuery, from, to, filter.Faculty); err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	return rows, nil
}
