package balance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

type RepositoryAPI interface {
	Get(ctx context.Context, userID, leaveTypeID int64, year int) (*leaveDatamodel.LeaveBalance, error)
	ListForUser(ctx context.Context, userID int64, year int) ([]*leaveDatamodel.LeaveBalanceDetail, error)
	// Debit adds days to used_days only while the result stays within total_days
	// and returns the number of rows it changed.
	Debit(ctx context.Context, userID, leaveTypeID int64, year int, days float64) (int64, error)
	AdjustTotal(ctx context.Context, leaveTypeID int64, year int, delta float64) error
	CreateMissing(ctx context.Context, rows []*leaveDatamodel.LeaveBalance) (int64, error)
	ActiveUserIDs(ctx context.Context) ([]int64, error)
	ActiveAllocations(ctx context.Context) ([]Allocation, error)
	DeleteForUser(ctx context.Context, userID int64) error
	DeleteForLeaveType(ctx context.Context, leaveTypeID int64) error
}

var (
	ErrBalanceNotFound     = internal.NewNotFoundError("no leave balance allocated for this leave type and year", internal.ErrCodeBalanceNotFound)
	ErrInsufficientBalance = internal.NewInsufficientBalanceError("insufficient leave balance")
)

// Ledger owns every read and write of leave balances. Writes join the
// transaction carried by ctx, if any.
type Ledger struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewLedger(repo RepositoryAPI, logger *slog.Logger) *Ledger {
	return &Ledger{
		repo:   repo,
		logger: logger,
	}
}

func (l *Ledger) Remaining(ctx context.Context, userID, leaveTypeID int64, year int) (float64, error) {
	row, err := l.repo.Get(ctx, userID, leaveTypeID, year)
	if err != nil {
		return 0, internal.NewInternalError("failed to read leave balance", err)
	}
	if row == nil {
		return 0, ErrBalanceNotFound
	}
	return row.TotalDays - row.UsedDays, nil
}

// Debit charges days against the balance. It never lets used_days exceed total_days.
func (l *Ledger) Debit(ctx context.Context, userID, leaveTypeID int64, year int, days float64) error {
	if days <= 0 {
		return internal.NewValidationFieldError("days", "debit must be positive", internal.ErrCodeValidationFailed)
	}

	affected, err := l.repo.Debit(ctx, userID, leaveTypeID, year, days)
	if err != nil {
		return internal.NewInternalError("failed to debit leave balance", err)
	}
	if affected > 0 {
		l.logger.Info("leave balance debited",
			"user_id", userID,
			"leave_type_id", leaveTypeID,
			"year", year,
			"days", days)
		return nil
	}

	row, err := l.repo.Get(ctx, userID, leaveTypeID, year)
	if err != nil {
		return internal.NewInternalError("failed to read leave balance", err)
	}
	if row == nil {
		return ErrBalanceNotFound
	}
	return ErrInsufficientBalance.WithDetails(map[string]float64{
		"remaining": row.TotalDays - row.UsedDays,
		"requested": days,
	})
}

// Credit shifts total_days of every balance of a leave type for a year. A
// negative delta is clamped so that total_days never drops below used_days.
func (l *Ledger) Credit(ctx context.Context, leaveTypeID int64, year int, delta float64) error {
	if delta == 0 {
		return nil
	}
	if err := l.repo.AdjustTotal(ctx, leaveTypeID, year, delta); err != nil {
		return internal.NewInternalError("failed to adjust leave balances", err)
	}
	l.logger.Info("leave balances adjusted", "leave_type_id", leaveTypeID, "year", year, "delta", delta)
	return nil
}

// AllocateForUser gives a new user a row for every active leave type.
func (l *Ledger) AllocateForUser(ctx context.Context, userID int64, year int) (int64, error) {
	allocations, err := l.repo.ActiveAllocations(ctx)
	if err != nil {
		return 0, internal.NewInternalError("failed to list leave types", err)
	}
	rows := make([]*leaveDatamodel.LeaveBalance, 0, len(allocations))
	for _, a := range allocations {
		rows = append(rows, &leaveDatamodel.LeaveBalance{
			UserID: userID, LeaveTypeID: a.LeaveTypeID, Year: year, TotalDays: a.Days,
		})
	}
	return l.create(ctx, rows)
}

// AllocateForLeaveType gives every active user a row for a new leave type.
func (l *Ledger) AllocateForLeaveType(ctx context.Context, leaveTypeID int64, days float64, year int) (int64, error) {
	userIDs, err := l.repo.ActiveUserIDs(ctx)
	if err != nil {
		return 0, internal.NewInternalError("failed to list users", err)
	}
	rows := make([]*leaveDatamodel.LeaveBalance, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, &leaveDatamodel.LeaveBalance{
			UserID: id, LeaveTypeID: leaveTypeID, Year: year, TotalDays: days,
		})
	}
	return l.create(ctx, rows)
}

// AllocateYear creates the missing rows of every active user and leave type for
// a year. Existing rows are left untouched, so running it twice is harmless.
func (l *Ledger) AllocateYear(ctx context.Context, year int) (int64, error) {
	if year < 1970 || year > 9999 {
		return 0, internal.NewValidationFieldError("year", "year is out of range", internal.ErrCodeValidationFailed)
	}
	userIDs, err := l.repo.ActiveUserIDs(ctx)
	if err != nil {
		return 0, internal.NewInternalError("failed to list users", err)
	}
	allocations, err := l.repo.ActiveAllocations(ctx)
	if err != nil {
		return 0, internal.NewInternalError("failed to list leave types", err)
	}

	rows := make([]*leaveDatamodel.LeaveBalance, 0, len(userIDs)*len(allocations))
	for _, id := range userIDs {
		for _, a := range allocations {
			rows = append(rows, &leaveDatamodel.LeaveBalance{
				UserID: id, LeaveTypeID: a.LeaveTypeID, Year: year, TotalDays: a.Days,
			})
		}
	}
	created, err := l.create(ctx, rows)
	if err != nil {
		return 0, err
	}
	l.logger.Info("yearly balances allocated", "year", year, "created", created)
	return created, nil
}

func (l *Ledger) RemoveForUser(ctx context.Context, userID int64) error {
	if err := l.repo.DeleteForUser(ctx, userID); err != nil {
		return internal.NewInternalError("failed to remove user balances", err)
	}
	return nil
}

func (l *Ledger) RemoveForLeaveType(ctx context.Context, leaveTypeID int64) error {
	if err := l.repo.DeleteForLeaveType(ctx, leaveTypeID); err != nil {
		return internal.NewInternalError("failed to remove leave type balances", err)
	}
	return nil
}

func (l *Ledger) ListForUser(ctx context.Context, userID int64, year int) ([]*Balance, error) {
	rows, err := l.repo.ListForUser(ctx, userID, year)
	if err != nil {
		l.logger.Error("failed to list balances", "error", err, "user_id", userID, "year", year)
		return nil, internal.NewInternalError("failed to list balances", err)
	}
	out := make([]*Balance, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDetail(row))
	}
	return out, nil
}

func (l *Ledger) create(ctx context.Context, rows []*leaveDatamodel.LeaveBalance) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	created, err := l.repo.CreateMissing(ctx, rows)
	if err != nil {
		return 0, internal.NewInternalError(fmt.Sprintf("failed to allocate %d balances", len(rows)), err)
	}
	return created, nil
}
