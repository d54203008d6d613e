package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/leave-management/internal/balance"
	"github.com/frahmantamala/leave-management/internal/core/database"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) balance.RepositoryAPI {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) Get(ctx context.Context, userID, leaveTypeID int64, year int) (*leaveDatamodel.LeaveBalance, error) {
	var row leaveDatamodel.LeaveBalance
	err := database.Conn(ctx, r.db).
		Where("user_id = ? AND leave_type_id = ? AND year = ?", userID, leaveTypeID, year).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *BalanceRepository) ListForUser(ctx context.Context, userID int64, year int) ([]*leaveDatamodel.LeaveBalanceDetail, error) {
	var rows []*leaveDatamodel.LeaveBalanceDetail
	err := database.Conn(ctx, r.db).
		Table("leave_balances").
		Select("leave_balances.*, leave_types.name AS leave_type_name").
		Joins("JOIN leave_types ON leave_types.id = leave_balances.leave_type_id").
		Where("leave_balances.user_id = ? AND leave_balances.year = ?", userID, year).
		Order("leave_types.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *BalanceRepository) Debit(ctx context.Context, userID, leaveTypeID int64, year int, days float64) (int64, error) {
	res := database.Conn(ctx, r.db).
		Model(&leaveDatamodel.LeaveBalance{}).
		Where("user_id = ? AND leave_type_id = ? AND year = ? AND used_days + ? <= total_days", userID, leaveTypeID, year, days).
		Update("used_days", gorm.Expr("used_days + ?", days))
	return res.RowsAffected, res.Error
}

func (r *BalanceRepository) AdjustTotal(ctx context.Context, leaveTypeID int64, year int, delta float64) error {
	return database.Conn(ctx, r.db).
		Model(&leaveDatamodel.LeaveBalance{}).
		Where("leave_type_id = ? AND year = ?", leaveTypeID, year).
		Update("total_days", gorm.Expr(
			"CASE WHEN total_days + ? < used_days THEN used_days ELSE total_days + ? END", delta, delta)).
		Error
}

func (r *BalanceRepository) CreateMissing(ctx context.Context, rows []*leaveDatamodel.LeaveBalance) (int64, error) {
	res := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, 500)
	return res.RowsAffected, res.Error
}

func (r *BalanceRepository) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := database.Conn(ctx, r.db).
		Model(&userDatamodel.User{}).
		Where("is_active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *BalanceRepository) ActiveAllocations(ctx context.Context) ([]balance.Allocation, error) {
	var types []*leaveDatamodel.LeaveType
	err := database.Conn(ctx, r.db).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	out := make([]balance.Allocation, 0, len(types))
	for _, t := range types {
		out = append(out, balance.Allocation{LeaveTypeID: t.ID, Days: t.DefaultDays})
	}
	return out, nil
}

func (r *BalanceRepository) DeleteForUser(ctx context.Context, userID int64) error {
	return database.Conn(ctx, r.db).Where("user_id = ?", userID).Delete(&leaveDatamodel.LeaveBalance{}).Error
}

func (r *BalanceRepository) DeleteForLeaveType(ctx context.Context, leaveTypeID int64) error {
	return database.Conn(ctx, r.db).Where("leave_type_id = ?", leaveTypeID).Delete(&leaveDatamodel.LeaveBalance{}).Error
}
