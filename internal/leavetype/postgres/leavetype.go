package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/leave-management/internal/core/database"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/leavetype"
)

type LeaveTypeRepository struct {
	db *gorm.DB
}

func NewLeaveTypeRepository(db *gorm.DB) leavetype.RepositoryAPI {
	return &LeaveTypeRepository{db: db}
}

func (r *LeaveTypeRepository) GetAll(ctx context.Context, includeInactive bool) ([]*leaveDatamodel.LeaveType, error) {
	query := database.Conn(ctx, r.db)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var types []*leaveDatamodel.LeaveType
	err := query.Order("name ASC").Find(&types).Error
	return types, err
}

func (r *LeaveTypeRepository) GetByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error) {
	var lt leaveDatamodel.LeaveType
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&lt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lt, nil
}

func (r *LeaveTypeRepository) GetByName(ctx context.Context, name string) (*leaveDatamodel.LeaveType, error) {
	var lt leaveDatamodel.LeaveType
	err := database.Conn(ctx, r.db).Where("LOWER(name) = LOWER(?)", name).First(&lt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lt, nil
}

func (r *LeaveTypeRepository) Create(ctx context.Context, lt *leaveDatamodel.LeaveType) error {
	return database.Conn(ctx, r.db).Create(lt).Error
}

func (r *LeaveTypeRepository) Update(ctx context.Context, lt *leaveDatamodel.LeaveType) error {
	return database.Conn(ctx, r.db).Save(lt).Error
}

func (r *LeaveTypeRepository) Delete(ctx context.Context, id int64) error {
	return database.Conn(ctx, r.db).Delete(&leaveDatamodel.LeaveType{}, id).Error
}

func (r *LeaveTypeRepository) CountApplications(ctx context.Context, leaveTypeID int64) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).
		Model(&leaveDatamodel.LeaveApplication{}).
		Where("leave_type_id = ?", leaveTypeID).
		Count(&n).Error
	return n, err
}
