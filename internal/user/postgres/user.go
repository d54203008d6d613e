package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/database"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
	"github.com/frahmantamala/leave-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	if err := database.Conn(ctx, r.db).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	if err := database.Conn(ctx, r.db).Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return database.Conn(ctx, r.db).Create(u).Error
}

func (r *UserRepository) List(ctx context.Context, filter user.ListFilter) ([]*userDatamodel.User, error) {
	query := database.Conn(ctx, r.db).Model(&userDatamodel.User{})
	if filter.DepartmentID > 0 {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}

	var rows []*userDatamodel.User
	err := query.Order("name ASC, id ASC").Limit(filter.Limit).Offset(filter.Offset).Find(&rows).Error
	return rows, err
}

func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("is_active", active)
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepository) SetRole(ctx context.Context, id int64, role internal.Role) error {
	return database.Conn(ctx, r.db).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("role", string(role)).Error
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := database.Conn(ctx, r.db).Delete(&userDatamodel.User{}, id)
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepository) CountApplications(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).
		Model(&leaveDatamodel.LeaveApplication{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *UserRepository) CreateDepartment(ctx context.Context, d *userDatamodel.Department) error {
	return database.Conn(ctx, r.db).Create(d).Error
}

func (r *UserRepository) GetDepartment(ctx context.Context, id int64) (*userDatamodel.Department, error) {
	var row userDatamodel.Department
	if err := database.Conn(ctx, r.db).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) GetDepartmentByName(ctx context.Context, name string) (*userDatamodel.Department, error) {
	var row userDatamodel.Department
	if err := database.Conn(ctx, r.db).Where("LOWER(name) = LOWER(?)", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) ListDepartments(ctx context.Context) ([]*userDatamodel.Department, error) {
	var rows []*userDatamodel.Department
	err := database.Conn(ctx, r.db).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *UserRepository) SetDepartmentHead(ctx context.Context, departmentID int64, headID *int64) error {
	return database.Conn(ctx, r.db).
		Model(&userDatamodel.Department{}).
		Where("id = ?", departmentID).
		Update("head_id", headID).Error
}

func (r *UserRepository) CountHeadedBy(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).
		Model(&userDatamodel.Department{}).
		Where("head_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *UserRepository) ClearHeadFor(ctx context.Context, userID int64) error {
	return database.Conn(ctx, r.db).
		Model(&userDatamodel.Department{}).
		Where("head_id = ?", userID).
		Update("head_id", nil).Error
}
