package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/database"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/leave"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.RepositoryAPI {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) GetLeaveType(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error) {
	var row leaveDatamodel.LeaveType
	if err := database.Conn(ctx, r.db).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *LeaveRepository) CreateApplication(ctx context.Context, row *leaveDatamodel.LeaveApplication) error {
	return database.Conn(ctx, r.db).Create(row).Error
}

func (r *LeaveRepository) GetApplication(ctx context.Context, id int64) (*leaveDatamodel.LeaveApplication, error) {
	var row leaveDatamodel.LeaveApplication
	if err := database.Conn(ctx, r.db).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *LeaveRepository) ListApplications(ctx context.Context, filter leave.ListFilter) ([]*leaveDatamodel.LeaveApplicationDetail, error) {
	q := database.Conn(ctx, r.db).
		Table("leave_applications").
		Select("leave_applications.*, leave_types.name AS leave_type_name, users.name AS applicant_name").
		Joins("JOIN leave_types ON leave_types.id = leave_applications.leave_type_id").
		Joins("JOIN users ON users.id = leave_applications.user_id")

	if len(filter.IDs) > 0 {
		q = q.Where("leave_applications.id IN ?", filter.IDs)
	}
	if filter.UserID != 0 {
		q = q.Where("leave_applications.user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("leave_applications.status = ?", string(filter.Status))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []*leaveDatamodel.LeaveApplicationDetail
	err := q.Order("leave_applications.created_at DESC, leave_applications.id DESC").Scan(&rows).Error
	return rows, err
}

func (r *LeaveRepository) FindOverlapping(ctx context.Context, userID int64, start, end time.Time) ([]*leaveDatamodel.LeaveApplication, error) {
	var rows []*leaveDatamodel.LeaveApplication
	err := database.Conn(ctx, r.db).
		Where("user_id = ? AND status <> ?", userID, string(leave.StatusRejected)).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Find(&rows).Error
	return rows, err
}

func (r *LeaveRepository) TransitionApplication(ctx context.Context, id int64, from, to leave.Status, at time.Time) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&leaveDatamodel.LeaveApplication{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"decided_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *LeaveRepository) CreateApproval(ctx context.Context, row *leaveDatamodel.LeaveApproval) error {
	return database.Conn(ctx, r.db).Create(row).Error
}

func (r *LeaveRepository) GetApproval(ctx context.Context, id int64) (*leaveDatamodel.LeaveApproval, error) {
	var row leaveDatamodel.LeaveApproval
	if err := database.Conn(ctx, r.db).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *LeaveRepository) ListApprovals(ctx context.Context, applicationID int64) ([]*leaveDatamodel.LeaveApproval, error) {
	var rows []*leaveDatamodel.LeaveApproval
	err := database.Conn(ctx, r.db).
		Where("leave_application_id = ?", applicationID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *LeaveRepository) DecideApproval(ctx context.Context, id int64, status leave.ApprovalStatus, deciderID int64, comments string, at time.Time) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&leaveDatamodel.LeaveApproval{}).
		Where("id = ? AND status = ?", id, string(leave.ApprovalPending)).
		Updates(map[string]interface{}{
			"status":     string(status),
			"decided_by": deciderID,
			"comments":   comments,
			"decided_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *LeaveRepository) DeletePendingApprovals(ctx context.Context, applicationID int64) error {
	return database.Conn(ctx, r.db).
		Where("leave_application_id = ? AND status = ?", applicationID, string(leave.ApprovalPending)).
		Delete(&leaveDatamodel.LeaveApproval{}).Error
}

func (r *LeaveRepository) ListOpenApprovalsFor(ctx context.Context, userID int64, role internal.Role) ([]*leaveDatamodel.LeaveApproval, error) {
	var rows []*leaveDatamodel.LeaveApproval
	err := database.Conn(ctx, r.db).
		Where("status = ?", string(leave.ApprovalPending)).
		Where("approver_id = ? OR (approver_id IS NULL AND approver_role = ?)", userID, string(role)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}
