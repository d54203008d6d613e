package leavetype

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context, includeInactive bool) ([]*leaveDatamodel.LeaveType, error)
	GetByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error)
	GetByName(ctx context.Context, name string) (*leaveDatamodel.LeaveType, error)
	Create(ctx context.Context, t *leaveDatamodel.LeaveType) error
	Update(ctx context.Context, t *leaveDatamodel.LeaveType) error
	Delete(ctx context.Context, id int64) error
	CountApplications(ctx context.Context, leaveTypeID int64) (int64, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BalanceLedger keeps balance rows in step with leave type changes.
type BalanceLedger interface {
	AllocateForLeaveType(ctx context.Context, leaveTypeID int64, days float64, year int) (int64, error)
	Credit(ctx context.Context, leaveTypeID int64, year int, delta float64) error
	RemoveForLeaveType(ctx context.Context, leaveTypeID int64) error
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, action, entityType string, entityID int64, description string)
}

var (
	ErrLeaveTypeNotFound = internal.NewNotFoundError("leave type not found", internal.ErrCodeLeaveTypeNotFound)
	ErrNameTaken         = internal.NewConflictError("a leave type with this name already exists", internal.ErrCodeDuplicate)
	ErrInUse             = internal.NewConflictError("leave type has applications; deactivate it instead", internal.ErrCodeNotAllowed)
)

type Service struct {
	repo   RepositoryAPI
	tx     Transactor
	ledger BalanceLedger
	audit  AuditRecorder
	logger *slog.Logger
	clock  func() time.Time
}

func NewService(repo RepositoryAPI, tx Transactor, ledger BalanceLedger, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tx:     tx,
		ledger: ledger,
		audit:  audit,
		logger: logger,
		clock:  time.Now,
	}
}

func (s *Service) List(ctx context.Context, includeInactive bool) ([]*LeaveType, error) {
	rows, err := s.repo.GetAll(ctx, includeInactive)
	if err != nil {
		s.logger.Error("failed to get leave types from repository", "error", err)
		return nil, internal.NewInternalError("failed to list leave types", err)
	}
	out := make([]*LeaveType, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*LeaveType, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// Create stores a leave type and gives every active user a balance of
// default_days for the current year.
func (s *Service) Create(ctx context.Context, actor internal.AuthContext, dto CreateDTO) (*LeaveType, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	errs := validation.Struct(dto)
	roles := parseRoles(dto.ApplicableTo, &errs)
	if errs.HasErrors() {
		return nil, internal.NewValidationErrors(errs)
	}
	if err := s.ensureNameFree(ctx, dto.Name, 0); err != nil {
		return nil, err
	}

	lt := &LeaveType{
		Name:               dto.Name,
		Description:        strings.TrimSpace(dto.Description),
		DefaultDays:        dto.DefaultDays,
		RequiresAttachment: dto.RequiresAttachment,
		IsAcademic:         dto.IsAcademic,
		MaxDaysPerRequest:  dto.MaxDaysPerRequest,
		MinNoticeDays:      dto.MinNoticeDays,
		ApplicableTo:       roles,
		IsActive:           true,
	}
	row := ToDataModel(lt)

	var allocated int64
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, row); err != nil {
			return internal.NewInternalError("failed to create leave type", err)
		}
		n, err := s.ledger.AllocateForLeaveType(ctx, row.ID, row.DefaultDays, s.clock().Year())
		allocated = n
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave type created", "leave_type_id", row.ID, "name", row.Name, "balances", allocated)
	s.audit.Record(ctx, actor.UserID, "leave_type.created", "leave_type", row.ID, row.Name)
	return FromDataModel(row), nil
}

// Update applies the present fields. A change of default_days shifts the
// current year's balances by the difference; reactivating a leave type
// allocates the rows that are missing.
func (s *Service) Update(ctx context.Context, actor internal.AuthContext, id int64, dto UpdateDTO) (*LeaveType, error) {
	errs := validation.Struct(dto)
	var roles []internal.Role
	if dto.ApplicableTo != nil {
		roles = parseRoles(*dto.ApplicableTo, &errs)
	}
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		errs.Add("name", "name must not be empty", internal.ErrCodeRequired)
	}
	if errs.HasErrors() {
		return nil, internal.NewValidationErrors(errs)
	}

	var (
		row   *leaveDatamodel.LeaveType
		delta float64
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if row, err = s.load(ctx, id); err != nil {
			return err
		}
		lt := FromDataModel(row)
		wasActive := lt.IsActive

		if dto.Name != nil {
			name := strings.TrimSpace(*dto.Name)
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return err
			}
			lt.Name = name
		}
		if dto.Description != nil {
			lt.Description = strings.TrimSpace(*dto.Description)
		}
		if dto.DefaultDays != nil {
			delta = *dto.DefaultDays - lt.DefaultDays
			lt.DefaultDays = *dto.DefaultDays
		}
		if dto.RequiresAttachment != nil {
			lt.RequiresAttachment = *dto.RequiresAttachment
		}
		if dto.IsAcademic != nil {
			lt.IsAcademic = *dto.IsAcademic
		}
		if dto.MaxDaysPerRequest != nil {
			lt.MaxDaysPerRequest = dto.MaxDaysPerRequest
			if *dto.MaxDaysPerRequest == 0 {
				lt.MaxDaysPerRequest = nil
			}
		}
		if dto.MinNoticeDays != nil {
			lt.MinNoticeDays = dto.MinNoticeDays
		}
		if dto.ApplicableTo != nil {
			lt.ApplicableTo = roles
		}
		if dto.IsActive != nil {
			if *dto.IsActive {
				lt.Activate()
			} else {
				lt.Deactivate()
			}
		}

		row = ToDataModel(lt)
		if err := s.repo.Update(ctx, row); err != nil {
			return internal.NewInternalError("failed to update leave type", err)
		}

		year := s.clock().Year()
		if delta != 0 {
			if err := s.ledger.Credit(ctx, id, year, delta); err != nil {
				return err
			}
		}
		if lt.IsActive && !wasActive {
			if _, err := s.ledger.AllocateForLeaveType(ctx, id, lt.DefaultDays, year); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave type updated", "leave_type_id", id, "default_days_delta", delta)
	s.audit.Record(ctx, actor.UserID, "leave_type.updated", "leave_type", id, describeUpdate(dto, delta))
	return FromDataModel(row), nil
}

func (s *Service) Deactivate(ctx context.Context, actor internal.AuthContext, id int64) (*LeaveType, error) {
	inactive := false
	return s.Update(ctx, actor, id, UpdateDTO{IsActive: &inactive})
}

// Delete removes a leave type nobody has applied for, together with its balances.
func (s *Service) Delete(ctx context.Context, actor internal.AuthContext, id int64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.load(ctx, id); err != nil {
			return err
		}
		used, err := s.repo.CountApplications(ctx, id)
		if err != nil {
			return internal.NewInternalError("failed to count leave applications", err)
		}
		if used > 0 {
			return ErrInUse
		}
		if err := s.ledger.RemoveForLeaveType(ctx, id); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return internal.NewInternalError("failed to delete leave type", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, actor.UserID, "leave_type.deleted", "leave_type", id, "")
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load leave type", err)
	}
	if row == nil {
		return nil, ErrLeaveTypeNotFound
	}
	return row, nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return internal.NewInternalError("failed to check leave type name", err)
	}
	if existing != nil && existing.ID != selfID {
		return ErrNameTaken
	}
	return nil
}

func parseRoles(names []string, errs *internal.ValidationErrors) []internal.Role {
	roles := make([]internal.Role, 0, len(names))
	seen := make(map[internal.Role]bool, len(names))
	for _, name := range names {
		role, ok := internal.ParseRole(name)
		if !ok {
			errs.Add("applicable_to", fmt.Sprintf("unknown role %q", name), internal.ErrCodeValidationFailed)
			continue
		}
		if !seen[role] {
			seen[role] = true
			roles = append(roles, role)
		}
	}
	return roles
}

func describeUpdate(dto UpdateDTO, delta float64) string {
	var parts []string
	if dto.Name != nil {
		parts = append(parts, "name")
	}
	if dto.DefaultDays != nil {
		parts = append(parts, fmt.Sprintf("default_days %+g", delta))
	}
	if dto.IsActive != nil {
		parts = append(parts, fmt.Sprintf("is_active=%t", *dto.IsActive))
	}
	if len(parts) == 0 {
		return "policy fields"
	}
	return strings.Join(parts, ", ")
}
