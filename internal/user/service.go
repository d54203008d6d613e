package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	List(ctx context.Context, filter ListFilter) ([]*userDatamodel.User, error)
	SetActive(ctx context.Context, id int64, active bool) (bool, error)
	SetRole(ctx context.Context, id int64, role internal.Role) error
	Delete(ctx context.Context, id int64) (bool, error)
	CountApplications(ctx context.Context, userID int64) (int64, error)

	CreateDepartment(ctx context.Context, d *userDatamodel.Department) error
	GetDepartment(ctx context.Context, id int64) (*userDatamodel.Department, error)
	GetDepartmentByName(ctx context.Context, name string) (*userDatamodel.Department, error)
	ListDepartments(ctx context.Context) ([]*userDatamodel.Department, error)
	SetDepartmentHead(ctx context.Context, departmentID int64, headID *int64) error
	// CountHeadedBy counts the departments headed by userID.
	CountHeadedBy(ctx context.Context, userID int64) (int64, error)
	ClearHeadFor(ctx context.Context, userID int64) error
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BalanceAllocator creates and removes the balance rows of a user.
type BalanceAllocator interface {
	AllocateForUser(ctx context.Context, userID int64, year int) (int64, error)
	RemoveForUser(ctx context.Context, userID int64) error
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, action, entityType string, entityID int64, description string)
}

var (
	ErrUserNotFound       = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrDepartmentNotFound = internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
	ErrEmailTaken         = internal.NewConflictError("a user with this email already exists", internal.ErrCodeDuplicate)
	ErrDepartmentExists   = internal.NewConflictError("a department with this name already exists", internal.ErrCodeDuplicate)
	ErrSelfChange         = internal.NewForbiddenError("you cannot deactivate or delete your own account", internal.ErrCodeNotAllowed)
	ErrUserHasLeave       = internal.NewConflictError("user has leave applications; deactivate the account instead", internal.ErrCodeNotAllowed)
)

type Service struct {
	repo   RepositoryAPI
	tx     Transactor
	ledger BalanceAllocator
	hasher PasswordHasher
	audit  AuditRecorder
	logger *slog.Logger
	clock  func() time.Time
}

func NewService(repo RepositoryAPI, tx Transactor, ledger BalanceAllocator, hasher PasswordHasher, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tx:     tx,
		ledger: ledger,
		hasher: hasher,
		audit:  audit,
		logger: logger,
		clock:  time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*User, error) {
	if filter.Role != "" {
		role, ok := internal.ParseRole(string(filter.Role))
		if !ok {
			return nil, internal.NewValidationFieldError("role", "unknown role", internal.ErrCodeValidationFailed)
		}
		filter.Role = role
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	out := make([]*User, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

// Create stores a new account and allocates its balances for the current year
// in the same transaction.
func (s *Service) Create(ctx context.Context, actor internal.AuthContext, dto CreateUserDTO) (*User, error) {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.Name = strings.TrimSpace(dto.Name)

	errs := validation.Struct(dto)
	role, ok := internal.ParseRole(dto.Role)
	if dto.Role != "" && !ok {
		errs.Add("role", "role must be one of staff, department_head, dean, principal, director, hr_admin", internal.ErrCodeValidationFailed)
	}
	if errs.HasErrors() {
		return nil, internal.NewValidationErrors(errs)
	}

	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	if dto.DepartmentID != nil {
		if _, err := s.department(ctx, *dto.DepartmentID); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         string(role),
		DepartmentID: dto.DepartmentID,
		IsActive:     true,
	}
	var allocated int64
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, row); err != nil {
			return internal.NewInternalError("failed to create user", err)
		}
		n, err := s.ledger.AllocateForUser(ctx, row.ID, s.clock().Year())
		allocated = n
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", row.ID, "role", row.Role, "balances", allocated)
	s.audit.Record(ctx, actor.UserID, "user.created", "user", row.ID, fmt.Sprintf("%s (%s)", row.Email, row.Role))
	return FromDataModel(row), nil
}

func (s *Service) Deactivate(ctx context.Context, actor internal.AuthContext, id int64) (*User, error) {
	if id == actor.UserID {
		return nil, ErrSelfChange
	}
	found, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return nil, internal.NewInternalError("failed to deactivate user", err)
	}
	if !found {
		return nil, ErrUserNotFound
	}
	s.audit.Record(ctx, actor.UserID, "user.deactivated", "user", id, "")
	return s.Get(ctx, id)
}

// Delete removes an account that never applied for leave, together with its
// balances and any department headship.
func (s *Service) Delete(ctx context.Context, actor internal.AuthContext, id int64) error {
	if id == actor.UserID {
		return ErrSelfChange
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		row, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return internal.NewInternalError("failed to load user", err)
		}
		if row == nil {
			return ErrUserNotFound
		}
		applications, err := s.repo.CountApplications(ctx, id)
		if err != nil {
			return internal.NewInternalError("failed to count leave applications", err)
		}
		if applications > 0 {
			return ErrUserHasLeave
		}
		if err := s.repo.ClearHeadFor(ctx, id); err != nil {
			return internal.NewInternalError("failed to clear department head", err)
		}
		if err := s.ledger.RemoveForUser(ctx, id); err != nil {
			return err
		}
		if _, err := s.repo.Delete(ctx, id); err != nil {
			return internal.NewInternalError("failed to delete user", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", "user_id", id, "actor_id", actor.UserID)
	s.audit.Record(ctx, actor.UserID, "user.deleted", "user", id, "")
	return nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	rows, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	out := make([]*Department, 0, len(rows))
	for _, row := range rows {
		out = append(out, DepartmentFromDataModel(row))
	}
	return out, nil
}

func (s *Service) CreateDepartment(ctx context.Context, actor internal.AuthContext, dto CreateDepartmentDTO) (*Department, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	if err := validation.ValidateStruct(dto); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetDepartmentByName(ctx, dto.Name)
	if err != nil {
		return nil, internal.NewInternalError("failed to check department", err)
	}
	if existing != nil {
		return nil, ErrDepartmentExists
	}

	row := &userDatamodel.Department{Name: dto.Name}
	if faculty := strings.TrimSpace(dto.Faculty); faculty != "" {
		row.Faculty = &faculty
	}
	if err := s.repo.CreateDepartment(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create department", err)
	}
	s.audit.Record(ctx, actor.UserID, "department.created", "department", row.ID, row.Name)
	return DepartmentFromDataModel(row), nil
}

// AssignHead makes a member of the department its head. A staff member becomes
// department_head; a previous head who no longer heads any department goes back
// to staff. Other roles are left alone.
func (s *Service) AssignHead(ctx context.Context, actor internal.AuthContext, departmentID int64, dto AssignHeadDTO) (*Department, error) {
	var dept *userDatamodel.Department

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if dept, err = s.department(ctx, departmentID); err != nil {
			return err
		}
		previous := dept.HeadID

		if dto.UserID != nil {
			head, err := s.repo.GetByID(ctx, *dto.UserID)
			if err != nil {
				return internal.NewInternalError("failed to load user", err)
			}
			if head == nil {
				return ErrUserNotFound
			}
			if !head.IsActive {
				return internal.NewValidationFieldError("user_id", "an inactive user cannot head a department", internal.ErrCodeValidationFailed)
			}
			if head.DepartmentID == nil || *head.DepartmentID != dept.ID {
				return internal.NewValidationFieldError("user_id", "the head must be a member of the department", internal.ErrCodeValidationFailed)
			}
			if internal.Role(head.Role) == internal.RoleStaff {
				if err := s.repo.SetRole(ctx, head.ID, internal.RoleDepartmentHead); err != nil {
					return internal.NewInternalError("failed to promote department head", err)
				}
			}
		}

		if err := s.repo.SetDepartmentHead(ctx, dept.ID, dto.UserID); err != nil {
			return internal.NewInternalError("failed to assign department head", err)
		}
		dept.HeadID = dto.UserID

		if previous != nil && (dto.UserID == nil || *previous != *dto.UserID) {
			return s.demoteIfIdle(ctx, *previous)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	description := "head removed"
	if dto.UserID != nil {
		description = fmt.Sprintf("head set to user %d", *dto.UserID)
	}
	s.logger.Info("department head changed", "department_id", dept.ID, "head_id", dto.UserID)
	s.audit.Record(ctx, actor.UserID, "department.head_assigned", "department", dept.ID, description)
	return DepartmentFromDataModel(dept), nil
}

func (s *Service) demoteIfIdle(ctx context.Context, userID int64) error {
	row, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return internal.NewInternalError("failed to load previous head", err)
	}
	if row == nil || internal.Role(row.Role) != internal.RoleDepartmentHead {
		return nil
	}
	headed, err := s.repo.CountHeadedBy(ctx, userID)
	if err != nil {
		return internal.NewInternalError("failed to count departments", err)
	}
	if headed > 0 {
		return nil
	}
	if err := s.repo.SetRole(ctx, userID, internal.RoleStaff); err != nil {
		return internal.NewInternalError("failed to demote previous head", err)
	}
	return nil
}

func (s *Service) department(ctx context.Context, id int64) (*userDatamodel.Department, error) {
	row, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if row == nil {
		return nil, ErrDepartmentNotFound
	}
	return row, nil
}
