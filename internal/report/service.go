package report

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/leave"
)

type RepositoryAPI interface {
	DepartmentSummary(ctx context.Context, filter Filter) ([]*DepartmentRow, error)
	BalanceUtilisation(ctx context.Context, filter Filter) ([]*UtilisationRow, error)
	StatusCounts(ctx context.Context, filter Filter) ([]*StatusCount, error)
}

type People interface {
	GetUser(ctx context.Context, id int64) (*leave.Person, error)
}

var ErrNoFaculty = internal.NewForbiddenError("your account is not linked to a faculty", internal.ErrCodeNotAllowed)

type Service struct {
	repo   RepositoryAPI
	people People
	logger *slog.Logger
	clock  func() time.Time
}

func NewService(repo RepositoryAPI, people People, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		people: people,
		logger: logger,
		clock:  time.Now,
	}
}

// LeaveReport builds the yearly report. Deans and directors only see their
// own faculty; HR admins and principals may pick any faculty or none.
func (s *Service) LeaveReport(ctx context.Context, actor internal.AuthContext, filter Filter) (*LeaveReport, error) {
	now := s.clock()
	if filter.Year == 0 {
		filter.Year = now.Year()
	}
	if filter.Year < 2000 || filter.Year > 2100 {
		return nil, internal.NewValidationFieldError("year", "year must be between 2000 and 2100", internal.ErrCodeInvalidRange)
	}

	switch actor.Role {
	case internal.RoleDean, internal.RoleDirector:
		person, err := s.people.GetUser(ctx, actor.UserID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load user", err)
		}
		if person == nil || person.Faculty == "" {
			return nil, ErrNoFaculty
		}
		filter.Faculty = person.Faculty
	case internal.RoleHRAdmin, internal.RolePrincipal:
	default:
		return nil, internal.ErrForbidden
	}

	report := &LeaveReport{Year: filter.Year, Faculty: filter.Faculty, GeneratedAt: now}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.repo.DepartmentSummary(gCtx, filter)
		report.Departments = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.BalanceUtilisation(gCtx, filter)
		report.Utilisation = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.StatusCounts(gCtx, filter)
		report.Statuses = rows
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to build leave report", "year", filter.Year, "faculty", filter.Faculty, "error", err)
		return nil, internal.NewInternalError("failed to build leave report", err)
	}

	for _, row := range report.Departments {
		report.TotalApprovedDays = report.TotalApprovedDays.Add(row.ApprovedDays)
	}
	for _, row := range report.Utilisation {
		row.Percent = percentOf(row.UsedDays, row.AllocatedDays)
	}
	return report, nil
}
