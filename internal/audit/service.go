package audit

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
	auditDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/audit"
)

type RepositoryAPI interface {
	Create(ctx context.Context, row *auditDatamodel.AuditLog) error
	List(ctx context.Context, filter Filter) ([]*auditDatamodel.AuditLog, error)
}

// Service writes audit entries on a best-effort basis: failures are logged and
// never returned to the caller.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Record(ctx context.Context, actorID int64, action, entityType string, entityID int64, description string) {
	row := &auditDatamodel.AuditLog{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
	}
	if actorID != 0 {
		row.ActorID = &actorID
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to write audit entry",
			"error", err,
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID)
	}
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		return nil, internal.NewInternalError("failed to list audit log", err)
	}
	out := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}
