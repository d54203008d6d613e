package notification

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
	notificationDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/leave-management/internal/mailer"
)

type RepositoryAPI interface {
	Create(ctx context.Context, row *notificationDatamodel.Notification) error
	List(ctx context.Context, userID int64, filter ListFilter) ([]*notificationDatamodel.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	// MarkRead reports false when the notification does not belong to userID.
	MarkRead(ctx context.Context, id, userID int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

// MailQueue accepts messages for background delivery.
type MailQueue interface {
	Enqueue(msg mailer.Message) error
}

var ErrNotificationNotFound = internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationNotFound)

type Service struct {
	repo     RepositoryAPI
	renderer *Renderer
	mail     MailQueue
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, renderer *Renderer, mail MailQueue, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		renderer: renderer,
		mail:     mail,
		logger:   logger,
	}
}

// Notify stores an in-app notification for a user.
func (s *Service) Notify(ctx context.Context, userID int64, kind, message string, applicationID *int64) error {
	row := &notificationDatamodel.Notification{
		UserID:             userID,
		Kind:               kind,
		Message:            message,
		LeaveApplicationID: applicationID,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to store notification", "user_id", userID, "kind", kind, "error", err)
		return internal.NewInternalError("failed to store notification", err)
	}
	return nil
}

// SendEmail renders a template and queues it. Delivery happens later on the
// mail pool; a full queue drops the message.
func (s *Service) SendEmail(ctx context.Context, to, template string, payload EmailPayload) error {
	if to == "" {
		return nil
	}
	subject, body, err := s.renderer.Render(template, payload)
	if err != nil {
		s.logger.Error("failed to render email", "template", template, "error", err)
		return err
	}
	if err := s.mail.Enqueue(mailer.Message{To: []string{to}, Subject: subject, HTMLBody: body}); err != nil {
		s.logger.Warn("email not queued", "template", template, "application_id", payload.ApplicationID, "error", err)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, actor internal.AuthContext, filter ListFilter) (*NotificationsResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	rows, err := s.repo.List(ctx, actor.UserID, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list notifications", err)
	}
	unread, err := s.repo.CountUnread(ctx, actor.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count notifications", err)
	}

	out := make([]*Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return &NotificationsResponse{
		Notifications: out,
		Unread:        unread,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	}, nil
}

func (s *Service) MarkRead(ctx context.Context, actor internal.AuthContext, id int64) error {
	ok, err := s.repo.MarkRead(ctx, id, actor.UserID)
	if err != nil {
		return internal.NewInternalError("failed to update notification", err)
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, actor internal.AuthContext) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return 0, internal.NewInternalError("failed to update notifications", err)
	}
	s.logger.Debug("notifications marked read", "user_id", actor.UserID, "count", n)
	return n, nil
}
