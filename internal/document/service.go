package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	documentDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/document"
	"github.com/frahmantamala/leave-management/internal/core/storage"
)

type RepositoryAPI interface {
	Create(ctx context.Context, d *documentDatamodel.Document) error
	GetByID(ctx context.Context, id int64) (*documentDatamodel.Document, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*documentDatamodel.Document, error)
	ListByUser(ctx context.Context, userID int64) ([]*documentDatamodel.Document, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]*documentDatamodel.Document, error)
	// AttachUnattached links the owner's unattached documents to an application
	// and returns how many rows changed.
	AttachUnattached(ctx context.Context, ids []int64, applicationID, ownerID int64) (int64, error)
	DeleteUnattached(ctx context.Context, id int64) (bool, error)
}

// ApplicationViewer answers whether the actor may see a leave application.
type ApplicationViewer interface {
	CanView(ctx context.Context, actor internal.AuthContext, applicationID int64) error
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, action, entityType string, entityID int64, description string)
}

type Limits struct {
	MaxFileSize  int64
	AllowedTypes []string
}

var (
	ErrDocumentNotFound = internal.NewNotFoundError("document not found", internal.ErrCodeDocumentNotFound)
	ErrAlreadyAttached  = internal.NewConflictError("document is already attached to a leave application", internal.ErrCodeDuplicate)
	ErrFileTooLarge     = internal.NewValidationFieldError("file", "file is too large", internal.ErrCodeValidationFailed)
	ErrFileType         = internal.NewValidationFieldError("file", "file type is not allowed", internal.ErrCodeValidationFailed)
	ErrEmptyFile        = internal.NewValidationFieldError("file", "file is empty", internal.ErrCodeRequired)
)

type Service struct {
	repo    RepositoryAPI
	files   storage.FileStorage
	viewer  ApplicationViewer
	audit   AuditRecorder
	limits  Limits
	logger  *slog.Logger
	clock   func() time.Time
	newUUID func() uuid.UUID
}

func NewService(repo RepositoryAPI, files storage.FileStorage, viewer ApplicationViewer, audit AuditRecorder, limits Limits, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		files:   files,
		viewer:  viewer,
		audit:   audit,
		limits:  limits,
		logger:  logger,
		clock:   time.Now,
		newUUID: uuid.New,
	}
}

// Upload stores a file for the actor. The content type is sniffed from the
// bytes, the client supplied one is ignored.
func (s *Service) Upload(ctx context.Context, actor internal.AuthContext, dto UploadDTO) (*Document, error) {
	dto.FileName = strings.TrimSpace(dto.FileName)
	if dto.FileName != "" {
		dto.FileName = filepath.Base(dto.FileName)
	}
	if err := validation.ValidateStruct(dto); err != nil {
		return nil, err
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(dto.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, internal.NewValidationError("failed to read upload", internal.ErrCodeValidationFailed).WithCause(err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrEmptyFile
	}
	mime := mimetype.Detect(head)
	if !s.allowed(mime) {
		s.logger.Info("rejected upload", "user_id", actor.UserID, "content_type", mime.String())
		return nil, ErrFileType
	}

	key := fmt.Sprintf("%d/%s%s", actor.UserID, s.newUUID().String(), mime.Extension())
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), dto.Content), s.limits.MaxFileSize+1)
	size, err := s.files.Save(ctx, key, body)
	if err != nil {
		return nil, internal.NewInternalError("failed to store file", err)
	}
	if size > s.limits.MaxFileSize {
		s.removeFile(ctx, key)
		return nil, ErrFileTooLarge
	}

	row := &documentDatamodel.Document{
		UserID:      actor.UserID,
		FileName:    dto.FileName,
		ContentType: baseType(mime.String()),
		SizeBytes:   size,
		StorageKey:  key,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.removeFile(ctx, key)
		return nil, internal.NewInternalError("failed to save document", err)
	}

	s.logger.Info("document uploaded", "document_id", row.ID, "user_id", actor.UserID, "size", size)
	s.audit.Record(ctx, actor.UserID, "document.uploaded", "document", row.ID, row.FileName)
	return FromDataModel(row), nil
}

// List returns the actor's own documents, or the documents of one
// application when the actor may view it.
func (s *Service) List(ctx context.Context, actor internal.AuthContext, filter ListFilter) ([]*Document, error) {
	var (
		rows []*documentDatamodel.Document
		err  error
	)
	if filter.ApplicationID != nil {
		if err := s.viewer.CanView(ctx, actor, *filter.ApplicationID); err != nil {
			return nil, err
		}
		rows, err = s.repo.ListByApplication(ctx, *filter.ApplicationID)
	} else {
		rows, err = s.repo.ListByUser(ctx, actor.UserID)
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to list documents", err)
	}

	out := make([]*Document, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

// Open streams a document to its owner, to HR admins and to anyone who may
// view the application it is attached to. The caller closes the reader.
func (s *Service) Open(ctx context.Context, actor internal.AuthContext, id int64) (*Document, io.ReadCloser, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc.UserID != actor.UserID && !actor.IsHRAdmin() {
		if !doc.IsAttached() {
			return nil, nil, ErrDocumentNotFound
		}
		if err := s.viewer.CanView(ctx, actor, *doc.LeaveApplicationID); err != nil {
			return nil, nil, err
		}
	}

	rc, err := s.files.Open(ctx, doc.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("document file is missing", "document_id", id, "key", doc.StorageKey)
		return nil, nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to open document", err)
	}
	return doc, rc, nil
}

// Delete removes an unattached document of the actor.
func (s *Service) Delete(ctx context.Context, actor internal.AuthContext, id int64) error {
	doc, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if doc.UserID != actor.UserID {
		return ErrDocumentNotFound
	}
	if doc.IsAttached() {
		return ErrAlreadyAttached
	}

	deleted, err := s.repo.DeleteUnattached(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete document", err)
	}
	if !deleted {
		return ErrAlreadyAttached
	}
	s.removeFile(ctx, doc.StorageKey)
	s.audit.Record(ctx, actor.UserID, "document.deleted", "document", id, doc.FileName)
	return nil
}

// VerifyAttachable fails unless every id is a document of ownerID that is not
// attached yet.
func (s *Service) VerifyAttachable(ctx context.Context, ownerID int64, ids []int64) error {
	ids = unique(ids)
	rows, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return internal.NewInternalError("failed to load documents", err)
	}
	byID := make(map[int64]*documentDatamodel.Document, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	for _, id := range ids {
		row, ok := byID[id]
		if !ok || row.UserID != ownerID {
			return internal.NewNotFoundError(fmt.Sprintf("document %d not found", id), internal.ErrCodeDocumentNotFound)
		}
		if row.LeaveApplicationID != nil {
			return internal.NewConflictError(fmt.Sprintf("document %d is already attached", id), internal.ErrCodeDuplicate)
		}
	}
	return nil
}

// Attach links documents to an application in one guarded update. A document
// attached concurrently makes the whole call fail, so the surrounding
// transaction rolls back.
func (s *Service) Attach(ctx context.Context, ids []int64, applicationID, ownerID int64) error {
	ids = unique(ids)
	if len(ids) == 0 {
		return nil
	}
	n, err := s.repo.AttachUnattached(ctx, ids, applicationID, ownerID)
	if err != nil {
		return internal.NewInternalError("failed to attach documents", err)
	}
	if n != int64(len(ids)) {
		return ErrAlreadyAttached
	}
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*Document, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load document", err)
	}
	if row == nil {
		return nil, ErrDocumentNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) allowed(mime *mimetype.MIME) bool {
	for _, t := range s.limits.AllowedTypes {
		if mime.Is(t) {
			return true
		}
	}
	return false
}

func (s *Service) removeFile(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Error("failed to remove stored file", "key", key, "error", err)
	}
}

func baseType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		return strings.TrimSpace(contentType[:i])
	}
	return contentType
}

func unique(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
