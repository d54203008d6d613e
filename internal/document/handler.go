package document

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type ServiceAPI interface {
	Upload(ctx context.Context, actor internal.AuthContext, dto UploadDTO) (*Document, error)
	List(ctx context.Context, actor internal.AuthContext, filter ListFilter) ([]*Document, error)
	Open(ctx context.Context, actor internal.AuthContext, id int64) (*Document, io.ReadCloser, error)
	Delete(ctx context.Context, actor internal.AuthContext, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	maxFileSize int64
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, maxFileSize int64) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		maxFileSize: maxFileSize,
	}
}

// UploadDocument serves POST /documents (multipart, field "file").
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	// room for the multipart envelope around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteAppError(w, r, ErrFileTooLarge)
			return
		}
		h.WriteAppError(w, r, internal.NewValidationFieldError("file", "a multipart field named file is required", internal.ErrCodeRequired))
		return
	}
	defer file.Close()

	doc, err := h.Service.Upload(r.Context(), actor, UploadDTO{FileName: header.Filename, Content: file})
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, doc)
}

// GetDocuments serves GET /documents?application_id=
func (h *Handler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	var filter ListFilter
	if raw := r.URL.Query().Get("application_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.WriteAppError(w, r, internal.NewValidationFieldError("application_id", "invalid application_id", internal.ErrCodeValidationFailed))
			return
		}
		filter.ApplicationID = &id
	}

	docs, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DocumentsResponse{Documents: docs})
}

// DownloadDocument serves GET /documents/{id}/content
func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	doc, rc, err := h.Service.Open(r.Context(), actor, id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Error("failed to stream document", "document_id", id, "error", err)
	}
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
