package document

import (
	"time"

	documentDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/document"
)

// Document is an uploaded supporting file. It belongs to its uploader and
// can be attached to at most one leave application.
type Document struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	LeaveApplicationID *int64    `json:"leave_application_id,omitempty"`
	FileName           string    `json:"file_name"`
	ContentType        string    `json:"content_type"`
	SizeBytes          int64     `json:"size_bytes"`
	StorageKey         string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}

func (d *Document) IsAttached() bool {
	return d.LeaveApplicationID != nil
}

func ToDataModel(d *Document) *documentDatamodel.Document {
	return &documentDatamodel.Document{
		ID:                 d.ID,
		UserID:             d.UserID,
		LeaveApplicationID: d.LeaveApplicationID,
		FileName:           d.FileName,
		ContentType:        d.ContentType,
		SizeBytes:          d.SizeBytes,
		StorageKey:         d.StorageKey,
		CreatedAt:          d.CreatedAt,
	}
}

func FromDataModel(m *documentDatamodel.Document) *Document {
	return &Document{
		ID:                 m.ID,
		UserID:             m.UserID,
		LeaveApplicationID: m.LeaveApplicationID,
		FileName:           m.FileName,
		ContentType:        m.ContentType,
		SizeBytes:          m.SizeBytes,
		StorageKey:         m.StorageKey,
		CreatedAt:          m.CreatedAt,
	}
}
