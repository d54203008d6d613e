package document

import "io"

// UploadDTO describes one file taken from a multipart request.
type UploadDTO struct {
	FileName string    `json:"file_name" validate:"required,max=255"`
	Content  io.Reader `json:"file" validate:"required"`
}

type ListFilter struct {
	ApplicationID *int64
}

type DocumentsResponse struct {
	Documents []*Document `json:"documents"`
}
