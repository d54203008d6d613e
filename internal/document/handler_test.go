package document_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/document"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type MockService struct {
	uploaded   []string
	shouldFail bool
}

func (m *MockService) Upload(_ context.Context, actor internal.AuthContext, dto document.UploadDTO) (*document.Document, error) {
	if m.shouldFail {
		return nil, document.ErrFileType
	}
	body, _ := io.ReadAll(dto.Content)
	m.uploaded = append(m.uploaded, dto.FileName)
	return &document.Document{ID: 5, UserID: actor.UserID, FileName: dto.FileName, ContentType: "application/pdf", SizeBytes: int64(len(body))}, nil
}

func (m *MockService) List(_ context.Context, actor internal.AuthContext, filter document.ListFilter) ([]*document.Document, error) {
	doc := &document.Document{ID: 5, UserID: actor.UserID, FileName: "a.pdf"}
	if filter.ApplicationID != nil {
		doc.LeaveApplicationID = filter.ApplicationID
	}
	return []*document.Document{doc}, nil
}

func (m *MockService) Open(_ context.Context, _ internal.AuthContext, id int64) (*document.Document, io.ReadCloser, error) {
	if id != 5 {
		return nil, nil, document.ErrDocumentNotFound
	}
	doc := &document.Document{ID: 5, FileName: "sick note.pdf", ContentType: "application/pdf", SizeBytes: int64(len(pdfBytes))}
	return doc, io.NopCloser(strings.NewReader(pdfBytes)), nil
}

func (m *MockService) Delete(_ context.Context, _ internal.AuthContext, id int64) error {
	if id == 6 {
		return document.ErrAlreadyAttached
	}
	return nil
}

var _ = Describe("Handler", func() {
	var (
		service *MockService
		router  chi.Router
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = &MockService{}
		handler := document.NewHandler(&transport.BaseHandler{Logger: slogger}, service, 1024)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				actor := internal.AuthContext{UserID: 1, Role: internal.RoleStaff}
				next.ServeHTTP(w, r.WithContext(internal.ContextWithAuth(r.Context(), actor)))
			})
		})
		router.Post("/documents", handler.UploadDocument)
		router.Get("/documents", handler.GetDocuments)
		router.Get("/documents/{id}/content", handler.DownloadDocument)
		router.Delete("/documents/{id}", handler.DeleteDocument)
	})

	multipartRequest := func(field, name, content string) *http.Request {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(field, name)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte(content))
		Expect(err).NotTo(HaveOccurred())
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	It("uploads a multipart file with 201", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, multipartRequest("file", "note.pdf", pdfBytes))

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(service.uploaded).To(Equal([]string{"note.pdf"}))

		var doc document.Document
		Expect(json.NewDecoder(w.Body).Decode(&doc)).To(Succeed())
		Expect(doc.SizeBytes).To(Equal(int64(len(pdfBytes))))
	})

	It("requires the file field", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, multipartRequest("attachment", "note.pdf", pdfBytes))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(service.uploaded).To(BeEmpty())
	})

	It("maps service validation errors to 400", func() {
		service.shouldFail = true
		w := httptest.NewRecorder()
		router.ServeHTTP(w, multipartRequest("file", "note.pdf", "text"))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("filters by application", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents?application_id=12", nil))
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp document.DocumentsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(*resp.Documents[0].LeaveApplicationID).To(Equal(int64(12)))

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents?application_id=x", nil))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("streams the content as an attachment", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents/5/content", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/pdf"))
		Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="sick note.pdf"`))
		Expect(w.Body.String()).To(Equal(pdfBytes))
	})

	It("maps delete conflicts to 409", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/documents/6", nil))
		Expect(w.Code).To(Equal(http.StatusConflict))

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/documents/5", nil))
		Expect(w.Code).To(Equal(http.StatusNoContent))
	})
})
