package report_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/report"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type MockService struct {
	filter report.Filter
}

func (m *MockService) LeaveReport(_ context.Context, actor internal.AuthContext, filter report.Filter) (*report.LeaveReport, error) {
	if actor.Role == internal.RoleStaff {
		return nil, internal.ErrForbidden
	}
	m.filter = filter
	return &report.LeaveReport{
		Year:        filter.Year,
		Departments: []*report.DepartmentRow{{DepartmentName: "History", LeaveTypeName: "Annual", Applications: 1, ApprovedDays: decimal.NewFromInt(3)}},
	}, nil
}

var _ = Describe("Handler", func() {
	var (
		service *MockService
		router  chi.Router
		role    internal.Role
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = &MockService{}
		handler := report.NewHandler(&transport.BaseHandler{Logger: slogger}, service)
		role = internal.RoleHRAdmin

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				actor := internal.AuthContext{UserID: 1, Role: role}
				next.ServeHTTP(w, r.WithContext(internal.ContextWithAuth(r.Context(), actor)))
			})
		})
		router.Get("/reports/leave", handler.GetLeaveReport)
		router.Get("/reports/leave/export", handler.ExportLeaveReport)
	})

	It("passes year and faculty through", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/leave?year=2025&faculty=Arts", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(service.filter).To(Equal(report.Filter{Year: 2025, Faculty: "Arts"}))
		Expect(w.Body.String()).To(ContainSubstring(`"approved_days":"3"`))
	})

	It("rejects a malformed year", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/leave?year=last", nil))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("serves a csv download", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/leave/export?year=2026", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
		Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="leave-report-2026.csv"`))
		Expect(strings.Split(w.Body.String(), "\n")[1]).To(Equal("History,,Annual,1,3.0"))
	})

	It("maps forbidden actors to 403", func() {
		role = internal.RoleStaff
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/leave", nil))
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})
})
