package leavetype_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/balance"
	balancePostgres "github.com/frahmantamala/leave-management/internal/balance/postgres"
	"github.com/frahmantamala/leave-management/internal/core/database"
	"github.com/frahmantamala/leave-management/internal/core/database/dbtest"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	leavetypePostgres "github.com/frahmantamala/leave-management/internal/leavetype/postgres"
	"github.com/frahmantamala/leave-management/internal/transport"
)

var _ = Describe("Leave Type Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *leavetype.Handler
		router  chi.Router
		actor   internal.AuthContext
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		ledger := balance.NewLedger(balancePostgres.NewBalanceRepository(db), slogger)
		service := leavetype.NewService(leavetypePostgres.NewLeaveTypeRepository(db), database.NewTransactor(db), ledger, &MockAudit{}, slogger)
		handler = leavetype.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		for _, lt := range []*leaveDatamodel.LeaveType{
			{Name: "Annual", Description: "Yearly leave", DefaultDays: 12, IsActive: true},
			{Name: "Sick", Description: "Medical leave", DefaultDays: 10, RequiresAttachment: true, IsActive: true},
			{Name: "Sabbatical", Description: "Retired policy", DefaultDays: 0},
		} {
			Expect(db.Create(lt).Error).To(Succeed())
		}

		actor = internal.AuthContext{UserID: 1, Role: internal.RoleStaff}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithAuth(r.Context(), actor)))
			})
		})
		router.Get("/leave-types", handler.GetLeaveTypes)
		router.Get("/leave-types/{id}", handler.GetLeaveType)
		router.Post("/leave-types", handler.CreateLeaveType)
		router.Patch("/leave-types/{id}", handler.UpdateLeaveType)
	})

	serve := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
		return w
	}

	names := func(w *httptest.ResponseRecorder) []string {
		var response leavetype.LeaveTypesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		out := make([]string, len(response.LeaveTypes))
		for i, lt := range response.LeaveTypes {
			out[i] = lt.Name
		}
		return out
	}

	It("should handle GET /leave-types request successfully", func() {
		w := serve(http.MethodGet, "/leave-types", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
		Expect(names(w)).To(Equal([]string{"Annual", "Sick"}))
	})

	It("shows inactive types to HR admins only", func() {
		w := serve(http.MethodGet, "/leave-types?include_inactive=true", nil)
		Expect(names(w)).To(HaveLen(2))

		actor.Role = internal.RoleHRAdmin
		w = serve(http.MethodGet, "/leave-types?include_inactive=true", nil)
		Expect(names(w)).To(ConsistOf("Annual", "Sick", "Sabbatical"))
	})

	It("returns 404 for an unknown id", func() {
		w := serve(http.MethodGet, "/leave-types/999", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("creates a leave type with 201", func() {
		w := serve(http.MethodPost, "/leave-types", map[string]interface{}{
			"name": "Study", "default_days": 5, "max_days_per_request": 3,
		})
		Expect(w.Code).To(Equal(http.StatusCreated))

		var lt leavetype.LeaveType
		Expect(json.NewDecoder(w.Body).Decode(&lt)).To(Succeed())
		Expect(lt.ID).NotTo(BeZero())
		Expect(*lt.MaxDaysPerRequest).To(Equal(3.0))
	})

	It("returns the validation envelope on bad input", func() {
		w := serve(http.MethodPost, "/leave-types", map[string]interface{}{"default_days": 5})
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var body struct {
			Error struct {
				Type string `json:"type"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Error.Type).To(Equal("VALIDATION_ERROR"))
	})

	It("patches a leave type", func() {
		w := serve(http.MethodPatch, "/leave-types/1", map[string]interface{}{"description": "Paid yearly leave"})
		Expect(w.Code).To(Equal(http.StatusOK))

		var lt leavetype.LeaveType
		Expect(json.NewDecoder(w.Body).Decode(&lt)).To(Succeed())
		Expect(lt.Description).To(Equal("Paid yearly leave"))
		Expect(lt.DefaultDays).To(Equal(12.0))
	})
})
