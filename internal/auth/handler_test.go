package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

var _ = ginkgo.Describe("Handler", func() {
	var (
		mockRepo *mockUserRepository
		tokenGen *JWTTokenGenerator
		router   chi.Router
		seen     internal.AuthContext
	)

	ginkgo.BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator("test-access-secret-0123456789abcdef", "test-refresh-secret-0123456789abcdef", 15*time.Minute, 24*time.Hour)
		base := &transport.BaseHandler{Logger: logger}
		handler := NewHandler(base, NewService(mockRepo, tokenGen, bcrypt.MinCost, logger))
		rbac, err := NewRBACAuthorization(base)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		seen = internal.AuthContext{}
		record := func(w http.ResponseWriter, r *http.Request) {
			seen, _ = internal.AuthFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}

		router = chi.NewRouter()
		router.Post("/auth/login", handler.Login)
		router.Post("/auth/refresh", handler.RefreshToken)
		router.Post("/auth/logout", handler.Logout)
		router.Group(func(pr chi.Router) {
			pr.Use(handler.AuthMiddleware)
			pr.Get("/me", record)
			pr.With(rbac.Require(ResourceAudit, ActionRead)).Get("/audit-logs", record)
		})
	})

	serve := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			gomega.Expect(json.NewEncoder(&buf).Encode(body)).To(gomega.Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	login := func(email string) AuthTokens {
		w := serve(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "correct_password"})
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		var tokens AuthTokens
		gomega.Expect(json.NewDecoder(w.Body).Decode(&tokens)).To(gomega.Succeed())
		return tokens
	}

	ginkgo.It("should answer 401 with the error envelope on bad credentials", func() {
		w := serve(http.MethodPost, "/auth/login", "", map[string]string{"email": "sam@example.edu", "password": "nope"})
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		gomega.Expect(json.NewDecoder(w.Body).Decode(&body)).To(gomega.Succeed())
		gomega.Expect(body.Error.Code).To(gomega.Equal("INVALID_CREDENTIALS"))
	})

	ginkgo.It("should answer 403 for an inactive account", func() {
		w := serve(http.MethodPost, "/auth/login", "", map[string]string{"email": "gone@example.edu", "password": "correct_password"})
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("should put the caller into the request context", func() {
		tokens := login("sam@example.edu")

		w := serve(http.MethodGet, "/me", tokens.AccessToken, nil)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(seen).To(gomega.Equal(internal.AuthContext{UserID: 1, Role: internal.RoleStaff}))
	})

	ginkgo.It("should reject requests without a token", func() {
		w := serve(http.MethodGet, "/me", "", nil)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should reject a refresh token on protected routes", func() {
		tokens := login("sam@example.edu")
		w := serve(http.MethodGet, "/me", tokens.RefreshToken, nil)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should enforce the role policy", func() {
		w := serve(http.MethodGet, "/audit-logs", login("sam@example.edu").AccessToken, nil)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))

		w = serve(http.MethodGet, "/audit-logs", login("hana@example.edu").AccessToken, nil)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should refresh tokens", func() {
		tokens := login("sam@example.edu")
		w := serve(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": tokens.RefreshToken})
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should log out with 204", func() {
		tokens := login("sam@example.edu")
		w := serve(http.MethodPost, "/auth/logout", tokens.AccessToken, nil)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusNoContent))
	})
})

var _ = ginkgo.Describe("RBACAuthorization", func() {
	var rbac *RBACAuthorization

	ginkgo.BeforeEach(func() {
		var err error
		rbac, err = NewRBACAuthorization(transport.NewBaseHandler(nil))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.DescribeTable("policy",
		func(role internal.Role, resource, action string, want bool) {
			ok, err := rbac.Allowed(role, resource, action)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.Equal(want))
		},
		ginkgo.Entry("staff apply for leave", internal.RoleStaff, ResourceLeave, ActionWrite, true),
		ginkgo.Entry("staff decide approvals assigned to them", internal.RoleStaff, ResourceApproval, ActionDecide, true),
		ginkgo.Entry("staff cannot manage leave types", internal.RoleStaff, ResourceLeaveType, ActionManage, false),
		ginkgo.Entry("staff cannot read reports", internal.RoleStaff, ResourceReport, ActionRead, false),
		ginkgo.Entry("deans read reports", internal.RoleDean, ResourceReport, ActionRead, true),
		ginkgo.Entry("principals list users", internal.RolePrincipal, ResourceUser, ActionRead, true),
		ginkgo.Entry("principals cannot manage users", internal.RolePrincipal, ResourceUser, ActionManage, false),
		ginkgo.Entry("hr admins manage the calendar", internal.RoleHRAdmin, ResourceCalendar, ActionManage, true),
		ginkgo.Entry("hr admins read the audit log", internal.RoleHRAdmin, ResourceAudit, ActionRead, true),
		ginkgo.Entry("heads cannot read every balance", internal.RoleDepartmentHead, ResourceBalance, ActionReadAll, false),
	)

	ginkgo.It("should refuse requests that skipped authentication", func() {
		h := rbac.Require(ResourceProfile, ActionRead)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background()))
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
	})
})
