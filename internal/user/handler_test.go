package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/internal/user"
)

type MockService struct {
	users      map[int64]*user.User
	created    []user.CreateUserDTO
	shouldFail bool
}

func (m *MockService) Get(_ context.Context, id int64) (*user.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func (m *MockService) List(context.Context, user.ListFilter) ([]*user.User, error) {
	out := []*user.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *MockService) Create(_ context.Context, _ internal.AuthContext, dto user.CreateUserDTO) (*user.User, error) {
	if m.shouldFail {
		return nil, user.ErrEmailTaken
	}
	m.created = append(m.created, dto)
	return &user.User{ID: 42, Name: dto.Name, Email: dto.Email, Role: internal.Role(dto.Role), IsActive: true}, nil
}

func (m *MockService) Deactivate(_ context.Context, actor internal.AuthContext, id int64) (*user.User, error) {
	if id == actor.UserID {
		return nil, user.ErrSelfChange
	}
	return m.Get(context.Background(), id)
}

func (m *MockService) Delete(context.Context, internal.AuthContext, int64) error { return nil }

func (m *MockService) ListDepartments(context.Context) ([]*user.Department, error) {
	return []*user.Department{{ID: 1, Name: "Computer Science"}}, nil
}

func (m *MockService) CreateDepartment(_ context.Context, _ internal.AuthContext, dto user.CreateDepartmentDTO) (*user.Department, error) {
	return &user.Department{ID: 2, Name: dto.Name}, nil
}

func (m *MockService) AssignHead(_ context.Context, _ internal.AuthContext, id int64, dto user.AssignHeadDTO) (*user.Department, error) {
	return &user.Department{ID: id, Name: "Computer Science", HeadID: dto.UserID}, nil
}

var _ = Describe("Handler", func() {
	var (
		service *MockService
		handler *user.Handler
		router  chi.Router
		actor   internal.AuthContext
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = &MockService{users: map[int64]*user.User{
			1: {ID: 1, Name: "hana", Email: "hana@example.edu", Role: internal.RoleHRAdmin, IsActive: true},
			2: {ID: 2, Name: "sam", Email: "sam@example.edu", Role: internal.RoleStaff, IsActive: true},
		}}
		handler = user.NewHandler(&transport.BaseHandler{Logger: slogger}, service)
		actor = internal.AuthContext{UserID: 1, Role: internal.RoleHRAdmin}

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithAuth(r.Context(), actor)))
			})
		})
		router.Get("/users/me", handler.GetCurrentUser)
		router.Get("/users/{id}", handler.GetUser)
		router.Post("/users", handler.CreateUser)
		router.Post("/users/{id}/deactivate", handler.DeactivateUser)
		router.Put("/departments/{id}/head", handler.AssignDepartmentHead)
	})

	serve := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("returns the caller on GET /users/me without the password hash", func() {
		service.users[1].PasswordHash = "secret-hash"
		w := serve(http.MethodGet, "/users/me", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).NotTo(ContainSubstring("secret-hash"))

		var u user.User
		Expect(json.NewDecoder(w.Body).Decode(&u)).To(Succeed())
		Expect(u.Email).To(Equal("hana@example.edu"))
	})

	It("maps a missing user to 404", func() {
		w := serve(http.MethodGet, "/users/77", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("rejects a malformed id", func() {
		w := serve(http.MethodGet, "/users/abc", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("creates a user with 201", func() {
		w := serve(http.MethodPost, "/users", map[string]interface{}{
			"name": "olive", "email": "olive@example.edu", "password": "correct-horse", "role": "staff",
		})
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(service.created).To(HaveLen(1))
		Expect(service.created[0].Email).To(Equal("olive@example.edu"))
	})

	It("rejects unknown fields in the body", func() {
		w := serve(http.MethodPost, "/users", map[string]interface{}{"name": "olive", "is_admin": true})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(service.created).To(BeEmpty())
	})

	It("maps conflicts to 409", func() {
		service.shouldFail = true
		w := serve(http.MethodPost, "/users", map[string]interface{}{"name": "sam", "email": "sam@example.edu"})
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("refuses self deactivation with 403", func() {
		w := serve(http.MethodPost, "/users/1/deactivate", nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("assigns a department head", func() {
		w := serve(http.MethodPut, "/departments/1/head", map[string]interface{}{"user_id": 2})
		Expect(w.Code).To(Equal(http.StatusOK))

		var dept user.Department
		Expect(json.NewDecoder(w.Body).Decode(&dept)).To(Succeed())
		Expect(*dept.HeadID).To(Equal(int64(2)))
	})
})
