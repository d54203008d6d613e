package rest

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/leave-management/internal/audit"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/balance"
	"github.com/frahmantamala/leave-management/internal/calendar"
	"github.com/frahmantamala/leave-management/internal/document"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/internal/report"
	"github.com/frahmantamala/leave-management/internal/transport/middleware"
	"github.com/frahmantamala/leave-management/internal/transport/swagger"
	"github.com/frahmantamala/leave-management/internal/user"
)

type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	RBAC         *auth.RBACAuthorization
	User         *user.Handler
	LeaveType    *leavetype.Handler
	Balance      *balance.Handler
	Leave        *leave.Handler
	Calendar     *calendar.Handler
	Document     *document.Handler
	Notification *notification.Handler
	Audit        *audit.Handler
	Report       *report.Handler
}

type Options struct {
	AllowedOrigins string
	LoginPerSecond float64
	LoginBurst     int
	OpenAPI        *openapi3.T
	OpenAPISpec    []byte
}

func RegisterAllRoutes(router chi.Router, h Handlers, opts Options) error {
	validate, err := middleware.OpenAPIValidator(opts.OpenAPI)
	if err != nil {
		return fmt.Errorf("build request validator: %w", err)
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(chiMiddleware.StripSlashes)

	router.Get(swagger.SpecPath, swagger.SpecHandler(opts.OpenAPISpec))
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(validate)

		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		r.Route("/auth", func(ar chi.Router) {
			ar.With(middleware.RateLimitByIP(opts.LoginPerSecond, opts.LoginBurst)).Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.With(h.Auth.AuthMiddleware).Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			registerProtected(pr, h)
		})
	})
	return nil
}

func registerProtected(r chi.Router, h Handlers) {
	can := h.RBAC.Require

	r.Route("/users", func(ur chi.Router) {
		ur.With(can(auth.ResourceProfile, auth.ActionRead)).Get("/me", h.User.GetCurrentUser)
		ur.With(can(auth.ResourceUser, auth.ActionRead)).Get("/", h.User.ListUsers)
		ur.With(can(auth.ResourceUser, auth.ActionRead)).Get("/{id}", h.User.GetUser)
		ur.With(can(auth.ResourceBalance, auth.ActionReadAll)).Get("/{id}/balances", h.Balance.GetUserBalances)

		ur.Group(func(mr chi.Router) {
			mr.Use(can(auth.ResourceUser, auth.ActionManage))
			mr.Post("/", h.User.CreateUser)
			mr.Post("/{id}/deactivate", h.User.DeactivateUser)
			mr.Delete("/{id}", h.User.DeleteUser)
		})
	})

	r.Route("/departments", func(dr chi.Router) {
		dr.With(can(auth.ResourceDepartment, auth.ActionRead)).Get("/", h.User.ListDepartments)
		dr.With(can(auth.ResourceDepartment, auth.ActionManage)).Post("/", h.User.CreateDepartment)
		dr.With(can(auth.ResourceDepartment, auth.ActionManage)).Put("/{id}/head", h.User.AssignDepartmentHead)
	})

	r.Route("/leave-types", func(lr chi.Router) {
		lr.With(can(auth.ResourceLeaveType, auth.ActionRead)).Get("/", h.LeaveType.GetLeaveTypes)
		lr.With(can(auth.ResourceLeaveType, auth.ActionRead)).Get("/{id}", h.LeaveType.GetLeaveType)

		lr.Group(func(mr chi.Router) {
			mr.Use(can(auth.ResourceLeaveType, auth.ActionManage))
			mr.Post("/", h.LeaveType.CreateLeaveType)
			mr.Patch("/{id}", h.LeaveType.UpdateLeaveType)
			mr.Post("/{id}/deactivate", h.LeaveType.DeactivateLeaveType)
			mr.Delete("/{id}", h.LeaveType.DeleteLeaveType)
		})
	})

	r.With(can(auth.ResourceBalance, auth.ActionRead)).Get("/balances", h.Balance.GetMyBalances)

	r.Route("/leave-applications", func(lr chi.Router) {
		lr.With(can(auth.ResourceLeave, auth.ActionRead)).Get("/", h.Leave.GetMyApplications)
		lr.With(can(auth.ResourceLeave, auth.ActionRead)).Get("/{id}", h.Leave.GetApplication)
		lr.With(can(auth.ResourceLeave, auth.ActionWrite)).Post("/", h.Leave.SubmitApplication)
		lr.With(can(auth.ResourceLeave, auth.ActionWrite)).Post("/{id}/cancel", h.Leave.CancelApplication)
	})
	r.With(can(auth.ResourceLeave, auth.ActionReadAll)).Get("/admin/leave-applications", h.Leave.GetAllApplications)

	r.Route("/approvals", func(ar chi.Router) {
		ar.With(can(auth.ResourceApproval, auth.ActionRead)).Get("/pending", h.Leave.GetPendingApprovals)
		ar.With(can(auth.ResourceApproval, auth.ActionDecide)).Post("/{id}/decision", h.Leave.DecideApproval)
	})

	r.Group(func(cr chi.Router) {
		cr.Use(can(auth.ResourceCalendar, auth.ActionRead))
		cr.Get("/holidays", h.Calendar.GetHolidays)
		cr.Get("/academic-events", h.Calendar.GetEvents)
		cr.Get("/calendar/working-days", h.Calendar.GetWorkingDays)
	})
	r.Group(func(cr chi.Router) {
		cr.Use(can(auth.ResourceCalendar, auth.ActionManage))
		cr.Post("/holidays", h.Calendar.CreateHoliday)
		cr.Post("/holidays/import", h.Calendar.ImportHolidays)
		cr.Delete("/holidays/{id}", h.Calendar.DeleteHoliday)
		cr.Post("/academic-events", h.Calendar.CreateEvent)
		cr.Delete("/academic-events/{id}", h.Calendar.DeleteEvent)
	})

	r.Route("/documents", func(dr chi.Router) {
		dr.With(can(auth.ResourceDocument, auth.ActionRead)).Get("/", h.Document.GetDocuments)
		dr.With(can(auth.ResourceDocument, auth.ActionRead)).Get("/{id}/content", h.Document.DownloadDocument)
		dr.With(can(auth.ResourceDocument, auth.ActionWrite)).Post("/", h.Document.UploadDocument)
		dr.With(can(auth.ResourceDocument, auth.ActionWrite)).Delete("/{id}", h.Document.DeleteDocument)
	})

	r.Route("/notifications", func(nr chi.Router) {
		nr.With(can(auth.ResourceNotification, auth.ActionRead)).Get("/", h.Notification.GetNotifications)
		nr.With(can(auth.ResourceNotification, auth.ActionWrite)).Post("/read-all", h.Notification.MarkAllNotificationsRead)
		nr.With(can(auth.ResourceNotification, auth.ActionWrite)).Post("/{id}/read", h.Notification.MarkNotificationRead)
	})

	r.With(can(auth.ResourceAudit, auth.ActionRead)).Get("/audit-logs", h.Audit.GetAuditLogs)

	r.Route("/reports", func(rr chi.Router) {
		rr.Use(can(auth.ResourceReport, auth.ActionRead))
		rr.Get("/leave", h.Report.GetLeaveReport)
		rr.Get("/leave/export", h.Report.ExportLeaveReport)
	})
}
