package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/leave-management/api"
	"github.com/frahmantamala/leave-management/internal/audit"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/balance"
	"github.com/frahmantamala/leave-management/internal/calendar"
	"github.com/frahmantamala/leave-management/internal/document"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/internal/report"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/internal/transport/rest"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

func startHTTPServer() error {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Env, cfg.Logging.Level, cfg.Logging.Format)
	lg := logger.LoggerWrapper()

	app, err := newApplication(cfg, lg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	router := chi.NewRouter()
	if err := setupRoutes(router, app); err != nil {
		app.Close()
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		lg.Info("starting HTTP server", "address", addr, "approval_chain", cfg.Leave.ApprovalChain)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Shutdown(context.Background())
			return fmt.Errorf("server failed to start: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		lg.Error("server shutdown error", "error", err)
	}
	app.Shutdown(ctx)

	lg.Info("server stopped")
	return nil
}

func setupRoutes(router chi.Router, app *application) error {
	base := transport.NewBaseHandler(app.Logger)

	rbac, err := auth.NewRBACAuthorization(base)
	if err != nil {
		return fmt.Errorf("failed to load access policy: %w", err)
	}

	doc, err := api.Load(context.Background())
	if err != nil {
		return err
	}

	health := rest.NewHealthHandler(app.SQL)
	health.AddCheck("mail_queue", func(ctx context.Context) (map[string]any, error) {
		return map[string]any{"queued": app.MailPool.Queued()}, nil
	})

	handlers := rest.Handlers{
		Health:       health,
		Auth:         auth.NewHandler(base, app.Auth),
		RBAC:         rbac,
		User:         user.NewHandler(base, app.Users),
		LeaveType:    leavetype.NewHandler(base, app.LeaveTypes),
		Balance:      balance.NewHandler(base, app.Ledger),
		Leave:        leave.NewHandler(base, app.Workflow),
		Calendar:     calendar.NewHandler(base, app.Calendar, app.Calculator),
		Document:     document.NewHandler(base, app.Documents, app.Config.Storage.MaxFileSize),
		Notification: notification.NewHandler(base, app.Notification),
		Audit:        audit.NewHandler(base, app.Audit),
		Report:       report.NewHandler(base, app.Reports),
	}

	return rest.RegisterAllRoutes(router, handlers, rest.Options{
		AllowedOrigins: app.Config.Server.AllowedOrigins,
		LoginPerSecond: app.Config.RateLimit.LoginPerSecond,
		LoginBurst:     app.Config.RateLimit.LoginBurst,
		OpenAPI:        doc,
		OpenAPISpec:    api.Spec,
	})
}
