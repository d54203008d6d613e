package cmd

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/audit"
	auditPostgres "github.com/frahmantamala/leave-management/internal/audit/postgres"
	"github.com/frahmantamala/leave-management/internal/auth"
	authPostgres "github.com/frahmantamala/leave-management/internal/auth/postgres"
	"github.com/frahmantamala/leave-management/internal/balance"
	balancePostgres "github.com/frahmantamala/leave-management/internal/balance/postgres"
	"github.com/frahmantamala/leave-management/internal/calendar"
	calendarPostgres "github.com/frahmantamala/leave-management/internal/calendar/postgres"
	"github.com/frahmantamala/leave-management/internal/core/database"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/core/storage"
	"github.com/frahmantamala/leave-management/internal/document"
	documentPostgres "github.com/frahmantamala/leave-management/internal/document/postgres"
	"github.com/frahmantamala/leave-management/internal/leave"
	leavePostgres "github.com/frahmantamala/leave-management/internal/leave/postgres"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	leavetypePostgres "github.com/frahmantamala/leave-management/internal/leavetype/postgres"
	"github.com/frahmantamala/leave-management/internal/mailer"
	"github.com/frahmantamala/leave-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/leave-management/internal/notification/postgres"
	"github.com/frahmantamala/leave-management/internal/report"
	reportPostgres "github.com/frahmantamala/leave-management/internal/report/postgres"
	"github.com/frahmantamala/leave-management/internal/user"
	userPostgres "github.com/frahmantamala/leave-management/internal/user/postgres"
)

// application holds every long-lived service. The HTTP server and the
// maintenance commands share it.
type application struct {
	Config *internal.Config
	Logger *slog.Logger

	SQL  *sqlx.DB
	Gorm *gorm.DB

	Bus      *events.EventBus
	MailPool *mailer.Pool

	Auth         *auth.Service
	Tokens       *auth.JWTTokenGenerator
	Audit        *audit.Service
	Ledger       *balance.Ledger
	Calendar     *calendar.Service
	Calculator   *calendar.Calculator
	Users        *user.Service
	LeaveTypes   *leavetype.Service
	Documents    *document.Service
	Workflow     *leave.Workflow
	Notification *notification.Service
	Reports      *report.Service
}

// applicationViewer breaks the cycle between documents and the workflow:
// documents ask the workflow who may see an application, the workflow
// attaches documents on submit.
type applicationViewer struct {
	workflow *leave.Workflow
}

func (v *applicationViewer) CanView(ctx context.Context, actor internal.AuthContext, applicationID int64) error {
	return v.workflow.CanView(ctx, actor, applicationID)
}

func newApplication(cfg *internal.Config, lg *slog.Logger) (*application, error) {
	sqlDB, gormDB, err := initDB(cfg.Database, cfg.Env)
	if err != nil {
		return nil, err
	}

	app := &application{Config: cfg, Logger: lg, SQL: sqlDB, Gorm: gormDB}
	app.Bus = events.NewEventBus(lg)
	tx := database.NewTransactor(gormDB)
	directory := leavePostgres.NewDirectory(gormDB)

	app.Tokens = auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	app.Auth = auth.NewService(authPostgres.NewRepository(gormDB), app.Tokens, cfg.Security.BCryptCost, lg)

	app.Audit = audit.NewService(auditPostgres.NewAuditRepository(gormDB), lg)
	app.Ledger = balance.NewLedger(balancePostgres.NewBalanceRepository(gormDB), lg)
	app.Calendar = calendar.NewService(calendarPostgres.NewCalendarRepository(gormDB), app.Audit, lg)
	app.Calculator = calendar.NewCalculator(app.Calendar)
	app.Users = user.NewService(userPostgres.NewUserRepository(gormDB), tx, app.Ledger, app.Auth, app.Audit, lg)
	app.LeaveTypes = leavetype.NewService(leavetypePostgres.NewLeaveTypeRepository(gormDB), tx, app.Ledger, app.Audit, lg)

	files, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize document storage: %w", err)
	}
	viewer := &applicationViewer{}
	app.Documents = document.NewService(
		documentPostgres.NewDocumentRepository(gormDB),
		files,
		viewer,
		app.Audit,
		document.Limits{MaxFileSize: cfg.Storage.MaxFileSize, AllowedTypes: cfg.Storage.AllowedTypes},
		lg,
	)

	router, err := leave.NewRouter(cfg.Leave.ApprovalChain, directory)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("invalid approval chain: %w", err)
	}
	app.Workflow = leave.NewWorkflow(leave.Dependencies{
		Repo:          leavePostgres.NewLeaveRepository(gormDB),
		Directory:     directory,
		Transactor:    tx,
		Days:          app.Calculator,
		Restrictions:  app.Calendar,
		Ledger:        app.Ledger,
		Documents:     app.Documents,
		Router:        router,
		Events:        app.Bus,
		Logger:        lg,
		MinNoticeDays: cfg.Leave.MinNoticeDays,
	})
	viewer.workflow = app.Workflow

	app.MailPool = mailer.NewPool(newMailSender(cfg.Mail, lg), mailer.Config{
		MaxWorkers:   cfg.Mail.MaxWorkers,
		JobQueueSize: cfg.Mail.JobQueueSize,
	}, lg)
	renderer, err := notification.NewRenderer()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	app.Notification = notification.NewService(notificationPostgres.NewNotificationRepository(gormDB), renderer, app.MailPool, lg)
	app.Reports = report.NewService(reportPostgres.NewReportRepository(sqlDB), directory, lg)

	audit.NewEventHandler(app.Audit).Register(app.Bus)
	notification.NewEventHandler(app.Notification, directory, lg).Register(app.Bus)

	return app, nil
}

func newMailSender(cfg internal.MailConfig, lg *slog.Logger) mailer.Sender {
	if !cfg.Enabled {
		return mailer.LogSender{Logger: lg}
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
}

// Shutdown lets in-flight events and mail finish before the pool is closed.
func (a *application) Shutdown(ctx context.Context) {
	if a.Bus != nil {
		if err := a.Bus.Drain(ctx); err != nil {
			a.Logger.Error("event handlers did not finish", "error", err)
		}
	}
	if a.MailPool != nil {
		if err := a.MailPool.Shutdown(ctx); err != nil {
			a.Logger.Error("mail pool shutdown incomplete", "error", err)
		}
	}
	a.Close()
}

func (a *application) Close() {
	if a.SQL != nil {
		if err := a.SQL.Close(); err != nil {
			a.Logger.Error("database close error", "error", err)
		}
	}
}

// initDB opens one pgx pool and shares it between sqlx (reports, health)
// and gorm (repositories).
func initDB(cfg internal.DatabaseConfig, env string) (*sqlx.DB, *gorm.DB, error) {
	const driver = "pgx"

	sqlDB, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logLevel := gormlogger.Warn
	if env == "production" {
		logLevel = gormlogger.Error
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to open gorm session: %w", err)
	}
	return sqlDB, gormDB, nil
}
