package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/audit"
	auditPostgres "github.com/frahmantamala/leave-management/internal/audit/postgres"
	"github.com/frahmantamala/leave-management/internal/balance"
	balancePostgres "github.com/frahmantamala/leave-management/internal/balance/postgres"
	"github.com/frahmantamala/leave-management/internal/calendar"
	calendarPostgres "github.com/frahmantamala/leave-management/internal/calendar/postgres"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

var (
	holidaysCmd = &cobra.Command{
		Use:   "holidays",
		Short: "Holiday calendar maintenance",
	}
	importHolidaysCmd = &cobra.Command{
		Use:   "import",
		Short: "Copy recurring holidays into a year",
		RunE:  runImportHolidays,
	}

	balancesCmd = &cobra.Command{
		Use:   "balances",
		Short: "Leave balance maintenance",
	}
	allocateBalancesCmd = &cobra.Command{
		Use:   "allocate",
		Short: "Create missing balances of every active user and leave type for a year",
		RunE:  runAllocateBalances,
	}

	holidayYear int
	balanceYear int
)

// systemActor is recorded in the audit log for CLI changes.
var systemActor = internal.AuthContext{Role: internal.RoleHRAdmin}

func runImportHolidays(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	logger.Init(cfg.Env, cfg.Logging.Level, cfg.Logging.Format)
	lg := logger.LoggerWrapper()

	sqlDB, db, err := initDB(cfg.Database, cfg.Env)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	auditSvc := audit.NewService(auditPostgres.NewAuditRepository(db), lg)
	svc := calendar.NewService(calendarPostgres.NewCalendarRepository(db), auditSvc, lg)

	created, err := svc.ImportRecurring(cmd.Context(), systemActor, holidayYear)
	if err != nil {
		return err
	}
	for _, h := range created {
		fmt.Printf("%s  %s\n", h.Date, h.Name)
	}
	fmt.Printf("Imported %d holidays into %d\n", len(created), holidayYear)
	return nil
}

func runAllocateBalances(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	logger.Init(cfg.Env, cfg.Logging.Level, cfg.Logging.Format)

	sqlDB, db, err := initDB(cfg.Database, cfg.Env)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	ledger := balance.NewLedger(balancePostgres.NewBalanceRepository(db), logger.LoggerWrapper())
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	created, err := ledger.AllocateYear(ctx, balanceYear)
	if err != nil {
		return err
	}
	fmt.Printf("Allocated %d balances for %d\n", created, balanceYear)
	return nil
}

func init() {
	year := time.Now().Year()
	importHolidaysCmd.Flags().IntVar(&holidayYear, "year", year+1, "year to copy recurring holidays into")
	allocateBalancesCmd.Flags().IntVar(&balanceYear, "year", year, "balance year to allocate")

	holidaysCmd.AddCommand(importHolidaysCmd)
	balancesCmd.AddCommand(allocateBalancesCmd)
}
