package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/leave-management/internal/balance"
	balancePostgres "github.com/frahmantamala/leave-management/internal/balance/postgres"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed departments, one user per role, the standard leave types, public holidays and this year's balances.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configDir)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger.Init(cfg.Env, cfg.Logging.Level, cfg.Logging.Format)

		sqlDB, db, err := initDB(cfg.Database, cfg.Env)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		if clearData {
			if err := db.Exec(`TRUNCATE audit_logs, notifications, documents, leave_approvals, leave_applications,
				leave_balances, leave_types, academic_events, holidays, users, departments RESTART IDENTITY CASCADE`).Error; err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		departments := []struct {
			Name    string
			Faculty string
		}{
			{"Computer Science", "Engineering"},
			{"Civil Engineering", "Engineering"},
			{"Mathematics", "Science"},
			{"Human Resources", ""},
		}
		for _, d := range departments {
			var faculty any
			if d.Faculty != "" {
				faculty = d.Faculty
			}
			if err := db.Exec(`INSERT INTO departments (name, faculty, created_at, updated_at)
				VALUES (?, ?, now(), now()) ON CONFLICT (name) DO NOTHING`, d.Name, faculty).Error; err != nil {
				log.Fatalf("failed to insert department %s: %v", d.Name, err)
			}
		}
		fmt.Println("Seeded departments")

		users := []struct {
			Email      string
			Name       string
			Role       string
			Department string
		}{
			{"staff@campus.edu", "Sam Staff", "staff", "Computer Science"},
			{"lecturer@campus.edu", "Lee Lecturer", "staff", "Mathematics"},
			{"head.cs@campus.edu", "Hana Head", "department_head", "Computer Science"},
			{"dean.eng@campus.edu", "Dian Dean", "dean", "Civil Engineering"},
			{"director.sci@campus.edu", "Dara Director", "director", "Mathematics"},
			{"principal@campus.edu", "Prita Principal", "principal", ""},
			{"hr@campus.edu", "Hari HR", "hr_admin", "Human Resources"},
		}
		for _, u := range users {
			if err := seedUser(db, u.Email, u.Name, u.Role, u.Department, string(hash)); err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
		}
		if err := db.Exec(`UPDATE departments SET head_id = (SELECT id FROM users WHERE email = ?)
			WHERE name = ? AND head_id IS NULL`, "head.cs@campus.edu", "Computer Science").Error; err != nil {
			log.Fatalf("failed to assign department head: %v", err)
		}
		fmt.Println("Seeded users (password: password)")

		leaveTypes := []struct {
			Name               string
			Desc               string
			Days               float64
			RequiresAttachment bool
			IsAcademic         bool
			MaxPerRequest      any
			ApplicableTo       string
		}{
			{"Annual", "Paid annual leave", 12, false, false, 10.0, ""},
			{"Sick", "Sick leave with a medical certificate", 14, true, false, nil, ""},
			{"Maternity", "Maternity leave", 90, true, false, nil, ""},
			{"Study", "Leave for study or research", 30, true, true, nil, "staff,department_head"},
			{"Compassionate", "Bereavement or family emergency", 3, false, false, 3.0, ""},
		}
		for _, lt := range leaveTypes {
			if err := db.Exec(`INSERT INTO leave_types (name, description, default_days, requires_attachment, is_academic,
				max_days_per_request, applicable_to, is_active, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, true, now(), now()) ON CONFLICT (name) DO NOTHING`,
				lt.Name, lt.Desc, lt.Days, lt.RequiresAttachment, lt.IsAcademic, lt.MaxPerRequest, lt.ApplicableTo).Error; err != nil {
				log.Fatalf("failed to insert leave type %s: %v", lt.Name, err)
			}
		}
		fmt.Println("Seeded leave types")

		year := time.Now().Year()
		holidays := []struct {
			Month     time.Month
			Day       int
			Name      string
			Type      string
			Recurring bool
		}{
			{time.January, 1, "New Year's Day", "public", true},
			{time.May, 1, "Labour Day", "public", true},
			{time.August, 17, "Independence Day", "public", true},
			{time.December, 25, "Christmas Day", "religious", true},
			{time.September, 1, "Founders' Day", "institutional", false},
		}
		for _, h := range holidays {
			date := time.Date(year, h.Month, h.Day, 0, 0, 0, 0, time.UTC)
			if err := db.Exec(`INSERT INTO holidays (date, name, type, is_recurring, created_at, updated_at)
				VALUES (?, ?, ?, ?, now(), now()) ON CONFLICT (date) DO NOTHING`,
				date, h.Name, h.Type, h.Recurring).Error; err != nil {
				log.Fatalf("failed to insert holiday %s: %v", h.Name, err)
			}
		}
		fmt.Println("Seeded holidays for", year)

		ledger := balance.NewLedger(balancePostgres.NewBalanceRepository(db), logger.LoggerWrapper())
		created, err := ledger.AllocateYear(context.Background(), year)
		if err != nil {
			log.Fatalf("failed to allocate balances: %v", err)
		}
		fmt.Printf("Allocated %d balances for %d\n", created, year)
	},
}

func seedUser(db *gorm.DB, email, name, role, department, hash string) error {
	var exists int
	if err := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row().Scan(&exists); err == nil {
		fmt.Println("user already exists:", email)
		return nil
	}

	var departmentID any
	if department != "" {
		var id int64
		if err := db.Raw("SELECT id FROM departments WHERE name = ?", department).Row().Scan(&id); err != nil {
			return fmt.Errorf("department %s: %w", department, err)
		}
		departmentID = id
	}
	return db.Exec(`INSERT INTO users (email, name, password_hash, role, department_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, true, now(), now())`, email, name, hash, role, departmentID).Error
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}
