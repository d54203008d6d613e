// Package dbtest opens throwaway sqlite databases with the full schema for
// repository and workflow tests.
package dbtest

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/audit"
	calendarDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/calendar"
	documentDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/document"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	notificationDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/notification"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

// Models lists every table the application owns.
var Models = []interface{}{
	&userDatamodel.Department{},
	&userDatamodel.User{},
	&leaveDatamodel.LeaveType{},
	&leaveDatamodel.LeaveBalance{},
	&leaveDatamodel.LeaveApplication{},
	&leaveDatamodel.LeaveApproval{},
	&calendarDatamodel.Holiday{},
	&calendarDatamodel.AcademicEvent{},
	&documentDatamodel.Document{},
	&notificationDatamodel.Notification{},
	&auditDatamodel.AuditLog{},
}

// Open returns an in-memory database. The pool is pinned to one connection
// because every sqlite :memory: connection is a separate database.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, err
	}
	return db, nil
}
