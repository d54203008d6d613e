package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/database"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
	"github.com/frahmantamala/leave-management/internal/leave"
)

// personRow is a user joined with the faculty of its department.
type personRow struct {
	userDatamodel.User `gorm:"embedded"`
	Faculty            *string `gorm:"column:faculty"`
}

func (p *personRow) toPerson() *leave.Person {
	person := &leave.Person{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		Role:         internal.Role(p.Role),
		DepartmentID: p.DepartmentID,
		IsActive:     p.IsActive,
	}
	if p.Faculty != nil {
		person.Faculty = *p.Faculty
	}
	return person
}

type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) people(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, d.db).
		Table("users").
		Select("users.*, departments.faculty AS faculty").
		Joins("LEFT JOIN departments ON departments.id = users.department_id")
}

func first(q *gorm.DB) (*leave.Person, error) {
	var rows []*personRow
	if err := q.Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toPerson(), nil
}

func (d *Directory) GetUser(ctx context.Context, id int64) (*leave.Person, error) {
	return first(d.people(ctx).Where("users.id = ?", id))
}

func (d *Directory) DepartmentHead(ctx context.Context, departmentID int64) (*leave.Person, error) {
	q := database.Conn(ctx, d.db).
		Table("users").
		Select("users.*, departments.faculty AS faculty").
		Joins("JOIN departments ON departments.head_id = users.id").
		Where("departments.id = ? AND users.is_active = ?", departmentID, true)
	return first(q)
}

func (d *Directory) FacultyLead(ctx context.Context, faculty string) (*leave.Person, error) {
	q := d.people(ctx).
		Where("departments.faculty = ? AND users.is_active = ?", faculty, true).
		Where("users.role IN ?", []string{string(internal.RoleDean), string(internal.RoleDirector)}).
		Order("CASE WHEN users.role = 'dean' THEN 0 ELSE 1 END, users.id ASC")
	return first(q)
}

func (d *Directory) ActiveByRole(ctx context.Context, role internal.Role) ([]*leave.Person, error) {
	var rows []*personRow
	err := d.people(ctx).
		Where("users.role = ? AND users.is_active = ?", string(role), true).
		Order("users.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*leave.Person, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toPerson())
	}
	return out, nil
}
