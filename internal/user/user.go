package user

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	userDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/user"
)

type User struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Role         internal.Role `json:"role"`
	DepartmentID *int64        `json:"department_id,omitempty"`
	IsActive     bool          `json:"is_active"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (u *User) IsHRAdmin() bool {
	return u.Role == internal.RoleHRAdmin
}

type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Faculty   *string   `json:"faculty,omitempty"`
	HeadID    *int64    `json:"head_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	role, _ := internal.ParseRole(u.Role)
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         role,
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func DepartmentToDataModel(d *Department) *userDatamodel.Department {
	return &userDatamodel.Department{
		ID:        d.ID,
		Name:      d.Name,
		Faculty:   d.Faculty,
		HeadID:    d.HeadID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func DepartmentFromDataModel(d *userDatamodel.Department) *Department {
	return &Department{
		ID:        d.ID,
		Name:      d.Name,
		Faculty:   d.Faculty,
		HeadID:    d.HeadID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
