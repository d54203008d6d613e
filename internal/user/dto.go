package user

import "github.com/frahmantamala/leave-management/internal"

type CreateUserDTO struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	Role         string `json:"role" validate:"required"`
	DepartmentID *int64 `json:"department_id"`
}

type CreateDepartmentDTO struct {
	Name    string `json:"name" validate:"required,max=100"`
	Faculty string `json:"faculty" validate:"max=100"`
}

// AssignHeadDTO names the new head of a department; a null user_id removes the head.
type AssignHeadDTO struct {
	UserID *int64 `json:"user_id"`
}

type ListFilter struct {
	DepartmentID    int64
	Role            internal.Role
	IncludeInactive bool
	Limit           int
	Offset          int
}

type UsersResponse struct {
	Users  []*User `json:"users"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}
