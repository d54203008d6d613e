package internal

import (
	"context"
	"strings"
	"time"
)

type Role string

const (
	RoleStaff          Role = "staff"
	RoleDepartmentHead Role = "department_head"
	RoleDean           Role = "dean"
	RolePrincipal      Role = "principal"
	RoleDirector       Role = "director"
	RoleHRAdmin        Role = "hr_admin"
)

var Roles = []Role{RoleStaff, RoleDepartmentHead, RoleDean, RolePrincipal, RoleDirector, RoleHRAdmin}

// ParseRole normalises a role name. "admin" is accepted for hr_admin.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "admin" {
		return RoleHRAdmin, true
	}
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// ParseRoleList reads a comma separated role list, dropping unknown names.
func ParseRoleList(csv string) []Role {
	var out []Role
	for _, part := range strings.Split(csv, ",") {
		if r, ok := ParseRole(part); ok {
			out = append(out, r)
		}
	}
	return out
}

func JoinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// AuthContext identifies the caller of a workflow operation.
type AuthContext struct {
	UserID int64
	Role   Role
}

func (a AuthContext) IsHRAdmin() bool {
	return a.Role == RoleHRAdmin
}

type ctxKey string

const contextAuthKey ctxKey = "auth"

func ContextWithAuth(ctx context.Context, auth AuthContext) context.Context {
	return context.WithValue(ctx, contextAuthKey, auth)
}

func AuthFromContext(ctx context.Context) (AuthContext, bool) {
	if ctx == nil {
		return AuthContext{}, false
	}
	auth, ok := ctx.Value(contextAuthKey).(AuthContext)
	return auth, ok && auth.UserID != 0
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
