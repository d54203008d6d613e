package leave

import (
	"context"
	"fmt"

	"github.com/frahmantamala/leave-management/internal"
)

// Person is a user as seen by approval routing.
type Person struct {
	ID           int64
	Name         string
	Email        string
	Role         internal.Role
	DepartmentID *int64
	Faculty      string
	IsActive     bool
}

// Directory answers the organisational lookups routing needs. Lookups other
// than GetUser only return active users.
type Directory interface {
	GetUser(ctx context.Context, id int64) (*Person, error)
	DepartmentHead(ctx context.Context, departmentID int64) (*Person, error)
	// FacultyLead returns the dean of a faculty, or its director when there is no dean.
	FacultyLead(ctx context.Context, faculty string) (*Person, error)
	ActiveByRole(ctx context.Context, role internal.Role) ([]*Person, error)
}

// Approver is a resolved step. UserID is nil for role-level steps, in which
// case Candidates lists who may decide.
type Approver struct {
	Role       internal.Role
	UserID     *int64
	Candidates []int64
}

// DeciderIDs lists everyone who may decide the step.
func (a *Approver) DeciderIDs() []int64 {
	if a.UserID != nil {
		return []int64{*a.UserID}
	}
	return a.Candidates
}

// Resolver picks the approver for one position of the chain, or returns nil
// when the position is skipped for this applicant.
type Resolver interface {
	Role() internal.Role
	Resolve(ctx context.Context, applicant *Person) (*Approver, error)
}

var ErrNoApprover = internal.NewConflictError("no eligible approver is available for this application", internal.ErrCodeNoApprover)

func userApprover(role internal.Role, p *Person, applicant *Person) *Approver {
	if p == nil || p.ID == applicant.ID {
		return nil
	}
	id := p.ID
	return &Approver{Role: role, UserID: &id}
}

type departmentHeadResolver struct{ dir Directory }

func (departmentHeadResolver) Role() internal.Role { return internal.RoleDepartmentHead }

func (r departmentHeadResolver) Resolve(ctx context.Context, applicant *Person) (*Approver, error) {
	if applicant.DepartmentID == nil {
		return nil, nil
	}
	head, err := r.dir.DepartmentHead(ctx, *applicant.DepartmentID)
	if err != nil {
		return nil, err
	}
	return userApprover(r.Role(), head, applicant), nil
}

type deanResolver struct{ dir Directory }

func (deanResolver) Role() internal.Role { return internal.RoleDean }

func (r deanResolver) Resolve(ctx context.Context, applicant *Person) (*Approver, error) {
	if applicant.Faculty == "" {
		return nil, nil
	}
	lead, err := r.dir.FacultyLead(ctx, applicant.Faculty)
	if err != nil {
		return nil, err
	}
	return userApprover(r.Role(), lead, applicant), nil
}

type principalResolver struct{ dir Directory }

func (principalResolver) Role() internal.Role { return internal.RolePrincipal }

func (r principalResolver) Resolve(ctx context.Context, applicant *Person) (*Approver, error) {
	if applicant.Role == internal.RolePrincipal {
		return nil, nil
	}
	principals, err := r.dir.ActiveByRole(ctx, internal.RolePrincipal)
	if err != nil || len(principals) == 0 {
		return nil, err
	}
	return userApprover(r.Role(), principals[0], applicant), nil
}

// hrAdminResolver is the terminal step. It is role-level and never skipped.
type hrAdminResolver struct{ dir Directory }

func (hrAdminResolver) Role() internal.Role { return internal.RoleHRAdmin }

func (r hrAdminResolver) Resolve(ctx context.Context, applicant *Person) (*Approver, error) {
	admins, err := r.dir.ActiveByRole(ctx, internal.RoleHRAdmin)
	if err != nil {
		return nil, err
	}
	var candidates []int64
	for _, a := range admins {
		if a.ID != applicant.ID {
			candidates = append(candidates, a.ID)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoApprover
	}
	return &Approver{Role: r.Role(), Candidates: candidates}, nil
}

// Router walks the configured resolvers in order. Steps are resolved one at a
// time so that only the currently open step exists as a row.
type Router struct {
	resolvers []Resolver
}

// NewRouter builds the chain from role names. hr_admin always closes the chain
// and is appended when missing.
func NewRouter(order []string, dir Directory) (*Router, error) {
	available := map[internal.Role]Resolver{
		internal.RoleDepartmentHead: departmentHeadResolver{dir},
		internal.RoleDean:           deanResolver{dir},
		internal.RolePrincipal:      principalResolver{dir},
		internal.RoleHRAdmin:        hrAdminResolver{dir},
	}

	seen := make(map[internal.Role]bool)
	var resolvers []Resolver
	for _, name := range order {
		role, ok := internal.ParseRole(name)
		resolver, known := available[role]
		if !ok || !known {
			return nil, fmt.Errorf("unknown approval step %q", name)
		}
		if seen[role] {
			return nil, fmt.Errorf("approval step %q listed twice", name)
		}
		if role == internal.RoleHRAdmin && len(resolvers) != len(order)-1 {
			return nil, fmt.Errorf("approval step %q must be last", name)
		}
		seen[role] = true
		resolvers = append(resolvers, resolver)
	}
	if !seen[internal.RoleHRAdmin] {
		resolvers = append(resolvers, available[internal.RoleHRAdmin])
	}
	return &Router{resolvers: resolvers}, nil
}

// NewRouterWith builds a router from explicit resolvers.
func NewRouterWith(resolvers ...Resolver) *Router {
	return &Router{resolvers: resolvers}
}

func (r *Router) Roles() []internal.Role {
	roles := make([]internal.Role, len(r.resolvers))
	for i, res := range r.resolvers {
		roles[i] = res.Role()
	}
	return roles
}

// First resolves the opening step of a new application.
func (r *Router) First(ctx context.Context, applicant *Person) (*Approver, error) {
	approver, err := r.resolveFrom(ctx, applicant, 0, nil)
	if err != nil {
		return nil, err
	}
	if approver == nil {
		return nil, ErrNoApprover
	}
	return approver, nil
}

// Next resolves the step after the one held by afterRole. A user who already
// approved an earlier step (approvedBy) is not asked again; the role-level HR
// step is kept regardless. A nil approver means the chain is finished.
func (r *Router) Next(ctx context.Context, applicant *Person, afterRole internal.Role, approvedBy []int64) (*Approver, error) {
	for i, res := range r.resolvers {
		if res.Role() == afterRole {
			return r.resolveFrom(ctx, applicant, i+1, approvedBy)
		}
	}
	return nil, fmt.Errorf("approval step %q is not part of the chain", afterRole)
}

func (r *Router) resolveFrom(ctx context.Context, applicant *Person, start int, approvedBy []int64) (*Approver, error) {
	for _, res := range r.resolvers[start:] {
		approver, err := res.Resolve(ctx, applicant)
		if err != nil {
			return nil, err
		}
		if approver == nil || (approver.UserID != nil && containsID(approvedBy, *approver.UserID)) {
			continue
		}
		return approver, nil
	}
	return nil, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
