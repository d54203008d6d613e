package auth

import (
	"fmt"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

// Resources and actions guarded at the route level. Ownership and approver
// checks stay in the services.
const (
	ResourceProfile      = "profile"
	ResourceLeave        = "leave"
	ResourceApproval     = "approval"
	ResourceBalance      = "balance"
	ResourceCalendar     = "calendar"
	ResourceLeaveType    = "leave_type"
	ResourceDepartment   = "department"
	ResourceUser         = "user"
	ResourceDocument     = "document"
	ResourceNotification = "notification"
	ResourceAudit        = "audit"
	ResourceReport       = "report"

	ActionRead    = "read"
	ActionReadAll = "read_all"
	ActionWrite   = "write"
	ActionManage  = "manage"
	ActionDecide  = "decide"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (p.sub == "*" || r.sub == p.sub) && r.obj == p.obj && r.act == p.act
`

const anyRole = "*"

// defaultPolicy maps a role to what it may do. "*" applies to every role.
var defaultPolicy = [][]string{
	{anyRole, ResourceProfile, ActionRead},
	{anyRole, ResourceLeave, ActionRead},
	{anyRole, ResourceLeave, ActionWrite},
	{anyRole, ResourceApproval, ActionRead},
	{anyRole, ResourceApproval, ActionDecide},
	{anyRole, ResourceBalance, ActionRead},
	{anyRole, ResourceCalendar, ActionRead},
	{anyRole, ResourceLeaveType, ActionRead},
	{anyRole, ResourceDepartment, ActionRead},
	{anyRole, ResourceDocument, ActionRead},
	{anyRole, ResourceDocument, ActionWrite},
	{anyRole, ResourceNotification, ActionRead},
	{anyRole, ResourceNotification, ActionWrite},

	{string(internal.RoleDean), ResourceReport, ActionRead},
	{string(internal.RoleDirector), ResourceReport, ActionRead},
	{string(internal.RolePrincipal), ResourceReport, ActionRead},
	{string(internal.RolePrincipal), ResourceUser, ActionRead},

	{string(internal.RoleHRAdmin), ResourceUser, ActionRead},
	{string(internal.RoleHRAdmin), ResourceUser, ActionManage},
	{string(internal.RoleHRAdmin), ResourceDepartment, ActionManage},
	{string(internal.RoleHRAdmin), ResourceLeaveType, ActionManage},
	{string(internal.RoleHRAdmin), ResourceCalendar, ActionManage},
	{string(internal.RoleHRAdmin), ResourceBalance, ActionReadAll},
	{string(internal.RoleHRAdmin), ResourceLeave, ActionReadAll},
	{string(internal.RoleHRAdmin), ResourceAudit, ActionRead},
	{string(internal.RoleHRAdmin), ResourceReport, ActionRead},
}

type RBACAuthorization struct {
	*transport.BaseHandler
	enforcer *casbin.Enforcer
}

// NewRBACAuthorization builds an in-memory casbin enforcer loaded with the
// default role policy.
func NewRBACAuthorization(baseHandler *transport.BaseHandler) (*RBACAuthorization, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load rbac model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	if _, err := enforcer.AddPolicies(defaultPolicy); err != nil {
		return nil, fmt.Errorf("load rbac policy: %w", err)
	}
	return &RBACAuthorization{BaseHandler: baseHandler, enforcer: enforcer}, nil
}

func (ra *RBACAuthorization) Allowed(role internal.Role, resource, action string) (bool, error) {
	return ra.enforcer.Enforce(string(role), resource, action)
}

// Require rejects callers whose role may not perform action on resource. It
// must run after the auth middleware.
func (ra *RBACAuthorization) Require(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := ra.Auth(r)
			if err != nil {
				ra.WriteAppError(w, r, err)
				return
			}

			ok, err := ra.Allowed(actor.Role, resource, action)
			if err != nil {
				ra.WriteAppError(w, r, internal.NewInternalError("authorization check failed", err))
				return
			}
			if !ok {
				ra.Logger.WarnContext(r.Context(), "access denied",
					"user_id", actor.UserID,
					"role", actor.Role,
					"required", resource+":"+action)
				ra.WriteAppError(w, r, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
