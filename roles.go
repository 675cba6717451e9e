package access

// Role is the user's coarse-grained category, driving default permissions
type Role = string

const (
	// RoleAdmin has every capability; the only role allowed the wildcard
	RoleAdmin Role = "admin"
	// RoleManager supervises agents
	RoleManager Role = "manager"
	// RoleAgent works under a manager; requires a manager reference
	RoleAgent Role = "agent"
)

// BuiltinRoles returns the roles this package knows about. Deployments may
// configure additional roles through PermissionPolicy; unknown roles simply
// resolve to an empty default permission set.
func BuiltinRoles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleAgent}
}

// IsBuiltinRole checks if the role is one of the predefined roles
func IsBuiltinRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgent:
		return true
	default:
		return false
	}
}

// CanManageAgents reports whether users of this role may be referenced as an
// agent's manager.
func CanManageAgents(r Role) bool {
	return r == RoleManager || r == RoleAdmin
}
