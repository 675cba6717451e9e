package access

// PermissionWildcard denotes "all capabilities". Only admin users may hold it.
const PermissionWildcard = "*"

// PermissionPolicy is the injected role->permission configuration. Both
// resolver methods are pure functions over this table so the security
// sensitive branches stay unit-testable away from storage and transport.
type PermissionPolicy struct {
	// Defaults maps a role to the permission set assigned when registration
	// provides no explicit grants. Unknown roles resolve to an empty set.
	Defaults map[Role][]string
	// Universal is the full permission set admins receive at login time.
	Universal []string
}

// ResolveForNewUser derives the permission set persisted with a new user.
// Explicit grants win over role defaults when present. The wildcard check
// runs here, before anything is persisted.
func (p PermissionPolicy) ResolveForNewUser(role Role, explicit []string) ([]string, error) {
	resolved := explicit
	if len(resolved) == 0 {
		resolved = p.Defaults[role]
	}

	if role != RoleAdmin && containsWildcard(resolved) {
		return nil, ErrWildcardGrant
	}

	return clonePermissions(resolved), nil
}

// ResolveForLogin computes the permission claim embedded in the login token.
// Admins always get the universal set regardless of what was stored; the
// override applies at token-issuance time and is not written back.
func (p PermissionPolicy) ResolveForLogin(role Role, stored []string) []string {
	if role == RoleAdmin {
		return clonePermissions(p.Universal)
	}
	return clonePermissions(stored)
}

func containsWildcard(permissions []string) bool {
	for _, perm := range permissions {
		if perm == PermissionWildcard {
			return true
		}
	}
	return false
}

func clonePermissions(permissions []string) []string {
	if permissions == nil {
		return []string{}
	}
	out := make([]string, len(permissions))
	copy(out, permissions)
	return out
}
