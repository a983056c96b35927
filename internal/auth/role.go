// Package auth contains the two pieces of business logic this service is
// built around: the token lifecycle (issue/validate/rotate, see token.go)
// and the role-based authorization policy defined in this file.
package auth

// Role is a closed enumeration of user roles ordered by privilege.
// A LOWER numeric value means MORE privilege; comparisons throughout the
// policy rely on that order. The numeric gaps are deliberate: the schema
// reserves room for intermediate roles without reordering.
type Role int

const (
	RoleAdminComplex          Role = 1 // complex administrator, highest privilege
	RoleSindico               Role = 2 // building manager
	RoleResponsavelManutencao Role = 3 // maintenance supervisor
	RoleMorador               Role = 4 // validated resident
	RoleNaoValidado           Role = 9 // freshly registered, not yet validated
)

var roleNames = map[Role]string{
	RoleAdminComplex:          "ADMIN_COMPLEX",
	RoleSindico:               "SINDICO",
	RoleResponsavelManutencao: "RESPONSAVEL_MANUTENCAO",
	RoleMorador:               "MORADOR",
	RoleNaoValidado:           "NAO_VALIDADO",
}

// Valid reports whether r is one of the known roles. Handlers must reject
// role values outside the enumeration before persisting them.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "UNKNOWN"
}

// morePrivilegedThan reports whether r outranks other. The comparison is
// strict: a role does not outrank itself.
func (r Role) morePrivilegedThan(other Role) bool {
	return r < other
}

// CanLogin reports whether a user with the given role may authenticate at
// all. Unvalidated users are refused before their password is even compared;
// they receive a distinguishable 403 rather than the generic 401. That leaks
// account state on purpose, matching the product decision that residents
// should be told their account is still pending validation.
func CanLogin(role Role) bool {
	return role != RoleNaoValidado
}

// CanCreateRequisition reports whether a user with the given role may file a
// maintenance requisition. Only unvalidated users are blocked.
func CanCreateRequisition(role Role) bool {
	return role != RoleNaoValidado
}

// CanModifyUser reports whether actor may change target's role to newRole.
// Complex admins are unrestricted. Síndicos operate under a sub-policy: they
// may only touch users below the maintenance-supervisor tier and may only
// assign roles below that tier, so they can validate residents but never
// promote anyone into management or demote a peer.
func CanModifyUser(actor, target, newRole Role) bool {
	switch actor {
	case RoleAdminComplex:
		return true
	case RoleSindico:
		return RoleResponsavelManutencao.morePrivilegedThan(target) &&
			RoleResponsavelManutencao.morePrivilegedThan(newRole)
	default:
		return false
	}
}

// CanDeleteUser reports whether actor may delete target's account. Only
// complex admins delete users, and never another complex admin.
func CanDeleteUser(actor, target Role) bool {
	return actor == RoleAdminComplex && target != RoleAdminComplex
}
