package auth

import "github.com/accunode/accunode-go/pkg/constants"

// Role-capability predicates. Pure functions of the cached role string
// against the fixed hierarchy; they never touch the network.

// IsAdmin reports whether the user holds any administrative role.
func (s *Store) IsAdmin() bool {
	return s.Role().AtLeast(constants.RoleOrgAdmin)
}

// IsSuperAdmin reports whether the user holds the system-wide role.
func (s *Store) IsSuperAdmin() bool {
	return s.Role() == constants.RoleSuperAdmin
}

// CanManageUsers reports whether the user may list, re-role, or delete users.
func (s *Store) CanManageUsers() bool {
	return s.Role().AtLeast(constants.RoleOrgAdmin)
}

// CanManageOrganizations reports whether the user may create or modify
// organizations.
func (s *Store) CanManageOrganizations() bool {
	return s.Role().AtLeast(constants.RoleTenantAdmin)
}

// CanManageTenants reports whether the user may administer tenants.
func (s *Store) CanManageTenants() bool {
	return s.Role() == constants.RoleSuperAdmin
}

// CanViewOrganizationData reports whether organization-scoped predictions are
// visible to the user.
func (s *Store) CanViewOrganizationData() bool {
	return s.Role().AtLeast(constants.RoleOrgMember)
}
