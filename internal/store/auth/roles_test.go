package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/pkg/constants"
)

func storeWithRole(role constants.Role) *Store {
	s := NewStore(nil, nil, nil, nil, nil)
	s.session = &models.Session{
		AccessToken:  "a",
		RefreshToken: "r",
		User:         &models.User{ID: "u1", Role: role},
	}
	s.state = StateAuthenticated
	return s
}

func TestCapabilityPredicates(t *testing.T) {
	anonymous := NewStore(nil, nil, nil, nil, nil)
	assert.Equal(t, constants.RoleUser, anonymous.Role(), "no profile means base role")
	assert.False(t, anonymous.IsAdmin())

	member := storeWithRole(constants.RoleOrgMember)
	assert.True(t, member.CanViewOrganizationData())
	assert.False(t, member.CanManageUsers())

	orgAdmin := storeWithRole(constants.RoleOrgAdmin)
	assert.True(t, orgAdmin.IsAdmin())
	assert.True(t, orgAdmin.CanManageUsers())
	assert.False(t, orgAdmin.CanManageOrganizations())

	tenantAdmin := storeWithRole(constants.RoleTenantAdmin)
	assert.True(t, tenantAdmin.CanManageOrganizations())
	assert.False(t, tenantAdmin.CanManageTenants())

	superAdmin := storeWithRole(constants.RoleSuperAdmin)
	assert.True(t, superAdmin.IsSuperAdmin())
	assert.True(t, superAdmin.CanManageTenants())
}
