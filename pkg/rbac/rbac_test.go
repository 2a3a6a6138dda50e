package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vperfumes/tracker/pkg/rbac"
)

func TestAdminGrants(t *testing.T) {
	for _, action := range []rbac.Action{
		rbac.ViewOrders, rbac.ManageOrders, rbac.ViewStats,
		rbac.ExportReports, rbac.ManageCompanies,
	} {
		assert.True(t, rbac.Can("admin", action), "admin should be allowed %s", action)
	}
}

func TestCompanyGrants(t *testing.T) {
	assert.True(t, rbac.Can("company", rbac.ViewOrders))
	assert.True(t, rbac.Can("company", rbac.ManageOrders))
	assert.True(t, rbac.Can("company", rbac.ViewStats))

	assert.False(t, rbac.Can("company", rbac.ExportReports))
	assert.False(t, rbac.Can("company", rbac.ManageCompanies))
}

func TestUnknownRole(t *testing.T) {
	assert.False(t, rbac.Can("intern", rbac.ViewOrders))
	assert.False(t, rbac.Can("", rbac.ViewOrders))
}
