// Package rbac maps the API's two roles to the actions they may perform.
// The matrix is fixed: admins run the whole operation, companies see only
// their own orders.
package rbac

// Action is a named capability checked before a handler runs.
type Action string

const (
	ViewOrders      Action = "orders.view"
	ManageOrders    Action = "orders.manage"
	ViewStats       Action = "stats.view"
	ExportReports   Action = "reports.export"
	ManageCompanies Action = "companies.manage"
)

var grants = map[string]map[Action]bool{
	"admin": {
		ViewOrders:      true,
		ManageOrders:    true,
		ViewStats:       true,
		ExportReports:   true,
		ManageCompanies: true,
	},
	"company": {
		ViewOrders:   true,
		ManageOrders: true,
		ViewStats:    true,
	},
}

// Can reports whether role may perform action. Unknown roles can do nothing.
func Can(role string, action Action) bool {
	return grants[role][action]
}
