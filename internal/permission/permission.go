// Package permission implements the static role→capability resolver. The
// table is a pure function of the role: no persistence, no caching.
package permission

import "github.com/swiftride/admin-auth/internal/domain"

// Resource names a platform subsystem that admin actions operate on.
type Resource string

const (
	ResourceBookings  Resource = "bookings"
	ResourceDrivers   Resource = "drivers"
	ResourceVehicles  Resource = "vehicles"
	ResourceCustomers Resource = "customers"
	ResourcePricing   Resource = "pricing"
	ResourcePayments  Resource = "payments"
	ResourceReports   Resource = "reports"
	ResourceAdmins    Resource = "admins"
	ResourceAuditLogs Resource = "audit_logs"
)

// Action is a capability on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
	ActionRefund Action = "refund"
)

// Permission grants a set of actions on one resource.
type Permission struct {
	Resource Resource
	Actions  []Action
}

var allActions = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionExport, ActionRefund}

// ForRole returns the permission set for a role. The switch is exhaustive
// over the role enum; an unknown role gets no permissions.
//
// Irreversible operations (creating or deactivating admin accounts, password
// resets, unlocks) are guarded by explicit SUPER_ADMIN role checks at the
// delivery layer, not by table entries here.
func ForRole(role domain.Role) []Permission {
	switch role {
	case domain.RoleSuperAdmin:
		return []Permission{
			{ResourceBookings, allActions},
			{ResourceDrivers, allActions},
			{ResourceVehicles, allActions},
			{ResourceCustomers, allActions},
			{ResourcePricing, allActions},
			{ResourcePayments, allActions},
			{ResourceReports, allActions},
			{ResourceAdmins, allActions},
			{ResourceAuditLogs, []Action{ActionRead, ActionExport}},
		}
	case domain.RoleOperationsManager:
		return []Permission{
			{ResourceBookings, []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}},
			{ResourceDrivers, []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}},
			{ResourceVehicles, []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete}},
			{ResourceCustomers, []Action{ActionRead, ActionUpdate}},
			{ResourcePricing, []Action{ActionRead}},
			{ResourceReports, []Action{ActionRead, ActionExport}},
		}
	case domain.RoleFinanceManager:
		return []Permission{
			{ResourceBookings, []Action{ActionRead}},
			{ResourcePricing, []Action{ActionRead, ActionCreate, ActionUpdate}},
			{ResourcePayments, []Action{ActionRead, ActionUpdate, ActionRefund}},
			{ResourceReports, []Action{ActionRead, ActionExport}},
		}
	case domain.RoleCustomerService:
		return []Permission{
			{ResourceBookings, []Action{ActionRead, ActionCreate, ActionUpdate}},
			{ResourceCustomers, []Action{ActionRead, ActionUpdate}},
			{ResourceDrivers, []Action{ActionRead}},
		}
	}
	return nil
}

// Has reports whether the role may perform action on resource. Pure lookup:
// identical inputs always yield identical outputs.
func Has(role domain.Role, resource Resource, action Action) bool {
	for _, p := range ForRole(role) {
		if p.Resource != resource {
			continue
		}
		for _, a := range p.Actions {
			if a == action {
				return true
			}
		}
	}
	return false
}
