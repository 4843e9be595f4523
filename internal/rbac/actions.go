package rbac

// Permission actions follow the "<module>.<manage|view>" convention.
const (
	ActionInventoryManage = "inventory.manage"
	ActionInventoryView   = "inventory.view"

	ActionWarehousesManage = "warehouses.manage"
	ActionWarehousesView   = "warehouses.view"

	ActionTransfersManage = "transfers.manage"
	ActionTransfersView   = "transfers.view"

	ActionPurchasesManage = "purchases.manage"
	ActionPurchasesView   = "purchases.view"

	ActionDeliveriesManage = "deliveries.manage"
	ActionDeliveriesView   = "deliveries.view"

	ActionSuppliersManage = "suppliers.manage"
	ActionSuppliersView   = "suppliers.view"

	ActionInstitutionsManage = "institutions.manage"
	ActionInstitutionsView   = "institutions.view"

	ActionReportsView = "reports.view"

	ActionUsersManage = "users.manage"
)

// AllActions lists every known permission action, in seed order.
func AllActions() []string {
	return []string{
		ActionInventoryManage,
		ActionInventoryView,
		ActionWarehousesManage,
		ActionWarehousesView,
		ActionTransfersManage,
		ActionTransfersView,
		ActionPurchasesManage,
		ActionPurchasesView,
		ActionDeliveriesManage,
		ActionDeliveriesView,
		ActionSuppliersManage,
		ActionSuppliersView,
		ActionInstitutionsManage,
		ActionInstitutionsView,
		ActionReportsView,
		ActionUsersManage,
	}
}
