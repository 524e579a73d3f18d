package domain

// CashbookRole is a member's role within one cashbook.
type CashbookRole string

const (
	RolePrimaryAdmin CashbookRole = "PRIMARY_ADMIN"
	RoleAdmin        CashbookRole = "ADMIN"
	RoleBookAdmin    CashbookRole = "BOOK_ADMIN"
	RoleDataOperator CashbookRole = "DATA_OPERATOR"
	RoleViewer       CashbookRole = "VIEWER"
)

// Permission is a single capability checked against a role.
type Permission string

const (
	PermViewEntries        Permission = "VIEW_ENTRIES"
	PermCreateEntry        Permission = "CREATE_ENTRY"
	PermUpdateEntry        Permission = "UPDATE_ENTRY"
	PermDeleteEntry        Permission = "DELETE_ENTRY"
	PermApproveDelete      Permission = "APPROVE_DELETE"
	PermViewAuditLog       Permission = "VIEW_AUDIT_LOG"
	PermRecalculateBalance Permission = "RECALCULATE_BALANCE"
	PermReconcileEntry     Permission = "RECONCILE_ENTRY"
	PermViewReports        Permission = "VIEW_REPORTS"
)

var allPermissions = []Permission{
	PermViewEntries, PermCreateEntry, PermUpdateEntry, PermDeleteEntry, PermApproveDelete,
	PermViewAuditLog, PermRecalculateBalance, PermReconcileEntry, PermViewReports,
}

var rolePermissions = map[CashbookRole]map[Permission]struct{}{
	RolePrimaryAdmin: permissionSet(allPermissions...),
	RoleAdmin:        permissionSet(allPermissions...),
	RoleBookAdmin: permissionSet(
		PermViewEntries, PermCreateEntry, PermUpdateEntry, PermDeleteEntry, PermApproveDelete,
		PermViewAuditLog, PermReconcileEntry, PermViewReports,
	),
	RoleDataOperator: permissionSet(PermViewEntries, PermCreateEntry, PermUpdateEntry, PermDeleteEntry),
	RoleViewer:       permissionSet(PermViewEntries, PermViewReports),
}

func permissionSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// IsValid reports whether the role is one of the known cashbook roles.
func (r CashbookRole) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// HasPermission is a pure table lookup. Unknown roles hold no permissions.
func HasPermission(role CashbookRole, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}
