package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleMasterAdmin = "MASTER_ADMIN"
	RoleAdmin       = "ADMIN"
	RoleClerk       = "STOCK_CLERK"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "All branches, all privileges",
	},
	{
		Code:        RoleAdmin,
		Name:        "Branch Administrator",
		Description: "Manages the catalog of one branch",
	},
	{
		Code:        RoleClerk,
		Name:        "Stock Clerk",
		Description: "Records incoming and outgoing stock",
	},
}

// Privilege codes granted per role at seed time. nil means every privilege.
var rolePrivilegeCodes = map[string][]string{
	RoleMasterAdmin: nil,
	RoleAdmin: {
		PrivProductView, PrivProductCreate, PrivProductUpdate, PrivProductDelete,
		PrivTransactionView, PrivTransactionCreate,
		PrivDashboardView, PrivReportView,
	},
	RoleClerk: {
		PrivProductView, PrivTransactionView, PrivTransactionCreate,
	},
}

// DefaultPrivilegesFor picks the seed privileges of a role out of all known ones.
// Unknown roles get none.
func DefaultPrivilegesFor(roleCode string, all []Privilege) []Privilege {
	codes, ok := rolePrivilegeCodes[roleCode]
	if !ok {
		return nil
	}
	if codes == nil {
		return all
	}

	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	out := []Privilege{}
	for _, p := range all {
		if want[p.Code] {
			out = append(out, p)
		}
	}
	return out
}
