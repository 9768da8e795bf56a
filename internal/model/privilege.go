package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

// Privilege codes checked by route middleware
const (
	PrivProductView       = "product:view"
	PrivProductCreate     = "product:create"
	PrivProductUpdate     = "product:update"
	PrivProductDelete     = "product:delete"
	PrivTransactionView   = "transaction:view"
	PrivTransactionCreate = "transaction:create"
	PrivDashboardView     = "dashboard:view"
	PrivReportView        = "report:view"
	PrivImportRun         = "import:run"
	PrivExportRun         = "export:run"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// Product management
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	// Stock movements
	{Code: PrivTransactionView, Name: "View Transaction"},
	{Code: PrivTransactionCreate, Name: "Adjust Stock"},
	// Dashboard & reports
	{Code: PrivDashboardView, Name: "View Dashboard"},
	{Code: PrivReportView, Name: "View Reconciliation Report"},
	// Bulk import/export (MASTER_ADMIN only by default)
	{Code: PrivImportRun, Name: "Import Products"},
	{Code: PrivExportRun, Name: "Export Products"},
}
