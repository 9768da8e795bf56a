package model

// Drift is one product whose stored quantity disagrees with its movement ledger.
type Drift struct {
	ProductID   ID     `json:"product_id"`
	ProductName string `json:"product_name"`
	BranchID    ID     `json:"branch_id"`
	Stored      int    `json:"stored"`
	Ledger      int    `json:"ledger"`
	Delta       int    `json:"delta"` // Stored - Ledger
}

// LedgerBalance is the net of all movements for a product.
type LedgerBalance struct {
	ProductID ID
	Incoming  int
	Outgoing  int
}

func (b LedgerBalance) Net() int {
	return b.Incoming - b.Outgoing
}
