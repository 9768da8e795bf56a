package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxIncoming TransactionType = "incoming"
	TxOutgoing TransactionType = "outgoing"
)

// StockTransaction is the write-once audit record of one quantity movement.
// Quantity is always the positive magnitude; the type carries the sign.
type StockTransaction struct {
	ID              ID              `gorm:"type:varchar(64);primaryKey" json:"id"`
	ProductID       ID              `gorm:"type:varchar(64);not null;index" json:"product_id"`
	ProductName     string          `gorm:"type:varchar(255);not null" json:"product_name"`
	TransactionType TransactionType `gorm:"type:varchar(10);not null" json:"transaction_type"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	BalanceAfter    int             `gorm:"not null;default:0" json:"balance_after"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"unit_price"`
	ReferenceNumber string          `gorm:"type:varchar(64);index" json:"reference_number"`
	IdempotencyKey  *string         `gorm:"type:varchar(128);uniqueIndex:idx_branch_idempotency" json:"idempotency_key,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes"`
	BranchID        ID              `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_branch_idempotency" json:"branch_id"`
	CreatedBy       string          `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// BalanceBefore is the product quantity just before this movement.
func (t *StockTransaction) BalanceBefore() int {
	return t.BalanceAfter - t.Signed()
}

// Signed returns the movement as a signed delta.
func (t *StockTransaction) Signed() int {
	if t.TransactionType == TxOutgoing {
		return -t.Quantity
	}
	return t.Quantity
}

func (t *StockTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID.IsZero() {
		t.ID = NewID()
	}
	return nil
}
