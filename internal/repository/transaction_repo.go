package repository

import (
	"context"
	"time"

	"go-inventory-stock/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	FindAll(ctx context.Context, branchID model.ID, productID *model.ID, limit int) ([]model.StockTransaction, error)
	FindByID(ctx context.Context, branchID, id model.ID) (*model.StockTransaction, error)
	LedgerBalances(ctx context.Context, branchID model.ID) ([]model.LedgerBalance, error)
	GetStockMovement(ctx context.Context, branchID model.ID, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context, branchID model.ID) (*DashboardStats, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) FindAll(ctx context.Context, branchID model.ID, productID *model.ID, limit int) ([]model.StockTransaction, error) {
	var transactions []model.StockTransaction
	q := r.db.WithContext(ctx).Where("branch_id = ?", branchID)
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("created_at DESC").Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByID(ctx context.Context, branchID, id model.ID) (*model.StockTransaction, error) {
	var t model.StockTransaction
	if err := r.db.WithContext(ctx).First(&t, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// LedgerBalances sums incoming and outgoing movements per product of the branch.
func (r *transactionRepo) LedgerBalances(ctx context.Context, branchID model.ID) ([]model.LedgerBalance, error) {
	rows, err := r.db.WithContext(ctx).Model(&model.StockTransaction{}).
		Select(`
			product_id,
			COALESCE(SUM(CASE WHEN transaction_type = 'incoming' THEN quantity ELSE 0 END), 0) as incoming,
			COALESCE(SUM(CASE WHEN transaction_type = 'outgoing' THEN quantity ELSE 0 END), 0) as outgoing
		`).
		Where("branch_id = ?", branchID).
		Group("product_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []model.LedgerBalance
	for rows.Next() {
		var b model.LedgerBalance
		if err := rows.Scan(&b.ProductID, &b.Incoming, &b.Outgoing); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (r *transactionRepo) GetStockMovement(ctx context.Context, branchID model.ID, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Query untuk aggregate transactions per hari
	rows, err := r.db.WithContext(ctx).Model(&model.StockTransaction{}).
		Select(`
			TO_CHAR(DATE(created_at), 'YYYY-MM-DD') as date,
			COALESCE(SUM(CASE WHEN transaction_type = 'incoming' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN transaction_type = 'outgoing' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("branch_id = ? AND created_at BETWEEN ? AND ?", branchID, startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *transactionRepo) GetDashboardStats(ctx context.Context, branchID model.ID) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Where("branch_id = ?", branchID).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	// Low stock: at or below the product's own minimum
	if err := db.Model(&model.Product{}).
		Where("branch_id = ? AND quantity_in_stock <= minimum_stock_level", branchID).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// Valuation at purchase price
	if err := db.Model(&model.Product{}).
		Where("branch_id = ?", branchID).
		Select("COALESCE(SUM(quantity_in_stock * purchase_price), 0)").
		Scan(&stats.TotalValuation).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
