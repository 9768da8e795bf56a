package repository

import (
	"context"
	"time"

	"go-inventory-stock/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository runs quantity changes and their audit records in one DB transaction.
type StockRepository interface {
	WithinTx(ctx context.Context, fn func(tx StockTx) error) error
}

// StockTx is the set of writes allowed inside a stock unit of work.
type StockTx interface {
	LockProduct(ctx context.Context, branchID, id model.ID) (*model.Product, error)
	CountVariants(ctx context.Context, branchID, parentID model.ID) (int64, error)
	FindByIdempotencyKey(ctx context.Context, branchID model.ID, key string) (*model.StockTransaction, error)
	CreateProduct(ctx context.Context, product *model.Product) error
	AppendTransaction(ctx context.Context, t *model.StockTransaction) error
	SetQuantity(ctx context.Context, id model.ID, quantity int, updatedBy string, at time.Time) error
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) WithinTx(ctx context.Context, fn func(tx StockTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&stockTx{tx})
	})
}

type stockTx struct {
	tx *gorm.DB
}

// LockProduct reads the product with SELECT ... FOR UPDATE so concurrent adjustments
// of the same row serialize.
func (s *stockTx) LockProduct(ctx context.Context, branchID, id model.ID) (*model.Product, error) {
	var product model.Product
	err := s.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ? AND branch_id = ?", id, branchID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *stockTx) CountVariants(ctx context.Context, branchID, parentID model.ID) (int64, error) {
	var n int64
	err := s.tx.WithContext(ctx).Model(&model.Product{}).
		Where("parent_product_id = ? AND branch_id = ?", parentID, branchID).
		Count(&n).Error
	return n, err
}

func (s *stockTx) FindByIdempotencyKey(ctx context.Context, branchID model.ID, key string) (*model.StockTransaction, error) {
	var t model.StockTransaction
	if err := s.tx.WithContext(ctx).First(&t, "idempotency_key = ? AND branch_id = ?", key, branchID).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *stockTx) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.tx.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (s *stockTx) AppendTransaction(ctx context.Context, t *model.StockTransaction) error {
	return s.tx.WithContext(ctx).Create(t).Error
}

func (s *stockTx) SetQuantity(ctx context.Context, id model.ID, quantity int, updatedBy string, at time.Time) error {
	res := s.tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity_in_stock": quantity,
			"updated_by":        updatedBy,
			"updated_at":        at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
