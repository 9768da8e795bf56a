package repository

import (
	"context"

	"go-inventory-stock/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	FindPage(ctx context.Context, branchID model.ID, offset, limit int) ([]model.Product, error)
	CountByBranch(ctx context.Context, branchID model.ID) (int64, error)
	FindByID(ctx context.Context, branchID, id model.ID) (*model.Product, error)
	FindBySKU(ctx context.Context, branchID model.ID, sku string) (*model.Product, error)
	FindVariants(ctx context.Context, branchID, parentID model.ID) ([]model.Product, error)
	UpdateInfo(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, branchID, id model.ID) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// FindPage returns one page of the branch catalog ordered by name.
func (r *productRepo) FindPage(ctx context.Context, branchID model.ID, offset, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("name ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) CountByBranch(ctx context.Context, branchID model.ID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("branch_id = ?", branchID).Count(&n).Error
	return n, err
}

func (r *productRepo) FindByID(ctx context.Context, branchID, id model.ID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ? AND branch_id = ?", id, branchID).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, branchID model.ID, sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ? AND branch_id = ?", sku, branchID).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) FindVariants(ctx context.Context, branchID, parentID model.ID) ([]model.Product, error) {
	var variants []model.Product
	err := r.db.WithContext(ctx).
		Where("parent_product_id = ? AND branch_id = ?", parentID, branchID).
		Find(&variants).Error
	return variants, err
}

// UpdateInfo saves descriptive fields only. Quantity moves through StockRepository.
func (r *productRepo) UpdateInfo(ctx context.Context, product *model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND branch_id = ?", product.ID, product.BranchID).
		Updates(map[string]interface{}{
			"sku":                 product.SKU,
			"name":                product.Name,
			"description":         product.Description,
			"minimum_stock_level": product.MinimumStockLevel,
			"purchase_price":      product.PurchasePrice,
			"sale_price":          product.SalePrice,
			"status":              product.Status,
			"image_url":           product.ImageURL,
			"location":            product.Location,
			"variant_name":        product.VariantName,
			"updated_by":          product.UpdatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the product; its transactions go with it through the FK cascade.
func (r *productRepo) Delete(ctx context.Context, branchID, id model.ID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ? AND branch_id = ?", id, branchID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
