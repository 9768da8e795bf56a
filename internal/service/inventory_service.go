package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-inventory-stock/internal/catalog"
	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"
	"go-inventory-stock/internal/ws"
	"go-inventory-stock/pkg/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogReader serves cached catalog pages.
type CatalogReader interface {
	Invalidator
	Load(ctx context.Context, branchID model.ID, page int) (catalog.Result, error)
}

// ProductInput is the editable part of a product. Quantity is only honoured on
// create, where it becomes the opening stock.
type ProductInput struct {
	SKU               string              `json:"sku" validate:"max=64"`
	Name              string              `json:"name" validate:"required,max=255"`
	Description       *string             `json:"description"`
	QuantityInStock   int                 `json:"quantity_in_stock" validate:"gte=0,lte=999999"`
	MinimumStockLevel int                 `json:"minimum_stock_level" validate:"gte=0"`
	PurchasePrice     decimal.Decimal     `json:"purchase_price" validate:"gte=0"`
	SalePrice         decimal.Decimal     `json:"sale_price" validate:"gte=0"`
	Status            model.ProductStatus `json:"status" validate:"omitempty,oneof=active inactive"`
	ImageURL          *string             `json:"image_url"`
	Location          *string             `json:"location" validate:"omitempty,max=100"`
	ParentProductID   *string             `json:"parent_product_id" validate:"omitempty,ref"`
	VariantName       *string             `json:"variant_name" validate:"omitempty,max=100"`
}

type InventoryService interface {
	CreateProduct(ctx context.Context, req *ProductInput, actor Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id model.ID, req *ProductInput, actor Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id model.ID, actor Actor) error
	GetProduct(ctx context.Context, branchID, id model.ID) (*model.Product, error)
	ListProducts(ctx context.Context, branchID model.ID, page int) (catalog.Result, error)
	GetAllTransactions(ctx context.Context, branchID model.ID, productID *model.ID, limit int) ([]model.StockTransaction, error)
	GetTransactionByID(ctx context.Context, branchID, id model.ID) (*model.StockTransaction, error)
}

type inventoryService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	stockRepo       repository.StockRepository
	cache           CatalogReader
	publisher       Publisher
	log             *zap.Logger
	now             func() time.Time
}

func NewInventoryService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, sRepo repository.StockRepository, cache CatalogReader, publisher Publisher, log *zap.Logger) InventoryService {
	return &inventoryService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		stockRepo:       sRepo,
		cache:           cache,
		publisher:       publisher,
		log:             log,
		now:             time.Now,
	}
}

func validationError(errs []*validator.ErrorResponse) error {
	first := errs[0]
	return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, first.FailedField, first.Tag)
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *ProductInput, actor Actor) (*model.Product, error) {
	// 1. Validasi Struct Dasar
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	branchID := actor.BranchID
	if branchID.IsZero() {
		return nil, ErrInvalidReference
	}

	// 2. Cek Duplikasi SKU per cabang
	sku := strings.TrimSpace(req.SKU)
	if err := s.ensureSKUFree(ctx, branchID, sku, ""); err != nil {
		return nil, err
	}

	product := &model.Product{
		BranchID:          branchID,
		SKU:               sku,
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		QuantityInStock:   req.QuantityInStock,
		MinimumStockLevel: req.MinimumStockLevel,
		PurchasePrice:     req.PurchasePrice,
		SalePrice:         req.SalePrice,
		Status:            req.Status,
		ImageURL:          req.ImageURL,
		Location:          req.Location,
	}
	if product.Status == "" {
		product.Status = model.ProductActive
	}

	// 3. Relasi varian
	if req.ParentProductID != nil {
		parent, err := s.parentFor(ctx, branchID, *req.ParentProductID)
		if err != nil {
			return nil, err
		}
		product.IsVariant = true
		product.ParentProductID = &parent.ID
		product.VariantName = req.VariantName
	}

	now := s.now()
	product.CreatedBy = actor.UserID
	product.UpdatedBy = actor.UserID
	product.CreatedAt = now
	product.UpdatedAt = now

	// 4. Simpan produk + opening stock dalam satu transaksi
	err := s.stockRepo.WithinTx(ctx, func(tx repository.StockTx) error {
		if err := tx.CreateProduct(ctx, product); err != nil {
			return err
		}
		if product.QuantityInStock == 0 {
			return nil
		}
		return tx.AppendTransaction(ctx, &model.StockTransaction{
			ProductID:       product.ID,
			ProductName:     product.DisplayName(),
			TransactionType: model.TxIncoming,
			Quantity:        product.QuantityInStock,
			BalanceAfter:    product.QuantityInStock,
			UnitPrice:       product.PurchasePrice,
			ReferenceNumber: "OPEN-" + now.UTC().Format("20060102T150405.000"),
			Notes:           "Opening stock",
			BranchID:        branchID,
			CreatedBy:       actor.UserID,
			CreatedAt:       now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.cache.Invalidate(branchID)
	s.publishProduct("product_created", product, actor, fmt.Sprintf("%s created product '%s'", actor.Name, product.DisplayName()))
	s.log.Info("product created",
		zap.String("branch_id", branchID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
		zap.Int("opening_stock", product.QuantityInStock))

	return product, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id model.ID, req *ProductInput, actor Actor) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	existing, err := s.productRepo.FindByID(ctx, actor.BranchID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	sku := strings.TrimSpace(req.SKU)
	if sku != existing.SKU {
		if err := s.ensureSKUFree(ctx, actor.BranchID, sku, existing.ID); err != nil {
			return nil, err
		}
	}

	// Quantity dan relasi parent tidak ikut diubah di sini
	existing.SKU = sku
	existing.Name = strings.TrimSpace(req.Name)
	existing.Description = req.Description
	existing.MinimumStockLevel = req.MinimumStockLevel
	existing.PurchasePrice = req.PurchasePrice
	existing.SalePrice = req.SalePrice
	if req.Status != "" {
		existing.Status = req.Status
	}
	existing.ImageURL = req.ImageURL
	existing.Location = req.Location
	if existing.IsVariant {
		existing.VariantName = req.VariantName
	}
	existing.UpdatedBy = actor.UserID
	existing.UpdatedAt = s.now()

	if err := s.productRepo.UpdateInfo(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	s.cache.Invalidate(actor.BranchID)
	s.publishProduct("product_updated", existing, actor, fmt.Sprintf("%s updated product '%s'", actor.Name, existing.DisplayName()))
	return existing, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id model.ID, actor Actor) error {
	product, err := s.productRepo.FindByID(ctx, actor.BranchID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	variants, err := s.productRepo.FindVariants(ctx, actor.BranchID, id)
	if err != nil {
		return err
	}
	if len(variants) > 0 {
		return ErrHasVariants
	}

	if err := s.productRepo.Delete(ctx, actor.BranchID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.cache.Invalidate(actor.BranchID)
	s.publishProduct("product_deleted", product, actor, fmt.Sprintf("%s deleted product '%s'", actor.Name, product.DisplayName()))
	return nil
}

func (s *inventoryService) GetProduct(ctx context.Context, branchID, id model.ID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, branchID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (s *inventoryService) ListProducts(ctx context.Context, branchID model.ID, page int) (catalog.Result, error) {
	return s.cache.Load(ctx, branchID, page)
}

func (s *inventoryService) GetAllTransactions(ctx context.Context, branchID model.ID, productID *model.ID, limit int) ([]model.StockTransaction, error) {
	return s.transactionRepo.FindAll(ctx, branchID, productID, limit)
}

func (s *inventoryService) GetTransactionByID(ctx context.Context, branchID, id model.ID) (*model.StockTransaction, error) {
	return s.transactionRepo.FindByID(ctx, branchID, id)
}

func (s *inventoryService) ensureSKUFree(ctx context.Context, branchID model.ID, sku string, self model.ID) error {
	if sku == "" {
		return nil
	}
	existing, err := s.productRepo.FindBySKU(ctx, branchID, sku)
	switch {
	case err == nil:
		if existing.ID != self {
			return ErrSKUExists
		}
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *inventoryService) parentFor(ctx context.Context, branchID model.ID, raw string) (*model.Product, error) {
	parentID, err := model.ParseID(raw)
	if err != nil {
		return nil, ErrInvalidReference
	}
	parent, err := s.productRepo.FindByID(ctx, branchID, parentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidParent
		}
		return nil, err
	}
	if parent.IsVariant {
		return nil, ErrInvalidParent
	}
	// Parent tidak bisa di-adjust lagi setelah punya varian, stoknya harus kosong dulu
	if parent.QuantityInStock != 0 {
		return nil, fmt.Errorf("%w: parent still holds %d units in stock", ErrInvalidParent, parent.QuantityInStock)
	}
	return parent, nil
}

func (s *inventoryService) publishProduct(action string, p *model.Product, actor Actor, message string) {
	s.publisher.Publish(ws.Event{
		Action:   action,
		Table:    ws.TableProducts,
		BranchID: p.BranchID,
		Data: map[string]any{
			"id":                p.ID,
			"sku":               p.SKU,
			"name":              p.DisplayName(),
			"quantity_in_stock": p.QuantityInStock,
			"sale_price":        p.SalePrice,
		},
		User:    actorPayload(actor),
		Message: message,
	})
}
