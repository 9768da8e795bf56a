package service

import (
	"context"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"

	"go.uber.org/zap"
)

const scanPageSize = 500

// ReconcileService compares stored quantities with the movement ledger.
type ReconcileService interface {
	Run(ctx context.Context, branchID model.ID) ([]model.Drift, error)
}

type reconcileService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	log             *zap.Logger
}

func NewReconcileService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, log *zap.Logger) ReconcileService {
	return &reconcileService{productRepo: pRepo, transactionRepo: tRepo, log: log}
}

// Run returns every product of the branch whose quantity differs from the net of its
// transactions. An empty result means the branch is consistent.
func (s *reconcileService) Run(ctx context.Context, branchID model.ID) ([]model.Drift, error) {
	balances, err := s.transactionRepo.LedgerBalances(ctx, branchID)
	if err != nil {
		return nil, err
	}
	ledger := make(map[model.ID]int, len(balances))
	for _, b := range balances {
		ledger[b.ProductID] = b.Net()
	}

	products, err := allProducts(ctx, s.productRepo, branchID)
	if err != nil {
		return nil, err
	}

	drifts := []model.Drift{}
	for _, p := range products {
		net := ledger[p.ID]
		if net == p.QuantityInStock {
			continue
		}
		d := model.Drift{
			ProductID:   p.ID,
			ProductName: p.DisplayName(),
			BranchID:    branchID,
			Stored:      p.QuantityInStock,
			Ledger:      net,
			Delta:       p.QuantityInStock - net,
		}
		s.log.Warn("stock drift detected",
			zap.String("branch_id", branchID.String()),
			zap.String("product_id", p.ID.String()),
			zap.Int("stored", d.Stored),
			zap.Int("ledger", d.Ledger))
		drifts = append(drifts, d)
	}

	s.log.Info("reconciliation finished",
		zap.String("branch_id", branchID.String()),
		zap.Int("products", len(products)),
		zap.Int("drifts", len(drifts)))
	return drifts, nil
}

// allProducts reads the whole branch catalog straight from the store.
func allProducts(ctx context.Context, repo repository.ProductRepository, branchID model.ID) ([]model.Product, error) {
	var all []model.Product
	for offset := 0; ; offset += scanPageSize {
		page, err := repo.FindPage(ctx, branchID, offset, scanPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < scanPageSize {
			return all, nil
		}
	}
}
