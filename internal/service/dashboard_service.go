package service

import (
	"context"
	"time"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, branchID model.ID, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context, branchID model.ID) (*repository.DashboardStats, error)
}

type dashboardService struct {
	txRepo repository.TransactionRepository
	now    func() time.Time
}

func NewDashboardService(txRepo repository.TransactionRepository) DashboardService {
	return &dashboardService{txRepo: txRepo, now: time.Now}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, branchID model.ID, days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.txRepo.GetStockMovement(ctx, branchID, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, branchID model.ID) (*repository.DashboardStats, error) {
	return s.txRepo.GetDashboardStats(ctx, branchID)
}
