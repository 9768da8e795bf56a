package repository

import (
	"context"
	"errors"

	"go-inventory-stock/internal/model"

	"gorm.io/gorm"
)

type BranchRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Branch, error)
	SeedDefault(ctx context.Context, code, name string) (*model.Branch, error)
}

type branchRepo struct {
	db *gorm.DB
}

func NewBranchRepo(db *gorm.DB) BranchRepository {
	return &branchRepo{db}
}

func (r *branchRepo) FindByCode(ctx context.Context, code string) (*model.Branch, error) {
	var branch model.Branch
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&branch).Error; err != nil {
		return nil, translate(err)
	}
	return &branch, nil
}

// SeedDefault returns the branch with the given code, creating it first if needed.
func (r *branchRepo) SeedDefault(ctx context.Context, code, name string) (*model.Branch, error) {
	branch, err := r.FindByCode(ctx, code)
	if err == nil {
		return branch, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	branch = &model.Branch{Code: code, Name: name}
	branch.CreatedBy = "system"
	branch.UpdatedBy = "system"
	if err := r.db.WithContext(ctx).Create(branch).Error; err != nil {
		return nil, err
	}
	return branch, nil
}
