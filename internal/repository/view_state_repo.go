package repository

import (
	"context"

	"go-inventory-stock/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ViewStateRepository interface {
	Find(ctx context.Context, userID string, branchID model.ID, view string) (*model.ViewState, error)
	Save(ctx context.Context, state *model.ViewState) error
}

type viewStateRepo struct {
	db *gorm.DB
}

func NewViewStateRepo(db *gorm.DB) ViewStateRepository {
	return &viewStateRepo{db}
}

func (r *viewStateRepo) Find(ctx context.Context, userID string, branchID model.ID, view string) (*model.ViewState, error) {
	var state model.ViewState
	err := r.db.WithContext(ctx).
		First(&state, "user_id = ? AND branch_id = ? AND view = ?", userID, branchID, view).Error
	if err != nil {
		return nil, translate(err)
	}
	return &state, nil
}

// Save upserts on the (user, branch, view) key.
func (r *viewStateRepo) Save(ctx context.Context, state *model.ViewState) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "branch_id"}, {Name: "view"}},
		DoUpdates: clause.AssignmentColumns([]string{"prefs", "updated_at"}),
	}).Create(state).Error
}
