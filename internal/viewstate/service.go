package viewstate

import (
	"context"
	"errors"
	"time"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Service struct {
	repo repository.ViewStateRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo repository.ViewStateRepository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// Load returns the saved prefs, or the defaults when nothing was saved yet.
func (s *Service) Load(ctx context.Context, userID string, branchID model.ID, view string) (model.ViewPrefs, error) {
	if !KnownView(view) {
		return Default(), ErrUnknownView
	}
	state, err := s.repo.Find(ctx, userID, branchID, view)
	if errors.Is(err, repository.ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return Default(), err
	}

	prefs, err := Normalize(state.Prefs.Data())
	if err != nil {
		// Data lama yang tidak valid diganti default
		s.log.Warn("stored view state invalid, using defaults",
			zap.String("user_id", userID), zap.String("view", view), zap.Error(err))
		return Default(), nil
	}
	return prefs, nil
}

func (s *Service) Save(ctx context.Context, userID string, branchID model.ID, view string, prefs model.ViewPrefs) (model.ViewPrefs, error) {
	if !KnownView(view) {
		return Default(), ErrUnknownView
	}
	n, err := Normalize(prefs)
	if err != nil {
		return Default(), err
	}
	state := &model.ViewState{
		UserID:    userID,
		BranchID:  branchID,
		View:      view,
		Prefs:     datatypes.NewJSONType(n),
		UpdatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, state); err != nil {
		return Default(), err
	}
	return n, nil
}
