package repository

import (
	"context"
	"time"

	"go-inventory-stock/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id model.ID) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	SaveSession(ctx context.Context, user *model.User) error
	ResetCredentials(ctx context.Context, id model.ID, passwordHash string) error
	Touch(ctx context.Context, id model.ID, at time.Time) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) withGrants(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Role.Privileges").Preload("Privileges")
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.withGrants(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id model.ID) (*model.User, error) {
	var user model.User
	if err := r.withGrants(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// SaveSession persists password, token version and last seen. Role and privilege
// associations are left alone.
func (r *userRepo) SaveSession(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"password":      user.Password,
		"token_version": user.TokenVersion,
		"last_seen_at":  user.LastSeenAt,
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetCredentials stores a new hash and ends every open session of the user.
func (r *userRepo) ResetCredentials(ctx context.Context, id model.ID, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password":      passwordHash,
		"token_version": "",
		"last_seen_at":  nil,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) Touch(ctx context.Context, id model.ID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_seen_at", at).Error
}
