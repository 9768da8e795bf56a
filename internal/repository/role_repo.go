package repository

import (
	"context"

	"go-inventory-stock/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	SeedDefaults(ctx context.Context) error
	GrantDefaults(ctx context.Context, role *model.Role, all []model.Privilege) (int, error)
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Order("id").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Preload("Privileges").Where("code = ?", code).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *roleRepo) SeedDefaults(ctx context.Context) error {
	rows := make([]model.Role, len(model.DefaultRoles))
	copy(rows, model.DefaultRoles)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&rows).Error
}

// GrantDefaults gives a role its seed privileges, but only while it has none, so
// grants edited by an operator survive restarts. Returns how many were granted.
func (r *roleRepo) GrantDefaults(ctx context.Context, role *model.Role, all []model.Privilege) (int, error) {
	if len(role.Privileges) > 0 {
		return 0, nil
	}
	privs := model.DefaultPrivilegesFor(role.Code, all)
	if len(privs) == 0 {
		return 0, nil
	}
	if err := r.db.WithContext(ctx).Model(role).Association("Privileges").Replace(privs); err != nil {
		return 0, err
	}
	return len(privs), nil
}
