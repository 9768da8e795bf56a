package cmd

import (
	"context"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultBranchCode = "MAIN"
	defaultAdminEmail = "admin@example.com"
)

// seed creates the default branch, privileges, roles, and admin user if they don't exist
func seed(ctx context.Context, db *gorm.DB, log *zap.Logger) {
	branchRepo := repository.NewBranchRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	branch, err := branchRepo.SeedDefault(ctx, defaultBranchCode, "Main Branch")
	if err != nil {
		log.Warn("failed to seed default branch", zap.Error(err))
		return
	}

	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		log.Warn("failed to seed privileges", zap.Error(err))
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		log.Warn("failed to seed roles", zap.Error(err))
	}

	allPrivileges, err := privilegeRepo.FindAll(ctx)
	if err != nil {
		log.Warn("failed to load privileges", zap.Error(err))
		return
	}

	for _, def := range model.DefaultRoles {
		role, err := roleRepo.FindByCode(ctx, def.Code)
		if err != nil {
			log.Warn("seeded role missing", zap.String("role", def.Code), zap.Error(err))
			continue
		}
		n, err := roleRepo.GrantDefaults(ctx, role, allPrivileges)
		if err != nil {
			log.Warn("failed to assign role privileges", zap.String("role", def.Code), zap.Error(err))
			continue
		}
		if n > 0 {
			log.Info("role privileges assigned", zap.String("role", def.Code), zap.Int("count", n))
		}
	}

	if _, err := userRepo.FindByEmail(ctx, defaultAdminEmail); err == nil {
		return
	}
	masterRole, err := roleRepo.FindByCode(ctx, model.RoleMasterAdmin)
	if err != nil {
		log.Warn("MASTER_ADMIN role missing, admin user not created", zap.Error(err))
		return
	}

	admin := &model.User{
		Email:      defaultAdminEmail,
		FullName:   "Master Administrator",
		BranchID:   branch.ID,
		RoleID:     &masterRole.ID,
		IsActive:   true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword("admin123"); err != nil {
		log.Warn("failed to hash admin password", zap.Error(err))
		return
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Warn("failed to create admin user", zap.Error(err))
		return
	}
	log.Info("admin user created", zap.String("email", defaultAdminEmail), zap.String("branch", defaultBranchCode))
}
