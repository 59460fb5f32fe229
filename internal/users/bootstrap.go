package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BootstrapParams configure the startup admin seed.
type BootstrapParams struct {
	DB       txRunner
	Logger   *logger.Logger
	Password config.PasswordConfig
	Admin    config.BootstrapConfig
}

// EnsureAdmin seeds the configured bootstrap admin account on startup. The
// seed is skipped when no admin email is configured or the account already
// exists; an existing account is never modified.
func EnsureAdmin(ctx context.Context, params BootstrapParams) error {
	if params.DB == nil {
		return fmt.Errorf("db runner required")
	}
	if params.Logger == nil {
		return fmt.Errorf("logger required")
	}

	email := strings.ToLower(strings.TrimSpace(params.Admin.AdminEmail))
	if email == "" {
		params.Logger.Info(ctx, "bootstrap admin not configured; skipping seed")
		return nil
	}
	if params.Admin.AdminPassword == "" {
		return fmt.Errorf("bootstrap admin password required when admin email is set")
	}

	passwordHash, err := security.HashPassword(params.Admin.AdminPassword, params.Password)
	if err != nil {
		return fmt.Errorf("hash bootstrap admin password: %w", err)
	}

	return params.DB.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			params.Logger.Info(ctx, "bootstrap admin already present")
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check bootstrap admin: %w", err)
		}

		user := &models.User{
			Email:        email,
			Name:         strings.TrimSpace(params.Admin.AdminName),
			PasswordHash: passwordHash,
			Role:         enums.UserRoleAdmin,
			IsActive:     true,
		}
		if err := repo.Create(ctx, user); err != nil {
			return fmt.Errorf("create bootstrap admin: %w", err)
		}

		logCtx := params.Logger.WithField(ctx, "email", email)
		params.Logger.Info(logCtx, "bootstrap admin created")
		return nil
	})
}
