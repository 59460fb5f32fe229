package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/security"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestEnsureAdminSeedsAccount(t *testing.T) {
	db := setupUserTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "users-test"})

	err := EnsureAdmin(context.Background(), BootstrapParams{
		DB:       gormTxRunner{db: db},
		Logger:   logg,
		Password: testPasswordConfig(),
		Admin: config.BootstrapConfig{
			AdminEmail:    "Admin@Example.com",
			AdminName:     "HireKit Admin",
			AdminPassword: "super-secret",
		},
	})
	require.NoError(t, err)

	admin, err := NewRepository(db).FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, admin.Role)
	assert.Equal(t, "HireKit Admin", admin.Name)
	assert.True(t, admin.IsActive)

	ok, err := security.VerifyPassword("super-secret", admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnsureAdminSkipsWhenUnconfigured(t *testing.T) {
	db := setupUserTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "users-test"})

	err := EnsureAdmin(context.Background(), BootstrapParams{
		DB:       gormTxRunner{db: db},
		Logger:   logg,
		Password: testPasswordConfig(),
		Admin:    config.BootstrapConfig{},
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	db := setupUserTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "users-test"})

	existing := &models.User{
		Email:        "admin@example.com",
		Name:         "Original",
		PasswordHash: "original-hash",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, NewRepository(db).Create(context.Background(), existing))

	err := EnsureAdmin(context.Background(), BootstrapParams{
		DB:       gormTxRunner{db: db},
		Logger:   logg,
		Password: testPasswordConfig(),
		Admin: config.BootstrapConfig{
			AdminEmail:    "admin@example.com",
			AdminName:     "Replacement",
			AdminPassword: "new-password",
		},
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	admin, err := NewRepository(db).FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Original", admin.Name)
	assert.Equal(t, "original-hash", admin.PasswordHash)
}

func TestEnsureAdminRequiresPassword(t *testing.T) {
	db := setupUserTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "users-test"})

	err := EnsureAdmin(context.Background(), BootstrapParams{
		DB:       gormTxRunner{db: db},
		Logger:   logg,
		Password: testPasswordConfig(),
		Admin: config.BootstrapConfig{
			AdminEmail: "admin@example.com",
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password required")
}
