package kits

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/pagination"
)

// Repository persists kits.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, kit *models.Kit) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Kit, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	// UpdateGuarded applies updates only while the kit still has the expected
	// status; the boolean reports whether a row was changed.
	UpdateGuarded(ctx context.Context, id uuid.UUID, expected enums.KitStatus, updates map[string]any) (bool, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
}

// ListQuery captures the admin browse filters.
type ListQuery struct {
	Pagination     pagination.Params
	Status         *enums.KitStatus
	RequiresReview *bool
	OrganizationID *uuid.UUID
}

// ListResult is one page of kits plus the cursor for the next page.
type ListResult struct {
	Kits       []models.Kit
	NextCursor string
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a kit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, kit *models.Kit) error {
	if kit.ID == uuid.Nil {
		kit.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(kit).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Kit, error) {
	var kit models.Kit
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&kit).Error
	if err != nil {
		return nil, err
	}
	return &kit, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Kit{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateGuarded(ctx context.Context, id uuid.UUID, expected enums.KitStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Kit{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Kit{})
	if query.Status != nil {
		qb = qb.Where("status = ?", *query.Status)
	}
	if query.RequiresReview != nil {
		qb = qb.Where("requires_review = ?", *query.RequiresReview)
	}
	if query.OrganizationID != nil {
		qb = qb.Where("organization_id = ?", *query.OrganizationID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Kit
	err = qb.Order("created_at DESC").Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.NextCursor(last.CreatedAt, last.ID)
	}

	return &ListResult{Kits: rows, NextCursor: nextCursor}, nil
}
