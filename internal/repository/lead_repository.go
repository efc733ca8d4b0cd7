package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"leadforms/internal/domain"
	"leadforms/internal/metrics"
	apperrors "leadforms/pkg/errors"
)

// GormLeadRepository stores leads in a SQL database (PostgreSQL or SQLite)
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new SQL-backed lead repository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// Insert implements LeadRepository
func (r *GormLeadRepository) Insert(ctx context.Context, lead *domain.Lead) error {
	start := time.Now()
	lead.AssignIdentity(start)

	err := r.db.WithContext(ctx).Create(lead).Error
	metrics.RecordDBQuery("insert", time.Since(start), err)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStore, "failed to insert lead", err)
	}
	return nil
}

// FindRecent implements LeadRepository
func (r *GormLeadRepository) FindRecent(ctx context.Context, limit int) ([]domain.Lead, error) {
	start := time.Now()

	leads := make([]domain.Lead, 0, clampLimit(limit))
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(clampLimit(limit)).
		Find(&leads).Error
	metrics.RecordDBQuery("find_recent", time.Since(start), err)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStore, "failed to fetch leads", err)
	}
	return leads, nil
}

var _ LeadRepository = (*GormLeadRepository)(nil)
