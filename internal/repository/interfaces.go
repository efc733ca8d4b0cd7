package repository

import (
	"context"

	"leadforms/internal/domain"
)

// RecentLeadsLimit caps every listing of leads
const RecentLeadsLimit = 50

// LeadRepository is the persistence store for leads. Leads are insert-only.
type LeadRepository interface {
	// Insert stores a new lead, assigning its id and creation time if unset.
	Insert(ctx context.Context, lead *domain.Lead) error
	// FindRecent returns up to limit leads, newest first.
	FindRecent(ctx context.Context, limit int) ([]domain.Lead, error)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > RecentLeadsLimit {
		return RecentLeadsLimit
	}
	return limit
}
