package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"leadforms/internal/domain"
)

// InMemoryLeadRepository keeps leads in process memory. Used for local runs
// (DATABASE_URL=memory://) and tests.
type InMemoryLeadRepository struct {
	mu    sync.RWMutex
	leads []domain.Lead
	now   func() time.Time
}

// NewInMemoryLeadRepository creates a new in-memory repository
func NewInMemoryLeadRepository() *InMemoryLeadRepository {
	return &InMemoryLeadRepository{now: time.Now}
}

// Insert implements LeadRepository
func (r *InMemoryLeadRepository) Insert(ctx context.Context, lead *domain.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lead.AssignIdentity(r.now())

	stored := *lead
	if lead.BillingAddress != nil {
		address := *lead.BillingAddress
		stored.BillingAddress = &address
	}

	r.mu.Lock()
	r.leads = append(r.leads, stored)
	r.mu.Unlock()
	return nil
}

// FindRecent implements LeadRepository
func (r *InMemoryLeadRepository) FindRecent(ctx context.Context, limit int) ([]domain.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	leads := make([]domain.Lead, len(r.leads))
	copy(leads, r.leads)
	r.mu.RUnlock()

	sort.SliceStable(leads, func(i, j int) bool {
		if !leads[i].CreatedAt.Equal(leads[j].CreatedAt) {
			return leads[i].CreatedAt.After(leads[j].CreatedAt)
		}
		return leads[i].ID > leads[j].ID
	})

	if n := clampLimit(limit); len(leads) > n {
		leads = leads[:n]
	}
	return leads, nil
}

// Count returns the number of stored leads
func (r *InMemoryLeadRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}

var _ LeadRepository = (*InMemoryLeadRepository)(nil)
