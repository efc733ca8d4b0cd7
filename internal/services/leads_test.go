package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadforms/internal/domain"
	"leadforms/internal/repository"
	apperrors "leadforms/pkg/errors"
)

// recordingSender captures every message; failFor lists recipients it rejects
type recordingSender struct {
	mu      sync.Mutex
	sent    []EmailMessage
	failFor map[string]bool
	failAll bool
}

func (s *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll || s.failFor[msg.To] {
		return errors.New("dial tcp: connection refused")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmailMessage(nil), s.sent...)
}

type failingRepository struct{}

func (failingRepository) Insert(context.Context, *domain.Lead) error {
	return apperrors.Wrap(apperrors.ErrCodeStore, "failed to save lead", errors.New("connection reset"))
}

func (failingRepository) FindRecent(context.Context, int) ([]domain.Lead, error) {
	return nil, apperrors.Wrap(apperrors.ErrCodeStore, "failed to fetch leads", errors.New("connection reset"))
}

func janePayload() map[string]any {
	return map[string]any{
		"firstName":        "Jane",
		"lastName":         "Doe",
		"email":            "jane@x.com",
		"phone":            "555-1234",
		"preferredContact": "email",
		"serviceDesired":   "Web Development",
	}
}

func newTestLeadService(repo repository.LeadRepository, sender EmailSender) *LeadService {
	svc := NewLeadService(repo, sender, NewLeadEmailComposer(), "admin@example.com")
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 14, 30, 0, 0, time.UTC) }
	return svc
}

func TestSubmitStoresLeadAndSendsBothEmails(t *testing.T) {
	repo := repository.NewInMemoryLeadRepository()
	sender := &recordingSender{}
	svc := newTestLeadService(repo, sender)

	lead, err := svc.Submit(context.Background(), janePayload())
	require.NoError(t, err)
	svc.Wait()

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, time.Date(2026, 10, 18, 14, 30, 0, 0, time.UTC), lead.CreatedAt)
	assert.Nil(t, lead.BillingAddress)
	assert.Equal(t, 1, repo.Count())

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "admin@example.com", msgs[0].To)
	assert.Equal(t, "New Web Development inquiry from Jane Doe", msgs[0].Subject)
	assert.Equal(t, "jane@x.com", msgs[1].To)
	assert.Equal(t, "Thank you for your Web Development inquiry", msgs[1].Subject)
}

func TestSubmitSucceedsWhenEveryEmailFails(t *testing.T) {
	repo := repository.NewInMemoryLeadRepository()
	svc := newTestLeadService(repo, &recordingSender{failAll: true})

	_, err := svc.Submit(context.Background(), janePayload())
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, 1, repo.Count())
}

func TestSubmitAdminFailureStillSendsConfirmation(t *testing.T) {
	sender := &recordingSender{failFor: map[string]bool{"admin@example.com": true}}
	svc := newTestLeadService(repository.NewInMemoryLeadRepository(), sender)

	_, err := svc.Submit(context.Background(), janePayload())
	require.NoError(t, err)
	svc.Wait()

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "jane@x.com", msgs[0].To)
}

func TestSubmitWithoutAdminAddressSendsConfirmationOnly(t *testing.T) {
	sender := &recordingSender{}
	svc := NewLeadService(repository.NewInMemoryLeadRepository(), sender, NewLeadEmailComposer(), "")

	_, err := svc.Submit(context.Background(), janePayload())
	require.NoError(t, err)
	svc.Wait()

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "jane@x.com", msgs[0].To)
}

func TestSubmitSurvivesCanceledRequestContext(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestLeadService(repository.NewInMemoryLeadRepository(), sender)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := svc.Submit(ctx, janePayload())
	require.NoError(t, err)
	cancel()
	svc.Wait()

	assert.Len(t, sender.messages(), 2)
}

func TestSubmitRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing first name", func(p map[string]any) { delete(p, "firstName") }},
		{"empty email", func(p map[string]any) { p["email"] = "" }},
		{"missing phone", func(p map[string]any) { delete(p, "phone") }},
		{"unknown contact method", func(p map[string]any) { p["preferredContact"] = "fax" }},
		{"unknown service", func(p map[string]any) { p["serviceDesired"] = "SEO" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewInMemoryLeadRepository()
			sender := &recordingSender{}
			svc := newTestLeadService(repo, sender)

			payload := janePayload()
			tt.mutate(payload)

			_, err := svc.Submit(context.Background(), payload)
			svc.Wait()

			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, 0, repo.Count())
			assert.Empty(t, sender.messages())
		})
	}
}

func TestSubmitStoreFailureSendsNothing(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestLeadService(failingRepository{}, sender)

	_, err := svc.Submit(context.Background(), janePayload())
	svc.Wait()

	require.Error(t, err)
	assert.True(t, apperrors.IsStore(err))
	assert.Empty(t, sender.messages())
}

func TestListReturnsNewestFirst(t *testing.T) {
	repo := repository.NewInMemoryLeadRepository()
	svc := newTestLeadService(repo, &recordingSender{})

	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"First", "Second", "Third"} {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		payload := janePayload()
		payload["firstName"] = name
		_, err := svc.Submit(context.Background(), payload)
		require.NoError(t, err)
	}
	svc.Wait()

	leads, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, "Third", leads[0].FirstName)
	assert.Equal(t, "Second", leads[1].FirstName)
	assert.Equal(t, "First", leads[2].FirstName)
}

func TestListEmptyIsNotNil(t *testing.T) {
	svc := newTestLeadService(repository.NewInMemoryLeadRepository(), &recordingSender{})

	leads, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, leads)
	assert.Empty(t, leads)
}

func TestListStoreFailure(t *testing.T) {
	svc := newTestLeadService(failingRepository{}, &recordingSender{})

	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsStore(err))
}

func TestHealthCheck(t *testing.T) {
	result, err := NewHealthService().Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", result.Status)
}
