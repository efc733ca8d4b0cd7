package services

import (
	"context"
	"log"
	"sync"
	"time"

	"leadforms/internal/domain"
	"leadforms/internal/logging"
	"leadforms/internal/metrics"
	"leadforms/internal/repository"
	apperrors "leadforms/pkg/errors"
)

// Email kinds, used as metric labels
const (
	emailKindAdmin        = "admin"
	emailKindConfirmation = "confirmation"
)

// LeadService implements lead submission and listing
type LeadService struct {
	repo       repository.LeadRepository
	sender     EmailSender
	composer   *LeadEmailComposer
	adminEmail string
	now        func() time.Time

	// in-flight notification tasks
	wg sync.WaitGroup
}

// NewLeadService creates a new lead service
func NewLeadService(repo repository.LeadRepository, sender EmailSender, composer *LeadEmailComposer, adminEmail string) *LeadService {
	return &LeadService{
		repo:       repo,
		sender:     sender,
		composer:   composer,
		adminEmail: adminEmail,
		now:        time.Now,
	}
}

// Submit validates and stores a form submission, then sends the admin
// notification and user confirmation in the background. Email failures never
// reach the caller.
func (s *LeadService) Submit(ctx context.Context, payload map[string]any) (*domain.Lead, error) {
	lead, err := domain.ParseLead(payload, s.now())
	if err != nil {
		log.Printf("[LEADS] Submit failed: request_id=%s, validation error: %v", logging.RequestID(ctx), err)
		metrics.RecordLeadSubmission(metrics.SubmissionInvalid)
		return nil, err
	}

	if err := s.repo.Insert(ctx, lead); err != nil {
		log.Printf("[LEADS] Submit failed: request_id=%s, store error: %v", logging.RequestID(ctx), err)
		metrics.RecordLeadSubmission(metrics.SubmissionStoreError)
		return nil, err
	}

	log.Printf("[LEADS] Submit successful: request_id=%s, id=%s, service=%s", logging.RequestID(ctx), lead.ID, lead.ServiceDesired)
	metrics.RecordLeadSubmission(metrics.SubmissionSuccess)

	// the goroutine gets its own copy; the caller may keep using lead
	stored := *lead
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.notify(context.WithoutCancel(ctx), &stored)
	}()

	return lead, nil
}

// List returns the most recent leads, newest first
func (s *LeadService) List(ctx context.Context) ([]domain.Lead, error) {
	leads, err := s.repo.FindRecent(ctx, repository.RecentLeadsLimit)
	if err != nil {
		log.Printf("[LEADS] List failed: request_id=%s, store error: %v", logging.RequestID(ctx), err)
		return nil, err
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	log.Printf("[LEADS] List successful: returned %d leads", len(leads))
	return leads, nil
}

// Wait blocks until every notification started by Submit has finished
func (s *LeadService) Wait() {
	s.wg.Wait()
}

// notify attempts both emails; one failing does not stop the other
func (s *LeadService) notify(ctx context.Context, lead *domain.Lead) {
	s.deliver(ctx, emailKindAdmin, lead, func() (EmailMessage, error) {
		if s.adminEmail == "" {
			return EmailMessage{}, apperrors.New(apperrors.ErrCodeTransport, "ADMIN_EMAIL is not configured")
		}
		return s.composer.AdminNotification(lead, s.adminEmail)
	})
	s.deliver(ctx, emailKindConfirmation, lead, func() (EmailMessage, error) {
		return s.composer.UserConfirmation(lead)
	})
}

func (s *LeadService) deliver(ctx context.Context, kind string, lead *domain.Lead, compose func() (EmailMessage, error)) {
	msg, err := compose()
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}
	metrics.RecordLeadEmail(kind, err)

	if err != nil {
		if !apperrors.IsTransport(err) {
			err = apperrors.Wrap(apperrors.ErrCodeTransport, "failed to send "+kind+" email", err)
		}
		log.Printf("[EMAIL] Warning: %s email for lead id=%s failed: %v", kind, lead.ID, err)
		return
	}
	log.Printf("[EMAIL] %s email sent for lead id=%s", kind, lead.ID)
}
