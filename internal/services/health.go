package services

import "context"

// HealthResult is the body of GET /health
type HealthResult struct {
	Status string `json:"status"`
}

// HealthService implements the health service
type HealthService struct{}

// NewHealthService creates a new health service
func NewHealthService() *HealthService {
	return &HealthService{}
}

// Check reports liveness only; dependencies are not checked
func (s *HealthService) Check(ctx context.Context) (*HealthResult, error) {
	return &HealthResult{Status: "OK"}, nil
}
