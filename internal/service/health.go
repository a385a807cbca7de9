package service

import (
	"context"

	"basegraph.app/ticketsync/internal/store"
)

type HealthStatus struct {
	JiraConnected   bool
	GitHubConnected bool
	GitLabConnected bool
	RedisConnected  bool
}

type HealthService interface {
	Check(ctx context.Context) HealthStatus
}

type healthService struct {
	configured HealthStatus
	deliveries store.DeliveryStore
}

// NewHealthService reports the clients that were configured at startup. Redis
// is pinged on every check.
func NewHealthService(configured HealthStatus, deliveries store.DeliveryStore) HealthService {
	return &healthService{configured: configured, deliveries: deliveries}
}

func (s *healthService) Check(ctx context.Context) HealthStatus {
	status := s.configured
	status.RedisConnected = s.deliveries != nil && s.deliveries.Ping(ctx) == nil
	return status
}
