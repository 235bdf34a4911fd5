package application

import (
	"context"

	"github.com/ericfisherdev/codeconvert/internal/domain/port/driven"
)

// HealthStatus is the result of a readiness check.
type HealthStatus struct {
	StoreErr           error
	ProviderConfigured bool
}

// Healthy reports whether the credential store is reachable. A missing
// provider only degrades conversions, not the service.
func (h HealthStatus) Healthy() bool {
	return h.StoreErr == nil
}

// HealthService checks the dependencies the API needs to serve requests.
type HealthService struct {
	users     driven.UserStore
	converter *ConverterService
}

// NewHealthService creates a new HealthService with the required dependencies.
func NewHealthService(users driven.UserStore, converter *ConverterService) *HealthService {
	return &HealthService{
		users:     users,
		converter: converter,
	}
}

// Check pings the credential store and reports provider configuration.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	return HealthStatus{
		StoreErr:           s.users.Ping(ctx),
		ProviderConfigured: s.converter != nil && s.converter.Configured(),
	}
}
