package service

import (
	"log/slog"

	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/dispatch"
	"basegraph.app/ticketsync/internal/queue"
	"basegraph.app/ticketsync/internal/store"
	"basegraph.app/ticketsync/internal/strategy"
)

type Services struct {
	dispatcher  *dispatch.Dispatcher
	conns       strategy.Connections
	transitions config.TransitionConfig
	deliveries  store.DeliveryStore
	producer    queue.Producer
	health      HealthStatus
	logger      *slog.Logger
}

type ServicesParams struct {
	Dispatcher  *dispatch.Dispatcher
	Connections strategy.Connections
	Transitions config.TransitionConfig
	Deliveries  store.DeliveryStore
	Producer    queue.Producer
	// Configured marks which external clients were set up at startup.
	Configured HealthStatus
	Logger     *slog.Logger
}

func NewServices(params ServicesParams) *Services {
	return &Services{
		dispatcher:  params.Dispatcher,
		conns:       params.Connections,
		transitions: params.Transitions,
		deliveries:  params.Deliveries,
		producer:    params.Producer,
		health:      params.Configured,
		logger:      params.Logger,
	}
}

func (s *Services) Events() EventIngestService {
	return NewEventIngestService(EventIngestDeps{
		Dispatcher:  s.dispatcher,
		Connections: s.conns,
		Transitions: s.transitions,
		Deliveries:  s.deliveries,
		Producer:    s.producer,
		Logger:      s.logger,
	})
}

func (s *Services) Health() HealthService {
	return NewHealthService(s.health, s.deliveries)
}
