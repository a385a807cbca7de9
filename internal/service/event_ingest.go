package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"basegraph.app/ticketsync/common/id"
	"basegraph.app/ticketsync/common/logger"
	"basegraph.app/ticketsync/core/config"
	"basegraph.app/ticketsync/internal/dispatch"
	"basegraph.app/ticketsync/internal/event"
	"basegraph.app/ticketsync/internal/model"
	"basegraph.app/ticketsync/internal/queue"
	"basegraph.app/ticketsync/internal/store"
	"basegraph.app/ticketsync/internal/strategy"
)

type EventIngestParams struct {
	Envelope   event.Envelope
	TraceID    *string
	ReceivedAt time.Time
}

type EventIngestResult struct {
	Result     *model.Result
	DeliveryID string
	Duplicated bool
}

// EventIngestService processes one webhook delivery end to end: redelivery
// check, dispatch, caching and publishing of the result.
type EventIngestService interface {
	Ingest(ctx context.Context, params EventIngestParams) (*EventIngestResult, error)
}

var ErrEmptyPayload = errors.New("payload is required")

type eventIngestService struct {
	dispatcher  *dispatch.Dispatcher
	conns       strategy.Connections
	transitions config.TransitionConfig
	deliveries  store.DeliveryStore
	producer    queue.Producer
	logger      *slog.Logger
}

type EventIngestDeps struct {
	Dispatcher  *dispatch.Dispatcher
	Connections strategy.Connections
	Transitions config.TransitionConfig
	Deliveries  store.DeliveryStore // optional
	Producer    queue.Producer      // optional
	Logger      *slog.Logger        // optional
}

func NewEventIngestService(deps EventIngestDeps) EventIngestService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Deliveries == nil {
		deps.Deliveries = store.NewNopDeliveryStore()
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = dispatch.New(nil)
	}
	return &eventIngestService{
		dispatcher:  deps.Dispatcher,
		conns:       deps.Connections,
		transitions: deps.Transitions,
		deliveries:  deps.Deliveries,
		producer:    deps.Producer,
		logger:      deps.Logger,
	}
}

func (s *eventIngestService) Ingest(ctx context.Context, params EventIngestParams) (*EventIngestResult, error) {
	env := params.Envelope
	if env.Payload == nil {
		return nil, ErrEmptyPayload
	}

	generated := env.DeliveryID == ""
	if generated {
		env.DeliveryID = "gen-" + id.NewString()
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		DeliveryID:    logger.Ptr(env.DeliveryID),
		Provider:      logger.Ptr(string(env.Source)),
		EventCategory: logger.Ptr(env.Category),
		EventAction:   logger.Ptr(env.Action),
		Component:     "ticketsync.service.event_ingest",
	})

	if !generated {
		cached, err := s.deliveries.Get(ctx, env.DeliveryID)
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "duplicate delivery, returning cached result", "status", cached.Status)
			return &EventIngestResult{Result: cached, DeliveryID: env.DeliveryID, Duplicated: true}, nil
		case !errors.Is(err, store.ErrNotFound):
			s.logger.WarnContext(ctx, "delivery cache lookup failed", "error", err)
		}
	}

	result := s.dispatcher.Process(ctx, env, s.conns, s.transitions)
	kind, _ := result.Details["event_kind"].(string)

	// Only fully successful results are cached so a manual redelivery retries
	// failed transitions.
	if !generated && result.Status == model.StatusSuccess {
		if err := s.deliveries.Put(ctx, env.DeliveryID, result); err != nil {
			s.logger.WarnContext(ctx, "caching delivery result failed", "error", err)
		}
	}

	if s.producer != nil {
		receivedAt := params.ReceivedAt
		if receivedAt.IsZero() {
			receivedAt = time.Now().UTC()
		}
		if err := s.producer.Publish(ctx, queue.ResultMessage{
			DeliveryID: env.DeliveryID,
			Provider:   string(env.Source),
			EventKind:  kind,
			Status:     result.Status,
			TraceID:    params.TraceID,
			Result:     result,
			ReceivedAt: receivedAt,
		}); err != nil {
			s.logger.WarnContext(ctx, "publishing result failed", "error", err)
		}
	}

	s.logger.InfoContext(ctx, "event processed",
		"event_kind", kind,
		"status", result.Status,
		"message", result.Message,
		"ticket_keys", result.TicketKeys,
		"actions", result.Descriptions(),
		"failed_actions", result.Failed(),
	)

	return &EventIngestResult{Result: result, DeliveryID: env.DeliveryID}, nil
}
