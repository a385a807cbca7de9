package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/ticketsync/internal/model"
)

// ResultMessage is one processed webhook as written to the result stream.
type ResultMessage struct {
	ID         string // stream entry id, set when read back
	DeliveryID string
	Provider   string
	EventKind  string
	Status     model.Status
	TraceID    *string
	Result     *model.Result
	ReceivedAt time.Time
}

type Producer interface {
	Publish(ctx context.Context, msg ResultMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

// NewRedisProducer appends results to stream, trimming it to roughly maxLen
// entries when maxLen is positive.
func NewRedisProducer(client *redis.Client, stream string, maxLen int64, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger,
	}
}

func (p *redisProducer) Publish(ctx context.Context, msg ResultMessage) error {
	raw, err := json.Marshal(msg.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	receivedAt := msg.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	fields := map[string]any{
		"delivery_id": msg.DeliveryID,
		"provider":    msg.Provider,
		"event_kind":  msg.EventKind,
		"status":      string(msg.Status),
		"result":      string(raw),
		"received_at": receivedAt.Format(time.RFC3339Nano),
	}

	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("publish result: %w", err)
	}

	p.logger.DebugContext(ctx, "published result", "delivery_id", msg.DeliveryID, "event_kind", msg.EventKind, "status", msg.Status)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
