package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/ticketsync/internal/model"
)

type Reader struct {
	client *redis.Client
	stream string
}

func NewReader(client *redis.Client, stream string) *Reader {
	return &Reader{client: client, stream: stream}
}

// Recent returns up to n results, newest first.
func (r *Reader) Recent(ctx context.Context, n int64) ([]ResultMessage, error) {
	entries, err := r.client.XRevRangeN(ctx, r.stream, "+", "-", n).Result()
	if err != nil {
		return nil, fmt.Errorf("read result stream: %w", err)
	}

	out := make([]ResultMessage, 0, len(entries))
	for _, entry := range entries {
		msg, err := parseMessage(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func parseMessage(entry redis.XMessage) (ResultMessage, error) {
	msg := ResultMessage{
		ID:         entry.ID,
		DeliveryID: stringField(entry.Values, "delivery_id"),
		Provider:   stringField(entry.Values, "provider"),
		EventKind:  stringField(entry.Values, "event_kind"),
		Status:     model.Status(stringField(entry.Values, "status")),
	}

	if traceID := stringField(entry.Values, "trace_id"); traceID != "" {
		msg.TraceID = &traceID
	}
	if ts := stringField(entry.Values, "received_at"); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return ResultMessage{}, fmt.Errorf("parse received_at of %s: %w", entry.ID, err)
		}
		msg.ReceivedAt = t
	}
	if raw := stringField(entry.Values, "result"); raw != "" {
		var result model.Result
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return ResultMessage{}, fmt.Errorf("decode result of %s: %w", entry.ID, err)
		}
		msg.Result = &result
	}
	return msg, nil
}

func stringField(values map[string]any, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}
