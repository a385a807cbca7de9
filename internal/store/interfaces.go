package store

import (
	"context"
	"errors"

	"basegraph.app/ticketsync/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// DeliveryStore remembers the result produced for each webhook delivery so a
// redelivered webhook is answered without repeating tracker calls.
type DeliveryStore interface {
	Get(ctx context.Context, deliveryID string) (*model.Result, error)
	Put(ctx context.Context, deliveryID string, result *model.Result) error
	Ping(ctx context.Context) error
}
