package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"basegraph.app/ticketsync/common/logger"
	"basegraph.app/ticketsync/internal/http/dto"
	"basegraph.app/ticketsync/internal/mapper"
	"basegraph.app/ticketsync/internal/service"
)

const defaultProvider = "github"

// EventHandler receives provider webhooks, normalizes them and hands them to
// the ingest service. Processing outcomes are always answered with 200 so the
// provider does not mark the delivery as failed.
type EventHandler struct {
	eventIngest service.EventIngestService
	mappers     *mapper.MapperRegistry
}

func NewEventHandler(eventIngest service.EventIngestService, mappers *mapper.MapperRegistry) *EventHandler {
	return &EventHandler{
		eventIngest: eventIngest,
		mappers:     mappers,
	}
}

func (h *EventHandler) HandleEvent(c *gin.Context) {
	ctx := c.Request.Context()
	receivedAt := time.Now().UTC()

	provider := c.Param("provider")
	if provider == "" {
		provider = defaultProvider
	}

	m, err := h.mappers.Get(provider)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	var bodyMap map[string]any
	if err := json.Unmarshal(body, &bodyMap); err != nil {
		slog.WarnContext(ctx, "invalid webhook payload", "provider", provider, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	env, err := m.Map(ctx, bodyMap, headers)
	if err != nil {
		if errors.Is(err, mapper.ErrMissingEventHeader) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to map webhook", "provider", provider, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read webhook"})
		return
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Provider:      logger.Ptr(provider),
		EventCategory: logger.Ptr(env.Category),
		Component:     "ticketsync.http.webhook",
	})

	params := service.EventIngestParams{Envelope: env, ReceivedAt: receivedAt}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		traceID := spanCtx.TraceID().String()
		params.TraceID = &traceID
	}

	result, err := h.eventIngest.Ingest(ctx, params)
	if err != nil {
		if errors.Is(err, service.ErrEmptyPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to ingest event", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest event"})
		return
	}

	c.JSON(http.StatusOK, dto.NewEventResponse(result.Result, result.DeliveryID, result.Duplicated))
}
