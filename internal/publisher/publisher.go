package publisher

import (
	"context"
	"fmt"

	"agromonitor/internal/models"
	redisx "agromonitor/internal/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// EventAlertCreated is the event name attached to alert-created stream
// entries.
const EventAlertCreated = "alert.created"

// StreamPublisher publishes alert lifecycle events to a Redis Stream for
// downstream consumers (notification service, producer profile updater).
type StreamPublisher struct {
	redisClient *redis.Client
	stream      string
	logger      *zap.Logger
}

// NewStreamPublisher creates a stream publisher.
func NewStreamPublisher(redisClient *redis.Client, stream string, logger *zap.Logger) *StreamPublisher {
	return &StreamPublisher{
		redisClient: redisClient,
		stream:      stream,
		logger:      logger,
	}
}

// PublishAlertCreated appends an alert-created event to the stream. The
// caller treats this as best-effort.
func (p *StreamPublisher) PublishAlertCreated(ctx context.Context, alert *models.Alert) error {
	if alert == nil {
		return fmt.Errorf("alert is required")
	}

	id, err := redisx.PublishJSONToStream(ctx, p.redisClient, p.stream, EventAlertCreated, alert)
	if err != nil {
		return fmt.Errorf("failed to publish alert created event: %w", err)
	}

	p.logger.Debug("Alert created event appended to stream",
		zap.String("stream", p.stream),
		zap.String("entry_id", id),
		zap.String("alert_id", alert.ID.String()),
	)

	return nil
}
