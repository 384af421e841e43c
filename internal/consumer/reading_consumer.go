package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agromonitor/internal/config"
	"agromonitor/internal/models"
	"agromonitor/internal/mqtt"

	"go.uber.org/zap"
)

// Processor handles one decoded reading event.
type Processor interface {
	ProcessReading(ctx context.Context, reading *models.ReadingEvent) error
}

// ReadingConsumer subscribes to the sensor readings MQTT topic and feeds
// each reading to the evaluation engine.
type ReadingConsumer struct {
	config     *config.Config
	mqttClient *mqtt.Client
	processor  Processor
	logger     *zap.Logger

	ctx context.Context
}

// NewReadingConsumer creates a reading consumer.
func NewReadingConsumer(
	cfg *config.Config,
	mqttClient *mqtt.Client,
	processor Processor,
	logger *zap.Logger,
) *ReadingConsumer {
	return &ReadingConsumer{
		config:     cfg,
		mqttClient: mqttClient,
		processor:  processor,
		logger:     logger,
	}
}

// Start subscribes to the readings topic and blocks until the context is
// cancelled.
func (c *ReadingConsumer) Start(ctx context.Context) error {
	topic := c.config.MQTT.ReadingsTopic
	if topic == "" {
		return fmt.Errorf("readings MQTT topic not configured")
	}

	c.ctx = ctx

	if err := c.mqttClient.Subscribe(topic, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to readings topic: %w", err)
	}

	c.logger.Info("Reading consumer started",
		zap.String("topic", topic),
	)

	<-ctx.Done()
	return nil
}

// Stop unsubscribes from the readings topic.
func (c *ReadingConsumer) Stop() error {
	topic := c.config.MQTT.ReadingsTopic
	if topic != "" {
		if err := c.mqttClient.Unsubscribe(topic); err != nil {
			c.logger.Error("Failed to unsubscribe", zap.Error(err))
			return err
		}
	}

	c.logger.Info("Reading consumer stopped")
	return nil
}

// handleMessage decodes and processes one reading message. A failed reading
// is logged and dropped rather than redelivered, so a poison message cannot
// wedge the feed.
func (c *ReadingConsumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received reading message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	var reading models.ReadingEvent
	if err := json.Unmarshal(payload, &reading); err != nil {
		c.logger.Error("Failed to unmarshal reading message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal reading: %w", err)
	}

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := time.Duration(c.config.Engine.ProcessTimeout) * time.Second
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := c.processor.ProcessReading(ctx, &reading); err != nil {
		c.logger.Error("Failed to process reading",
			zap.String("reading_id", reading.ReadingID.String()),
			zap.String("plot_id", reading.PlotID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to process reading: %w", err)
	}

	return nil
}
