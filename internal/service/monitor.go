package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agromonitor/internal/cache"
	"agromonitor/internal/config"
	"agromonitor/internal/consumer"
	"agromonitor/internal/database"
	"agromonitor/internal/engine"
	"agromonitor/internal/mqtt"
	"agromonitor/internal/publisher"
	redisx "agromonitor/internal/redis"

	"go.uber.org/zap"

	"agromonitor/internal/repository"
)

// MonitorService assembles the stores, the evaluation engine and the
// transports into a runnable unit.
type MonitorService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redisx.Client
	mqttClient  *mqtt.Client
	logger      *zap.Logger

	ruleRepo    *repository.RuleRepository
	alertRepo   *repository.AlertRepository
	statusRepo  *repository.StatusHistoryRepository
	ruleCache   *cache.CachedRuleStore
	ruleService *RuleService
	engine      *engine.Engine
	consumer    *consumer.ReadingConsumer
}

// NewMonitorService connects to PostgreSQL, Redis and the MQTT broker and
// wires all components.
func NewMonitorService(cfg *config.Config, logger *zap.Logger) (*MonitorService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := redisx.NewClient(&cfg.Redis)
	ctx := context.Background()
	if err := redisx.Ping(ctx, redisClient); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	mqttClient, err := mqtt.NewClient(&cfg.MQTT, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	ruleRepo := repository.NewRuleRepository(db, logger)
	alertRepo := repository.NewAlertRepository(db, logger)
	statusRepo := repository.NewStatusHistoryRepository(db, logger)

	ruleCache := cache.NewCachedRuleStore(
		ruleRepo,
		redisClient,
		time.Duration(cfg.Engine.RuleCacheTTL)*time.Second,
		logger,
	)

	ruleService := NewRuleService(ruleRepo, ruleCache, logger)

	streamPublisher := publisher.NewStreamPublisher(redisClient, cfg.Engine.AlertStream, logger)

	eng := engine.New(ruleCache, alertRepo, statusRepo, streamPublisher, logger)

	readingConsumer := consumer.NewReadingConsumer(cfg, mqttClient, eng, logger)

	return &MonitorService{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		mqttClient:  mqttClient,
		logger:      logger,
		ruleRepo:    ruleRepo,
		alertRepo:   alertRepo,
		statusRepo:  statusRepo,
		ruleCache:   ruleCache,
		ruleService: ruleService,
		engine:      eng,
		consumer:    readingConsumer,
	}, nil
}

// Rules exposes the rule management surface.
func (s *MonitorService) Rules() *RuleService {
	return s.ruleService
}

// Alerts exposes the alert management surface.
func (s *MonitorService) Alerts() *repository.AlertRepository {
	return s.alertRepo
}

// StatusHistory exposes the plot status timeline.
func (s *MonitorService) StatusHistory() *repository.StatusHistoryRepository {
	return s.statusRepo
}

// Start runs the reading consumer until the context is cancelled.
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info("Starting monitor service")

	if err := s.consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reading consumer: %w", err)
	}

	return nil
}

// Stop releases transports and connections.
func (s *MonitorService) Stop() error {
	s.logger.Info("Stopping monitor service")

	if err := s.consumer.Stop(); err != nil {
		s.logger.Error("Failed to stop reading consumer",
			zap.Error(err),
		)
	}

	s.mqttClient.Disconnect()

	if err := database.Close(s.db); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}

	if err := redisx.Close(s.redisClient); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}

	return nil
}
