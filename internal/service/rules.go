package service

import (
	"context"
	"fmt"
	"time"

	"agromonitor/internal/cache"
	"agromonitor/internal/models"
	"agromonitor/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RuleService owns the rule management surface. Every mutation drops the
// affected plot's cached rule set so the engine picks the change up on the
// next reading instead of waiting for the TTL.
type RuleService struct {
	repo      *repository.RuleRepository
	ruleCache *cache.CachedRuleStore
	logger    *zap.Logger
}

// NewRuleService creates a rule service.
func NewRuleService(repo *repository.RuleRepository, ruleCache *cache.CachedRuleStore, logger *zap.Logger) *RuleService {
	return &RuleService{
		repo:      repo,
		ruleCache: ruleCache,
		logger:    logger,
	}
}

// GetRule returns one rule by id.
func (s *RuleService) GetRule(ctx context.Context, ruleID uuid.UUID) (*models.Rule, error) {
	return s.repo.GetRule(ctx, ruleID)
}

// ListRulesByProducer returns all rules of a producer, newest first.
func (s *RuleService) ListRulesByProducer(ctx context.Context, producerID uuid.UUID) ([]models.Rule, error) {
	return s.repo.ListRulesByProducer(ctx, producerID)
}

// CreateRule stores a new rule. Identity and timestamps are assigned here
// when the caller left them empty.
func (s *RuleService) CreateRule(ctx context.Context, rule *models.Rule) error {
	if rule == nil {
		return fmt.Errorf("rule is required")
	}

	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return err
	}

	s.invalidatePlot(ctx, rule.PlotID)
	return nil
}

// UpdateRule rewrites a rule's mutable attributes. Both the previous and the
// new plot scope are invalidated in case the rule moved.
func (s *RuleService) UpdateRule(ctx context.Context, rule *models.Rule) error {
	if rule == nil {
		return fmt.Errorf("rule is required")
	}

	previous, err := s.repo.GetRule(ctx, rule.ID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return err
	}

	s.invalidatePlot(ctx, previous.PlotID)
	if rule.PlotID != nil && (previous.PlotID == nil || *previous.PlotID != *rule.PlotID) {
		s.invalidatePlot(ctx, rule.PlotID)
	}
	return nil
}

// SetRuleActive flips a rule's active flag.
func (s *RuleService) SetRuleActive(ctx context.Context, ruleID uuid.UUID, active bool) error {
	rule, err := s.repo.GetRule(ctx, ruleID)
	if err != nil {
		return err
	}

	if err := s.repo.SetRuleActive(ctx, ruleID, active); err != nil {
		return err
	}

	s.invalidatePlot(ctx, rule.PlotID)
	return nil
}

// DeleteRule removes a rule.
func (s *RuleService) DeleteRule(ctx context.Context, ruleID uuid.UUID) error {
	rule, err := s.repo.GetRule(ctx, ruleID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteRule(ctx, ruleID); err != nil {
		return err
	}

	s.invalidatePlot(ctx, rule.PlotID)
	return nil
}

// invalidatePlot drops a plot's cached rule set. A producer-wide rule (nil
// plot) has no single key to drop; those changes surface when the per-plot
// TTL lapses.
func (s *RuleService) invalidatePlot(ctx context.Context, plotID *uuid.UUID) {
	if plotID == nil {
		return
	}
	if err := s.ruleCache.Invalidate(ctx, *plotID); err != nil {
		s.logger.Warn("Failed to invalidate rule cache",
			zap.String("plot_id", plotID.String()),
			zap.Error(err),
		)
	}
}
