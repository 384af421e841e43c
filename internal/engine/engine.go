package engine

import (
	"context"
	"fmt"

	"agromonitor/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RuleStore supplies the rules eligible to fire for a plot: active rules
// scoped to the plot plus producer-wide rules. The engine trusts the plot
// scoping and only filters by monitored field.
type RuleStore interface {
	GetActiveRulesForPlot(ctx context.Context, plotID uuid.UUID) ([]models.Rule, error)
}

// AlertStore persists alerts. InsertAlert reports false when the store's
// uniqueness constraint suppressed the row because an unresolved alert for
// the same (rule, plot) pair already exists.
type AlertStore interface {
	FindUnresolvedAlert(ctx context.Context, ruleID, plotID uuid.UUID) (*models.Alert, error)
	InsertAlert(ctx context.Context, alert *models.Alert) (bool, error)
}

// StatusStore holds the derived status timeline per plot.
type StatusStore interface {
	GetLastStatus(ctx context.Context, plotID uuid.UUID) (*models.StatusEntry, error)
	InsertStatusEntry(ctx context.Context, entry *models.StatusEntry) error
}

// Publisher fans out alert-created events. Best-effort: failures are logged
// by the engine and never abort processing.
type Publisher interface {
	PublishAlertCreated(ctx context.Context, alert *models.Alert) error
}

// Engine evaluates incoming sensor readings against configured rules,
// raising deduplicated alerts and maintaining each plot's status timeline.
type Engine struct {
	rules     RuleStore
	alerts    AlertStore
	history   StatusStore
	publisher Publisher
	logger    *zap.Logger
}

// New creates an evaluation engine.
func New(rules RuleStore, alerts AlertStore, history StatusStore, publisher Publisher, logger *zap.Logger) *Engine {
	return &Engine{
		rules:     rules,
		alerts:    alerts,
		history:   history,
		publisher: publisher,
		logger:    logger,
	}
}

// ProcessReading handles one sensor reading: fetches the applicable rules,
// evaluates every present field against them, creates alerts for violations
// and updates the plot status history. Rule-fetch and alert-persistence
// errors are returned to the caller (the transport decides on redelivery);
// publish and status-history failures are logged and absorbed.
func (e *Engine) ProcessReading(ctx context.Context, reading *models.ReadingEvent) error {
	if reading == nil {
		return fmt.Errorf("reading is required")
	}

	e.logger.Info("Processing reading",
		zap.String("reading_id", reading.ReadingID.String()),
		zap.String("plot_id", reading.PlotID.String()),
	)

	rules, err := e.rules.GetActiveRulesForPlot(ctx, reading.PlotID)
	if err != nil {
		return fmt.Errorf("failed to get active rules for plot %s: %w", reading.PlotID, err)
	}

	fields := reading.FieldValues()

	if len(rules) == 0 {
		e.logger.Debug("No active rules for plot",
			zap.String("plot_id", reading.PlotID.String()),
		)
	} else {
		// Fields are independent of each other; evaluate them concurrently.
		// Dedup safety for a (rule, plot) pair is enforced by the alert
		// store's uniqueness constraint, not by serialization here.
		g, gctx := errgroup.WithContext(ctx)
		for _, fv := range fields {
			fv := fv
			g.Go(func() error {
				return e.evaluateField(gctx, reading, rules, fv)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	// Status tracking is secondary to alerting: failures are logged as
	// warnings and the reading still counts as processed.
	e.updateStatusHistory(ctx, reading)

	return nil
}

// evaluateField runs one measured value against every rule watching its
// field.
func (e *Engine) evaluateField(ctx context.Context, reading *models.ReadingEvent, rules []models.Rule, fv models.FieldValue) error {
	for _, rule := range rules {
		if !FieldMatches(rule.Field, fv.Field) {
			continue
		}

		if !Evaluate(rule.Operator, fv.Value, rule.Threshold) {
			continue
		}

		e.logger.Info("Rule violated",
			zap.String("rule_id", rule.ID.String()),
			zap.String("rule_name", rule.Name),
			zap.String("field", fv.Field),
			zap.String("value", fv.Value.String()),
			zap.String("operator", string(rule.Operator)),
			zap.String("threshold", rule.Threshold.String()),
		)

		if err := e.createAlert(ctx, rule, reading, fv); err != nil {
			return err
		}
	}

	return nil
}

// createAlert raises an alert for a violated rule unless an unresolved alert
// already exists for the (rule, plot) pair.
func (e *Engine) createAlert(ctx context.Context, rule models.Rule, reading *models.ReadingEvent, fv models.FieldValue) error {
	existing, err := e.alerts.FindUnresolvedAlert(ctx, rule.ID, reading.PlotID)
	if err != nil {
		return fmt.Errorf("failed to check for unresolved alert: %w", err)
	}
	if existing != nil {
		e.logger.Debug("Unresolved alert already exists, skipping",
			zap.String("rule_id", rule.ID.String()),
			zap.String("plot_id", reading.PlotID.String()),
			zap.String("alert_id", existing.ID.String()),
		)
		return nil
	}

	alert := buildAlert(rule, reading, fv)

	inserted, err := e.alerts.InsertAlert(ctx, alert)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	if !inserted {
		// A concurrent reading won the race; the store's constraint kept
		// the invariant, nothing more to do.
		e.logger.Debug("Alert insert suppressed by existing unresolved alert",
			zap.String("rule_id", rule.ID.String()),
			zap.String("plot_id", reading.PlotID.String()),
		)
		return nil
	}

	e.logger.Info("Alert created",
		zap.String("alert_id", alert.ID.String()),
		zap.String("alert_type", string(alert.Type)),
		zap.String("severity", string(alert.Severity)),
	)

	if err := e.publisher.PublishAlertCreated(ctx, alert); err != nil {
		// The alert is already persisted; the event can be reconciled later.
		e.logger.Error("Failed to publish alert created event",
			zap.String("alert_id", alert.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	e.logger.Info("Alert created event published",
		zap.String("alert_id", alert.ID.String()),
	)

	return nil
}

// updateStatusHistory derives the plot status from the reading and appends a
// history entry when the label changed.
func (e *Engine) updateStatusHistory(ctx context.Context, reading *models.ReadingEvent) {
	status := DeriveStatus(reading)

	last, err := e.history.GetLastStatus(ctx, reading.PlotID)
	if err != nil {
		e.logger.Warn("Failed to get last plot status",
			zap.String("plot_id", reading.PlotID.String()),
			zap.Error(err),
		)
		return
	}

	if last != nil && last.Status == status {
		return
	}

	entry := buildStatusEntry(reading, status)
	if err := e.history.InsertStatusEntry(ctx, entry); err != nil {
		e.logger.Warn("Failed to insert plot status entry",
			zap.String("plot_id", reading.PlotID.String()),
			zap.String("status", status),
			zap.Error(err),
		)
		return
	}

	e.logger.Debug("Plot status updated",
		zap.String("plot_id", reading.PlotID.String()),
		zap.String("status", status),
	)
}
