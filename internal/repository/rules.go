package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"agromonitor/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RuleRepository stores producer-configured alert rules.
type RuleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRuleRepository creates a rule repository.
func NewRuleRepository(db *sql.DB, logger *zap.Logger) *RuleRepository {
	return &RuleRepository{
		db:     db,
		logger: logger,
	}
}

const ruleColumns = `
	id,
	producer_id,
	plot_id,
	name,
	description,
	field,
	operator,
	threshold,
	duration_hours,
	alert_type,
	severity,
	crop_id,
	active,
	created_at,
	updated_at`

// GetActiveRulesForPlot returns the active rules eligible to fire for a
// plot: rules scoped to the plot plus producer-wide rules (plot_id IS NULL).
func (r *RuleRepository) GetActiveRulesForPlot(ctx context.Context, plotID uuid.UUID) ([]models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM alert_rules
		WHERE active = TRUE
		  AND (plot_id = $1 OR plot_id IS NULL)
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, plotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active rules: %w", err)
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	return rules, nil
}

// GetRule returns a single rule by id.
func (r *RuleRepository) GetRule(ctx context.Context, ruleID uuid.UUID) (*models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM alert_rules
		WHERE id = $1
	`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, ruleID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("rule not found: %s", ruleID)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return rule, nil
}

// ListRulesByProducer returns all rules owned by a producer, newest first.
func (r *RuleRepository) ListRulesByProducer(ctx context.Context, producerID uuid.UUID) ([]models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM alert_rules
		WHERE producer_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, producerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	return rules, nil
}

// CreateRule inserts a new rule. The monitored field must be one of the
// canonical field names.
func (r *RuleRepository) CreateRule(ctx context.Context, rule *models.Rule) error {
	if rule == nil {
		return fmt.Errorf("rule is required")
	}
	if err := validateRuleField(rule.Field); err != nil {
		return err
	}

	query := `
		INSERT INTO alert_rules (
			id, producer_id, plot_id, name, description, field, operator,
			threshold, duration_hours, alert_type, severity, crop_id, active,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.ProducerID,
		rule.PlotID,
		rule.Name,
		rule.Description,
		strings.ToLower(rule.Field),
		string(rule.Operator),
		rule.Threshold.String(),
		rule.DurationHours,
		string(rule.AlertType),
		string(rule.Severity),
		rule.CropID,
		rule.Active,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	r.logger.Info("Rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("field", rule.Field),
		zap.String("operator", string(rule.Operator)),
	)

	return nil
}

// UpdateRule rewrites the mutable attributes of a rule.
func (r *RuleRepository) UpdateRule(ctx context.Context, rule *models.Rule) error {
	if rule == nil {
		return fmt.Errorf("rule is required")
	}
	if err := validateRuleField(rule.Field); err != nil {
		return err
	}

	query := `
		UPDATE alert_rules
		SET name = $2,
		    description = $3,
		    field = $4,
		    operator = $5,
		    threshold = $6,
		    duration_hours = $7,
		    alert_type = $8,
		    severity = $9,
		    crop_id = $10,
		    updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.Name,
		rule.Description,
		strings.ToLower(rule.Field),
		string(rule.Operator),
		rule.Threshold.String(),
		rule.DurationHours,
		string(rule.AlertType),
		string(rule.Severity),
		rule.CropID,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule not found: %s", rule.ID)
	}

	return nil
}

// SetRuleActive flips a rule's active flag. Inactive rules are never
// evaluated.
func (r *RuleRepository) SetRuleActive(ctx context.Context, ruleID uuid.UUID, active bool) error {
	query := `
		UPDATE alert_rules
		SET active = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, ruleID, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set rule active: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule not found: %s", ruleID)
	}

	return nil
}

// DeleteRule removes a rule.
func (r *RuleRepository) DeleteRule(ctx context.Context, ruleID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alert_rules WHERE id = $1`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule not found: %s", ruleID)
	}

	return nil
}

func validateRuleField(field string) error {
	for _, known := range models.MonitoredFields() {
		if strings.EqualFold(field, known) {
			return nil
		}
	}
	return fmt.Errorf("unknown monitored field: %s", field)
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*models.Rule, error) {
	var rule models.Rule
	var plotID, cropID uuid.NullUUID
	var description sql.NullString
	var durationHours sql.NullInt64
	var operator, alertType, severity string

	err := row.Scan(
		&rule.ID,
		&rule.ProducerID,
		&plotID,
		&rule.Name,
		&description,
		&rule.Field,
		&operator,
		&rule.Threshold,
		&durationHours,
		&alertType,
		&severity,
		&cropID,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if plotID.Valid {
		id := plotID.UUID
		rule.PlotID = &id
	}
	if cropID.Valid {
		id := cropID.UUID
		rule.CropID = &id
	}
	if description.Valid {
		rule.Description = &description.String
	}
	if durationHours.Valid {
		n := int(durationHours.Int64)
		rule.DurationHours = &n
	}
	rule.Operator = models.Operator(operator)
	rule.AlertType = models.AlertType(alertType)
	rule.Severity = models.Severity(severity)

	return &rule, nil
}
