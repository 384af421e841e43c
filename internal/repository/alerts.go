package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agromonitor/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AlertRepository stores engine-raised alerts. The table carries a partial
// unique index on (rule_id, plot_id) WHERE NOT resolved, so the store itself
// guarantees at most one unresolved alert per pair even under concurrent
// inserts (see migrations/schema.sql).
type AlertRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertRepository creates an alert repository.
func NewAlertRepository(db *sql.DB, logger *zap.Logger) *AlertRepository {
	return &AlertRepository{
		db:     db,
		logger: logger,
	}
}

// AlertFilters narrows alert listings.
type AlertFilters struct {
	ProducerID     *uuid.UUID
	PlotID         *uuid.UUID
	RuleID         *uuid.UUID
	Type           *models.AlertType
	Severity       *models.Severity
	UnreadOnly     bool
	UnresolvedOnly bool
	StartTime      *time.Time // created_at >= StartTime
	EndTime        *time.Time // created_at <= EndTime
}

const alertColumns = `
	id,
	producer_id,
	plot_id,
	rule_id,
	reading_id,
	alert_type,
	severity,
	title,
	message,
	detected_value,
	read,
	read_at,
	resolved,
	resolved_at,
	resolved_by,
	resolution_note,
	created_at`

// FindUnresolvedAlert returns the open alert for a (rule, plot) pair, or nil
// when none exists.
func (r *AlertRepository) FindUnresolvedAlert(ctx context.Context, ruleID, plotID uuid.UUID) (*models.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE rule_id = $1
		  AND plot_id = $2
		  AND resolved = FALSE
	`

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, ruleID, plotID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find unresolved alert: %w", err)
	}

	return alert, nil
}

// InsertAlert persists a new alert. It returns false when the partial unique
// index rejected the row, meaning another unresolved alert for the same
// (rule, plot) pair won the race.
func (r *AlertRepository) InsertAlert(ctx context.Context, alert *models.Alert) (bool, error) {
	if alert == nil {
		return false, fmt.Errorf("alert is required")
	}

	query := `
		INSERT INTO alerts (
			id, producer_id, plot_id, rule_id, reading_id, alert_type,
			severity, title, message, detected_value, read, resolved,
			created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, FALSE, $11
		)
		ON CONFLICT (rule_id, plot_id) WHERE resolved = FALSE DO NOTHING
	`

	var detectedValue interface{}
	if alert.DetectedValue != nil {
		detectedValue = alert.DetectedValue.String()
	}

	result, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.ProducerID,
		alert.PlotID,
		alert.RuleID,
		alert.ReadingID,
		string(alert.Type),
		string(alert.Severity),
		alert.Title,
		alert.Message,
		detectedValue,
		alert.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// GetAlert returns one alert by id.
func (r *AlertRepository) GetAlert(ctx context.Context, alertID uuid.UUID) (*models.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE id = $1
	`

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, alertID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("alert not found: %s", alertID)
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	return alert, nil
}

// ListAlerts returns a filtered, paginated page of alerts newest first,
// together with the total match count.
func (r *AlertRepository) ListAlerts(ctx context.Context, filters AlertFilters, page, size int) ([]*models.Alert, int, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	var args []interface{}
	where := buildAlertWhere(filters, &args)

	countQuery := `SELECT COUNT(*) FROM alerts` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM alerts%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, alertColumns, where, len(args)+1, len(args)+2)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate alerts: %w", err)
	}

	return alerts, total, nil
}

// CountUnread returns the number of unread alerts for a producer.
func (r *AlertRepository) CountUnread(ctx context.Context, producerID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alerts WHERE producer_id = $1 AND read = FALSE`,
		producerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %w", err)
	}
	return count, nil
}

// CountUnresolved returns the number of open alerts for a producer.
func (r *AlertRepository) CountUnresolved(ctx context.Context, producerID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alerts WHERE producer_id = $1 AND resolved = FALSE`,
		producerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unresolved alerts: %w", err)
	}
	return count, nil
}

// MarkRead flags one alert as read.
func (r *AlertRepository) MarkRead(ctx context.Context, alertID uuid.UUID) error {
	query := `
		UPDATE alerts
		SET read = TRUE, read_at = $2
		WHERE id = $1 AND read = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, alertID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert not found or already read: %s", alertID)
	}

	return nil
}

// MarkAllRead flags every unread alert of a producer as read and returns how
// many were updated.
func (r *AlertRepository) MarkAllRead(ctx context.Context, producerID uuid.UUID) (int, error) {
	query := `
		UPDATE alerts
		SET read = TRUE, read_at = $2
		WHERE producer_id = $1 AND read = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, producerID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to mark alerts read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(affected), nil
}

// Resolve closes an alert. Once resolved, the (rule, plot) pair is free to
// raise a new alert.
func (r *AlertRepository) Resolve(ctx context.Context, alertID, resolvedBy uuid.UUID, note *string) error {
	query := `
		UPDATE alerts
		SET resolved = TRUE,
		    resolved_at = $2,
		    resolved_by = $3,
		    resolution_note = $4
		WHERE id = $1 AND resolved = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, alertID, time.Now().UTC(), resolvedBy, note)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert not found or already resolved: %s", alertID)
	}

	r.logger.Info("Alert resolved",
		zap.String("alert_id", alertID.String()),
		zap.String("resolved_by", resolvedBy.String()),
	)

	return nil
}

func buildAlertWhere(filters AlertFilters, args *[]interface{}) string {
	var clauses []string
	add := func(clause string, value interface{}) {
		*args = append(*args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(*args)))
	}

	if filters.ProducerID != nil {
		add("producer_id = $%d", *filters.ProducerID)
	}
	if filters.PlotID != nil {
		add("plot_id = $%d", *filters.PlotID)
	}
	if filters.RuleID != nil {
		add("rule_id = $%d", *filters.RuleID)
	}
	if filters.Type != nil {
		add("alert_type = $%d", string(*filters.Type))
	}
	if filters.Severity != nil {
		add("severity = $%d", string(*filters.Severity))
	}
	if filters.UnreadOnly {
		clauses = append(clauses, "read = FALSE")
	}
	if filters.UnresolvedOnly {
		clauses = append(clauses, "resolved = FALSE")
	}
	if filters.StartTime != nil {
		add("created_at >= $%d", *filters.StartTime)
	}
	if filters.EndTime != nil {
		add("created_at <= $%d", *filters.EndTime)
	}

	if len(clauses) == 0 {
		return ""
	}

	where := " WHERE " + clauses[0]
	for _, clause := range clauses[1:] {
		where += " AND " + clause
	}
	return where
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var alert models.Alert
	var readingID, resolvedBy uuid.NullUUID
	var detectedValue, resolutionNote sql.NullString
	var readAt, resolvedAt sql.NullTime
	var alertType, severity string

	err := row.Scan(
		&alert.ID,
		&alert.ProducerID,
		&alert.PlotID,
		&alert.RuleID,
		&readingID,
		&alertType,
		&severity,
		&alert.Title,
		&alert.Message,
		&detectedValue,
		&alert.Read,
		&readAt,
		&alert.Resolved,
		&resolvedAt,
		&resolvedBy,
		&resolutionNote,
		&alert.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if readingID.Valid {
		id := readingID.UUID
		alert.ReadingID = &id
	}
	if resolvedBy.Valid {
		id := resolvedBy.UUID
		alert.ResolvedBy = &id
	}
	if detectedValue.Valid {
		v, err := decimal.NewFromString(detectedValue.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse detected value: %w", err)
		}
		alert.DetectedValue = &v
	}
	if resolutionNote.Valid {
		alert.ResolutionNote = &resolutionNote.String
	}
	if readAt.Valid {
		alert.ReadAt = &readAt.Time
	}
	if resolvedAt.Valid {
		alert.ResolvedAt = &resolvedAt.Time
	}
	alert.Type = models.AlertType(alertType)
	alert.Severity = models.Severity(severity)

	return &alert, nil
}
