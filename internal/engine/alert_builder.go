package engine

import (
	"time"

	"agromonitor/internal/models"

	"github.com/google/uuid"
)

// buildAlert constructs a new open alert for a violated rule.
func buildAlert(rule models.Rule, reading *models.ReadingEvent, fv models.FieldValue) *models.Alert {
	readingID := reading.ReadingID
	detected := fv.Value

	return &models.Alert{
		ID:            uuid.New(),
		ProducerID:    rule.ProducerID,
		PlotID:        reading.PlotID,
		RuleID:        rule.ID,
		ReadingID:     &readingID,
		Type:          rule.AlertType,
		Severity:      rule.Severity,
		Title:         "Alert: " + rule.Name,
		Message:       AlertMessage(rule, fv.Field, fv.Value),
		DetectedValue: &detected,
		Read:          false,
		Resolved:      false,
		CreatedAt:     time.Now().UTC(),
	}
}
