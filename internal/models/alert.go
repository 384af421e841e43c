package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Alert is raised by the evaluation engine when a rule is violated. At most
// one unresolved alert exists per (rule, plot) pair; resolution is owned by
// the alert management API, never by the engine.
type Alert struct {
	ID            uuid.UUID        `json:"id"`
	ProducerID    uuid.UUID        `json:"producer_id"`
	PlotID        uuid.UUID        `json:"plot_id"`
	RuleID        uuid.UUID        `json:"rule_id"`
	ReadingID     *uuid.UUID       `json:"reading_id,omitempty"`
	Type          AlertType        `json:"type"`
	Severity      Severity         `json:"severity"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	DetectedValue *decimal.Decimal `json:"detected_value,omitempty"`
	Read          bool             `json:"read"`
	ReadAt        *time.Time       `json:"read_at,omitempty"`
	Resolved      bool             `json:"resolved"`
	ResolvedAt    *time.Time       `json:"resolved_at,omitempty"`
	ResolvedBy    *uuid.UUID       `json:"resolved_by,omitempty"`
	// ResolutionNote is free text entered by whoever resolved the alert.
	ResolutionNote *string   `json:"resolution_note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
