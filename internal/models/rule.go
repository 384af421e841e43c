package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operator is the comparison applied between a reading value and a rule
// threshold. Unknown operators never match, so rules written against a
// future vocabulary stay silent instead of firing spuriously.
type Operator string

const (
	OperatorEqual          Operator = "eq"
	OperatorNotEqual       Operator = "neq"
	OperatorGreaterThan    Operator = "gt"
	OperatorGreaterOrEqual Operator = "gte"
	OperatorLessThan       Operator = "lt"
	OperatorLessOrEqual    Operator = "lte"

	// Reserved: stored and listed but never evaluated.
	OperatorBetween    Operator = "between"
	OperatorNotBetween Operator = "not_between"
)

// AlertType classifies the agronomic condition a rule watches for.
type AlertType string

const (
	AlertTypeDrought       AlertType = "drought"
	AlertTypeTemperature   AlertType = "temperature"
	AlertTypePrecipitation AlertType = "precipitation"
	AlertTypeFrost         AlertType = "frost"
)

// Severity levels for alerts, lowest to highest.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rule is a producer-configured threshold condition. A nil PlotID means the
// rule applies to every plot of the producer.
type Rule struct {
	ID          uuid.UUID       `json:"id"`
	ProducerID  uuid.UUID       `json:"producer_id"`
	PlotID      *uuid.UUID      `json:"plot_id,omitempty"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Field       string          `json:"field"`
	Operator    Operator        `json:"operator"`
	Threshold   decimal.Decimal `json:"threshold"`
	// DurationHours is a reserved analysis window (e.g. "last 24h"). It is
	// persisted and returned but the engine does not evaluate it.
	DurationHours *int       `json:"duration_hours,omitempty"`
	AlertType     AlertType  `json:"alert_type"`
	Severity      Severity   `json:"severity"`
	CropID        *uuid.UUID `json:"crop_id,omitempty"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
