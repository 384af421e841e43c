package engine

import (
	"strings"

	"agromonitor/internal/models"

	"github.com/shopspring/decimal"
)

// FieldMatches reports whether a rule's monitored field refers to the given
// canonical field name. Matching is case-insensitive.
func FieldMatches(ruleField, field string) bool {
	return strings.EqualFold(strings.TrimSpace(ruleField), field)
}

// Evaluate applies a rule operator to a measured value and threshold using
// exact decimal comparison. Reserved operators (between, not_between) and
// unknown operator values evaluate to false, so malformed or future rule
// configurations never raise alerts.
func Evaluate(op models.Operator, value, threshold decimal.Decimal) bool {
	switch op {
	case models.OperatorEqual:
		return value.Equal(threshold)
	case models.OperatorNotEqual:
		return !value.Equal(threshold)
	case models.OperatorGreaterThan:
		return value.GreaterThan(threshold)
	case models.OperatorGreaterOrEqual:
		return value.GreaterThanOrEqual(threshold)
	case models.OperatorLessThan:
		return value.LessThan(threshold)
	case models.OperatorLessOrEqual:
		return value.LessThanOrEqual(threshold)
	case models.OperatorBetween, models.OperatorNotBetween:
		// Reserved, not implemented in this version.
		return false
	default:
		return false
	}
}
