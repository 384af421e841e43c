package engine

import (
	"fmt"
	"strings"

	"agromonitor/internal/models"

	"github.com/shopspring/decimal"
)

// AlertMessage renders the human-readable alert description for a violated
// rule. Pure function of (rule, field, value).
func AlertMessage(rule models.Rule, field string, value decimal.Decimal) string {
	unit := fieldUnit(field)
	context := rule.Name
	if rule.Description != nil && *rule.Description != "" {
		context = *rule.Description
	}

	return fmt.Sprintf("Reading of %s registered %s%s, which is %s the configured limit of %s%s. Rule: %s",
		field, value.String(), unit,
		operatorPhrase(rule.Operator),
		rule.Threshold.String(), unit,
		context,
	)
}

func operatorPhrase(op models.Operator) string {
	switch op {
	case models.OperatorEqual:
		return "equal to"
	case models.OperatorNotEqual:
		return "different from"
	case models.OperatorGreaterThan:
		return "above"
	case models.OperatorGreaterOrEqual:
		return "at or above"
	case models.OperatorLessThan:
		return "below"
	case models.OperatorLessOrEqual:
		return "at or below"
	default:
		return string(op)
	}
}

func fieldUnit(field string) string {
	switch strings.ToLower(field) {
	case models.FieldTemperature:
		return "°C"
	case models.FieldSoilMoisture, models.FieldAirHumidity:
		return "%"
	case models.FieldPrecipitation:
		return "mm"
	case models.FieldWindSpeed:
		return "km/h"
	case models.FieldSolarRadiation:
		return "W/m²"
	default:
		return ""
	}
}
