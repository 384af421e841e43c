package engine

import (
	"testing"

	"agromonitor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEvaluate_OperatorTable(t *testing.T) {
	tests := []struct {
		name      string
		op        models.Operator
		value     string
		threshold string
		want      bool
	}{
		{"equal match", models.OperatorEqual, "5", "5", true},
		{"equal trailing zeros", models.OperatorEqual, "5.00", "5", true},
		{"equal mismatch", models.OperatorEqual, "5", "4", false},
		{"not equal match", models.OperatorNotEqual, "5", "4", true},
		{"not equal mismatch", models.OperatorNotEqual, "5", "5", false},
		{"greater than above", models.OperatorGreaterThan, "40.1", "40", true},
		{"greater than equal", models.OperatorGreaterThan, "40", "40", false},
		{"greater than below", models.OperatorGreaterThan, "39.9", "40", false},
		{"greater or equal above", models.OperatorGreaterOrEqual, "41", "40", true},
		{"greater or equal equal", models.OperatorGreaterOrEqual, "40", "40", true},
		{"greater or equal below", models.OperatorGreaterOrEqual, "39", "40", false},
		{"less than below", models.OperatorLessThan, "19.9", "20", true},
		{"less than equal", models.OperatorLessThan, "20", "20", false},
		{"less than above", models.OperatorLessThan, "20.1", "20", false},
		{"less or equal below", models.OperatorLessOrEqual, "19", "20", true},
		{"less or equal equal", models.OperatorLessOrEqual, "20", "20", true},
		{"less or equal above", models.OperatorLessOrEqual, "21", "20", false},
		{"between is reserved", models.OperatorBetween, "5", "5", false},
		{"not between is reserved", models.OperatorNotBetween, "5", "4", false},
		{"unknown operator never matches", models.Operator("matches"), "5", "5", false},
		{"empty operator never matches", models.Operator(""), "5", "5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.op, dec(tt.value), dec(tt.threshold))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_ExactDecimalSemantics(t *testing.T) {
	// 0.1 + 0.2 must equal 0.3 exactly, no float tolerance involved.
	sum := dec("0.1").Add(dec("0.2"))
	assert.True(t, Evaluate(models.OperatorEqual, sum, dec("0.3")))
	assert.False(t, Evaluate(models.OperatorGreaterThan, sum, dec("0.3")))
}

func TestFieldMatches(t *testing.T) {
	assert.True(t, FieldMatches("temperature", models.FieldTemperature))
	assert.True(t, FieldMatches("Temperature", models.FieldTemperature))
	assert.True(t, FieldMatches("SOIL_MOISTURE", models.FieldSoilMoisture))
	assert.True(t, FieldMatches("  wind_speed ", models.FieldWindSpeed))
	assert.False(t, FieldMatches("temperature", models.FieldSoilMoisture))
	assert.False(t, FieldMatches("", models.FieldTemperature))
}
