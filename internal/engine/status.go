package engine

import (
	"fmt"
	"strings"
	"time"

	"agromonitor/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Derived plot status labels.
const (
	StatusCriticalExtremeTemperature = "Critical - Extreme Temperature"
	StatusAlertHighTemperature       = "Alert - High Temperature"
	StatusAlertFrostRisk             = "Alert - Frost Risk"
	StatusAlertSoilVeryDry           = "Alert - Soil Very Dry"
	StatusWarningDrySoil             = "Warning - Dry Soil"
	StatusAlertWaterloggedSoil       = "Alert - Waterlogged Soil"
	StatusWarningVeryWetSoil         = "Warning - Very Wet Soil"
	StatusWarningHeavyRain           = "Warning - Heavy Rain"
	StatusNormal                     = "Normal"
)

var (
	tempExtreme  = decimal.NewFromInt(40)
	tempHigh     = decimal.NewFromInt(35)
	tempFrost    = decimal.NewFromInt(5)
	soilVeryDry  = decimal.NewFromInt(20)
	soilDry      = decimal.NewFromInt(30)
	soilWaterlog = decimal.NewFromInt(90)
	soilVeryWet  = decimal.NewFromInt(80)
	rainHeavy    = decimal.NewFromInt(50)
)

// DeriveStatus maps a reading's present fields to exactly one status label.
// The checks run in a fixed priority order and the first applicable wins:
// temperature conditions outrank soil moisture, which outranks
// precipitation. Absent fields are skipped.
func DeriveStatus(r *models.ReadingEvent) string {
	if t := r.Temperature; t != nil {
		switch {
		case t.GreaterThan(tempExtreme):
			return StatusCriticalExtremeTemperature
		case t.GreaterThan(tempHigh):
			return StatusAlertHighTemperature
		case t.LessThan(tempFrost):
			return StatusAlertFrostRisk
		}
	}
	if m := r.SoilMoisture; m != nil {
		switch {
		case m.LessThan(soilVeryDry):
			return StatusAlertSoilVeryDry
		case m.LessThan(soilDry):
			return StatusWarningDrySoil
		case m.GreaterThan(soilWaterlog):
			return StatusAlertWaterloggedSoil
		case m.GreaterThan(soilVeryWet):
			return StatusWarningVeryWetSoil
		}
	}
	if p := r.Precipitation; p != nil && p.GreaterThan(rainHeavy) {
		return StatusWarningHeavyRain
	}
	return StatusNormal
}

// buildStatusEntry creates a history entry describing the reading values the
// status was derived from.
func buildStatusEntry(r *models.ReadingEvent, status string) *models.StatusEntry {
	readingID := r.ReadingID
	return &models.StatusEntry{
		ID:          uuid.New(),
		PlotID:      r.PlotID,
		Status:      status,
		Description: statusDescription(r),
		ReadingID:   &readingID,
		CreatedAt:   time.Now().UTC(),
	}
}

func statusDescription(r *models.ReadingEvent) string {
	fields := r.FieldValues()
	if len(fields) == 0 {
		return "Status derived from reading with no measurements"
	}

	parts := make([]string, 0, len(fields))
	for _, fv := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s%s", fv.Field, fv.Value.String(), fieldUnit(fv.Field)))
	}
	return fmt.Sprintf("Status derived from reading: %s", strings.Join(parts, ", "))
}
