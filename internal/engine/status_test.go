package engine

import (
	"testing"

	"agromonitor/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestDeriveStatus_Table(t *testing.T) {
	tests := []struct {
		name          string
		temperature   *decimal.Decimal
		soilMoisture  *decimal.Decimal
		precipitation *decimal.Decimal
		want          string
	}{
		{"extreme temperature", decPtr("41"), nil, nil, StatusCriticalExtremeTemperature},
		{"high temperature", decPtr("36"), nil, nil, StatusAlertHighTemperature},
		{"temperature at high boundary", decPtr("35"), nil, nil, StatusNormal},
		{"frost risk", decPtr("4"), nil, nil, StatusAlertFrostRisk},
		{"temperature at frost boundary", decPtr("5"), nil, nil, StatusNormal},
		{"soil very dry", nil, decPtr("15"), nil, StatusAlertSoilVeryDry},
		{"soil dry", nil, decPtr("25"), nil, StatusWarningDrySoil},
		{"soil waterlogged", nil, decPtr("95"), nil, StatusAlertWaterloggedSoil},
		{"soil very wet", nil, decPtr("85"), nil, StatusWarningVeryWetSoil},
		{"heavy rain", nil, nil, decPtr("60"), StatusWarningHeavyRain},
		{"rain at boundary", nil, nil, decPtr("50"), StatusNormal},
		{"all nominal", decPtr("22"), decPtr("50"), decPtr("10"), StatusNormal},
		{"no fields present", nil, nil, nil, StatusNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading := &models.ReadingEvent{
				ReadingID:     uuid.New(),
				PlotID:        uuid.New(),
				Temperature:   tt.temperature,
				SoilMoisture:  tt.soilMoisture,
				Precipitation: tt.precipitation,
			}
			assert.Equal(t, tt.want, DeriveStatus(reading))
		})
	}
}

func TestDeriveStatus_TemperatureOutranksSoilMoisture(t *testing.T) {
	reading := &models.ReadingEvent{
		ReadingID:    uuid.New(),
		PlotID:       uuid.New(),
		Temperature:  decPtr("41"),
		SoilMoisture: decPtr("15"),
	}

	assert.Equal(t, StatusCriticalExtremeTemperature, DeriveStatus(reading))
}

func TestDeriveStatus_SoilMoistureOutranksPrecipitation(t *testing.T) {
	reading := &models.ReadingEvent{
		ReadingID:     uuid.New(),
		PlotID:        uuid.New(),
		SoilMoisture:  decPtr("95"),
		Precipitation: decPtr("80"),
	}

	assert.Equal(t, StatusAlertWaterloggedSoil, DeriveStatus(reading))
}

func TestStatusDescription_ListsPresentFields(t *testing.T) {
	reading := &models.ReadingEvent{
		ReadingID:    uuid.New(),
		PlotID:       uuid.New(),
		Temperature:  decPtr("42"),
		SoilMoisture: decPtr("15"),
	}

	desc := statusDescription(reading)

	assert.Contains(t, desc, "soil_moisture=15%")
	assert.Contains(t, desc, "temperature=42°C")
}

func TestBuildStatusEntry(t *testing.T) {
	reading := &models.ReadingEvent{
		ReadingID:   uuid.New(),
		PlotID:      uuid.New(),
		Temperature: decPtr("42"),
	}

	entry := buildStatusEntry(reading, StatusCriticalExtremeTemperature)

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, reading.PlotID, entry.PlotID)
	assert.Equal(t, StatusCriticalExtremeTemperature, entry.Status)
	if assert.NotNil(t, entry.ReadingID) {
		assert.Equal(t, reading.ReadingID, *entry.ReadingID)
	}
	assert.False(t, entry.CreatedAt.IsZero())
}
