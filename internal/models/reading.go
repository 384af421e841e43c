package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Canonical monitored field names. Rule.Field is validated against this
// vocabulary and matched case-insensitively against reading fields.
const (
	FieldSoilMoisture   = "soil_moisture"
	FieldTemperature    = "temperature"
	FieldPrecipitation  = "precipitation"
	FieldAirHumidity    = "air_humidity"
	FieldWindSpeed      = "wind_speed"
	FieldSolarRadiation = "solar_radiation"
)

// MonitoredFields lists every field a rule may watch.
func MonitoredFields() []string {
	return []string{
		FieldSoilMoisture,
		FieldTemperature,
		FieldPrecipitation,
		FieldAirHumidity,
		FieldWindSpeed,
		FieldSolarRadiation,
	}
}

// ReadingEvent is one timestamped snapshot from a plot's sensors, as
// delivered by the sensor ingestion service. All measurement fields are
// optional; absent fields are skipped by evaluation entirely.
type ReadingEvent struct {
	EventID        uuid.UUID        `json:"event_id"`
	EventTime      time.Time        `json:"event_time"`
	ReadingID      uuid.UUID        `json:"reading_id"`
	PlotID         uuid.UUID        `json:"plot_id"`
	SensorID       *uuid.UUID       `json:"sensor_id,omitempty"`
	SensorCode     *string          `json:"sensor_code,omitempty"`
	SoilMoisture   *decimal.Decimal `json:"soil_moisture,omitempty"`
	Temperature    *decimal.Decimal `json:"temperature,omitempty"`
	Precipitation  *decimal.Decimal `json:"precipitation,omitempty"`
	AirHumidity    *decimal.Decimal `json:"air_humidity,omitempty"`
	WindSpeed      *decimal.Decimal `json:"wind_speed,omitempty"`
	SolarRadiation *decimal.Decimal `json:"solar_radiation,omitempty"`
	ReadAt         time.Time        `json:"read_at"`
}

// FieldValue pairs a canonical field name with a measured value.
type FieldValue struct {
	Field string
	Value decimal.Decimal
}

// FieldValues returns the fields present in the reading, in canonical order.
func (r *ReadingEvent) FieldValues() []FieldValue {
	var out []FieldValue
	add := func(field string, v *decimal.Decimal) {
		if v != nil {
			out = append(out, FieldValue{Field: field, Value: *v})
		}
	}
	add(FieldSoilMoisture, r.SoilMoisture)
	add(FieldTemperature, r.Temperature)
	add(FieldPrecipitation, r.Precipitation)
	add(FieldAirHumidity, r.AirHumidity)
	add(FieldWindSpeed, r.WindSpeed)
	add(FieldSolarRadiation, r.SolarRadiation)
	return out
}
