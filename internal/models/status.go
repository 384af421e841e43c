package models

import (
	"time"

	"github.com/google/uuid"
)

// StatusEntry is one append-only record in a plot's derived status timeline.
// A new entry is written only when the derived label changes.
type StatusEntry struct {
	ID          uuid.UUID  `json:"id"`
	PlotID      uuid.UUID  `json:"plot_id"`
	Status      string     `json:"status"`
	Description string     `json:"description"`
	ReadingID   *uuid.UUID `json:"reading_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
