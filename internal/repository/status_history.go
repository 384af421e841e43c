package repository

import (
	"context"
	"database/sql"
	"fmt"

	"agromonitor/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusHistoryRepository stores the append-only derived status timeline of
// each plot.
type StatusHistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStatusHistoryRepository creates a status history repository.
func NewStatusHistoryRepository(db *sql.DB, logger *zap.Logger) *StatusHistoryRepository {
	return &StatusHistoryRepository{
		db:     db,
		logger: logger,
	}
}

const statusColumns = `
	id,
	plot_id,
	status,
	description,
	reading_id,
	created_at`

// GetLastStatus returns the most recent status entry for a plot, or nil when
// the plot has no history yet.
func (r *StatusHistoryRepository) GetLastStatus(ctx context.Context, plotID uuid.UUID) (*models.StatusEntry, error) {
	query := `
		SELECT ` + statusColumns + `
		FROM plot_status_history
		WHERE plot_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	entry, err := scanStatusEntry(r.db.QueryRowContext(ctx, query, plotID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last status: %w", err)
	}

	return entry, nil
}

// InsertStatusEntry appends a new status entry.
func (r *StatusHistoryRepository) InsertStatusEntry(ctx context.Context, entry *models.StatusEntry) error {
	if entry == nil {
		return fmt.Errorf("entry is required")
	}

	query := `
		INSERT INTO plot_status_history (
			id, plot_id, status, description, reading_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.PlotID,
		entry.Status,
		entry.Description,
		entry.ReadingID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert status entry: %w", err)
	}

	return nil
}

// ListByPlot returns a paginated status timeline for a plot, newest first,
// together with the total entry count.
func (r *StatusHistoryRepository) ListByPlot(ctx context.Context, plotID uuid.UUID, page, size int) ([]*models.StatusEntry, int, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plot_status_history WHERE plot_id = $1`,
		plotID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count status entries: %w", err)
	}

	query := `
		SELECT ` + statusColumns + `
		FROM plot_status_history
		WHERE plot_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, plotID, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list status entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.StatusEntry
	for rows.Next() {
		entry, err := scanStatusEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan status entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate status entries: %w", err)
	}

	return entries, total, nil
}

func scanStatusEntry(row rowScanner) (*models.StatusEntry, error) {
	var entry models.StatusEntry
	var readingID uuid.NullUUID

	err := row.Scan(
		&entry.ID,
		&entry.PlotID,
		&entry.Status,
		&entry.Description,
		&readingID,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if readingID.Valid {
		id := readingID.UUID
		entry.ReadingID = &id
	}

	return &entry, nil
}
