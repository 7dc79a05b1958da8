package worlds

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/apperror"
)

// WorldRepository defines the data access contract for worlds.
type WorldRepository interface {
	// Create inserts a new world.
	Create(ctx context.Context, w *World) error

	// GetByID returns a world by ID, or nil when absent.
	GetByID(ctx context.Context, id string) (*World, error)

	// List returns all worlds ordered by creation time.
	List(ctx context.Context) ([]World, error)

	// Update persists calendar selection, clock, and offsets.
	Update(ctx context.Context, w *World) error

	// Delete removes a world.
	Delete(ctx context.Context, id string) error
}

// worldRepository implements WorldRepository using MariaDB.
type worldRepository struct {
	db *sql.DB
}

// NewWorldRepository creates a world repository backed by MariaDB.
func NewWorldRepository(db *sql.DB) WorldRepository {
	return &worldRepository{db: db}
}

// Create inserts a new world.
func (r *worldRepository) Create(ctx context.Context, w *World) error {
	offsets, err := marshalOffsets(w.WeekdayOffsets)
	if err != nil {
		return apperror.NewInternal(err)
	}

	query := `INSERT INTO worlds (id, name, calendar_key, system, world_time, created_timestamp, weekday_offsets)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		w.ID, w.Name, w.CalendarKey, w.System, w.WorldTime, w.CreatedTimestamp, offsets)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("inserting world: %w", err))
	}
	return nil
}

// GetByID returns a world by ID, or nil when absent.
func (r *worldRepository) GetByID(ctx context.Context, id string) (*World, error) {
	query := `SELECT id, name, calendar_key, system, world_time, created_timestamp, weekday_offsets, created_at, updated_at
	          FROM worlds WHERE id = ?`

	var (
		w       World
		offsets sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&w.ID, &w.Name, &w.CalendarKey, &w.System, &w.WorldTime,
		&w.CreatedTimestamp, &offsets, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("querying world %s: %w", id, err))
	}
	if w.WeekdayOffsets, err = unmarshalOffsets(offsets); err != nil {
		return nil, apperror.NewInternal(err)
	}
	return &w, nil
}

// List returns all worlds ordered by creation time.
func (r *worldRepository) List(ctx context.Context) ([]World, error) {
	query := `SELECT id, name, calendar_key, system, world_time, created_timestamp, weekday_offsets, created_at, updated_at
	          FROM worlds ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing worlds: %w", err))
	}
	defer rows.Close()

	var out []World
	for rows.Next() {
		var (
			w       World
			offsets sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.Name, &w.CalendarKey, &w.System, &w.WorldTime,
			&w.CreatedTimestamp, &offsets, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("scanning world: %w", err))
		}
		if w.WeekdayOffsets, err = unmarshalOffsets(offsets); err != nil {
			return nil, apperror.NewInternal(err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Update persists calendar selection, clock, and offsets.
func (r *worldRepository) Update(ctx context.Context, w *World) error {
	offsets, err := marshalOffsets(w.WeekdayOffsets)
	if err != nil {
		return apperror.NewInternal(err)
	}

	query := `UPDATE worlds SET name = ?, calendar_key = ?, system = ?, world_time = ?,
	          created_timestamp = ?, weekday_offsets = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query,
		w.Name, w.CalendarKey, w.System, w.WorldTime, w.CreatedTimestamp, offsets, w.ID)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("updating world %s: %w", w.ID, err))
	}
	return nil
}

// Delete removes a world.
func (r *worldRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM worlds WHERE id = ?`, id)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("deleting world %s: %w", id, err))
	}
	return nil
}

// marshalOffsets serializes the per-system offset table for the JSON column.
func marshalOffsets(offsets map[string]int) (any, error) {
	if len(offsets) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(offsets)
	if err != nil {
		return nil, fmt.Errorf("marshaling weekday offsets: %w", err)
	}
	return string(data), nil
}

// unmarshalOffsets deserializes the JSON offset column.
func unmarshalOffsets(col sql.NullString) (map[string]int, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	var offsets map[string]int
	if err := json.Unmarshal([]byte(col.String), &offsets); err != nil {
		return nil, fmt.Errorf("unmarshaling weekday offsets: %w", err)
	}
	return offsets, nil
}
