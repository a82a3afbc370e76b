package repository

import (
	"context"
	"errors"
	"time"

	"github.com/divinecircle/poojabook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	ListMonth(ctx context.Context, year, month int) ([]domain.Event, error)
	ListDate(ctx context.Context, date time.Time) ([]domain.Event, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	SlotsForEvent(ctx context.Context, eventID int64) ([]domain.Slot, error)
	RemainingByDate(ctx context.Context, year, month int) (map[string]int, error)
}

type PGEventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) EventRepository {
	return &PGEventRepository{db: db}
}

const eventColumns = `id, title, pooja_type, date, start_time, end_time, samagri, description, is_active, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(&e.ID, &e.Title, &e.PoojaType, &e.Date, &e.StartTime, &e.EndTime, &e.Samagri, &e.Description, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PGEventRepository) collectEvents(rows pgx.Rows) ([]domain.Event, error) {
	defer rows.Close()
	events := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *PGEventRepository) ListMonth(ctx context.Context, year, month int) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM pooja_events
		WHERE is_active AND EXTRACT(YEAR FROM date)=$1 AND EXTRACT(MONTH FROM date)=$2
		ORDER BY date, start_time`, year, month)
	if err != nil {
		return nil, err
	}
	return r.collectEvents(rows)
}

func (r *PGEventRepository) ListDate(ctx context.Context, date time.Time) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM pooja_events
		WHERE is_active AND date=$1 ORDER BY start_time`, date)
	if err != nil {
		return nil, err
	}
	return r.collectEvents(rows)
}

func (r *PGEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	return scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM pooja_events WHERE id=$1`, id))
}

func (r *PGEventRepository) SlotsForEvent(ctx context.Context, eventID int64) ([]domain.Slot, error) {
	rows, err := r.db.Query(ctx, `SELECT id, event_id, start_time, end_time, capacity, booked_count, is_active, created_at, updated_at
		FROM pooja_slots WHERE event_id=$1 AND is_active ORDER BY start_time`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]domain.Slot, 0)
	for rows.Next() {
		var s domain.Slot
		if err := rows.Scan(&s.ID, &s.EventID, &s.StartTime, &s.EndTime, &s.Capacity, &s.BookedCount, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// RemainingByDate aggregates remaining capacity per date for the month
// view. Plain reads, stale-tolerant.
func (r *PGEventRepository) RemainingByDate(ctx context.Context, year, month int) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT e.date, COALESCE(SUM(GREATEST(s.capacity - s.booked_count, 0)), 0)
		FROM pooja_events e
		JOIN pooja_slots s ON s.event_id = e.id AND s.is_active
		WHERE e.is_active AND EXTRACT(YEAR FROM e.date)=$1 AND EXTRACT(MONTH FROM e.date)=$2
		GROUP BY e.date`, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	remaining := make(map[string]int)
	for rows.Next() {
		var date time.Time
		var rem int
		if err := rows.Scan(&date, &rem); err != nil {
			return nil, err
		}
		remaining[date.Format("2006-01-02")] = rem
	}
	return remaining, rows.Err()
}

var _ EventRepository = (*PGEventRepository)(nil)
