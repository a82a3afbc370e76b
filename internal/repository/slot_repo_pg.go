package repository

import (
	"context"
	"errors"

	"github.com/divinecircle/poojabook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SlotRepository is the slot ledger. Reserve is the only path that may
// grow booked_count; the conditional UPDATE makes check-then-increment a
// single atomic step under the row lock, so concurrent reservations for
// the last unit resolve to exactly one winner.
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	Reserve(ctx context.Context, slotID int64) error
	Release(ctx context.Context, slotID int64) error
	Adjust(ctx context.Context, slotID int64, delta int) error
}

type PGSlotRepository struct {
	db *pgxpool.Pool
}

func NewSlotRepository(db *pgxpool.Pool) SlotRepository {
	return &PGSlotRepository{db: db}
}

func (r *PGSlotRepository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	row := r.db.QueryRow(ctx, `SELECT id, event_id, start_time, end_time, capacity, booked_count, is_active, created_at, updated_at FROM pooja_slots WHERE id=$1`, id)
	var s domain.Slot
	if err := row.Scan(&s.ID, &s.EventID, &s.StartTime, &s.EndTime, &s.Capacity, &s.BookedCount, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGSlotRepository) Reserve(ctx context.Context, slotID int64) error {
	return reserveSlot(ctx, r.db, slotID)
}

// Release decrements booked_count, clamped at zero. No flow releases
// capacity today (there is no cancel-and-refund); kept for administrative
// correction.
func (r *PGSlotRepository) Release(ctx context.Context, slotID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE pooja_slots SET booked_count = booked_count - 1, updated_at = now() WHERE id=$1 AND booked_count > 0`, slotID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return slotMissOrNoop(ctx, r.db, slotID, nil)
	}
	return nil
}

// Adjust applies an administrative capacity-count correction through the
// same guarded update as Reserve, so 0 <= booked_count <= capacity holds
// even for manual edits.
func (r *PGSlotRepository) Adjust(ctx context.Context, slotID int64, delta int) error {
	cmd, err := r.db.Exec(ctx, `UPDATE pooja_slots SET booked_count = booked_count + $2, updated_at = now() WHERE id=$1 AND booked_count + $2 >= 0 AND booked_count + $2 <= capacity`, slotID, delta)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return slotMissOrNoop(ctx, r.db, slotID, domain.ErrSlotFull)
	}
	return nil
}

// pgxQuerier lets the reservation run on the pool or inside a caller's
// transaction. Both *pgxpool.Pool and pgx.Tx satisfy it.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func reserveSlot(ctx context.Context, q pgxQuerier, slotID int64) error {
	cmd, err := q.Exec(ctx, `UPDATE pooja_slots SET booked_count = booked_count + 1, updated_at = now() WHERE id=$1 AND booked_count < capacity`, slotID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return slotMissOrNoop(ctx, q, slotID, domain.ErrSlotFull)
	}
	return nil
}

// slotMissOrNoop tells a missing slot apart from a guarded no-op after a
// zero-row conditional update. onExists is returned when the row exists
// (nil means the no-op is fine).
func slotMissOrNoop(ctx context.Context, q pgxQuerier, slotID int64, onExists error) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pooja_slots WHERE id=$1)`, slotID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return onExists
}

var _ SlotRepository = (*PGSlotRepository)(nil)
