package repository

import (
	"context"
	"errors"
	"time"

	"github.com/divinecircle/poojabook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	AttachOrder(ctx context.Context, id int64, provider, orderID string, amountMinor int64, currency string) error
	ConfirmPaid(ctx context.Context, id int64, paymentID, signature string) (*domain.Booking, error)
	PurgeUnpaidBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CreateContact(ctx context.Context, msg *domain.ContactMessage) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, event_id, slot_id, name, email, phone, message, preferred_date, preferred_slot, pooja_type, payment_status, provider, gateway_order_id, gateway_payment_id, gateway_signature, amount_minor, currency, created_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.EventID, &b.SlotID, &b.Name, &b.Email, &b.Phone, &b.Message, &b.PreferredDate, &b.PreferredSlot, &b.PoojaType, &b.PaymentStatus, &b.Provider, &b.GatewayOrderID, &b.GatewayPaymentID, &b.GatewaySignature, &b.AmountMinor, &b.Currency, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.PaymentStatus = domain.PaymentStatusUnpaid
	return r.db.QueryRow(ctx, `INSERT INTO pooja_bookings (event_id, slot_id, name, email, phone, message, preferred_date, preferred_slot, pooja_type, payment_status, provider, amount_minor, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`,
		booking.EventID, booking.SlotID, booking.Name, booking.Email, booking.Phone, booking.Message, booking.PreferredDate, booking.PreferredSlot, booking.PoojaType, booking.PaymentStatus, booking.Provider, booking.AmountMinor, booking.Currency).
		Scan(&booking.ID, &booking.CreatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM pooja_bookings WHERE id=$1`, id))
}

func (r *PGBookingRepository) AttachOrder(ctx context.Context, id int64, provider, orderID string, amountMinor int64, currency string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE pooja_bookings SET provider=$2, gateway_order_id=$3, amount_minor=$4, currency=$5 WHERE id=$1`, id, provider, orderID, amountMinor, currency)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ConfirmPaid commits the confirmation as one transaction: reserve the
// slot (when one is referenced) and flip payment_status to yes. The
// booking row is locked first so a retried confirmation callback observes
// the committed yes and becomes a no-op instead of incrementing the
// ledger twice. A deleted slot is a weak reference and is skipped.
// Callers must not hold this transaction across any gateway call.
func (r *PGBookingRepository) ConfirmPaid(ctx context.Context, id int64, paymentID, signature string) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM pooja_bookings WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if booking.Paid() {
		return booking, tx.Commit(ctx)
	}

	if booking.SlotID != nil {
		if err := reserveSlot(ctx, tx, *booking.SlotID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// slot deleted since the order was created; the booking
				// survives without it
				err = nil
			} else {
				return nil, err
			}
		}
	}

	updated, err := scanBooking(tx.QueryRow(ctx, `UPDATE pooja_bookings SET payment_status=$2, gateway_payment_id=$3, gateway_signature=$4 WHERE id=$1 AND payment_status=$5 RETURNING `+bookingColumns,
		id, domain.PaymentStatusPaid, paymentID, signature, domain.PaymentStatusUnpaid))
	if err != nil {
		return nil, err
	}
	return updated, tx.Commit(ctx)
}

// PurgeUnpaidBefore removes stale unpaid bookings. They never held
// capacity, so the ledger is untouched.
func (r *PGBookingRepository) PurgeUnpaidBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM pooja_bookings WHERE payment_status=$1 AND created_at <= $2`, domain.PaymentStatusUnpaid, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *PGBookingRepository) CreateContact(ctx context.Context, msg *domain.ContactMessage) error {
	return r.db.QueryRow(ctx, `INSERT INTO contact_messages (name, email, phone, message) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		msg.Name, msg.Email, msg.Phone, msg.Message).Scan(&msg.ID, &msg.CreatedAt)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
