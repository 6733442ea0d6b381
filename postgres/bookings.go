package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"settlements/entity"
	"settlements/event"
	"settlements/message"
)

func CreateBookingsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS bookings (
		booking_id VARCHAR(64) PRIMARY KEY,
		payment_method VARCHAR(32) NOT NULL,
		status VARCHAR(32) NOT NULL,
		payout_status VARCHAR(32) NOT NULL DEFAULT 'pending',
		payout_error TEXT NOT NULL DEFAULT '',
		payout_method VARCHAR(32) NOT NULL DEFAULT '',
		total_amount NUMERIC(10, 2) NOT NULL,
		actual_ticket_price NUMERIC(10, 2) NOT NULL DEFAULT 0,
		theatre_id VARCHAR(64) NOT NULL DEFAULT '',
		owner_id VARCHAR(64) NOT NULL DEFAULT '',
		razorpay_payment_id VARCHAR(64) NOT NULL DEFAULT '',
		theatre_owner_account_id VARCHAR(64) NOT NULL DEFAULT '',
		transfer_id VARCHAR(64) NOT NULL DEFAULT '',
		refund_request_id VARCHAR(64) NOT NULL DEFAULT '',
		refund_id VARCHAR(64) NOT NULL DEFAULT '',
		refund_status VARCHAR(32) NOT NULL DEFAULT '',
		refund_breakdown JSONB,
		cancelled_at TIMESTAMP WITH TIME ZONE,
		refunded_at TIMESTAMP WITH TIME ZONE
	);`)
	return err
}

type BookingRepo struct {
	db *sqlx.DB
}

func NewBookingRepo(db *sqlx.DB) BookingRepo {
	return BookingRepo{
		db: db,
	}
}

// Add inserts the booking and publishes a BookingCreated event in the same
// transaction, so the payout flow sees every booking exactly when its row is
// visible.
func (r BookingRepo) Add(ctx context.Context, booking entity.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := add(ctx, tx, booking); err != nil {
		return errors.Join(err, tx.Rollback())
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func add(ctx context.Context, tx *sql.Tx, booking entity.Booking) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO bookings
		(booking_id, payment_method, status, payout_status, total_amount, actual_ticket_price,
		theatre_id, owner_id, razorpay_payment_id, theatre_owner_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		booking.ID, booking.PaymentMethod, booking.Status, entity.PayoutStatusPending,
		booking.TotalAmount, booking.ActualTicketPrice, booking.TheatreID, booking.OwnerID,
		booking.RazorpayPaymentID, booking.TheatreOwnerAccountID)
	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}

	e := event.NewBookingCreated(uuid.NewString(), booking)

	if err := message.PublishInTx(ctx, e, tx); err != nil {
		return fmt.Errorf("publishing event in transaction: %w", err)
	}

	return nil
}

func (r BookingRepo) Get(ctx context.Context, bookingID string) (entity.Booking, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT booking_id, payment_method, status, payout_status,
		payout_error, payout_method, total_amount, actual_ticket_price, theatre_id, owner_id,
		razorpay_payment_id, theatre_owner_account_id, transfer_id, refund_request_id,
		refund_id, refund_status
		FROM bookings WHERE booking_id = $1`, bookingID)

	var b entity.Booking
	err := row.Scan(&b.ID, &b.PaymentMethod, &b.Status, &b.PayoutStatus, &b.PayoutError,
		&b.PayoutMethod, &b.TotalAmount, &b.ActualTicketPrice, &b.TheatreID, &b.OwnerID,
		&b.RazorpayPaymentID, &b.TheatreOwnerAccountID, &b.TransferID, &b.RefundRequestID,
		&b.RefundID, &b.RefundStatus)
	if err != nil {
		return entity.Booking{}, fmt.Errorf("scanning booking: %w", err)
	}

	return b, nil
}

// ClaimPayout atomically moves the booking from pending to processing payout
// status. It returns false when another delivery already claimed or settled
// the payout, which is the idempotency guard for redelivered events.
func (r BookingRepo) ClaimPayout(ctx context.Context, bookingID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE bookings SET payout_status = $1
		WHERE booking_id = $2 AND payout_status = $3`,
		entity.PayoutStatusProcessing, bookingID, entity.PayoutStatusPending)
	if err != nil {
		return false, fmt.Errorf("claiming payout: %w", err)
	}

	return oneRowAffected(res)
}

func (r BookingRepo) MarkPayoutSettled(ctx context.Context, bookingID, transferID, ownerAccountID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE bookings SET payout_status = $1, payout_error = '',
		payout_method = $2, transfer_id = $3, theatre_owner_account_id = $4
		WHERE booking_id = $5`,
		entity.PayoutStatusSettled, entity.PayoutMethodRazorpayRoute, transferID, ownerAccountID, bookingID)
	if err != nil {
		return fmt.Errorf("marking payout settled: %w", err)
	}

	return nil
}

func (r BookingRepo) MarkPayoutFailed(ctx context.Context, bookingID, reason string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE bookings SET payout_status = $1, payout_error = $2
		WHERE booking_id = $3`,
		entity.PayoutStatusFailed, reason, bookingID)
	if err != nil {
		return fmt.Errorf("marking payout failed: %w", err)
	}

	return nil
}

// MarkCancelled transitions the booking to cancelled and links the refund
// request. Returns false if the booking was already cancelled.
func (r BookingRepo) MarkCancelled(ctx context.Context, bookingID, refundRequestID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE bookings SET status = $1, refund_request_id = $2,
		cancelled_at = now() WHERE booking_id = $3 AND status <> $1`,
		entity.BookingStatusCancelled, refundRequestID, bookingID)
	if err != nil {
		return false, fmt.Errorf("marking booking cancelled: %w", err)
	}

	return oneRowAffected(res)
}

func (r BookingRepo) SetRefundOutcome(ctx context.Context, bookingID, refundID, refundStatus string, breakdown entity.RefundBreakdown) error {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("marshalling refund breakdown: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `UPDATE bookings SET refund_id = $1, refund_status = $2,
		refund_breakdown = $3, refunded_at = now() WHERE booking_id = $4`,
		refundID, refundStatus, raw, bookingID)
	if err != nil {
		return fmt.Errorf("setting refund outcome: %w", err)
	}

	return nil
}

func oneRowAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return n == 1, nil
}
