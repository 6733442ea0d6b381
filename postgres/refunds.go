package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"settlements/entity"
)

func CreateRefundRequestsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS refund_requests (
		refund_request_id VARCHAR(64) PRIMARY KEY,
		booking_id VARCHAR(64) NOT NULL,
		user_id VARCHAR(64) NOT NULL,
		theatre_id VARCHAR(64) NOT NULL DEFAULT '',
		amount NUMERIC(10, 2) NOT NULL,
		actual_ticket_price NUMERIC(10, 2) NOT NULL,
		payment_id VARCHAR(64) NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL DEFAULT 'pending',
		show_date VARCHAR(32) NOT NULL DEFAULT '',
		movie_title VARCHAR(255) NOT NULL DEFAULT '',
		theatre_name VARCHAR(255) NOT NULL DEFAULT '',
		selected_seats TEXT[] NOT NULL DEFAULT '{}',
		admin_notes TEXT NOT NULL DEFAULT '',
		refund_id VARCHAR(64) NOT NULL DEFAULT '',
		refund_status VARCHAR(32) NOT NULL DEFAULT '',
		refund_breakdown JSONB,
		requested_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		processed_at TIMESTAMP WITH TIME ZONE
	);`)
	return err
}

type RefundRequestRepo struct {
	db *sqlx.DB
}

func NewRefundRequestRepo(db *sqlx.DB) RefundRequestRepo {
	return RefundRequestRepo{
		db: db,
	}
}

func (r RefundRequestRepo) Add(ctx context.Context, req entity.RefundRequest) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO refund_requests
		(refund_request_id, booking_id, user_id, theatre_id, amount, actual_ticket_price,
		payment_id, reason, status, show_date, movie_title, theatre_name, selected_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		req.ID, req.BookingID, req.UserID, req.TheatreID, req.Amount, req.ActualTicketPrice,
		req.PaymentID, req.Reason, entity.RefundStatusPending, req.ShowDate, req.MovieTitle,
		req.TheatreName, pq.Array(req.SelectedSeats))
	if err != nil {
		return fmt.Errorf("inserting refund request: %w", err)
	}

	return nil
}

func (r RefundRequestRepo) Get(ctx context.Context, requestID string) (entity.RefundRequest, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT refund_request_id, booking_id, user_id, theatre_id,
		amount, actual_ticket_price, payment_id, reason, status, show_date, movie_title,
		theatre_name, selected_seats, admin_notes, refund_id, refund_status, refund_breakdown,
		requested_at, processed_at
		FROM refund_requests WHERE refund_request_id = $1`, requestID)

	var req entity.RefundRequest
	var seats pq.StringArray
	var rawBreakdown []byte
	err := row.Scan(&req.ID, &req.BookingID, &req.UserID, &req.TheatreID, &req.Amount,
		&req.ActualTicketPrice, &req.PaymentID, &req.Reason, &req.Status, &req.ShowDate,
		&req.MovieTitle, &req.TheatreName, &seats, &req.AdminNotes, &req.RefundID,
		&req.RefundStatus, &rawBreakdown, &req.RequestedAt, &req.ProcessedAt)
	if err != nil {
		return entity.RefundRequest{}, fmt.Errorf("scanning refund request: %w", err)
	}

	req.SelectedSeats = seats
	if rawBreakdown != nil {
		req.Breakdown = &entity.RefundBreakdown{}
		if err := json.Unmarshal(rawBreakdown, req.Breakdown); err != nil {
			return entity.RefundRequest{}, fmt.Errorf("unmarshalling refund breakdown: %w", err)
		}
	}

	return req, nil
}

// ClaimApproval atomically moves a pending request to approved. Returns false
// when the request is no longer pending, which makes redundant admin actions
// fail before any gateway call.
func (r RefundRequestRepo) ClaimApproval(ctx context.Context, requestID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE refund_requests SET status = $1
		WHERE refund_request_id = $2 AND status = $3`,
		entity.RefundStatusApproved, requestID, entity.RefundStatusPending)
	if err != nil {
		return false, fmt.Errorf("claiming refund approval: %w", err)
	}

	return oneRowAffected(res)
}

// MarkRejected transitions pending to rejected. Returns false when the
// request is no longer pending.
func (r RefundRequestRepo) MarkRejected(ctx context.Context, requestID, adminNotes string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE refund_requests SET status = $1, admin_notes = $2,
		processed_at = now() WHERE refund_request_id = $3 AND status = $4`,
		entity.RefundStatusRejected, adminNotes, requestID, entity.RefundStatusPending)
	if err != nil {
		return false, fmt.Errorf("marking refund request rejected: %w", err)
	}

	return oneRowAffected(res)
}

func (r RefundRequestRepo) MarkProcessed(ctx context.Context, requestID, refundID, refundStatus, adminNotes string, breakdown entity.RefundBreakdown) error {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("marshalling refund breakdown: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `UPDATE refund_requests SET status = $1, refund_id = $2,
		refund_status = $3, admin_notes = $4, refund_breakdown = $5, processed_at = now()
		WHERE refund_request_id = $6`,
		entity.RefundStatusProcessed, refundID, refundStatus, adminNotes, raw, requestID)
	if err != nil {
		return fmt.Errorf("marking refund request processed: %w", err)
	}

	return nil
}

func (r RefundRequestRepo) MarkFailed(ctx context.Context, requestID, adminNotes string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refund_requests SET status = $1, admin_notes = $2,
		processed_at = now() WHERE refund_request_id = $3`,
		entity.RefundStatusFailed, adminNotes, requestID)
	if err != nil {
		return fmt.Errorf("marking refund request failed: %w", err)
	}

	return nil
}
