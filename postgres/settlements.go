package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"settlements/entity"
)

func CreateSettlementsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS settlements (
		booking_id VARCHAR(64) PRIMARY KEY,
		theatre_id VARCHAR(64) NOT NULL DEFAULT '',
		total_paid NUMERIC(10, 2) NOT NULL,
		owner_share NUMERIC(10, 2) NOT NULL,
		platform_profit NUMERIC(10, 2) NOT NULL,
		razorpay_payment_id VARCHAR(64) NOT NULL,
		owner_account_id VARCHAR(64) NOT NULL,
		settled_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);`)
	return err
}

type SettlementRepo struct {
	db *sqlx.DB
}

func NewSettlementRepo(db *sqlx.DB) SettlementRepo {
	return SettlementRepo{
		db: db,
	}
}

// Add writes the settlement record for a booking. Records are immutable; a
// conflicting insert from a redelivered event is a no-op.
func (r SettlementRepo) Add(ctx context.Context, s entity.SettlementRecord) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO settlements
		(booking_id, theatre_id, total_paid, owner_share, platform_profit, razorpay_payment_id, owner_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT DO NOTHING;`,
		s.BookingID, s.TheatreID, s.TotalPaid, s.OwnerShare, s.PlatformProfit, s.PaymentID, s.OwnerAccountID)
	return err
}

func (r SettlementRepo) Get(ctx context.Context, bookingID string) (entity.SettlementRecord, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT booking_id, theatre_id, total_paid, owner_share,
		platform_profit, razorpay_payment_id, owner_account_id, settled_at
		FROM settlements WHERE booking_id = $1`, bookingID)

	var s entity.SettlementRecord
	err := row.Scan(&s.BookingID, &s.TheatreID, &s.TotalPaid, &s.OwnerShare, &s.PlatformProfit,
		&s.PaymentID, &s.OwnerAccountID, &s.SettledAt)
	if err != nil {
		return entity.SettlementRecord{}, fmt.Errorf("scanning settlement: %w", err)
	}

	return s, nil
}
