package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"settlements/entity"
)

func CreateSplitOrdersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS split_orders (
		razorpay_order_id VARCHAR(64) PRIMARY KEY,
		booking_id VARCHAR(64) NOT NULL,
		theatre_id VARCHAR(64) NOT NULL DEFAULT '',
		total_paid NUMERIC(10, 2) NOT NULL,
		actual_ticket_price NUMERIC(10, 2) NOT NULL,
		owner_share NUMERIC(10, 2) NOT NULL,
		platform_profit NUMERIC(10, 2) NOT NULL,
		owner_account_id VARCHAR(64) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);`)
	return err
}

type SplitOrderRepo struct {
	db *sqlx.DB
}

func NewSplitOrderRepo(db *sqlx.DB) SplitOrderRepo {
	return SplitOrderRepo{
		db: db,
	}
}

func (r SplitOrderRepo) Add(ctx context.Context, o entity.SplitOrder) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO split_orders
		(razorpay_order_id, booking_id, theatre_id, total_paid, actual_ticket_price,
		owner_share, platform_profit, owner_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT DO NOTHING;`,
		o.OrderID, o.BookingID, o.TheatreID, o.TotalPaid, o.ActualTicketPrice,
		o.OwnerShare, o.PlatformProfit, o.OwnerAccountID)
	return err
}
