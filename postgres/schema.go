package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func InitialiseDB(ctx context.Context, db *sqlx.DB) error {
	if err := CreateBookingsTable(ctx, db); err != nil {
		return fmt.Errorf("creating bookings table: %w", err)
	}

	if err := CreateTheatresTable(ctx, db); err != nil {
		return fmt.Errorf("creating theatres table: %w", err)
	}

	if err := CreateUsersTable(ctx, db); err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	if err := CreateSettlementsTable(ctx, db); err != nil {
		return fmt.Errorf("creating settlements table: %w", err)
	}

	if err := CreateSplitOrdersTable(ctx, db); err != nil {
		return fmt.Errorf("creating split orders table: %w", err)
	}

	if err := CreateRefundRequestsTable(ctx, db); err != nil {
		return fmt.Errorf("creating refund requests table: %w", err)
	}

	if err := CreateSupportTicketsTable(ctx, db); err != nil {
		return fmt.Errorf("creating support tickets table: %w", err)
	}

	return nil
}
