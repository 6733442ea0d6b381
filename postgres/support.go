package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"settlements/entity"
)

func CreateSupportTicketsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS support_tickets (
		ticket_id VARCHAR(64) PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		subject VARCHAR(255) NOT NULL DEFAULT '',
		user_email VARCHAR(255) NOT NULL DEFAULT ''
	);`)
	return err
}

type SupportTicketRepo struct {
	db *sqlx.DB
}

func NewSupportTicketRepo(db *sqlx.DB) SupportTicketRepo {
	return SupportTicketRepo{
		db: db,
	}
}

func (r SupportTicketRepo) Add(ctx context.Context, ticket entity.SupportTicket) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO support_tickets
		(ticket_id, user_id, subject, user_email)
		VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING;`,
		ticket.ID, ticket.UserID, ticket.Subject, ticket.UserEmail)
	return err
}

func (r SupportTicketRepo) Get(ctx context.Context, ticketID string) (entity.SupportTicket, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT ticket_id, user_id, subject, user_email
		FROM support_tickets WHERE ticket_id = $1`, ticketID)

	var t entity.SupportTicket
	if err := row.Scan(&t.ID, &t.UserID, &t.Subject, &t.UserEmail); err != nil {
		return entity.SupportTicket{}, fmt.Errorf("scanning support ticket: %w", err)
	}

	return t, nil
}
