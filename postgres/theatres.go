package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"settlements/entity"
	"settlements/event"
	"settlements/message"
)

func CreateTheatresTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS theatres (
		theatre_id VARCHAR(64) PRIMARY KEY,
		owner_id VARCHAR(64) NOT NULL DEFAULT '',
		name VARCHAR(255) NOT NULL DEFAULT '',
		theatre_status VARCHAR(32) NOT NULL DEFAULT 'Not Verified',
		rejection_reason TEXT NOT NULL DEFAULT ''
	);`)
	return err
}

type TheatreRepo struct {
	db *sqlx.DB
}

func NewTheatreRepo(db *sqlx.DB) TheatreRepo {
	return TheatreRepo{
		db: db,
	}
}

// Add registers the theatre and publishes a TheatreRegistered event in the
// same transaction.
func (r TheatreRepo) Add(ctx context.Context, theatre entity.Theatre) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := addTheatre(ctx, tx, theatre); err != nil {
		return errors.Join(err, tx.Rollback())
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func addTheatre(ctx context.Context, tx *sql.Tx, theatre entity.Theatre) error {
	if theatre.Status == "" {
		theatre.Status = entity.TheatreStatusNotVerified
	}

	_, err := tx.ExecContext(ctx, `INSERT INTO theatres
		(theatre_id, owner_id, name, theatre_status, rejection_reason)
		VALUES ($1, $2, $3, $4, $5);`,
		theatre.ID, theatre.OwnerID, theatre.Name, theatre.Status, theatre.RejectionReason)
	if err != nil {
		return fmt.Errorf("inserting theatre: %w", err)
	}

	e := event.NewTheatreRegistered(uuid.NewString(), theatre)

	if err := message.PublishInTx(ctx, e, tx); err != nil {
		return fmt.Errorf("publishing event in transaction: %w", err)
	}

	return nil
}

func (r TheatreRepo) Get(ctx context.Context, theatreID string) (entity.Theatre, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT theatre_id, owner_id, name, theatre_status, rejection_reason
		FROM theatres WHERE theatre_id = $1`, theatreID)

	var t entity.Theatre
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Status, &t.RejectionReason); err != nil {
		return entity.Theatre{}, fmt.Errorf("scanning theatre: %w", err)
	}

	return t, nil
}

// SetStatus moves the theatre to the given verification status and publishes
// the matching TheatreVerified or TheatreRejected event in the same
// transaction.
func (r TheatreRepo) SetStatus(ctx context.Context, theatreID, status, rejectionReason string) (entity.Theatre, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return entity.Theatre{}, fmt.Errorf("beginning transaction: %w", err)
	}

	theatre, err := setTheatreStatus(ctx, tx, theatreID, status, rejectionReason)
	if err != nil {
		return entity.Theatre{}, errors.Join(err, tx.Rollback())
	}

	if err := tx.Commit(); err != nil {
		return entity.Theatre{}, fmt.Errorf("committing transaction: %w", err)
	}

	return theatre, nil
}

func setTheatreStatus(ctx context.Context, tx *sql.Tx, theatreID, status, rejectionReason string) (entity.Theatre, error) {
	row := tx.QueryRowContext(ctx, `UPDATE theatres SET theatre_status = $1, rejection_reason = $2
		WHERE theatre_id = $3
		RETURNING theatre_id, owner_id, name, theatre_status, rejection_reason`,
		status, rejectionReason, theatreID)

	var t entity.Theatre
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Status, &t.RejectionReason); err != nil {
		return entity.Theatre{}, fmt.Errorf("scanning theatre: %w", err)
	}

	switch status {
	case entity.TheatreStatusVerified:
		if err := message.PublishInTx(ctx, event.NewTheatreVerified(uuid.NewString(), t), tx); err != nil {
			return entity.Theatre{}, fmt.Errorf("publishing event in transaction: %w", err)
		}
	case entity.TheatreStatusDisapproved:
		if err := message.PublishInTx(ctx, event.NewTheatreRejected(uuid.NewString(), t), tx); err != nil {
			return entity.Theatre{}, fmt.Errorf("publishing event in transaction: %w", err)
		}
	}

	return t, nil
}
