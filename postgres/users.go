package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"settlements/entity"
)

func CreateUsersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS users (
		user_id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		user_type VARCHAR(32) NOT NULL DEFAULT 'User',
		fcm_token TEXT NOT NULL DEFAULT '',
		account_fields JSONB NOT NULL DEFAULT '{}'
	);`)
	return err
}

type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) UserRepo {
	return UserRepo{
		db: db,
	}
}

func (r UserRepo) Add(ctx context.Context, user entity.User) error {
	fields := user.AccountFields
	if fields == nil {
		fields = map[string]string{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshalling account fields: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO users
		(user_id, name, email, user_type, fcm_token, account_fields)
		VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING;`,
		user.ID, user.Name, user.Email, user.UserType, user.FCMToken, raw)
	return err
}

func (r UserRepo) Get(ctx context.Context, userID string) (entity.User, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT user_id, name, email, user_type, fcm_token, account_fields
		FROM users WHERE user_id = $1`, userID)

	var u entity.User
	var raw []byte
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.UserType, &u.FCMToken, &raw); err != nil {
		return entity.User{}, fmt.Errorf("scanning user: %w", err)
	}

	if err := json.Unmarshal(raw, &u.AccountFields); err != nil {
		return entity.User{}, fmt.Errorf("unmarshalling account fields: %w", err)
	}

	return u, nil
}
