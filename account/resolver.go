// Package account resolves a theatre's owning user to a payment-processor
// connected account ID.
package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"settlements/applog"
	"settlements/entity"
)

const Prefix = "acc_"

// candidateKeys are the legacy field-name variants under which a connected
// account ID may be stored on a user record, in precedence order.
var candidateKeys = []string{
	"razorpayAccountId",
	"ownerAccountId",
	"accountId",
	"razorpay_account_id",
	"razorpay_accountId",
}

// IsConnectedAccountID reports whether s looks like a connected account ID.
func IsConnectedAccountID(s string) bool {
	return strings.HasPrefix(s, Prefix)
}

// FromFields scans the candidate keys in precedence order and returns the
// first value that looks like a connected account ID, or "".
func FromFields(fields map[string]string) string {
	for _, key := range candidateKeys {
		if acc := fields[key]; IsConnectedAccountID(acc) {
			return acc
		}
	}

	return ""
}

type TheatreGetter interface {
	Get(ctx context.Context, theatreID string) (entity.Theatre, error)
}

type UserGetter interface {
	Get(ctx context.Context, userID string) (entity.User, error)
}

type Resolver struct {
	theatres TheatreGetter
	users    UserGetter
}

func NewResolver(theatres TheatreGetter, users UserGetter) Resolver {
	return Resolver{
		theatres: theatres,
		users:    users,
	}
}

// Resolve returns the connected account ID for the theatre's owner, or "".
// Absence of a theatre, owner or valid account is a normal business outcome;
// storage failures are logged and also reported as absence, since the caller
// must handle "no account" either way.
func (r Resolver) Resolve(ctx context.Context, theatreID, fallbackOwnerID string) string {
	if theatreID == "" {
		return ""
	}

	theatre, err := r.theatres.Get(ctx, theatreID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			applog.FromContext(ctx).WithError(err).Error("Getting theatre for account resolution")
		}
		return ""
	}

	ownerID := theatre.OwnerID
	if ownerID == "" {
		ownerID = fallbackOwnerID
	}
	if ownerID == "" {
		return ""
	}

	owner, err := r.users.Get(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			applog.FromContext(ctx).WithError(err).Error("Getting owner for account resolution")
		}
		return ""
	}

	return FromFields(owner.AccountFields)
}
