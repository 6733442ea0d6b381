// Package notification delivers push notifications to known recipients,
// resolving delivery tokens from the user store.
package notification

import (
	"context"

	"settlements/applog"
	"settlements/clients"
	"settlements/entity"
)

// Android channel IDs, one per notification category.
const (
	ChannelRefund        = "movie_refund_channel"
	ChannelTheatreStatus = "theatre_status_channel"
	ChannelVerification  = "verification_channel"
)

type UserGetter interface {
	Get(ctx context.Context, userID string) (entity.User, error)
}

type PushSender interface {
	Send(ctx context.Context, msg clients.PushMessage) error
}

type Gateway struct {
	users          UserGetter
	sender         PushSender
	operatorUserID string
}

func NewGateway(users UserGetter, sender PushSender, operatorUserID string) Gateway {
	return Gateway{
		users:          users,
		sender:         sender,
		operatorUserID: operatorUserID,
	}
}

// NotifyUser sends a push notification to a user. Missing recipients and
// missing tokens are silent no-ops; delivery failures are logged, never
// propagated, since notifications are best-effort everywhere they are used.
func (g Gateway) NotifyUser(ctx context.Context, userID, channelID, title, body string, data map[string]string) {
	logger := applog.FromContext(ctx).WithField("recipient_id", userID)

	if userID == "" {
		return
	}

	user, err := g.users.Get(ctx, userID)
	if err != nil {
		logger.WithError(err).Info("Notification recipient not found")
		return
	}

	if user.FCMToken == "" {
		logger.Info("Notification recipient has no delivery token")
		return
	}

	msg := clients.PushMessage{
		Token:     user.FCMToken,
		Title:     title,
		Body:      body,
		ChannelID: channelID,
		Data:      data,
	}
	if err := g.sender.Send(ctx, msg); err != nil {
		logger.WithError(err).Error("Sending push notification")
	}
}

// NotifyOperator sends a push notification to the platform operator.
func (g Gateway) NotifyOperator(ctx context.Context, title, body string, data map[string]string) {
	g.NotifyUser(ctx, g.operatorUserID, ChannelVerification, title, body, data)
}
