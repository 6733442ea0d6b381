package message

import (
	"context"
	"fmt"

	"settlements/event"
	"settlements/notification"
)

type PayoutHandler interface {
	HandleBookingCreated(ctx context.Context, e *event.BookingCreated) error
}

type Notifier interface {
	NotifyUser(ctx context.Context, userID, channelID, title, body string, data map[string]string)
	NotifyOperator(ctx context.Context, title, body string, data map[string]string)
}

func handleSettleBookingPayout(h PayoutHandler) func(ctx context.Context, e *event.BookingCreated) error {
	return func(ctx context.Context, e *event.BookingCreated) error {
		return h.HandleBookingCreated(ctx, e)
	}
}

func handleNotifyTheatreRegistered(n Notifier) func(ctx context.Context, e *event.TheatreRegistered) error {
	return func(ctx context.Context, e *event.TheatreRegistered) error {
		n.NotifyOperator(ctx, "New Theatre Registration",
			fmt.Sprintf("%s is awaiting verification.", e.Name),
			map[string]string{
				"type":       "theatre_registered",
				"theatre_id": e.TheatreID,
			})

		return nil
	}
}

func handleNotifyTheatreVerified(n Notifier) func(ctx context.Context, e *event.TheatreVerified) error {
	return func(ctx context.Context, e *event.TheatreVerified) error {
		n.NotifyUser(ctx, e.OwnerID, notification.ChannelTheatreStatus,
			"Theatre Approved",
			fmt.Sprintf("Congratulations! %s has been verified and can now accept bookings.", e.Name),
			map[string]string{
				"type":       "theatre_verified",
				"theatre_id": e.TheatreID,
			})

		return nil
	}
}

func handleNotifyTheatreRejected(n Notifier) func(ctx context.Context, e *event.TheatreRejected) error {
	return func(ctx context.Context, e *event.TheatreRejected) error {
		body := fmt.Sprintf("%s was not approved.", e.Name)
		if e.RejectionReason != "" {
			body = fmt.Sprintf("%s was not approved. Reason: %s", e.Name, e.RejectionReason)
		}

		n.NotifyUser(ctx, e.OwnerID, notification.ChannelTheatreStatus,
			"Theatre Verification Update", body,
			map[string]string{
				"type":       "theatre_rejected",
				"theatre_id": e.TheatreID,
			})

		return nil
	}
}

func handleNotifyVerificationSubmitted(n Notifier) func(ctx context.Context, e *event.VerificationSubmitted) error {
	return func(ctx context.Context, e *event.VerificationSubmitted) error {
		n.NotifyOperator(ctx, "New Verification Request",
			fmt.Sprintf("%s (%s) submitted verification documents.", e.UserName, e.UserEmail),
			map[string]string{
				"type":    "verification_submitted",
				"user_id": e.UserID,
			})

		return nil
	}
}
