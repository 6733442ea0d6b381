// Package payout drives the booking-confirmed to split-payment flow. Each
// booking's payout moves from pending to exactly one of settled or failed;
// failed payouts are never retried automatically and need an admin to
// re-drive them.
package payout

import (
	"context"
	"fmt"

	"settlements/account"
	"settlements/applog"
	"settlements/clients"
	"settlements/entity"
	"settlements/event"
	"settlements/settlement"
)

// Failure reasons written to the booking. The account messages are shown to
// theatre owners, so they say what to do, not what broke.
const (
	ReasonInvalidAmount    = "Invalid amount"
	ReasonMissingAccount   = "Missing Razorpay connected account ID. Theatre owner must add their Razorpay account ID to receive payments."
	ReasonMissingPaymentID = "Missing Razorpay payment ID for transfer"
	ReasonInvalidAccount   = "Theatre owner does not have a valid Razorpay connected account ID."
)

type BookingRepo interface {
	ClaimPayout(ctx context.Context, bookingID string) (bool, error)
	MarkPayoutSettled(ctx context.Context, bookingID, transferID, ownerAccountID string) error
	MarkPayoutFailed(ctx context.Context, bookingID, reason string) error
}

type SettlementRepo interface {
	Add(ctx context.Context, s entity.SettlementRecord) error
}

type AccountResolver interface {
	Resolve(ctx context.Context, theatreID, fallbackOwnerID string) string
}

type PaymentSplitter interface {
	SplitPayment(ctx context.Context, paymentID string, transfers []clients.SplitTransfer) (string, error)
}

type Orchestrator struct {
	bookings    BookingRepo
	settlements SettlementRepo
	resolver    AccountResolver
	gateway     PaymentSplitter
}

func NewOrchestrator(bookings BookingRepo, settlements SettlementRepo, resolver AccountResolver, gateway PaymentSplitter) Orchestrator {
	return Orchestrator{
		bookings:    bookings,
		settlements: settlements,
		resolver:    resolver,
		gateway:     gateway,
	}
}

// HandleBookingCreated settles the payout for a newly created booking.
// Business failures are written to the booking as a failed payout status and
// acked; only infrastructure errors are returned, so the message layer never
// retries a payout decision.
func (o Orchestrator) HandleBookingCreated(ctx context.Context, e *event.BookingCreated) error {
	logger := applog.FromContext(ctx).WithField("booking_id", e.BookingID)

	if e.PaymentMethod != entity.PaymentMethodOnline {
		logger.Info("Skipping payout: not an online payment")
		return nil
	}
	if e.Status != entity.BookingStatusConfirmed {
		logger.Info("Skipping payout: booking not confirmed")
		return nil
	}
	if e.PayoutStatus == entity.PayoutStatusSettled {
		logger.Info("Skipping payout: already settled")
		return nil
	}

	claimed, err := o.bookings.ClaimPayout(ctx, e.BookingID)
	if err != nil {
		return fmt.Errorf("claiming payout: %w", err)
	}
	if !claimed {
		logger.Info("Skipping payout: already claimed by another delivery")
		return nil
	}

	if !e.TotalAmount.IsPositive() {
		return o.fail(ctx, e.BookingID, ReasonInvalidAmount)
	}

	ownerAccountID := e.TheatreOwnerAccountID
	if ownerAccountID == "" || ownerAccountID == entity.OwnerAccountPlaceholder {
		ownerAccountID = o.resolver.Resolve(ctx, e.TheatreID, e.OwnerID)
		if ownerAccountID == "" {
			return o.fail(ctx, e.BookingID, ReasonMissingAccount)
		}
	}

	if e.RazorpayPaymentID == "" {
		return o.fail(ctx, e.BookingID, ReasonMissingPaymentID)
	}

	if !account.IsConnectedAccountID(ownerAccountID) {
		return o.fail(ctx, e.BookingID, ReasonInvalidAccount)
	}

	ownerShare, err := settlement.OwnerShare(e.ActualTicketPrice)
	if err != nil {
		return o.fail(ctx, e.BookingID, ReasonInvalidAmount)
	}
	platformProfit := settlement.PlatformProfit(e.TotalAmount, ownerShare)

	logger.WithField("owner_share", ownerShare).
		WithField("platform_profit", platformProfit).
		Info("Settling payout")

	transferID, err := o.gateway.SplitPayment(ctx, e.RazorpayPaymentID, []clients.SplitTransfer{{
		Account:  ownerAccountID,
		Amount:   settlement.MinorUnits(ownerShare),
		Currency: settlement.Currency,
		Notes: map[string]string{
			"purpose": "Movie ticket booking settlement - 100% of base ticket price",
			"note":    "Platform fee (12%) collected separately from customer",
		},
	}})
	if err != nil {
		logger.WithError(err).Error("Split transfer failed")
		return o.fail(ctx, e.BookingID, fmt.Sprintf("Transfer failed: %s", err))
	}

	if err := o.bookings.MarkPayoutSettled(ctx, e.BookingID, transferID, ownerAccountID); err != nil {
		return fmt.Errorf("marking payout settled: %w", err)
	}

	record := entity.SettlementRecord{
		BookingID:      e.BookingID,
		TheatreID:      e.TheatreID,
		TotalPaid:      e.TotalAmount,
		OwnerShare:     ownerShare,
		PlatformProfit: platformProfit,
		PaymentID:      e.RazorpayPaymentID,
		OwnerAccountID: ownerAccountID,
	}
	if err := o.settlements.Add(ctx, record); err != nil {
		// The transfer went through and the booking is settled; a missing
		// settlement record is reconciled manually rather than by replaying
		// the payout.
		logger.WithError(err).Error("Persisting settlement record")
	}

	logger.Info("Payout settled")

	return nil
}

func (o Orchestrator) fail(ctx context.Context, bookingID, reason string) error {
	applog.FromContext(ctx).
		WithField("booking_id", bookingID).
		WithField("reason", reason).
		Info("Payout failed")

	if err := o.bookings.MarkPayoutFailed(ctx, bookingID, reason); err != nil {
		return fmt.Errorf("marking payout failed: %w", err)
	}

	return nil
}
