// Package refund handles the full lifecycle of a refund request: creation by
// a customer, review by an admin, and the compound refund that pays the
// customer back while recovering the owner's share best-effort.
package refund

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lithammer/shortuuid/v3"
	"github.com/shopspring/decimal"

	"settlements/account"
	"settlements/applog"
	"settlements/clients"
	"settlements/entity"
	"settlements/notification"
	"settlements/settlement"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("refund request not found")
	// ErrNotPending signals that the request was already decided, by a
	// concurrent admin action or an earlier delivery of the same one.
	ErrNotPending = errors.New("refund request is not pending")
)

// GatewayError wraps a payment-gateway failure so the HTTP layer can report
// it as an internal error rather than a caller mistake.
type GatewayError struct {
	Err error
}

func (e GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %s", e.Err)
}

func (e GatewayError) Unwrap() error {
	return e.Err
}

type RequestRepo interface {
	Add(ctx context.Context, req entity.RefundRequest) error
	Get(ctx context.Context, requestID string) (entity.RefundRequest, error)
	ClaimApproval(ctx context.Context, requestID string) (bool, error)
	MarkRejected(ctx context.Context, requestID, adminNotes string) (bool, error)
	MarkProcessed(ctx context.Context, requestID, refundID, refundStatus, adminNotes string, breakdown entity.RefundBreakdown) error
	MarkFailed(ctx context.Context, requestID, adminNotes string) error
}

type BookingRepo interface {
	Get(ctx context.Context, bookingID string) (entity.Booking, error)
	MarkCancelled(ctx context.Context, bookingID, refundRequestID string) (bool, error)
	SetRefundOutcome(ctx context.Context, bookingID, refundID, refundStatus string, breakdown entity.RefundBreakdown) error
}

type AccountResolver interface {
	Resolve(ctx context.Context, theatreID, fallbackOwnerID string) string
}

type PaymentGateway interface {
	CreateTransfer(ctx context.Context, req clients.TransferRequest) (string, error)
	RefundPayment(ctx context.Context, paymentID string, amount int64, notes map[string]string) (clients.Refund, error)
}

type Notifier interface {
	NotifyUser(ctx context.Context, userID, channelID, title, body string, data map[string]string)
	NotifyOperator(ctx context.Context, title, body string, data map[string]string)
}

type Orchestrator struct {
	requests          RequestRepo
	bookings          BookingRepo
	resolver          AccountResolver
	gateway           PaymentGateway
	notifier          Notifier
	platformAccountID string
}

func NewOrchestrator(requests RequestRepo, bookings BookingRepo, resolver AccountResolver, gateway PaymentGateway, notifier Notifier, platformAccountID string) Orchestrator {
	return Orchestrator{
		requests:          requests,
		bookings:          bookings,
		resolver:          resolver,
		gateway:           gateway,
		notifier:          notifier,
		platformAccountID: platformAccountID,
	}
}

// CreateRequest records a pending refund request, cancels the booking and
// alerts the operator. The refund itself only happens once an admin approves
// the request via Process.
func (o Orchestrator) CreateRequest(ctx context.Context, req entity.RefundRequest) (entity.RefundRequest, error) {
	if req.BookingID == "" || req.UserID == "" || req.PaymentID == "" {
		return entity.RefundRequest{}, fmt.Errorf("%w: booking ID, user ID and payment ID are required", ErrInvalidArgument)
	}
	if err := settlement.ValidatePositive(req.Amount); err != nil {
		return entity.RefundRequest{}, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}

	if req.ID == "" {
		req.ID = shortuuid.New()
	}
	req.Status = entity.RefundStatusPending

	logger := applog.FromContext(ctx).
		WithField("refund_request_id", req.ID).
		WithField("booking_id", req.BookingID)

	if !req.ActualTicketPrice.IsPositive() {
		booking, err := o.bookings.Get(ctx, req.BookingID)
		switch {
		case err == nil && booking.ActualTicketPrice.IsPositive():
			req.ActualTicketPrice = booking.ActualTicketPrice
			req.TheatreID = booking.TheatreID
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return entity.RefundRequest{}, fmt.Errorf("loading booking: %w", err)
		default:
			// Bookings that predate the ticket-price field fall back to the
			// legacy 88% split of the charged amount.
			req.ActualTicketPrice = req.Amount.Mul(settlement.LegacyOwnerShareRate)
			logger.Info("Booking has no ticket price, estimating from legacy split")
		}
	}

	if err := o.requests.Add(ctx, req); err != nil {
		return entity.RefundRequest{}, fmt.Errorf("adding refund request: %w", err)
	}

	cancelled, err := o.bookings.MarkCancelled(ctx, req.BookingID, req.ID)
	if err != nil {
		logger.WithError(err).Error("Cancelling booking for refund request")
	} else if !cancelled {
		logger.Info("Booking already cancelled")
	}

	o.notifier.NotifyOperator(ctx, "New Refund Request",
		fmt.Sprintf("Refund of ₹%s requested for %s", req.Amount, req.MovieTitle),
		map[string]string{
			"type":              "refund_request",
			"refund_request_id": req.ID,
			"booking_id":        req.BookingID,
		})

	logger.Info("Refund request created")

	return req, nil
}

// Process applies an admin's decision. Rejection is a pure status change;
// approval refunds the customer in full and attempts to recover the owner's
// share of the ticket price back to the platform account. The recovery is
// best-effort and never blocks the customer's refund.
func (o Orchestrator) Process(ctx context.Context, requestID, action, adminNotes string) (entity.RefundRequest, error) {
	req, err := o.requests.Get(ctx, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.RefundRequest{}, fmt.Errorf("%w: %s", ErrNotFound, requestID)
	}
	if err != nil {
		return entity.RefundRequest{}, fmt.Errorf("getting refund request: %w", err)
	}

	switch action {
	case ActionReject:
		return o.reject(ctx, req, adminNotes)
	case ActionApprove:
		return o.approve(ctx, req, adminNotes)
	default:
		return entity.RefundRequest{}, fmt.Errorf("%w: unknown action %q", ErrInvalidArgument, action)
	}
}

func (o Orchestrator) reject(ctx context.Context, req entity.RefundRequest, adminNotes string) (entity.RefundRequest, error) {
	rejected, err := o.requests.MarkRejected(ctx, req.ID, adminNotes)
	if err != nil {
		return entity.RefundRequest{}, err
	}
	if !rejected {
		return entity.RefundRequest{}, fmt.Errorf("%w: %s", ErrNotPending, req.ID)
	}

	req.Status = entity.RefundStatusRejected
	req.AdminNotes = adminNotes

	o.notifier.NotifyUser(ctx, req.UserID, notification.ChannelRefund,
		"Refund Request Update",
		fmt.Sprintf("Your refund request for %s was not approved. %s", req.MovieTitle, adminNotes),
		map[string]string{
			"type":              "refund_rejected",
			"refund_request_id": req.ID,
		})

	applog.FromContext(ctx).WithField("refund_request_id", req.ID).Info("Refund request rejected")

	return req, nil
}

func (o Orchestrator) approve(ctx context.Context, req entity.RefundRequest, adminNotes string) (entity.RefundRequest, error) {
	logger := applog.FromContext(ctx).
		WithField("refund_request_id", req.ID).
		WithField("booking_id", req.BookingID)

	// Claim before touching the gateway so a concurrent approval of the same
	// request cannot issue a second refund.
	claimed, err := o.requests.ClaimApproval(ctx, req.ID)
	if err != nil {
		return entity.RefundRequest{}, err
	}
	if !claimed {
		return entity.RefundRequest{}, fmt.Errorf("%w: %s", ErrNotPending, req.ID)
	}

	ticketPrice := req.ActualTicketPrice
	if !ticketPrice.IsPositive() {
		ticketPrice = settlement.ApproxTicketPrice(req.Amount)
		logger.Info("Refund request has no ticket price, approximating from total")
	}
	platformAmount := settlement.PlatformProfit(req.Amount, ticketPrice)

	breakdown := entity.RefundBreakdown{
		TotalAmount:       req.Amount,
		ActualTicketPrice: ticketPrice,
		PlatformAmount:    platformAmount,
	}

	ownerAccountID := o.resolver.Resolve(ctx, req.TheatreID, "")
	if account.IsConnectedAccountID(ownerAccountID) && o.platformAccountID != "" {
		transferID, err := o.gateway.CreateTransfer(ctx, clients.TransferRequest{
			Amount:      settlement.MinorUnits(ticketPrice),
			Currency:    settlement.Currency,
			Source:      ownerAccountID,
			Destination: o.platformAccountID,
			Notes: map[string]string{
				"purpose":           "Theatre owner share recovery for cancelled booking",
				"booking_id":        req.BookingID,
				"refund_request_id": req.ID,
			},
		})
		if err != nil {
			logger.WithError(err).Error("Recovering theatre owner share")
		} else {
			breakdown.TheatreOwnerRecovered = true
			breakdown.TheatreOwnerRefundID = transferID
		}
	} else {
		logger.Info("No owner account to recover from, refunding from platform balance")
	}

	// The customer is always refunded the full charged amount, whether or not
	// the owner's share was recovered.
	refund, err := o.gateway.RefundPayment(ctx, req.PaymentID, settlement.MinorUnits(req.Amount), map[string]string{
		"refund_request_id": req.ID,
		"booking_id":        req.BookingID,
		"reason":            req.Reason,
	})
	if err != nil {
		logger.WithError(err).Error("Refunding customer payment")
		if markErr := o.requests.MarkFailed(ctx, req.ID, fmt.Sprintf("Refund failed: %s", err)); markErr != nil {
			logger.WithError(markErr).Error("Marking refund request failed")
		}
		return entity.RefundRequest{}, GatewayError{Err: err}
	}

	if err := o.requests.MarkProcessed(ctx, req.ID, refund.ID, refund.Status, adminNotes, breakdown); err != nil {
		return entity.RefundRequest{}, fmt.Errorf("marking refund request processed: %w", err)
	}

	if err := o.bookings.SetRefundOutcome(ctx, req.BookingID, refund.ID, refund.Status, breakdown); err != nil {
		logger.WithError(err).Error("Recording refund outcome on booking")
	}

	req.Status = entity.RefundStatusProcessed
	req.AdminNotes = adminNotes
	req.RefundID = refund.ID
	req.RefundStatus = refund.Status
	req.Breakdown = &breakdown

	o.notifier.NotifyUser(ctx, req.UserID, notification.ChannelRefund,
		"Refund Approved", refundBody(req.MovieTitle, req.Amount, breakdown),
		map[string]string{
			"type":              "refund_approved",
			"refund_request_id": req.ID,
			"refund_id":         refund.ID,
		})

	logger.WithField("refund_id", refund.ID).
		WithField("owner_recovered", breakdown.TheatreOwnerRecovered).
		Info("Refund request processed")

	return req, nil
}

func refundBody(movieTitle string, amount decimal.Decimal, breakdown entity.RefundBreakdown) string {
	if breakdown.TheatreOwnerRecovered {
		return fmt.Sprintf("Your refund of ₹%s for %s has been processed: ₹%s from the theatre and ₹%s in platform fees. The amount will reach your account in 5-7 business days.",
			amount, movieTitle, breakdown.ActualTicketPrice, breakdown.PlatformAmount)
	}

	return fmt.Sprintf("Your refund of ₹%s for %s has been processed. The amount will reach your account in 5-7 business days.",
		amount, movieTitle)
}
