package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentMethodOnline = "Online"

	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"

	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusSettled    = "settled"
	PayoutStatusFailed     = "failed"

	PayoutMethodRazorpayRoute = "Razorpay Route"

	// OwnerAccountPlaceholder marks a booking whose owner account has not
	// been resolved yet.
	OwnerAccountPlaceholder = "owner_placeholder"
)

type Booking struct {
	ID                    string          `json:"booking_id"`
	PaymentMethod         string          `json:"payment_method"`
	Status                string          `json:"status"`
	PayoutStatus          string          `json:"payout_status"`
	PayoutError           string          `json:"payout_error"`
	PayoutMethod          string          `json:"payout_method"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	ActualTicketPrice     decimal.Decimal `json:"actual_ticket_price"`
	TheatreID             string          `json:"theatre_id"`
	OwnerID               string          `json:"owner_id"`
	RazorpayPaymentID     string          `json:"razorpay_payment_id"`
	TheatreOwnerAccountID string          `json:"theatre_owner_account_id"`
	TransferID            string          `json:"transfer_id"`
	RefundRequestID       string          `json:"refund_request_id"`
	RefundID              string          `json:"refund_id"`
	RefundStatus          string          `json:"refund_status"`
	CancelledAt           *time.Time      `json:"cancelled_at"`
	RefundedAt            *time.Time      `json:"refunded_at"`
}
