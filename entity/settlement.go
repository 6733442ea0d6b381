package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementRecord is written once per settled booking and never updated.
// OwnerShare plus PlatformProfit always equals TotalPaid.
type SettlementRecord struct {
	BookingID      string          `json:"booking_id"`
	TheatreID      string          `json:"theatre_id"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	OwnerShare     decimal.Decimal `json:"owner_share"`
	PlatformProfit decimal.Decimal `json:"platform_profit"`
	PaymentID      string          `json:"razorpay_payment_id"`
	OwnerAccountID string          `json:"owner_account_id"`
	SettledAt      time.Time       `json:"settled_at"`
}

// SplitOrder records a Razorpay order created with a transfer split, before
// the payment is captured.
type SplitOrder struct {
	OrderID           string          `json:"razorpay_order_id"`
	BookingID         string          `json:"booking_id"`
	TheatreID         string          `json:"theatre_id"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	ActualTicketPrice decimal.Decimal `json:"actual_ticket_price"`
	OwnerShare        decimal.Decimal `json:"owner_share"`
	PlatformProfit    decimal.Decimal `json:"platform_profit"`
	OwnerAccountID    string          `json:"owner_account_id"`
	CreatedAt         time.Time       `json:"created_at"`
}
