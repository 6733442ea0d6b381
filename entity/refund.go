package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RefundStatusPending   = "pending"
	RefundStatusApproved  = "approved"
	RefundStatusProcessed = "processed"
	RefundStatusRejected  = "rejected"
	RefundStatusFailed    = "failed"
)

type RefundRequest struct {
	ID                string           `json:"refund_request_id"`
	BookingID         string           `json:"booking_id"`
	UserID            string           `json:"user_id"`
	TheatreID         string           `json:"theatre_id"`
	Amount            decimal.Decimal  `json:"amount"`
	ActualTicketPrice decimal.Decimal  `json:"actual_ticket_price"`
	PaymentID         string           `json:"payment_id"`
	Reason            string           `json:"reason"`
	Status            string           `json:"status"`
	ShowDate          string           `json:"show_date"`
	MovieTitle        string           `json:"movie_title"`
	TheatreName       string           `json:"theatre_name"`
	SelectedSeats     []string         `json:"selected_seats"`
	AdminNotes        string           `json:"admin_notes"`
	RefundID          string           `json:"refund_id"`
	RefundStatus      string           `json:"refund_status"`
	Breakdown         *RefundBreakdown `json:"refund_breakdown"`
	RequestedAt       time.Time        `json:"requested_at"`
	ProcessedAt       *time.Time       `json:"processed_at"`
}

// RefundBreakdown carries both outcomes of a compound refund: the refund to
// the customer and the best-effort recovery from the theatre owner. The two
// are reported independently rather than one suppressing the other.
type RefundBreakdown struct {
	TotalAmount           decimal.Decimal `json:"total_amount"`
	ActualTicketPrice     decimal.Decimal `json:"actual_ticket_price"`
	PlatformAmount        decimal.Decimal `json:"platform_amount"`
	TheatreOwnerRecovered bool            `json:"theatre_owner_recovered"`
	TheatreOwnerRefundID  string          `json:"theatre_owner_refund_id,omitempty"`
}

type SupportTicket struct {
	ID        string `json:"ticket_id"`
	UserID    string `json:"user_id"`
	Subject   string `json:"subject"`
	UserEmail string `json:"user_email"`
}
