package event

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/shopspring/decimal"

	"settlements/entity"
)

type header struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func newHeader(idempotencyKey string) header {
	return header{
		ID:             watermill.NewUUID(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type BookingCreated struct {
	Header                header          `json:"header"`
	BookingID             string          `json:"booking_id"`
	PaymentMethod         string          `json:"payment_method"`
	Status                string          `json:"status"`
	PayoutStatus          string          `json:"payout_status"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	ActualTicketPrice     decimal.Decimal `json:"actual_ticket_price"`
	TheatreID             string          `json:"theatre_id"`
	OwnerID               string          `json:"owner_id"`
	RazorpayPaymentID     string          `json:"razorpay_payment_id"`
	TheatreOwnerAccountID string          `json:"theatre_owner_account_id"`
}

func NewBookingCreated(idempotencyKey string, booking entity.Booking) BookingCreated {
	return BookingCreated{
		Header:                newHeader(idempotencyKey),
		BookingID:             booking.ID,
		PaymentMethod:         booking.PaymentMethod,
		Status:                booking.Status,
		PayoutStatus:          booking.PayoutStatus,
		TotalAmount:           booking.TotalAmount,
		ActualTicketPrice:     booking.ActualTicketPrice,
		TheatreID:             booking.TheatreID,
		OwnerID:               booking.OwnerID,
		RazorpayPaymentID:     booking.RazorpayPaymentID,
		TheatreOwnerAccountID: booking.TheatreOwnerAccountID,
	}
}

type TheatreRegistered struct {
	Header    header `json:"header"`
	TheatreID string `json:"theatre_id"`
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
}

func NewTheatreRegistered(idempotencyKey string, theatre entity.Theatre) TheatreRegistered {
	return TheatreRegistered{
		Header:    newHeader(idempotencyKey),
		TheatreID: theatre.ID,
		OwnerID:   theatre.OwnerID,
		Name:      theatre.Name,
	}
}

type TheatreVerified struct {
	Header    header `json:"header"`
	TheatreID string `json:"theatre_id"`
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
}

func NewTheatreVerified(idempotencyKey string, theatre entity.Theatre) TheatreVerified {
	return TheatreVerified{
		Header:    newHeader(idempotencyKey),
		TheatreID: theatre.ID,
		OwnerID:   theatre.OwnerID,
		Name:      theatre.Name,
	}
}

type TheatreRejected struct {
	Header          header `json:"header"`
	TheatreID       string `json:"theatre_id"`
	OwnerID         string `json:"owner_id"`
	Name            string `json:"name"`
	RejectionReason string `json:"rejection_reason"`
}

func NewTheatreRejected(idempotencyKey string, theatre entity.Theatre) TheatreRejected {
	return TheatreRejected{
		Header:          newHeader(idempotencyKey),
		TheatreID:       theatre.ID,
		OwnerID:         theatre.OwnerID,
		Name:            theatre.Name,
		RejectionReason: theatre.RejectionReason,
	}
}

type VerificationSubmitted struct {
	Header    header `json:"header"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

func NewVerificationSubmitted(idempotencyKey, userID, userName, userEmail string) VerificationSubmitted {
	return VerificationSubmitted{
		Header:    newHeader(idempotencyKey),
		UserID:    userID,
		UserName:  userName,
		UserEmail: userEmail,
	}
}
