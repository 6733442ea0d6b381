package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"settlements/entity"
	"settlements/postgres"
)

func newBooking() entity.Booking {
	return entity.Booking{
		ID:                    uuid.NewString(),
		PaymentMethod:         entity.PaymentMethodOnline,
		Status:                entity.BookingStatusConfirmed,
		TotalAmount:           decimal.NewFromInt(500),
		ActualTicketPrice:     decimal.NewFromInt(440),
		TheatreID:             uuid.NewString(),
		OwnerID:               uuid.NewString(),
		RazorpayPaymentID:     "pay_" + uuid.NewString()[:8],
		TheatreOwnerAccountID: "acc_" + uuid.NewString()[:8],
	}
}

func TestBookingRepo_AddAndGet(t *testing.T) {
	ctx := context.Background()
	r := postgres.NewBookingRepo(db)

	booking := newBooking()
	require.NoError(t, r.Add(ctx, booking))

	got, err := r.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
	assert.Equal(t, entity.PayoutStatusPending, got.PayoutStatus)
	assert.True(t, got.TotalAmount.Equal(booking.TotalAmount))
	assert.True(t, got.ActualTicketPrice.Equal(booking.ActualTicketPrice))
	assert.Equal(t, booking.RazorpayPaymentID, got.RazorpayPaymentID)
}

func TestBookingRepo_ClaimPayoutOnlyOnce(t *testing.T) {
	ctx := context.Background()
	r := postgres.NewBookingRepo(db)

	booking := newBooking()
	require.NoError(t, r.Add(ctx, booking))

	claimed, err := r.ClaimPayout(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = r.ClaimPayout(ctx, booking.ID)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must lose")

	got, err := r.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PayoutStatusProcessing, got.PayoutStatus)
}

func TestBookingRepo_MarkPayoutSettled(t *testing.T) {
	ctx := context.Background()
	r := postgres.NewBookingRepo(db)

	booking := newBooking()
	require.NoError(t, r.Add(ctx, booking))

	_, err := r.ClaimPayout(ctx, booking.ID)
	require.NoError(t, err)
	require.NoError(t, r.MarkPayoutSettled(ctx, booking.ID, "trf_1", "acc_NEW"))

	got, err := r.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PayoutStatusSettled, got.PayoutStatus)
	assert.Equal(t, entity.PayoutMethodRazorpayRoute, got.PayoutMethod)
	assert.Equal(t, "trf_1", got.TransferID)
	assert.Equal(t, "acc_NEW", got.TheatreOwnerAccountID)
	assert.Empty(t, got.PayoutError)
}

func TestBookingRepo_MarkPayoutFailed(t *testing.T) {
	ctx := context.Background()
	r := postgres.NewBookingRepo(db)

	booking := newBooking()
	require.NoError(t, r.Add(ctx, booking))
	require.NoError(t, r.MarkPayoutFailed(ctx, booking.ID, "Invalid amount"))

	got, err := r.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PayoutStatusFailed, got.PayoutStatus)
	assert.Equal(t, "Invalid amount", got.PayoutError)
}

func TestBookingRepo_MarkCancelledOnlyOnce(t *testing.T) {
	ctx := context.Background()
	r := postgres.NewBookingRepo(db)

	booking := newBooking()
	require.NoError(t, r.Add(ctx, booking))

	cancelled, err := r.MarkCancelled(ctx, booking.ID, "req-1")
	require.NoError(t, err)
	assert.True(t, cancelled)

	cancelled, err = r.MarkCancelled(ctx, booking.ID, "req-2")
	require.NoError(t, err)
	assert.False(t, cancelled)

	got, err := r.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, got.Status)
	assert.Equal(t, "req-1", got.RefundRequestID)
}

func TestBookingRepo_SetRefundOutcome(t *testing.T) {
	ctx := context.Background()
	r := postgres.NewBookingRepo(db)

	booking := newBooking()
	require.NoError(t, r.Add(ctx, booking))

	breakdown := entity.RefundBreakdown{
		TotalAmount:           decimal.NewFromInt(500),
		ActualTicketPrice:     decimal.NewFromInt(440),
		PlatformAmount:        decimal.NewFromInt(60),
		TheatreOwnerRecovered: true,
		TheatreOwnerRefundID:  "trf_recovery",
	}
	require.NoError(t, r.SetRefundOutcome(ctx, booking.ID, "rfnd_1", "processed", breakdown))

	got, err := r.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", got.RefundID)
	assert.Equal(t, "processed", got.RefundStatus)
}
