package refund_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"settlements/clients"
	"settlements/entity"
	"settlements/refund"
)

type requestRepoStub struct {
	added       []entity.RefundRequest
	stored      entity.RefundRequest
	getErr      error
	claimed     bool
	rejected    bool
	processed   *processedCall
	failedNotes string
}

type processedCall struct {
	refundID     string
	refundStatus string
	adminNotes   string
	breakdown    entity.RefundBreakdown
}

func (s *requestRepoStub) Add(_ context.Context, req entity.RefundRequest) error {
	s.added = append(s.added, req)
	return nil
}

func (s *requestRepoStub) Get(_ context.Context, _ string) (entity.RefundRequest, error) {
	return s.stored, s.getErr
}

func (s *requestRepoStub) ClaimApproval(_ context.Context, _ string) (bool, error) {
	return s.claimed, nil
}

func (s *requestRepoStub) MarkRejected(_ context.Context, _, _ string) (bool, error) {
	return s.rejected, nil
}

func (s *requestRepoStub) MarkProcessed(_ context.Context, _, refundID, refundStatus, adminNotes string, breakdown entity.RefundBreakdown) error {
	s.processed = &processedCall{
		refundID:     refundID,
		refundStatus: refundStatus,
		adminNotes:   adminNotes,
		breakdown:    breakdown,
	}
	return nil
}

func (s *requestRepoStub) MarkFailed(_ context.Context, _, adminNotes string) error {
	s.failedNotes = adminNotes
	return nil
}

type bookingRepoStub struct {
	booking      entity.Booking
	getErr       error
	cancelledID  string
	outcome      *entity.RefundBreakdown
	outcomeRefID string
}

func (s *bookingRepoStub) Get(_ context.Context, _ string) (entity.Booking, error) {
	return s.booking, s.getErr
}

func (s *bookingRepoStub) MarkCancelled(_ context.Context, _, refundRequestID string) (bool, error) {
	s.cancelledID = refundRequestID
	return true, nil
}

func (s *bookingRepoStub) SetRefundOutcome(_ context.Context, _, refundID, _ string, breakdown entity.RefundBreakdown) error {
	s.outcome = &breakdown
	s.outcomeRefID = refundID
	return nil
}

type resolverStub struct {
	accountID string
}

func (s resolverStub) Resolve(_ context.Context, _, _ string) string {
	return s.accountID
}

type gatewayStub struct {
	transfers   []clients.TransferRequest
	transferErr error
	refunds     []refundCall
	refundErr   error
}

type refundCall struct {
	paymentID string
	amount    int64
}

func (s *gatewayStub) CreateTransfer(_ context.Context, req clients.TransferRequest) (string, error) {
	s.transfers = append(s.transfers, req)
	if s.transferErr != nil {
		return "", s.transferErr
	}
	return "trf_recovery", nil
}

func (s *gatewayStub) RefundPayment(_ context.Context, paymentID string, amount int64, _ map[string]string) (clients.Refund, error) {
	s.refunds = append(s.refunds, refundCall{paymentID: paymentID, amount: amount})
	if s.refundErr != nil {
		return clients.Refund{}, s.refundErr
	}
	return clients.Refund{ID: "rfnd_1", Status: "processed"}, nil
}

type notifierStub struct {
	userTitles     []string
	userBodies     []string
	operatorTitles []string
}

func (s *notifierStub) NotifyUser(_ context.Context, _, _, title, body string, _ map[string]string) {
	s.userTitles = append(s.userTitles, title)
	s.userBodies = append(s.userBodies, body)
}

func (s *notifierStub) NotifyOperator(_ context.Context, title, _ string, _ map[string]string) {
	s.operatorTitles = append(s.operatorTitles, title)
}

const platformAccount = "acc_PLATFORM"

func pendingRequest() entity.RefundRequest {
	return entity.RefundRequest{
		ID:                "req-1",
		BookingID:         "booking-1",
		UserID:            "user-1",
		TheatreID:         "theatre-1",
		Amount:            decimal.NewFromInt(500),
		ActualTicketPrice: decimal.NewFromInt(440),
		PaymentID:         "pay_123",
		Reason:            "Show cancelled",
		Status:            entity.RefundStatusPending,
		MovieTitle:        "Interstellar",
	}
}

func TestCreateRequestRejectsMissingFields(t *testing.T) {
	orchestrator := refund.NewOrchestrator(&requestRepoStub{}, &bookingRepoStub{}, resolverStub{}, &gatewayStub{}, &notifierStub{}, platformAccount)

	req := pendingRequest()
	req.PaymentID = ""

	_, err := orchestrator.CreateRequest(context.Background(), req)
	require.ErrorIs(t, err, refund.ErrInvalidArgument)
}

func TestCreateRequestRejectsNonPositiveAmount(t *testing.T) {
	orchestrator := refund.NewOrchestrator(&requestRepoStub{}, &bookingRepoStub{}, resolverStub{}, &gatewayStub{}, &notifierStub{}, platformAccount)

	req := pendingRequest()
	req.Amount = decimal.Zero

	_, err := orchestrator.CreateRequest(context.Background(), req)
	require.ErrorIs(t, err, refund.ErrInvalidArgument)
}

func TestCreateRequestStoresPendingAndCancelsBooking(t *testing.T) {
	requests := &requestRepoStub{}
	bookings := &bookingRepoStub{getErr: fmt.Errorf("scanning booking: %w", sql.ErrNoRows)}
	notifier := &notifierStub{}
	orchestrator := refund.NewOrchestrator(requests, bookings, resolverStub{}, &gatewayStub{}, notifier, platformAccount)

	created, err := orchestrator.CreateRequest(context.Background(), pendingRequest())
	require.NoError(t, err)

	require.Len(t, requests.added, 1)
	assert.Equal(t, entity.RefundStatusPending, requests.added[0].Status)
	assert.Equal(t, created.ID, bookings.cancelledID)
	assert.Contains(t, notifier.operatorTitles, "New Refund Request")
}

func TestCreateRequestEstimatesTicketPriceFromLegacySplit(t *testing.T) {
	requests := &requestRepoStub{}
	bookings := &bookingRepoStub{getErr: fmt.Errorf("scanning booking: %w", sql.ErrNoRows)}
	orchestrator := refund.NewOrchestrator(requests, bookings, resolverStub{}, &gatewayStub{}, &notifierStub{}, platformAccount)

	req := pendingRequest()
	req.ActualTicketPrice = decimal.Zero

	_, err := orchestrator.CreateRequest(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, requests.added, 1)
	want := decimal.NewFromInt(440) // 500 * 0.88
	assert.True(t, requests.added[0].ActualTicketPrice.Equal(want), "ticket price %s", requests.added[0].ActualTicketPrice)
}

func TestCreateRequestPrefersBookingTicketPrice(t *testing.T) {
	requests := &requestRepoStub{}
	bookings := &bookingRepoStub{booking: entity.Booking{
		ID:                "booking-1",
		ActualTicketPrice: decimal.NewFromInt(450),
		TheatreID:         "theatre-9",
	}}
	orchestrator := refund.NewOrchestrator(requests, bookings, resolverStub{}, &gatewayStub{}, &notifierStub{}, platformAccount)

	req := pendingRequest()
	req.ActualTicketPrice = decimal.Zero
	req.TheatreID = ""

	_, err := orchestrator.CreateRequest(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, requests.added, 1)
	assert.True(t, requests.added[0].ActualTicketPrice.Equal(decimal.NewFromInt(450)))
	assert.Equal(t, "theatre-9", requests.added[0].TheatreID)
}

func TestProcessUnknownRequest(t *testing.T) {
	requests := &requestRepoStub{getErr: fmt.Errorf("scanning refund request: %w", sql.ErrNoRows)}
	orchestrator := refund.NewOrchestrator(requests, &bookingRepoStub{}, resolverStub{}, &gatewayStub{}, &notifierStub{}, platformAccount)

	_, err := orchestrator.Process(context.Background(), "missing", refund.ActionApprove, "")
	require.ErrorIs(t, err, refund.ErrNotFound)
}

func TestProcessUnknownAction(t *testing.T) {
	requests := &requestRepoStub{stored: pendingRequest()}
	orchestrator := refund.NewOrchestrator(requests, &bookingRepoStub{}, resolverStub{}, &gatewayStub{}, &notifierStub{}, platformAccount)

	_, err := orchestrator.Process(context.Background(), "req-1", "escalate", "")
	require.ErrorIs(t, err, refund.ErrInvalidArgument)
}

func TestProcessRejectsPendingRequest(t *testing.T) {
	requests := &requestRepoStub{stored: pendingRequest(), rejected: true}
	gateway := &gatewayStub{}
	notifier := &notifierStub{}
	orchestrator := refund.NewOrchestrator(requests, &bookingRepoStub{}, resolverStub{}, gateway, notifier, platformAccount)

	processed, err := orchestrator.Process(context.Background(), "req-1", refund.ActionReject, "duplicate request")
	require.NoError(t, err)

	assert.Equal(t, entity.RefundStatusRejected, processed.Status)
	assert.Empty(t, gateway.refunds)
	assert.Contains(t, notifier.userTitles, "Refund Request Update")
}

func TestProcessRejectAlreadyDecided(t *testing.T) {
	requests := &requestRepoStub{stored: pendingRequest(), rejected: false}
	orchestrator := refund.NewOrchestrator(requests, &bookingRepoStub{}, resolverStub{}, &gatewayStub{}, &notifierStub{}, platformAccount)

	_, err := orchestrator.Process(context.Background(), "req-1", refund.ActionReject, "")
	require.ErrorIs(t, err, refund.ErrNotPending)
}

func TestProcessApproveRefundsAndRecoversOwnerShare(t *testing.T) {
	requests := &requestRepoStub{stored: pendingRequest(), claimed: true}
	bookings := &bookingRepoStub{}
	gateway := &gatewayStub{}
	notifier := &notifierStub{}
	orchestrator := refund.NewOrchestrator(requests, bookings, resolverStub{accountID: "acc_OWNER"}, gateway, notifier, platformAccount)

	processed, err := orchestrator.Process(context.Background(), "req-1", refund.ActionApprove, "verified")
	require.NoError(t, err)

	require.Len(t, gateway.transfers, 1)
	assert.Equal(t, "acc_OWNER", gateway.transfers[0].Source)
	assert.Equal(t, platformAccount, gateway.transfers[0].Destination)
	assert.Equal(t, int64(44000), gateway.transfers[0].Amount)

	require.Len(t, gateway.refunds, 1)
	assert.Equal(t, "pay_123", gateway.refunds[0].paymentID)
	assert.Equal(t, int64(50000), gateway.refunds[0].amount)

	require.NotNil(t, requests.processed)
	assert.Equal(t, "rfnd_1", requests.processed.refundID)
	assert.True(t, requests.processed.breakdown.TheatreOwnerRecovered)
	assert.Equal(t, "trf_recovery", requests.processed.breakdown.TheatreOwnerRefundID)
	assert.True(t, requests.processed.breakdown.PlatformAmount.Equal(decimal.NewFromInt(60)))

	require.NotNil(t, bookings.outcome)
	assert.Equal(t, "rfnd_1", bookings.outcomeRefID)

	assert.Equal(t, entity.RefundStatusProcessed, processed.Status)
	require.Contains(t, notifier.userTitles, "Refund Approved")
	assert.Contains(t, notifier.userBodies[0], "from the theatre")
}

func TestProcessApproveRefundsFullAmountWithoutOwnerAccount(t *testing.T) {
	requests := &requestRepoStub{stored: pendingRequest(), claimed: true}
	gateway := &gatewayStub{}
	notifier := &notifierStub{}
	orchestrator := refund.NewOrchestrator(requests, &bookingRepoStub{}, resolverStub{accountID: ""}, gateway, notifier, platformAccount)

	_, err := orchestrator.Process(context.Background(), "req-1", refund.ActionApprove, "")
	require.NoError(t, err)

	assert.Empty(t, gateway.transfers)
	require.Len(t, gateway.refunds, 1)
	assert.Equal(t, int64(50000), gateway.refunds[0].amount)

	require.NotNil(t, requests.processed)
	assert.False(t, requests.processed.breakdown.TheatreOwnerRecovered)
	assert.NotContains(t, notifier.userBodies[0], "from the theatre")
}

func TestProcessApproveRecoveryFailureDoesNotBlockRefund(t *testing.T) {
	requests := &requestRepoStub{stored: pendingRequest(), claimed: true}
	gateway := &gatewayStub{transferErr: errors.New("razorpay: insufficient balance (BAD_REQUEST_ERROR)")}
	orchestrator := refund.NewOrchestrator(requests, &bookingRepoStub{}, resolverStub{accountID: "acc_OWNER"}, gateway, &notifierStub{}, platformAccount)

	_, err := orchestrator.Process(context.Background(), "req-1", refund.ActionApprove, "")
	require.NoError(t, err)

	require.Len(t, gateway.refunds, 1)
	require.NotNil(t, requests.processed)
	assert.False(t, requests.processed.breakdown.TheatreOwnerRecovered)
	assert.Empty(t, requests.processed.breakdown.TheatreOwnerRefundID)
}

func TestProcessApproveApproximatesMissingTicketPrice(t *testing.T) {
	stored := pendingRequest()
	stored.Amount = decimal.NewFromInt(112)
	stored.ActualTicketPrice = decimal.Zero
	requests := &requestRepoStub{stored: stored, claimed: true}
	gateway := &gatewayStub{}
	orchestrator := refund.NewOrchestrator(requests, &bookingRepoStub{}, resolverStub{accountID: "acc_OWNER"}, gateway, &notifierStub{}, platformAccount)

	_, err := orchestrator.Process(context.Background(), "req-1", refund.ActionApprove, "")
	require.NoError(t, err)

	require.Len(t, gateway.transfers, 1)
	assert.Equal(t, int64(10000), gateway.transfers[0].Amount) // 112 / 1.12
	require.Len(t, gateway.refunds, 1)
	assert.Equal(t, int64(11200), gateway.refunds[0].amount)
}

func TestProcessApproveAlreadyClaimed(t *testing.T) {
	requests := &requestRepoStub{stored: pendingRequest(), claimed: false}
	gateway := &gatewayStub{}
	orchestrator := refund.NewOrchestrator(requests, &bookingRepoStub{}, resolverStub{}, gateway, &notifierStub{}, platformAccount)

	_, err := orchestrator.Process(context.Background(), "req-1", refund.ActionApprove, "")
	require.ErrorIs(t, err, refund.ErrNotPending)
	assert.Empty(t, gateway.refunds)
}

func TestProcessApproveGatewayFailureMarksFailed(t *testing.T) {
	requests := &requestRepoStub{stored: pendingRequest(), claimed: true}
	gateway := &gatewayStub{refundErr: errors.New("razorpay: payment already refunded (BAD_REQUEST_ERROR)")}
	orchestrator := refund.NewOrchestrator(requests, &bookingRepoStub{}, resolverStub{}, gateway, &notifierStub{}, platformAccount)

	_, err := orchestrator.Process(context.Background(), "req-1", refund.ActionApprove, "")
	require.Error(t, err)

	var gatewayErr refund.GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Contains(t, requests.failedNotes, "Refund failed")
	assert.Nil(t, requests.processed)
}
