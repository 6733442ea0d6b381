package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v3"
	"github.com/shopspring/decimal"

	"settlements/account"
	"settlements/clients"
	"settlements/entity"
	"settlements/event"
	"settlements/refund"
	"settlements/settlement"
)

type BookingRepo interface {
	Add(ctx context.Context, booking entity.Booking) error
}

type TheatreRepo interface {
	Add(ctx context.Context, theatre entity.Theatre) error
	SetStatus(ctx context.Context, theatreID, status, rejectionReason string) (entity.Theatre, error)
}

type SplitOrderRepo interface {
	Add(ctx context.Context, order entity.SplitOrder) error
}

type SupportTicketRepo interface {
	Get(ctx context.Context, ticketID string) (entity.SupportTicket, error)
}

type UserRepo interface {
	Get(ctx context.Context, userID string) (entity.User, error)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, req clients.CreateOrderRequest) (string, error)
}

type RefundService interface {
	CreateRequest(ctx context.Context, req entity.RefundRequest) (entity.RefundRequest, error)
	Process(ctx context.Context, requestID, action, adminNotes string) (entity.RefundRequest, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

type MailSender interface {
	Send(ctx context.Context, profile, toEmail, toName, subject, htmlContent string) error
}

type handler struct {
	bookings  BookingRepo
	theatres  TheatreRepo
	orders    SplitOrderRepo
	tickets   SupportTicketRepo
	users     UserRepo
	gateway   OrderCreator
	refunds   RefundService
	publisher EventPublisher
	mailer    MailSender
}

type bookingRequest struct {
	BookingID             string          `json:"bookingId"`
	PaymentMethod         string          `json:"paymentMethod"`
	Status                string          `json:"status"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	ActualTicketPrice     decimal.Decimal `json:"actualTicketPrice"`
	TheatreID             string          `json:"theatreId"`
	OwnerID               string          `json:"ownerId"`
	RazorpayPaymentID     string          `json:"razorpayPaymentId"`
	TheatreOwnerAccountID string          `json:"theatreOwnerAccountId"`
}

func (h handler) PostBooking(c echo.Context) error {
	var request bookingRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", err)
	}

	if request.BookingID == "" {
		request.BookingID = shortuuid.New()
	}
	if request.PaymentMethod == "" {
		request.PaymentMethod = entity.PaymentMethodOnline
	}
	if request.Status == "" {
		request.Status = entity.BookingStatusConfirmed
	}
	if err := settlement.ValidatePositive(request.TotalAmount); err != nil {
		return badRequest("totalAmount must be a positive amount", err)
	}

	booking := entity.Booking{
		ID:                    request.BookingID,
		PaymentMethod:         request.PaymentMethod,
		Status:                request.Status,
		TotalAmount:           request.TotalAmount,
		ActualTicketPrice:     request.ActualTicketPrice,
		TheatreID:             request.TheatreID,
		OwnerID:               request.OwnerID,
		RazorpayPaymentID:     request.RazorpayPaymentID,
		TheatreOwnerAccountID: request.TheatreOwnerAccountID,
	}
	if err := h.bookings.Add(c.Request().Context(), booking); err != nil {
		return internal(fmt.Errorf("adding booking: %w", err))
	}

	return c.JSON(http.StatusCreated, map[string]string{"bookingId": booking.ID})
}

type theatreRequest struct {
	TheatreID string `json:"theatreId"`
	OwnerID   string `json:"ownerId"`
	Name      string `json:"name"`
}

func (h handler) PostTheatre(c echo.Context) error {
	var request theatreRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", err)
	}

	if request.Name == "" || request.OwnerID == "" {
		return badRequest("name and ownerId are required", nil)
	}
	if request.TheatreID == "" {
		request.TheatreID = shortuuid.New()
	}

	theatre := entity.Theatre{
		ID:      request.TheatreID,
		OwnerID: request.OwnerID,
		Name:    request.Name,
		Status:  entity.TheatreStatusNotVerified,
	}
	if err := h.theatres.Add(c.Request().Context(), theatre); err != nil {
		return internal(fmt.Errorf("adding theatre: %w", err))
	}

	return c.JSON(http.StatusCreated, map[string]string{"theatreId": theatre.ID})
}

type theatreVerificationRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

func (h handler) PostTheatreVerification(c echo.Context) error {
	var request theatreVerificationRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", err)
	}

	var status string
	switch request.Action {
	case "approve":
		status = entity.TheatreStatusVerified
		request.Reason = ""
	case "reject":
		status = entity.TheatreStatusDisapproved
	default:
		return badRequest(fmt.Sprintf("unknown action %q", request.Action), nil)
	}

	theatre, err := h.theatres.SetStatus(c.Request().Context(), c.Param("id"), status, request.Reason)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("theatre not found", err)
	}
	if err != nil {
		return internal(fmt.Errorf("setting theatre status: %w", err))
	}

	return c.JSON(http.StatusOK, map[string]string{
		"theatreId": theatre.ID,
		"status":    theatre.Status,
	})
}

type verificationRequest struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

func (h handler) PostVerification(c echo.Context) error {
	var request verificationRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", err)
	}

	if request.UserID == "" {
		return badRequest("userId is required", nil)
	}

	e := event.NewVerificationSubmitted(shortuuid.New(), request.UserID, request.UserName, request.UserEmail)
	if err := h.publisher.Publish(c.Request().Context(), e); err != nil {
		return internal(fmt.Errorf("publishing verification submitted event: %w", err))
	}

	return c.NoContent(http.StatusAccepted)
}

type orderRequest struct {
	BookingID         string          `json:"bookingId"`
	TheatreID         string          `json:"theatreId"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	ActualTicketPrice decimal.Decimal `json:"actualTicketPrice"`
	OwnerAccountID    string          `json:"ownerAccountId"`
	Currency          string          `json:"currency"`
}

type orderResponse struct {
	OrderID           string          `json:"orderId"`
	OwnerShare        decimal.Decimal `json:"ownerShare"`
	PlatformProfit    decimal.Decimal `json:"platformProfit"`
	ActualTicketPrice decimal.Decimal `json:"actualTicketPrice"`
	Amount            decimal.Decimal `json:"amount"`
}

// PostOrder creates a payment order whose captured amount is split at capture
// time, so the owner's share never passes through the platform balance.
func (h handler) PostOrder(c echo.Context) error {
	var request orderRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", err)
	}

	if request.BookingID == "" || request.OwnerAccountID == "" {
		return badRequest("bookingId and ownerAccountId are required", nil)
	}
	if err := settlement.ValidatePositive(request.TotalAmount); err != nil {
		return badRequest("totalAmount must be a positive amount", err)
	}
	if err := settlement.ValidatePositive(request.ActualTicketPrice); err != nil {
		return badRequest("actualTicketPrice must be a positive amount", err)
	}
	if !account.IsConnectedAccountID(request.OwnerAccountID) {
		return failedPrecondition("ownerAccountId is not a valid Razorpay connected account ID", nil)
	}
	if request.Currency == "" {
		request.Currency = settlement.Currency
	}

	ownerShare, err := settlement.OwnerShare(request.ActualTicketPrice)
	if err != nil {
		return badRequest("actualTicketPrice must be a positive amount", err)
	}
	platformProfit := settlement.PlatformProfit(request.TotalAmount, ownerShare)

	orderID, err := h.gateway.CreateOrder(c.Request().Context(), clients.CreateOrderRequest{
		Amount:   settlement.MinorUnits(request.TotalAmount),
		Currency: request.Currency,
		Transfers: []clients.OrderTransfer{{
			Account:  request.OwnerAccountID,
			Amount:   settlement.MinorUnits(ownerShare),
			Currency: request.Currency,
			Notes: map[string]string{
				"purpose":    "Theatre owner share of ticket price",
				"booking_id": request.BookingID,
			},
		}},
		Notes: map[string]string{
			"booking_id": request.BookingID,
			"theatre_id": request.TheatreID,
		},
	})
	if err != nil {
		return internal(fmt.Errorf("creating order: %w", err))
	}

	order := entity.SplitOrder{
		OrderID:           orderID,
		BookingID:         request.BookingID,
		TheatreID:         request.TheatreID,
		TotalPaid:         request.TotalAmount,
		ActualTicketPrice: request.ActualTicketPrice,
		OwnerShare:        ownerShare,
		PlatformProfit:    platformProfit,
		OwnerAccountID:    request.OwnerAccountID,
	}
	if err := h.orders.Add(c.Request().Context(), order); err != nil {
		return internal(fmt.Errorf("adding split order: %w", err))
	}

	return c.JSON(http.StatusOK, orderResponse{
		OrderID:           orderID,
		OwnerShare:        ownerShare,
		PlatformProfit:    platformProfit,
		ActualTicketPrice: request.ActualTicketPrice,
		Amount:            request.TotalAmount,
	})
}

type refundRequestBody struct {
	BookingID         string          `json:"bookingId"`
	UserID            string          `json:"userId"`
	TheatreID         string          `json:"theatreId"`
	Amount            decimal.Decimal `json:"amount"`
	ActualTicketPrice decimal.Decimal `json:"actualTicketPrice"`
	PaymentID         string          `json:"paymentId"`
	Reason            string          `json:"reason"`
	ShowDate          string          `json:"showDate"`
	MovieTitle        string          `json:"movieTitle"`
	TheatreName       string          `json:"theatreName"`
	SelectedSeats     []string        `json:"selectedSeats"`
}

func (h handler) PostRefundRequest(c echo.Context) error {
	var request refundRequestBody
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", err)
	}

	created, err := h.refunds.CreateRequest(c.Request().Context(), entity.RefundRequest{
		BookingID:         request.BookingID,
		UserID:            request.UserID,
		TheatreID:         request.TheatreID,
		Amount:            request.Amount,
		ActualTicketPrice: request.ActualTicketPrice,
		PaymentID:         request.PaymentID,
		Reason:            request.Reason,
		ShowDate:          request.ShowDate,
		MovieTitle:        request.MovieTitle,
		TheatreName:       request.TheatreName,
		SelectedSeats:     request.SelectedSeats,
	})
	if errors.Is(err, refund.ErrInvalidArgument) {
		return badRequest(err.Error(), err)
	}
	if err != nil {
		return internal(fmt.Errorf("creating refund request: %w", err))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":         true,
		"refundRequestId": created.ID,
		"message":         "Refund request submitted successfully",
	})
}

type processRefundRequest struct {
	Action     string `json:"action"`
	AdminNotes string `json:"adminNotes"`
}

type processRefundResponse struct {
	Success         bool                    `json:"success"`
	RefundRequestID string                  `json:"refundRequestId"`
	Status          string                  `json:"status"`
	RefundID        string                  `json:"refundId,omitempty"`
	RefundStatus    string                  `json:"refundStatus,omitempty"`
	RefundBreakdown *entity.RefundBreakdown `json:"refundBreakdown,omitempty"`
}

func (h handler) PostProcessRefundRequest(c echo.Context) error {
	var request processRefundRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", err)
	}

	processed, err := h.refunds.Process(c.Request().Context(), c.Param("id"), request.Action, request.AdminNotes)
	switch {
	case errors.Is(err, refund.ErrInvalidArgument):
		return badRequest(err.Error(), err)
	case errors.Is(err, refund.ErrNotFound):
		return notFound("refund request not found", err)
	case errors.Is(err, refund.ErrNotPending):
		return failedPrecondition("refund request has already been processed", err)
	case err != nil:
		return internal(fmt.Errorf("processing refund request: %w", err))
	}

	return c.JSON(http.StatusOK, processRefundResponse{
		Success:         true,
		RefundRequestID: processed.ID,
		Status:          processed.Status,
		RefundID:        processed.RefundID,
		RefundStatus:    processed.RefundStatus,
		RefundBreakdown: processed.Breakdown,
	})
}

type confirmationEmailRequest struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	BookingID   string   `json:"bookingId"`
	MovieTitle  string   `json:"movieTitle"`
	TheatreName string   `json:"theatreName"`
	ShowDate    string   `json:"showDate"`
	Seats       []string `json:"seats"`
	Amount      string   `json:"amount"`
}

func (h handler) PostBookingConfirmationEmail(c echo.Context) error {
	var request confirmationEmailRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", err)
	}

	if !strings.Contains(request.Email, "@") {
		return badRequest("a valid recipient email is required", nil)
	}
	if request.BookingID == "" {
		return badRequest("bookingId is required", nil)
	}

	content, err := renderBookingConfirmation(bookingConfirmationData{
		Name:        request.Name,
		MovieTitle:  request.MovieTitle,
		TheatreName: request.TheatreName,
		ShowDate:    request.ShowDate,
		Seats:       strings.Join(request.Seats, ", "),
		Amount:      request.Amount,
		BookingID:   request.BookingID,
	})
	if err != nil {
		return internal(err)
	}

	subject := fmt.Sprintf("Booking Confirmed - %s", request.MovieTitle)
	if err := h.mailer.Send(c.Request().Context(), clients.ProfileCustomer, request.Email, request.Name, subject, content); err != nil {
		return internal(fmt.Errorf("sending confirmation email: %w", err))
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

type supportAckRequest struct {
	AdminResponse string `json:"adminResponse"`
}

func (h handler) PostSupportTicketAck(c echo.Context) error {
	var request supportAckRequest
	if err := c.Bind(&request); err != nil {
		return badRequest("failed to parse request", err)
	}

	ticket, err := h.tickets.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("support ticket not found", err)
	}
	if err != nil {
		return internal(fmt.Errorf("getting support ticket: %w", err))
	}

	profile := clients.ProfileCustomer
	toEmail := ticket.UserEmail
	toName := ""
	if user, err := h.users.Get(c.Request().Context(), ticket.UserID); err == nil {
		toName = user.Name
		if toEmail == "" {
			toEmail = user.Email
		}
		if user.UserType == entity.UserTypeOwner {
			profile = clients.ProfileOwner
		}
	}

	if !strings.Contains(toEmail, "@") {
		return failedPrecondition("support ticket has no valid contact email", nil)
	}

	content, err := renderSupportAck(supportAckData{
		Name:          toName,
		TicketID:      ticket.ID,
		Subject:       ticket.Subject,
		AdminResponse: request.AdminResponse,
	})
	if err != nil {
		return internal(err)
	}

	subject := fmt.Sprintf("We received your support request %s", ticket.ID)
	if err := h.mailer.Send(c.Request().Context(), profile, toEmail, toName, subject, content); err != nil {
		return internal(fmt.Errorf("sending acknowledgement email: %w", err))
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func badRequest(message string, err error) *echo.HTTPError {
	return &echo.HTTPError{
		Code:     http.StatusBadRequest,
		Message:  message,
		Internal: err,
	}
}

func notFound(message string, err error) *echo.HTTPError {
	return &echo.HTTPError{
		Code:     http.StatusNotFound,
		Message:  message,
		Internal: err,
	}
}

func failedPrecondition(message string, err error) *echo.HTTPError {
	return &echo.HTTPError{
		Code:     http.StatusPreconditionFailed,
		Message:  message,
		Internal: err,
	}
}

func internal(err error) *echo.HTTPError {
	return &echo.HTTPError{
		Code:     http.StatusInternalServerError,
		Message:  http.StatusText(http.StatusInternalServerError),
		Internal: err,
	}
}
