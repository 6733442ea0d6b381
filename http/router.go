package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

var ErrServerClosed = http.ErrServerClosed

type RouterDeps struct {
	Bookings  BookingRepo
	Theatres  TheatreRepo
	Orders    SplitOrderRepo
	Tickets   SupportTicketRepo
	Users     UserRepo
	Gateway   OrderCreator
	Refunds   RefundService
	Publisher EventPublisher
	Mailer    MailSender
}

func NewRouter(deps RouterDeps) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true

	server.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	handler := handler{
		bookings:  deps.Bookings,
		theatres:  deps.Theatres,
		orders:    deps.Orders,
		tickets:   deps.Tickets,
		users:     deps.Users,
		gateway:   deps.Gateway,
		refunds:   deps.Refunds,
		publisher: deps.Publisher,
		mailer:    deps.Mailer,
	}

	server.POST("/bookings", handler.PostBooking)
	server.POST("/bookings/confirmation-email", handler.PostBookingConfirmationEmail)
	server.POST("/orders", handler.PostOrder)
	server.POST("/refund-requests", handler.PostRefundRequest)
	server.POST("/refund-requests/:id/process", handler.PostProcessRefundRequest)
	server.POST("/theatres", handler.PostTheatre)
	server.POST("/theatres/:id/verification", handler.PostTheatreVerification)
	server.POST("/verifications", handler.PostVerification)
	server.POST("/support-tickets/:id/ack", handler.PostSupportTicketAck)

	return server
}
