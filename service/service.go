package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"settlements/account"
	"settlements/clients"
	"settlements/config"
	"settlements/http"
	"settlements/message"
	"settlements/notification"
	"settlements/payout"
	"settlements/postgres"
	"settlements/refund"
)

type Service struct {
	forwarder  *message.Forwarder
	msgRouter  *message.Router
	httpRouter *echo.Echo
	httpAddr   string
}

func New(
	logger watermill.LoggerAdapter,
	cfg config.Config,
	redisClient *redis.Client,
	db *sqlx.DB,
) (*Service, error) {
	razorpay := clients.NewRazorpay(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	fcm := clients.NewFCM(cfg.FCMServerKey)
	mailer := clients.NewMailer(cfg.Mail.APIKey, map[string]clients.SenderProfile{
		clients.ProfileCustomer: {Name: cfg.Mail.CustomerSender.Name, Email: cfg.Mail.CustomerSender.Email},
		clients.ProfileOwner:    {Name: cfg.Mail.OwnerSender.Name, Email: cfg.Mail.OwnerSender.Email},
	})

	bookingRepo := postgres.NewBookingRepo(db)
	theatreRepo := postgres.NewTheatreRepo(db)
	userRepo := postgres.NewUserRepo(db)
	settlementRepo := postgres.NewSettlementRepo(db)
	splitOrderRepo := postgres.NewSplitOrderRepo(db)
	refundRequestRepo := postgres.NewRefundRequestRepo(db)
	supportTicketRepo := postgres.NewSupportTicketRepo(db)

	resolver := account.NewResolver(theatreRepo, userRepo)
	notifier := notification.NewGateway(userRepo, fcm, cfg.AdminUserID)

	payoutOrchestrator := payout.NewOrchestrator(bookingRepo, settlementRepo, resolver, razorpay)
	refundOrchestrator := refund.NewOrchestrator(refundRequestRepo, bookingRepo, resolver, razorpay, notifier, cfg.Razorpay.PlatformAccountID)

	forwarder, err := message.NewForwarder(db, redisClient, logger)
	if err != nil {
		return nil, fmt.Errorf("creating forwarder: %w", err)
	}

	msgRouter, err := message.NewRouter(message.RouterDeps{
		Logger:        logger,
		Notifier:      notifier,
		PayoutHandler: payoutOrchestrator,
		RedisClient:   redisClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating message router: %w", err)
	}

	publisher, err := message.NewPublisher(redisClient, logger)
	if err != nil {
		return nil, fmt.Errorf("creating publisher: %w", err)
	}

	httpRouter := http.NewRouter(http.RouterDeps{
		Bookings:  bookingRepo,
		Theatres:  theatreRepo,
		Orders:    splitOrderRepo,
		Tickets:   supportTicketRepo,
		Users:     userRepo,
		Gateway:   razorpay,
		Refunds:   refundOrchestrator,
		Publisher: publisher,
		Mailer:    mailer,
	})

	return &Service{
		forwarder:  forwarder,
		msgRouter:  msgRouter,
		httpRouter: httpRouter,
		httpAddr:   cfg.HTTPAddr,
	}, nil
}

func (s Service) Run(ctx context.Context) error {
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.forwarder.Run(runCtx); err != nil {
			return fmt.Errorf("running forwarder: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		if err := s.msgRouter.Run(runCtx); err != nil {
			return fmt.Errorf("running messaging router: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		// Wait for message router
		<-s.msgRouter.Running()

		logrus.Info("Starting HTTP server...")
		err := s.httpRouter.Start(s.httpAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logrus.Info("Shutting down HTTP server...")
		if err := s.httpRouter.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("waiting for shutdown: %w", err)
	}
	logrus.Info("Shutdown complete.")

	return nil
}
