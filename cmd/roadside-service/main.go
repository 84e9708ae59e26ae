package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roadside-service/internal/auth"
	"roadside-service/internal/client"
	"roadside-service/internal/config"
	"roadside-service/internal/db"
	httphandler "roadside-service/internal/http"
	"roadside-service/internal/http/middleware"
	"roadside-service/internal/logger"
	"roadside-service/internal/mailer"
	"roadside-service/internal/realtime"
	"roadside-service/internal/repository"
	"roadside-service/internal/service"
	"roadside-service/internal/tracking"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	requestRepo := repository.NewServiceRequestRepository(database)
	userRepo := repository.NewUserRepository(database)
	profileRepo := repository.NewProfileRepository(database)
	transactionRepo := repository.NewTransactionRepository(database)
	ratingRepo := repository.NewRatingRepository(database)
	pingRepo := repository.NewLocationPingRepository(database)
	partnershipRepo := repository.NewPartnershipRepository(database)
	contactRepo := repository.NewContactMessageRepository(database)
	contentRepo := repository.NewContentRepository(database)

	feed := realtime.NewFeed(appLogger)

	var notifier tracking.Notifier = tracking.NopNotifier{}
	if cfg.Push.ServiceURL != "" {
		notifier = client.NewPushClient(cfg)
	} else {
		appLogger.Warn().Msg("PUSH_SERVICE_URL not set, alerts are only streamed")
	}
	mail := mailer.New(cfg.SMTP, appLogger)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	tokenIssuer := auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL)
	revocations := auth.NewRevocations()

	requestService := service.NewRequestService(requestRepo, feed, appLogger)
	availabilityService := service.NewAvailabilityService(requestRepo, profileRepo, pingRepo, feed, cfg.Dispatch.LocationBuffer, appLogger)
	authService := service.NewAuthService(userRepo, availabilityService, tokenIssuer, revocations, appLogger)

	handler := httphandler.NewHandler(httphandler.Services{
		Auth:         authService,
		Requests:     requestService,
		Assignments:  service.NewAssignmentService(requestRepo, userRepo, profileRepo, feed, cfg.Dispatch.RequireAvailableProvider, appLogger),
		Payments:     service.NewPaymentService(requestRepo, transactionRepo, feed, cfg.Payment, appLogger),
		Ratings:      service.NewRatingService(requestRepo, ratingRepo, feed, appLogger),
		Availability: availabilityService,
		Tracking:     service.NewTrackingService(requestService, feed, notifier, appLogger),
		ChangeFeed:   service.NewChangeFeed(feed),
		Partnerships: service.NewPartnershipService(partnershipRepo, authService, mail, appLogger),
		Contact:      service.NewContactService(contactRepo, mail, appLogger),
		Content:      service.NewContentService(contentRepo),
		Dashboard:    service.NewDashboardService(requestRepo, transactionRepo),
	}, appLogger)

	authenticator := middleware.NewAuthenticator(tokenParser, revocations)
	router := httphandler.NewRouter(handler, authenticator, cfg.Environment, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info().Str("addr", addr).Msg("starting roadside service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	appLogger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("http shutdown")
	}
	availabilityService.Shutdown()
	if err := feed.Close(); err != nil {
		appLogger.Error().Err(err).Msg("close change feed")
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
