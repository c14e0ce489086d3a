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

	"github.com/rs/zerolog"

	"github.com/nurpe/liftcare/internal/auth"
	"github.com/nurpe/liftcare/internal/cache"
	"github.com/nurpe/liftcare/internal/config"
	"github.com/nurpe/liftcare/internal/db"
	"github.com/nurpe/liftcare/internal/excel"
	httphandler "github.com/nurpe/liftcare/internal/http"
	"github.com/nurpe/liftcare/internal/logger"
	"github.com/nurpe/liftcare/internal/notify"
	"github.com/nurpe/liftcare/internal/pdf"
	"github.com/nurpe/liftcare/internal/repository"
	"github.com/nurpe/liftcare/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	partRepo := repository.NewSparePartRepository(database)
	userRepo := repository.NewUserRepository(database)
	customerRepo := repository.NewCustomerRepository(database)
	buildingRepo := repository.NewBuildingRepository(database)
	elevatorRepo := repository.NewElevatorRepository(database)
	maintenanceRepo := repository.NewMaintenanceRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)
	activityRepo := repository.NewActivityRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)

	reportCache, closeCache := newCache(cfg, log)
	defer closeCache()
	publisher, closePublisher := newPublisher(cfg, log)
	defer closePublisher()

	activity := service.NewActivityService(activityRepo, log)
	notifications := service.NewNotificationService(notificationRepo, publisher, log)
	contracts := service.NewContractService(contractRepo, activity, cfg.Reports.ExpiringWindowDays)
	inventory := service.NewInventoryService(partRepo, activity)
	users := service.NewUserService(userRepo, activity)
	customers := service.NewCustomerService(customerRepo, activity)
	facilities := service.NewFacilityService(buildingRepo, elevatorRepo, activity)
	maintenance := service.NewMaintenanceService(maintenanceRepo, buildingRepo, elevatorRepo, userRepo, notifications, activity, log)
	reports := service.NewReportService(
		maintenanceRepo, paymentRepo, contractRepo, elevatorRepo,
		reportCache, cfg.Cache.TTL,
		excel.NewGenerator(), pdf.NewGenerator(),
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	sessions := auth.NewSessions(tokenParser)
	authService := service.NewAuthService(userRepo, auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL), sessions, activity)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dashboard := service.NewDashboardService(ctx, service.DashboardDeps{
		Contracts:    contracts,
		Inventory:    inventory,
		Activity:     activity,
		Reports:      reports,
		Maintenance:  maintenance,
		Facilities:   facilities,
		ContractRepo: contractRepo,
		CustomerRepo: customerRepo,
		ElevatorRepo: elevatorRepo,
		TaskRepo:     maintenanceRepo,
		UserRepo:     userRepo,
	}, log)

	handler := httphandler.NewHandler(httphandler.Services{
		Auth:          authService,
		Contracts:     contracts,
		Inventory:     inventory,
		Users:         users,
		Customers:     customers,
		Facilities:    facilities,
		Maintenance:   maintenance,
		Notifications: notifications,
		Activity:      activity,
		Reports:       reports,
		Dashboard:     dashboard,
	}, log)
	router := httphandler.NewRouter(handler, authService, cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("starting liftcare service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	notifications.Flush()
}

// newCache uses Redis when REDIS_URL is set and falls back to no caching.
func newCache(cfg *config.Config, log zerolog.Logger) (cache.Cache, func()) {
	if cfg.Cache.RedisURL == "" {
		return cache.Noop{}, func() {}
	}
	redisCache, err := cache.NewRedis(cfg.Cache.RedisURL, "liftcare:")
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, report caching disabled")
		return cache.Noop{}, func() {}
	}
	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis")
		}
	}
}

// newPublisher uses MQTT when a broker is configured and drops messages otherwise.
func newPublisher(cfg *config.Config, log zerolog.Logger) (notify.Publisher, func()) {
	if cfg.MQTT.BrokerURL == "" {
		return notify.Noop{}, func() {}
	}
	client, err := notify.NewMQTT(notify.MQTTConfig{
		BrokerURL: cfg.MQTT.BrokerURL,
		ClientID:  cfg.MQTT.ClientID,
		Username:  cfg.MQTT.Username,
		Password:  cfg.MQTT.Password,
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("mqtt unavailable, push notifications disabled")
		return notify.Noop{}, func() {}
	}
	return client, client.Close
}
