package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/divinecircle/poojabook/api"
	"github.com/divinecircle/poojabook/config"
	"github.com/divinecircle/poojabook/internal/bootstrap"
	"github.com/divinecircle/poojabook/internal/cache"
	"github.com/divinecircle/poojabook/internal/fx"
	"github.com/divinecircle/poojabook/internal/gateway"
	"github.com/divinecircle/poojabook/internal/kafka"
	"github.com/divinecircle/poojabook/internal/repository"
	"github.com/divinecircle/poojabook/internal/service/booking"
	"github.com/divinecircle/poojabook/internal/service/events"
	"github.com/divinecircle/poojabook/internal/service/payment"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.AvailabilityCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	gateways, err := gateway.NewSelector(ctx, cfg.Payments)
	if err != nil {
		log.Fatalf("init payment gateways: %v", err)
	}
	converter := fx.NewHTTPConverter(cfg.Pricing.FXEndpoint)

	eventRepo := repository.NewEventRepository(pool)
	slotRepo := repository.NewSlotRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	eventService := events.NewEventService(eventRepo, redisCache)
	bookingService := booking.NewBookingService(bookingRepo, eventRepo, slotRepo)
	paymentService := payment.NewPaymentService(
		bookingService,
		bookingRepo,
		eventRepo,
		gateways,
		converter,
		cfg.Pricing,
		payment.WithCache(redisCache),
		payment.WithNotifications(producer, cfg.Kafka.NotificationsTopic),
	)

	eventHandler := api.NewEventHandler(eventService)
	bookingHandler := api.NewBookingHandler(bookingService)
	paymentHandler := api.NewPaymentHandler(paymentService)

	if err := bootstrap.Run(ctx, cfg, eventHandler, bookingHandler, paymentHandler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
