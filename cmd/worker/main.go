package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/divinecircle/poojabook/config"
	"github.com/divinecircle/poojabook/internal/email"
	"github.com/divinecircle/poojabook/internal/kafka"
	"github.com/divinecircle/poojabook/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	bookingRepo := repository.NewBookingRepository(pool)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender(cfg.Email)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			if err := sender.Send(ctx, subjectFor(event), bodyFor(event)); err != nil {
				// best effort only, the confirmation is already committed
				log.Printf("send notification for booking %d: %v", event.BookingID, err)
			}
			return nil
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweep := time.Duration(cfg.Worker.CleanupSweepMinutes) * time.Minute
	if sweep <= 0 {
		sweep = time.Hour
	}
	cleanupTicker := time.NewTicker(sweep)
	defer cleanupTicker.Stop()

	retention := time.Duration(cfg.Booking.UnpaidRetentionHours) * time.Hour

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-cleanupTicker.C:
			if retention <= 0 {
				continue
			}
			purged, err := bookingRepo.PurgeUnpaidBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				log.Printf("purge unpaid bookings error: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("purged %d stale unpaid bookings", purged)
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}

func subjectFor(event kafka.BookingEvent) string {
	return "New Pooja Booking Confirmed"
}

func bodyFor(event kafka.BookingEvent) string {
	lines := []string{
		"A new booking has been completed:",
		fmt.Sprintf("Name: %s", event.Name),
		fmt.Sprintf("Email: %s", event.Email),
		fmt.Sprintf("Phone: %s", event.Phone),
		fmt.Sprintf("Pooja Type: %s", event.PoojaType),
		fmt.Sprintf("Preferred Date: %s", event.PreferredDate),
		fmt.Sprintf("Preferred Slot: %s", event.PreferredSlot),
		fmt.Sprintf("Payment Status: %s", event.PaymentStatus),
		fmt.Sprintf("Booking ID: %d", event.BookingID),
	}
	return strings.Join(lines, "\n")
}
