package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/gymvisits/config"
	"github.com/Domenick1991/gymvisits/internal/email"
	"github.com/Domenick1991/gymvisits/internal/kafka"
	"github.com/Domenick1991/gymvisits/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// The worker owns the booking status transitions the admission engine only
// reads: it sweeps stale CONFIRMED bookings into NO_SHOW and delivers
// notification emails for published visit events.
func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "gymvisits-worker").Logger()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	emailSender := email.NewSender(log)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Consume(ctx, emailSender.Send)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Duration(cfg.Worker.NoShowSweepMinutes) * time.Minute)
		defer ticker.Stop()

		grace := time.Duration(cfg.Worker.NoShowAfterHours) * time.Hour
		for {
			select {
			case <-ticker.C:
				marked, err := bookingRepo.MarkNoShowBefore(ctx, time.Now().Add(-grace))
				if err != nil {
					log.Error().Err(err).Msg("no-show sweep")
					continue
				}
				for _, b := range marked {
					event := kafka.VisitEvent{
						Type:        kafka.EventVisitNoShow,
						BookingID:   b.ID.String(),
						UserID:      b.UserID.String(),
						BranchID:    b.BranchID,
						ScheduledAt: b.ScheduledAt,
						PaymentMode: string(b.PaymentMode),
						Status:      string(b.Status),
					}
					if err := producer.Publish(ctx, cfg.Kafka.NotificationsTopic, event.BookingID, event); err != nil {
						log.Warn().Err(err).Str("booking_id", event.BookingID).Msg("publish visit_no_show event")
					}
				}
				if len(marked) > 0 {
					log.Info().Int("count", len(marked)).Msg("marked no-show bookings")
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
	log.Info().Msg("worker shut down")
}
