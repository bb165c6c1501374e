package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/gymvisits/config"
	"github.com/Domenick1991/gymvisits/internal/bootstrap"
	"github.com/Domenick1991/gymvisits/internal/cache"
	"github.com/Domenick1991/gymvisits/internal/kafka"
	"github.com/Domenick1991/gymvisits/internal/repository"
	"github.com/Domenick1991/gymvisits/internal/service/admission"
	"github.com/Domenick1991/gymvisits/internal/service/branches"
	"github.com/Domenick1991/gymvisits/internal/service/reviews"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "gymvisits").Logger()

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

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Booking.SubscriptionsCacheTTL)*time.Second,
		time.Duration(cfg.Booking.ScheduleCacheTTL)*time.Second,
	)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	branchRepo := repository.NewBranchRepository(pool)
	walletRepo := repository.NewWalletRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)

	admissionService := admission.NewAdmissionService(
		bookingRepo,
		subscriptionRepo,
		branchRepo,
		redisCache,
		producer,
		cfg.Kafka.VisitsTopic,
		log,
		admission.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	reviewService := reviews.NewReviewService(bookingRepo, reviewRepo, producer, cfg.Kafka.VisitsTopic, log)
	branchService := branches.NewBranchService(branchRepo, redisCache)

	if err := bootstrap.Run(ctx, cfg, log, admissionService, reviewService, branchService, walletRepo); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
