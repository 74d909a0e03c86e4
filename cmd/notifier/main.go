package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rightwater/orderdesk/internal/config"
	kafkax "github.com/rightwater/orderdesk/internal/kafka"
	"github.com/rightwater/orderdesk/internal/notify"
	"github.com/rightwater/orderdesk/internal/orders"
	"github.com/rightwater/orderdesk/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.MailAPIURL == "" {
		log.Fatal("MAIL_API_URL is required")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	h := &notify.Handler{
		Mailer:           &notify.HTTPMailer{BaseURL: cfg.MailAPIURL, APIKey: cfg.MailAPIKey},
		Redis:            rdb,
		Log:              logger,
		StoreName:        cfg.StoreName,
		MerchantEmail:    cfg.MerchantEmail,
		CustomerTemplate: cfg.MailTemplateCustomer,
		MerchantTemplate: cfg.MailTemplateMerchant,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup,
		orders.TopicOrderPlaced, cfg.NotifierWorkers, logger)

	go func() {
		logger.Info("notifier consumer started",
			zap.String("group", cfg.NotifierGroup),
			zap.String("topic", orders.TopicOrderPlaced),
			zap.Int("workers", cfg.NotifierWorkers))
		if err := cons.Start(ctx, h.HandleOrderPlaced); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down notifier")
	cancel()
}
