package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rightwater/orderdesk/internal/admin"
	"github.com/rightwater/orderdesk/internal/auth"
	"github.com/rightwater/orderdesk/internal/cart"
	"github.com/rightwater/orderdesk/internal/checkout"
	"github.com/rightwater/orderdesk/internal/config"
	"github.com/rightwater/orderdesk/internal/httpx"
	kafkax "github.com/rightwater/orderdesk/internal/kafka"
	"github.com/rightwater/orderdesk/internal/livefeed"
	"github.com/rightwater/orderdesk/internal/orders"
	"github.com/rightwater/orderdesk/internal/postgres"
	"github.com/rightwater/orderdesk/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024, logger)
	prod.Start(ctx)

	repo := &orders.Repo{DB: db}
	feed := &livefeed.Feed{RDB: rdb, Log: logger}
	carts := &cart.Store{RDB: rdb}

	svc := checkout.NewService(repo, repo, prod, feed, carts, logger,
		cfg.ShippingFeeCents, cfg.ServiceName)
	console := &admin.Console{Store: repo, Feed: feed, Log: logger}

	router := httpx.NewRouter()
	authmw := auth.Middleware([]byte(cfg.JWTSecret))

	sh := &httpx.StorefrontHandler{Checkout: svc, Cart: carts, Log: logger}
	router.Group(func(r chi.Router) {
		r.Use(authmw)
		sh.Register(r)
	})

	ah := &httpx.AdminHandler{Console: console, Feed: feed, Log: logger}
	router.Route("/admin", func(r chi.Router) {
		r.Use(authmw, auth.RequireAdmin)
		ah.Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	cancel()
	prod.WaitClosed()
}
