package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-order-service/internal/config"
	"github.com/ariefcatur/go-order-service/internal/events"
	"github.com/ariefcatur/go-order-service/internal/httpx"
	"github.com/ariefcatur/go-order-service/internal/inventory"
	kafkax "github.com/ariefcatur/go-order-service/internal/kafka"
	"github.com/ariefcatur/go-order-service/internal/logging"
	"github.com/ariefcatur/go-order-service/internal/orders"
	"github.com/ariefcatur/go-order-service/internal/postgres"
	"github.com/ariefcatur/go-order-service/internal/redisx"
	"github.com/ariefcatur/go-order-service/internal/reservation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.ServiceName)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Inventory store
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Event bus producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, cfg.EventTopic, 1024, log)
	prod.Start(ctx)

	svc := &orders.Service{
		Checker: &inventory.Checker{
			KV:      &redisx.InventoryKV{RDB: rdb},
			Enforce: cfg.InventoryEnforce,
			Prefix:  cfg.InventoryKeyPrefix,
		},
		Store:    &orders.Repo{DB: db},
		Notifier: reservation.New(cfg.ReserveURL, log),
		Events:   &events.Publisher{Producer: prod, Source: cfg.EventSource, Log: log},
		Log:      log,
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Orders: svc}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // stop intake -> flush & close writer
	cancel()
	prod.WaitClosed() // drain
}
