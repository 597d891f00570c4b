package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/resto-pos/internal/config"
	"github.com/ariefcatur/resto-pos/internal/httpx"
	"github.com/ariefcatur/resto-pos/internal/logging"
	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/ariefcatur/resto-pos/internal/realtime"
	"github.com/ariefcatur/resto-pos/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bus
	var rdb *redis.Client
	if cfg.RelayBus != realtime.BusLocal {
		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := redisx.Ping(ctx, rdb); err != nil {
			if cfg.RelayBus == realtime.BusRedis {
				log.Error("redis unavailable", "addr", cfg.RedisAddr, "err", err)
				os.Exit(1)
			}
			log.Warn("redis unavailable, kafka dedup disabled", "addr", cfg.RedisAddr, "err", err)
			rdb = nil
		}
	}
	bus := openBus(cfg, rdb, log)
	defer bus.Close()

	// Hub & handler
	hub := realtime.NewHub(realtime.WithHubLogger(log), realtime.WithAllowedOrigins(cfg.AllowedOrigins...))
	relay := realtime.NewRelay(hub, bus, cfg.ServiceName, log)
	if err := relay.Start(ctx); err != nil {
		log.Error("bus subscribe", "bus", cfg.RelayBus, "err", err)
		os.Exit(1)
	}
	router := httpx.NewRouter()
	(&httpx.RelayHandler{Relay: relay}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		log.Info("relay listening", "addr", cfg.HTTPAddr, "bus", cfg.RelayBus)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	hub.Close()
	cancel() // stop bus subscription
}

func openBus(cfg config.Config, rdb *redis.Client, log *slog.Logger) realtime.Bus {
	switch cfg.RelayBus {
	case realtime.BusRedis:
		return realtime.NewRedisBus(rdb, orders.TopicDashboardUpdated, log)
	case realtime.BusKafka:
		return realtime.NewKafkaBus(cfg.KafkaBrokers, orders.TopicDashboardUpdated, cfg.ServiceName, rdb, log)
	default:
		return realtime.NewLocalBus()
	}
}
