package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fallvision-alarm/internal/cache"
	"fallvision-alarm/internal/config"
	"fallvision-alarm/internal/httpapi"
	"fallvision-alarm/internal/ledger"
	"fallvision-alarm/internal/logger"
	"fallvision-alarm/internal/models"
	"fallvision-alarm/internal/notifier"
	"fallvision-alarm/internal/risk"
	"fallvision-alarm/internal/service"
	"fallvision-alarm/internal/threshold"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "fallvision-alarm")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	store, cleanup, err := buildStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to create ledger store", zap.Error(err))
	}
	defer cleanup()

	guardianNotifier, err := buildNotifier(cfg, log)
	if err != nil {
		log.Fatal("Failed to create notifier", zap.Error(err))
	}

	notificationLedger := ledger.New(store, guardianNotifier, log)

	var statusCache *cache.StatusCache
	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis", zap.Error(err))
		}
		defer redisClient.Close()

		statusCache = cache.NewStatusCache(
			redisClient,
			cfg.Cache.KeyPrefix,
			cfg.Cache.KeySuffix,
			time.Duration(cfg.Cache.TTLSeconds)*time.Second,
			log,
		)
	}

	checker := threshold.NewChecker(models.DefaultBaseline(), log)
	scorer := risk.NewScorer(checker, log)
	monitorService := service.NewMonitorService(checker, scorer, notificationLedger, statusCache, log)

	router := httpapi.NewRouter(log)
	router.RegisterMonitorRoutes(httpapi.NewMonitorHandler(monitorService, log))

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErrChan:
		log.Fatal("HTTP server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down HTTP server", zap.Error(err))
	}

	log.Info("Alarm service stopped")
}

// buildStore selects the ledger persistence backend.
func buildStore(cfg *config.Config, log *zap.Logger) (ledger.Store, func(), error) {
	switch cfg.Ledger.Backend {
	case "", "file":
		return ledger.NewFileStore(cfg.Ledger.Path), func() {}, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close database", zap.Error(err))
			}
		}
		return ledger.NewPostgresStore(db, log), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger backend: %s", cfg.Ledger.Backend)
	}
}

// buildNotifier selects the guardian notification transport.
func buildNotifier(cfg *config.Config, log *zap.Logger) (notifier.Notifier, error) {
	switch cfg.Notifier.Backend {
	case "", "log":
		return notifier.NewLogNotifier(log), nil
	case "mqtt":
		return notifier.NewMQTTNotifier(notifier.MQTTOptions{
			Broker:      cfg.Notifier.Broker,
			ClientID:    cfg.Notifier.ClientID,
			Username:    cfg.Notifier.Username,
			Password:    cfg.Notifier.Password,
			TopicPrefix: cfg.Notifier.TopicPrefix,
			QoS:         byte(cfg.Notifier.QoS),
		}, log)
	default:
		return nil, fmt.Errorf("unknown notifier backend: %s", cfg.Notifier.Backend)
	}
}
