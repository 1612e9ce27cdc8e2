package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/qs-lzh/troupe/config"
	"github.com/qs-lzh/troupe/internal/app"
	"github.com/qs-lzh/troupe/internal/cache"
	"github.com/qs-lzh/troupe/internal/handler"
	"github.com/qs-lzh/troupe/internal/logging"
	"github.com/qs-lzh/troupe/internal/mq"
	"github.com/qs-lzh/troupe/internal/repository"
	"github.com/qs-lzh/troupe/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	redisCache := cache.NewRedisCache(cfg.CacheURL, cfg.CachePassword)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	err = redisCache.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	var mqConn *amqp.Connection
	if cfg.MQURL != "" {
		mqConn, err = mq.NewMQConn(cfg.MQURL)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
	}

	objects, err := newObjectStore(cfg)
	if err != nil {
		return err
	}

	application, err := app.New(cfg, db, redisCache, mqConn, objects, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer application.Close()
	if err := application.Init(); err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.NewRouter(application),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.FileStorage == "minio" {
		store, err := storage.NewMinioStore(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey,
			cfg.Minio.Bucket, cfg.Minio.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("init minio storage: %w", err)
		}
		return store, nil
	}
	store, err := storage.NewLocalStore(cfg.FileStorageDir)
	if err != nil {
		return nil, fmt.Errorf("init local storage: %w", err)
	}
	return store, nil
}
