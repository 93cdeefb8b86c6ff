package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/realmeye-identity/internal/core/port"
	"github.com/arklim/realmeye-identity/internal/infra/config"
	"github.com/arklim/realmeye-identity/internal/infra/database"
	kafkainfra "github.com/arklim/realmeye-identity/internal/infra/kafka"
	"github.com/arklim/realmeye-identity/internal/infra/logger"
	redisinfra "github.com/arklim/realmeye-identity/internal/infra/redis"
	"github.com/arklim/realmeye-identity/internal/infra/security"
	"github.com/arklim/realmeye-identity/internal/realmeye"
	postgresrepo "github.com/arklim/realmeye-identity/internal/repository/postgres"
	redisrepo "github.com/arklim/realmeye-identity/internal/repository/redis"
	"github.com/arklim/realmeye-identity/internal/transport/http/routes"
	"github.com/arklim/realmeye-identity/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	// Everything that can fail on configuration alone is built before any
	// connection is opened, so a bad setting cannot leak a pool.
	pepper, err := base64.StdEncoding.DecodeString(cfg.Password.Pepper)
	if err != nil {
		return nil, fmt.Errorf("decode password pepper: %w", err)
	}

	hasher, err := security.NewHasher(security.Argon2Config{
		Memory:      cfg.Password.Memory,
		Iterations:  cfg.Password.Iterations,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	}, pepper)
	if err != nil {
		return nil, fmt.Errorf("init hasher: %w", err)
	}

	codegen, err := security.NewCodeGenerator(cfg.Registration.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("init code generator: %w", err)
	}

	verifier := realmeye.NewVerifier(realmeye.Config{
		BaseURL:      cfg.Verifier.BaseURL,
		Timeout:      cfg.Verifier.Timeout,
		PollInterval: cfg.Verifier.PollInterval,
	}, log)

	if err := database.Migrate(ctx, cfg.Postgres, log); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	users := postgresrepo.NewUserRepository(pool)
	sessions := redisrepo.NewSessionRepository(redisClient.Client(), cfg.Redis.SessionPrefix)
	codes := redisrepo.NewAuthCodeRepository(redisClient.Client(), cfg.Redis.AuthCodePrefix)

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	closeAll := func() {
		if producer != nil {
			if err := producer.Close(); err != nil {
				log.Warn("failed to close kafka producer", zap.Error(err))
			}
		}
		_ = redisClient.Close()
		pool.Close()
	}

	service, err := usecase.NewService(cfg, users, sessions, codes, hasher, codegen, verifier, eventPublisher, log)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("init identity service: %w", err)
	}

	engine, err := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Service:  service,
		Database: pool,
		Cache:    redisClient,
	})
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("register routes: %w", err)
	}

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		// Flushes buffered lifecycle events before the process exits.
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Warn("failed to close kafka producer", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting identity API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
