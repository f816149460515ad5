package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"taskhub/internal/config"
	"taskhub/internal/model"
	"taskhub/internal/platform/database"
	rabbitmqClient "taskhub/internal/platform/rabbitmq"
	redisClient "taskhub/internal/platform/redis"
)

// App holds the process-wide handles. Handlers receive it explicitly; nothing
// here is a package-level singleton.
type App struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      *redis.Client
	MQConn     *amqp.Connection
	TaskEvents *rabbitmqClient.TaskEventPublisher

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg, StartedAt: time.Now()}

	db, err := database.New(ctx, database.Options{
		Driver:        cfg.Database.Driver,
		DSN:           cfg.DatabaseDSN(),
		SlowThreshold: time.Duration(cfg.Database.SlowThresholdMS) * time.Millisecond,
		LogLevel:      cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, err
	}
	app.DB = db
	if err := model.AutoMigrate(db); err != nil {
		_ = app.Close()
		return nil, err
	}
	log.Printf("[bootstrap] %s connected", cfg.Database.Driver)

	if cfg.Redis.Enabled {
		redisCli, err := redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Redis = redisCli
		log.Printf("[bootstrap] redis connected at %s", cfg.Redis.Addr)
	}

	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.MQConn = mqConn

		publisher, err := rabbitmqClient.NewTaskEventPublisher(mqConn, cfg.RabbitMQ.TaskEventQueue)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("create task event publisher failed: %w", err)
		}
		app.TaskEvents = publisher
		log.Printf("[bootstrap] publishing task events to %s", cfg.RabbitMQ.TaskEventQueue)
	}

	return app, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis failed: %w", err))
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close rabbitmq failed: %w", err))
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database failed: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
