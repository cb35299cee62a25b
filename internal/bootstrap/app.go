package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appsvc "chatlog/internal/app"
	"chatlog/internal/cache"
	"chatlog/internal/config"
	"chatlog/internal/generate"
	"chatlog/internal/model"
	"chatlog/internal/pkg/logger"
	mysqlClient "chatlog/internal/platform/mysql"
	rabbitmqClient "chatlog/internal/platform/rabbitmq"
	redisClient "chatlog/internal/platform/redis"
	"chatlog/internal/repository"
	"chatlog/internal/worker"
)

type App struct {
	Config      *config.Config
	Log         *zap.Logger
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	EventWorker *worker.EventWorker
	Events      *repository.EventRepository

	UserService *appsvc.UserService
	ChatService *appsvc.ChatService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	mysqlDB, err := mysqlClient.Connect(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Session{}, &model.Chat{}, &model.Event{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.Connect(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	eventRepo := repository.NewEventRepository(mysqlDB)
	eventWorker := worker.NewEventWorker(mqConn, eventRepo, cfg.RabbitMQ.EventQueue, log)
	if err := eventWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start event worker failed: %w", err)
	}

	publisher := rabbitmqClient.NewEventPublisher(mqConn, cfg.RabbitMQ.EventQueue)
	treeCache := cache.NewTreeCache(
		redisCli,
		time.Duration(cfg.Redis.TreeTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.TreeDirtyTTLSeconds)*time.Second,
	)

	userRepo := repository.NewUserRepository(mysqlDB)
	sessionRepo := repository.NewSessionRepository(mysqlDB)
	chatRepo := repository.NewChatRepository(mysqlDB)

	userService := appsvc.NewUserService(
		userRepo,
		publisher,
		log,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	chatService := appsvc.NewChatService(
		userRepo,
		sessionRepo,
		chatRepo,
		newGenerator(cfg.Generator),
		publisher,
		treeCache,
		log,
	)

	return &App{
		Config:      cfg,
		Log:         log,
		MySQL:       mysqlDB,
		Redis:       redisCli,
		MQConn:      mqConn,
		EventWorker: eventWorker,
		Events:      eventRepo,
		UserService: userService,
		ChatService: chatService,
		StartedAt:   time.Now(),
	}, nil
}

func newGenerator(cfg config.GeneratorConfig) generate.AnswerGenerator {
	if cfg.Provider == "openai" {
		return generate.NewOpenAIGenerator(generate.OpenAIConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		})
	}
	return generate.NewStaticGenerator()
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return closeErr
}
