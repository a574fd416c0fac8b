package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"food_order_chat_service/internal/chat/app"
	"food_order_chat_service/internal/chat/domain"
	"food_order_chat_service/internal/chat/repository"
	"food_order_chat_service/internal/chat/router"
	"food_order_chat_service/pkg/config"
	"food_order_chat_service/pkg/database"
	"food_order_chat_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	ctx := context.Background()

	// Mongo holds the message store
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	if err := repository.EnsureMessageIndexes(ctx, mongo.Database); err != nil {
		logger.Log.Fatal("create message indexes err", zap.Error(err))
	}

	// Postgres holds the conversation directory (gorm) and the customer
	// contact table (pgx)
	pgURI := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	gormDB, err := database.NewGormConnection(database.Connection{
		ConnectStr:    pgURI,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgres after retries", zap.Error(err))
	}
	if err := repository.AutoMigrateConversations(gormDB); err != nil {
		logger.Log.Fatal("conversation migrate err", zap.Error(err))
	}

	pgPool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    pgURI,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to create postgres pool after retries", zap.Error(err))
	}
	defer pgPool.Close()

	// Redis carries the push channels and the unread summary cache
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// Kafka feeds chat events downstream; the service runs without it
	var events repository.EventRepository
	kafkaWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: time.Duration(cfg.Kafka.RetryInterval) * time.Second,
	})
	if err != nil {
		logger.Log.Error("kafka unavailable, chat events disabled", zap.Error(err))
	} else {
		defer kafkaWriter.Close()
		events = repository.NewKafkaEventRepository(kafkaWriter)
	}

	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	convRepo := repository.NewConversationRepository(gormDB)
	customerRepo := repository.NewCustomerRepository(pgPool)
	presence := repository.NewPresenceRegistry()
	pubSub := repository.NewRedisPubSub(redisClient)
	unreadCache := database.NewRedisRepository[domain.UnreadSummary](redisClient)

	msgRouter := app.NewMessageRouter(msgRepo, convRepo, customerRepo, presence, pubSub, events)
	visibilityUC := app.NewVisibilityUseCase(msgRepo, events)
	unreadUC := app.NewUnreadUseCase(msgRepo, convRepo, unreadCache, cfg.Support.UnreadCacheTTL)
	historyUC := app.NewHistoryUseCase(msgRepo, convRepo, cfg.Support.HistoryPageSize)
	conversationUC := app.NewConversationUseCase(convRepo)

	sweeper := app.NewSweeper(msgRepo, convRepo,
		cfg.Support.ArchiveAfter, cfg.Support.Retention, cfg.Support.SweepInterval)
	sweeper.Start(ctx)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, ctx,
		app.NewChatWebsocketHandler(msgRouter, visibilityUC, unreadUC, historyUC, presence, pubSub),
		app.NewChatHTTPHandler(historyUC, unreadUC, conversationUC, presence),
	)

	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
