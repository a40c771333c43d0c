package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/loanleads/backoffice/api/handler"
	"github.com/loanleads/backoffice/internal/cache"
	"github.com/loanleads/backoffice/internal/config"
	"github.com/loanleads/backoffice/internal/infrastructure/blob"
	"github.com/loanleads/backoffice/internal/infrastructure/monitor"
	"github.com/loanleads/backoffice/internal/infrastructure/outboundq"
	pgInfra "github.com/loanleads/backoffice/internal/infrastructure/postgres"
	"github.com/loanleads/backoffice/internal/infrastructure/rabbit"
	redisInfra "github.com/loanleads/backoffice/internal/infrastructure/redis"
	"github.com/loanleads/backoffice/internal/middleware"
	"github.com/loanleads/backoffice/internal/router"
	"github.com/loanleads/backoffice/internal/services/feed"
	"github.com/loanleads/backoffice/internal/services/lifecycle"
	"github.com/loanleads/backoffice/internal/services/outbound"
	"github.com/loanleads/backoffice/internal/services/realtime"
	"github.com/loanleads/backoffice/pkg/httpcontext"
	"github.com/loanleads/backoffice/pkg/logger"
	"github.com/loanleads/backoffice/repository/postgres"
	redisRepo "github.com/loanleads/backoffice/repository/redis"
	authUC "github.com/loanleads/backoffice/usecase/auth"
	chatUC "github.com/loanleads/backoffice/usecase/chat"
	directoryUC "github.com/loanleads/backoffice/usecase/directory"
	taskUC "github.com/loanleads/backoffice/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	queueStore, err := outboundq.Open(cfg.Gateway.QueuePath, "outbound")
	if err != nil {
		zapLogger.Fatal("failed to open outbound queue", zap.Error(err))
	}
	manager.Register("outbound_queue", func(ctx context.Context) error {
		return queueStore.Close()
	})

	mon := monitor.New(pool, redisClient, queueStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	// Change feed: every message mutation fans out on Redis pub/sub,
	// and optionally onto RabbitMQ for downstream consumers.
	feedPublisher := feed.NewRedisPublisher(redisClient, zapLogger)
	var notifier feed.Publisher = feedPublisher

	rabbitPublisher, err := rabbit.NewPublisher(rabbit.Config{
		URL:   cfg.Rabbit.URL,
		Queue: cfg.Rabbit.Queue,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("rabbitmq connection failed", zap.Error(err))
	}
	if rabbitPublisher != nil {
		notifier = feed.NewFanout(feedPublisher, zapLogger, rabbitPublisher)
		manager.Register("rabbitmq", func(ctx context.Context) error {
			return rabbitPublisher.Close()
		})
	}

	profileRepo := postgres.NewProfileRepository(pool)
	teamRepo := postgres.NewTeamRepository(pool)
	leadRepo := postgres.NewLeadRepository(pool)
	conversationRepo := postgres.NewConversationRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool, notifier, zapLogger)
	taskRepo := postgres.NewTaskRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, 24*time.Hour)

	viewCache := cache.New(cfg.Cache.TTL)
	viewStore := chatUC.NewViewStore()

	feedManager := feed.NewManager(redisClient, cfg.Feed.CountryCode, reconnectPolicy(cfg.Feed.Reconnect), zapLogger)
	projector := realtime.NewProjector(feedManager, viewStore, viewCache, zapLogger)
	if err := projector.Start(appCtx); err != nil {
		zapLogger.Fatal("feed projector failed to start", zap.Error(err))
	}
	manager.Register("feed_projector", func(ctx context.Context) error {
		projector.Stop()
		return nil
	})

	dispatcher := outbound.NewDispatcher(queueStore, outbound.Config{
		BaseURL:    cfg.Gateway.BaseURL,
		Token:      cfg.Gateway.Token,
		Timeout:    cfg.Gateway.Timeout,
		Interval:   cfg.Gateway.DrainInterval,
		BatchSize:  50,
		MaxRetries: cfg.Gateway.MaxRetries,
	}, zapLogger)
	dispatcher.Start()
	manager.Register("outbound_dispatcher", func(ctx context.Context) error {
		dispatcher.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(profileRepo, sessionRepo, cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	chatUseCase := chatUC.New(conversationRepo, messageRepo, leadRepo, viewCache, viewStore, dispatcher, cfg.Feed.CountryCode, zapLogger)
	taskUseCase := taskUC.New(taskRepo, leadRepo, zapLogger)
	directoryUseCase := directoryUC.New(profileRepo, teamRepo, leadRepo, zapLogger)

	presigner := blob.NewPresigner(blob.Config{
		Region:    cfg.Blob.Region,
		Endpoint:  cfg.Blob.Endpoint,
		AccessKey: cfg.Blob.AccessKey,
		SecretKey: cfg.Blob.SecretKey,
		Bucket:    cfg.Blob.Bucket,
		PathStyle: cfg.Blob.PathStyle,
	}, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:       apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, time.Hour),
		Chat:       apiHandler.NewChatHandler(chatUseCase, ctxAdapter, zapLogger),
		Task:       apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Directory:  apiHandler.NewDirectoryHandler(directoryUseCase, ctxAdapter, zapLogger),
		Attachment: apiHandler.NewAttachmentHandler(presigner, ctxAdapter, zapLogger),
		Webhook:    apiHandler.NewWebhookHandler(chatUseCase, cfg.Gateway.Token, ctxAdapter, zapLogger),
		Health:     apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func reconnectPolicy(name string) feed.ReconnectPolicy {
	switch name {
	case "fixed":
		return feed.ReconnectFixed
	case "backoff":
		return feed.ReconnectBackoff
	default:
		return feed.ReconnectNone
	}
}
