package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/todo/api/handler"
	"github.com/fastygo/todo/internal/config"
	boltInfra "github.com/fastygo/todo/internal/infrastructure/bolt"
	"github.com/fastygo/todo/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/todo/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/todo/internal/infrastructure/redis"
	"github.com/fastygo/todo/internal/infrastructure/webhook"
	"github.com/fastygo/todo/internal/middleware"
	"github.com/fastygo/todo/internal/router"
	"github.com/fastygo/todo/internal/services"
	"github.com/fastygo/todo/internal/services/lifecycle"
	"github.com/fastygo/todo/pkg/httpcontext"
	"github.com/fastygo/todo/pkg/logger"
	"github.com/fastygo/todo/pkg/sessiontoken"
	"github.com/fastygo/todo/repository"
	boltRepo "github.com/fastygo/todo/repository/bolt"
	"github.com/fastygo/todo/repository/memory"
	"github.com/fastygo/todo/repository/postgres"
	redisRepo "github.com/fastygo/todo/repository/redis"
	"github.com/fastygo/todo/usecase"
	authUC "github.com/fastygo/todo/usecase/auth"
	"github.com/fastygo/todo/usecase/notification"
	taskUC "github.com/fastygo/todo/usecase/task"
)

const sessionBucket = "sessions"

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

	mon := monitor.New(0, zapLogger)

	userRepo, taskRepo := openStorage(appCtx, cfg, manager, mon, zapLogger)
	sessionRepo := openSessions(appCtx, cfg, manager, mon, zapLogger)

	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, authUC.NewBcryptHasher(0), cfg.Session.TTL, zapLogger)
	taskUseCase := taskUC.New(taskRepo, zapLogger)

	notifier := newNotifier(cfg.Notification, zapLogger)
	var reminder *services.Reminder
	if notifier.Enabled() {
		reminder, err = services.NewReminder(taskUseCase, notifier, zapLogger, services.ReminderConfig{
			Hour:     cfg.Notification.Hour,
			Minute:   cfg.Notification.Minute,
			Location: cfg.Notification.Location,
			Timeout:  cfg.Notification.Timeout,
		})
		if err != nil {
			zapLogger.Fatal("failed to schedule reminder", zap.Error(err))
		}
		reminder.Start()
		manager.Register("reminder", func(ctx context.Context) error {
			reminder.Stop(ctx)
			return nil
		})
	} else {
		zapLogger.Info("notifications disabled")
	}

	secret := cfg.Session.Secret
	if secret == "" {
		secret = uuid.NewString()
		zapLogger.Warn("SESSION_SECRET is not set, sessions will not survive a restart")
	}
	cookie := &sessiontoken.Cookie{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		Codec:  sessiontoken.NewCodec(secret, cfg.Session.Issuer),
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	var checker apiHandler.DueChecker
	if reminder != nil {
		checker = reminder
	}
	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, cookie, ctxAdapter, zapLogger),
		Task:         apiHandler.NewTaskHandler(authUseCase, taskUseCase, ctxAdapter, zapLogger),
		Notification: apiHandler.NewNotificationHandler(notifier, checker, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	sessions := middleware.NewSessions(authUseCase, cookie, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, sessions.Require, sessions.Optional)

	server := &fasthttp.Server{
		Handler:      middleware.AccessLog(zapLogger)(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("sessions", cfg.Session.Store),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, mon *monitor.Monitor, zapLogger *zap.Logger) (repository.UserRepository, repository.TaskRepository) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		zapLogger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return store.Users(), store.Tasks()
	}

	if err := pgInfra.RunMigrations(cfg.Database, cfg.Migrations, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})
	mon.Add("postgres", pool.Ping)

	return postgres.NewUserRepository(pool), postgres.NewTaskRepository(pool)
}

func openSessions(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, mon *monitor.Monitor, zapLogger *zap.Logger) repository.SessionRepository {
	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		return memory.NewSessionRepository(cfg.Session.TTL)

	case config.SessionStoreBolt:
		if err := os.MkdirAll(filepath.Dir(cfg.Session.BoltPath), 0o755); err != nil {
			zapLogger.Fatal("failed to create session directory", zap.Error(err))
		}
		store, err := boltInfra.Open(cfg.Session.BoltPath, sessionBucket)
		if err != nil {
			zapLogger.Fatal("failed to open session store", zap.Error(err))
		}
		manager.RegisterCloser("bolt", store)
		mon.Add("bolt", func(context.Context) error { return store.Ping() })

		repo := boltRepo.NewSessionRepository(store, cfg.Session.TTL)
		sweeper, err := services.NewSessionSweeper(repo, cfg.Session.SweepEvery, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to schedule session sweeper", zap.Error(err))
		}
		sweeper.Start()
		manager.Register("session_sweeper", func(ctx context.Context) error {
			sweeper.Stop(ctx)
			return nil
		})
		return repo

	default:
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.RegisterCloser("redis", client)
		mon.Add("redis", func(ctx context.Context) error { return client.Ping(ctx).Err() })
		return redisRepo.NewSessionRepository(client, cfg.Session.TTL)
	}
}

func newNotifier(cfg config.NotificationConfig, zapLogger *zap.Logger) usecase.Notifier {
	if !cfg.Enabled {
		return notification.Nop{}
	}
	client := webhook.NewClient(cfg.WebhookURL, cfg.Timeout, "todo-notifier")
	return notification.New(client, notification.Options{
		BotName: cfg.BotName,
		Icon:    cfg.Icon,
	}, zapLogger)
}
