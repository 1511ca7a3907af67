package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wanty-app/wishfeed/config"
	"github.com/wanty-app/wishfeed/internal/achievement"
	"github.com/wanty-app/wishfeed/internal/api"
	"github.com/wanty-app/wishfeed/internal/api/handler"
	"github.com/wanty-app/wishfeed/internal/cache"
	"github.com/wanty-app/wishfeed/internal/platform"
	"github.com/wanty-app/wishfeed/internal/repository"
	"github.com/wanty-app/wishfeed/internal/service"
	"github.com/wanty-app/wishfeed/pkg/database"
	"github.com/wanty-app/wishfeed/pkg/logger"
	"github.com/wanty-app/wishfeed/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Fatal("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, "wishfeed", cfg.Tracing.Endpoint)
		if err != nil {
			logger.Fatal("tracing init failed", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// the service runs degraded without the cache, keep going
		logger.Warn("redis unavailable at startup", zap.Error(err))
	}
	defer rdb.Close()

	users := repository.NewUserRepository(db)
	wishes := repository.NewWishRepository(db)
	progress := repository.NewProgressRepository(db)
	unlocks := repository.NewUnlockRepository(db)
	engagements := repository.NewEngagementRepository(db)

	cursor := cache.NewCursorStore(rdb, cfg.Feed.CursorTTL)
	aggregator := cache.NewNotificationAggregator(rdb, cfg.Feed.AggregationWindow)
	engine := achievement.NewEngine()
	feed := service.NewFeedSelector(wishes)
	messenger := platform.NewBotMessenger(cfg.Messenger.Endpoint, cfg.Messenger.Token)
	notifier := service.NewNotifier(messenger)

	coordinator := service.NewCoordinator(db, users, progress, unlocks, engagements, feed, cursor, aggregator, engine, notifier)
	wishSvc := service.NewWishService(db, users, wishes, progress, unlocks, engine)
	profileSvc := service.NewProfileService(users, progress, unlocks, engagements, engine)

	var scheduler gocron.Scheduler
	if cfg.Reminder.Enabled {
		reminder := service.NewReminder(users, progress, messenger, cfg.Reminder.Interval)
		scheduler, err = gocron.NewScheduler()
		if err != nil {
			logger.Fatal("scheduler init failed", zap.Error(err))
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Reminder.Interval),
			gocron.NewTask(func() {
				sent, err := reminder.Run(context.Background())
				if err != nil {
					logger.Warn("reminder run failed", zap.Error(err))
					return
				}
				logger.Info("reminders sent", zap.Int("count", sent))
			}),
		)
		if err != nil {
			logger.Fatal("reminder job registration failed", zap.Error(err))
		}
		scheduler.Start()
	}

	router := api.NewRouter(cfg, handler.New(coordinator, wishSvc, profileSvc))
	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown failed", zap.Error(err))
	}
	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			logger.Warn("scheduler shutdown failed", zap.Error(err))
		}
	}
}
