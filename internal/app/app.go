package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"TripIdeas/internal/config"
	"TripIdeas/internal/enrich"
	"TripIdeas/internal/infrastructure/analytics"
	"TripIdeas/internal/infrastructure/imagegen"
	"TripIdeas/internal/infrastructure/llm"
	"TripIdeas/internal/infrastructure/lock"
	"TripIdeas/internal/infrastructure/objectstore"
	"TripIdeas/internal/infrastructure/queue"
	"TripIdeas/internal/infrastructure/scheduler"
	"TripIdeas/internal/infrastructure/stock"
	"TripIdeas/internal/infrastructure/storage"
	"TripIdeas/internal/infrastructure/telegram"
	"TripIdeas/internal/logging"
	"TripIdeas/internal/palette"
	"TripIdeas/internal/ports"
	"TripIdeas/internal/provider"
	"TripIdeas/internal/query"
	"TripIdeas/internal/ranker"
	"TripIdeas/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	db          *sql.DB
	redis       *redis.Client
	server      *asynq.Server
	handler     *queue.Handler
	dispatcher  *usecase.Dispatcher
	scheduler   *usecase.Scheduler

	Repository *storage.Repository
	Enricher   *usecase.Enricher
	Ideas      *usecase.Ideas
	GroupFit   *usecase.GroupFit
}

// New connects the record store and builds every component. With no Redis
// address, enrichment runs in-process through the dispatcher.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	dialect := storage.Dialect(cfg.Database.Dialect)
	db, err := storage.Open(dialect, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.Repository = storage.NewRepository(db, dialect)
	if err := a.Repository.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	synth, rules, err := loadTables(cfg.Tables)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var locker ports.Locker
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		locker = lock.NewRedisLocker(a.redis, "")
	}

	var mirror ports.ObjectStore
	if cfg.Minio.Endpoint != "" {
		store, err := objectstore.New(cfg.Minio)
		if err != nil {
			return nil, a.closeWith(err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			baseLogger.Warn("object store unavailable, generated images will not be mirrored", "error", err)
		} else {
			mirror = store
		}
	}

	var generator ports.ImageGenerator
	if cfg.Providers.ImageGen.APIKey != "" {
		generator = imagegen.NewClient(cfg.Providers.ImageGen)
	}

	var textBackend ports.TextGenerator
	if cfg.ChatGPT.APIKey != "" {
		textBackend = llm.NewChatGPTClient(cfg.ChatGPT)
	}

	chain := provider.NewChain(
		provider.NewPlaceholder(cfg.Providers.Placeholder, synth),
		cfg.Providers.AttemptTimeout,
		baseLogger.With("component", "provider.chain"),
		provider.NewGenerative(generator, mirror, "", baseLogger.With("component", "provider.generative")),
		provider.NewStock(
			stock.NewUnsplashClient(cfg.Providers.Stock),
			ranker.New(cfg.Ranker),
			synth,
			provider.StockConfig{
				Label:       "stock:unsplash",
				Candidates:  cfg.Providers.Stock.Candidates,
				Orientation: cfg.Providers.Stock.Orientation,
			},
			baseLogger.With("component", "provider.stock"),
		),
	)

	sinks := []ports.EventSink{}
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		tg := cfg.Notifications.Telegram
		sinks = append(sinks, telegram.NewNotifier(tg.APIBase, tg.BotToken, tg.ChatID))
	}
	if cfg.Notifications.Analytics {
		sinks = append(sinks, analytics.NewLogSink(baseLogger.With("component", "analytics")))
	}
	events := usecase.NewBroadcaster(baseLogger.With("component", "events"), sinks...)

	a.Enricher = usecase.NewEnricher(usecase.EnricherDeps{
		Repository: a.Repository,
		Images:     chain,
		Palette:    palette.New(nil, cfg.Palette, baseLogger.With("component", "palette")),
		Summarizer: enrich.NewSummarizer(textBackend, nil, baseLogger.With("component", "enrich.summary")),
		Tagger:     enrich.NewTagger(textBackend, rules, baseLogger.With("component", "enrich.tags")),
		Locker:     locker,
		LockTTL:    cfg.Queue.LockTTL,
		Events:     events,
		Logger:     baseLogger.With("component", "enricher"),
	})

	var submitter ports.EnrichmentQueue
	if a.redis != nil {
		// Both share a.redis, which closeWith releases; asynq refuses to close them itself.
		submitter = queue.NewClient(
			asynq.NewClientFromRedisClient(a.redis),
			asynq.NewInspectorFromRedisClient(a.redis),
			queue.TaskOptions{
				Queue:    cfg.Queue.Name,
				MaxRetry: cfg.Queue.MaxRetry,
				Timeout:  cfg.Queue.TaskTimeout,
			},
		)
		a.handler = queue.NewHandler(a.Enricher, baseLogger.With("component", "queue.handler"))
		a.server = queue.NewServer(
			asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
			queue.ServerConfig{Concurrency: cfg.Queue.Concurrency, Queue: cfg.Queue.Name},
			baseLogger.With("component", "queue.server"),
		)
	} else {
		a.dispatcher = usecase.NewDispatcher(a.Enricher, usecase.DispatcherConfig{
			Workers: cfg.Queue.Concurrency,
			Timeout: cfg.Queue.TaskTimeout,
		}, baseLogger.With("component", "dispatcher"))
		submitter = a.dispatcher
	}

	a.Ideas = usecase.NewIdeas(a.Repository, submitter, events, baseLogger.With("component", "ideas"))
	a.GroupFit = usecase.NewGroupFit(a.Repository)

	sweeper := usecase.NewRetrySweeper(a.Repository, submitter, usecase.SweeperConfig{
		StaleAfter: cfg.Sweeper.StaleAfter,
		BatchSize:  cfg.Sweeper.BatchSize,
	}, baseLogger.With("component", "sweeper"))
	a.scheduler = usecase.NewScheduler(scheduler.NewTicker(cfg.Sweeper.Interval), sweeper, baseLogger.With("component", "scheduler"))

	return a, nil
}

func loadTables(cfg config.TablesConfig) (*query.Synthesizer, []enrich.Rule, error) {
	table := query.DefaultTable()
	if cfg.QueryTable != "" {
		f, err := os.Open(cfg.QueryTable)
		if err != nil {
			return nil, nil, fmt.Errorf("open query table: %w", err)
		}
		defer f.Close()
		if table, err = query.LoadTable(f); err != nil {
			return nil, nil, err
		}
	}

	var rules []enrich.Rule
	if cfg.TagRules != "" {
		f, err := os.Open(cfg.TagRules)
		if err != nil {
			return nil, nil, fmt.Errorf("open tag rules: %w", err)
		}
		defer f.Close()
		if rules, err = enrich.LoadRules(f); err != nil {
			return nil, nil, err
		}
	}

	return query.NewSynthesizer(table, nil), rules, nil
}

// Run starts the sweeper and, when Redis is configured, the task server, then
// blocks until ctx is cancelled and shuts everything down.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return a.closeWith(fmt.Errorf("start sweeper: %w", err))
	}

	if a.server != nil {
		mux := asynq.NewServeMux()
		queue.Register(mux, a.handler)
		if err := a.server.Start(mux); err != nil {
			return a.closeWith(fmt.Errorf("start task server: %w", err))
		}
	}

	a.logger.Info("tripideas running", "queue", a.server != nil)
	<-ctx.Done()
	a.logger.Info("shutting down")
	return a.closeWith(nil)
}

func (a *Application) closeWith(cause error) error {
	grace := a.cfg.Queue.TaskTimeout
	if grace <= 0 {
		grace = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	errs := []error{cause}
	if a.scheduler != nil {
		errs = append(errs, a.scheduler.Stop(ctx))
	}
	if a.server != nil {
		a.server.Shutdown()
	}
	if a.dispatcher != nil {
		errs = append(errs, a.dispatcher.Close(ctx))
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
