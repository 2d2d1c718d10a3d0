package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"menagerie/cache"
	"menagerie/config"
	"menagerie/database"
	"menagerie/events"
	"menagerie/gamedata"
	"menagerie/jobs"
	"menagerie/metrics"
	"menagerie/ratelimit"
	"menagerie/repository"
	"menagerie/rules"
	"menagerie/service"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// App holds the wired economy core
type App struct {
	DB          *database.DB
	Events      *events.Bus
	Ledger      *service.GuardedLedger
	Collections *service.CollectionService
	Scheduler   *jobs.Scheduler
	Registry    *prometheus.Registry
}

// Close releases the database pool
func (a *App) Close() {
	a.DB.Close()
}

// Build connects to the database, applies migrations and wires every
// component from cfg
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	data, err := gamedata.Load(cfg.GameDataPath)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"creatures": data.Catalog.Len(),
		"banners":   len(data.Economy.Banners),
	}).Info("Game data loaded")

	databaseURL := cfg.GetDatabaseURL()
	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, databaseURL, cfg.DatabaseMaxConn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New()
	if err := m.Register(registry); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	eventBus := events.NewBus()
	subscribeAuditLog(eventBus)
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	projections := cache.New[any](cache.Config{TTL: cfg.CacheTTL, MaxSize: cfg.CacheMaxSize})
	limiter := ratelimit.New(cfg.RateLimitCalls, cfg.RateLimitPeriod)

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ledger := service.NewLedgerService(uowFactory, data, rules.NewRandom(seed), clockwork.NewRealClock(), projections, m)

	scheduler := jobs.NewScheduler(m,
		jobs.Sweeper{Name: "rate_limiter", Interval: cfg.LimiterCleanupInterval, Sweep: limiter.Cleanup},
		jobs.Sweeper{Name: "result_cache", Interval: cfg.CacheCleanupInterval, Sweep: projections.Cleanup},
	)

	return &App{
		DB:          db,
		Events:      eventBus,
		Ledger:      service.NewGuardedLedger(ledger, limiter).WithMetrics(m),
		Collections: service.NewCollectionService(uowFactory, data, projections, m),
		Scheduler:   scheduler,
		Registry:    registry,
	}, nil
}

// Run initializes the application and blocks until ctx is cancelled
func Run(ctx context.Context) error {
	cfg := config.Get()
	setupLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting menagerie...")

	app, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Scheduler.Start(); err != nil {
		return err
	}
	defer app.Scheduler.Stop()

	g, ctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(app.Registry))
		server := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			log.WithField("addr", cfg.MetricsAddr).Info("Serving metrics")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	log.Info("Economy core is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	return g.Wait()
}

func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() || strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

// subscribeAuditLog writes every committed balance change and creature
// event to the log
func subscribeAuditLog(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		change, ok := e.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"account":   change.AccountID,
			"operation": change.Operation,
			"currency":  change.Currency,
			"old":       change.OldBalance,
			"new":       change.NewBalance,
		}).Info("Balance changed")
	})

	for _, et := range []events.EventType{
		events.EventTypeAccountCreated,
		events.EventTypeCreatureSummoned,
		events.EventTypeCreatureUpgraded,
		events.EventTypeLimitBreak,
		events.EventTypeCreaturesDissolved,
		events.EventTypeLevelUp,
	} {
		bus.Subscribe(et, func(ctx context.Context, e events.Event) {
			log.WithFields(log.Fields{
				"event": e.Type(),
				"data":  fmt.Sprintf("%+v", e),
			}).Info("Economy event")
		})
	}
}
