// Package app assembles the runtime: configuration from the
// environment, the logging router, the store and game manager, the
// persistence backend, the websocket hub and the fixed-timestep loop.
package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/diegofer25/neon-siege-sub003/internal/ascension"
	"github.com/diegofer25/neon-siege-sub003/internal/entity"
	"github.com/diegofer25/neon-siege-sub003/internal/events"
	"github.com/diegofer25/neon-siege-sub003/internal/game"
	appnet "github.com/diegofer25/neon-siege-sub003/internal/net"
	"github.com/diegofer25/neon-siege-sub003/internal/savestore"
	"github.com/diegofer25/neon-siege-sub003/internal/skills/arsenal"
	"github.com/diegofer25/neon-siege-sub003/internal/slices"
	"github.com/diegofer25/neon-siege-sub003/internal/snapshot"
	"github.com/diegofer25/neon-siege-sub003/internal/store"
	"github.com/diegofer25/neon-siege-sub003/internal/telemetry"
	"github.com/diegofer25/neon-siege-sub003/logging"
	logsinks "github.com/diegofer25/neon-siege-sub003/logging/sinks"
)

// Config is populated from the environment.
type Config struct {
	Addr      string `env:"NEON_ADDR" envDefault:":8080"`
	TickRate  int    `env:"NEON_TICK_RATE" envDefault:"60"`
	Seed      int64  `env:"NEON_SEED"`
	ClientDir string `env:"NEON_CLIENT_DIR"`

	SaveBackend   string `env:"NEON_SAVE_BACKEND" envDefault:"memory"`
	SavePath      string `env:"NEON_SAVE_PATH" envDefault:"neon-siege.db"`
	SaveKey       string `env:"NEON_SAVE_KEY" envDefault:"autosave"`
	AutosaveTicks int    `env:"NEON_AUTOSAVE_TICKS" envDefault:"1800"`

	ActionLogCap  int `env:"NEON_ACTION_LOG_CAP" envDefault:"256"`
	QueueCapacity int `env:"NEON_QUEUE_CAPACITY" envDefault:"256"`

	LogMinSeverity string   `env:"NEON_LOG_MIN_SEVERITY" envDefault:"info"`
	LogSinks       []string `env:"NEON_LOG_SINKS" envSeparator:"," envDefault:"console"`
	LogJSONPath    string   `env:"NEON_LOG_JSON_PATH" envDefault:"events.jsonl"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Run assembles everything and drives the loop until ctx is cancelled
// or the HTTP server fails.
func Run(ctx context.Context, cfg Config) error {
	logger := telemetry.WrapLogger(log.Default())
	metrics := logging.NewMetrics()
	wrappedMetrics := telemetry.WrapMetrics(metrics)

	logCfg := logging.DefaultConfig()
	if len(cfg.LogSinks) > 0 {
		logCfg.EnabledSinks = cfg.LogSinks
	}
	if severity, ok := logging.ParseSeverity(cfg.LogMinSeverity); ok {
		logCfg.MinimumSeverity = severity
	} else {
		logger.Printf("unknown NEON_LOG_MIN_SEVERITY=%q, keeping %q", cfg.LogMinSeverity, logCfg.MinimumSeverity)
	}

	sinks := []logging.NamedSink{
		{Name: "console", Sink: logsinks.NewConsoleSink(os.Stdout, logCfg.Console)},
	}
	if logCfg.HasSink("json") {
		file, err := os.OpenFile(cfg.LogJSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open json log %q: %w", cfg.LogJSONPath, err)
		}
		defer file.Close()
		sinks = append(sinks, logging.NamedSink{Name: "json", Sink: logsinks.NewJSON(file, logCfg.JSON.FlushInterval)})
	}
	router := logging.NewRouter(logging.SystemClock(), metrics, logCfg, sinks)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := router.Close(closeCtx); err != nil {
			logger.Printf("failed to close logging router: %v", err)
		}
	}()

	st := store.New(store.Deps{Logger: logger, Metrics: wrappedMetrics})
	for _, name := range slices.Names() {
		if err := st.RegisterSlice(name, store.Builder(slices.Builders()[name])); err != nil {
			return fmt.Errorf("failed to register slice %q: %w", name, err)
		}
	}
	bus := events.NewBus(logger, wrappedMetrics)
	world := entity.NewWorld()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	poolRand := rand.New(rand.NewSource(seed + 1))
	pool := ascension.NewPool(ascension.Deps{
		Logger:  logger,
		Rand:    poolRand.Float64,
		Catalog: ascension.DefaultCatalog(),
	})

	g, err := game.New(game.Deps{
		Store:        st,
		Bus:          bus,
		World:        world,
		Pool:         pool,
		Catalog:      arsenal.Catalog(),
		Logger:       logger,
		Metrics:      wrappedMetrics,
		Publisher:    router,
		Seed:         seed,
		ActionLogCap: cfg.ActionLogCap,
	})
	if err != nil {
		return fmt.Errorf("failed to build game manager: %w", err)
	}

	blob, err := openBlobStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := blob.Close(); err != nil {
			logger.Printf("failed to close save store: %v", err)
		}
	}()

	snaps, err := snapshot.NewManager(snapshot.Deps{
		Store:     st,
		Engine:    g.Engine(),
		World:     world,
		Pool:      pool,
		Blob:      blob,
		Backend:   cfg.SaveBackend,
		Logger:    logger,
		Metrics:   wrappedMetrics,
		Publisher: router,
		Tick:      g.Tick,
	})
	if err != nil {
		return fmt.Errorf("failed to build snapshot manager: %w", err)
	}

	if snap := snaps.Load(ctx, cfg.SaveKey); snap != nil {
		if payload := snaps.Restore(snap); payload != nil {
			g.ReequipFromSlices(payload.Plugins.PluginState)
			logger.Printf("restored save %q from backend %s", cfg.SaveKey, cfg.SaveBackend)
		}
	}

	hub := appnet.NewHub(g, st, appnet.HubConfig{
		QueueCapacity: cfg.QueueCapacity,
		Logger:        logger,
		Metrics:       wrappedMetrics,
		Publisher:     router,
	})
	handler := appnet.NewHTTPHandler(hub, appnet.HTTPHandlerConfig{
		ClientDir: cfg.ClientDir,
		TickRate:  cfg.TickRate,
		Logger:    logger,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()
	logger.Printf("listening on %s at %d ticks/s, saves on %s", cfg.Addr, cfg.TickRate, cfg.SaveBackend)

	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	delta := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-ctx.Done():
			hub.WithRuntime(func() {
				snaps.Save(context.Background(), cfg.SaveKey)
			})
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Printf("server shutdown: %v", err)
			}
			return nil
		case err := <-serverErr:
			return fmt.Errorf("server failed: %w", err)
		case <-ticker.C:
			hub.Frame(delta)
			frames++
			if cfg.AutosaveTicks > 0 && frames%cfg.AutosaveTicks == 0 {
				hub.WithRuntime(func() {
					snaps.Save(ctx, cfg.SaveKey)
				})
			}
		}
	}
}

func openBlobStore(cfg Config) (savestore.Store, error) {
	switch cfg.SaveBackend {
	case "", "memory":
		return savestore.NewMemory(), nil
	case "bbolt":
		blob, err := savestore.OpenBolt(cfg.SavePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open bbolt save store: %w", err)
		}
		return blob, nil
	case "sqlite":
		blob, err := savestore.OpenSQLite(cfg.SavePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite save store: %w", err)
		}
		return blob, nil
	default:
		return nil, fmt.Errorf("unknown save backend %q", cfg.SaveBackend)
	}
}
