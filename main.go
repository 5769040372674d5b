// Command seenbot is the main entrypoint for the seen bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Opens the event store (Postgres with versioned migrations, or memory).
//   - Wires the recorder and the seen command into the dispatch table.
//   - Publishes the number of stored identities on SEEN_CENSUS_SCHEDULE.
//   - Connects to Twitch chat when credentials are present.
//   - Exposes an HTTP server with /healthz, /readyz, /metrics and /seen.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/onnwee/seenbot/census"
	"github.com/onnwee/seenbot/chat"
	"github.com/onnwee/seenbot/config"
	"github.com/onnwee/seenbot/db"
	"github.com/onnwee/seenbot/dispatch"
	"github.com/onnwee/seenbot/locale"
	"github.com/onnwee/seenbot/seen"
	"github.com/onnwee/seenbot/server"
	"github.com/onnwee/seenbot/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()
	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("seenbot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()
	slog.Info("telemetry initialized", slog.Bool("tracing_enabled", telemetry.IsTracingEnabled()))

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, pinger, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", slog.Any("err", err), slog.String("backend", cfg.StoreBackend))
		os.Exit(1)
	}
	defer closeStore()

	catalog := locale.NewCatalog()
	if cfg.LocaleFile != "" {
		if catalog, err = locale.LoadFile(cfg.LocaleFile); err != nil {
			slog.Error("failed to load locale file", slog.Any("err", err), slog.String("path", cfg.LocaleFile))
			os.Exit(1)
		}
	}

	recorder := &seen.Recorder{Store: store}
	querier := &seen.Querier{Store: store, Locale: catalog}
	table := dispatch.NewTable()
	recorder.Register(table)
	querier.Register(table)

	if counter, ok := store.(seen.Counter); ok {
		job := &census.Job{Store: counter, Schedule: cfg.CensusSchedule}
		go func() {
			if err := job.Start(ctx); err != nil {
				slog.Error("census job exited with error", slog.Any("err", err))
			}
		}()
	}

	go func() {
		deps := server.Deps{Querier: querier, Pinger: pinger, Network: cfg.Network, Self: cfg.TwitchBotUsername}
		if err := server.Start(ctx, deps, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	if err := cfg.ValidateChatReady(); err != nil {
		slog.Info("chat disabled; serving HTTP only", slog.Any("reason", err))
		<-ctx.Done()
		slog.Info("shutting down")
		return
	}

	client := chat.NewClient(cfg.TwitchBotUsername, cfg.TwitchOAuthToken)
	bridge := &chat.Bridge{
		Network:  cfg.Network,
		Self:     cfg.TwitchBotUsername,
		Channels: cfg.TwitchChannels,
		Handler:  dispatch.New(table, chat.Sink{Client: client}, dispatch.Options{Prefixes: cfg.CommandPrefixes}),
	}
	slog.Info("starting chat", slog.String("network", cfg.Network), slog.Any("channels", cfg.TwitchChannels))
	if err := bridge.Run(ctx, client); err != nil {
		slog.Error("chat exited with error", slog.Any("err", err))
		stop()
		os.Exit(1)
	}
	slog.Info("shutting down")
}

// setupLogging configures the default logger. Defaults: level=info, format=text.
func setupLogging() {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		format = "text"
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", format))
}

// openStore returns the configured event store, its readiness pinger (nil
// for memory) and a close func.
func openStore(ctx context.Context, cfg *config.Config) (seen.Store, server.Pinger, func(), error) {
	if cfg.StoreBackend == config.StoreMemory {
		slog.Warn("using in-memory store; events are lost on restart", slog.String("component", "store"))
		return seen.NewMemoryStore(), nil, func() {}, nil
	}

	database, err := db.Connect(ctx, cfg.DBDsn)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}
	if err := migrate(ctx, database); err != nil {
		closeDB()
		return nil, nil, nil, err
	}
	s := db.NewSeenStore(database, cfg.StoreTimeout)
	return s, s, closeDB, nil
}

// migrate runs versioned migrations and falls back to the embedded schema
// when the migration table cannot be used.
func migrate(ctx context.Context, database *sql.DB) error {
	slog.Info("running database migrations", slog.String("component", "db_migrate"))
	if err := db.RunMigrations(database); err != nil {
		slog.Warn("versioned migrations failed, attempting fallback to embedded SQL",
			slog.Any("err", err),
			slog.String("component", "db_migrate"))
		if err := db.Migrate(ctx, database); err != nil {
			return fmt.Errorf("migrate db (both versioned and embedded SQL failed): %w", err)
		}
		slog.Info("embedded SQL migration completed", slog.String("component", "db_migrate"))
		return nil
	}
	slog.Info("versioned migrations completed successfully", slog.String("component", "db_migrate"))
	return nil
}
