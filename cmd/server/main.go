package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"klondike-go/internal/config"
	"klondike-go/internal/database"
	"klondike-go/internal/handlers"
	"klondike-go/internal/logging"
	"klondike-go/internal/middleware"
	"klondike-go/internal/solitaire"
	"klondike-go/internal/tracing"
	"klondike-go/pkg/websocket"
)

const serviceName = "klondike"

// CLI flags override the matching environment variables.
type CLI struct {
	Addr         string `help:"Listen address (overrides BACKEND_ADDR/PORT)."`
	DB           string `name:"db" help:"SQLite database path (overrides DATABASE_PATH)."`
	LogLevel     string `help:"Log level: debug, info, warn, error (overrides LOG_LEVEL)."`
	Seed         *int64 `help:"Deterministic deal seed (overrides DEAL_SEED)."`
	PrettyTraces bool   `help:"Pretty-print spans when exporting to stdout."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("klondike-server"),
		kong.Description("Klondike solitaire game server"),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(cli.Run())
}

func (c *CLI) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName: serviceName,
		Environment: cfg.AppEnv,
		Exporter:    cfg.TracesExporter,
		PrettyPrint: c.PrettyTraces,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", "err", err)
		}
	}()

	db, err := database.OpenAndMigrate(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("db open/migrate: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("db close failed", "err", err)
		}
	}()

	clock := quartz.NewReal()
	hubRef := websocket.NewHubRef(websocket.NewHub(logger, clock))

	if cfg.DealSeed != 0 {
		logger.Info("using deterministic deal seed", "seed", cfg.DealSeed)
	}
	deps := &handlers.Deps{
		DB:     db,
		Config: cfg,
		Logger: logger,
		Clock:  clock,
		Dealer: solitaire.NewDealer(cfg.DealSeed),
		Hub:    hubRef.Get,
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg))
	handlers.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return superviseHub(gctx, hubRef, logger, clock)
	})
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Parse(nil)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.DB != "" {
		cfg.DatabasePath = c.DB
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.Seed != nil {
		cfg.DealSeed = *c.Seed
	}
	if err := cfg.Normalize(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// superviseHub runs the current hub until ctx ends. A panicking hub is
// replaced with a fresh one so the HTTP server keeps serving.
func superviseHub(ctx context.Context, ref *websocket.HubRef, logger *log.Logger, clock quartz.Clock) error {
	for {
		hub, ok := ref.Get()
		if !ok {
			hub = websocket.NewHub(logger, clock)
			ref.Set(hub)
		}

		panicked := false
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					panicked = true
					logger.Error("hub panic", "panic", r, "stack", string(debug.Stack()))
				}
			}()
			return hub.Run(ctx)
		}()
		if !panicked {
			return err
		}

		ref.Set(websocket.NewHub(logger, clock))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}
