package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/circuit-designer/backend/internal/api"
	"github.com/circuit-designer/backend/internal/catalog"
	"github.com/circuit-designer/backend/internal/config"
	"github.com/circuit-designer/backend/internal/journal"
	"github.com/circuit-designer/backend/internal/session"
	"github.com/circuit-designer/backend/internal/web"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "CircuitDesigner",
		ReportTimestamp: true,
	})

	configPath := flag.String("config", "", "path to the XML configuration file")
	flag.Parse()

	if *configPath == "" {
		// Default to a config next to the executable
		exePath, err := os.Executable()
		if err != nil {
			logger.Fatal("failed to get executable path", "err", err)
		}
		*configPath = filepath.Join(filepath.Dir(exePath), config.FileName)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", "path", *configPath, "err", err)
	}
	if level, err := log.ParseLevel(cfg.Advanced.LogLevel); err == nil {
		log.SetLevel(level)
		logger.SetLevel(level)
	} else {
		logger.Warn("unknown log level, keeping info", "level", cfg.Advanced.LogLevel)
	}

	cat := catalog.Default()

	var recorder journal.Recorder = journal.Nop{}
	if cfg.Journal.Enabled {
		j, err := journal.Open(journal.Options{
			Threads:     cfg.Journal.Threads,
			MemoryLimit: cfg.Journal.MemoryLimit,
		}, logger.WithPrefix("Journal"))
		if err != nil {
			logger.Error("journal disabled", "err", err)
		} else {
			recorder = j
		}
	}

	sessionMgr := session.NewManager(session.Config{
		MaxSessions:      cfg.Sessions.MaxSessions,
		DefaultMode:      cfg.EditorMode(),
		DefaultPinPolicy: cfg.PinPolicy(),
		Catalog:          cat,
		Journal:          recorder,
		Logger:           logger.WithPrefix("Sessions"),
	})
	defer sessionMgr.Close()

	// Start background session cleanup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := sessionMgr.CleanupOldSessions(cfg.SessionTimeout()); n > 0 {
					logger.Info("evicted idle sessions", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	frontend, embeddedMode := web.Frontend()

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e)

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/keepalive") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Request().URL.Path, "/ws")
		},
		ErrorMessage: "Request timeout",
	}))

	if cfg.Advanced.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Advanced.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				return strings.HasSuffix(c.Request().URL.Path, "/ws")
			},
		}))
	}

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := []string{
			"http://localhost:5173", "http://127.0.0.1:5173",
			"http://localhost:3000", "http://127.0.0.1:3000",
		}
		if embeddedMode {
			origins = origins[:0]
			for _, o := range strings.Split(cfg.Server.AllowOrigins, ",") {
				if o = strings.TrimSpace(o); o != "" {
					origins = append(origins, o)
				}
			}
			if len(origins) == 0 {
				origins = []string{"*"}
			}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		SessionMgr: sessionMgr,
		Catalog:    cat,
		Logger:     logger.WithPrefix("API"),
		Version:    Version,
	}))

	if embeddedMode {
		web.RegisterStaticRoutes(e, frontend)
		logger.Info("serving embedded frontend from binary")
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	mode := "Development"
	if embeddedMode {
		mode = "Embedded frontend"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Circuit Designer Server                         ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("║  Editor:     %-45s║\n", cfg.EditorMode())
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", *configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", "err", err)
		cancel()
		sessionMgr.Close()
		os.Exit(1)
	}
}
