package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/api"
	"github.com/Hekkura/LibraryAppBE/pkg/backend/elastic"
	"github.com/Hekkura/LibraryAppBE/pkg/backend/embedded"
	"github.com/Hekkura/LibraryAppBE/pkg/catalog"
	"github.com/Hekkura/LibraryAppBE/pkg/config"
	"github.com/Hekkura/LibraryAppBE/pkg/domain"
	"github.com/Hekkura/LibraryAppBE/pkg/logging"
	"github.com/Hekkura/LibraryAppBE/pkg/server"
)

// flags holds the command line overrides; empty values leave the config untouched
type flags struct {
	configPath     string
	addr           string
	backend        string
	es             string
	dataFile       string
	backgroundSave time.Duration
	logLevel       string
	showHelp       bool

	set map[string]bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*flags, error) {
	f := &flags{set: make(map[string]bool)}
	fs.StringVar(&f.configPath, "config", "", "Path to a TOML config file")
	fs.StringVar(&f.addr, "addr", "", "Listen address (e.g. :8080)")
	fs.StringVar(&f.backend, "backend", "", "Search backend: elastic or embedded")
	fs.StringVar(&f.es, "es", "", "Comma separated Elasticsearch addresses")
	fs.StringVar(&f.dataFile, "data-file", "", "Snapshot file of the embedded backend")
	fs.DurationVar(&f.backgroundSave, "background-save", 0, "Embedded backend save interval (e.g. 5m, 30s). 0 disables.")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	fs.BoolVar(&f.showHelp, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// loadConfig reads the config file when given and applies flag overrides
func loadConfig(f *flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if f.set["addr"] {
		cfg.Addr = f.addr
	}
	if f.set["backend"] {
		cfg.Backend = strings.ToLower(strings.TrimSpace(f.backend))
	}
	if f.set["es"] {
		cfg.Elastic.Addresses = nil
		for _, addr := range strings.Split(f.es, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				cfg.Elastic.Addresses = append(cfg.Elastic.Addresses, addr)
			}
		}
	}
	if f.set["data-file"] {
		cfg.Embedded.DataFile = f.dataFile
	}
	if f.set["background-save"] {
		cfg.Embedded.SaveInterval = f.backgroundSave
	}
	if f.set["log-level"] {
		cfg.LogLevel = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openBackend builds the configured backend. The returned close function
// stops the embedded workers and writes the final snapshot.
func openBackend(cfg config.Config) (domain.SearchBackend, func() error, error) {
	switch cfg.Backend {
	case config.BackendEmbedded:
		var opts []embedded.Option
		if cfg.Embedded.DataFile != "" {
			opts = append(opts, embedded.WithDataFile(cfg.Embedded.DataFile))
		}
		if cfg.Embedded.SaveInterval > 0 {
			opts = append(opts, embedded.WithBackgroundSave(cfg.Embedded.SaveInterval))
			log.Info().Dur("interval", cfg.Embedded.SaveInterval).Msg("background save enabled")
		} else {
			log.Warn().Msg("background save disabled - data only saved on graceful shutdown")
		}

		engine := embedded.NewEngine(opts...)
		if cfg.Embedded.DataFile != "" {
			log.Info().Str("file", cfg.Embedded.DataFile).Msg("loading data")
			if err := engine.LoadFromFile(cfg.Embedded.DataFile); err != nil {
				return nil, nil, fmt.Errorf("load %s: %w", cfg.Embedded.DataFile, err)
			}
		}
		engine.StartBackgroundWorkers()
		return engine, engine.Close, nil

	default:
		client, err := elastic.New(elastic.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
			Timeout:   cfg.Elastic.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, func() error { return nil }, nil
	}
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nlibraryapp manages per-application indices and per-user genres on a search backend.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -es http://localhost:9200              # Elasticsearch backend\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -backend embedded -background-save 5m  # In-process backend with snapshots\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config libraryapp.toml                # Settings from a TOML file\n", os.Args[0])
	}

	f, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if f.showHelp {
		fs.Usage()
		os.Exit(0)
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Init("libraryapp", cfg.LogLevel, cfg.LogPretty)

	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("failed to open backend")
	}

	handler := api.NewHandler(backend,
		catalog.NewLifecycle(backend, catalog.IndexScheme(cfg.Catalog.AppIndex)),
		catalog.NewLifecycle(backend, catalog.GenreScheme(cfg.Catalog.UserIndex)),
	)
	srv := server.NewServer(handler, cfg.CORSOrigins)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("backend", cfg.Backend).Msg("starting libraryapp server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := closeBackend(); err != nil {
		log.Error().Err(err).Msg("failed to close backend")
	}

	log.Info().Msg("server exited")
}
