package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/emzola/bookform/clients"
	"github.com/emzola/bookform/config"
	"github.com/emzola/bookform/handler"
	"github.com/emzola/bookform/internal/jsonlog"
	"github.com/emzola/bookform/internal/ui"
	"github.com/emzola/bookform/repository"
	"github.com/emzola/bookform/service"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	logger  *jsonlog.Logger
	service service.Service
	handler *handler.Handler
}

func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	// Initialize configuration
	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	level, err := jsonlog.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	logger = jsonlog.New(os.Stdout, level)

	app, stop, err := newApp(cfg, logger)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer stop()

	// Start HTTP server
	err = app.serve()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}

// newApp wires the application layers. stop releases the shared resources.
func newApp(cfg config.Config, logger *jsonlog.Logger) (*app, func(), error) {
	timeout, err := cfg.APITimeout()
	if err != nil {
		return nil, nil, err
	}
	renderer, err := ui.New()
	if err != nil {
		return nil, nil, err
	}

	// Per-client rate limiters, forgotten after three quiet minutes
	limiters := ttlcache.New(ttlcache.WithTTL[string, *rate.Limiter](3 * time.Minute))
	go limiters.Start()

	// Application layers
	repo, err := repository.New(clients.NewHTTPClient(timeout), cfg.API.BaseURL, logger)
	if err != nil {
		limiters.Stop()
		return nil, nil, err
	}
	service := service.New(logger, repo)
	handler := handler.New(cfg, logger, limiters, service, renderer)

	return &app{
		config:  cfg,
		logger:  logger,
		service: service,
		handler: handler,
	}, limiters.Stop, nil
}

// loadConfig layers the configuration sources: the YAML file and environment
// through config.Decode, then any command line flag that was set explicitly.
func loadConfig(args []string, output io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("bookform", flag.ContinueOnError)
	fs.SetOutput(output)

	configPath := fs.String("config", "bookform.yaml", "Path to the YAML configuration file")
	envFile := fs.String("env-file", ".env", "Path to a .env file loaded into the environment")

	var flags config.Config
	fs.IntVar(&flags.Server.Port, "port", 0, "Form server port")
	fs.StringVar(&flags.Server.Env, "env", "", "Environment(development|staging|production)")

	// Read the book API settings into the config
	fs.StringVar(&flags.API.BaseURL, "api-base-url", "", "Book API base URL")
	fs.StringVar(&flags.API.Timeout, "api-timeout", "", "Book API request timeout")

	// Read the rate limter settings into the config
	fs.Float64Var(&flags.Limiter.RPS, "limiter-rps", 0, "Rate limiter maximum requests per second")
	fs.IntVar(&flags.Limiter.Burst, "limiter-burst", 0, "Rate limiter maximum burst")
	fs.BoolVar(&flags.Limiter.Enabled, "limiter-enabled", false, "Enable rate limiter")

	// Process the -cors-trusted-origins command line flag
	fs.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(s string) error {
		flags.Cors.TrustedOrigins = strings.Fields(s)
		return nil
	})

	fs.BoolVar(&flags.Metrics.Enabled, "metrics-enabled", false, "Expose /debug/vars")
	fs.StringVar(&flags.Log.Level, "log-level", "", "Minimum log level (debug|info|error|fatal|off)")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Decode(*configPath)
	if err != nil {
		return config.Config{}, err
	}

	overrides := map[string]func(){
		"port":                 func() { cfg.Server.Port = flags.Server.Port },
		"env":                  func() { cfg.Server.Env = flags.Server.Env },
		"api-base-url":         func() { cfg.API.BaseURL = flags.API.BaseURL },
		"api-timeout":          func() { cfg.API.Timeout = flags.API.Timeout },
		"limiter-rps":          func() { cfg.Limiter.RPS = flags.Limiter.RPS },
		"limiter-burst":        func() { cfg.Limiter.Burst = flags.Limiter.Burst },
		"limiter-enabled":      func() { cfg.Limiter.Enabled = flags.Limiter.Enabled },
		"cors-trusted-origins": func() { cfg.Cors.TrustedOrigins = flags.Cors.TrustedOrigins },
		"metrics-enabled":      func() { cfg.Metrics.Enabled = flags.Metrics.Enabled },
		"log-level":            func() { cfg.Log.Level = flags.Log.Level },
	}
	fs.Visit(func(f *flag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	if fs.NArg() > 0 {
		return config.Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return cfg, nil
}
