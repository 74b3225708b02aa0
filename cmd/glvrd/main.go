package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JohnPlummer/glvrd-client/glvrd"
)

var (
	flagApp         string
	flagBaseURL     string
	flagLogLevel    string
	flagMetricsAddr string
	flagProduction  bool
)

var rootCmd = &cobra.Command{
	Use:               "glvrd",
	Short:             "Proofread Russian text with the Glavred API",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagApp, "app", "", "application identifier (env GLVRD_APP)")
	pf.StringVar(&flagBaseURL, "base-url", "", "API root (env GLVRD_BASE_URL)")
	pf.StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error (env GLVRD_LOG_LEVEL)")
	pf.StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	pf.BoolVar(&flagProduction, "production", false, "enable retry and circuit breaker")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	// Best-effort: load .env from current directory
	_ = godotenv.Load()

	level := parseLevel(envOr(flagLogLevel, "GLVRD_LOG_LEVEL", "warn"))
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	if flagMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", glvrd.GetMetricsHandler())
		go func() {
			err := http.ListenAndServe(flagMetricsAddr, mux)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server stopped", "addr", flagMetricsAddr, "error", err)
			}
		}()
		slog.Info("metrics server started", "addr", flagMetricsAddr)
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// envOr returns the flag value, then the environment variable, then def
func envOr(flagValue, key, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// loadConfig builds the client config from flags and environment
func loadConfig() glvrd.Config {
	app := envOr(flagApp, "GLVRD_APP", "")

	cfg := glvrd.NewDefaultConfig(app)
	if flagProduction {
		cfg = glvrd.NewProductionConfig(app)
	}
	cfg = cfg.
		WithBaseURL(envOr(flagBaseURL, "GLVRD_BASE_URL", glvrd.DefaultBaseURL)).
		WithSingleFlightRenewal()
	if flagMetricsAddr != "" {
		cfg = cfg.WithMetrics()
	}
	return cfg
}

func newClient() (*glvrd.Client, error) {
	client, err := glvrd.New(loadConfig())
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}
