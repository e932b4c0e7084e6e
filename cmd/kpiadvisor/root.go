package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amishk599/kpiadvisor/internal/ai"
	"github.com/amishk599/kpiadvisor/internal/config"
	"github.com/amishk599/kpiadvisor/internal/memory"
	"github.com/amishk599/kpiadvisor/internal/metrics"
	"github.com/amishk599/kpiadvisor/internal/model"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "kpiadvisor",
	Short:        "KPI assistant: practical advice from your business metrics",
	Long:         "kpiadvisor sends your question, company context and KPI snapshot to an LLM and prints actionable advice.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: KPIADVISOR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > KPIADVISOR_CONFIG env var > "./config.yaml".
// Only the implicit default may be missing, in which case defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if env := os.Getenv("KPIADVISOR_CONFIG"); env != "" {
		return config.Load(env)
	}
	return config.LoadOrDefault("config.yaml")
}

// setupLogger logs to stderr; stdout carries the advice itself.
func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// setupRecorder returns a Prometheus recorder served on metrics.listen_addr,
// or a NopRecorder when no address is configured. The listener is bound
// before returning so an unusable address fails the command.
func setupRecorder(cfg *config.Config, logger *slog.Logger) (metrics.Recorder, error) {
	if cfg.Metrics.ListenAddr == "" {
		return metrics.NopRecorder{}, nil
	}
	rec, err := metrics.NewPrometheusRecorder()
	if err != nil {
		return nil, fmt.Errorf("create metrics recorder: %w", err)
	}
	addr, err := serveMetrics(cfg.Metrics.ListenAddr, rec.Handler(), logger)
	if err != nil {
		return nil, err
	}
	logger.Info("serving metrics", "addr", addr.String())
	return rec, nil
}

// serveMetrics binds addr and serves handler on /metrics in the background.
// It returns the bound address.
func serveMetrics(addr string, handler http.Handler, logger *slog.Logger) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", ln.Addr().String(), "error", err)
		}
	}()
	return ln.Addr(), nil
}

// openMemory opens the configured conversation store.
func openMemory(cfg *config.Config, logger *slog.Logger) (model.ConversationStore, func() error, error) {
	store, closeFn, err := memory.Open(cfg.Memory)
	if err != nil {
		return nil, nil, fmt.Errorf("open memory: %w", err)
	}
	logger.Debug("memory opened", "backend", cfg.Memory.Backend, "session", cfg.Memory.Session)
	return store, closeFn, nil
}

// setupAdvisor wires generator, memory and recorder into a KPIAdvisor. The
// returned func closes the memory store.
func setupAdvisor(cfg *config.Config, logger *slog.Logger, recorder metrics.Recorder) (*ai.KPIAdvisor, func() error, error) {
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	generator, err := ai.NewOpenAIGenerator(cfg.AI, httpClient)
	if err != nil {
		return nil, nil, err
	}

	store, closeFn, err := openMemory(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("advisor configured",
		"model", cfg.AI.Model,
		"temperature", cfg.AI.Temperature,
		"memory", cfg.Memory.Backend,
	)
	advisor := ai.NewKPIAdvisor(generator, store, recorder, logger)
	return advisor, closeFn, nil
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
