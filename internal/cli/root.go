// Package cli implements the focus-agent CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/rcliao/focus-agent/internal/config"
	"github.com/rcliao/focus-agent/internal/embedding"
	"github.com/rcliao/focus-agent/internal/llm"
	"github.com/rcliao/focus-agent/internal/logging"
	"github.com/rcliao/focus-agent/internal/planner"
	"github.com/rcliao/focus-agent/internal/store"
	"github.com/rcliao/focus-agent/internal/telemetry"
)

var (
	dbPath     string
	configPath string
	formatFlag string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "focus-agent",
	Short: "Daily planning assistant backed by a language model",
	Long:  "Plan the day from a task list, record what got done, and let feedback tune future plans. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $FOCUS_AGENT_DB_PATH or ~/.focus-agent/focus.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $FOCUS_AGENT_CONFIG or ~/.focus-agent/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: text or json")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

// app holds everything a command needs.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *store.SQLiteStore
	svc     *planner.Service
	metrics *telemetry.Provider
}

func openApp() *app {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		exitErr("logging", err)
	}

	emb, err := embedding.New(embedding.Config{
		Provider: cfg.Embed.Provider,
		Model:    cfg.Embed.Model,
		BaseURL:  cfg.Embed.BaseURL,
		APIKey:   cfg.Embed.APIKey,
		Dims:     cfg.Embed.Dims,
	})
	if err != nil {
		exitErr("embedder", err)
	}

	s, err := store.NewSQLiteStore(cfg.DBPath, store.WithEmbedder(emb), store.WithLogger(log))
	if err != nil {
		exitErr("open store", err)
	}

	completer, err := llm.NewCompleter(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		s.Close()
		exitErr("llm", err)
	}
	metrics := telemetry.New()
	otel.SetMeterProvider(metrics.MeterProvider())
	gw, err := llm.NewGateway(completer,
		llm.WithTimeout(cfg.LLM.Timeout),
		llm.WithRetries(cfg.LLM.MaxRetries, time.Second),
		llm.WithLogger(log),
		llm.WithMeter(metrics.Meter("focus-agent/llm")))
	if err != nil {
		s.Close()
		exitErr("llm", err)
	}
	prompts, err := llm.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		s.Close()
		exitErr("prompts", err)
	}

	svc := planner.New(s, gw, prompts, planner.Config{
		HistoryK:         cfg.History.K,
		HistoryBudget:    cfg.History.Budget,
		RecentDays:       cfg.Feedback.RecentDays,
		ReviewCandidates: cfg.Review.Candidates,
		ReviewWindowDays: cfg.Review.WindowDays,
		ReviewExact:      cfg.Review.Exact,
		Parallel:         cfg.Feedback.Parallel,
		ExportDir:        cfg.ExportDir,
	}, planner.WithLogger(log))

	return &app{cfg: cfg, log: log, store: s, svc: svc, metrics: metrics}
}

// Close reports this run's model call metrics (info with metrics: true,
// otherwise debug) and closes the store.
func (a *app) Close() {
	ctx := context.Background()
	level := zerolog.DebugLevel
	if a.cfg.Metrics {
		level = zerolog.InfoLevel
	}
	a.metrics.Log(ctx, a.log, level)
	if err := a.metrics.Shutdown(ctx); err != nil {
		a.log.Debug().Err(err).Msg("metrics shutdown")
	}
	a.store.Close()
}

// readInput joins positional args, or reads piped stdin when there are none.
func readInput(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		return string(b)
	}
	return ""
}

func jsonOutput() bool {
	return formatFlag == "json"
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
