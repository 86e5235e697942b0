package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adnavarro/rouletbot/config"
	"github.com/adnavarro/rouletbot/internal/adapters/feed"
	"github.com/adnavarro/rouletbot/internal/adapters/notify"
	"github.com/adnavarro/rouletbot/internal/adapters/storage"
	"github.com/adnavarro/rouletbot/internal/analyzer"
	"github.com/adnavarro/rouletbot/internal/application/session"
	"github.com/adnavarro/rouletbot/internal/backtest"
	"github.com/adnavarro/rouletbot/internal/domain"
	"github.com/adnavarro/rouletbot/internal/risk"
	"github.com/adnavarro/rouletbot/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	analyze := flag.Bool("analyze", false, "run detectors over stored history and exit")
	runBT := flag.Bool("backtest", false, "compare all strategies over stored history and exit")
	export := flag.String("export", "", "with -backtest: write results JSON to this path")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full signal table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if err := domain.ValidateWheelLayout(); err != nil {
		slog.Error("inconsistent wheel tables", "err", err)
		os.Exit(1)
	}

	slog.Info("rouletbot starting",
		"config", *configPath,
		"strategy", cfg.Session.Strategy,
		"analyze", *analyze,
		"backtest", *runBT,
	)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	notifier := notify.NewConsole(*table || *analyze || *runBT)
	an := analyzer.New(cfg.AnalyzerOptions())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *analyze:
		runAnalyze(ctx, cfg, store, notifier, an)
	case *runBT:
		runBacktest(ctx, cfg, store, notifier, an, *export)
	default:
		runSession(ctx, cfg, store, notifier, an)
	}
}

// runAnalyze ejecuta los detectores sobre el histórico almacenado.
func runAnalyze(ctx context.Context, cfg *config.Config, store *storage.SQLiteStorage, notifier *notify.Console, an *analyzer.Analyzer) {
	history, err := store.GetRecent(ctx, cfg.Session.HistorySize)
	if err != nil {
		slog.Error("failed to load history", "err", err)
		os.Exit(1)
	}

	signals := an.AnalyzeAll(history)
	if err := notifier.Notify(ctx, signals); err != nil {
		slog.Warn("notifier error", "err", err)
	}
	notifier.PrintStats(an.ComprehensiveStats(history))

	slog.Info("analysis complete", "records", len(history), "signals", len(signals))
}

// runBacktest compara todas las estrategias registradas sobre el histórico.
func runBacktest(ctx context.Context, cfg *config.Config, store *storage.SQLiteStorage, notifier *notify.Console, an *analyzer.Analyzer, export string) {
	history, err := store.GetRecent(ctx, cfg.Session.HistorySize)
	if err != nil {
		slog.Error("failed to load history", "err", err)
		os.Exit(1)
	}
	if len(history) < 2 {
		slog.Warn("not enough stored history to backtest", "records", len(history))
		return
	}

	engine := backtest.NewEngine(cfg.Backtest.InitialCapital)
	results := engine.Compare(allStrategies(an), history, backtest.Options{
		BetAmount: cfg.Backtest.BetAmount,
		MaxBets:   cfg.Backtest.MaxBets,
	})

	notifier.PrintBacktestComparison(results)

	if export != "" || len(results) > 0 {
		path, err := engine.Export(export)
		if err != nil {
			slog.Error("export failed", "err", err)
			os.Exit(1)
		}
		slog.Info("backtest complete", "strategies", len(results), "export", path)
	}
}

// runSession arranca la sesión en vivo leyendo giros de stdin.
func runSession(ctx context.Context, cfg *config.Config, store *storage.SQLiteStorage, notifier *notify.Console, an *analyzer.Analyzer) {
	riskMgr, err := risk.NewManager(cfg.Risk)
	if err != nil {
		slog.Error("invalid risk parameters", "err", err)
		os.Exit(1)
	}

	registry := strategy.NewRegistry()
	for _, s := range allStrategies(an) {
		registry.Register(s)
	}
	strat, ok := registry.Get(cfg.Session.Strategy)
	if !ok {
		slog.Error("unknown strategy", "name", cfg.Session.Strategy, "available", registry.Names())
		os.Exit(1)
	}

	engine := session.New(
		feed.NewStdin(os.Stdin),
		store,
		notifier,
		an,
		strat,
		riskMgr,
		session.Config{
			HistorySize:    cfg.Session.HistorySize,
			NotifyCooldown: cfg.NotifyCooldown(),
			BaseBet:        cfg.Session.BaseBet,
			StrategyRisk:   cfg.Session.StrategyRisk,
		},
	)

	if err := engine.Run(ctx); err != nil {
		slog.Error("session exited with error", "err", err)
		os.Exit(1)
	}

	notifier.PrintRiskSummary(riskMgr.GetRiskMetrics(), riskMgr.GetDailySummary())
	slog.Info("rouletbot stopped cleanly")
}

// allStrategies construye las estrategias disponibles para comparar.
func allStrategies(an *analyzer.Analyzer) []strategy.Strategy {
	streak := strategy.NewStreakBreak(strategy.StreakBreakConfig{})
	freq := strategy.NewFrequencyDeviation(strategy.FrequencyDeviationConfig{})
	trend := strategy.NewTrendFollow(an)
	hybrid := strategy.NewHybrid(0).
		Add(streak, 1.0).
		Add(freq, 1.0).
		Add(trend, 1.5)
	return []strategy.Strategy{streak, freq, trend, hybrid}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
