package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/cmd/common"
	"github.com/ducminhle1904/dca-montecarlo/internal/exchange/bybit"
	"github.com/ducminhle1904/dca-montecarlo/internal/logger"
	"github.com/ducminhle1904/dca-montecarlo/internal/monitoring"
	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/internal/notifications"
	"github.com/ducminhle1904/dca-montecarlo/internal/random"
	"github.com/ducminhle1904/dca-montecarlo/internal/recorder"
	"github.com/ducminhle1904/dca-montecarlo/internal/scheduler"
	"github.com/ducminhle1904/dca-montecarlo/pkg/config"
	"github.com/ducminhle1904/dca-montecarlo/pkg/data"
	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
	"github.com/ducminhle1904/dca-montecarlo/pkg/reporting"
)

const (
	appName = "DCA Monte Carlo"

	// healthMaxAge marks watch mode degraded when no run succeeded for this long
	healthMaxAge = 45 * 24 * time.Hour
)

var cli = common.NewLogger()

func main() {
	fs := flag.CommandLine
	flags := NewSimFlags(fs)
	usage := NewSimUsage(fs)
	fs.Usage = func() { usage.PrintUsage(os.Stderr) }
	flag.Parse()

	if common.CheckHelpAndVersion(appName, flags.Common, usage) {
		return
	}
	common.SetupLogger(cli, flags.Common)

	if err := ValidateSimFlags(flags); err != nil {
		cli.Error("%v", err)
		os.Exit(2)
	}

	printHeader()

	if err := common.NewEnvLoader(cli).LoadEnvFile(*flags.Common.EnvFile); err != nil {
		cli.Warn("Continuing with system environment")
	}

	cfg, err := loadConfig(fs, flags)
	if err != nil {
		cli.Error("%v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		cli.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func printHeader() {
	cli.Header(appName)
	cli.Debug("Version %s", common.GetFullVersion())
}

// loadConfig loads defaults, the config file and DCA_* variables, then the
// command line flags, and validates the merged result
func loadConfig(fs *flag.FlagSet, flags *SimFlags) (*config.SimulationConfig, error) {
	configFile := common.ResolvePath(*flags.ConfigFile, "configs", ".yaml")
	if configFile != "" {
		cli.Info("Loading configuration from %s", configFile)
	}

	cfg, err := config.NewSimulationConfigManager().Load(configFile)
	if err != nil {
		return nil, err
	}

	if err := ApplySimFlags(fs, flags, cfg); err != nil {
		return nil, fmt.Errorf("invalid flag: %w", err)
	}

	if err := config.NewSimulationValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// app holds the components wired from one configuration
type app struct {
	cfg       *config.SimulationConfig
	orch      *orchestrator.Orchestrator
	reports   *reporting.ReportingManager
	recorder  recorder.Recorder
	notifier  notifications.Notifier
	session   *logger.Logger
	request   orchestrator.RunRequest
	progress  *montecarlo.ProgressTracker
	startedAt time.Time
}

func run(ctx context.Context, cfg *config.SimulationConfig) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	printSetup(cfg)

	if cfg.Watch.Enabled {
		return a.watch(ctx)
	}

	result, err := a.orch.Run(ctx, a.request)
	if err != nil {
		a.session.LogError("simulation", err)
		return err
	}
	a.handleResult(result)
	return nil
}

func newApp(cfg *config.SimulationConfig) (*app, error) {
	factory := random.EntropyFactory()
	if cfg.Seed != nil {
		factory = random.SeededFactory(*cfg.Seed)
	}

	var client *bybit.Client
	source := strings.ToLower(cfg.History.Source)
	if cfg.Price <= 0 || source == data.SourceBybit {
		client = bybit.NewClient(bybit.Config{
			APIKey:    os.Getenv("BYBIT_API_KEY"),
			APISecret: os.Getenv("BYBIT_API_SECRET"),
			Category:  cfg.Category,
		})
		cli.Debug("Bybit client ready (%s, %s)", client.GetEnvironment(), client.Category())
	}

	var quotes data.QuoteProvider
	if cfg.Price > 0 {
		quotes = data.StaticQuote{Price: cfg.Price}
	} else {
		quotes = data.NewBybitQuoteProvider(client)
	}

	providerOpts := data.ProviderOptions{
		Source:   source,
		DataRoot: cfg.History.DataRoot,
		Months:   cfg.History.Months,
	}
	history, err := data.NewHistoryProvider(providerOpts, client)
	if err != nil {
		return nil, err
	}
	historySource := data.ResolveHistorySource(providerOpts, cfg.History.CSVFile, cfg.Symbol, data.NewDefaultFileLocator())
	if source == data.SourceCSV && historySource == "" {
		cli.Warn("No candle file found under %s for %s, using synthetic history", cfg.History.DataRoot, cfg.Symbol)
		history = nil
	}

	calibrator := orchestrator.NewCalibrator(quotes, history, factory, orchestrator.CalibratorOptions{
		Symbol:         cfg.Symbol,
		FallbackPrice:  cfg.FallbackPrice,
		HistorySource:  historySource,
		HistoryName:    source,
		Synthetic:      cfg.SyntheticParams,
		RefreshHistory: cfg.Watch.Enabled,
	})

	session, err := logger.NewLogger(logger.DefaultLogDir, cfg.Symbol)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		session: session,
		request: orchestrator.RunRequest{
			Symbol:            cfg.Symbol,
			MonthlyInvestment: cfg.MonthlyInvestment,
			SimulationCount:   cfg.SimulationCount,
			Seed:              cfg.Seed,
			Horizons:          cfg.HorizonsMonths,
		},
	}

	// The tracker counts a single run; watch mode only reports horizon times
	if !cfg.Watch.Enabled {
		a.progress = montecarlo.NewProgressTracker(cfg.SimulationCount * len(cfg.HorizonsMonths))
	}

	runner := orchestrator.NewRunner(factory, orchestrator.RunnerOptions{
		MonthlyInvestment: cfg.MonthlyInvestment,
		SimulationCount:   cfg.SimulationCount,
		Workers:           cfg.Workers,
		FloorPrice:        cfg.MinSimulationPrice,
		HistogramBuckets:  cfg.HistogramBuckets,
		CurrencySymbol:    cfg.CurrencySymbol,
		Progress:          a.progress,
		OnHorizon:         a.onHorizon,
	})
	a.orch = orchestrator.NewOrchestrator(calibrator, runner)

	fileOutput := !cfg.Output.ConsoleOnly
	a.reports = reporting.NewReportingManager(reporting.ReportingConfig{
		EnableConsole:   true,
		EnableFiles:     fileOutput && (cfg.Output.Excel || cfg.Output.CSV || cfg.Output.JSON),
		OutputDirectory: outputDirectory(cfg),
		ExcelEnabled:    cfg.Output.Excel,
		CSVEnabled:      cfg.Output.CSV,
		JSONEnabled:     cfg.Output.JSON,
		ShowHistogram:   true,
		CurrencySymbol:  cfg.CurrencySymbol,
	})

	a.recorder = recorder.NewNoopRecorder()
	if cfg.Recorder.Enabled {
		rec, err := recorder.NewSQLiteRecorder(cfg.Recorder.SQLitePath)
		if err != nil {
			session.Close()
			return nil, err
		}
		a.recorder = rec
		cli.Info("Recording runs to %s", cfg.Recorder.SQLitePath)
	}

	a.notifier = newNotifier(cfg)

	a.startedAt = time.Now()
	return a, nil
}

// newNotifier sends watch mode alerts to Telegram when
// TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are both set
func newNotifier(cfg *config.SimulationConfig) notifications.Notifier {
	token, chatID := os.Getenv("TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID")
	if !cfg.Watch.Enabled || token == "" || chatID == "" {
		return notifications.NoopNotifier{}
	}
	cli.Info("Telegram alerts enabled for chat %s", chatID)
	return notifications.NewTelegramNotifier(token, chatID)
}

// outputDirectory keeps the configured directory unless it is the shared
// results root, which gets a per-symbol subdirectory
func outputDirectory(cfg *config.SimulationConfig) string {
	if cfg.Output.Directory == "" || cfg.Output.Directory == config.ResultsDir {
		return reporting.DefaultOutputDir(cfg.Symbol)
	}
	return cfg.Output.Directory
}

func (a *app) onHorizon(result montecarlo.HorizonResult, duration time.Duration) {
	monitoring.RecordHorizon(a.cfg.Symbol, result, duration)

	if a.progress == nil {
		cli.Progress("%d months done in %s", result.HorizonMonths, common.FormatDuration(duration))
		return
	}
	done, total, pct, elapsed := a.progress.GetProgress()
	msg := fmt.Sprintf("%d months done in %s (%d/%d paths, %.0f%%, %s elapsed",
		result.HorizonMonths, common.FormatDuration(duration), done, total, pct, common.FormatDuration(elapsed))
	if done < total {
		msg += ", ~" + common.FormatDuration(a.progress.EstimateTimeRemaining()) + " left"
	}
	cli.Progress("%s)", msg)
}

// handleResult reports a finished run everywhere it is configured to go.
// In watch mode the scheduler records the run itself.
func (a *app) handleResult(result *orchestrator.RunResult) {
	a.session.LogRun(result)

	written, err := a.reports.ReportRun(result)
	for _, path := range written {
		cli.Success("Saved %s", path)
	}
	if err != nil {
		cli.Error("Failed to write reports: %v", err)
		a.session.LogError("reporting", err)
	}

	if a.cfg.Watch.Enabled {
		a.alert(notifications.LevelSuccess, notifications.RunSummary(result, a.cfg.CurrencySymbol))
	} else if err := a.recorder.RecordRun(result); err != nil {
		cli.Error("Failed to record run: %v", err)
		a.session.LogError("recorder", err)
	}

	cli.Info("Run %s finished in %s", result.ID, common.FormatDuration(result.Duration()))
	cli.Info("Session log: %s", a.session.GetLogPath())
}

// watch runs once immediately, then on the cron schedule until ctx ends.
// /metrics and /health are served for the whole session.
func (a *app) watch(ctx context.Context) error {
	health := monitoring.NewHealthChecker(healthMaxAge)

	sched := scheduler.NewScheduler(ctx, a.orch, a.request, a.recorder, health)
	sched.OnResult = a.handleResult
	sched.OnError = func(err error) {
		a.session.LogError("scheduled run", err)
		a.alert(notifications.LevelError, fmt.Sprintf("%s simulation failed: %v", a.cfg.Symbol, err))
	}
	if err := sched.Register(a.cfg.Watch.Cron); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/health", health)
	server := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	cli.Info("Serving /metrics and /health on %s", a.cfg.MetricsAddr)

	if _, err := sched.RunNow(); err != nil {
		cli.Error("Initial run failed: %v", err)
	}

	sched.Start()
	cli.Info("Watching on schedule %q, press Ctrl+C to stop", a.cfg.Watch.Cron)

	var err error
	select {
	case <-ctx.Done():
		cli.Info("Shutting down")
	case err = <-serverErr:
		err = fmt.Errorf("metrics server: %w", err)
	}

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

func (a *app) alert(level, message string) {
	if err := a.notifier.SendAlert(level, message); err != nil {
		cli.Warn("Failed to send alert: %v", err)
	}
}

func (a *app) close() {
	if err := a.recorder.Close(); err != nil {
		cli.Warn("Failed to close recorder: %v", err)
	}
	if err := a.session.Close(); err != nil {
		cli.Warn("Failed to close session log: %v", err)
	}
	cli.Debug("Session lasted %s", common.FormatDuration(time.Since(a.startedAt)))
}

func printSetup(cfg *config.SimulationConfig) {
	cli.Section("Setup")
	cli.Info("Symbol: %s", cfg.Symbol)
	cli.Info("Monthly investment: %s", reporting.FormatMoney(cfg.CurrencySymbol, cfg.MonthlyInvestment))
	cli.Info("Horizons: %v months", cfg.HorizonsMonths)
	cli.Info("Simulations per horizon: %d", cfg.SimulationCount)
	if cfg.Seed != nil {
		cli.Info("Seed: %d", *cfg.Seed)
	}
	if cfg.Price > 0 {
		cli.Info("Starting price: %s (override)", reporting.FormatMoney(cfg.CurrencySymbol, cfg.Price))
	}
	cli.Info("History source: %s", cfg.History.Source)
}
