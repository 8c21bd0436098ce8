package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/ducminhle1904/dca-montecarlo/cmd/common"
	"github.com/ducminhle1904/dca-montecarlo/pkg/config"
	"github.com/ducminhle1904/dca-montecarlo/pkg/data"
)

// SimFlags contains all flags for the Monte Carlo command
type SimFlags struct {
	// Common flags
	Common *common.CommonFlags

	// Configuration
	ConfigFile *string

	// Simulation parameters
	Amount      *float64
	Horizons    *string
	Simulations *int
	Seed        *string
	Workers     *int

	// Market data
	Symbol   *string
	Price    *float64
	Source   *string
	DataFile *string
	Months   *int

	// Output
	OutputDir *string
	Excel     *bool
	CSV       *bool
	JSON      *bool

	// Recording and watch mode
	Record      *bool
	Watch       *bool
	Cron        *string
	MetricsAddr *string
}

// NewSimFlags registers all Monte Carlo flags on fs
func NewSimFlags(fs *flag.FlagSet) *SimFlags {
	return &SimFlags{
		Common: common.RegisterCommonFlags(fs),

		ConfigFile: fs.String("config", "", "Configuration file (YAML or JSON), bare names are looked up in configs/"),

		Amount:      fs.Float64("amount", 0, "Monthly investment amount"),
		Horizons:    fs.String("horizons", "", "Comma separated horizons in months (e.g. 36,60,120)"),
		Simulations: fs.Int("simulations", 0, "Simulations per horizon"),
		Seed:        fs.String("seed", "", "Random seed for reproducible runs"),
		Workers:     fs.Int("workers", 0, "Parallel workers (0 = all CPUs)"),

		Symbol:   fs.String("symbol", "", "Trading symbol (e.g. BTCUSDT)"),
		Price:    fs.Float64("price", 0, "Starting price override (skips the live quote)"),
		Source:   fs.String("source", "", "Calibration history: synthetic, csv or bybit"),
		DataFile: fs.String("data-file", "", "CSV candle file for the csv source"),
		Months:   fs.Int("months", 0, "History length in months"),

		OutputDir: fs.String("output", "", "Output directory for reports"),
		Excel:     fs.Bool("excel", false, "Write the Excel workbook"),
		CSV:       fs.Bool("csv", false, "Write CSV reports"),
		JSON:      fs.Bool("json", false, "Write the JSON report"),

		Record:      fs.Bool("record", false, "Record runs to SQLite"),
		Watch:       fs.Bool("watch", false, "Re-run on a cron schedule and serve /metrics and /health"),
		Cron:        fs.String("cron", "", "Cron schedule for watch mode (with seconds field)"),
		MetricsAddr: fs.String("metrics-addr", "", "Listen address for /metrics and /health in watch mode"),
	}
}

// ValidateSimFlags checks flag values that can be judged without a config
func ValidateSimFlags(flags *SimFlags) error {
	validator := common.NewFlagValidator()

	if *flags.Amount < 0 {
		validator.AddError(fmt.Sprintf("amount must be positive, got: %.2f", *flags.Amount))
	}
	if *flags.Simulations != 0 {
		validator.ValidateInt("simulations", *flags.Simulations, config.MinSimulationCount, config.MaxSimulationCount)
	}
	if *flags.Workers < 0 {
		validator.AddError(fmt.Sprintf("workers must be non-negative, got: %d", *flags.Workers))
	}
	if *flags.Price < 0 {
		validator.AddError(fmt.Sprintf("price must be non-negative, got: %.2f", *flags.Price))
	}
	if *flags.Months != 0 {
		validator.ValidateInt("months", *flags.Months, 2, config.MaxBybitMonths)
	}
	if *flags.Source != "" {
		validator.ValidateChoice("source", *flags.Source, []string{data.SourceSynthetic, data.SourceCSV, data.SourceBybit})
	}
	if *flags.Horizons != "" {
		if _, err := config.ParseHorizons(*flags.Horizons); err != nil {
			validator.AddError(err.Error())
		}
	}
	if *flags.Seed != "" {
		if _, err := strconv.ParseUint(*flags.Seed, 10, 64); err != nil {
			validator.AddError(fmt.Sprintf("seed must be an unsigned integer, got: %s", *flags.Seed))
		}
	}
	validator.ValidateFile("data-file", *flags.DataFile, false)

	return validator.GetError()
}

// ApplySimFlags copies every flag set on the command line over cfg.
// Flags left at their defaults keep the file and environment values.
func ApplySimFlags(fs *flag.FlagSet, flags *SimFlags, cfg *config.SimulationConfig) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "amount":
			cfg.MonthlyInvestment = *flags.Amount
		case "horizons":
			cfg.HorizonsMonths, err = config.ParseHorizons(*flags.Horizons)
		case "simulations":
			cfg.SimulationCount = *flags.Simulations
		case "seed":
			var seed uint64
			seed, err = strconv.ParseUint(*flags.Seed, 10, 64)
			cfg.Seed = &seed
		case "workers":
			cfg.Workers = *flags.Workers
		case "symbol":
			cfg.Symbol = strings.ToUpper(*flags.Symbol)
		case "price":
			cfg.Price = *flags.Price
		case "source":
			cfg.History.Source = strings.ToLower(*flags.Source)
		case "data-file":
			cfg.History.CSVFile = *flags.DataFile
			if *flags.Source == "" {
				cfg.History.Source = data.SourceCSV
			}
		case "data-root":
			cfg.History.DataRoot = *flags.Common.DataRoot
		case "months":
			cfg.History.Months = *flags.Months
		case "output":
			cfg.Output.Directory = *flags.OutputDir
		case "excel":
			cfg.Output.Excel = *flags.Excel
		case "csv":
			cfg.Output.CSV = *flags.CSV
		case "json":
			cfg.Output.JSON = *flags.JSON
		case "console-only":
			cfg.Output.ConsoleOnly = *flags.Common.ConsoleOnly
		case "record":
			cfg.Recorder.Enabled = *flags.Record
		case "watch":
			cfg.Watch.Enabled = *flags.Watch
		case "cron":
			cfg.Watch.Cron = *flags.Cron
		case "metrics-addr":
			cfg.MetricsAddr = *flags.MetricsAddr
		}
	})
	return err
}

// NewSimUsage builds the usage text with examples
func NewSimUsage(fs *flag.FlagSet) *common.UsageFormatter {
	return common.NewUsageFormatter(appName, "Monte Carlo simulation of monthly dollar-cost averaging", fs).
		AddExample("dca-montecarlo", "Default run: 350/month, 10,000 paths, 3/5/10 year horizons").
		AddExample("dca-montecarlo -amount 500 -horizons 12,60 -seed 42", "Reproducible run with custom amount and horizons").
		AddExample("dca-montecarlo -source bybit -months 120 -excel -csv", "Calibrate on Bybit monthly closes and write reports").
		AddExample("dca-montecarlo -source csv -data-file data/bybit/spot/BTCUSDT/1d/candles.csv", "Calibrate on a local candle file").
		AddExample("dca-montecarlo -watch -record -cron \"0 0 9 1 * *\"", "Re-run monthly, record to SQLite and serve metrics")
}
