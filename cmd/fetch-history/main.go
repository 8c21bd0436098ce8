package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/cmd/common"
	"github.com/ducminhle1904/dca-montecarlo/internal/exchange/bybit"
	"github.com/ducminhle1904/dca-montecarlo/internal/safety"
	"github.com/ducminhle1904/dca-montecarlo/pkg/config"
	"github.com/ducminhle1904/dca-montecarlo/pkg/data"
	"github.com/ducminhle1904/dca-montecarlo/pkg/reporting"
)

const (
	appName = "DCA Monte Carlo History Fetcher"

	// requestsPerSecond stays well below Bybit's public market data limit
	requestsPerSecond = 5
)

var cli = common.NewLogger()

// KlineFetcher is the part of the Bybit client used for downloads
type KlineFetcher interface {
	GetKlines(ctx context.Context, params bybit.KlineParams) ([]bybit.Kline, error)
}

func main() {
	var (
		symbols  = flag.String("symbols", config.DefaultSymbol, "Comma-separated list of symbols")
		category = flag.String("category", config.DefaultCategory, "Market category (spot, linear, inverse)")
		interval = flag.String("interval", "M", "Kline interval: M (monthly) or D (daily)")
		months   = flag.Int("months", 120, "How many months of history to download")
		dataRoot = flag.String("data-root", config.DefaultDataRoot, "Root directory for candle files")
		output   = flag.String("output", "", "Explicit output file (single symbol only)")
		envFile  = flag.String("env", ".env", "Environment file path")
		version  = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		common.PrintVersion(appName)
		return
	}

	symList := splitSymbols(*symbols)
	validator := common.NewFlagValidator().
		ValidateChoice("interval", *interval, []string{string(bybit.Interval1M), string(bybit.Interval1d)}).
		ValidateChoice("category", *category, []string{"spot", "linear", "inverse"}).
		ValidateInt("months", *months, 2, config.MaxHorizonMonths)
	if len(symList) == 0 {
		validator.AddError("at least one symbol is required")
	}
	if *output != "" && len(symList) > 1 {
		validator.AddError("-output can only be used with a single symbol")
	}
	if validator.HasErrors() {
		validator.PrintErrors()
		os.Exit(2)
	}

	_ = common.NewEnvLoader(cli).LoadEnvFile(*envFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := bybit.NewClient(bybit.Config{
		APIKey:    os.Getenv("BYBIT_API_KEY"),
		APISecret: os.Getenv("BYBIT_API_SECRET"),
		Category:  *category,
	})
	ival := bybit.KlineInterval(strings.ToUpper(*interval))

	cli.Header(appName)
	cli.Info("Symbols: %s", strings.Join(symList, ", "))
	cli.Info("Category: %s, interval: %s, months: %d", *category, ival, *months)

	limiter := safety.NewRateLimiter("bybit-kline", requestsPerSecond, requestsPerSecond)

	failed := 0
	for _, symbol := range symList {
		path := *output
		if path == "" {
			path = data.CandlePath(*dataRoot, config.DefaultExchange, *category, symbol, string(ival))
		}
		if err := downloadOne(ctx, client, limiter, symbol, ival, *months, path); err != nil {
			cli.Error("%s: %v", symbol, err)
			failed++
			if ctx.Err() != nil {
				break
			}
		}
	}

	if failed > 0 {
		stop()
		os.Exit(1)
	}
	cli.Success("All downloads completed")
}

func splitSymbols(value string) []string {
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func downloadOne(ctx context.Context, client KlineFetcher, limiter *safety.RateLimiter, symbol string, interval bybit.KlineInterval, months int, path string) error {
	cli.Progress("Downloading %s %s klines for %s", interval, symbol, path)

	klines, err := fetchKlines(ctx, client, limiter, symbol, interval, months, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(klines) == 0 {
		return fmt.Errorf("no klines returned")
	}

	if err := data.WriteCandlesCSV(path, data.CandlesFromKlines(klines)); err != nil {
		return err
	}

	first, last := klines[0], klines[len(klines)-1]
	cli.Success("Saved %d klines to %s", len(klines), path)
	cli.Info("  %s → %s, last close %s", first.StartTime.Format("2006-01-02"), last.StartTime.Format("2006-01-02"),
		reporting.FormatMoney("$", last.ClosePrice))
	return nil
}

// fetchKlines pages backwards from end until the window covers months, and
// returns the klines oldest first. A nil limiter does not pace requests.
func fetchKlines(ctx context.Context, client KlineFetcher, limiter *safety.RateLimiter, symbol string, interval bybit.KlineInterval, months int, end time.Time) ([]bybit.Kline, error) {
	start := end.AddDate(0, -months, 0)
	var all []bybit.Kline

	for end.After(start) {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		pageEnd := end
		page, err := client.GetKlines(ctx, bybit.KlineParams{
			Symbol:   symbol,
			Interval: interval,
			Start:    &start,
			End:      &pageEnd,
			Limit:    bybit.MaxKlineLimit,
		})
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		all = append(page, all...)
		if len(page) < bybit.MaxKlineLimit {
			break
		}
		end = page[0].StartTime.Add(-time.Millisecond)
	}

	// Drop anything before start that the first page may include
	for len(all) > 0 && all[0].StartTime.Before(start) {
		all = all[1:]
	}
	return all, nil
}
