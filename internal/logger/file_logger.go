package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
)

// DefaultLogDir is where session logs are written
const DefaultLogDir = "logs"

// Logger writes a session log of simulation runs
type Logger struct {
	symbol  string
	logFile *os.File
	logger  *log.Logger
	mu      sync.Mutex
	logPath string
}

// LogLevel represents different types of log entries
type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARN"
	LogLevelError   LogLevel = "ERROR"
	LogLevelRun     LogLevel = "RUN"
)

// NewLogger creates a file logger for symbol under logDir (DefaultLogDir when empty)
func NewLogger(logDir, symbol string) (*Logger, error) {
	if logDir == "" {
		logDir = DefaultLogDir
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := fmt.Sprintf("%s_montecarlo_%s.log", symbol, time.Now().Format("2006-01-02"))
	logPath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		symbol:  symbol,
		logFile: file,
		logger:  log.New(file, "", 0),
		logPath: logPath,
	}

	l.writeSessionHeader()

	return l, nil
}

func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
🎲 DCA MONTE CARLO SESSION STARTED
================================================================================
Symbol: %s
Started: %s
Log File: %s
================================================================================
`, l.symbol, time.Now().Format("2006-01-02 15:04:05"), filepath.Base(l.logPath))

	l.logger.Print(header)
}

// Log writes a formatted log entry with the specified level
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	l.logger.Printf("[%s] [%s] %s", timestamp, level, fmt.Sprintf(format, args...))
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}

// LogCalibration logs where the return statistics came from
func (l *Logger) LogCalibration(cal *orchestrator.Calibration) {
	if cal == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	entry := fmt.Sprintf(`
[%s] [RUN] ==================== CALIBRATION ====================
📚 Source: %s
💰 Start Price: %.2f | Quote: %.2f
📈 Monthly log return: mean %.4f | std %.4f
📊 Annualized: return %.2f%% | volatility %.2f%%`,
		timestamp, cal.Source, cal.StartPrice(), cal.QuotePrice,
		cal.Stats.MeanPeriodReturn, cal.Stats.StdPeriodReturn,
		cal.Stats.AnnualizedReturn, cal.Stats.AnnualizedVolatility)

	if cal.QuoteFallback {
		entry += "\n⚠️  Live quote unavailable, baseline price used"
	}
	entry += "\n============================================================"

	l.logger.Println(entry)
}

// LogHorizonResult logs the summary statistics of one horizon
func (l *Logger) LogHorizonResult(result montecarlo.HorizonResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	p := result.Percentiles
	entry := fmt.Sprintf(`
[%s] [RUN] ==================== %d MONTHS (%.1f years) ====================
💵 Invested: %.2f | Simulations: %d
📦 P5: %.2f | P25: %.2f | Median: %.2f | P75: %.2f | P95: %.2f
🎯 Median ROI: %.2f%% | Annualized: %.2f%% | Break-even: %.1f%%
==================================================================`,
		timestamp, result.HorizonMonths, result.HorizonYears,
		result.TotalInvested, result.SimulationCount,
		p.P5, p.P25, p.Median, p.P75, p.P95,
		result.MedianROI, result.MedianAnnualizedReturn, result.BreakEvenProbability)

	l.logger.Println(entry)
}

// LogRun logs a complete run: calibration, every horizon and the wall time
func (l *Logger) LogRun(run *orchestrator.RunResult) {
	if run == nil {
		return
	}
	l.Log(LogLevelRun, "Run %s started (%d simulations, %.2f per month)",
		run.ID, run.SimulationCount, run.MonthlyInvestment)
	l.LogCalibration(run.Calibration)
	for _, h := range run.Horizons {
		l.LogHorizonResult(h)
	}
	l.Log(LogLevelRun, "Run %s finished in %s", run.ID, run.Duration().Round(time.Millisecond))
}

// LogError logs error with context
func (l *Logger) LogError(context string, err error) {
	l.Error("%s: %v", context, err)
}

// Close writes the session footer and closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile == nil {
		return nil
	}

	footer := fmt.Sprintf(`
================================================================================
🛑 DCA MONTE CARLO SESSION ENDED
================================================================================
Ended: %s
================================================================================

`, time.Now().Format("2006-01-02 15:04:05"))
	l.logger.Print(footer)

	err := l.logFile.Close()
	l.logFile = nil
	return err
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	return l.logPath
}
