package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
)

// DefaultJSONFormatter implements JSON output functionality
type DefaultJSONFormatter struct {
	currency string
}

// NewDefaultJSONFormatter creates a new JSON formatter
func NewDefaultJSONFormatter(currency string) *DefaultJSONFormatter {
	return &DefaultJSONFormatter{currency: currency}
}

// FormatRun formats a run report as indented JSON
func (f *DefaultJSONFormatter) FormatRun(run *orchestrator.RunResult) ([]byte, error) {
	return json.MarshalIndent(NewRunReport(run, f.currency), "", "  ")
}

// PrintRun prints a run report as JSON to stdout
func (f *DefaultJSONFormatter) PrintRun(run *orchestrator.RunResult) {
	data, err := f.FormatRun(run)
	if err != nil {
		fmt.Printf("❌ Failed to format run: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// WriteRunJSON writes a run report to path
func (f *DefaultJSONFormatter) WriteRunJSON(run *orchestrator.RunResult, path string) error {
	data, err := f.FormatRun(run)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}
