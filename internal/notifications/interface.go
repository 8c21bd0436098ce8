package notifications

// Alert levels
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
	LevelSuccess = "success"
)

// Notifier defines the interface for notification services
type Notifier interface {
	// SendAlert sends an alert with the specified level and message
	SendAlert(level, message string) error
}

// NoopNotifier drops every alert.
type NoopNotifier struct{}

func (NoopNotifier) SendAlert(level, message string) error { return nil }
