package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker reports whether scheduled runs keep succeeding
type HealthChecker struct {
	mu        sync.RWMutex
	lastRun   time.Time
	lastPrice float64
	runs      int
	lastError string
	maxAge    time.Duration
}

type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	LastRun   time.Time `json:"last_run"`
	LastPrice float64   `json:"last_price"`
	Runs      int       `json:"runs"`
	Uptime    string    `json:"uptime"`
	Error     string    `json:"error,omitempty"`
}

// NewHealthChecker creates a checker that reports degraded once the last
// successful run is older than maxAge (0 disables the check)
func NewHealthChecker(maxAge time.Duration) *HealthChecker {
	return &HealthChecker{maxAge: maxAge}
}

// RecordSuccess marks a completed run
func (h *HealthChecker) RecordSuccess(price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastRun = time.Now()
	h.lastPrice = price
	h.runs++
	h.lastError = ""
}

// RecordFailure marks a failed run
func (h *HealthChecker) RecordFailure(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err != nil {
		h.lastError = err.Error()
	}
}

// Status returns the current health snapshot and its HTTP status code
func (h *HealthChecker) Status() (HealthStatus, int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status, code := "healthy", http.StatusOK
	switch {
	case h.lastError != "":
		status, code = "unhealthy", http.StatusInternalServerError
	case h.runs == 0:
		status = "starting"
	case h.maxAge > 0 && time.Since(h.lastRun) > h.maxAge:
		status, code = "degraded", http.StatusServiceUnavailable
	}

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		LastRun:   h.lastRun,
		LastPrice: h.lastPrice,
		Runs:      h.runs,
		Uptime:    time.Since(startTime).String(),
		Error:     h.lastError,
	}, code
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health, code := h.Status()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(health)
}
