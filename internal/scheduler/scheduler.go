package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ducminhle1904/dca-montecarlo/internal/monitoring"
	"github.com/ducminhle1904/dca-montecarlo/internal/recorder"
	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"

	"github.com/robfig/cron/v3"
)

// ErrBusy is returned when a run is requested while another is in progress
var ErrBusy = errors.New("simulation already running")

// Runner executes one calibrate-and-simulate cycle
type Runner interface {
	Run(ctx context.Context, req orchestrator.RunRequest) (*orchestrator.RunResult, error)
}

// Scheduler re-runs the simulation on a cron schedule (watch mode).
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Request  orchestrator.RunRequest
	Recorder recorder.Recorder
	Health   *monitoring.HealthChecker
	// OnResult is called after every successful run, e.g. to write reports
	OnResult func(*orchestrator.RunResult)
	// OnError is called when a run fails
	OnError func(error)
	Ctx      context.Context

	mu sync.Mutex
}

// NewScheduler creates a new Scheduler. A nil recorder disables recording.
func NewScheduler(ctx context.Context, runner Runner, req orchestrator.RunRequest, rec recorder.Recorder, health *monitoring.HealthChecker) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Request:  req,
		Recorder: rec,
		Health:   health,
		Ctx:      ctx,
	}
}

// Register adds the simulation task under the given 6-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.task); err != nil {
		return fmt.Errorf("register simulation task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the simulation task immediately (for the first run on start).
func (s *Scheduler) RunNow() (*orchestrator.RunResult, error) {
	return s.runOnce()
}

func (s *Scheduler) task() {
	if _, err := s.runOnce(); err != nil && !errors.Is(err, ErrBusy) {
		log.Printf("[ERROR] scheduled simulation: %v", err)
	}
}

func (s *Scheduler) runOnce() (*orchestrator.RunResult, error) {
	if !s.mu.TryLock() {
		log.Println("[WARN] previous simulation still running, skipping")
		return nil, ErrBusy
	}
	defer s.mu.Unlock()

	log.Println("[INFO] running scheduled simulation")
	result, err := s.Runner.Run(s.Ctx, s.Request)
	if err != nil {
		if s.Health != nil {
			s.Health.RecordFailure(err)
		}
		if s.OnError != nil {
			s.OnError(err)
		}
		return nil, err
	}

	if s.Health != nil {
		s.Health.RecordSuccess(result.Calibration.StartPrice())
	}
	if err := s.Recorder.RecordRun(result); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
	if s.OnResult != nil {
		s.OnResult(result)
	}
	return result, nil
}
