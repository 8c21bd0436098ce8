package montecarlo

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/internal/random"
)

// WorkerPool manages parallel trajectory simulation
type WorkerPool struct {
	workerCount int
	jobQueue    chan TrajectoryJob
	resultQueue chan TrajectoryResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	progress    *ProgressTracker
}

// TrajectoryJob is a contiguous chunk of trajectories sharing one random stream
type TrajectoryJob struct {
	Chunk  int
	Offset int
	Count  int
	Spec   PathSpec
	Source random.Source
}

// TrajectoryResult holds the trajectories of one finished chunk
type TrajectoryResult struct {
	Chunk        int
	Offset       int
	Trajectories []Trajectory
	Duration     time.Duration
	Error        error
}

// NewWorkerPool creates a new worker pool bound to parent.
// Canceling parent stops the workers between two trajectories.
func NewWorkerPool(parent context.Context, workerCount int, jobBufferSize int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(parent)

	return &WorkerPool{
		workerCount: workerCount,
		jobQueue:    make(chan TrajectoryJob, jobBufferSize),
		resultQueue: make(chan TrajectoryResult, jobBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// WithProgress attaches a tracker updated after every trajectory
func (wp *WorkerPool) WithProgress(tracker *ProgressTracker) *WorkerPool {
	wp.progress = tracker
	return wp
}

// Start starts the worker pool
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop closes the job queue, waits for the workers and closes the results
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// SubmitJob submits a job to the pool
func (wp *WorkerPool) SubmitJob(job TrajectoryJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// GetResults returns the result channel for collecting completed jobs
func (wp *WorkerPool) GetResults() <-chan TrajectoryResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			result := wp.processJob(job)

			select {
			case wp.resultQueue <- result:
			case <-wp.ctx.Done():
				return
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) processJob(job TrajectoryJob) TrajectoryResult {
	startTime := time.Now()

	result := TrajectoryResult{
		Chunk:        job.Chunk,
		Offset:       job.Offset,
		Trajectories: make([]Trajectory, 0, job.Count),
	}

	for i := 0; i < job.Count; i++ {
		if err := wp.ctx.Err(); err != nil {
			result.Error = err
			break
		}
		result.Trajectories = append(result.Trajectories, simulatePath(job.Source, job.Spec))
		if wp.progress != nil {
			wp.progress.Increment()
		}
	}

	result.Duration = time.Since(startTime)
	return result
}

// ProgressTracker tracks simulated trajectories across pools
type ProgressTracker struct {
	total     int
	completed int
	startTime time.Time
	mutex     sync.RWMutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// Increment increments the completion count
func (pt *ProgressTracker) Increment() {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()
	pt.completed++
}

// GetProgress returns completed, total, percent done and elapsed time
func (pt *ProgressTracker) GetProgress() (int, int, float64, time.Duration) {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	elapsed := time.Since(pt.startTime)
	progress := 0.0
	if pt.total > 0 {
		progress = float64(pt.completed) / float64(pt.total) * 100
	}

	return pt.completed, pt.total, progress, elapsed
}

// EstimateTimeRemaining estimates the remaining time based on current progress
func (pt *ProgressTracker) EstimateTimeRemaining() time.Duration {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	if pt.completed == 0 {
		return 0
	}

	elapsed := time.Since(pt.startTime)
	avgTimePerItem := elapsed / time.Duration(pt.completed)
	remaining := pt.total - pt.completed

	return avgTimePerItem * time.Duration(remaining)
}
