package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a named function run repeatedly on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler drives background jobs on per-job tickers. Jobs share one
// context so Stop cancels them all and waits for the last to return.
type Scheduler struct {
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]Job, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job. Call before Start; jobs added later are not
// picked up until the next Start.
func (s *Scheduler) AddJob(name string, interval time.Duration, run func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Run:      run,
	})
	slog.Info("Scheduled background job", "name", name, "interval", interval)
}

// Start launches a goroutine per registered job.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}

	slog.Info("Background scheduler started", "job_count", len(s.jobs))
}

// Stop cancels all running jobs and blocks until they finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Background scheduler stopped")
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// First run happens immediately, not one interval in.
	s.execute(s.ctx, job)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.execute(s.ctx, job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	start := time.Now()

	if err := job.Run(ctx); err != nil {
		slog.Error("Background job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Background job finished", "name", job.Name, "duration", time.Since(start))
}

// RunOnce executes every registered job a single time on the caller's
// context, bypassing the tickers. Used by tests and one-shot tooling.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.execute(ctx, job)
	}
}
