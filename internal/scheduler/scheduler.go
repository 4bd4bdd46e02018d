// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry describes a registered job.
type Entry struct {
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	Next     *time.Time `json:"next_run,omitempty"`
	id       cron.EntryID
}

// Scheduler manages background jobs. Overlapping runs of the same job are
// skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries []Entry
}

// New creates a scheduler whose specs include a seconds field.
func New(logger *zap.Logger) *Scheduler {
	l := logger.Named("scheduler")
	cl := cronLogger{l.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: l,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.Entries())))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// AddJob registers job on a cron schedule. Examples:
//   - "0 */15 * * * *"  every 15 minutes
//   - "@hourly"         every hour
//   - "@every 30s"      every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	id, err := s.cron.AddFunc(schedule, func() { s.run(job) })
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = append(s.entries, Entry{Name: job.Name(), Schedule: schedule, id: id})
	s.mu.Unlock()

	s.logger.Info("Job registered", zap.String("job", job.Name()), zap.String("schedule", schedule))
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	s.logger.Info("Running job immediately", zap.String("job", job.Name()))
	return job.Run(ctx)
}

// Entries lists the registered jobs with their next activation once started.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e
		if next := s.cron.Entry(e.id).Next; !next.IsZero() {
			out[i].Next = &next
		}
	}
	return out
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	s.logger.Debug("Running job", zap.String("job", job.Name()))
	if err := job.Run(s.ctx); err != nil {
		s.logger.Error("Job failed", zap.String("job", job.Name()), zap.Error(err))
		return
	}
	s.logger.Debug("Job completed", zap.String("job", job.Name()), zap.Duration("took", time.Since(start)))
}

// cronLogger routes cron's own messages through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
