package usecase

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor runs periodic reapers that evict stale state: old tasks from
// the task tables and idle threads from the checkpoint store. Without it
// both grow without bound.
type Janitor struct {
	mu      sync.Mutex
	cron    *cron.Cron
	logger  *slog.Logger
	started bool
}

// NewJanitor creates a stopped janitor.
func NewJanitor(logger *slog.Logger) *Janitor {
	return &Janitor{
		cron:   cron.New(),
		logger: logger,
	}
}

// AddReaper schedules reap to run on the given schedule. The schedule may
// be a cron expression ("0 * * * *"), a descriptor ("@hourly"), or a
// duration ("30m"). reap returns how many entries it evicted.
func (j *Janitor) AddReaper(name, schedule string, reap func() int) error {
	sched, err := parseSchedule(schedule)
	if err != nil {
		return fmt.Errorf("janitor: invalid schedule %q for %q: %w", schedule, name, err)
	}

	logger := j.logger
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cron.Schedule(sched, cron.FuncJob(func() {
		start := time.Now()
		n := reap()
		logger.Info("reaper completed",
			"reaper", name,
			"evicted", n,
			"duration", time.Since(start),
		)
	}))
	logger.Info("reaper scheduled", "reaper", name, "schedule", schedule)
	return nil
}

// Start begins running scheduled reapers.
func (j *Janitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.started {
		return
	}
	j.cron.Start()
	j.started = true
}

// Stop halts the janitor and waits for a running reaper to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.started {
		return
	}
	<-j.cron.Stop().Done()
	j.started = false
}

// Entries returns the number of scheduled reapers.
func (j *Janitor) Entries() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.cron.Entries())
}

// parseSchedule tries a cron expression first, then a duration.
func parseSchedule(schedule string) (cron.Schedule, error) {
	if schedule == "" {
		return nil, fmt.Errorf("empty schedule")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if sched, err := parser.Parse(schedule); err == nil {
		return sched, nil
	}

	dur, err := time.ParseDuration(schedule)
	if err != nil {
		return nil, fmt.Errorf("not a valid cron expression or duration: %q", schedule)
	}
	if dur <= 0 {
		return nil, fmt.Errorf("duration must be positive: %q", schedule)
	}
	return constantDelay{delay: dur}, nil
}

// constantDelay implements cron.Schedule for a fixed interval, supporting
// sub-second durations unlike cron.Every().
type constantDelay struct {
	delay time.Duration
}

func (d constantDelay) Next(t time.Time) time.Time {
	return t.Add(d.delay)
}
