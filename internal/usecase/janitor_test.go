package usecase

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestJanitorSchedulesReapers(t *testing.T) {
	j := NewJanitor(newTestLogger())

	if err := j.AddReaper("tasks", "@hourly", func() int { return 0 }); err != nil {
		t.Fatal(err)
	}
	if err := j.AddReaper("threads", "30m", func() int { return 0 }); err != nil {
		t.Fatal(err)
	}
	if got := j.Entries(); got != 2 {
		t.Errorf("Entries() = %d, want 2", got)
	}
}

func TestJanitorRejectsBadSchedule(t *testing.T) {
	j := NewJanitor(newTestLogger())
	if err := j.AddReaper("bad", "not-a-schedule", func() int { return 0 }); err == nil {
		t.Error("expected an error for an invalid schedule")
	}
	if err := j.AddReaper("empty", "", func() int { return 0 }); err == nil {
		t.Error("expected an error for an empty schedule")
	}
	if err := j.AddReaper("negative", "-5s", func() int { return 0 }); err == nil {
		t.Error("expected an error for a negative duration")
	}
}

func TestJanitorRunsReaper(t *testing.T) {
	j := NewJanitor(newTestLogger())

	var runs atomic.Int32
	if err := j.AddReaper("fast", "10ms", func() int {
		runs.Add(1)
		return 1
	}); err != nil {
		t.Fatal(err)
	}

	j.Start()
	defer j.Stop()

	deadline := time.After(2 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("reaper never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestJanitorStartStopIdempotent(t *testing.T) {
	j := NewJanitor(newTestLogger())
	j.Stop()
	j.Start()
	j.Start()
	j.Stop()
	j.Stop()
}

func TestParseScheduleCronExpression(t *testing.T) {
	sched, err := parseSchedule("0 * * * *")
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	next := sched.Next(base)
	if next.Minute() != 0 || next.Hour() != 11 {
		t.Errorf("next = %v", next)
	}
}

func TestParseScheduleDuration(t *testing.T) {
	sched, err := parseSchedule("250ms")
	if err != nil {
		t.Fatal(err)
	}
	base := time.Now()
	if got := sched.Next(base).Sub(base); got != 250*time.Millisecond {
		t.Errorf("delay = %v", got)
	}
}
