package core

import (
	"sort"
	"time"
)

type taskState uint8

const (
	taskPending taskState = iota
	taskFired
	taskCancelled
)

// Task is a handle to a deferred call registered with a Scheduler.
type Task struct {
	seq   uint64
	due   time.Duration
	fn    func()
	state taskState
	sched *Scheduler
}

// Cancel stops a pending task from firing.
// Returns false if the task already fired or was already cancelled.
func (t *Task) Cancel() bool {
	if t == nil || t.state != taskPending {
		return false
	}
	t.state = taskCancelled
	t.sched.remove(t)
	return true
}

// Pending reports whether the task is still waiting to fire.
func (t *Task) Pending() bool {
	return t != nil && t.state == taskPending
}

// Done reports whether the task has fired.
func (t *Task) Done() bool {
	return t != nil && t.state == taskFired
}

// Due returns the scheduler time at which the task fires.
func (t *Task) Due() time.Duration {
	return t.due
}

// Scheduler runs one-shot deferred calls against a clock that only moves when
// the update loop calls Advance. It is not safe for concurrent use; all calls
// belong on the update goroutine.
type Scheduler struct {
	now     time.Duration
	seq     uint64
	pending []*Task // sorted by (due, seq)
}

// NewScheduler creates a scheduler with its clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the elapsed scheduler time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Pending returns the number of tasks waiting to fire.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// After registers fn to run once d after the current scheduler time.
// Negative delays are treated as zero.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &Task{
		seq:   s.seq,
		due:   s.now + d,
		fn:    fn,
		sched: s,
	}

	i := sort.Search(len(s.pending), func(i int) bool {
		return s.pending[i].due > t.due
	})
	s.pending = append(s.pending, nil)
	copy(s.pending[i+1:], s.pending[i:])
	s.pending[i] = t
	return t
}

// Advance moves the clock forward by dt and fires every task that comes due,
// in due order. Tasks registered by a firing callback run in the same call if
// they fall inside the window. Returns the number of tasks fired.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt < 0 {
		dt = 0
	}
	target := s.now + dt
	fired := 0

	for len(s.pending) > 0 && s.pending[0].due <= target {
		t := s.pending[0]
		s.pending = s.pending[1:]
		s.now = t.due
		t.state = taskFired
		fired++
		if t.fn != nil {
			t.fn()
		}
	}

	s.now = target
	return fired
}

// CancelAll drops every pending task without running it.
func (s *Scheduler) CancelAll() int {
	n := len(s.pending)
	for _, t := range s.pending {
		t.state = taskCancelled
	}
	s.pending = s.pending[:0]
	return n
}

func (s *Scheduler) remove(t *Task) {
	for i, p := range s.pending {
		if p == t {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}
