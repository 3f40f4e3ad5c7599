package appsync

import "time"

// Scheduler abstracts timer creation so tests can inject a virtual clock
// instead of racing real wall-clock timers for start-ack, keep-alive and
// idle-close deadlines.
type Scheduler interface {
	Schedule(after time.Duration, fn func()) TimerHandle
}

// TimerHandle cancels a scheduled callback. Cancel is idempotent.
type TimerHandle interface {
	Cancel()
}

type realScheduler struct{}

func (realScheduler) Schedule(after time.Duration, fn func()) TimerHandle {
	timer := time.AfterFunc(after, fn)

	return &realTimerHandle{timer: timer}
}

type realTimerHandle struct {
	timer *time.Timer
}

func (h *realTimerHandle) Cancel() {
	h.timer.Stop()
}
