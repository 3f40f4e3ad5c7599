package appsync

import (
	"sync"
	"time"

	"github.com/jpillora/backoff"
)

// ReconnectObserver is a subscription's restart hook: it re-invokes
// startSubscription for the observer's id.
type ReconnectObserver func()

// ReconnectionMonitor maintains a registry of subscription restart hooks
// and a START/HALT control. While started, every registered observer is
// notified repeatedly on a jittered cadence until halted, so each
// subscription re-issues its start frame once the socket is usable again.
type ReconnectionMonitor struct {
	mu        sync.Mutex
	observers map[int]ReconnectObserver
	nextID    int
	active    bool
	closed    bool
	done      chan struct{}
	stopLoop  chan struct{}
	scheduler Scheduler
	cadence   *backoff.Backoff
}

// NewReconnectionMonitor creates a halted monitor.
func NewReconnectionMonitor(scheduler Scheduler) *ReconnectionMonitor {
	if scheduler == nil {
		scheduler = realScheduler{}
	}

	return &ReconnectionMonitor{
		observers: map[int]ReconnectObserver{},
		done:      make(chan struct{}),
		scheduler: scheduler,
		cadence: &backoff.Backoff{
			Min:    250 * time.Millisecond,
			Max:    10 * time.Second,
			Factor: 2,
			Jitter: true,
		},
	}
}

// Register adds an observer and returns an id for Unregister.
func (r *ReconnectionMonitor) Register(observer ReconnectObserver) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.observers[id] = observer

	return id
}

// Unregister removes an observer; safe to call more than once.
func (r *ReconnectionMonitor) Unregister(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observers, id)
}

// Start begins notifying every registered observer on a jittered cadence.
// Idempotent: starting an already-started monitor has no effect.
func (r *ReconnectionMonitor) Start() {
	r.mu.Lock()
	if r.closed || r.active {
		r.mu.Unlock()

		return
	}
	r.active = true
	r.cadence.Reset()
	stop := make(chan struct{})
	r.stopLoop = stop
	r.mu.Unlock()
	r.notifyOnce()
	r.scheduleNext(stop)
}

func (r *ReconnectionMonitor) scheduleNext(stop chan struct{}) {
	delay := r.cadence.Duration()
	r.scheduler.Schedule(delay, func() {
		select {
		case <-stop:
			return
		default:
		}
		r.mu.Lock()
		if r.closed || !r.active {
			r.mu.Unlock()

			return
		}
		r.mu.Unlock()
		r.notifyOnce()
		r.scheduleNext(stop)
	})
}

// notifyOnce calls every currently registered observer once.
func (r *ReconnectionMonitor) notifyOnce() {
	r.mu.Lock()
	observers := make([]ReconnectObserver, 0, len(r.observers))
	for _, observer := range r.observers {
		observers = append(observers, observer)
	}
	r.mu.Unlock()
	for _, observer := range observers {
		observer()
	}
}

// Halt stops further notifications. Idempotent.
func (r *ReconnectionMonitor) Halt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	r.active = false
	if r.stopLoop != nil {
		close(r.stopLoop)
		r.stopLoop = nil
	}
}

// Close irrevocably halts the monitor and closes the channel returned by
// Done; registered observers are not called again and receive no separate
// completion signal. After Close, Start is a no-op. Safe to call more than
// once.
func (r *ReconnectionMonitor) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()

		return
	}
	r.closed = true
	r.active = false
	if r.stopLoop != nil {
		close(r.stopLoop)
		r.stopLoop = nil
	}
	close(r.done)
	r.mu.Unlock()
}

// Done returns a channel closed when Close has been called.
func (r *ReconnectionMonitor) Done() <-chan struct{} {
	return r.done
}

// Drive applies the ConnectionStateMonitor trigger rules: entering
// ConnectionDisrupted starts reconnection; entering any other published
// state halts it.
func (r *ReconnectionMonitor) Drive(state ConnectionState) {
	if state == ConnectionDisrupted {
		r.Start()

		return
	}
	r.Halt()
}
