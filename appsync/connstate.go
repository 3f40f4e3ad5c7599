package appsync

import "sync"

// ConnectionState is the coarse lifecycle published to external observers,
// distinct from the provider's internal SocketStatus.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	ConnectedPendingKeepAlive
	ConnectedPendingNetwork
	ConnectedPendingDisconnect
	ConnectionDisrupted
	ConnectionDisruptedPendingNetwork
)

// String implements fmt.Stringer for log lines and assertions.
func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case ConnectedPendingKeepAlive:
		return "ConnectedPendingKeepAlive"
	case ConnectedPendingNetwork:
		return "ConnectedPendingNetwork"
	case ConnectedPendingDisconnect:
		return "ConnectedPendingDisconnect"
	case ConnectionDisrupted:
		return "ConnectionDisrupted"
	case ConnectionDisruptedPendingNetwork:
		return "ConnectionDisruptedPendingNetwork"
	default:
		return "Unknown"
	}
}

// monitorEvent is the input alphabet driving ConnectionStateMonitor.
type monitorEvent int

const (
	eventOpeningConnection monitorEvent = iota
	eventConnectionEstablished
	eventClosingConnection
	eventClosed
	eventConnectionFailed
	eventKeepAlive
	eventKeepAliveMissed
	eventOnline
	eventOffline
)

// flags is the Cartesian-product projection basis described in spec §3:
// {socketOpen, networkOnline, keepAliveHealthy, intendedClosing}, plus
// connecting/everConnected to disambiguate Connecting from Disconnected and
// ConnectionDisrupted from a plain Disconnected that never connected.
type flags struct {
	connecting       bool
	socketOpen       bool
	networkOnline    bool
	keepAliveHealthy bool
	intendedClosing  bool
	everConnected    bool
}

func (f flags) project() ConnectionState {
	if f.intendedClosing {
		if f.socketOpen {
			return ConnectedPendingDisconnect
		}

		return Disconnected
	}
	if f.socketOpen {
		if !f.networkOnline {
			return ConnectedPendingNetwork
		}
		if !f.keepAliveHealthy {
			return ConnectedPendingKeepAlive
		}

		return Connected
	}
	if f.connecting {
		return Connecting
	}
	if f.everConnected {
		if f.networkOnline {
			return ConnectionDisrupted
		}

		return ConnectionDisruptedPendingNetwork
	}

	return Disconnected
}

func (f flags) apply(event monitorEvent) flags {
	switch event {
	case eventOpeningConnection:
		f.connecting = true
		f.socketOpen = false
		f.intendedClosing = false
		f.everConnected = false
	case eventConnectionEstablished:
		f.connecting = false
		f.socketOpen = true
		f.everConnected = true
		f.keepAliveHealthy = true
	case eventClosingConnection:
		f.intendedClosing = true
	case eventClosed:
		f.connecting = false
		f.socketOpen = false
	case eventConnectionFailed:
		f.connecting = false
		f.socketOpen = false
		f.intendedClosing = false
		f.everConnected = false
	case eventKeepAlive:
		f.keepAliveHealthy = true
	case eventKeepAliveMissed:
		f.keepAliveHealthy = false
	case eventOnline:
		f.networkOnline = true
	case eventOffline:
		f.networkOnline = false
	}

	return f
}

// ConnectionStateMonitor is a deterministic state machine mapping low-level
// socket/network/keep-alive events to a published ConnectionState. It must
// be driven from a single actor (see §5); handle is not safe for concurrent
// callers, only Subscribe and the unsubscribe func it returns are.
type ConnectionStateMonitor struct {
	current   ConnectionState
	flags     flags
	mu        sync.Mutex
	listeners map[int]chan ConnectionState
	nextID    int
}

// NewConnectionStateMonitor creates a monitor starting in Disconnected with
// the network assumed online (see Design Notes: platforms without a
// network-event source assume always-online).
func NewConnectionStateMonitor() *ConnectionStateMonitor {
	return &ConnectionStateMonitor{
		current:   Disconnected,
		flags:     flags{networkOnline: true, keepAliveHealthy: true},
		listeners: map[int]chan ConnectionState{},
	}
}

// Current returns the most recently published state.
func (m *ConnectionStateMonitor) Current() ConnectionState {
	return m.current
}

// Subscribe registers an observer. The returned channel receives subsequent
// published states (duplicates suppressed) in the same order as every other
// subscriber, and is closed by the returned unsubscribe func. Publishing
// never blocks: while a listener's 32-entry buffer is full, the states
// published to it are dropped.
func (m *ConnectionStateMonitor) Subscribe() (<-chan ConnectionState, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	ch := make(chan ConnectionState, 32)
	m.listeners[id] = ch
	unsubscribe := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if existing, ok := m.listeners[id]; ok {
			delete(m.listeners, id)
			close(existing)
		}
	}

	return ch, unsubscribe
}

func (m *ConnectionStateMonitor) publish(state ConnectionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.listeners {
		select {
		case ch <- state:
		default:
			// Slow consumer: drop rather than block the single actor that
			// drives every transition (see §5 ordering guarantees).
		}
	}
}

// handle applies event and, if the projected state changed, publishes it.
// Returns the resulting state.
func (m *ConnectionStateMonitor) handle(event monitorEvent) ConnectionState {
	m.flags = m.flags.apply(event)
	next := m.flags.project()
	if next == m.current {
		return m.current
	}
	m.current = next
	m.publish(next)

	return next
}
