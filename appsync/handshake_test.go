package appsync_test

import (
	"sync"
	"testing"
	"time"

	"github.com/brokgo/appsync-realtime-go/appsync"
	"github.com/brokgo/appsync-realtime-go/appsync/message"
)

// recordingEventBus captures every event published to it, so tests can
// observe the ConnectionState sequence the spec requires be published
// through the event bus (spec.md §6 "Event bus emissions").
type recordingEventBus struct {
	mu     sync.Mutex
	events []appsync.Event
}

func (b *recordingEventBus) Publish(_ string, event appsync.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingEventBus) connectionStates() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var states []string
	for _, event := range b.events {
		if event.Event != "ConnectionStateChange" {
			continue
		}
		if data, ok := event.Data.(appsync.ConnectionStateChangeData); ok {
			states = append(states, data.ConnectionState)
		}
	}

	return states
}

func (b *recordingEventBus) waitFor(t *testing.T, state string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, got := range b.connectionStates() {
			if got == state {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for connection state %v, saw %v", state, b.connectionStates())
}

// TestKeepAliveHardTimeoutDrivesReconnect covers S4: a missing keep-alive
// disrupts the connection and the reconnection monitor re-subscribes once
// the socket is usable again.
func TestKeepAliveHardTimeoutDrivesReconnect(t *testing.T) {
	t.Parallel()
	port := portPool.Get()
	server := newTestServer(t, port)
	defer server.Shutdown(t.Context())

	config := testConfig(port)
	config.KeepAliveHardTimeout = 100 * time.Millisecond
	config.KeepAliveSoftTimeout = 50 * time.Millisecond
	bus := &recordingEventBus{}
	config.EventBus = bus

	provider := appsync.New(config)
	defer provider.Close() //nolint: errcheck

	observer := newRecordingObserver()
	_, err := provider.Subscribe(appsync.SubscribeOptions{Query: "subscription { a }"}).Activate(observer)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	server.AcceptHandshake(t, config.KeepAliveHardTimeout)
	firstStart := server.Receive(t)
	server.Send(t, &message.ReceiveMessage{ID: firstStart.ID, Type: message.StartAckType})

	bus.waitFor(t, appsync.ConnectionDisrupted.String())

	server.AcceptHandshake(t, time.Minute)
	secondStart := server.Receive(t)
	if secondStart.Payload.Data != firstStart.Payload.Data {
		t.Fatalf("expected the reconnected start frame to carry the same payload")
	}
	server.Send(t, &message.ReceiveMessage{ID: secondStart.ID, Type: message.StartAckType})
	bus.waitFor(t, appsync.Connected.String())
}

// TestHandshakeNonRetryableAbortsAfterOneAttempt covers S5: an
// authorization-class connection_error aborts retry immediately and every
// in-flight observer sees an error.
func TestHandshakeNonRetryableAbortsAfterOneAttempt(t *testing.T) {
	t.Parallel()
	port := portPool.Get()
	server := newTestServer(t, port)
	defer server.Shutdown(t.Context())

	provider := appsync.New(testConfig(port))
	defer provider.Close() //nolint: errcheck

	observer := newRecordingObserver()
	_, err := provider.Subscribe(appsync.SubscribeOptions{Query: "subscription { a }"}).Activate(observer)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	init := server.Receive(t)
	if init.Type != message.ConnectionInitType {
		t.Fatalf("expected connection_init, got %v", init.Type)
	}
	server.Send(t, &message.ReceiveMessage{
		Type: message.ConnectionErrType,
		Payload: &message.ReceivePayload{
			Errors: []message.GraphQLError{{ErrorType: "UnauthorizedException", ErrorCode: 401}},
		},
	})

	select {
	case <-observer.errC:
	case <-time.After(5 * time.Second):
		t.Fatal("expected the observer to receive an error after a non-retryable connection_error")
	}

	select {
	case msg := <-server.clientC:
		t.Fatalf("expected no retry attempt, got another frame: %+v", msg)
	case <-time.After(300 * time.Millisecond):
	}
}

// TestIdleCloseClosesSocketAfterLastTeardown covers the remainder of S6:
// once every subscription has torn down, the socket closes after the grace
// window, without a new subscription having to be made.
func TestIdleCloseClosesSocketAfterLastTeardown(t *testing.T) {
	t.Parallel()
	port := portPool.Get()
	server := newTestServer(t, port)
	defer server.Shutdown(t.Context())

	config := testConfig(port)
	config.IdleCloseGrace = 50 * time.Millisecond
	provider := appsync.New(config)
	defer provider.Close() //nolint: errcheck

	observer := newRecordingObserver()
	teardown, err := provider.Subscribe(appsync.SubscribeOptions{Query: "subscription { a }"}).Activate(observer)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	server.AcceptHandshake(t, time.Minute)
	start := server.Receive(t)
	server.Send(t, &message.ReceiveMessage{ID: start.ID, Type: message.StartAckType})

	teardown()
	stop := server.Receive(t)
	if stop.Type != message.StopType {
		t.Fatalf("expected stop, got %v", stop.Type)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("socket was never closed after the idle grace window")
		default:
		}
		if provider.CurrentState() == appsync.Disconnected {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
