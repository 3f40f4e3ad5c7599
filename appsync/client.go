package appsync

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brokgo/appsync-realtime-go/appsync/message"
)

// socketStatus is the provider's internal socket lifecycle, distinct from
// the externally published ConnectionState (spec.md §3: "SocketStatus is
// strictly internal; ConnectionState ... is the only state external code
// should observe").
type socketStatus int

const (
	socketClosed socketStatus = iota
	socketConnecting
	socketReady
)

type subState int

const (
	subPending subState = iota
	subConnected
	subFailed
)

// subscriptionEntry is one row of the subscription table (spec.md §4.2).
type subscriptionEntry struct {
	id               string
	observer         Observer
	query            string
	variables        map[string]any
	extraHeaders     map[string]string
	extraHeadersFunc ExtraHeadersFunc
	state            subState
	starting         bool
	startAckTimer    TimerHandle
	reconnectID      int
	waiters          []chan struct{}
}

// RealtimeProvider is the socket orchestrator: it owns one underlying
// WebSocket, negotiates the graphql-ws handshake, multiplexes every active
// Subscription's frames over it, and reacts to keep-alive loss and network
// transitions by driving ConnectionStateMonitor and ReconnectionMonitor.
//
// Every exported method funnels its table/status mutation through a single
// actor goroutine (spec.md §5: "a single mutex or single-consumer mailbox"),
// so no field below this comment is safe to touch outside runActor.
type RealtimeProvider struct {
	config    *Config
	builder   *AuthHeaderBuilder
	scheduler Scheduler
	logger    Logger
	publisher *eventPublisher
	dial      func(ctx context.Context, url string, subprotocols []string) (Conn, error)

	stateMonitor     *ConnectionStateMonitor
	reconnectMonitor *ReconnectionMonitor

	// bgCtx is cancelled by Close so that a background startSubscription
	// goroutine blocked in ensureSocketReady's retry loop against an
	// unreachable endpoint unblocks instead of leaving Close's wg.Wait
	// hanging forever.
	bgCtx    context.Context //nolint: containedctx
	bgCancel context.CancelFunc

	mailbox chan func()
	done    chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
	closed    bool

	conn                 Conn
	generation           int
	status               socketStatus
	connectWaiters       []chan error
	keepAliveHardTimeout time.Duration
	keepAliveHardTimer   TimerHandle
	keepAliveSoftTimer   TimerHandle
	idleCloseTimer       TimerHandle

	subscriptions map[string]*subscriptionEntry
}

// New creates a RealtimeProvider from config. It does not dial; the socket
// is opened lazily by the first subscription's activation.
func New(config *Config) *RealtimeProvider {
	if config.Logger == nil {
		config.Logger = noopLogger{}
	}
	if config.Scheduler == nil {
		config.Scheduler = realScheduler{}
	}
	if config.NonRetryableCodes == nil {
		config.NonRetryableCodes = defaultNonRetryableCodes()
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	provider := &RealtimeProvider{
		config:               config,
		builder:              NewAuthHeaderBuilder(config),
		scheduler:            config.Scheduler,
		logger:               config.Logger,
		publisher:            &eventPublisher{bus: config.EventBus},
		dial:                 dialCoderWebSocket,
		stateMonitor:         NewConnectionStateMonitor(),
		reconnectMonitor:     NewReconnectionMonitor(config.Scheduler),
		bgCtx:                bgCtx,
		bgCancel:             bgCancel,
		mailbox:              make(chan func()),
		done:                 make(chan struct{}),
		keepAliveHardTimeout: config.KeepAliveHardTimeout,
		subscriptions:        map[string]*subscriptionEntry{},
	}
	provider.wg.Go(provider.runActor)

	return provider
}

func dialCoderWebSocket(ctx context.Context, url string, subprotocols []string) (Conn, error) {
	return newCoderWebSocketConn(ctx, url, subprotocols)
}

// GetProviderName identifies this provider in published ConnectionState and
// SubscriptionAck events.
func (p *RealtimeProvider) GetProviderName() string {
	return "appsync-realtime-ws"
}

// CurrentState returns the most recently published ConnectionState.
func (p *RealtimeProvider) CurrentState() ConnectionState {
	var state ConnectionState
	p.do(func() { state = p.stateMonitor.Current() })

	return state
}

// Subscribe returns a lazy, cold Subscription for options. No socket
// activity happens until the subscription is Activate'd.
func (p *RealtimeProvider) Subscribe(options SubscribeOptions) *Subscription {
	return newSubscription(p, options)
}

// Close idempotently tears down the provider: every active subscription's
// teardown path is skipped, the socket is closed as an intentional
// shutdown, and the reconnection monitor is completed.
func (p *RealtimeProvider) Close() error {
	p.closeOnce.Do(func() {
		p.bgCancel()
		p.do(func() {
			p.closed = true
			p.transition(eventClosingConnection)
			p.cancelKeepAlive()
			if p.idleCloseTimer != nil {
				p.idleCloseTimer.Cancel()
			}
			p.generation++
			if p.conn != nil {
				_ = p.conn.Close()
				p.conn = nil
			}
			p.status = socketClosed
			p.transition(eventClosed)
			for _, entry := range p.subscriptions {
				if entry.startAckTimer != nil {
					entry.startAckTimer.Cancel()
				}
				releaseWaiters(entry)
			}
			p.subscriptions = map[string]*subscriptionEntry{}
			for _, waiter := range p.connectWaiters {
				waiter <- ErrProviderClosed
			}
			p.connectWaiters = nil
		})
		p.reconnectMonitor.Close()
		close(p.done)
		p.wg.Wait()
	})

	return nil
}

// runActor is the provider's single mutating goroutine; every table and
// socket-status read/write happens here (spec.md §5).
func (p *RealtimeProvider) runActor() {
	for {
		select {
		case fn := <-p.mailbox:
			fn()
		case <-p.done:
			return
		}
	}
}

// do enqueues fn on the actor and blocks until it has run.
func (p *RealtimeProvider) do(fn func()) {
	result := make(chan struct{})
	select {
	case p.mailbox <- func() { fn(); close(result) }:
		<-result
	case <-p.done:
	}
}

// doAsync enqueues fn without waiting, for callers already outside the
// actor (the read loop, timers) that must not block it.
func (p *RealtimeProvider) doAsync(fn func()) {
	select {
	case p.mailbox <- fn:
	case <-p.done:
	}
}

// transition must be called from within the actor. It applies event to the
// ConnectionStateMonitor and, if the published state changed, drives the
// ReconnectionMonitor and publishes the change to the event bus.
func (p *RealtimeProvider) transition(event monitorEvent) {
	before := p.stateMonitor.Current()
	after := p.stateMonitor.handle(event)
	if after == before {
		return
	}
	p.reconnectMonitor.Drive(after)
	p.publisher.publishConnectionStateChange(p.GetProviderName(), after)
	p.logger.Debugf("appsync: connection state %s -> %s", before, after)
}

// activate registers observer under options and kicks off the first start
// attempt. It is the only way a subscriptionEntry enters the table.
func (p *RealtimeProvider) activate(options SubscribeOptions, observer Observer) (func(), error) {
	if err := options.validate(); err != nil {
		observer.Error(validationError(err))
		observer.Complete()

		return func() {}, nil
	}
	select {
	case <-p.done:
		observer.Error(validationError(ErrProviderClosed))
		observer.Complete()

		return func() {}, nil
	default:
	}

	id := uuid.NewString()
	entry := &subscriptionEntry{
		id:               id,
		observer:         observer,
		query:            options.Query,
		variables:        options.Variables,
		extraHeaders:     options.ExtraHeaders,
		extraHeadersFunc: options.ExtraHeadersFunc,
		state:            subPending,
	}

	var rejected bool
	p.do(func() {
		if p.closed {
			rejected = true

			return
		}
		p.subscriptions[id] = entry
	})
	if rejected {
		observer.Error(validationError(ErrProviderClosed))
		observer.Complete()

		return func() {}, nil
	}

	entry.reconnectID = p.reconnectMonitor.Register(func() { p.kickStart(id) })
	p.kickStart(id)

	var teardownOnce sync.Once
	teardown := func() {
		teardownOnce.Do(func() {
			p.reconnectMonitor.Unregister(entry.reconnectID)
			p.teardown(id)
		})
	}

	return teardown, nil
}

func (p *RealtimeProvider) kickStart(id string) {
	p.wg.Go(func() { p.startSubscription(p.bgCtx, id) })
}

// startSubscription resolves auth headers, ensures the socket is READY and
// sends a start frame for id. Safe to call repeatedly for the same id (the
// starting flag drops overlapping calls, e.g. a fast reconnect while a
// previous start is still resolving auth).
func (p *RealtimeProvider) startSubscription(ctx context.Context, id string) {
	var entry *subscriptionEntry
	p.do(func() {
		e, found := p.subscriptions[id]
		if !found || e.starting || e.state == subConnected {
			return
		}
		e.starting = true
		entry = e
	})
	if entry == nil {
		return
	}
	defer p.do(func() {
		if e, found := p.subscriptions[id]; found {
			e.starting = false
		}
	})

	payload, err := json.Marshal(struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables,omitempty"`
	}{Query: entry.query, Variables: entry.variables})
	if err != nil {
		p.failSubscription(id, validationError(errors.Join(ErrMarshalMsg, err)))

		return
	}

	auth, err := p.builder.Build(ctx, "/graphql", payload)
	if err != nil {
		p.failSubscription(id, validationError(err))

		return
	}
	extra, err := mergedExtraHeaders(ctx, p.config, entry, realtimeURL(p.config.Endpoint, p.config.WebSocketScheme), string(payload))
	if err != nil {
		p.failSubscription(id, validationError(err))

		return
	}
	applyExtraHeaderAuthorization(auth, extra)

	if err := p.ensureSocketReady(ctx); err != nil {
		p.failSubscription(id, serverError(err, nil))

		return
	}

	var conn Conn
	var stillPending bool
	p.do(func() {
		e, found := p.subscriptions[id]
		if !found || e.state != subPending {
			return
		}
		conn = p.conn
		stillPending = true
	})
	if !stillPending || conn == nil {
		return
	}

	sendErr := write(ctx, conn, &message.SendMessage{
		ID:   id,
		Type: message.StartType,
		Payload: &message.StartPayload{
			Data:       string(payload),
			Extensions: message.StartExtensions{Authorization: auth},
		},
	})
	if sendErr != nil {
		p.failSubscription(id, serverError(errors.Join(ErrMarshalMsg, sendErr), nil))

		return
	}

	p.do(func() {
		e, found := p.subscriptions[id]
		if !found || e.state != subPending {
			return
		}
		if e.startAckTimer != nil {
			e.startAckTimer.Cancel()
		}
		e.startAckTimer = p.scheduler.Schedule(p.config.StartAckTimeout, func() {
			p.doAsync(func() { p.onStartAckTimeout(id) })
		})
	})
}

func (p *RealtimeProvider) onStartAckTimeout(id string) {
	entry, found := p.subscriptions[id]
	if !found || entry.state != subPending {
		return
	}
	p.logger.Errorf("appsync: subscription %s timed out waiting for start_ack", id)
	p.failLocked(entry, validationError(ErrStartAckTimeout))
}

// failSubscription reports err to id's observer and moves it to FAILED,
// preserving any teardown waiters so a concurrent unsubscribe can proceed.
func (p *RealtimeProvider) failSubscription(id string, err error) {
	p.do(func() {
		entry, found := p.subscriptions[id]
		if !found {
			return
		}
		p.failLocked(entry, err)
	})
}

func (p *RealtimeProvider) failLocked(entry *subscriptionEntry, err error) {
	if entry.startAckTimer != nil {
		entry.startAckTimer.Cancel()
	}
	entry.state = subFailed
	entry.observer.Error(err)
	releaseWaiters(entry)
	delete(p.subscriptions, entry.id)
	p.scheduleIdleCloseCheck()
}

// mergedExtraHeaders resolves entry's per-request extra headers on top of
// the library-wide ones (spec.md §4.3 "merges library and per-request extra
// headers"), the per-request static map and function taking precedence.
func mergedExtraHeaders(ctx context.Context, config *Config, entry *subscriptionEntry, url, queryString string) (map[string]string, error) {
	merged, err := resolveExtraHeaders(ctx, config.ExtraHeaders, config.ExtraHeadersFunc, url, queryString)
	if err != nil {
		return nil, err
	}
	perRequest, err := resolveExtraHeaders(ctx, entry.extraHeaders, entry.extraHeadersFunc, url, queryString)
	if err != nil {
		return nil, err
	}
	for k, v := range perRequest {
		merged[k] = v
	}

	return merged, nil
}

// applyExtraHeaderAuthorization lets an extra-headers "Authorization" entry
// stand in for the bearer when the auth mode itself produced none (apiKey;
// the iam arm always carries its signature); an explicit bearer already
// resolved by AuthHeaderBuilder always wins (spec.md §4.1).
func applyExtraHeaderAuthorization(auth *message.Authorization, extra map[string]string) {
	if auth == nil || auth.Authorization != "" {
		return
	}
	if bearer, ok := extra["Authorization"]; ok && bearer != "" {
		auth.Authorization = bearer

		return
	}
	if bearer, ok := extra["authorization"]; ok && bearer != "" {
		auth.Authorization = bearer
	}
}

func releaseWaiters(entry *subscriptionEntry) {
	for _, waiter := range entry.waiters {
		close(waiter)
	}
	entry.waiters = nil
}

// teardown awaits id reaching CONNECTED or FAILED, sends a stop frame if it
// reached CONNECTED, and unconditionally removes the entry. Safe to call
// more than once or for an id never registered.
func (p *RealtimeProvider) teardown(id string) {
	var waitCh chan struct{}
	var entry *subscriptionEntry
	p.do(func() {
		e, found := p.subscriptions[id]
		if !found {
			return
		}
		entry = e
		if e.state == subPending {
			waitCh = make(chan struct{})
			e.waiters = append(e.waiters, waitCh)
		}
	})
	if entry == nil {
		return
	}
	if waitCh != nil {
		<-waitCh
	}

	var conn Conn
	var shouldStop bool
	p.do(func() {
		e, found := p.subscriptions[id]
		if !found {
			return
		}
		if e.startAckTimer != nil {
			e.startAckTimer.Cancel()
		}
		if e.state == subConnected {
			shouldStop = true
			conn = p.conn
		}
		delete(p.subscriptions, id)
		p.scheduleIdleCloseCheck()
	})
	if shouldStop && conn != nil {
		_ = write(context.Background(), conn, &message.SendMessage{ID: id, Type: message.StopType})
	}
}

// ensureSocketReady performs, or waits out, the single-flight handshake.
func (p *RealtimeProvider) ensureSocketReady(ctx context.Context) error {
	var waitCh chan error
	var shouldDial bool
	p.do(func() {
		switch p.status {
		case socketReady:
			return
		case socketConnecting:
			ch := make(chan error, 1)
			p.connectWaiters = append(p.connectWaiters, ch)
			waitCh = ch
		case socketClosed:
			p.status = socketConnecting
			p.transition(eventOpeningConnection)
			shouldDial = true
		}
	})
	if !shouldDial && waitCh == nil {
		return nil
	}
	if waitCh != nil {
		select {
		case err := <-waitCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	result, err := retry(ctx, p.config.RetryMaxDelay, p.dialAndHandshake)
	p.do(func() {
		if err != nil {
			p.status = socketClosed
			p.transition(eventConnectionFailed)
			p.flushConnectWaiters(err)

			return
		}
		p.conn = result.conn
		p.status = socketReady
		p.generation++
		generation := p.generation
		if result.connectionTimeoutMs > 0 {
			p.keepAliveHardTimeout = time.Duration(result.connectionTimeoutMs) * time.Millisecond
		}
		p.armKeepAlive()
		p.wg.Go(func() { p.readLoop(generation, result.conn) })
		p.transition(eventConnectionEstablished)
		p.flushConnectWaiters(nil)
	})

	return err
}

func (p *RealtimeProvider) flushConnectWaiters(err error) {
	for _, waiter := range p.connectWaiters {
		waiter <- err
	}
	p.connectWaiters = nil
}

// handshakeResult is dialAndHandshake's single-value return, since retry[T]
// is generic over one result type.
type handshakeResult struct {
	conn                Conn
	connectionTimeoutMs int
}

// dialAndHandshake performs one handshake attempt: build auth headers for
// the handshake, dial, send connection_init and await connection_ack. A
// connection_error whose code is in NonRetryableCodes aborts retry.
func (p *RealtimeProvider) dialAndHandshake(ctx context.Context) (handshakeResult, error) {
	auth, err := p.builder.Build(ctx, "/graphql/connect", []byte("{}"))
	if err != nil {
		return handshakeResult{}, nonRetryable(err)
	}
	headers, err := resolveExtraHeaders(ctx, p.config.ExtraHeaders, p.config.ExtraHeadersFunc, p.config.Endpoint, "{}")
	if err != nil {
		return handshakeResult{}, nonRetryable(err)
	}
	for k, v := range authorizationToHeaders(auth) {
		headers[k] = v
	}
	if p.config.UserAgent != "" {
		headers["user-agent"] = p.config.UserAgent
	}
	headerJSON, err := json.Marshal(headers)
	if err != nil {
		return handshakeResult{}, nonRetryable(errors.Join(ErrMarshalMsg, err))
	}

	fullURL := realtimeURL(p.config.Endpoint, p.config.WebSocketScheme) +
		"?header=" + base64.StdEncoding.EncodeToString(headerJSON) +
		"&payload=" + base64.StdEncoding.EncodeToString([]byte("{}"))

	conn, err := p.dial(ctx, fullURL, []string{"graphql-ws"})
	if err != nil {
		return handshakeResult{}, err
	}

	if err := write(ctx, conn, &message.SendMessage{Type: message.ConnectionInitType}); err != nil {
		_ = conn.Close()

		return handshakeResult{}, errors.Join(ErrMarshalMsg, err)
	}

	ackCtx, cancel := context.WithTimeout(ctx, p.config.HandshakeTimeout)
	defer cancel()
	ack := &message.ReceiveMessage{}
	if err := read(ackCtx, conn, ack); err != nil {
		_ = conn.Close()

		return handshakeResult{}, errors.Join(ErrHandshakeTimeout, err)
	}

	switch ack.Type {
	case message.ConnectionAckType:
		timeoutMs := 0
		if ack.Payload != nil {
			timeoutMs = ack.Payload.ConnectionTimeoutMs
		}

		return handshakeResult{conn: conn, connectionTimeoutMs: timeoutMs}, nil
	case message.ConnectionErrType:
		code := 0
		if ack.Payload != nil && len(ack.Payload.Errors) > 0 {
			code = ack.Payload.Errors[0].ErrorCode
		}
		closeConnAbnormal(conn)
		connErr := connectionErrorFromAck(ack)
		if _, nonRetryableCode := p.config.NonRetryableCodes[code]; nonRetryableCode {
			return handshakeResult{}, nonRetryable(connErr)
		}

		return handshakeResult{}, connErr
	default:
		_ = conn.Close()

		return handshakeResult{}, ErrHandshakeRejected
	}
}

// closeConnAbnormal closes conn with the handshake-rejected close code when
// the concrete transport supports it, falling back to a normal close for
// test fakes that implement only Conn.
func closeConnAbnormal(conn Conn) {
	if abnormal, ok := conn.(*coderWebSocketConn); ok {
		_ = abnormal.closeAbnormal()

		return
	}
	_ = conn.Close()
}

func (p *RealtimeProvider) armKeepAlive() {
	p.cancelKeepAlive()
	p.keepAliveSoftTimer = p.scheduler.Schedule(p.config.KeepAliveSoftTimeout, func() {
		p.doAsync(p.onKeepAliveMissed)
	})
	p.keepAliveHardTimer = p.scheduler.Schedule(p.keepAliveHardTimeout, func() {
		p.doAsync(p.onKeepAliveTimeout)
	})
}

func (p *RealtimeProvider) cancelKeepAlive() {
	if p.keepAliveSoftTimer != nil {
		p.keepAliveSoftTimer.Cancel()
		p.keepAliveSoftTimer = nil
	}
	if p.keepAliveHardTimer != nil {
		p.keepAliveHardTimer.Cancel()
		p.keepAliveHardTimer = nil
	}
}

func (p *RealtimeProvider) onKeepAliveMissed() {
	if p.status != socketReady {
		return
	}
	p.transition(eventKeepAliveMissed)
}

func (p *RealtimeProvider) onKeepAliveTimeout() {
	if p.status != socketReady {
		return
	}
	p.logger.Errorf("appsync: keep-alive timeout, closing socket")
	p.disconnectWithError(ErrKeepAliveTimeout)
}

// disconnectWithError closes the current socket after an unrequested
// failure (keep-alive loss, read-loop error). Distinct from Close/idle-close
// in that it does not set intendedClosing, so the monitor lands on
// ConnectionDisrupted and the reconnection monitor starts.
func (p *RealtimeProvider) disconnectWithError(err error) {
	if p.status == socketClosed {
		return
	}
	p.cancelKeepAlive()
	p.generation++
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	p.status = socketClosed
	p.transition(eventClosed)
	for _, entry := range p.subscriptions {
		entry.state = subPending
		if entry.startAckTimer != nil {
			entry.startAckTimer.Cancel()
			entry.startAckTimer = nil
		}
	}
	p.logger.Errorf("appsync: socket closed: %v", err)
}

// scheduleIdleCloseCheck arms the idle-close grace timer once the table is
// empty; it re-checks table size at fire time rather than trusting the
// count observed when it was armed, since a new subscription may have
// arrived in between (see DESIGN.md, Open Question decision 3).
func (p *RealtimeProvider) scheduleIdleCloseCheck() {
	if len(p.subscriptions) != 0 || p.status != socketReady {
		return
	}
	if p.idleCloseTimer != nil {
		p.idleCloseTimer.Cancel()
	}
	grace := p.config.IdleCloseGrace
	if grace <= 0 {
		grace = defaultIdleCloseGrace
	}
	p.idleCloseTimer = p.scheduler.Schedule(grace, func() {
		p.doAsync(p.closeIfIdle)
	})
}

func (p *RealtimeProvider) closeIfIdle() {
	if len(p.subscriptions) != 0 || p.status != socketReady {
		return
	}
	p.transition(eventClosingConnection)
	p.cancelKeepAlive()
	p.generation++
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	p.status = socketClosed
	p.transition(eventClosed)
}

// readLoop owns one connection generation's read side. generation lets a
// stale loop (superseded by a later reconnect) notice it has been retired
// and exit quietly instead of reporting a spurious error.
func (p *RealtimeProvider) readLoop(generation int, conn Conn) {
	for {
		msg := &message.ReceiveMessage{}
		err := read(context.Background(), conn, msg)
		if err != nil {
			p.doAsync(func() {
				if p.generation != generation {
					return
				}
				p.disconnectWithError(errors.Join(ErrRecieveMsg, err))
			})

			return
		}
		p.doAsync(func() {
			if p.generation != generation {
				return
			}
			p.dispatch(msg)
		})
	}
}

// dispatch handles one decoded frame. Runs on the actor.
func (p *RealtimeProvider) dispatch(msg *message.ReceiveMessage) {
	switch msg.Type {
	case message.StartAckType:
		p.handleStartAck(msg.ID)
	case message.DataType:
		p.handleData(msg.ID, msg.Payload)
	case message.ErrorType:
		p.handleError(msg.ID, msg.Payload)
	case message.CompleteType:
		p.handleComplete(msg.ID)
	case message.KeepAliveType:
		p.armKeepAlive()
		p.transition(eventKeepAlive)
	case message.ConnectionAckType, message.ConnectionErrType:
		// Only expected during the handshake, handled in dialAndHandshake.
	}
}

func (p *RealtimeProvider) handleStartAck(id string) {
	entry, found := p.subscriptions[id]
	if !found {
		return
	}
	if entry.startAckTimer != nil {
		entry.startAckTimer.Cancel()
		entry.startAckTimer = nil
	}
	entry.state = subConnected
	releaseWaiters(entry)
	p.publisher.publishSubscriptionAck(entry.query, entry.variables)
}

func (p *RealtimeProvider) handleData(id string, payload *message.ReceivePayload) {
	entry, found := p.subscriptions[id]
	if !found || entry.state != subConnected || payload == nil {
		return
	}
	entry.observer.Next(payload.Data)
}

func (p *RealtimeProvider) handleError(id string, payload *message.ReceivePayload) {
	entry, found := p.subscriptions[id]
	if !found {
		return
	}
	var errs []message.GraphQLError
	if payload != nil {
		errs = payload.Errors
	}
	p.failLocked(entry, serverError(ErrSubscriptionFailed, errs))
}

func (p *RealtimeProvider) handleComplete(id string) {
	entry, found := p.subscriptions[id]
	if !found {
		return
	}
	entry.observer.Complete()
	releaseWaiters(entry)
	delete(p.subscriptions, id)
	p.scheduleIdleCloseCheck()
}

type connReader struct {
	conn Conn
	ctx  context.Context //nolint: containedctx
}

func (c *connReader) Read(p []byte) (int, error) {
	return c.conn.Read(c.ctx, p)
}

func read(ctx context.Context, conn Conn, msg any) error {
	reader := &connReader{conn: conn, ctx: ctx}
	msgJSON, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	return json.Unmarshal(msgJSON, msg)
}

func write(ctx context.Context, conn Conn, msg any) error {
	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return errors.Join(ErrMarshalMsg, err)
	}
	_, err = conn.Write(ctx, msgJSON)

	return err
}
