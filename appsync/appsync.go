// Package appsync is a client-side realtime subscription provider for AWS
// AppSync's GraphQL-over-WebSocket protocol. See
// https://docs.aws.amazon.com/appsync/latest/devguide/real-time-websocket-client.html.
//
// A RealtimeProvider multiplexes any number of logical GraphQL
// subscriptions over one shared WebSocket, negotiates pluggable
// per-subscription authorization, observes connection health via
// keep-alive, and reconnects on disruption with bounded jittered retry.
// Callers never see the underlying socket: they get a RealtimeProvider,
// call Subscribe to obtain a lazy Subscription, and Activate it with an
// Observer.
package appsync

import "context"

// Dial creates a RealtimeProvider for config and resolves once the socket
// has completed its first handshake, surfacing any handshake error up
// front instead of deferring it to the first Subscription's activation.
// Most callers should prefer New, which dials lazily on first use.
func Dial(ctx context.Context, config *Config) (*RealtimeProvider, error) {
	provider := New(config)
	if err := provider.ensureSocketReady(ctx); err != nil {
		_ = provider.Close()

		return nil, err
	}

	return provider, nil
}
