package appsync

import "errors"

// Possible errors returned from creation or usage of the RealtimeProvider.
var (
	ErrContextEnded         = errors.New("context ended")
	ErrHandshakeRejected    = errors.New("handshake closed before connection_ack")
	ErrHandshakeTimeout     = errors.New("timed out waiting for connection_ack")
	ErrIDExists             = errors.New("subscription id already registered")
	ErrKeepAliveTimeout     = errors.New("no keep-alive received within the connection timeout")
	ErrMarshalMsg           = errors.New("failed to marshal message")
	ErrNonRetryable         = errors.New("non-retryable handshake error")
	ErrProviderClosed       = errors.New("provider is closed")
	ErrRecieveMsg           = errors.New("failed to receive message")
	ErrServerMsg            = errors.New("server returned error")
	ErrStartAckTimeout      = errors.New("timed out waiting for start_ack")
	ErrSubscriptionFailed   = errors.New("subscription failed")
	ErrTypeAssertion        = errors.New("failed type assertion")
	ErrUnsupportedMsgFormat = errors.New("unsupported message format")
	ErrValidation           = errors.New("invalid subscribe options")
)
