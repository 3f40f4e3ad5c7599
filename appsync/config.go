package appsync

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// AuthMode selects the AuthHeaderBuilder arm used for the handshake and for
// each subscription's start frame. See
// https://docs.aws.amazon.com/appsync/latest/devguide/security-authz.html.
type AuthMode string

const (
	AuthModeAPIKey   AuthMode = "API_KEY"
	AuthModeIAM      AuthMode = "AWS_IAM"
	AuthModeOIDC     AuthMode = "OPENID_CONNECT"
	AuthModeUserPool AuthMode = "AMAZON_COGNITO_USER_POOLS"
	AuthModeLambda   AuthMode = "AWS_LAMBDA"
	AuthModeNone     AuthMode = "AWS_LAMBDA_NONE"
)

// ExtraHeadersFunc is an async supplier of additional headers. For the
// handshake it receives the https:// Endpoint and "{}", and its headers are
// merged into the handshake's header query parameter. For a start frame it
// receives the realtime URL and the JSON-encoded {query, variables} payload;
// there only an "Authorization" entry is used, and only when the auth mode
// produced no bearer. Other keys are not sent with start frames.
type ExtraHeadersFunc func(ctx context.Context, url, queryString string) (map[string]string, error)

// SessionProvider supplies bearer tokens for the oidc and userPool
// authorization modes. Token acquisition itself is out of scope: this
// interface is the seam to an external auth-session provider.
type SessionProvider interface {
	Token(ctx context.Context) (string, error)
}

// Config is the configuration used to dial a RealtimeProvider.
type Config struct {
	// Endpoint is the https:// AppSync GraphQL endpoint.
	Endpoint string
	Region   string
	AuthMode AuthMode

	// WebSocketScheme overrides the "wss" scheme used to derive the realtime
	// URL from Endpoint. Tests point it at "ws" to run against a plain-HTTP
	// fake server; production callers should leave it at the default.
	WebSocketScheme string

	APIKey          string
	AuthToken       string
	SessionProvider SessionProvider
	Signer          Signer

	ExtraHeaders     map[string]string
	ExtraHeadersFunc ExtraHeadersFunc
	UserAgent        string

	Logger    Logger
	EventBus  EventBus
	Scheduler Scheduler

	HandshakeTimeout     time.Duration
	StartAckTimeout      time.Duration
	KeepAliveSoftTimeout time.Duration
	KeepAliveHardTimeout time.Duration
	RetryMaxDelay        time.Duration
	NonRetryableCodes    map[int]struct{}

	// IdleCloseGrace is how long the provider waits, after the subscription
	// table empties, before closing the socket (spec.md §4.3). Tests shrink
	// this to avoid a real-time sleep; production callers should leave it at
	// the default.
	IdleCloseGrace time.Duration
}

const (
	defaultHandshakeTimeout     = 15 * time.Second
	defaultStartAckTimeout      = 15 * time.Second
	defaultKeepAliveHardTimeout = 5 * time.Minute
	defaultKeepAliveSoftTimeout = 2 * time.Minute
	defaultRetryMaxDelay        = 30 * time.Second
	defaultIdleCloseGrace       = 1 * time.Second
)

// defaultNonRetryableCodes is the set of AppSync connection_error codes
// that abort retry after a single attempt: authorization-class failures
// that will not resolve by retrying the same credentials.
func defaultNonRetryableCodes() map[int]struct{} {
	return map[int]struct{}{
		400: {},
		401: {},
		403: {},
	}
}

func newConfig(endpoint, region string, authMode AuthMode) *Config {
	return &Config{
		Endpoint:             endpoint,
		Region:               region,
		AuthMode:             authMode,
		WebSocketScheme:      "wss",
		HandshakeTimeout:     defaultHandshakeTimeout,
		StartAckTimeout:      defaultStartAckTimeout,
		KeepAliveHardTimeout: defaultKeepAliveHardTimeout,
		KeepAliveSoftTimeout: defaultKeepAliveSoftTimeout,
		RetryMaxDelay:        defaultRetryMaxDelay,
		NonRetryableCodes:    defaultNonRetryableCodes(),
		IdleCloseGrace:       defaultIdleCloseGrace,
	}
}

// NewAPIKeyConfig creates a config for apiKey authentication.
func NewAPIKeyConfig(endpoint, region, apiKey string) *Config {
	config := newConfig(endpoint, region, AuthModeAPIKey)
	config.APIKey = apiKey

	return config
}

// NewIAMConfig creates a config for AWS_IAM (SigV4) authentication, signing
// with credentialsProvider via the default SigV4Signer. Set Config.Signer
// after construction to use a different signer.
func NewIAMConfig(endpoint, region string, credentialsProvider aws.CredentialsProvider) *Config {
	config := newConfig(endpoint, region, AuthModeIAM)
	config.Signer = NewSigV4Signer(credentialsProvider, region)

	return config
}

// NewOIDCConfig creates a config for OpenID Connect authentication.
func NewOIDCConfig(endpoint, region string, sessionProvider SessionProvider) *Config {
	config := newConfig(endpoint, region, AuthModeOIDC)
	config.SessionProvider = sessionProvider

	return config
}

// NewUserPoolConfig creates a config for Amazon Cognito user pool authentication.
func NewUserPoolConfig(endpoint, region string, sessionProvider SessionProvider) *Config {
	config := newConfig(endpoint, region, AuthModeUserPool)
	config.SessionProvider = sessionProvider

	return config
}

// NewLambdaConfig creates a config for AWS_LAMBDA authentication.
func NewLambdaConfig(endpoint, region, authToken string) *Config {
	config := newConfig(endpoint, region, AuthModeLambda)
	config.AuthToken = authToken

	return config
}

// NewNoneConfig creates a config for an unauthenticated endpoint that still
// requires a caller-supplied bearer token out of band (e.g. a custom
// domain in front of a NONE-auth API protected at another layer).
func NewNoneConfig(endpoint, region, authToken string) *Config {
	config := newConfig(endpoint, region, AuthModeNone)
	config.AuthToken = authToken

	return config
}

// SubscribeOptions configures a single logical subscription.
type SubscribeOptions struct {
	Query            string
	Variables        map[string]any
	ExtraHeaders     map[string]string
	ExtraHeadersFunc ExtraHeadersFunc
}

func (o *SubscribeOptions) validate() error {
	if o.Query == "" {
		return ErrValidation
	}

	return nil
}
