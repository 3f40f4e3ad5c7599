package appsync

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/brokgo/appsync-realtime-go/appsync/message"
)

// AuthHeaderBuilder is a pure dispatcher from AuthMode to the header shape
// that mode requires (spec.md §4.1). It is modeled as a tagged variant
// (AuthMode) with one build function per arm, not dynamic dispatch through
// an interface hierarchy, since the set of modes is closed and known at
// compile time.
type AuthHeaderBuilder struct {
	config *Config
}

// NewAuthHeaderBuilder creates a builder for config.
func NewAuthHeaderBuilder(config *Config) *AuthHeaderBuilder {
	return &AuthHeaderBuilder{config: config}
}

// Build produces the authorization object for a single frame. canonicalURI
// and payload are only consulted in AWS_IAM mode, where they form the
// synthetic request that gets SigV4-signed.
func (b *AuthHeaderBuilder) Build(ctx context.Context, canonicalURI string, payload []byte) (*message.Authorization, error) {
	host := hostOf(b.config.Endpoint)
	switch b.config.AuthMode {
	case AuthModeAPIKey:
		if b.config.APIKey == "" {
			return nil, ErrValidation
		}

		return &message.Authorization{
			Host:     host,
			XAmzDate: isoCompactUTC(time.Now()),
			XAPIKey:  b.config.APIKey,
		}, nil
	case AuthModeIAM:
		return b.buildIAM(ctx, host, canonicalURI, payload)
	case AuthModeOIDC, AuthModeUserPool:
		token, err := b.bearerToken(ctx)
		if err != nil {
			return nil, err
		}

		return &message.Authorization{Authorization: token, Host: host}, nil
	case AuthModeLambda, AuthModeNone:
		if b.config.AuthToken == "" {
			return nil, ErrValidation
		}

		return &message.Authorization{Authorization: b.config.AuthToken, Host: host}, nil
	default:
		return nil, ErrValidation
	}
}

func (b *AuthHeaderBuilder) buildIAM(ctx context.Context, host, canonicalURI string, payload []byte) (*message.Authorization, error) {
	if b.config.Signer == nil {
		return nil, ErrValidation
	}
	base := map[string]string{
		"accept":       "application/json, text/javascript",
		"content-type": "application/json; charset=UTF-8",
		"host":         host,
	}
	rawURL := "https://" + host + canonicalURI
	signed, err := b.config.Signer.Sign(ctx, http.MethodPost, rawURL, payload, base)
	if err != nil {
		return nil, err
	}

	return &message.Authorization{
		Authorization:     signed["Authorization"],
		Host:              host,
		XAmzDate:          signed["X-Amz-Date"],
		XAmzSecurityToken: signed["X-Amz-Security-Token"],
	}, nil
}

// bearerToken resolves the token used by oidc/userPool modes. An explicit
// AuthToken always wins over the session provider, matching the precedence
// rule in spec.md §4.1 ("if the caller supplied an explicit bearer, it
// takes precedence over any extra-headers Authorization").
func (b *AuthHeaderBuilder) bearerToken(ctx context.Context) (string, error) {
	if b.config.AuthToken != "" {
		return b.config.AuthToken, nil
	}
	if b.config.SessionProvider == nil {
		return "", ErrValidation
	}

	return b.config.SessionProvider.Token(ctx)
}

// authorizationToHeaders flattens an Authorization object into a
// string-keyed map, the representation used to build the handshake's
// base64-encoded "header" query parameter.
func authorizationToHeaders(auth *message.Authorization) map[string]string {
	headers := map[string]string{}
	if auth == nil {
		return headers
	}
	if auth.Authorization != "" {
		headers["Authorization"] = auth.Authorization
	}
	if auth.Host != "" {
		headers["host"] = auth.Host
	}
	if auth.XAmzDate != "" {
		headers["x-amz-date"] = auth.XAmzDate
	}
	if auth.XAmzSecurityToken != "" {
		headers["X-Amz-Security-Token"] = auth.XAmzSecurityToken
	}
	if auth.XAPIKey != "" {
		headers["x-api-key"] = auth.XAPIKey
	}

	return headers
}

// resolveExtraHeaders merges the caller's static extra headers with the
// result of an async extra-headers function, the function's keys winning
// on conflict since it runs closest to send time.
func resolveExtraHeaders(ctx context.Context, static map[string]string, fn ExtraHeadersFunc, url, queryString string) (map[string]string, error) {
	merged := map[string]string{}
	for k, v := range static {
		merged[k] = v
	}
	if fn == nil {
		return merged, nil
	}
	dynamic, err := fn(ctx, url, queryString)
	if err != nil {
		return nil, err
	}
	for k, v := range dynamic {
		merged[k] = v
	}

	return merged, nil
}

// hostOf returns the hostname of the https:// endpoint, per spec.md §6:
// "host must always be present for IAM/SIGV4 and is the hostname of the
// HTTPS endpoint (not the WebSocket host)".
func hostOf(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}

	return parsed.Host
}

func isoCompactUTC(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}
