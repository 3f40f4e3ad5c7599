package appsync_test

import (
	"testing"
	"time"

	"github.com/brokgo/appsync-realtime-go/appsync"
)

func TestSubscribeOptionsValidateRejectsEmptyQuery(t *testing.T) {
	t.Parallel()
	provider := appsync.New(appsync.NewAPIKeyConfig("https://api.example.com/graphql", "us-east-1", "key"))
	defer provider.Close() //nolint: errcheck
	observer := newRecordingObserver()
	_, err := provider.Subscribe(appsync.SubscribeOptions{}).Activate(observer)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	select {
	case <-observer.errC:
	case <-time.After(time.Second):
		t.Fatal("expected a validation error for an empty query")
	}
	select {
	case <-observer.completeC:
	case <-time.After(time.Second):
		t.Fatal("expected Complete to follow the validation error")
	}
}

func TestNewConfigConstructorsSetAuthMode(t *testing.T) {
	t.Parallel()
	endpoint := "https://api.example.com/graphql"
	testCases := map[string]struct {
		config   *appsync.Config
		authMode appsync.AuthMode
	}{
		"apiKey":   {config: appsync.NewAPIKeyConfig(endpoint, "us-east-1", "key"), authMode: appsync.AuthModeAPIKey},
		"oidc":     {config: appsync.NewOIDCConfig(endpoint, "us-east-1", nil), authMode: appsync.AuthModeOIDC},
		"userPool": {config: appsync.NewUserPoolConfig(endpoint, "us-east-1", nil), authMode: appsync.AuthModeUserPool},
		"lambda":   {config: appsync.NewLambdaConfig(endpoint, "us-east-1", "token"), authMode: appsync.AuthModeLambda},
		"none":     {config: appsync.NewNoneConfig(endpoint, "us-east-1", "token"), authMode: appsync.AuthModeNone},
	}
	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if testCase.config.AuthMode != testCase.authMode {
				t.Fatalf("got %v, want %v", testCase.config.AuthMode, testCase.authMode)
			}
			if testCase.config.Endpoint != endpoint {
				t.Fatalf("got endpoint %v, want %v", testCase.config.Endpoint, endpoint)
			}
		})
	}
}
