// Command subscriber dials a real AppSync realtime endpoint from flags and
// prints incoming frames as they arrive, for manual verification against a
// live API (mirroring the demonstration style of
// appsync/example_test.go, promoted to a runnable command).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/brokgo/appsync-realtime-go/appsync"
)

func main() {
	var (
		endpoint  = flag.String("endpoint", "", "AppSync GraphQL endpoint, e.g. https://xxxx.appsync-api.us-east-1.amazonaws.com/graphql")
		region    = flag.String("region", "us-east-1", "AWS region")
		authMode  = flag.String("auth-mode", "apiKey", "apiKey | iam")
		apiKey    = flag.String("api-key", "", "API key, required when -auth-mode=apiKey")
		query     = flag.String("query", "", "GraphQL subscription document")
		accessKey = flag.String("access-key", "", "static AWS access key, required when -auth-mode=iam")
		secretKey = flag.String("secret-key", "", "static AWS secret key, required when -auth-mode=iam")
	)
	flag.Parse()

	if *endpoint == "" || *query == "" {
		fmt.Fprintln(os.Stderr, "usage: subscriber -endpoint <url> -query <subscription> [-auth-mode apiKey -api-key <key> | -auth-mode iam -access-key <key> -secret-key <secret>]")
		os.Exit(2)
	}

	config, err := buildConfig(*endpoint, *region, *authMode, *apiKey, *accessKey, *secretKey)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := appsync.Dial(ctx, config)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer provider.Close() //nolint: errcheck

	observer := appsync.ObserverFunc{
		NextFunc: func(data json.RawMessage) {
			fmt.Println(string(data))
		},
		ErrorFunc: func(err error) {
			log.Printf("subscription error: %v", err)
		},
		CompleteFunc: func() {
			log.Println("subscription completed")
		},
	}

	teardown, err := provider.Subscribe(appsync.SubscribeOptions{Query: *query}).Activate(observer)
	if err != nil {
		log.Fatalf("activate: %v", err)
	}
	defer teardown()

	<-ctx.Done()
}

func buildConfig(endpoint, region, authMode, apiKey, accessKey, secretKey string) (*appsync.Config, error) {
	switch authMode {
	case "apiKey":
		if apiKey == "" {
			return nil, fmt.Errorf("subscriber: -api-key is required for -auth-mode=apiKey")
		}

		return appsync.NewAPIKeyConfig(endpoint, region, apiKey), nil
	case "iam":
		if accessKey == "" || secretKey == "" {
			return nil, fmt.Errorf("subscriber: -access-key and -secret-key are required for -auth-mode=iam")
		}
		staticCreds := credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")

		return appsync.NewIAMConfig(endpoint, region, staticCreds), nil
	default:
		return nil, fmt.Errorf("subscriber: unsupported -auth-mode %q", authMode)
	}
}
