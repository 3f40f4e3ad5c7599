// Command lambda-forwarder is a minimal AWS Lambda handler that dials a
// RealtimeProvider, subscribes once per invocation-scoped context, and
// returns the data frames received within the collection window in its
// response. Every event the provider publishes (ConnectionState changes and
// subscription acknowledgements) is logged to CloudWatch Logs via the Event
// publisher's EventBus seam (appsync.EventBus). It demonstrates the provider
// running inside a short-lived host rather than a long-running process.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/brokgo/appsync-realtime-go/appsync"
)

// cloudWatchEventBus forwards every published Event to the standard logger
// (stderr), which the Lambda runtime ships to CloudWatch Logs without any
// extra wiring.
type cloudWatchEventBus struct{}

func (cloudWatchEventBus) Publish(topic string, event appsync.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("lambda-forwarder: failed to marshal event on %v: %v", topic, err)

		return
	}
	log.Printf("[%v] %s", topic, payload)
}

// Request is the event shape this function accepts.
type Request struct {
	Endpoint string `json:"endpoint"`
	Region   string `json:"region"`
	APIKey   string `json:"apiKey"`
	Query    string `json:"query"`
	// CollectFor bounds how long the function listens for data frames
	// before returning, since a Lambda invocation cannot run forever.
	CollectFor int `json:"collectForSeconds"`
}

// Response is the event shape this function returns.
type Response struct {
	Frames []json.RawMessage `json:"frames"`
}

func handleRequest(ctx context.Context, req Request) (Response, error) {
	if req.Endpoint == "" || req.Query == "" {
		return Response{}, fmt.Errorf("lambda-forwarder: endpoint and query are required")
	}
	collectFor := time.Duration(req.CollectFor) * time.Second
	if collectFor <= 0 {
		collectFor = 5 * time.Second
	}

	config := appsync.NewAPIKeyConfig(req.Endpoint, req.Region, req.APIKey)
	config.EventBus = cloudWatchEventBus{}

	provider, err := appsync.Dial(ctx, config)
	if err != nil {
		return Response{}, fmt.Errorf("lambda-forwarder: dial: %w", err)
	}
	defer provider.Close() //nolint: errcheck

	frames := make(chan json.RawMessage, 32)
	observer := appsync.ObserverFunc{
		NextFunc: func(data json.RawMessage) {
			select {
			case frames <- data:
			default:
			}
		},
	}
	teardown, err := provider.Subscribe(appsync.SubscribeOptions{Query: req.Query}).Activate(observer)
	if err != nil {
		return Response{}, fmt.Errorf("lambda-forwarder: activate: %w", err)
	}
	defer teardown()

	deadline := time.NewTimer(collectFor)
	defer deadline.Stop()

	var collected []json.RawMessage
	for {
		select {
		case frame := <-frames:
			collected = append(collected, frame)
		case <-deadline.C:
			return Response{Frames: collected}, nil
		case <-ctx.Done():
			return Response{Frames: collected}, ctx.Err()
		}
	}
}

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") == "" {
		log.Fatal("lambda-forwarder must run inside the AWS Lambda execution environment")
	}
	lambda.Start(handleRequest)
}
