package appsync_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/brokgo/appsync-realtime-go/appsync"
	"github.com/brokgo/appsync-realtime-go/appsync/message"
)

// exampleServer is a Receive/Send-by-error variant of testServer, since
// Example functions have no *testing.T to hand panics off to.
type exampleServer struct {
	clientC chan *message.SendMessage
	serverC chan *message.ReceiveMessage
	errC    chan error
	server  *http.Server
}

func (s *exampleServer) Receive() (*message.SendMessage, error) {
	select {
	case err := <-s.errC:
		return nil, err
	case msg := <-s.clientC:
		return msg, nil
	}
}

func (s *exampleServer) Send(msg *message.ReceiveMessage) error {
	select {
	case err := <-s.errC:
		return err
	case s.serverC <- msg:
	}

	return nil
}

func (s *exampleServer) Shutdown(ctx context.Context) {
	_ = s.server.Shutdown(ctx)
}

func newExampleServer(port string) *exampleServer {
	errC := make(chan error, 8)
	clientC := make(chan *message.SendMessage)
	serverC := make(chan *message.ReceiveMessage)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqCtx := r.Context()
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			errC <- err

			return
		}
		var wg sync.WaitGroup
		wg.Go(func() {
			defer conn.CloseNow() //nolint: errcheck
			for {
				msg := &message.SendMessage{}
				if err := wsjson.Read(reqCtx, conn, msg); err != nil {
					return
				}
				clientC <- msg
			}
		})
		wg.Go(func() {
			defer conn.CloseNow() //nolint: errcheck
			for {
				select {
				case <-reqCtx.Done():
					return
				case msg := <-serverC:
					if err := wsjson.Write(reqCtx, conn, msg); err != nil {
						return
					}
				}
			}
		})
		wg.Wait()
	})
	address := fmt.Sprintf(":%v", port)
	httpServer := &http.Server{Addr: address, Handler: handler} //nolint: gosec
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	return &exampleServer{clientC: clientC, serverC: serverC, errC: errC, server: httpServer}
}

func runExampleSubscribeAPI(server *exampleServer) {
	init, err := server.Receive()
	if err != nil {
		panic(err)
	}
	if init.Type != message.ConnectionInitType {
		panic("expected connection_init")
	}
	if err := server.Send(&message.ReceiveMessage{
		Type:    message.ConnectionAckType,
		Payload: &message.ReceivePayload{ConnectionTimeoutMs: 30000},
	}); err != nil {
		panic(err)
	}
	start, err := server.Receive()
	if err != nil {
		panic(err)
	}
	if start.Type != message.StartType {
		panic("expected start")
	}
	if err := server.Send(&message.ReceiveMessage{ID: start.ID, Type: message.StartAckType}); err != nil {
		panic(err)
	}
	if err := server.Send(&message.ReceiveMessage{
		ID:      start.ID,
		Type:    message.DataType,
		Payload: &message.ReceivePayload{Data: []byte(`{"onCreate":{"id":"eventa"}}`)},
	}); err != nil {
		panic(err)
	}
}

func ExampleRealtimeProvider_Subscribe() {
	port := "8101"
	server := newExampleServer(port)
	defer server.Shutdown(context.Background())
	go runExampleSubscribeAPI(server)

	endpoint := fmt.Sprintf("https://localhost:%v/graphql", port)
	config := appsync.NewAPIKeyConfig(endpoint, "us-east-1", "ab-cdefghijklmnopqrstuvwxyz")
	config.WebSocketScheme = "ws"

	provider := appsync.New(config)
	defer provider.Close() //nolint: errcheck

	dataC := make(chan json.RawMessage, 1)
	observer := appsync.ObserverFunc{
		NextFunc: func(data json.RawMessage) { dataC <- data },
	}
	_, err := provider.Subscribe(appsync.SubscribeOptions{Query: "subscription { onCreate { id } }"}).Activate(observer)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(<-dataC))
	// Output: {"onCreate":{"id":"eventa"}}
}
