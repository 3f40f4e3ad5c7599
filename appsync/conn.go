package appsync

import (
	"context"
	"io"

	"github.com/coder/websocket"
)

// Conn is the websocket connection used by the provider. Abstracted behind
// an interface so tests can substitute a fake without opening a real
// socket.
type Conn interface {
	// Close closes the connection.
	Close() error
	// Read reads data from the connection. Returns io.EOF when it reaches
	// the end of a message.
	Read(ctx context.Context, b []byte) (n int, err error)
	// Write writes data to the connection.
	Write(ctx context.Context, b []byte) (n int, err error)
}

type coderWebSocketConn struct {
	Conn         *websocket.Conn
	danglingRead []byte
}

func (c *coderWebSocketConn) Close() error {
	return c.Conn.Close(websocket.StatusNormalClosure, "")
}

func (c *coderWebSocketConn) closeAbnormal() error {
	return c.Conn.Close(websocket.StatusCode(3001), "handshake failed")
}

func (c *coderWebSocketConn) Read(ctx context.Context, b []byte) (int, error) {
	var currentB []byte
	if len(c.danglingRead) != 0 {
		currentB = c.danglingRead
		c.danglingRead = []byte{}
	} else {
		msgFormat, readB, err := c.Conn.Read(ctx)
		if err != nil {
			return 0, err
		}
		if msgFormat != websocket.MessageText {
			return 0, ErrUnsupportedMsgFormat
		}
		currentB = readB
	}
	copyN := min(len(b), len(currentB))
	copy(b, currentB[:copyN])
	if len(currentB) == copyN {
		return copyN, io.EOF
	}
	c.danglingRead = currentB[copyN:]

	return copyN, nil
}

func (c *coderWebSocketConn) Write(ctx context.Context, b []byte) (int, error) {
	err := c.Conn.Write(ctx, websocket.MessageText, b)
	if err != nil {
		return 0, err
	}

	return len(b), nil
}

func (c *coderWebSocketConn) bufferedAmount() int {
	// coder/websocket does not expose bufferedAmount, so this always
	// reports 0. closeIfIdle does not call it and closes the socket without
	// waiting on pending writes; start and stop frames are written from the
	// calling goroutine, not from the provider's actor goroutine.
	return 0
}

func newCoderWebSocketConn(ctx context.Context, url string, subprotocols []string) (*coderWebSocketConn, error) {
	dialOptions := &websocket.DialOptions{
		Subprotocols: subprotocols,
	}
	conn, _, err := websocket.Dial(ctx, url, dialOptions)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(defaultReadLimitBytes)

	return &coderWebSocketConn{Conn: conn}, nil
}

const defaultReadLimitBytes = 1 << 20
