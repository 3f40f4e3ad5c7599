// Package message contains the wire message shapes exchanged with AWS
// AppSync over the GraphQL-over-WebSocket ("graphql-ws") realtime protocol.
// See https://docs.aws.amazon.com/appsync/latest/devguide/real-time-websocket-client.html
// for the protocol this package encodes.
package message

import "encoding/json"

// SendType is the message types sent to the Appsync realtime server.
type SendType string

const (
	ConnectionInitType SendType = "connection_init"
	StartType          SendType = "start"
	StopType           SendType = "stop"
)

// Authorization contains the per-mode authorization header object embedded
// in the handshake query string and in each start frame's
// extensions.authorization. See
// https://docs.aws.amazon.com/appsync/latest/eventapi/event-api-websocket-protocol.html#authorization-formatting-by-mode
// for the header shape expected per authorization mode.
type Authorization struct {
	Authorization     string `json:"authorization,omitempty"`
	Host              string `json:"host,omitempty"`
	XAmzDate          string `json:"x-amz-date,omitempty"`
	XAmzSecurityToken string `json:"x-amz-security-token,omitempty"`
	XAPIKey           string `json:"x-api-key,omitempty"`
}

// Equal reports whether a and b carry the same authorization fields.
func (a *Authorization) Equal(b *Authorization) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Authorization == b.Authorization &&
		a.Host == b.Host &&
		a.XAmzDate == b.XAmzDate &&
		a.XAmzSecurityToken == b.XAmzSecurityToken &&
		a.XAPIKey == b.XAPIKey
}

// StartExtensions carries the authorization used for a single subscription.
type StartExtensions struct {
	Authorization *Authorization `json:"authorization,omitempty"`
}

// StartPayload is the payload of a start frame; Data is the JSON-encoded
// {query, variables} object.
type StartPayload struct {
	Data       string          `json:"data"`
	Extensions StartExtensions `json:"extensions,omitempty"`
}

// SendMessage is a message sent to the Appsync realtime server.
type SendMessage struct {
	ID      string        `json:"id,omitempty"`
	Payload *StartPayload `json:"payload,omitempty"`
	Type    SendType      `json:"type"`
}

// Equal reports whether m and o carry the same send-message fields.
func (m *SendMessage) Equal(o *SendMessage) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Type != o.Type || m.ID != o.ID {
		return false
	}
	if (m.Payload == nil) != (o.Payload == nil) {
		return false
	}
	if m.Payload == nil {
		return true
	}

	return m.Payload.Data == o.Payload.Data && m.Payload.Extensions.Authorization.Equal(o.Payload.Extensions.Authorization)
}

// ReceiveType is the message types that can be received from the Appsync
// realtime server.
type ReceiveType string

const (
	ConnectionAckType ReceiveType = "connection_ack"
	ConnectionErrType ReceiveType = "connection_error"
	StartAckType      ReceiveType = "start_ack"
	DataType          ReceiveType = "data"
	ErrorType         ReceiveType = "error"
	CompleteType      ReceiveType = "complete"
	KeepAliveType     ReceiveType = "ka"
)

// GraphQLError is a single GraphQL-shaped error, as embedded in error and
// connection_error payloads.
type GraphQLError struct {
	ErrorCode int    `json:"errorCode,omitempty"`
	ErrorType string `json:"errorType,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ReceivePayload is the payload of a message received from the server. Its
// fields are a union across every receive type; unused fields are omitted.
type ReceivePayload struct {
	ConnectionTimeoutMs int             `json:"connectionTimeoutMs,omitempty"`
	Data                json.RawMessage `json:"data,omitempty"`
	Errors              []GraphQLError  `json:"errors,omitempty"`
}

// ReceiveMessage is a message received from the Appsync realtime server.
type ReceiveMessage struct {
	ID      string          `json:"id,omitempty"`
	Payload *ReceivePayload `json:"payload,omitempty"`
	Type    ReceiveType     `json:"type"`
}
