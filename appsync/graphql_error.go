package appsync

import (
	"encoding/json"
	"errors"

	"github.com/brokgo/appsync-realtime-go/appsync/message"
)

// SubscriptionError is the GraphQL-shaped error surfaced to an observer for
// ValidationError, AuthError and SubscriptionStartError (spec.md §7).
type SubscriptionError struct {
	Wrapped error
	Errors  []message.GraphQLError
}

func (e *SubscriptionError) Error() string {
	if len(e.Errors) == 0 {
		if e.Wrapped != nil {
			return e.Wrapped.Error()
		}

		return "subscription error"
	}
	b, err := json.Marshal(e.Errors)
	if err != nil {
		return e.Wrapped.Error()
	}

	return string(b)
}

func (e *SubscriptionError) Unwrap() error { return e.Wrapped }

func validationError(err error) *SubscriptionError {
	return &SubscriptionError{
		Wrapped: errors.Join(ErrValidation, err),
		Errors:  []message.GraphQLError{{Message: err.Error()}},
	}
}

func serverError(wrapped error, errs []message.GraphQLError) *SubscriptionError {
	return &SubscriptionError{Wrapped: wrapped, Errors: errs}
}

func connectionErrorFromAck(ack *message.ReceiveMessage) error {
	if ack.Payload == nil || len(ack.Payload.Errors) == 0 {
		return ErrHandshakeRejected
	}

	return serverError(errors.Join(ErrHandshakeRejected, ErrServerMsg), ack.Payload.Errors)
}
