package appsync

import "encoding/json"

// Observer is the sink for a single subscription's events: Next for each
// data frame, then either Error at most once or Complete on a
// server-issued GQL_COMPLETE. When Activate rejects the subscription
// (invalid options or a closed provider), Complete follows the Error; other
// errors end the stream without a Complete.
type Observer interface {
	Next(data json.RawMessage)
	Error(err error)
	Complete()
}

// ObserverFunc adapts up to three closures into an Observer. A nil field is
// a no-op for that event.
type ObserverFunc struct {
	NextFunc     func(json.RawMessage)
	ErrorFunc    func(error)
	CompleteFunc func()
}

func (o ObserverFunc) Next(data json.RawMessage) {
	if o.NextFunc != nil {
		o.NextFunc(data)
	}
}

func (o ObserverFunc) Error(err error) {
	if o.ErrorFunc != nil {
		o.ErrorFunc(err)
	}
}

func (o ObserverFunc) Complete() {
	if o.CompleteFunc != nil {
		o.CompleteFunc()
	}
}

// Subscription is a cold, lazy stream (spec.md §9 Design Notes): building
// one via RealtimeProvider.Subscribe does no socket work. Work begins only
// on Activate, and the returned teardown func tears down exactly once no
// matter how many times it is called.
type Subscription struct {
	provider *RealtimeProvider
	options  SubscribeOptions
}

func newSubscription(provider *RealtimeProvider, options SubscribeOptions) *Subscription {
	return &Subscription{provider: provider, options: options}
}

// Activate registers observer with the provider. The returned teardown func
// unsubscribes and stops further events from reaching observer; it is safe
// to call more than once and from more than one goroutine.
func (s *Subscription) Activate(observer Observer) (teardown func(), err error) {
	return s.provider.activate(s.options, observer)
}
