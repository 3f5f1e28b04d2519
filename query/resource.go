package query

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-blog-client/apiclient"
)

// State is a snapshot of a resource: the latest data, whether a fetch is in
// progress and the message of the last failure.
type State[T any] struct {
	Data    T
	Loading bool
	Err     string
}

// FetchFunc loads the resource.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Resource holds the result of the latest fetch of a server resource. It is
// a cache of that fetch, nothing more; Refetch replaces it.
type Resource[T any] struct {
	fetch        FetchFunc[T]
	resetOnError bool
	messageFn    func(error) string

	lock  sync.RWMutex
	state State[T]
	seq   uint64
}

type Option func(*options)

type options struct {
	resetOnError bool
	messageFn    func(error) string
}

// ResetOnError clears the data when a fetch fails instead of keeping the
// previous result.
func ResetOnError() Option {
	return func(o *options) { o.resetOnError = true }
}

// WithMessage sets how errors are turned into the stored message.
func WithMessage(fn func(error) string) Option {
	return func(o *options) { o.messageFn = fn }
}

func NewResource[T any](fetch FetchFunc[T], opts ...Option) *Resource[T] {
	o := options{messageFn: apiclient.ErrorMessage}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resource[T]{fetch: fetch, resetOnError: o.resetOnError, messageFn: o.messageFn}
}

func (r *Resource[T]) State() State[T] {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.state
}

// Fetch loads the resource once; later calls return the stored state.
func (r *Resource[T]) Fetch(ctx context.Context) State[T] {
	r.lock.RLock()
	loaded := r.seq > 0
	r.lock.RUnlock()
	if loaded {
		return r.State()
	}
	return r.Refetch(ctx)
}

// Refetch always loads. When fetches overlap the newest one wins.
func (r *Resource[T]) Refetch(ctx context.Context) State[T] {
	r.lock.Lock()
	r.seq++
	seq := r.seq
	r.state.Loading = true
	r.state.Err = ""
	r.lock.Unlock()

	data, err := r.fetch(ctx)

	r.lock.Lock()
	defer r.lock.Unlock()
	if seq != r.seq {
		// A newer fetch started; its result is the one to keep.
		return r.state
	}
	r.state.Loading = false
	if err != nil {
		r.state.Err = r.messageFn(err)
		if r.resetOnError {
			var zero T
			r.state.Data = zero
		}
		return r.state
	}
	r.state.Data = data
	return r.state
}
