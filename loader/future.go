package loader

import (
	"context"
	"sync"

	"desk-scene/scene"
)

// Result is the outcome of one model load. Exactly one of Node and Err is
// set.
type Result struct {
	Path string
	Node *scene.Node
	Err  error
}

// Future is a single-assignment Result. Continuations registered with Then
// run on whichever goroutine resolves it, which for ModelLoader is the
// dispatcher's.
type Future struct {
	mu      sync.Mutex
	done    chan struct{}
	res     Result
	settled bool
	thens   []func(Result)
}

func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve settles the future. Only the first call has any effect; it
// reports whether this call settled it.
func (f *Future) Resolve(res Result) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.res = res
	f.settled = true
	thens := f.thens
	f.thens = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range thens {
		fn(res)
	}
	return true
}

// Then registers fn to run with the result. If the future has already
// settled fn runs immediately.
func (f *Future) Then(fn func(Result)) *Future {
	f.mu.Lock()
	if !f.settled {
		f.thens = append(f.thens, fn)
		f.mu.Unlock()
		return f
	}
	res := f.res
	f.mu.Unlock()
	fn(res)
	return f
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles or ctx is done.
func (f *Future) Wait(ctx context.Context) (Result, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
