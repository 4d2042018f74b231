/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ttlcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// ErrGoexit is returned to waiting callers when the shared fetch called runtime.Goexit.
var ErrGoexit = errors.New("runtime.Goexit was called")

// PanicError is returned to waiting callers when the shared fetch panicked.
// The caller that ran the fetch gets the original panic instead.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("%v\n\n%s", p.Value, p.Stack)
}

// Unwrap returns the panic value if it is an error.
func (p *PanicError) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}

func newPanicError(v interface{}) error {
	stack := debug.Stack()
	// The first line ("goroutine N [running]:") describes a goroutine that may already be gone.
	if line := bytes.IndexByte(stack, '\n'); line >= 0 {
		stack = stack[line+1:]
	}
	return &PanicError{Value: v, Stack: stack}
}

type flight[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// flightGroup makes concurrent callers with the same key share one fetch.
// Unlike the classic single-flight group, a waiting caller stops waiting when its context is done.
type flightGroup[V any] struct {
	mu      sync.Mutex
	flights map[string]*flight[V]
}

// Do runs fn for the key unless a call for the same key is already in flight,
// in which case it waits for that call's result. shared reports whether the result came from another caller.
func (g *flightGroup[V]) Do(ctx context.Context, key string, fn func() (V, error)) (val V, err error, shared bool) {
	g.mu.Lock()
	if g.flights == nil {
		g.flights = make(map[string]*flight[V])
	}
	if f, ok := g.flights[key]; ok {
		g.mu.Unlock()
		select {
		case <-f.done:
			return f.val, f.err, true
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err(), true
		}
	}
	f := &flight[V]{done: make(chan struct{})}
	g.flights[key] = f
	g.mu.Unlock()

	val, err = g.run(f, key, fn)
	return val, err, false
}

func (g *flightGroup[V]) run(f *flight[V], key string, fn func() (V, error)) (val V, err error) {
	normalReturn := false
	recovered := false

	// Double defer distinguishes a panic from runtime.Goexit.
	defer func() {
		if !normalReturn && !recovered {
			f.err = ErrGoexit
		}

		g.mu.Lock()
		delete(g.flights, key)
		g.mu.Unlock()
		close(f.done)

		if recovered {
			panic(f.err.(*PanicError).Value)
		}
		val, err = f.val, f.err
	}()

	defer func() {
		if !normalReturn {
			if v := recover(); v != nil {
				f.err = newPanicError(v)
				recovered = true
			}
		}
	}()

	f.val, f.err = fn()
	normalReturn = true
	return f.val, f.err
}
