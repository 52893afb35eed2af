/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package shardedcache

import (
	"bytes"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// ErrGoexit is reported to waiting callers when the value provider
// terminates via runtime.Goexit (for example, by calling t.Fatal).
var ErrGoexit = errors.New("runtime.Goexit was called")

// PanicError wraps the value recovered from a panic in the value provider
// together with the stack trace of the panicking goroutine.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("%v\n\n%s", p.Value, p.Stack)
}

// Unwrap returns the panic value if it was an error.
func (p *PanicError) Unwrap() error {
	err, ok := p.Value.(error)
	if !ok {
		return nil
	}
	return err
}

func newPanicError(v interface{}) error {
	stack := debug.Stack()

	// Discard the first line of the stack trace ("goroutine N [status]:").
	// The status is stale by the time waiters see the error.
	if line := bytes.IndexByte(stack, '\n'); line >= 0 {
		stack = stack[line+1:]
	}
	return &PanicError{Value: v, Stack: stack}
}

// inflightCall is a single execution of the value provider.
// Callers that join the call wait on wg and then read val and err.
type inflightCall[V any] struct {
	wg  sync.WaitGroup
	val V
	err error
}

// inflightGroup deduplicates concurrent calls by key: the first caller
// for a key runs fn, the rest wait for it and receive the same result.
// A completed call is forgotten, so a later Do for the same key runs fn again.
type inflightGroup[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*inflightCall[V]
}

// Do runs fn once per key at a time and returns its result.
// Callers arriving while a call for the same key is in flight
// do not run fn and share the result of the running call.
func (g *inflightGroup[K, V]) Do(key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*inflightCall[V])
	}
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err
	}
	c := &inflightCall[V]{}
	c.wg.Add(1)
	g.m[key] = c
	g.mu.Unlock()

	return g.run(c, key, fn)
}

// run executes fn and publishes its outcome to all waiters.
// Telling a panic in fn apart from runtime.Goexit takes two defers:
// recover returns nil on Goexit, so a call that neither returned
// normally nor recovered a panic value must be exiting.
func (g *inflightGroup[K, V]) run(c *inflightCall[V], key K, fn func() (V, error)) (val V, err error) {
	returned := false
	panicked := false

	defer func() {
		if !returned && !panicked {
			c.err = ErrGoexit
		}

		c.wg.Done()

		g.mu.Lock()
		delete(g.m, key)
		g.mu.Unlock()

		if panicked {
			// re-panic on the caller's goroutine; waiters get the error form
			panic(c.err.(*PanicError).Value)
		}

		val, err = c.val, c.err
	}()

	defer func() {
		if !returned {
			if v := recover(); v != nil {
				c.err = newPanicError(v)
				panicked = true
			}
		}
	}()
	c.val, c.err = fn()
	returned = true

	return c.val, c.err // overwritten in the first defer
}
