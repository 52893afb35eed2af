/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package shardedcache

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestInflightGroup(t *testing.T) {
	const callers = 8

	t.Run("distinct keys run their own calls", func(t *testing.T) {
		var group inflightGroup[int, string]
		calls := atomic.NewInt32(0)

		values := make([]string, callers)
		errs := make([]error, callers)
		wait := startCallers(callers, func(i int) {
			values[i], errs[i] = group.Do(i, func() (string, error) {
				calls.Inc()
				time.Sleep(10 * time.Millisecond)
				return fmt.Sprintf("value-%d", i), nil
			})
		})
		wait()

		require.Equal(t, int32(callers), calls.Load())
		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			require.Equal(t, fmt.Sprintf("value-%d", i), values[i])
		}
	})

	t.Run("concurrent callers share one call", func(t *testing.T) {
		var group inflightGroup[string, string]
		calls := atomic.NewInt32(0)
		release := make(chan struct{})

		values := make([]string, callers)
		errs := make([]error, callers)
		wait := startCallers(callers, func(i int) {
			values[i], errs[i] = group.Do("profile:42", func() (string, error) {
				calls.Inc()
				<-release
				return "Ann Smith", nil
			})
		})
		time.Sleep(50 * time.Millisecond)
		close(release)
		wait()

		require.Equal(t, int32(1), calls.Load())
		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			require.Equal(t, "Ann Smith", values[i])
		}
	})

	t.Run("provider error is shared", func(t *testing.T) {
		var group inflightGroup[string, int]
		calls := atomic.NewInt32(0)
		errProviderDown := errors.New("backend is down")
		release := make(chan struct{})

		errs := make([]error, callers)
		wait := startCallers(callers, func(i int) {
			_, errs[i] = group.Do("profile:42", func() (int, error) {
				calls.Inc()
				<-release
				return 0, errProviderDown
			})
		})
		time.Sleep(50 * time.Millisecond)
		close(release)
		wait()

		require.Equal(t, int32(1), calls.Load())
		for i := 0; i < callers; i++ {
			require.ErrorIs(t, errs[i], errProviderDown)
		}
	})

	t.Run("new flight after completion", func(t *testing.T) {
		var group inflightGroup[string, int]
		calls := atomic.NewInt32(0)

		fn := func() (int, error) {
			return int(calls.Inc()), nil
		}

		value, err := group.Do("stats", fn)
		require.NoError(t, err)
		require.Equal(t, 1, value)

		// The completed flight must be forgotten, so the next call executes fn again.
		value, err = group.Do("stats", fn)
		require.NoError(t, err)
		require.Equal(t, 2, value)
	})

	t.Run("panic in provider", func(t *testing.T) {
		var group inflightGroup[string, int]
		calls := atomic.NewInt32(0)
		release := make(chan struct{})

		type outcome struct {
			panicked   bool
			panicValue interface{}
			err        error
		}
		outcomes := make(chan outcome, callers)

		wait := startCallers(callers, func(int) {
			var out outcome
			func() {
				defer func() {
					if v := recover(); v != nil {
						out.panicked = true
						out.panicValue = v
					}
				}()
				_, out.err = group.Do("profile:13", func() (int, error) {
					calls.Inc()
					<-release
					panic("provider exploded")
				})
			}()
			outcomes <- out
		})
		time.Sleep(50 * time.Millisecond)
		close(release)
		wait()
		close(outcomes)

		require.Equal(t, int32(1), calls.Load())

		// The caller that executed the provider re-panics with the original value,
		// the waiting ones get a PanicError.
		panicked := 0
		for out := range outcomes {
			if out.panicked {
				panicked++
				require.Equal(t, "provider exploded", out.panicValue)
				continue
			}
			var panicErr *PanicError
			require.ErrorAs(t, out.err, &panicErr)
			require.Equal(t, "provider exploded", panicErr.Value)
		}
		require.Equal(t, 1, panicked)
	})

	t.Run("runtime.Goexit in provider", func(t *testing.T) {
		var group inflightGroup[string, int]
		calls := atomic.NewInt32(0)
		release := make(chan struct{})

		errs := make(chan error, callers)

		wait := startCallers(callers, func(int) {
			_, err := group.Do("profile:13", func() (int, error) {
				calls.Inc()
				<-release
				runtime.Goexit()
				return 0, nil
			})
			errs <- err
		})
		time.Sleep(50 * time.Millisecond)
		close(release)
		wait()
		close(errs)

		require.Equal(t, int32(1), calls.Load())

		// The caller that executed the provider exits with its goroutine
		// and never reports back, the waiting ones get ErrGoexit.
		finished := 0
		for err := range errs {
			finished++
			require.ErrorIs(t, err, ErrGoexit)
		}
		require.Equal(t, callers-1, finished)
	})
}

func startCallers(n int, call func(i int)) (wait func()) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			call(i)
		}(i)
	}
	return wg.Wait
}
