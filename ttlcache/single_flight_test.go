/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ttlcache

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFlightGroup_Do(t *testing.T) {
	t.Run("result is returned to the caller", func(t *testing.T) {
		var g flightGroup[string]
		val, err, shared := g.Do(context.Background(), "k", func() (string, error) { return "v", nil })
		require.NoError(t, err)
		require.Equal(t, "v", val)
		require.False(t, shared)
		require.Empty(t, g.flights)
	})

	t.Run("waiter gets leader's result", func(t *testing.T) {
		var g flightGroup[string]
		gate := make(chan struct{})
		leaderStarted := make(chan struct{})
		go func() {
			_, _, _ = g.Do(context.Background(), "k", func() (string, error) {
				close(leaderStarted)
				<-gate
				return "", errors.New("upstream down")
			})
		}()
		<-leaderStarted

		go func() {
			time.Sleep(20 * time.Millisecond)
			close(gate)
		}()
		_, err, shared := g.Do(context.Background(), "k", func() (string, error) {
			t.Error("waiter must not run its own function")
			return "", nil
		})
		require.EqualError(t, err, "upstream down")
		require.True(t, shared)
	})

	t.Run("panic is re-raised for the leader and reported to waiters", func(t *testing.T) {
		var g flightGroup[string]
		gate := make(chan struct{})
		leaderStarted := make(chan struct{})
		leaderPanic := make(chan interface{}, 1)
		go func() {
			defer func() { leaderPanic <- recover() }()
			_, _, _ = g.Do(context.Background(), "k", func() (string, error) {
				close(leaderStarted)
				<-gate
				panic("broken transform")
			})
		}()
		<-leaderStarted

		go func() {
			time.Sleep(20 * time.Millisecond)
			close(gate)
		}()
		_, err, _ := g.Do(context.Background(), "k", func() (string, error) { return "", nil })
		var panicErr *PanicError
		require.ErrorAs(t, err, &panicErr)
		require.Equal(t, "broken transform", panicErr.Value)
		require.Equal(t, "broken transform", <-leaderPanic)
		require.Empty(t, g.flights)
	})

	t.Run("goexit is reported to waiters", func(t *testing.T) {
		var g flightGroup[string]
		gate := make(chan struct{})
		leaderStarted := make(chan struct{})
		go func() {
			_, _, _ = g.Do(context.Background(), "k", func() (string, error) {
				close(leaderStarted)
				<-gate
				runtime.Goexit()
				return "", nil
			})
		}()
		<-leaderStarted

		go func() {
			time.Sleep(20 * time.Millisecond)
			close(gate)
		}()
		_, err, _ := g.Do(context.Background(), "k", func() (string, error) { return "", nil })
		require.ErrorIs(t, err, ErrGoexit)
	})
}
