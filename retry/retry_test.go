/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

var errTemporary = errors.New("temporary")

func TestDoWithRetry(t *testing.T) {
	t.Run("succeeds after retries", func(t *testing.T) {
		calls := 0
		var notified []time.Duration
		err := DoWithRetry(context.Background(), NewConstantBackoffPolicy(time.Millisecond, 5), nil,
			func(_ error, d time.Duration) { notified = append(notified, d) },
			func(ctx context.Context) error {
				calls++
				if calls < 3 {
					return errTemporary
				}
				return nil
			})
		require.NoError(t, err)
		require.Equal(t, 3, calls)
		require.Len(t, notified, 2)
	})

	t.Run("stops after max attempts", func(t *testing.T) {
		calls := 0
		err := DoWithRetry(context.Background(), NewConstantBackoffPolicy(time.Millisecond, 2), nil, nil,
			func(ctx context.Context) error {
				calls++
				return errTemporary
			})
		require.ErrorIs(t, err, errTemporary)
		require.Equal(t, 3, calls)
	})

	t.Run("non-retryable error is returned at once", func(t *testing.T) {
		permanent := errors.New("permanent")
		calls := 0
		err := DoWithRetry(context.Background(), NewConstantBackoffPolicy(time.Millisecond, 5),
			func(err error) bool { return errors.Is(err, errTemporary) }, nil,
			func(ctx context.Context) error {
				calls++
				return permanent
			})
		require.ErrorIs(t, err, permanent)
		require.Equal(t, 1, calls)
	})

	t.Run("canceled context stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := DoWithRetry(ctx, NewConstantBackoffPolicy(time.Millisecond, 0), nil, nil,
			func(ctx context.Context) error {
				calls++
				cancel()
				return errTemporary
			})
		require.Error(t, err)
		require.Equal(t, 1, calls)
	})
}

func TestExponentialBackoffPolicy(t *testing.T) {
	p := ExponentialBackoffPolicy{InitialInterval: 100 * time.Millisecond, Multiplier: 2, MaxAttempts: 3}
	b := p.NewBackOff()
	var delays []time.Duration
	for d := b.NextBackOff(); d != backoff.Stop; d = b.NextBackOff() {
		delays = append(delays, d)
	}
	require.Len(t, delays, 3)
	// Randomization factor is 0.5, so the third delay lies in [200ms, 600ms].
	require.GreaterOrEqual(t, delays[2], 200*time.Millisecond)
	require.LessOrEqual(t, delays[2], 600*time.Millisecond)
}

func TestPolicyFunc(t *testing.T) {
	p := PolicyFunc(func() backoff.BackOff { return &backoff.StopBackOff{} })
	require.Equal(t, backoff.Stop, p.NewBackOff().NextBackOff())
}
