/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vahairstudio/site-api/log"
)

func TestLoggingParams_AddTimeSlotDurationInMs(t *testing.T) {
	lp := LoggingParams{}
	lp.AddTimeSlotDurationInMs("acuity_ms", 1*time.Second)
	lp.AddTimeSlotDurationInMs("acuity_ms", 500*time.Millisecond)
	lp.AddTimeSlotDurationInMs("render_ms", 2*time.Millisecond)
	require.Equal(t, loggableIntMap{"acuity_ms": 1500, "render_ms": 2}, lp.timeSlots)
}

func TestLoggingParams_ConcurrentUse(t *testing.T) {
	lp := LoggingParams{}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lp.AddTimeSlotDurationInMs("acuity_ms", time.Millisecond)
			lp.ExtendFields(log.String("cache", "hit"))
		}()
	}
	wg.Wait()
	require.Equal(t, int64(10), lp.timeSlots["acuity_ms"])
	require.Len(t, lp.fields, 10)
}
