// Package globaltime is the process clock. Tests freeze it with SetMockTime.
package globaltime

import (
	"sync/atomic"
	"time"
)

type clockFunc func() time.Time

var clock atomic.Pointer[clockFunc]

func current() clockFunc {
	if fn := clock.Load(); fn != nil {
		return *fn
	}
	return time.Now
}

func Now() time.Time {
	return current()()
}

func UTC() time.Time {
	return Now().UTC()
}

// Since is time.Since against the process clock.
func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}

// SetMockTime pins Now to t until ResetTime.
func SetMockTime(t time.Time) {
	fn := clockFunc(func() time.Time { return t })
	clock.Store(&fn)
}

func ResetTime() {
	clock.Store(nil)
}
