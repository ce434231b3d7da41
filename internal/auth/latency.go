package auth

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Latency simulates backend processing time for an operation.
// Login uses it so that correct and incorrect secrets take about the same time.
type Latency struct {
	Base   time.Duration // Fixed delay
	Jitter time.Duration // Upper bound of an additional random delay
}

// cryptoRandIntn returns a secure random number between 0 and max (exclusive)
func cryptoRandIntn(max int64) (int64, error) {
	if max <= 0 {
		return 0, nil
	}

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return 0, err
	}

	randomValue := binary.BigEndian.Uint64(randomBytes)
	return int64(randomValue % uint64(max)), nil
}

// Duration returns the delay for one call: Base plus a random share of Jitter
func (l Latency) Duration() time.Duration {
	d := l.Base
	if l.Jitter > 0 {
		if n, err := cryptoRandIntn(int64(l.Jitter)); err == nil {
			d += time.Duration(n)
		}
	}
	return d
}

// Wait blocks for Duration or until ctx is done, whichever comes first
func (l Latency) Wait(ctx context.Context) error {
	d := l.Duration()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
