package sequence

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
	"time"
)

// Pacer throttles the run between steps. It has no effect on the outcome.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NoDelay never waits.
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context) error { return ctx.Err() }

// FixedDelay waits the same duration after every step.
type FixedDelay time.Duration

func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(d))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NewSeed generates a PRNG seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a deterministic generator for seed.
func NewRand(seed int64) *mrand.Rand {
	return mrand.New(mrand.NewSource(seed))
}
