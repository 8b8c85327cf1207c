package capture

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cjeanneret/visionmcp/internal/debug"
)

// ErrInvalidPeriod is returned when a duration-driven burst has no period to divide by.
var ErrInvalidPeriod = errors.New("period_ms must be positive when duration_ms is set")

// Shooter captures and persists frame i of a burst, returning where it was stored.
type Shooter interface {
	Shoot(index int) (string, error)
}

// ShooterFunc adapts a function to Shooter.
type ShooterFunc func(index int) (string, error)

func (f ShooterFunc) Shoot(index int) (string, error) { return f(index) }

// Sequence contains the timing logic for burst capture.
type Sequence struct {
	shooter Shooter

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewSequence(s Shooter) *Sequence {
	return &Sequence{
		shooter: s,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// BurstParams defines a fixed-rate burst.
type BurstParams struct {
	Count  int           // frames to capture; values below 1 capture one frame
	Period time.Duration // spacing between scheduled frames; negative is treated as 0
	Label  string        // prefix for progress logs
}

// EffectiveCount resolves how many frames a burst captures.
// A positive durationMs overrides count with round(durationMs/periodMs),
// rounding half to even, and never less than one frame.
func EffectiveCount(count, periodMs, durationMs int) (int, error) {
	if durationMs > 0 {
		if periodMs <= 0 {
			return 0, ErrInvalidPeriod
		}
		count = int(math.RoundToEven(float64(durationMs) / float64(periodMs)))
	}
	return max(1, count), nil
}

// RunBurst captures p.Count frames on a schedule anchored at the start instant:
// frame i is due at t0 + i*Period. A late frame is taken immediately and does
// not shift the targets of the following frames.
//
// On failure the paths already written are returned along with the error.
func (s *Sequence) RunBurst(ctx context.Context, p BurstParams) ([]string, error) {
	n := max(1, p.Count)
	period := max(0, p.Period)
	paths := make([]string, 0, n)

	t0 := s.now()
	debug.Verbose("%s: %d frames every %v", p.Label, n, period)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return paths, err
		}

		target := t0.Add(time.Duration(i) * period)
		if wait := target.Sub(s.now()); wait > 0 {
			if err := s.sleep(ctx, wait); err != nil {
				return paths, err
			}
		}

		path, err := s.shooter.Shoot(i)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)

		if i == 0 || (i+1)%5 == 0 || i+1 == n {
			debug.Live("%s: capture %d/%d saved %s", p.Label, i+1, n, path)
		}
	}

	return paths, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
