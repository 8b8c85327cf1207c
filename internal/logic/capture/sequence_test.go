package capture

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock advances only when the sequence sleeps or a shot takes time.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

// recordingShooter records the instant of each shot and may fail at one index.
type recordingShooter struct {
	clock   *fakeClock
	cost    map[int]time.Duration
	failAt  int
	shotsAt []time.Time
	indexes []int
}

func (r *recordingShooter) Shoot(i int) (string, error) {
	if r.failAt >= 0 && i == r.failAt {
		return "", errors.New("read failed")
	}
	r.shotsAt = append(r.shotsAt, r.clock.now)
	r.indexes = append(r.indexes, i)
	r.clock.now = r.clock.now.Add(r.cost[i])
	return fmt.Sprintf("frame_%02d", i), nil
}

func newTestSequence(shooter *recordingShooter) *Sequence {
	seq := NewSequence(shooter)
	seq.now = shooter.clock.Now
	seq.sleep = shooter.clock.Sleep
	return seq
}

func TestEffectiveCount(t *testing.T) {
	cases := []struct {
		name                    string
		count, period, duration int
		want                    int
	}{
		{"count only", 8, 150, 0, 8},
		{"duration overrides count", 99, 100, 500, 5},
		{"duration rounds half to even down", 1, 100, 250, 2},
		{"duration rounds half to even up", 1, 100, 350, 4},
		{"duration shorter than period", 8, 1000, 100, 1},
		{"zero count", 0, 100, 0, 1},
		{"negative count", -3, 100, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EffectiveCount(tc.count, tc.period, tc.duration)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestEffectiveCount_DurationWithoutPeriod(t *testing.T) {
	_, err := EffectiveCount(5, 0, 500)
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestRunBurst_FixedSchedule(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	shooter := &recordingShooter{clock: clock, failAt: -1}
	seq := newTestSequence(shooter)

	paths, err := seq.RunBurst(context.Background(), BurstParams{Count: 5, Period: 100 * time.Millisecond})
	require.NoError(t, err)
	require.Equal(t, []string{"frame_00", "frame_01", "frame_02", "frame_03", "frame_04"}, paths)

	t0 := time.Unix(1000, 0)
	for i, at := range shooter.shotsAt {
		require.Equal(t, t0.Add(time.Duration(i)*100*time.Millisecond), at, "shot %d", i)
	}
}

func TestRunBurst_SlowShotDoesNotCompound(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	// Shot 1 takes 250ms: shots 2 and 3 (due at 200ms and 300ms) are late and
	// fire at once, shot 4 is back on its 400ms target.
	shooter := &recordingShooter{
		clock:  clock,
		failAt: -1,
		cost:   map[int]time.Duration{1: 250 * time.Millisecond},
	}
	seq := newTestSequence(shooter)

	_, err := seq.RunBurst(context.Background(), BurstParams{Count: 5, Period: 100 * time.Millisecond})
	require.NoError(t, err)

	t0 := time.Unix(0, 0)
	require.Equal(t, []time.Time{
		t0,
		t0.Add(100 * time.Millisecond),
		t0.Add(350 * time.Millisecond),
		t0.Add(350 * time.Millisecond),
		t0.Add(400 * time.Millisecond),
	}, shooter.shotsAt)
	require.Equal(t, []time.Duration{100 * time.Millisecond, 50 * time.Millisecond}, clock.sleeps)
}

func TestRunBurst_AbortKeepsPartialPaths(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	shooter := &recordingShooter{clock: clock, failAt: 2}
	seq := newTestSequence(shooter)

	paths, err := seq.RunBurst(context.Background(), BurstParams{Count: 5, Period: time.Millisecond})
	require.Error(t, err)
	require.Equal(t, []string{"frame_00", "frame_01"}, paths)
	require.Equal(t, []int{0, 1}, shooter.indexes)
}

func TestRunBurst_AtLeastOneFrame(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	shooter := &recordingShooter{clock: clock, failAt: -1}
	seq := newTestSequence(shooter)

	paths, err := seq.RunBurst(context.Background(), BurstParams{Count: 0, Period: -time.Second})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Empty(t, clock.sleeps)
}

func TestRunBurst_ContextCancellation(t *testing.T) {
	shooter := &recordingShooter{clock: &fakeClock{}, failAt: -1}
	seq := NewSequence(ShooterFunc(func(i int) (string, error) {
		return shooter.Shoot(i)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := seq.RunBurst(ctx, BurstParams{Count: 100, Period: time.Millisecond})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, paths)
}

func TestRunBurst_ContextCancelMidSequence(t *testing.T) {
	shots := 0
	seq := NewSequence(ShooterFunc(func(i int) (string, error) {
		shots++
		return fmt.Sprint(i), nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	paths, err := seq.RunBurst(ctx, BurstParams{Count: 100, Period: 20 * time.Millisecond})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotEmpty(t, paths)
	require.Less(t, shots, 100)
	require.Len(t, paths, shots)
}
