package choreo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/hanoiarm/pkg/hanoi"
)

func TestEngine_RunFullPlan(t *testing.T) {
	e, pub, _ := newTestEngine(t, testConfig())
	plan := hanoi.Solve(3, hanoi.PegA, hanoi.PegC, hanoi.PegB)

	require.NoError(t, e.Run(context.Background(), plan))

	s := e.State()
	assert.Equal(t, []hanoi.Disk{0, 1, 2}, s.Disks(hanoi.PegC))
	assert.Empty(t, s.Disks(hanoi.PegA))
	assert.Empty(t, s.Disks(hanoi.PegB))

	assert.Len(t, pub.targets(), 56)
	assert.Len(t, pub.hands(), 56)

	// every pose command is immediately followed by its gripper command
	for i, c := range pub.commands {
		if i%2 == 0 {
			assert.NotNil(t, c.Target, "command %d", i)
		} else {
			assert.NotNil(t, c.Hand, "command %d", i)
		}
	}
}

func TestEngine_PublishedCommandsFollowWaypoints(t *testing.T) {
	cfg := testConfig()
	e, pub, _ := newTestEngine(t, cfg)
	plan := hanoi.Solve(3, hanoi.PegA, hanoi.PegC, hanoi.PegB)
	require.NoError(t, e.Run(context.Background(), plan))

	x := NewExpander(cfg)
	s := hanoi.NewState(3, hanoi.PegA)
	var want []Waypoint
	for _, m := range plan {
		wps, err := x.Expand(s, m)
		require.NoError(t, err)
		want = append(want, wps...)
		require.NoError(t, s.Apply(m))
	}

	targets, hands := pub.targets(), pub.hands()
	require.Len(t, targets, len(want))
	for i, w := range want {
		assert.Equal(t, TargetOf(w), targets[i], "waypoint %d", i)
		assert.Equal(t, w.Gripper, hands[i].Width, "waypoint %d", i)
	}
}

func TestEngine_RelocationTiming(t *testing.T) {
	cfg := testConfig()
	e, _, clock := newTestEngine(t, cfg)

	// arm starts over home peg C; A is two slots away
	m := hanoi.Move{Disk: 2, From: hanoi.PegA, To: hanoi.PegC}
	require.NoError(t, e.Relocate(context.Background(), m, FullSpan))

	lift, grip, rot := 5*time.Second, 10*time.Second, 9*time.Second
	want := []time.Duration{2 * rot, lift, grip, lift, 2 * rot, lift, grip, lift}
	assert.Equal(t, want, clock.slept)
	assert.Equal(t, 4*lift+2*grip+4*rot, clock.total())
	assert.Equal(t, clock.total(), e.Elapsed())

	// second move: arm is over C, picks at A (two slots), places at B (one)
	clock.reset()
	m = hanoi.Move{Disk: 1, From: hanoi.PegA, To: hanoi.PegB}
	require.NoError(t, e.Relocate(context.Background(), m, FullSpan))
	assert.Equal(t, 4*lift+2*grip+3*rot, clock.total())
}

func TestEngine_ApproachWithoutTravelStillWaits(t *testing.T) {
	cfg := testConfig()
	cfg.HomePeg = hanoi.PegA
	e, _, clock := newTestEngine(t, cfg)

	m := hanoi.Move{Disk: 2, From: hanoi.PegA, To: hanoi.PegB}
	require.NoError(t, e.Relocate(context.Background(), m, FullSpan))
	assert.Equal(t, 9*time.Second, clock.slept[0])
}

func TestEngine_PartialSpan(t *testing.T) {
	e, pub, _ := newTestEngine(t, testConfig())
	m := hanoi.Move{Disk: 2, From: hanoi.PegA, To: hanoi.PegC}

	require.NoError(t, e.Relocate(context.Background(), m, Span{First: PhaseApproach, Last: PhaseLower}))
	assert.Len(t, pub.targets(), 6)
	assert.Equal(t, []hanoi.Disk{2}, e.State().Disks(hanoi.PegC))

	// gripper is still closed on the disk
	hands := pub.hands()
	assert.Equal(t, 0.018, hands[len(hands)-1].Width)
}

func TestEngine_FinishHeldRelocation(t *testing.T) {
	cfg := testConfig()
	e, pub, clock := newTestEngine(t, cfg)
	m := hanoi.Move{Disk: 2, From: hanoi.PegA, To: hanoi.PegC}
	require.NoError(t, e.Relocate(context.Background(), m, Span{First: PhaseApproach, Last: PhaseLower}))
	clock.reset()

	require.NoError(t, e.Finish(context.Background(), m, Span{First: PhaseRelease, Last: PhaseRetreat}))

	// release at the placement height, then retreat open to the safe height
	targets, hands := pub.targets(), pub.hands()
	require.Len(t, targets, 8)
	assert.InDelta(t, targets[5].Z, targets[6].Z, 1e-9)
	assert.InDelta(t, cfg.ApproachHeight, targets[7].Z, 1e-9)
	assert.Equal(t, cfg.OpenWidth, hands[6].Width)
	assert.Equal(t, cfg.OpenWidth, hands[7].Width)
	assert.Equal(t, []time.Duration{10 * time.Second, 5 * time.Second}, clock.slept)

	// the state is not advanced a second time
	s := e.State()
	assert.Equal(t, []hanoi.Disk{0, 1}, s.Disks(hanoi.PegA))
	assert.Equal(t, []hanoi.Disk{2}, s.Disks(hanoi.PegC))
}

func TestEngine_FinishUnappliedMove(t *testing.T) {
	e, pub, _ := newTestEngine(t, testConfig())

	// disk 2 never left peg A
	err := e.Finish(context.Background(), hanoi.Move{Disk: 2, From: hanoi.PegA, To: hanoi.PegC}, FullSpan)
	require.ErrorIs(t, err, hanoi.ErrInvalidOperation)
	assert.Empty(t, pub.commands)
}

func TestEngine_InvalidPlanPublishesNothing(t *testing.T) {
	e, pub, clock := newTestEngine(t, testConfig())
	plan := hanoi.Plan{
		{Disk: 2, From: hanoi.PegA, To: hanoi.PegC},
		{Disk: 1, From: hanoi.PegA, To: hanoi.PegC}, // onto smaller disk
	}

	err := e.Run(context.Background(), plan)
	require.ErrorIs(t, err, hanoi.ErrInvalidOperation)
	assert.Empty(t, pub.commands)
	assert.Empty(t, clock.slept)
	assert.True(t, e.State().Equal(hanoi.NewState(3, hanoi.PegA)))
}

func TestEngine_RelocateFromEmptyPeg(t *testing.T) {
	e, pub, _ := newTestEngine(t, testConfig())

	err := e.Relocate(context.Background(), hanoi.Move{Disk: 2, From: hanoi.PegB, To: hanoi.PegC}, FullSpan)
	require.ErrorIs(t, err, hanoi.ErrInvalidOperation)
	assert.Empty(t, pub.commands)
}

func TestEngine_ChannelUnavailable(t *testing.T) {
	pub := &recordingPublisher{failAfter: 5, err: ErrChannelUnavailable}
	e, err := NewEngine(testConfig(), pub, WithClock(&fakeClock{}))
	require.NoError(t, err)

	err = e.Run(context.Background(), hanoi.Solve(3, hanoi.PegA, hanoi.PegC, hanoi.PegB))
	require.ErrorIs(t, err, ErrChannelUnavailable)
	assert.Len(t, pub.commands, 5)

	// the interrupted relocation never advanced the stack state
	assert.True(t, e.State().Equal(hanoi.NewState(3, hanoi.PegA)))
}

func TestEngine_NilPublisher(t *testing.T) {
	_, err := NewEngine(testConfig(), nil)
	assert.ErrorIs(t, err, ErrChannelUnavailable)
}

func TestEngine_InvalidStartState(t *testing.T) {
	_, err := NewEngine(testConfig(), &recordingPublisher{},
		WithState(hanoi.StateOf([]hanoi.Disk{1, 0}, []hanoi.Disk{2}, nil)))
	assert.Error(t, err)
}

func TestEngine_CancelStopsBetweenWaypoints(t *testing.T) {
	e, pub, _ := newTestEngine(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Run(ctx, hanoi.Solve(3, hanoi.PegA, hanoi.PegC, hanoi.PegB))
	require.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, pub.commands, 2, "the first waypoint was already sent when the wait was cancelled")
}

// laggingArm simulates an arm that needs longer than the settle delay to
// finish each motion. The engine has no way to notice.
type laggingArm struct {
	clock    *fakeClock
	motion   time.Duration
	busyTill time.Duration
	overrun  int
}

func (l *laggingArm) PublishTarget(context.Context, Target) error {
	now := l.clock.total()
	if now < l.busyTill {
		l.overrun++
	}
	l.busyTill = now + l.motion
	return nil
}

func (l *laggingArm) PublishHand(context.Context, HandPos) error { return nil }

func TestEngine_OpenLoopIgnoresSlowMotion(t *testing.T) {
	clock := &fakeClock{}
	arm := &laggingArm{clock: clock, motion: time.Minute}
	e, err := NewEngine(testConfig(), arm, WithClock(clock))
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background(), hanoi.Solve(3, hanoi.PegA, hanoi.PegC, hanoi.PegB)))

	// every command after the first was issued while the arm was still moving,
	// and the run still reports success
	assert.Equal(t, 55, arm.overrun)
}

type countingObserver struct {
	waypoints int
	moves     []hanoi.Move
}

func (c *countingObserver) Waypoint(Waypoint, time.Duration)  { c.waypoints++ }
func (c *countingObserver) Relocated(m hanoi.Move, _ hanoi.State) { c.moves = append(c.moves, m) }
func (c *countingObserver) CycleDone(int)                      {}

func TestEngine_Observer(t *testing.T) {
	obs := &countingObserver{}
	e, _, _ := newTestEngine(t, testConfig(), WithObserver(obs))
	plan := hanoi.Solve(3, hanoi.PegA, hanoi.PegC, hanoi.PegB)

	require.NoError(t, e.Run(context.Background(), plan))
	assert.Equal(t, 56, obs.waypoints)
	assert.Equal(t, []hanoi.Move(plan), obs.moves)
}

func TestEngine_Home(t *testing.T) {
	e, pub, clock := newTestEngine(t, testConfig())
	require.NoError(t, e.Home(context.Background()))

	require.Len(t, pub.targets(), 1)
	assert.InDelta(t, 0.336, pub.targets()[0].X, 1e-9)
	assert.Equal(t, []time.Duration{5 * time.Second}, clock.slept)
}
