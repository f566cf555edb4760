package lockout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestEvaluate(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name          string
		state         State
		now           time.Time
		wantStatus    Status
		wantRemaining int
	}{
		{name: "no lock", state: State{FailedAttempts: 3}, now: base, wantStatus: StatusOpen},
		{name: "full lock", state: State{LockedUntil: ptr(base.Add(15 * time.Minute))}, now: base, wantStatus: StatusLocked, wantRemaining: 15},
		{name: "partial minute rounds up", state: State{LockedUntil: ptr(base.Add(14*time.Minute + time.Second))}, now: base, wantStatus: StatusLocked, wantRemaining: 15},
		{name: "last second still one minute", state: State{LockedUntil: ptr(base.Add(time.Second))}, now: base, wantStatus: StatusLocked, wantRemaining: 1},
		{name: "expiry instant is expired", state: State{LockedUntil: ptr(base)}, now: base, wantStatus: StatusExpiredLock},
		{name: "past lock", state: State{FailedAttempts: 5, LockedUntil: ptr(base.Add(-time.Minute))}, now: base, wantStatus: StatusExpiredLock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := p.Evaluate(tt.state, tt.now)
			assert.Equal(t, tt.wantStatus, ev.Status)
			assert.Equal(t, tt.wantRemaining, ev.RemainingMinutes)
		})
	}
}

func TestApply_FailureBelowThresholdIncrementsByOne(t *testing.T) {
	p := DefaultPolicy()
	for n := 0; n < 4; n++ {
		next := p.Apply(State{FailedAttempts: n}, OutcomeFailure, base)
		assert.Equal(t, n+1, next.FailedAttempts)
		assert.Nil(t, next.LockedUntil)
	}
}

func TestApply_FifthFailureLocks(t *testing.T) {
	p := DefaultPolicy()
	next := p.Apply(State{FailedAttempts: 4}, OutcomeFailure, base)

	assert.Equal(t, 5, next.FailedAttempts)
	require.NotNil(t, next.LockedUntil)
	assert.True(t, next.LockedUntil.Equal(base.Add(15*time.Minute)))
	assert.Equal(t, 0, p.AttemptsRemaining(next))
}

func TestApply_FailureDuringActiveLockKeepsLock(t *testing.T) {
	p := DefaultPolicy()
	until := base.Add(10 * time.Minute)
	next := p.Apply(State{FailedAttempts: 5, LockedUntil: &until}, OutcomeFailure, base)

	assert.Equal(t, 6, next.FailedAttempts)
	require.NotNil(t, next.LockedUntil)
	assert.True(t, next.LockedUntil.Equal(until))
}

func TestApply_FailureAfterExpiredLockRestartsAtOne(t *testing.T) {
	p := DefaultPolicy()
	state := State{FailedAttempts: 5, LockedUntil: ptr(base.Add(-time.Second))}

	next := p.Apply(state, OutcomeFailure, base)

	assert.Equal(t, 1, next.FailedAttempts)
	assert.Nil(t, next.LockedUntil)
	assert.Equal(t, StatusOpen, p.Evaluate(next, base).Status)
}

func TestApply_SuccessAlwaysResets(t *testing.T) {
	p := DefaultPolicy()
	states := []State{
		{FailedAttempts: 0},
		{FailedAttempts: 1},
		{FailedAttempts: 4},
		{FailedAttempts: 5, LockedUntil: ptr(base.Add(-time.Minute))},
	}
	for _, s := range states {
		next := p.Apply(s, OutcomeSuccess, base)
		assert.Equal(t, 0, next.FailedAttempts)
		assert.Nil(t, next.LockedUntil)
		require.NotNil(t, next.LastLoginAt)
		assert.True(t, next.LastLoginAt.Equal(base))
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	p := DefaultPolicy()
	until := base.Add(-time.Minute)
	s := State{FailedAttempts: 5, LockedUntil: &until}

	_ = p.Apply(s, OutcomeFailure, base)

	assert.Equal(t, 5, s.FailedAttempts)
	assert.Same(t, &until, s.LockedUntil)
}

func TestLockCycle(t *testing.T) {
	p := DefaultPolicy()
	s := State{}

	for i := 0; i < 4; i++ {
		s = p.Apply(s, OutcomeFailure, base)
	}
	assert.Equal(t, 4, s.FailedAttempts)
	assert.Equal(t, StatusOpen, p.Evaluate(s, base).Status)

	s = p.Apply(s, OutcomeFailure, base)
	ev := p.Evaluate(s, base.Add(time.Minute))
	assert.Equal(t, StatusLocked, ev.Status)
	assert.Equal(t, 14, ev.RemainingMinutes)

	prev := ev.RemainingMinutes
	for m := 2; m < 15; m++ {
		ev = p.Evaluate(s, base.Add(time.Duration(m)*time.Minute))
		assert.Less(t, ev.RemainingMinutes, prev)
		assert.GreaterOrEqual(t, ev.RemainingMinutes, 1)
		prev = ev.RemainingMinutes
	}

	later := base.Add(16 * time.Minute)
	assert.Equal(t, StatusExpiredLock, p.Evaluate(s, later).Status)
	s = p.Apply(s, OutcomeSuccess, later)
	assert.Equal(t, 0, s.FailedAttempts)
	assert.Equal(t, StatusOpen, p.Evaluate(s, later).Status)
}

func TestPolicy_ZeroValueUsesDefaults(t *testing.T) {
	var p Policy
	s := p.Apply(State{FailedAttempts: 4}, OutcomeFailure, base)
	require.NotNil(t, s.LockedUntil)
	assert.True(t, s.LockedUntil.Equal(base.Add(DefaultLockDuration)))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "open", StatusOpen.String())
	assert.Equal(t, "locked", StatusLocked.String())
	assert.Equal(t, "expired_lock", StatusExpiredLock.String())
	assert.Equal(t, "failure", OutcomeFailure.String())
	assert.Equal(t, "success", OutcomeSuccess.String())
}
