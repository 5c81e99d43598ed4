package tracker

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func at(sec float64) time.Time {
	return t0.Add(time.Duration(sec * float64(time.Second)))
}

func trackingSession() *Session {
	return &Session{
		IsTracking:        true,
		StartTime:         t0,
		ScreenshotEnabled: true,
		LastActivity:      t0,
		LastIdleCheck:     t0,
	}
}

func TestTickNotTracking(t *testing.T) {
	sess := &Session{
		StartTime:       t0,
		Current:         &Attribution{App: "editor", Since: t0},
		LastActivity:    t0,
		LastIdleCheck:   t0,
		AccumulatedIdle: 7,
	}
	before := *sess
	beforeCurrent := *sess.Current

	rec := Tick(sess, "browser", 500, at(60))

	assert.Nil(t, rec)
	assert.Equal(t, before.LastIdleCheck, sess.LastIdleCheck)
	assert.Equal(t, before.LastActivity, sess.LastActivity)
	assert.Equal(t, before.AccumulatedIdle, sess.AccumulatedIdle)
	assert.Equal(t, beforeCurrent, *sess.Current)
}

func TestTickFirstObservation(t *testing.T) {
	sess := trackingSession()

	rec := Tick(sess, "A", 0, t0)

	assert.Nil(t, rec)
	require.NotNil(t, sess.Current)
	assert.Equal(t, "A", sess.Current.App)
	assert.Equal(t, t0, sess.Current.Since)
}

func TestTickBasicAttribution(t *testing.T) {
	sess := trackingSession()

	assert.Nil(t, Tick(sess, "A", 0, t0))

	rec := Tick(sess, "A", 0, at(5))
	require.NotNil(t, rec)
	assert.Equal(t, "A", rec.App)
	assert.Equal(t, uint64(5), rec.Duration)
	assert.Equal(t, uint64(0), rec.IdleDuration)
	assert.Equal(t, at(5), rec.Timestamp)
	assert.Equal(t, at(5), sess.Current.Since, "same-app record rolls the start time")

	rec = Tick(sess, "B", 0, at(7))
	require.NotNil(t, rec)
	assert.Equal(t, "A", rec.App)
	assert.Equal(t, uint64(2), rec.Duration)
	assert.Equal(t, "B", sess.Current.App)
	assert.Equal(t, at(7), sess.Current.Since)
}

func TestTickIdleAccumulation(t *testing.T) {
	sess := trackingSession()
	Tick(sess, "A", 0, t0)

	want := []uint64{10, 20, 30}
	for i, sec := range []float64{10, 20, 30} {
		rec := Tick(sess, "A", 150, at(sec))
		require.NotNil(t, rec)
		assert.Equal(t, want[i], sess.AccumulatedIdle)
		assert.Equal(t, want[i], rec.IdleDuration)
		assert.Equal(t, t0, sess.LastActivity, "idle ticks do not count as activity")
	}

	rec := Tick(sess, "A", 5, at(31))
	require.NotNil(t, rec)
	assert.Equal(t, uint64(0), sess.AccumulatedIdle)
	assert.Equal(t, uint64(0), rec.IdleDuration)
	assert.Equal(t, at(31), sess.LastActivity)
	assert.Equal(t, at(31), sess.LastIdleCheck)
}

func TestTickIdleThresholdBoundary(t *testing.T) {
	tests := []struct {
		name     string
		idle     uint64
		wantIdle uint64
	}{
		{"below threshold", 119, 0},
		{"at threshold", 120, 10},
		{"above threshold", 121, 10},
		{"huge reading", 1 << 63, 10},
		{"max reading", math.MaxUint64, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := trackingSession()
			Tick(sess, "A", 0, t0)
			Tick(sess, "A", tt.idle, at(10))
			assert.Equal(t, tt.wantIdle, sess.AccumulatedIdle)
			if tt.wantIdle > 0 {
				assert.Equal(t, t0, sess.LastActivity)
			}
		})
	}
}

func TestTickIdleBookkeepingBeforeFirstApp(t *testing.T) {
	sess := trackingSession()

	rec := Tick(sess, "A", 300, at(40))

	assert.Nil(t, rec)
	assert.Equal(t, uint64(40), sess.AccumulatedIdle)
	assert.Equal(t, at(40), sess.LastIdleCheck)
}

func TestTickZeroElapsedSameApp(t *testing.T) {
	sess := trackingSession()
	Tick(sess, "A", 0, t0)

	rec := Tick(sess, "A", 0, t0)
	assert.Nil(t, rec)
	assert.Equal(t, t0, sess.Current.Since)

	// sub-second progress truncates to zero and must not roll the start
	rec = Tick(sess, "A", 0, at(0.9))
	assert.Nil(t, rec)
	assert.Equal(t, t0, sess.Current.Since)

	rec = Tick(sess, "A", 0, at(1.5))
	require.NotNil(t, rec)
	assert.Equal(t, uint64(1), rec.Duration)
	assert.Equal(t, at(1.5), sess.Current.Since)
}

func TestTickSwitchWithZeroDuration(t *testing.T) {
	sess := trackingSession()
	Tick(sess, "A", 0, t0)

	rec := Tick(sess, "B", 0, t0)
	require.NotNil(t, rec)
	assert.Equal(t, "A", rec.App)
	assert.Equal(t, uint64(0), rec.Duration)
	assert.Equal(t, "B", sess.Current.App)
}

func TestTickClockGoingBackwards(t *testing.T) {
	sess := trackingSession()
	Tick(sess, "A", 0, at(10))

	rec := Tick(sess, "B", 200, at(5))
	require.NotNil(t, rec)
	assert.Equal(t, uint64(0), rec.Duration)
	assert.Equal(t, uint64(0), sess.AccumulatedIdle)
}

func TestTickTimestampIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	sess := trackingSession()
	Tick(sess, "A", 0, t0.In(loc))

	rec := Tick(sess, "A", 0, t0.Add(3*time.Second).In(loc))
	require.NotNil(t, rec)
	assert.Equal(t, time.UTC, rec.Timestamp.Location())
}
