package tracker

import "time"

type transition string

const (
	transitionNone   transition = ""
	transitionFirst  transition = "first"
	transitionRoll   transition = "roll"
	transitionSwitch transition = "switch"
)

// Tick advances sess by one observation and returns the completed record,
// if any. The caller must hold exclusive access to sess. now must carry a
// monotonic reading when it comes from the real clock; attribution uses it
// while the record timestamp is the wall-clock part in UTC.
func Tick(sess *Session, activeApp string, idleSeconds uint64, now time.Time) *UsageRecord {
	rec, _ := advance(sess, activeApp, idleSeconds, now)
	return rec
}

func advance(sess *Session, activeApp string, idleSeconds uint64, now time.Time) (*UsageRecord, transition) {
	if !sess.IsTracking {
		return nil, transitionNone
	}

	if idleSeconds >= uint64(IdleThreshold/time.Second) {
		sess.AccumulatedIdle += seconds(now.Sub(sess.LastIdleCheck))
	} else {
		sess.AccumulatedIdle = 0
		sess.LastActivity = now
	}
	sess.LastIdleCheck = now

	cur := sess.Current
	if cur == nil {
		sess.Current = &Attribution{App: activeApp, Since: now}
		return nil, transitionFirst
	}

	elapsed := seconds(now.Sub(cur.Since))

	if cur.App == activeApp {
		if elapsed == 0 {
			return nil, transitionNone
		}
		cur.Since = now
		return &UsageRecord{
			App:          cur.App,
			Duration:     elapsed,
			IdleDuration: sess.AccumulatedIdle,
			Timestamp:    now.UTC(),
		}, transitionRoll
	}

	prev := cur.App
	sess.Current = &Attribution{App: activeApp, Since: now}
	return &UsageRecord{
		App:          prev,
		Duration:     elapsed,
		IdleDuration: sess.AccumulatedIdle,
		Timestamp:    now.UTC(),
	}, transitionSwitch
}
