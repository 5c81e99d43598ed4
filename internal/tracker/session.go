package tracker

import "time"

// IdleThreshold is the idle duration from which idle time accumulates.
const IdleThreshold = 120 * time.Second

// Attribution is the application currently being timed.
type Attribution struct {
	App   string
	Since time.Time
}

// Session is the tracking state shared by the poll path and the screenshot
// worker. It is always accessed under Service's mutex.
//
// A nil Current means no application is attributed yet, so the app name and
// its start time are always set or unset together.
type Session struct {
	ID                string
	IsTracking        bool
	StartTime         time.Time
	Current           *Attribution
	ScreenshotEnabled bool
	LastActivity      time.Time
	LastIdleCheck     time.Time
	AccumulatedIdle   uint64
}

// UsageRecord is one completed attribution interval.
type UsageRecord struct {
	App          string    `json:"app"`
	Duration     uint64    `json:"duration"`
	IdleDuration uint64    `json:"idle_duration"`
	Timestamp    time.Time `json:"timestamp"`
}

// SessionState is a point-in-time copy of Session for callers outside the lock.
type SessionState struct {
	ID                string    `json:"id,omitempty"`
	IsTracking        bool      `json:"is_tracking"`
	StartTime         time.Time `json:"start_time,omitempty"`
	CurrentApp        string    `json:"current_app,omitempty"`
	AppStartTime      time.Time `json:"app_start_time,omitempty"`
	ScreenshotEnabled bool      `json:"screenshot_enabled"`
	LastActivity      time.Time `json:"last_activity,omitempty"`
	AccumulatedIdle   uint64    `json:"accumulated_idle"`
	Elapsed           uint64    `json:"elapsed"`
}

func (s *Session) state(now time.Time) SessionState {
	st := SessionState{
		ID:                s.ID,
		IsTracking:        s.IsTracking,
		StartTime:         s.StartTime,
		ScreenshotEnabled: s.ScreenshotEnabled,
		LastActivity:      s.LastActivity,
		AccumulatedIdle:   s.AccumulatedIdle,
		Elapsed:           s.elapsed(now),
	}
	if s.Current != nil {
		st.CurrentApp = s.Current.App
		st.AppStartTime = s.Current.Since
	}
	return st
}

func (s *Session) elapsed(now time.Time) uint64 {
	if s.StartTime.IsZero() {
		return 0
	}
	return seconds(now.Sub(s.StartTime))
}

// seconds truncates d to whole seconds, clamping negative values to zero.
func seconds(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Second)
}
