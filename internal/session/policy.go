package session

import "github.com/rareminds/testportal/internal/config"

// DevicePolicy decides what happens when camera or microphone is denied.
type DevicePolicy string

const (
	// DeviceBlock keeps the session in the permissions phase until both devices are granted.
	DeviceBlock DevicePolicy = "block"
	// DeviceWarn reports the missing devices and lets the test start anyway.
	DeviceWarn DevicePolicy = "warn"
)

// ReviewClock decides whether the countdown keeps running during review.
type ReviewClock string

const (
	ReviewClockPause ReviewClock = "pause"
	ReviewClockRun   ReviewClock = "run"
)

// Policy holds the timing and integrity rules a controller enforces.
type Policy struct {
	DurationSeconds        int
	HalfTimeWarningSeconds int
	LowTimeReviewSeconds   int
	WarningThreshold       int
	DevicePolicy           DevicePolicy
	ReviewClock            ReviewClock
	// LockForcedReview forbids returning to the questions once the
	// low-time threshold has pushed the session into review.
	LockForcedReview bool
}

// DefaultPolicy is a one-hour test with warnings at 30 and 5 minutes left.
func DefaultPolicy() Policy {
	return Policy{
		DurationSeconds:        3600,
		HalfTimeWarningSeconds: 1800,
		LowTimeReviewSeconds:   300,
		WarningThreshold:       3,
		DevicePolicy:           DeviceBlock,
		ReviewClock:            ReviewClockPause,
	}
}

// PolicyFromConfig converts environment configuration, falling back to
// defaults for values that are out of range.
func PolicyFromConfig(cfg config.SessionConfig) Policy {
	p := DefaultPolicy()
	if cfg.DurationSeconds > 0 {
		p.DurationSeconds = cfg.DurationSeconds
	}
	if cfg.HalfTimeWarningSeconds >= 0 {
		p.HalfTimeWarningSeconds = cfg.HalfTimeWarningSeconds
	}
	if cfg.LowTimeReviewSeconds >= 0 {
		p.LowTimeReviewSeconds = cfg.LowTimeReviewSeconds
	}
	if cfg.WarningThreshold > 0 {
		p.WarningThreshold = cfg.WarningThreshold
	}
	if cfg.DevicePolicy == string(DeviceWarn) {
		p.DevicePolicy = DeviceWarn
	}
	if cfg.ReviewClock == string(ReviewClockRun) {
		p.ReviewClock = ReviewClockRun
	}
	p.LockForcedReview = cfg.LockForcedReview
	return p
}
