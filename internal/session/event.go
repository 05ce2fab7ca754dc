package session

import "github.com/rareminds/testportal/internal/model"

// EventKind identifies a notification the controller raises for the client.
type EventKind string

const (
	EventState        EventKind = "state"
	EventTick         EventKind = "tick"
	EventWarning      EventKind = "warning"
	EventHalfTime     EventKind = "half_time"
	EventForcedReview EventKind = "forced_review"
	EventTimeExpired  EventKind = "time_expired"
	EventDeviceError  EventKind = "device_error"
	EventSubmitted    EventKind = "submitted"
	EventTeardown     EventKind = "teardown"
)

// Event is a controller notification. Payload is one of the *Payload types
// below, or nil.
type Event struct {
	Kind    EventKind
	Payload any
}

// TickPayload carries the clock after each counted tick.
type TickPayload struct {
	TimeLeftSeconds int    `json:"time_left_seconds"`
	TimeLeftDisplay string `json:"time_left_display"`
}

// WarningPayload is raised for each counted integrity warning.
type WarningPayload struct {
	Count     int  `json:"count"`
	Threshold int  `json:"threshold"`
	Final     bool `json:"final"`
}

// ClockPayload accompanies the half-time, forced-review and time-expired events.
type ClockPayload struct {
	TimeLeftSeconds int `json:"time_left_seconds"`
}

// DeviceErrorPayload names the devices the student did not grant.
type DeviceErrorPayload struct {
	Missing []string `json:"missing"`
	Blocked bool     `json:"blocked"`
}

// SubmittedPayload carries the final record so a result can be shown even
// if persistence fails.
type SubmittedPayload struct {
	Record *model.SubmissionRecord `json:"record"`
}
