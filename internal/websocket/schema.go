package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAcknowledge Action = "acknowledge"
	ActionPermissions Action = "permissions"
	ActionSelect      Action = "select"
	ActionGoTo        Action = "goto"
	ActionNext        Action = "next"
	ActionPrevious    Action = "previous"
	ActionBack        Action = "back"
	ActionVisibility  Action = "visibility"
	ActionSubmit      Action = "submit"
	ActionState       Action = "state"
	ActionHelp        Action = "help"
	ActionPing        Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action          `json:"action"`
	Raw    json.RawMessage `json:"-"`
}

// PermissionsRequest reports the capture devices the browser obtained.
type PermissionsRequest struct {
	Camera     bool `json:"camera"`
	Microphone bool `json:"mic"`
}

// SelectRequest chooses an answer for a question.
type SelectRequest struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

// GoToRequest jumps to a question; from review it returns to the test.
type GoToRequest struct {
	Index int `json:"index"`
}

// VisibilityRequest is sent on every page visibility change.
type VisibilityRequest struct {
	Hidden bool `json:"hidden"`
}

// HelpRequest asks for support without leaving the test.
type HelpRequest struct {
	Message string `json:"message"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState        Event = "state"
	EventTick         Event = "tick"
	EventWarning      Event = "warning"
	EventHalfTime     Event = "half_time"
	EventForcedReview Event = "forced_review"
	EventTimeExpired  Event = "time_expired"
	EventDeviceError  Event = "device_error"
	EventSubmitted    Event = "submitted"
	EventNotification Event = "notification"
	EventTeardown     Event = "teardown"
	EventError        Event = "error"
	EventPong         Event = "pong"
)

// EventMessage is every server-to-client frame.
type EventMessage struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ErrorResponse reports a rejected action. The session continues unless
// followed by a teardown.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Notification is a dismissible message for the student.
type Notification struct {
	Message string `json:"message"`
}
