package session

import (
	"errors"
	"fmt"
	"strings"
)

// Phase is the state-machine state of a test session.
type Phase int

const (
	PhaseInstructions Phase = iota
	PhasePermissions
	PhaseInProgress
	PhaseReview
	PhaseSubmitted
)

var phaseNames = [...]string{
	PhaseInstructions: "instructions",
	PhasePermissions:  "permissions",
	PhaseInProgress:   "in_progress",
	PhaseReview:       "review",
	PhaseSubmitted:    "submitted",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name so snapshots read well on the wire.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

var (
	// ErrInvalidPhase is returned when an operation is not allowed in the current phase.
	ErrInvalidPhase = errors.New("operation not allowed in current phase")
	// ErrIndexOutOfRange is returned for question indexes outside the question set.
	ErrIndexOutOfRange = errors.New("question index out of range")
	// ErrUnknownOption is returned when a selection is not one of the question's options.
	ErrUnknownOption = errors.New("answer is not an option of this question")
	// ErrReviewLocked is returned when leaving a forced review is disabled by policy.
	ErrReviewLocked = errors.New("review is locked after low-time warning")
	// ErrEmptyQuestionSet is returned when a session is created without questions.
	ErrEmptyQuestionSet = errors.New("question set is empty")
)

// DeviceError names the capture devices that were not granted.
type DeviceError struct {
	Missing []string
}

func (e *DeviceError) Error() string {
	return "required devices unavailable: " + strings.Join(e.Missing, ", ")
}
