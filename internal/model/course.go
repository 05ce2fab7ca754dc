package model

import "time"

// Course is an assessment students can be assigned to. ID is the public slug
// (e.g. "green-chemistry"); Code is the key questions are stored under ("SGCEV").
type Course struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

// WindowStatus is the assessment-window state of a course for a given instant.
type WindowStatus string

const (
	WindowUpcoming  WindowStatus = "UPCOMING"
	WindowAvailable WindowStatus = "AVAILABLE"
	WindowClosed    WindowStatus = "CLOSED"
	WindowCompleted WindowStatus = "COMPLETED"
)

// Window evaluates the course's start/end window at now. Open-ended bounds
// are treated as always satisfied.
func (c *Course) Window(now time.Time) WindowStatus {
	if c.StartTime != nil && now.Before(*c.StartTime) {
		return WindowUpcoming
	}
	if c.EndTime != nil && !now.Before(*c.EndTime) {
		return WindowClosed
	}
	return WindowAvailable
}
