package session

import (
	"context"

	"github.com/rareminds/testportal/internal/model"
)

// IntegrityReporter receives every counted integrity warning.
type IntegrityReporter interface {
	ReportWarning(ctx context.Context, ev model.IntegrityEvent) error
}

// RecordWarning registers one transition of the test page to hidden.
// Outside the in-progress phase it is ignored and returns false. Reaching
// the warning threshold submits the session.
func (c *Controller) RecordWarning(ctx context.Context) bool {
	if c.phase != PhaseInProgress {
		return false
	}
	c.warningCount++
	threshold := c.policy.WarningThreshold
	final := c.warningCount >= threshold

	c.log.Warn().Int("count", c.warningCount).Int("threshold", threshold).Msg("Test page hidden")

	if c.integrity != nil {
		ev := model.IntegrityEvent{
			SubjectID:  c.subjectID,
			CourseID:   c.courseID,
			Count:      c.warningCount,
			RecordedAt: c.now().UTC(),
		}
		if err := c.integrity.ReportWarning(ctx, ev); err != nil {
			c.log.Error().Err(err).Msg("Failed to report integrity warning")
		}
	}

	c.emit(EventWarning, WarningPayload{Count: c.warningCount, Threshold: threshold, Final: final})
	if final {
		c.submit(ctx, model.SubmitIntegrity)
	}
	return true
}
