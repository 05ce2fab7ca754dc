package session

import (
	"context"

	"github.com/rareminds/testportal/internal/model"
)

// Tick advances the session clock by one second. The countdown and the
// current question's accumulator move together in this one step.
//
// Neither moves outside the in-progress phase, except that the countdown
// keeps running through review when the policy says ReviewClockRun.
func (c *Controller) Tick(ctx context.Context) {
	if c.phase == PhaseSubmitted {
		return
	}
	inProgress := c.phase == PhaseInProgress
	countdown := inProgress || (c.phase == PhaseReview && c.policy.ReviewClock == ReviewClockRun)
	if !countdown {
		return
	}

	if inProgress {
		c.timeTaken[c.currentIndex]++
	}
	if c.timeLeft > 0 {
		c.timeLeft--
	}
	c.emit(EventTick, TickPayload{
		TimeLeftSeconds: c.timeLeft,
		TimeLeftDisplay: FormatClock(c.timeLeft),
	})

	if c.timeLeft == 0 {
		c.emit(EventTimeExpired, ClockPayload{})
		c.log.Info().Msg("Time expired")
		c.submit(ctx, model.SubmitTimeExpired)
		return
	}
	if !c.halfTimeWarningShown && c.timeLeft == c.policy.HalfTimeWarningSeconds {
		c.halfTimeWarningShown = true
		c.emit(EventHalfTime, ClockPayload{TimeLeftSeconds: c.timeLeft})
	}
	if !c.lowTimeWarningShown && c.timeLeft == c.policy.LowTimeReviewSeconds {
		c.lowTimeWarningShown = true
		// A student already reviewing on a running clock is held there too.
		c.forcedReview = true
		c.emit(EventForcedReview, ClockPayload{TimeLeftSeconds: c.timeLeft})
		if c.phase == PhaseInProgress {
			c.setPhase(PhaseReview)
		}
	}
}
