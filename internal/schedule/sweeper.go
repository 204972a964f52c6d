package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"shule_transit/internal/models"
)

// sweepActor marks completion transitions as system-driven in the audit log.
const sweepActor = 0

// CompletePastTrips marks every approved or open trip whose date has passed
// as completed, going through the same guarded transition path as
// administrator actions. It returns how many trips it completed.
func (e *Engine) CompletePastTrips(ctx context.Context) (int, error) {
	yesterday := truncateToDay(e.now()).AddDate(0, 0, -1)
	var trips []models.TripSchedule
	for _, status := range []models.TripStatus{models.TripStatusScheduled, models.TripStatusInProgress} {
		batch, err := e.Store.ListTrips(ctx, TripFilter{
			DateTo: &yesterday,
			Status: status,
		})
		if err != nil {
			return 0, err
		}
		trips = append(trips, batch...)
	}

	completed := 0
	for _, trip := range trips {
		state := CurrentState(trip)
		if state != StateApproved && state != StateOpenForBooking && state != StateInProgress {
			continue
		}
		if _, err := e.Transition(ctx, trip.ID, TransitionComplete, "", sweepActor); err != nil {
			var invalid InvalidTransitionError
			if errors.As(err, &invalid) {
				continue
			}
			logrus.WithError(err).WithField("schedule_id", trip.ID).Warn("Completion sweep failed for trip.")
			continue
		}
		completed++
	}
	return completed, nil
}

// RunCompletionSweep runs CompletePastTrips on a ticker until the context is
// cancelled. Intended to be started once from main.
func (e *Engine) RunCompletionSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := e.CompletePastTrips(ctx)
			if err != nil {
				logrus.WithError(err).Warn("Completion sweep failed.")
				continue
			}
			if n > 0 {
				logrus.WithField("completed", n).Info("Completion sweep marked past trips completed.")
			}
		}
	}
}
