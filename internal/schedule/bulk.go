package schedule

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// bulkWorkers caps how many trips a bulk transition touches at once.
const bulkWorkers = 8

// BulkFailure records one trip that a bulk transition could not process.
type BulkFailure struct {
	ScheduleID uint   `json:"schedule_id"`
	Error      string `json:"error"`
}

// BulkResult aggregates a best-effort batch. Partial success is a valid,
// reportable end state, not a failure of the operation.
type BulkResult struct {
	Succeeded              []uint        `json:"succeeded"`
	Failed                 []BulkFailure `json:"failed"`
	CancelledBookingsTotal int           `json:"cancelled_bookings_total"`
}

// BulkTransition applies one lifecycle action to each trip independently.
// Trips are processed in parallel; operations on a single trip id are
// already serialized by the store's guarded updates, and no cross-trip
// ordering is promised. One trip's failure never aborts the others, and a
// cancelled context lets already-finished transitions stand.
func (e *Engine) BulkTransition(ctx context.Context, scheduleIDs []uint, action Transition, reason string, actorID uint) BulkResult {
	var (
		mu     sync.Mutex
		result BulkResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkWorkers)

	for _, id := range dedupe(scheduleIDs) {
		id := id // per-iteration copy; required while go.mod targets go < 1.22
		g.Go(func() error {
			res, err := e.Transition(gctx, id, action, reason, actorID)

			mu.Lock()
			defer mu.Unlock()
			result.CancelledBookingsTotal += res.CancelledBookings
			if err != nil {
				result.Failed = append(result.Failed, BulkFailure{ScheduleID: id, Error: err.Error()})
			} else {
				result.Succeeded = append(result.Succeeded, id)
			}
			// Per-trip errors are recorded, not returned: returning one
			// would cancel the group and abort the rest of the batch.
			return nil
		})
	}
	_ = g.Wait()

	logrus.WithFields(logrus.Fields{
		"action":    action,
		"requested": len(scheduleIDs),
		"succeeded": len(result.Succeeded),
		"failed":    len(result.Failed),
		"cancelled": result.CancelledBookingsTotal,
		"actor_id":  actorID,
	}).Info("Bulk transition finished.")
	return result
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
