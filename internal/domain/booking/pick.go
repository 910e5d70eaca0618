package booking

import (
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

// PickLeastBooked selects the candidate with the fewest confirmed bookings for
// the date (fairness heuristic, not optimal assignment). Ties break on the
// lowest worker ID so the choice is reproducible under identical inputs.
func PickLeastBooked(workers []models.Worker, confirmedCounts map[uint]int) (*models.Worker, error) {
	if len(workers) == 0 {
		return nil, httperr.ErrBusiness("no_workers_available")
	}

	best := workers[0]
	for _, w := range workers[1:] {
		cw, cb := confirmedCounts[w.ID], confirmedCounts[best.ID]
		if cw < cb || (cw == cb && w.ID < best.ID) {
			best = w
		}
	}
	return &best, nil
}
