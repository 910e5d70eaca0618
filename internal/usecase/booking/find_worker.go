package booking

import (
	"context"
	"time"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/models"
	"github.com/sahasrara-wellness/booking-api/internal/timezone"
)

// FindWorker resolves an "any worker" booking to a concrete worker: among the
// workers free at the requested start time, pick the one with the fewest
// confirmed bookings that day.
type FindWorker struct {
	repo    domain.Repository
	cfg     *config.Config
	resolve *ResolveWindow
}

func NewFindWorker(repo domain.Repository, cfg *config.Config) *FindWorker {
	return &FindWorker{
		repo:    repo,
		cfg:     cfg,
		resolve: NewResolveWindow(repo),
	}
}

func (uc *FindWorker) Execute(
	ctx context.Context,
	branchID uint,
	serviceID uint,
	date time.Time,
	start domain.ClockTime,
) (uint, error) {

	branch, err := uc.repo.GetBranch(ctx, branchID)
	if err != nil {
		return 0, httperr.ErrBusiness("branch_not_found")
	}

	service, err := uc.repo.GetServiceAtBranch(ctx, branchID, serviceID)
	if err != nil {
		return 0, httperr.ErrBusiness("service_not_found")
	}

	workers, err := uc.repo.ListActiveWorkers(ctx, branchID)
	if err != nil {
		return 0, err
	}

	now := timezone.NowIn(uc.cfg.Timezone)
	end := domain.ClockTime(int(start) + service.TotalBlockMinutes())

	var candidates []models.Worker
	for i := range workers {
		w := workers[i]

		win, ok, err := uc.resolve.Execute(ctx, branch, &w, date)
		if err != nil {
			return 0, err
		}
		if !ok || start < win.Open || end > win.Close {
			continue
		}

		occupied, err := uc.repo.ListOccupiedSpans(ctx, w.ID, date, now)
		if err != nil {
			return 0, err
		}

		free := true
		for _, occ := range occupied {
			if domain.Overlaps(start, end, occ.Start, occ.End) {
				free = false
				break
			}
		}
		if free {
			candidates = append(candidates, w)
		}
	}

	counts := make(map[uint]int, len(candidates))
	for _, w := range candidates {
		n, err := uc.repo.CountConfirmedBookings(ctx, w.ID, date)
		if err != nil {
			return 0, err
		}
		counts[w.ID] = n
	}

	picked, err := domain.PickLeastBooked(candidates, counts)
	if err != nil {
		return 0, err
	}
	return picked.ID, nil
}
