package booking

import (
	"context"
	"time"

	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

// ResolveWindow decides whether a worker is available at all on a date and,
// if so, which open/close window applies. Checks short-circuit in order:
// branch weekday schedule, worker active flag, worker leave, branch hours.
// Workers inherit the branch window; per-worker shift schedules are not part
// of the availability rules.
type ResolveWindow struct {
	repo domain.Repository
}

func NewResolveWindow(repo domain.Repository) *ResolveWindow {
	return &ResolveWindow{repo: repo}
}

func (uc *ResolveWindow) Execute(
	ctx context.Context,
	branch *models.Branch,
	worker *models.Worker,
	date time.Time,
) (domain.Window, bool, error) {

	open, err := uc.repo.IsBranchOpenOn(ctx, branch.ID, int(date.Weekday()))
	if err != nil {
		return domain.Window{}, false, err
	}
	if !open {
		return domain.Window{}, false, nil
	}

	if !worker.IsActive || worker.BranchID != branch.ID {
		return domain.Window{}, false, nil
	}

	onLeave, err := uc.repo.HasLeave(ctx, worker.ID, date)
	if err != nil {
		return domain.Window{}, false, err
	}
	if onLeave {
		return domain.Window{}, false, nil
	}

	openAt, err := domain.ParseClock(branch.OpeningTime)
	if err != nil {
		return domain.Window{}, false, nil
	}
	closeAt, err := domain.ParseClock(branch.ClosingTime)
	if err != nil {
		return domain.Window{}, false, nil
	}
	if openAt >= closeAt {
		return domain.Window{}, false, nil
	}

	return domain.Window{Open: openAt, Close: closeAt}, true, nil
}
