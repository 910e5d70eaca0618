package booking

import (
	"context"
	"sort"
	"time"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/timezone"
)

type GetSlots struct {
	repo    domain.Repository
	cfg     *config.Config
	resolve *ResolveWindow
}

func NewGetSlots(repo domain.Repository, cfg *config.Config) *GetSlots {
	return &GetSlots{
		repo:    repo,
		cfg:     cfg,
		resolve: NewResolveWindow(repo),
	}
}

// Execute generates the bookable slot grid for one worker on one date.
// An unavailable worker yields an empty grid, not an error.
func (uc *GetSlots) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.Slot, error) {

	branch, err := uc.repo.GetBranch(ctx, in.BranchID)
	if err != nil {
		return nil, httperr.ErrBusiness("branch_not_found")
	}

	service, err := uc.repo.GetServiceAtBranch(ctx, in.BranchID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	worker, err := uc.repo.GetWorker(ctx, in.WorkerID)
	if err != nil {
		return nil, httperr.ErrBusiness("worker_not_found")
	}

	now := timezone.NowIn(uc.cfg.Timezone)
	if timezone.Day(in.Date).Before(timezone.Day(now)) {
		return []domain.Slot{}, nil
	}

	win, ok, err := uc.resolve.Execute(ctx, branch, worker, in.Date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Slot{}, nil
	}

	occupied, err := uc.repo.ListOccupiedSpans(ctx, worker.ID, in.Date, now)
	if err != nil {
		return nil, err
	}

	slots := domain.GenerateSlots(
		win,
		service.DurationMinutes,
		service.BufferMinutes,
		occupied,
		uc.cutoff(now, in.Date),
	)
	if slots == nil {
		slots = []domain.Slot{}
	}
	return slots, nil
}

// ExecuteAnyWorker merges the grids of every active worker at the branch:
// a start time is offered when at least one worker is free for it.
func (uc *GetSlots) ExecuteAnyWorker(
	ctx context.Context,
	branchID uint,
	serviceID uint,
	date time.Time,
) ([]domain.Slot, error) {

	branch, err := uc.repo.GetBranch(ctx, branchID)
	if err != nil {
		return nil, httperr.ErrBusiness("branch_not_found")
	}

	service, err := uc.repo.GetServiceAtBranch(ctx, branchID, serviceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	now := timezone.NowIn(uc.cfg.Timezone)
	if timezone.Day(date).Before(timezone.Day(now)) {
		return []domain.Slot{}, nil
	}

	workers, err := uc.repo.ListActiveWorkers(ctx, branchID)
	if err != nil {
		return nil, err
	}

	cutoff := uc.cutoff(now, date)

	merged := map[domain.ClockTime]domain.Slot{}
	for i := range workers {
		w := &workers[i]

		win, ok, err := uc.resolve.Execute(ctx, branch, w, date)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		occupied, err := uc.repo.ListOccupiedSpans(ctx, w.ID, date, now)
		if err != nil {
			return nil, err
		}

		for _, s := range domain.GenerateSlots(
			win, service.DurationMinutes, service.BufferMinutes, occupied, cutoff,
		) {
			merged[s.Start] = s
		}
	}

	slots := make([]domain.Slot, 0, len(merged))
	for _, s := range merged {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return slots, nil
}

func (uc *GetSlots) cutoff(now, date time.Time) domain.CutoffRule {
	return domain.CutoffRule{
		SameDay:     timezone.SameDay(now, date),
		Now:         domain.ClockOf(now),
		LeadMinutes: uc.cfg.SameDayCutoffHours * 60,
	}
}
