package booking

import (
	"context"
	"time"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/metrics"
	"github.com/sahasrara-wellness/booking-api/internal/models"
	"github.com/sahasrara-wellness/booking-api/internal/timezone"
)

type AcquireLockInput struct {
	BranchID   uint
	ServiceID  uint
	WorkerID   uint // 0 means "any worker"
	Date       time.Time
	Start      domain.ClockTime
	SessionKey string
}

// AcquireLock reserves one slot cell for the session while the guest pays.
// The cutoff is rechecked inside the acquire transaction because the grid the
// guest is looking at may be minutes old. Conflict detection itself lives in
// the repository; this usecase only validates shape and placement.
type AcquireLock struct {
	repo    domain.Repository
	cfg     *config.Config
	resolve *ResolveWindow
	find    *FindWorker
}

func NewAcquireLock(repo domain.Repository, cfg *config.Config) *AcquireLock {
	return &AcquireLock{
		repo:    repo,
		cfg:     cfg,
		resolve: NewResolveWindow(repo),
		find:    NewFindWorker(repo, cfg),
	}
}

func (uc *AcquireLock) Execute(
	ctx context.Context,
	in AcquireLockInput,
) (*models.SlotLock, error) {

	branch, err := uc.repo.GetBranch(ctx, in.BranchID)
	if err != nil {
		return nil, httperr.ErrBusiness("branch_not_found")
	}

	service, err := uc.repo.GetServiceAtBranch(ctx, in.BranchID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	workerID := in.WorkerID
	if workerID == 0 {
		workerID, err = uc.find.Execute(ctx, in.BranchID, in.ServiceID, in.Date, in.Start)
		if err != nil {
			return nil, err
		}
	}

	worker, err := uc.repo.GetWorker(ctx, workerID)
	if err != nil {
		return nil, httperr.ErrBusiness("worker_not_found")
	}

	win, ok, err := uc.resolve.Execute(ctx, branch, worker, in.Date)
	if err != nil {
		return nil, err
	}

	total := service.TotalBlockMinutes()
	if !ok ||
		in.Start < win.Open ||
		int(in.Start)+total > int(win.Close) ||
		(int(in.Start)-int(win.Open))%total != 0 {
		return nil, httperr.ErrBusiness("slot_not_available")
	}

	now := timezone.NowIn(uc.cfg.Timezone)
	if timezone.Day(in.Date).Before(timezone.Day(now)) {
		return nil, httperr.ErrBusiness("slot_not_available")
	}

	// The lock occupies the full block including the cleanup buffer, so a
	// differently-gridded service cannot slip a slot into the buffer tail.
	lock := &models.SlotLock{
		WorkerID:    worker.ID,
		BranchID:    branch.ID,
		BookingDate: in.Date,
		StartTime:   in.Start.String(),
		EndTime:     in.Start.Add(total).String(),
		SessionKey:  in.SessionKey,
		ExpiresAt:   now.Add(time.Duration(uc.cfg.SlotLockTTLMinutes) * time.Minute),
	}

	err = uc.repo.AcquireLock(ctx, lock, now, func() error {
		fresh := timezone.NowIn(uc.cfg.Timezone)
		cutoff := domain.CutoffRule{
			SameDay:     timezone.SameDay(fresh, in.Date),
			Now:         domain.ClockOf(fresh),
			LeadMinutes: uc.cfg.SameDayCutoffHours * 60,
		}
		if cutoff.Blocks(in.Start) {
			return httperr.ErrBusiness("same_day_cutoff")
		}
		return nil
	})
	if err != nil {
		if be, ok := httperr.AsBusiness(err); ok {
			metrics.LockConflicts.WithLabelValues(be.Code).Inc()
		}
		return nil, err
	}

	metrics.LocksAcquired.Inc()
	return lock, nil
}
