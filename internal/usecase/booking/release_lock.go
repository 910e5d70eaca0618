package booking

import (
	"context"

	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
)

// ReleaseLock frees a slot cell when the guest abandons the flow. Only the
// owning session may release; releasing twice is a no-op.
type ReleaseLock struct {
	repo domain.Repository
}

func NewReleaseLock(repo domain.Repository) *ReleaseLock {
	return &ReleaseLock{repo: repo}
}

func (uc *ReleaseLock) Execute(
	ctx context.Context,
	lockID uint,
	sessionKey string,
) error {

	lock, err := uc.repo.GetLock(ctx, lockID)
	if err != nil {
		return httperr.ErrBusiness("lock_not_found")
	}

	if lock.SessionKey != sessionKey {
		return httperr.ErrBusiness("lock_not_owned")
	}

	return uc.repo.ReleaseLock(ctx, lock.ID)
}
