package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/timezone"
)

func mustClock(t *testing.T, s string) domain.ClockTime {
	t.Helper()
	ct, err := domain.ParseClock(s)
	require.NoError(t, err)
	return ct
}

func TestAcquireLock(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)

	uc := NewAcquireLock(repo, testConfig())

	lock, err := uc.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 1,
		Date: tomorrow(), Start: mustClock(t, "11:00"),
		SessionKey: "sess-a",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(1), lock.WorkerID)
	assert.Equal(t, "11:00", lock.StartTime)
	assert.Equal(t, "11:30", lock.EndTime)
	assert.Equal(t, "sess-a", lock.SessionKey)
	assert.False(t, lock.Released)
	assert.WithinDuration(t,
		timezone.NowIn(timezone.DefaultTimezone).Add(10*time.Minute),
		lock.ExpiresAt,
		5*time.Second,
	)
}

func TestAcquireLockCellAlreadyHeld(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)

	uc := NewAcquireLock(repo, testConfig())

	in := AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 1,
		Date: tomorrow(), Start: mustClock(t, "11:00"),
		SessionKey: "sess-a",
	}
	_, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	in.SessionKey = "sess-b"
	_, err = uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "slot_already_locked"))
}

func TestAcquireLockOnConfirmedBooking(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)
	confirmedAt(repo, 1, tomorrow(), "11:00", "11:30")

	uc := NewAcquireLock(repo, testConfig())

	_, err := uc.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 1,
		Date: tomorrow(), Start: mustClock(t, "11:00"),
		SessionKey: "sess-a",
	})
	assert.True(t, httperr.IsBusiness(err, "slot_conflict"))
}

func TestAcquireLockExpiredLockIsReusable(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)

	uc := NewAcquireLock(repo, testConfig())

	lock, err := uc.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 1,
		Date: tomorrow(), Start: mustClock(t, "11:00"),
		SessionKey: "sess-a",
	})
	require.NoError(t, err)

	// Simulate the TTL lapsing without a release.
	repo.mu.Lock()
	for _, l := range repo.locks {
		if l.ID == lock.ID {
			l.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
	repo.mu.Unlock()

	relock, err := uc.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 1,
		Date: tomorrow(), Start: mustClock(t, "11:00"),
		SessionKey: "sess-b",
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-b", relock.SessionKey)

	stale, err := repo.GetLock(context.Background(), lock.ID)
	require.NoError(t, err)
	assert.True(t, stale.Released)
}

func TestAcquireLockMisalignedStart(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)

	uc := NewAcquireLock(repo, testConfig())

	_, err := uc.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 1,
		Date: tomorrow(), Start: mustClock(t, "11:15"),
		SessionKey: "sess-a",
	})
	assert.True(t, httperr.IsBusiness(err, "slot_not_available"))
}

func TestAcquireLockSameDayCutoff(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)

	// With a 24h lead every same-day start is inside the cutoff window.
	cfg := testConfig()
	cfg.SameDayCutoffHours = 24

	uc := NewAcquireLock(repo, cfg)

	_, err := uc.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 1,
		Date: timezone.NowIn(timezone.DefaultTimezone), Start: mustClock(t, "12:00"),
		SessionKey: "sess-a",
	})
	assert.True(t, httperr.IsBusiness(err, "same_day_cutoff"))

	// The cutoff is enforced inside the acquisition itself; nothing persists.
	repo.mu.Lock()
	assert.Empty(t, repo.locks)
	repo.mu.Unlock()
}

func TestAcquireLockPastDate(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)

	uc := NewAcquireLock(repo, testConfig())

	_, err := uc.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 1,
		Date: yesterday(), Start: mustClock(t, "11:00"),
		SessionKey: "sess-a",
	})
	assert.True(t, httperr.IsBusiness(err, "slot_not_available"))
}

func TestAcquireLockHoldsBufferTail(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 15, 1500)
	repo.addService(20, 1, 30, 0, 2000)
	repo.addWorker(1, 1)

	uc := NewAcquireLock(repo, testConfig())

	lock, err := uc.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 1,
		Date: tomorrow(), Start: mustClock(t, "10:00"),
		SessionKey: "sess-a",
	})
	require.NoError(t, err)
	assert.Equal(t, "10:45", lock.EndTime, "lock spans duration plus buffer")

	// The 30-minute service's 10:30 start falls inside the held buffer tail
	// and must not be offered.
	slots, err := NewGetSlots(repo, testConfig()).Execute(context.Background(), domain.AvailabilityInput{
		BranchID: 1, ServiceID: 20, WorkerID: 1, Date: tomorrow(),
	})
	require.NoError(t, err)
	assert.NotContains(t, slotStarts(slots), "10:00")
	assert.NotContains(t, slotStarts(slots), "10:30")
	assert.Contains(t, slotStarts(slots), "11:00")

	// The booking keeps the guest-visible end, buffer excluded.
	b, err := NewCreatePending(repo, testConfig()).Execute(context.Background(), CreatePendingInput{
		LockID:     lock.ID,
		SessionKey: "sess-a",
		ServiceID:  10,
		GuestName:  "Asha Rao",
		GuestPhone: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "10:30", b.EndTime)
	assert.Equal(t, 30, b.DurationMinutes)
}

func TestAcquireLockAnyWorkerPicksFreeOne(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)
	repo.addWorker(2, 1)
	confirmedAt(repo, 1, tomorrow(), "11:00", "11:30")

	uc := NewAcquireLock(repo, testConfig())

	lock, err := uc.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 0,
		Date: tomorrow(), Start: mustClock(t, "11:00"),
		SessionKey: "sess-a",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(2), lock.WorkerID)
}

func TestAcquireLockAnyWorkerSpreadsLoad(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)
	repo.addWorker(2, 1)
	confirmedAt(repo, 1, tomorrow(), "15:00", "15:30")

	uc := NewAcquireLock(repo, testConfig())

	// Both are free at 11:00; worker 2 has fewer confirmed bookings today.
	lock, err := uc.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 0,
		Date: tomorrow(), Start: mustClock(t, "11:00"),
		SessionKey: "sess-a",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(2), lock.WorkerID)
}

func TestAcquireLockAnyWorkerNoneFree(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)
	confirmedAt(repo, 1, tomorrow(), "11:00", "11:30")

	uc := NewAcquireLock(repo, testConfig())

	_, err := uc.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 0,
		Date: tomorrow(), Start: mustClock(t, "11:00"),
		SessionKey: "sess-a",
	})
	assert.True(t, httperr.IsBusiness(err, "no_workers_available"))
}

func TestAcquireLockConcurrentOneWinner(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)

	uc := NewAcquireLock(repo, testConfig())

	const n = 20
	var wg sync.WaitGroup
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), AcquireLockInput{
				BranchID: 1, ServiceID: 10, WorkerID: 1,
				Date: tomorrow(), Start: mustClock(t, "14:00"),
				SessionKey: fmt.Sprintf("sess-%d", i),
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case httperr.IsBusiness(err, "slot_already_locked"):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, conflicts)
}

func TestReleaseLock(t *testing.T) {
	repo := newFakeRepo()
	repo.addBranch(1, "10:00", "19:00")
	repo.addService(10, 1, 30, 0, 1500)
	repo.addWorker(1, 1)

	acquire := NewAcquireLock(repo, testConfig())
	release := NewReleaseLock(repo)

	lock, err := acquire.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 1,
		Date: tomorrow(), Start: mustClock(t, "11:00"),
		SessionKey: "sess-a",
	})
	require.NoError(t, err)

	// Another session may not release it.
	err = release.Execute(context.Background(), lock.ID, "sess-b")
	assert.True(t, httperr.IsBusiness(err, "lock_not_owned"))

	require.NoError(t, release.Execute(context.Background(), lock.ID, "sess-a"))
	// Idempotent.
	require.NoError(t, release.Execute(context.Background(), lock.ID, "sess-a"))

	// The cell is bookable again.
	_, err = acquire.Execute(context.Background(), AcquireLockInput{
		BranchID: 1, ServiceID: 10, WorkerID: 1,
		Date: tomorrow(), Start: mustClock(t, "11:00"),
		SessionKey: "sess-c",
	})
	assert.NoError(t, err)
}
