package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/models"
	"github.com/sahasrara-wellness/booking-api/internal/timezone"
	"github.com/sahasrara-wellness/booking-api/internal/validators"
)

var errNotFound = errors.New("not found")

// fakeRepo is an in-memory Repository. A single mutex plays the role the
// database row locks play in production: every check-then-write runs under
// it, so the concurrency tests exercise the same serialization the real
// transactions provide.
type fakeRepo struct {
	mu sync.Mutex

	branches  map[uint]*models.Branch
	schedules map[uint]map[int]bool // branchID -> weekday -> open
	services  map[uint]*models.Service
	serviceAt map[uint]map[uint]bool // branchID -> serviceID
	workers   map[uint]*models.Worker
	leaves    map[uint]map[string]bool // workerID -> date -> on leave

	locks    []*models.SlotLock
	bookings []*models.Booking
	logs     []*models.BookingStatusLog
	guests   []*models.Guest
	payments []*models.Payment

	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		branches:  map[uint]*models.Branch{},
		schedules: map[uint]map[int]bool{},
		services:  map[uint]*models.Service{},
		serviceAt: map[uint]map[uint]bool{},
		workers:   map[uint]*models.Worker{},
		leaves:    map[uint]map[string]bool{},
	}
}

func (f *fakeRepo) id() uint {
	f.nextID++
	return f.nextID
}

// --------- fixtures ---------

func (f *fakeRepo) addBranch(id uint, open, close string) *models.Branch {
	b := &models.Branch{ID: id, Name: "Branch", OpeningTime: open, ClosingTime: close, IsActive: true}
	f.branches[id] = b
	days := map[int]bool{}
	for d := 0; d < 7; d++ {
		days[d] = true
	}
	f.schedules[id] = days
	return b
}

func (f *fakeRepo) addService(id, branchID uint, duration, buffer int, price float64) *models.Service {
	s := &models.Service{ID: id, Name: "Service", DurationMinutes: duration, BufferMinutes: buffer, Price: price, IsActive: true}
	f.services[id] = s
	if f.serviceAt[branchID] == nil {
		f.serviceAt[branchID] = map[uint]bool{}
	}
	f.serviceAt[branchID][id] = true
	return s
}

func (f *fakeRepo) addWorker(id, branchID uint) *models.Worker {
	w := &models.Worker{ID: id, BranchID: branchID, Name: "Worker", IsActive: true}
	f.workers[id] = w
	return w
}

func dateKey(t time.Time) string {
	return timezone.Day(t).Format("2006-01-02")
}

// --------- Branch ---------

func (f *fakeRepo) GetBranch(_ context.Context, id uint) (*models.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.branches[id]
	if !ok || !b.IsActive {
		return nil, errNotFound
	}
	return b, nil
}

func (f *fakeRepo) IsBranchOpenOn(_ context.Context, branchID uint, weekday int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.schedules[branchID][weekday], nil
}

// --------- Service ---------

func (f *fakeRepo) GetServiceAtBranch(_ context.Context, branchID, serviceID uint) (*models.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.serviceAt[branchID][serviceID] {
		return nil, errNotFound
	}
	s, ok := f.services[serviceID]
	if !ok || !s.IsActive {
		return nil, errNotFound
	}
	return s, nil
}

// --------- Worker ---------

func (f *fakeRepo) GetWorker(_ context.Context, id uint) (*models.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workers[id]
	if !ok {
		return nil, errNotFound
	}
	return w, nil
}

func (f *fakeRepo) ListActiveWorkers(_ context.Context, branchID uint) ([]models.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Worker
	for _, w := range f.workers {
		if w.BranchID == branchID && w.IsActive {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) HasLeave(_ context.Context, workerID uint, date time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leaves[workerID][dateKey(date)], nil
}

// --------- Occupancy ---------

func (f *fakeRepo) ListOccupiedSpans(_ context.Context, workerID uint, date time.Time, now time.Time) ([]domain.Span, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := dateKey(date)
	var spans []domain.Span

	for _, b := range f.bookings {
		if b.WorkerID == workerID && dateKey(b.BookingDate) == key && b.Status == string(domain.StatusConfirmed) {
			if s, ok := parseTestSpan(b.StartTime, b.EndTime); ok {
				spans = append(spans, s)
			}
		}
	}
	for _, l := range f.locks {
		if l.WorkerID == workerID && dateKey(l.BookingDate) == key && !l.Released && l.ExpiresAt.After(now) {
			if s, ok := parseTestSpan(l.StartTime, l.EndTime); ok {
				spans = append(spans, s)
			}
		}
	}
	return spans, nil
}

func parseTestSpan(start, end string) (domain.Span, bool) {
	s, err := domain.ParseClock(start)
	if err != nil {
		return domain.Span{}, false
	}
	e, err := domain.ParseClock(end)
	if err != nil {
		return domain.Span{}, false
	}
	return domain.Span{Start: s, End: e}, true
}

func (f *fakeRepo) CountConfirmedBookings(_ context.Context, workerID uint, date time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := dateKey(date)
	n := 0
	for _, b := range f.bookings {
		if b.WorkerID == workerID && dateKey(b.BookingDate) == key && b.Status == string(domain.StatusConfirmed) {
			n++
		}
	}
	return n, nil
}

// --------- Slot locks ---------

func (f *fakeRepo) AcquireLock(_ context.Context, lock *models.SlotLock, now time.Time, guard func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if guard != nil {
		if err := guard(); err != nil {
			return err
		}
	}

	key := dateKey(lock.BookingDate)

	for _, b := range f.bookings {
		if b.WorkerID == lock.WorkerID && dateKey(b.BookingDate) == key &&
			b.StartTime == lock.StartTime && b.Status == string(domain.StatusConfirmed) {
			return httperr.ErrBusiness("slot_conflict")
		}
	}

	for _, l := range f.locks {
		if l.WorkerID == lock.WorkerID && dateKey(l.BookingDate) == key &&
			l.StartTime == lock.StartTime && !l.Released {
			if l.ExpiresAt.After(now) {
				return httperr.ErrBusiness("slot_already_locked")
			}
			l.Released = true
		}
	}

	lock.ID = f.id()
	lock.BookingDate = timezone.Day(lock.BookingDate)
	f.locks = append(f.locks, lock)
	return nil
}

func (f *fakeRepo) GetLock(_ context.Context, id uint) (*models.SlotLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.locks {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeRepo) ReleaseLock(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.locks {
		if l.ID == id {
			l.Released = true
		}
	}
	return nil
}

func (f *fakeRepo) ReleaseExpiredLocks(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, l := range f.locks {
		if !l.Released && l.ExpiresAt.Before(now) {
			l.Released = true
			n++
		}
	}
	return n, nil
}

// --------- Guest ---------

func (f *fakeRepo) GetOrCreateGuest(_ context.Context, name, phone, email string) (*models.Guest, error) {
	normalized, err := validators.NormalizePhone(phone)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_phone")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, g := range f.guests {
		if g.Phone == normalized {
			if name != "" {
				g.Name = name
			}
			if email != "" {
				g.Email = email
			}
			return g, nil
		}
	}

	g := &models.Guest{ID: f.id(), Name: name, Phone: normalized, Email: email}
	f.guests = append(f.guests, g)
	return g, nil
}

// --------- Booking (create) ---------

func (f *fakeRepo) CreateBookingWithLog(_ context.Context, b *models.Booking, log *models.BookingStatusLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b.ID = f.id()
	b.BookingDate = timezone.Day(b.BookingDate)
	b.CreatedAt = time.Now()
	f.bookings = append(f.bookings, b)

	log.BookingID = b.ID
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeRepo) CreateConfirmedBooking(_ context.Context, b *models.Booking, log *models.BookingStatusLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := dateKey(b.BookingDate)
	for _, other := range f.bookings {
		if other.WorkerID == b.WorkerID && dateKey(other.BookingDate) == key &&
			other.StartTime == b.StartTime && other.Status == string(domain.StatusConfirmed) {
			return httperr.ErrBusiness("slot_conflict")
		}
	}

	b.ID = f.id()
	b.BookingDate = timezone.Day(b.BookingDate)
	b.CreatedAt = time.Now()
	f.bookings = append(f.bookings, b)

	log.BookingID = b.ID
	f.logs = append(f.logs, log)
	return nil
}

// --------- Booking (read) ---------

func (f *fakeRepo) findBooking(id uint) *models.Booking {
	for _, b := range f.bookings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (f *fakeRepo) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.findBooking(id)
	if b == nil {
		return nil, errNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) GetBookingByToken(_ context.Context, id uint, token string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.findBooking(id)
	if b == nil || b.AccessToken != token {
		return nil, errNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeRepo) ListBookingsForDate(_ context.Context, branchID uint, date time.Time) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := dateKey(date)
	var out []models.Booking
	for _, b := range f.bookings {
		if b.BranchID == branchID && dateKey(b.BookingDate) == key {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListBookingsForSession(_ context.Context, sessionKey string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Booking
	for _, b := range f.bookings {
		if b.SlotLockID == nil {
			continue
		}
		for _, l := range f.locks {
			if l.ID == *b.SlotLockID && l.SessionKey == sessionKey {
				out = append(out, *b)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) ListStalePendingBookings(_ context.Context, olderThan time.Time) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Booking
	for _, b := range f.bookings {
		if b.Status != string(domain.StatusPendingPayment) || !b.CreatedAt.Before(olderThan) {
			continue
		}
		cp := *b
		if b.SlotLockID != nil {
			for _, l := range f.locks {
				if l.ID == *b.SlotLockID {
					lcp := *l
					cp.SlotLock = &lcp
				}
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeRepo) ListStatusLogs(_ context.Context, bookingID uint) ([]models.BookingStatusLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.BookingStatusLog
	for _, l := range f.logs {
		if l.BookingID == bookingID {
			out = append(out, *l)
		}
	}
	return out, nil
}

// --------- Booking (state change) ---------

func (f *fakeRepo) TransitionBooking(
	_ context.Context,
	bookingID uint,
	apply func(b *models.Booking) (*models.BookingStatusLog, error),
) (*models.Booking, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	b := f.findBooking(bookingID)
	if b == nil {
		return nil, errNotFound
	}

	cp := *b
	log, err := apply(&cp)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return &cp, nil
	}

	*b = cp
	f.logs = append(f.logs, log)
	out := *b
	return &out, nil
}

func (f *fakeRepo) ConfirmBooking(
	_ context.Context,
	bookingID uint,
	gatewayPaymentID string,
	amount float64,
	source string,
	now time.Time,
) (*models.Booking, bool, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	if gatewayPaymentID != "" {
		for _, p := range f.payments {
			if p.GatewayPaymentID != nil && *p.GatewayPaymentID == gatewayPaymentID && p.Status == models.PaymentCaptured {
				if b := f.findBooking(bookingID); b != nil {
					cp := *b
					return &cp, false, nil
				}
				return nil, false, errNotFound
			}
		}
	}

	b := f.findBooking(bookingID)
	if b == nil {
		return nil, false, errNotFound
	}

	if b.Status == string(domain.StatusConfirmed) {
		cp := *b
		return &cp, false, nil
	}

	log := domain.Confirm(b, amount, source, "payment captured via "+source)
	f.logs = append(f.logs, log)

	for _, p := range f.payments {
		if p.BookingID == b.ID {
			p.Status = models.PaymentCaptured
			paidAt := now
			p.PaidAt = &paidAt
			if gatewayPaymentID != "" {
				gp := gatewayPaymentID
				p.GatewayPaymentID = &gp
			}
		}
	}

	cp := *b
	return &cp, true, nil
}

// --------- Payments ---------

func (f *fakeRepo) CreatePayment(_ context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.id()
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakeRepo) GetPaymentByOrderID(_ context.Context, orderID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.GatewayOrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeRepo) GetPaymentForBooking(_ context.Context, bookingID uint) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.BookingID == bookingID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeRepo) HasWebhookEvent(_ context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.WebhookEventID != nil && *p.WebhookEventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) RecordWebhookEvent(_ context.Context, paymentID uint, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ID == paymentID {
			ev := eventID
			p.WebhookEventID = &ev
		}
	}
	return nil
}

var _ domain.Repository = (*fakeRepo)(nil)
