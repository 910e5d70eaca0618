package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/httpresp"
	"github.com/sahasrara-wellness/booking-api/internal/session"
	"github.com/sahasrara-wellness/booking-api/internal/timezone"
	ucBooking "github.com/sahasrara-wellness/booking-api/internal/usecase/booking"
)

const headerSessionKey = "X-Session-Key"

// BookingHandler is the guest-facing booking flow: slot grid, lock
// acquire/release, pending booking creation and token-based lookup.
type BookingHandler struct {
	cfg      *config.Config
	sessions *session.Store

	getSlots      *ucBooking.GetSlots
	acquireLock   *ucBooking.AcquireLock
	releaseLock   *ucBooking.ReleaseLock
	createPending *ucBooking.CreatePending
	getBooking    *ucBooking.GetBooking
}

func NewBookingHandler(
	cfg *config.Config,
	sessions *session.Store,
	getSlots *ucBooking.GetSlots,
	acquireLock *ucBooking.AcquireLock,
	releaseLock *ucBooking.ReleaseLock,
	createPending *ucBooking.CreatePending,
	getBooking *ucBooking.GetBooking,
) *BookingHandler {
	return &BookingHandler{
		cfg:           cfg,
		sessions:      sessions,
		getSlots:      getSlots,
		acquireLock:   acquireLock,
		releaseLock:   releaseLock,
		createPending: createPending,
		getBooking:    getBooking,
	}
}

// --------- Requests ---------

type AcquireLockRequest struct {
	BranchID  uint   `json:"branch_id" binding:"required"`
	ServiceID uint   `json:"service_id" binding:"required"`
	WorkerID  uint   `json:"worker_id"` // 0 means "any worker"
	Date      string `json:"date" binding:"required"`
	Start     string `json:"start" binding:"required"`
}

type CreateBookingRequest struct {
	LockID    uint   `json:"lock_id" binding:"required"`
	ServiceID uint   `json:"service_id" binding:"required"`

	GuestName  string `json:"guest_name" binding:"required"`
	GuestPhone string `json:"guest_phone" binding:"required"`
	GuestEmail string `json:"guest_email"`

	Notes string `json:"notes"`
}

// --------- Handlers ---------

// GetSlots returns the bookable grid. worker_id=0 (or absent) merges all
// workers at the branch.
func (h *BookingHandler) GetSlots(c *gin.Context) {
	branchID, err1 := strconv.ParseUint(c.Query("branch_id"), 10, 64)
	serviceID, err2 := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err1 != nil || err2 != nil {
		httperr.BadRequest(c, "invalid_request", "branch_id and service_id are required.")
		return
	}

	date, err := timezone.ParseDate(c.Query("date"), h.cfg.Timezone)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Expected date=YYYY-MM-DD.")
		return
	}

	workerID, _ := strconv.ParseUint(c.Query("worker_id"), 10, 64)

	var slots []domain.Slot
	if workerID == 0 {
		slots, err = h.getSlots.ExecuteAnyWorker(c.Request.Context(), uint(branchID), uint(serviceID), date)
	} else {
		slots, err = h.getSlots.Execute(c.Request.Context(), domain.AvailabilityInput{
			BranchID:  uint(branchID),
			ServiceID: uint(serviceID),
			WorkerID:  uint(workerID),
			Date:      date,
		})
	}
	if err != nil {
		writeError(c, err)
		return
	}

	type slotDTO struct {
		Start   string `json:"start"`
		End     string `json:"end"`
		Display string `json:"display"`
	}
	out := make([]slotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotDTO{
			Start:   s.Start.String(),
			End:     s.End.String(),
			Display: s.Display,
		})
	}
	httpresp.List(c, out)
}

func (h *BookingHandler) AcquireLock(c *gin.Context) {
	var req AcquireLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid lock request.")
		return
	}

	date, err := timezone.ParseDate(req.Date, h.cfg.Timezone)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Expected date=YYYY-MM-DD.")
		return
	}

	start, err := domain.ParseClock(req.Start)
	if err != nil {
		httperr.BadRequest(c, "invalid_time", "Expected start=HH:MM.")
		return
	}

	sessionKey := c.GetHeader(headerSessionKey)
	if sessionKey == "" {
		sessionKey = session.NewKey()
	}

	lock, err := h.acquireLock.Execute(c.Request.Context(), ucBooking.AcquireLockInput{
		BranchID:   req.BranchID,
		ServiceID:  req.ServiceID,
		WorkerID:   req.WorkerID,
		Date:       date,
		Start:      start,
		SessionKey: sessionKey,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	flow := &session.Flow{
		BranchID:  req.BranchID,
		ServiceID: req.ServiceID,
		WorkerID:  lock.WorkerID,
		Date:      req.Date,
		Start:     req.Start,
		LockID:    lock.ID,
	}
	if err := h.sessions.Save(c.Request.Context(), sessionKey, flow); err != nil {
		log.Error().Err(err).Msg("failed to save booking flow")
	}

	httpresp.OK(c, gin.H{
		"session_key": sessionKey,
		"lock":        lock,
	})
}

func (h *BookingHandler) ReleaseLock(c *gin.Context) {
	lockID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_lock_id", "Invalid lock id.")
		return
	}

	sessionKey := c.GetHeader(headerSessionKey)
	if sessionKey == "" {
		httperr.BadRequest(c, "missing_session_key", "X-Session-Key header is required.")
		return
	}

	if err := h.releaseLock.Execute(c.Request.Context(), uint(lockID), sessionKey); err != nil {
		writeError(c, err)
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), sessionKey); err != nil {
		log.Error().Err(err).Msg("failed to delete booking flow")
	}

	httpresp.OK(c, gin.H{"released": true})
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid booking request.")
		return
	}

	sessionKey := c.GetHeader(headerSessionKey)
	if sessionKey == "" {
		httperr.BadRequest(c, "missing_session_key", "X-Session-Key header is required.")
		return
	}

	b, err := h.createPending.Execute(c.Request.Context(), ucBooking.CreatePendingInput{
		LockID:     req.LockID,
		SessionKey: sessionKey,
		ServiceID:  req.ServiceID,
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		GuestEmail: req.GuestEmail,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	// The access token goes out exactly once, in this response.
	httpresp.Created(c, gin.H{
		"booking":      b,
		"access_token": b.AccessToken,
	})
}

// ListMine lists the bookings made under the caller's session key.
func (h *BookingHandler) ListMine(c *gin.Context) {
	sessionKey := c.GetHeader(headerSessionKey)
	if sessionKey == "" {
		httperr.BadRequest(c, "missing_session_key", "X-Session-Key header is required.")
		return
	}

	bookings, err := h.getBooking.ListForSession(c.Request.Context(), sessionKey)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, bookings)
}

func (h *BookingHandler) Get(c *gin.Context) {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	token := c.Query("token")
	if token == "" {
		httperr.BadRequest(c, "missing_token", "token query parameter is required.")
		return
	}

	b, err := h.getBooking.Execute(c.Request.Context(), uint(bookingID), token)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, b)
}
