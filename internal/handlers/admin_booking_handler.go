package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/dto"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/httpresp"
	"github.com/sahasrara-wellness/booking-api/internal/middleware"
	"github.com/sahasrara-wellness/booking-api/internal/timezone"
	ucBooking "github.com/sahasrara-wellness/booking-api/internal/usecase/booking"
)

// AdminBookingHandler is the staff surface: manual bookings, lifecycle
// transitions and the daily schedule.
type AdminBookingHandler struct {
	cfg *config.Config

	createManual *ucBooking.CreateManual
	complete     *ucBooking.CompleteBooking
	cancel       *ucBooking.CancelBooking
	listByDate   *ucBooking.ListBookingsByDate
	listLogs     *ucBooking.ListStatusLogs
}

func NewAdminBookingHandler(
	cfg *config.Config,
	createManual *ucBooking.CreateManual,
	complete *ucBooking.CompleteBooking,
	cancel *ucBooking.CancelBooking,
	listByDate *ucBooking.ListBookingsByDate,
	listLogs *ucBooking.ListStatusLogs,
) *AdminBookingHandler {
	return &AdminBookingHandler{
		cfg:          cfg,
		createManual: createManual,
		complete:     complete,
		cancel:       cancel,
		listByDate:   listByDate,
		listLogs:     listLogs,
	}
}

// --------- Requests ---------

type CreateManualBookingRequest struct {
	BranchID  uint   `json:"branch_id" binding:"required"`
	ServiceID uint   `json:"service_id" binding:"required"`
	WorkerID  uint   `json:"worker_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Start     string `json:"start" binding:"required"`

	GuestName  string `json:"guest_name" binding:"required"`
	GuestPhone string `json:"guest_phone" binding:"required"`
	GuestEmail string `json:"guest_email"`

	Notes string `json:"notes"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// --------- Handlers ---------

func (h *AdminBookingHandler) CreateManual(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateManualBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid booking request.")
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

	b, err := h.createManual.Execute(c.Request.Context(), ucBooking.CreateManualInput{
		BranchID:   req.BranchID,
		ServiceID:  req.ServiceID,
		WorkerID:   req.WorkerID,
		Date:       date,
		Start:      start,
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		GuestEmail: req.GuestEmail,
		Notes:      req.Notes,
		UserID:     userID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.Created(c, b)
}

func (h *AdminBookingHandler) Complete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	b, err := h.complete.Execute(c.Request.Context(), uint(bookingID), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *AdminBookingHandler) Cancel(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.cancel.Execute(c.Request.Context(), uint(bookingID), userID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *AdminBookingHandler) ListByDate(c *gin.Context) {
	branchID, err := strconv.ParseUint(c.Query("branch_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_branch_id", "branch_id is required.")
		return
	}

	date, err := timezone.ParseDate(c.Query("date"), h.cfg.Timezone)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Expected date=YYYY-MM-DD.")
		return
	}

	bookings, err := h.listByDate.Execute(c.Request.Context(), uint(branchID), date)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for i := range bookings {
		out = append(out, dto.NewBookingListDTO(&bookings[i]))
	}
	httpresp.List(c, out)
}

func (h *AdminBookingHandler) ListStatusLogs(c *gin.Context) {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	logs, err := h.listLogs.Execute(c.Request.Context(), uint(bookingID))
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, logs)
}
