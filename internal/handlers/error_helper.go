package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahasrara-wellness/booking-api/internal/httperr"
)

var businessStatus = map[string]int{
	"branch_not_found":     http.StatusNotFound,
	"service_not_found":    http.StatusNotFound,
	"worker_not_found":     http.StatusNotFound,
	"booking_not_found":    http.StatusNotFound,
	"lock_not_found":       http.StatusNotFound,
	"slot_conflict":        http.StatusConflict,
	"slot_already_locked":  http.StatusConflict,
	"invalid_transition":   http.StatusConflict,
	"lock_not_owned":       http.StatusForbidden,
	"lock_expired":         http.StatusGone,
	"same_day_cutoff":      http.StatusUnprocessableEntity,
	"slot_not_available":   http.StatusUnprocessableEntity,
	"no_workers_available": http.StatusUnprocessableEntity,
	"invalid_phone":        http.StatusBadRequest,
}

func writeError(c *gin.Context, err error) {
	if be, ok := httperr.AsBusiness(err); ok {
		status, found := businessStatus[be.Code]
		if !found {
			status = http.StatusBadRequest
		}
		httperr.Write(c, status, be.Code, be.Code)
		return
	}
	httperr.Internal(c, "internal_error", "Something went wrong.")
}
