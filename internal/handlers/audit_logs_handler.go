package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/httpresp"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	branchID, err := strconv.ParseUint(c.Query("branch_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_branch_id", "branch_id is required.")
		return
	}

	limit := 100
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}

	var logs []models.AuditLog
	if err := h.db.
		Where("branch_id = ?", branchID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		httperr.Internal(c, "list_failed", "Could not load audit logs.")
		return
	}

	httpresp.List(c, logs)
}
