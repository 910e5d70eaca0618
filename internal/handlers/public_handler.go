package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/httpresp"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

// PublicHandler serves the unauthenticated catalog: branches, their services
// and their workers. Everything here is read-only.
type PublicHandler struct {
	db *gorm.DB
}

func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

func (h *PublicHandler) ListBranches(c *gin.Context) {
	var branches []models.Branch
	if err := h.db.
		Where("is_active = true").
		Order("name ASC").
		Find(&branches).Error; err != nil {
		httperr.Internal(c, "list_failed", "Could not load branches.")
		return
	}
	httpresp.List(c, branches)
}

func (h *PublicHandler) ListServices(c *gin.Context) {
	branchID, err := strconv.ParseUint(c.Param("branchId"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_branch_id", "Invalid branch id.")
		return
	}

	var services []models.Service
	if err := h.db.
		Joins("JOIN service_branches sb ON sb.service_id = services.id").
		Where("sb.branch_id = ? AND services.is_active = true", branchID).
		Order("services.name ASC").
		Find(&services).Error; err != nil {
		httperr.Internal(c, "list_failed", "Could not load services.")
		return
	}
	httpresp.List(c, services)
}

func (h *PublicHandler) ListWorkers(c *gin.Context) {
	branchID, err := strconv.ParseUint(c.Param("branchId"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_branch_id", "Invalid branch id.")
		return
	}

	var workers []models.Worker
	if err := h.db.
		Where("branch_id = ? AND is_active = true", branchID).
		Order("name ASC").
		Find(&workers).Error; err != nil {
		httperr.Internal(c, "list_failed", "Could not load workers.")
		return
	}
	httpresp.List(c, workers)
}
