package handler

import (
	"net/http"
	"strconv"

	"linkpulse/internal/domain"
	"linkpulse/internal/middleware"
	"linkpulse/internal/repository"

	"github.com/gin-gonic/gin"
)

// ConversionHandler exposes the review queue and status transitions for
// recorded conversions. Approval gates payout eligibility.
type ConversionHandler struct {
	conversionRepo *repository.ConversionRepository
	partnerRepo    *repository.PartnerRepository
}

func NewConversionHandler(
	conversionRepo *repository.ConversionRepository,
	partnerRepo *repository.PartnerRepository,
) *ConversionHandler {
	return &ConversionHandler{conversionRepo: conversionRepo, partnerRepo: partnerRepo}
}

func (h *ConversionHandler) ListForReview(c *gin.Context) {
	limit, offset := pagination(c)
	events, err := h.conversionRepo.ListForReview(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list conversions"})
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *ConversionHandler) MyConversions(c *gin.Context) {
	partner, err := h.partnerRepo.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner profile not found"})
		return
	}
	limit, offset := pagination(c)
	events, err := h.conversionRepo.ListByPartner(partner.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list conversions"})
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *ConversionHandler) Approve(c *gin.Context) {
	h.setStatus(c, domain.ConversionStatusApproved)
}

func (h *ConversionHandler) Reject(c *gin.Context) {
	h.setStatus(c, domain.ConversionStatusRejected)
}

// setStatus transitions a PENDING conversion. Approved and rejected rows are
// final; allocated rows are protected upstream by the payout allocation index.
func (h *ConversionHandler) setStatus(c *gin.Context, status string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversion id"})
		return
	}
	event, err := h.conversionRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversion not found"})
		return
	}
	if event.Status != domain.ConversionStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "conversion is already " + event.Status})
		return
	}
	if err := h.conversionRepo.UpdateStatus(event.ID, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update conversion"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": event.ID, "status": status})
}
