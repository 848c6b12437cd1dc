package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"linkpulse/internal/middleware"
	"linkpulse/internal/repository"
	"linkpulse/internal/service"

	"github.com/gin-gonic/gin"
)

// StatsHandler serves funnel journeys and counter reconciliation.
type StatsHandler struct {
	journeySvc   *service.JourneyService
	reconcileSvc *service.ReconciliationService
	journeyRepo  *repository.JourneyRepository
	partnerRepo  *repository.PartnerRepository
	campaignRepo *repository.CampaignRepository
}

func NewStatsHandler(
	journeySvc *service.JourneyService,
	reconcileSvc *service.ReconciliationService,
	journeyRepo *repository.JourneyRepository,
	partnerRepo *repository.PartnerRepository,
	campaignRepo *repository.CampaignRepository,
) *StatsHandler {
	return &StatsHandler{
		journeySvc:   journeySvc,
		reconcileSvc: reconcileSvc,
		journeyRepo:  journeyRepo,
		partnerRepo:  partnerRepo,
		campaignRepo: campaignRepo,
	}
}

func (h *StatsHandler) MyJourneys(c *gin.Context) {
	partner, err := h.partnerRepo.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner profile not found"})
		return
	}
	limit, offset := pagination(c)
	journeys, err := h.journeyRepo.ListByPartner(partner.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list journeys"})
		return
	}
	c.JSON(http.StatusOK, journeys)
}

func (h *StatsHandler) CampaignJourneys(c *gin.Context) {
	campaignID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}
	campaign, err := h.campaignRepo.GetByID(uint(campaignID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if campaign.VendorID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	limit, offset := pagination(c)
	journeys, err := h.journeyRepo.ListByCampaign(campaign.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list journeys"})
		return
	}
	c.JSON(http.StatusOK, journeys)
}

type RecomputeRequest struct {
	CookieID string `json:"cookie_id" binding:"required,uuid"`
}

// RecomputeJourneys rebuilds the journey projection for one cookie from the
// conversion log. Safe to call any number of times.
func (h *StatsHandler) RecomputeJourneys(c *gin.Context) {
	var req RecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	count, err := h.journeySvc.Recompute(req.CookieID, time.Now())
	if err != nil {
		log.Printf("[Stats] journey recompute failed for cookie %s: %v", req.CookieID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recompute failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cookie_id": req.CookieID, "journeys": count})
}

// Reconcile rewrites every enrollment's display counters from the click and
// conversion tables.
func (h *StatsHandler) Reconcile(c *gin.Context) {
	fixed, err := h.reconcileSvc.ReconcileAll()
	if err != nil {
		log.Printf("[Stats] reconciliation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reconciled": fixed})
}
