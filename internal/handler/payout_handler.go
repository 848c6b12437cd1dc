package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"linkpulse/internal/domain"
	"linkpulse/internal/middleware"
	"linkpulse/internal/repository"
	"linkpulse/internal/service"

	"github.com/gin-gonic/gin"
)

type PayoutHandler struct {
	svc         *service.PayoutService
	payoutRepo  *repository.PayoutRepository
	partnerRepo *repository.PartnerRepository
}

func NewPayoutHandler(
	svc *service.PayoutService,
	payoutRepo *repository.PayoutRepository,
	partnerRepo *repository.PartnerRepository,
) *PayoutHandler {
	return &PayoutHandler{svc: svc, payoutRepo: payoutRepo, partnerRepo: partnerRepo}
}

type CreatePayoutRequest struct {
	PartnerID     uint   `json:"partner_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required,max=64"`
	PeriodStart   string `json:"period_start" binding:"required"` // RFC3339
	PeriodEnd     string `json:"period_end" binding:"required"`   // RFC3339, exclusive
}

func (h *PayoutHandler) Create(c *gin.Context) {
	var req CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := time.Parse(time.RFC3339, req.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start (use RFC3339)"})
		return
	}
	end, err := time.Parse(time.RFC3339, req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_end (use RFC3339)"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period_end must be after period_start"})
		return
	}
	payout, err := h.svc.CreatePayout(req.PartnerID, req.PaymentMethod, start, end)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "partner not found"})
		case errors.Is(err, domain.ErrForbidden):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoEligibleEvents):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrBelowMinimum):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			log.Printf("[Payout] create failed for partner %d: %v", req.PartnerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create payout"})
		}
		return
	}
	c.JSON(http.StatusCreated, payout)
}

func (h *PayoutHandler) Process(c *gin.Context) {
	id, ok := payoutID(c)
	if !ok {
		return
	}
	payout, err := h.svc.MarkProcessing(c.Request.Context(), id)
	if err != nil {
		h.transitionError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, payout)
}

func (h *PayoutHandler) Retry(c *gin.Context) {
	id, ok := payoutID(c)
	if !ok {
		return
	}
	payout, err := h.svc.Retry(id)
	if err != nil {
		h.transitionError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, payout)
}

func (h *PayoutHandler) Get(c *gin.Context) {
	id, ok := payoutID(c)
	if !ok {
		return
	}
	payout, err := h.payoutRepo.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payout not found"})
		return
	}
	c.JSON(http.StatusOK, payout)
}

func (h *PayoutHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	payouts, err := h.payoutRepo.List(c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list payouts"})
		return
	}
	c.JSON(http.StatusOK, payouts)
}

// MyPayouts lists the calling partner's own payouts.
func (h *PayoutHandler) MyPayouts(c *gin.Context) {
	partner, err := h.partnerRepo.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner profile not found"})
		return
	}
	payouts, err := h.payoutRepo.ListByPartner(partner.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list payouts"})
		return
	}
	c.JSON(http.StatusOK, payouts)
}

func (h *PayoutHandler) transitionError(c *gin.Context, id uint, err error) {
	if errors.Is(err, domain.ErrInvalidStateTransition) {
		c.JSON(http.StatusConflict, gin.H{"error": "payout is not in a state that allows this transition"})
		return
	}
	log.Printf("[Payout] transition failed for %d: %v", id, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "payout transition failed"})
}

func payoutID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return 0, false
	}
	return uint(id), true
}
