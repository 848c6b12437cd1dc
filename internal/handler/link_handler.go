package handler

import (
	"net/http"
	"strconv"

	"linkpulse/internal/domain"
	"linkpulse/internal/middleware"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"

	"github.com/gin-gonic/gin"
)

type LinkHandler struct {
	linkRepo       *repository.LinkRepository
	partnerRepo    *repository.PartnerRepository
	enrollmentRepo *repository.EnrollmentRepository
}

func NewLinkHandler(
	linkRepo *repository.LinkRepository,
	partnerRepo *repository.PartnerRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *LinkHandler {
	return &LinkHandler{
		linkRepo:       linkRepo,
		partnerRepo:    partnerRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

type LinkRequest struct {
	EnrollmentID uint   `json:"enrollment_id" binding:"required"`
	Label        string `json:"label" binding:"max=255"`
	CustomParams string `json:"custom_params" binding:"max=1024"`
}

// Create mints a short code for an approved enrollment owned by the caller.
func (h *LinkHandler) Create(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	enrollment, ok := h.ownedEnrollment(c, req.EnrollmentID)
	if !ok {
		return
	}
	if enrollment.Status != domain.EnrollmentStatusApproved {
		c.JSON(http.StatusForbidden, gin.H{"error": "enrollment is not approved"})
		return
	}
	link := &models.PartnerLink{
		CampaignPartnerID: enrollment.ID,
		Label:             req.Label,
		CustomParams:      req.CustomParams,
	}
	if err := h.linkRepo.Create(link); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create link"})
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *LinkHandler) ListByEnrollment(c *gin.Context) {
	enrollmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrollment id"})
		return
	}
	enrollment, ok := h.ownedEnrollment(c, uint(enrollmentID))
	if !ok {
		return
	}
	links, err := h.linkRepo.ListByEnrollment(enrollment.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list links"})
		return
	}
	c.JSON(http.StatusOK, links)
}

type LinkUpdateRequest struct {
	Label        string `json:"label" binding:"max=255"`
	CustomParams string `json:"custom_params" binding:"max=1024"`
}

// Update edits link metadata. The short code itself is immutable.
func (h *LinkHandler) Update(c *gin.Context) {
	linkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link id"})
		return
	}
	link, err := h.linkRepo.GetByID(uint(linkID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
		return
	}
	if _, ok := h.ownedEnrollment(c, link.CampaignPartnerID); !ok {
		return
	}
	var req LinkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.linkRepo.UpdateMetadata(link.ID, req.Label, req.CustomParams); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": link.ID, "label": req.Label, "custom_params": req.CustomParams})
}

func (h *LinkHandler) ownedEnrollment(c *gin.Context, enrollmentID uint) (*models.CampaignPartner, bool) {
	partner, err := h.partnerRepo.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner profile not found"})
		return nil, false
	}
	enrollment, err := h.enrollmentRepo.GetByID(enrollmentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "enrollment not found"})
		return nil, false
	}
	if enrollment.PartnerID != partner.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return enrollment, true
}
