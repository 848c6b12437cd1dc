package handler

import (
	"errors"
	"net/http"
	"strconv"

	"linkpulse/internal/domain"
	"linkpulse/internal/middleware"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PartnerHandler struct {
	partnerRepo    *repository.PartnerRepository
	campaignRepo   *repository.CampaignRepository
	enrollmentRepo *repository.EnrollmentRepository
}

func NewPartnerHandler(
	partnerRepo *repository.PartnerRepository,
	campaignRepo *repository.CampaignRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *PartnerHandler {
	return &PartnerHandler{
		partnerRepo:    partnerRepo,
		campaignRepo:   campaignRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (h *PartnerHandler) Me(c *gin.Context) {
	partner, err := h.partnerRepo.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner profile not found"})
		return
	}
	c.JSON(http.StatusOK, partner)
}

type PartnerUpdateRequest struct {
	PayoutEmail string `json:"payout_email" binding:"omitempty,email"`
}

func (h *PartnerHandler) UpdateMe(c *gin.Context) {
	partner, err := h.partnerRepo.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner profile not found"})
		return
	}
	var req PartnerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PayoutEmail != "" {
		partner.PayoutEmail = req.PayoutEmail
	}
	if err := h.partnerRepo.Update(partner); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update partner"})
		return
	}
	c.JSON(http.StatusOK, partner)
}

func (h *PartnerHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	partners, err := h.partnerRepo.List(c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list partners"})
		return
	}
	c.JSON(http.StatusOK, partners)
}

func (h *PartnerHandler) Approve(c *gin.Context) {
	h.setStatus(c, domain.PartnerStatusActive)
}

func (h *PartnerHandler) Suspend(c *gin.Context) {
	h.setStatus(c, domain.PartnerStatusSuspended)
}

func (h *PartnerHandler) setStatus(c *gin.Context, status string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid partner id"})
		return
	}
	if _, err := h.partnerRepo.GetByID(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner not found"})
		return
	}
	if err := h.partnerRepo.UpdateStatus(uint(id), status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update partner"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

type EnrollRequest struct {
	CampaignID uint `json:"campaign_id" binding:"required"`
}

// Enroll applies the calling partner to a campaign. Campaigns without
// approval gating enroll as APPROVED immediately.
func (h *PartnerHandler) Enroll(c *gin.Context) {
	partner, err := h.partnerRepo.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner profile not found"})
		return
	}
	if partner.Status != domain.PartnerStatusActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "partner account is not active"})
		return
	}
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	campaign, err := h.campaignRepo.GetByID(req.CampaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if campaign.Status != domain.CampaignStatusActive {
		c.JSON(http.StatusConflict, gin.H{"error": "campaign is not active"})
		return
	}
	status := domain.EnrollmentStatusApproved
	if campaign.ApprovalRequired {
		status = domain.EnrollmentStatusPending
	}
	enrollment := &models.CampaignPartner{
		CampaignID: campaign.ID,
		PartnerID:  partner.ID,
		Status:     status,
	}
	if err := h.enrollmentRepo.Create(enrollment); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "already enrolled in this campaign"})
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *PartnerHandler) MyEnrollments(c *gin.Context) {
	partner, err := h.partnerRepo.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "partner profile not found"})
		return
	}
	enrollments, err := h.enrollmentRepo.ListByPartner(partner.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list enrollments"})
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

func (h *PartnerHandler) CampaignEnrollments(c *gin.Context) {
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
	if campaign.VendorID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	enrollments, err := h.enrollmentRepo.ListByCampaign(campaign.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list enrollments"})
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

func (h *PartnerHandler) ApproveEnrollment(c *gin.Context) {
	h.setEnrollmentStatus(c, domain.EnrollmentStatusApproved)
}

func (h *PartnerHandler) RejectEnrollment(c *gin.Context) {
	h.setEnrollmentStatus(c, domain.EnrollmentStatusRejected)
}

func (h *PartnerHandler) setEnrollmentStatus(c *gin.Context, status string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrollment id"})
		return
	}
	enrollment, err := h.enrollmentRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "enrollment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load enrollment"})
		}
		return
	}
	campaign, err := h.campaignRepo.GetByID(enrollment.CampaignID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load campaign"})
		return
	}
	if campaign.VendorID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := h.enrollmentRepo.UpdateStatus(enrollment.ID, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update enrollment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": enrollment.ID, "status": status})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
