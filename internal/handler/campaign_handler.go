package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"linkpulse/internal/domain"
	"linkpulse/internal/middleware"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"
	"linkpulse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CampaignHandler struct {
	campaignRepo  *repository.CampaignRepository
	overrideRepo  *repository.OverrideRepository
	eventTypeRepo *repository.EventTypeRepository
}

func NewCampaignHandler(
	campaignRepo *repository.CampaignRepository,
	overrideRepo *repository.OverrideRepository,
	eventTypeRepo *repository.EventTypeRepository,
) *CampaignHandler {
	return &CampaignHandler{
		campaignRepo:  campaignRepo,
		overrideRepo:  overrideRepo,
		eventTypeRepo: eventTypeRepo,
	}
}

type CampaignRequest struct {
	Name               string  `json:"name" binding:"required,max=255"`
	DestinationURL     string  `json:"destination_url" binding:"required,url"`
	AttributionPolicy  string  `json:"attribution_policy" binding:"omitempty,oneof=LAST_CLICK FIRST_CLICK"`
	CommissionType     string  `json:"commission_type" binding:"required,oneof=FLAT PERCENTAGE TIERED"`
	CommissionValue    string  `json:"commission_value"`
	TierBasis          string  `json:"tier_basis" binding:"omitempty,oneof=GMV CONVERSIONS"`
	CookieDurationDays int     `json:"cookie_duration_days" binding:"omitempty,min=1,max=365"`
	ApprovalRequired   *bool   `json:"approval_required"`
	IsPublic           *bool   `json:"is_public"`
}

type TierRequest struct {
	MinValue        string  `json:"min_value" binding:"required"`
	MaxValue        *string `json:"max_value"`
	CommissionType  string  `json:"commission_type" binding:"required,oneof=FLAT PERCENTAGE"`
	CommissionValue string  `json:"commission_value" binding:"required"`
}

func (h *CampaignHandler) Create(c *gin.Context) {
	var req CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	value := decimal.Zero
	if req.CommissionValue != "" {
		v, err := decimal.NewFromString(req.CommissionValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid commission_value"})
			return
		}
		value = v
	}
	campaign := &models.Campaign{
		VendorID:           middleware.GetUserID(c),
		Name:               req.Name,
		DestinationURL:     req.DestinationURL,
		Status:             domain.CampaignStatusDraft,
		AttributionPolicy:  req.AttributionPolicy,
		CommissionType:     req.CommissionType,
		CommissionValue:    value,
		TierBasis:          req.TierBasis,
		CookieDurationDays: req.CookieDurationDays,
	}
	if campaign.AttributionPolicy == "" {
		campaign.AttributionPolicy = domain.AttributionLastClick
	}
	if campaign.CookieDurationDays == 0 {
		campaign.CookieDurationDays = 30
	}
	if req.ApprovalRequired != nil {
		campaign.ApprovalRequired = *req.ApprovalRequired
	} else {
		campaign.ApprovalRequired = true
	}
	if req.IsPublic != nil {
		campaign.IsPublic = *req.IsPublic
	} else {
		campaign.IsPublic = true
	}
	campaign.Version = 1
	if err := h.campaignRepo.Create(campaign); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create campaign"})
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (h *CampaignHandler) List(c *gin.Context) {
	if middleware.GetRole(c) == domain.RolePartner {
		campaigns, err := h.campaignRepo.ListPublicActive()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list campaigns"})
			return
		}
		c.JSON(http.StatusOK, campaigns)
		return
	}
	campaigns, err := h.campaignRepo.ListByVendor(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list campaigns"})
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

func (h *CampaignHandler) Get(c *gin.Context) {
	campaign, ok := h.ownedCampaign(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, campaign)
}

type CampaignUpdateRequest struct {
	Name               *string `json:"name"`
	DestinationURL     *string `json:"destination_url"`
	Status             *string `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE PAUSED ARCHIVED"`
	AttributionPolicy  *string `json:"attribution_policy" binding:"omitempty,oneof=LAST_CLICK FIRST_CLICK"`
	CommissionType     *string `json:"commission_type" binding:"omitempty,oneof=FLAT PERCENTAGE TIERED"`
	CommissionValue    *string `json:"commission_value"`
	TierBasis          *string `json:"tier_basis" binding:"omitempty,oneof=GMV CONVERSIONS"`
	CookieDurationDays *int    `json:"cookie_duration_days" binding:"omitempty,min=1,max=365"`
}

// Update edits the campaign, snapshotting the replaced state as a new version.
// Already-attributed conversions keep the terms they were computed under.
func (h *CampaignHandler) Update(c *gin.Context) {
	campaign, ok := h.ownedCampaign(c)
	if !ok {
		return
	}
	var req CampaignUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var value *decimal.Decimal
	if req.CommissionValue != nil {
		v, err := decimal.NewFromString(*req.CommissionValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid commission_value"})
			return
		}
		value = &v
	}
	err := h.campaignRepo.Update(campaign, func(m *models.Campaign) {
		if req.Name != nil {
			m.Name = *req.Name
		}
		if req.DestinationURL != nil {
			m.DestinationURL = *req.DestinationURL
		}
		if req.Status != nil {
			m.Status = *req.Status
		}
		if req.AttributionPolicy != nil {
			m.AttributionPolicy = *req.AttributionPolicy
		}
		if req.CommissionType != nil {
			m.CommissionType = *req.CommissionType
		}
		if value != nil {
			m.CommissionValue = *value
		}
		if req.TierBasis != nil {
			m.TierBasis = *req.TierBasis
		}
		if req.CookieDurationDays != nil {
			m.CookieDurationDays = *req.CookieDurationDays
		}
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update campaign"})
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (h *CampaignHandler) ListVersions(c *gin.Context) {
	campaign, ok := h.ownedCampaign(c)
	if !ok {
		return
	}
	versions, err := h.campaignRepo.ListVersions(campaign.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list versions"})
		return
	}
	c.JSON(http.StatusOK, versions)
}

// ReplaceTiers swaps the tier schedule atomically. Rejected as a whole when
// the schedule has gaps, overlaps, or a bounded top tier out of order.
func (h *CampaignHandler) ReplaceTiers(c *gin.Context) {
	campaign, ok := h.ownedCampaign(c)
	if !ok {
		return
	}
	var reqs []TierRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tiers := make([]models.CommissionTier, 0, len(reqs))
	for _, r := range reqs {
		min, err := decimal.NewFromString(r.MinValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_value"})
			return
		}
		value, err := decimal.NewFromString(r.CommissionValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid commission_value"})
			return
		}
		tier := models.CommissionTier{
			CampaignID:      campaign.ID,
			MinValue:        min,
			CommissionType:  r.CommissionType,
			CommissionValue: value,
		}
		if r.MaxValue != nil {
			max, err := decimal.NewFromString(*r.MaxValue)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_value"})
				return
			}
			tier.MaxValue = &max
		}
		tiers = append(tiers, tier)
	}
	if err := service.ValidateTiers(tiers); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := h.campaignRepo.ReplaceTiers(campaign.ID, tiers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save tiers"})
		return
	}
	c.JSON(http.StatusOK, tiers)
}

func (h *CampaignHandler) GetTiers(c *gin.Context) {
	campaign, ok := h.ownedCampaign(c)
	if !ok {
		return
	}
	tiers, err := h.campaignRepo.GetTiers(campaign.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list tiers"})
		return
	}
	c.JSON(http.StatusOK, tiers)
}

type OverrideRequest struct {
	PartnerID       uint    `json:"partner_id" binding:"required"`
	EventTypeID     uint    `json:"event_type_id" binding:"required"`
	CommissionType  string  `json:"commission_type" binding:"required,oneof=FLAT PERCENTAGE"`
	CommissionValue string  `json:"commission_value" binding:"required"`
	ValidFrom       string  `json:"valid_from"`  // RFC3339; defaults to now
	ValidUntil      *string `json:"valid_until"` // RFC3339; nil = open-ended
}

func (h *CampaignHandler) CreateOverride(c *gin.Context) {
	campaign, ok := h.ownedCampaign(c)
	if !ok {
		return
	}
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	value, err := decimal.NewFromString(req.CommissionValue)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid commission_value"})
		return
	}
	o := &models.PartnerCommissionOverride{
		PartnerID:       req.PartnerID,
		CampaignID:      campaign.ID,
		EventTypeID:     req.EventTypeID,
		CommissionType:  req.CommissionType,
		CommissionValue: value,
		ValidFrom:       time.Now(),
	}
	if req.ValidFrom != "" {
		t, err := time.Parse(time.RFC3339, req.ValidFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid valid_from"})
			return
		}
		o.ValidFrom = t
	}
	if req.ValidUntil != nil {
		t, err := time.Parse(time.RFC3339, *req.ValidUntil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid valid_until"})
			return
		}
		o.ValidUntil = &t
	}
	if err := h.overrideRepo.Create(o); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "override already exists for this partner and event type"})
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *CampaignHandler) ListOverrides(c *gin.Context) {
	campaign, ok := h.ownedCampaign(c)
	if !ok {
		return
	}
	overrides, err := h.overrideRepo.ListByCampaign(campaign.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list overrides"})
		return
	}
	c.JSON(http.StatusOK, overrides)
}

func (h *CampaignHandler) DeleteOverride(c *gin.Context) {
	if _, ok := h.ownedCampaign(c); !ok {
		return
	}
	overrideID, err := strconv.ParseUint(c.Param("override_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid override id"})
		return
	}
	if err := h.overrideRepo.Delete(uint(overrideID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete override"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *CampaignHandler) ListEventTypes(c *gin.Context) {
	types, err := h.eventTypeRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list event types"})
		return
	}
	c.JSON(http.StatusOK, types)
}

type EventTypeRequest struct {
	Name                   string  `json:"name" binding:"required,max=64"`
	Commissionable         *bool   `json:"commissionable"`
	IsTerminal             bool    `json:"is_terminal"`
	DefaultCommissionType  string  `json:"default_commission_type" binding:"omitempty,oneof=FLAT PERCENTAGE"`
	DefaultCommissionValue *string `json:"default_commission_value"`
}

func (h *CampaignHandler) CreateEventType(c *gin.Context) {
	var req EventTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	et := &models.EventType{
		Name:                  req.Name,
		Commissionable:        true,
		IsTerminal:            req.IsTerminal,
		DefaultCommissionType: req.DefaultCommissionType,
	}
	if req.Commissionable != nil {
		et.Commissionable = *req.Commissionable
	}
	if req.DefaultCommissionValue != nil {
		v, err := decimal.NewFromString(*req.DefaultCommissionValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid default_commission_value"})
			return
		}
		et.DefaultCommissionValue = &v
	}
	if err := h.eventTypeRepo.Create(et); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "event type already exists"})
		return
	}
	c.JSON(http.StatusCreated, et)
}

// ownedCampaign loads :id and checks the caller owns it. Writes the error
// response itself when the check fails.
func (h *CampaignHandler) ownedCampaign(c *gin.Context) (*models.Campaign, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return nil, false
	}
	campaign, err := h.campaignRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load campaign"})
		}
		return nil, false
	}
	role := middleware.GetRole(c)
	if role == domain.RoleVendor && campaign.VendorID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return campaign, true
}
