package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"linkpulse/internal/middleware"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"
	"linkpulse/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	cloud        cloudinary.Client
	creativeRepo *repository.CreativeRepository
	campaignRepo *repository.CampaignRepository
}

func NewUploadHandler(cloud cloudinary.Client, creativeRepo *repository.CreativeRepository, campaignRepo *repository.CampaignRepository) *UploadHandler {
	return &UploadHandler{cloud: cloud, creativeRepo: creativeRepo, campaignRepo: campaignRepo}
}

// UploadCreative uploads a campaign banner to Cloudinary and records it.
func (h *UploadHandler) UploadCreative(c *gin.Context) {
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
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	folder := "linkpulse/creatives/" + strconv.FormatUint(campaignID, 10)
	publicID := "cr_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	url, _, err := h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	creative := &models.CampaignCreative{
		CampaignID: campaign.ID,
		Name:       c.PostForm("name"),
		URL:        url,
		PublicID:   publicID,
	}
	if err := h.creativeRepo.Create(creative); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save creative"})
		return
	}
	c.JSON(http.StatusCreated, creative)
}

func (h *UploadHandler) ListCreatives(c *gin.Context) {
	campaignID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}
	creatives, err := h.creativeRepo.ListByCampaign(uint(campaignID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list creatives"})
		return
	}
	c.JSON(http.StatusOK, creatives)
}

func (h *UploadHandler) DeleteCreative(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("creative_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid creative id"})
		return
	}
	creative, err := h.creativeRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "creative not found"})
		return
	}
	campaign, err := h.campaignRepo.GetByID(creative.CampaignID)
	if err == nil && campaign.VendorID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	_ = h.cloud.DeleteByURL(c.Request.Context(), creative.URL)
	if err := h.creativeRepo.Delete(creative.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete creative"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
