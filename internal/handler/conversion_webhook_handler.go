package handler

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"time"

	"linkpulse/config"
	"linkpulse/internal/domain"
	"linkpulse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ConversionWebhookHandler ingests conversion events from vendor sites.
// Authenticated by shared secret, not JWT: the caller is the vendor's backend.
type ConversionWebhookHandler struct {
	cfg *config.WebhookConfig
	svc *service.AttributionService
}

func NewConversionWebhookHandler(cfg *config.WebhookConfig, svc *service.AttributionService) *ConversionWebhookHandler {
	return &ConversionWebhookHandler{cfg: cfg, svc: svc}
}

type ConversionRequest struct {
	EventType      string  `json:"event_type" binding:"required"`
	TransactionID  string  `json:"transaction_id"`
	IdempotencyKey string  `json:"idempotency_key"`
	CustomerID     string  `json:"customer_id"`
	CookieID       string  `json:"cookie_id"`
	ClickID        *uint   `json:"click_id"`
	EventValue     *string `json:"event_value"` // decimal string, e.g. "149.90"
	OccurredAt     string  `json:"occurred_at"` // RFC3339; defaults to now
}

// Handle records the conversion. Events are never rejected for attribution
// reasons: an event we cannot attribute still returns 200 with
// "attributed": false so vendors do not retry it forever.
func (h *ConversionWebhookHandler) Handle(c *gin.Context) {
	secret := c.GetHeader("X-Webhook-Secret")
	if h.cfg.ConversionSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.ConversionSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}

	var req ConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.ConversionInput{
		EventType:      req.EventType,
		TransactionID:  req.TransactionID,
		IdempotencyKey: req.IdempotencyKey,
		CustomerID:     req.CustomerID,
		CookieID:       req.CookieID,
		ClickID:        req.ClickID,
		OccurredAt:     time.Now(),
	}
	if req.EventValue != nil {
		v, err := decimal.NewFromString(*req.EventValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_value"})
			return
		}
		in.EventValue = &v
	}
	if req.OccurredAt != "" {
		t, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid occurred_at (use RFC3339)"})
			return
		}
		in.OccurredAt = t
	}

	event, err := h.svc.Attribute(in, time.Now())
	switch {
	case err == nil:
		// Replays of an unattributed event land here with the stored row.
		c.JSON(http.StatusOK, gin.H{"attributed": event.AttributionType != domain.AttributionUnattributed, "event": event})
	case errors.Is(err, domain.ErrUnattributed):
		c.JSON(http.StatusOK, gin.H{"attributed": false, "event": event})
	case errors.Is(err, service.ErrMissingDedupKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event_type"})
	default:
		log.Printf("[Conversion webhook] attribution failed for txn=%s: %v", req.TransactionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "conversion not recorded"})
	}
}
