package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"linkpulse/internal/domain"
	"linkpulse/internal/service"

	"github.com/gin-gonic/gin"
)

// TransferCallback is the webhook payload from the disbursement provider.
type TransferCallback struct {
	Reference           string `json:"reference"`
	TransactionID       string `json:"transaction_id"`
	Status              string `json:"status"`
	StatusCode          string `json:"status_code"`
	StatusDescription   string `json:"status_description"`
	Amount              string `json:"amount"`
	Currency            string `json:"currency"`
	CompletedAt         string `json:"completed_at"`
}

type PayoutWebhookHandler struct {
	svc *service.PayoutService
}

func NewPayoutWebhookHandler(svc *service.PayoutService) *PayoutWebhookHandler {
	return &PayoutWebhookHandler{svc: svc}
}

// Handle processes the transfer callback. The provider retries on non-2xx, so
// anything we cannot act on is acknowledged and logged rather than errored.
func (h *PayoutWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("[Payout callback] ReadBody error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	log.Printf("[Payout callback] raw body: %s", string(body))
	var payload TransferCallback
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[Payout callback] json unmarshal error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if payload.Reference == "" {
		log.Printf("[Payout callback] no reference in payload")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	payout, err := h.svc.GetByReference(payload.Reference)
	if err != nil {
		log.Printf("[Payout callback] payout not found for reference=%s", payload.Reference)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if payload.Status == "COMPLETED" || payload.Status == "SUCCESS" {
		if _, err := h.svc.MarkCompleted(payout.ID, payload.TransactionID); err != nil {
			if errors.Is(err, domain.ErrInvalidStateTransition) {
				log.Printf("[Payout callback] payout %d already %s for reference=%s", payout.ID, payout.Status, payload.Reference)
			} else {
				log.Printf("[Payout callback] complete failed for %s: %v", payload.Reference, err)
			}
		} else {
			log.Printf("[Payout callback] payout %d COMPLETED for reference=%s", payout.ID, payload.Reference)
		}
	} else {
		reason := payload.StatusDescription
		if reason == "" {
			reason = payload.Status
		}
		if _, err := h.svc.MarkFailed(payout.ID, reason); err != nil {
			if errors.Is(err, domain.ErrInvalidStateTransition) {
				log.Printf("[Payout callback] payout %d already %s for reference=%s", payout.ID, payout.Status, payload.Reference)
			} else {
				log.Printf("[Payout callback] fail transition failed for %s: %v", payload.Reference, err)
			}
		} else {
			log.Printf("[Payout callback] payout %d FAILED for reference=%s: %s", payout.ID, payload.Reference, reason)
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
