package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linkpulse/config"
	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"
	"linkpulse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWebhookRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newHandlerDB(t)

	sale := &models.EventType{Name: "sale", Commissionable: true, IsTerminal: true}
	require.NoError(t, db.Create(sale).Error)

	conversionRepo := repository.NewConversionRepository(db)
	svc := service.NewAttributionService(
		repository.NewCookieRepository(db),
		repository.NewClickRepository(db),
		conversionRepo,
		repository.NewEventTypeRepository(db),
		repository.NewCampaignRepository(db),
		repository.NewEnrollmentRepository(db),
		service.NewCommissionService(repository.NewOverrideRepository(db), conversionRepo),
		nil,
	)

	r := gin.New()
	h := NewConversionWebhookHandler(&config.WebhookConfig{ConversionSecret: "topsecret"}, svc)
	r.POST("/api/v1/webhooks/conversions", h.Handle)
	return r, db
}

func postConversion(r *gin.Engine, secret string, body map[string]interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/conversions", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestConversionWebhookRejectsBadSecret(t *testing.T) {
	r, _ := newWebhookRouter(t)

	w := postConversion(r, "", map[string]interface{}{"event_type": "sale", "transaction_id": "t-1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postConversion(r, "wrong", map[string]interface{}{"event_type": "sale", "transaction_id": "t-1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConversionWebhookRecordsUnattributed(t *testing.T) {
	r, db := newWebhookRouter(t)

	// No cookie, no click: recorded but flagged, and the vendor still gets 200
	// so it will not retry forever.
	w := postConversion(r, "topsecret", map[string]interface{}{
		"event_type":     "sale",
		"transaction_id": "t-orphan",
		"event_value":    "50.00",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Attributed bool `json:"attributed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Attributed)

	var event models.ConversionEvent
	require.NoError(t, db.Where("dedup_key = ?", "t-orphan").First(&event).Error)
	assert.Equal(t, domain.AttributionUnattributed, event.AttributionType)
}

func TestConversionWebhookValidation(t *testing.T) {
	r, _ := newWebhookRouter(t)

	// Neither transaction_id nor idempotency_key.
	w := postConversion(r, "topsecret", map[string]interface{}{"event_type": "sale"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postConversion(r, "topsecret", map[string]interface{}{
		"event_type":     "sale",
		"transaction_id": "t-bad-value",
		"event_value":    "not-a-number",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postConversion(r, "topsecret", map[string]interface{}{
		"event_type":     "unknown-type",
		"transaction_id": "t-unknown",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConversionWebhookReplaySafe(t *testing.T) {
	r, db := newWebhookRouter(t)

	body := map[string]interface{}{
		"event_type":     "sale",
		"transaction_id": "t-replay",
		"event_value":    "50.00",
		"occurred_at":    time.Now().Format(time.RFC3339),
	}
	assert.Equal(t, http.StatusOK, postConversion(r, "topsecret", body).Code)
	assert.Equal(t, http.StatusOK, postConversion(r, "topsecret", body).Code)

	var count int64
	db.Model(&models.ConversionEvent{}).Where("dedup_key = ?", "t-replay").Count(&count)
	assert.Equal(t, int64(1), count)
}
