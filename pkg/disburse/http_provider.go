package disburse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// HTTPProvider talks to an external disbursement API over JSON. The outcome
// webhook is delivered to callback_url once the transfer settles.
type HTTPProvider struct {
	BaseURL     string
	APIKey      string
	WebhookBase string
	client      *http.Client
}

func NewHTTPProvider(baseURL, apiKey, webhookBase string) *HTTPProvider {
	return &HTTPProvider{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		WebhookBase: webhookBase,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type disburseResponse struct {
	TransactionID       string `json:"transaction_id"`
	Reference           string `json:"reference"`
	Status              string `json:"status"`
	ResponseCode        string `json:"response_code"`
	ResponseDescription string `json:"response_description"`
}

// Disburse submits the transfer for asynchronous processing.
func (p *HTTPProvider) Disburse(ctx context.Context, req Request) (string, error) {
	callbackURL := ""
	if p.WebhookBase != "" {
		base := p.WebhookBase
		if len(base) > 0 && base[0] != 'h' {
			base = "https://" + base
		}
		callbackURL = base + "/api/v1/webhooks/payouts"
	}
	body := map[string]string{
		"amount":       req.Amount.StringFixed(2),
		"currency":     req.Currency,
		"destination":  req.Destination,
		"reference":    req.Reference,
		"callback_url": callbackURL,
	}
	bodyBytes, _ := json.Marshal(body)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/v1/transfers", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+p.APIKey)
	log.Printf("[Disburse] POST %s/api/v1/transfers reference=%s amount=%s %s", p.BaseURL, req.Reference, req.Amount.StringFixed(2), req.Currency)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[Disburse] response status=%d body=%s", resp.StatusCode, string(respBody))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("disburse api: %d %s", resp.StatusCode, string(respBody))
	}
	var out disburseResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	return out.TransactionID, nil
}
