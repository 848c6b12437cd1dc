package ws

import "time"

// ActivityEvent is pushed to connected vendor dashboards as clicks and
// conversions arrive.
type ActivityEvent struct {
	Type       string    `json:"type"` // click or conversion
	CampaignID uint      `json:"campaign_id"`
	PartnerID  uint      `json:"partner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
