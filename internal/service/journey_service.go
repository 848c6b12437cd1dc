package service

import (
	"time"

	"linkpulse/internal/models"
	"linkpulse/internal/repository"
)

// JourneyService materializes funnel journeys from the conversion event log.
// It is a projection: a full recompute over each grouping key, safe to re-run,
// and deliberately off the ingestion critical path.
type JourneyService struct {
	conversionRepo *repository.ConversionRepository
	journeyRepo    *repository.JourneyRepository
}

func NewJourneyService(
	conversionRepo *repository.ConversionRepository,
	journeyRepo *repository.JourneyRepository,
) *JourneyService {
	return &JourneyService{conversionRepo: conversionRepo, journeyRepo: journeyRepo}
}

// Recompute rebuilds journey projections. With cookieID empty it recomputes
// every (cookie, partner, campaign) grouping; otherwise only that cookie's.
// Returns the number of journeys written.
func (s *JourneyService) Recompute(cookieID string, now time.Time) (int, error) {
	rows, err := s.conversionRepo.AggregateJourneys(cookieID)
	if err != nil {
		return 0, err
	}
	written := 0
	for _, row := range rows {
		j := &models.FunnelJourney{
			CookieID:        row.CookieID,
			PartnerID:       row.PartnerID,
			CampaignID:      row.CampaignID,
			StartedAt:       row.StartedAt,
			LastEventAt:     row.LastEventAt,
			TotalEvents:     row.TotalEvents,
			TotalCommission: row.TotalCommission,
			IsConverted:     row.TerminalEvents > 0,
			RecomputedAt:    now,
		}
		if err := s.journeyRepo.Upsert(j); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
