package service

import (
	"log"
	"time"

	"linkpulse/internal/models"
	"linkpulse/internal/repository"

	"github.com/google/uuid"
)

// ResolverService maps inbound requests to durable visitor cookies.
type ResolverService struct {
	cookieRepo *repository.CookieRepository
}

func NewResolverService(cookieRepo *repository.CookieRepository) *ResolverService {
	return &ResolverService{cookieRepo: cookieRepo}
}

// Resolve returns the existing unexpired cookie for requestCookieID, or mints
// a fresh one scoped to the campaign's cookie window. A malformed, unknown or
// expired id never aborts the request; the caller always gets a usable cookie.
func (s *ResolverService) Resolve(requestCookieID string, campaign *models.Campaign, now time.Time) (*models.VisitorCookie, bool, error) {
	if requestCookieID != "" {
		if _, err := uuid.Parse(requestCookieID); err == nil {
			existing, err := s.cookieRepo.GetByID(requestCookieID)
			if err == nil && !existing.Expired(now) {
				return existing, false, nil
			}
		}
	}
	cookie := &models.VisitorCookie{
		ID:         uuid.NewString(),
		LastSeenAt: now,
		ExpiresAt:  now.Add(cookieDuration(campaign)),
	}
	if err := s.cookieRepo.Create(cookie); err != nil {
		return nil, false, err
	}
	return cookie, true, nil
}

// RecordTouch updates the cookie pointers for a new click. First-touch fields
// are compare-and-set (write-once); last-touch fields are latest-wins by click
// timestamp; the expiry window is pushed out, never shortened.
func (s *ResolverService) RecordTouch(cookie *models.VisitorCookie, click *models.Click, campaign *models.Campaign) {
	if err := s.cookieRepo.SetFirstTouch(cookie.ID, click.ID, click.PartnerID, click.CampaignID); err != nil {
		log.Printf("[Resolver] first-touch update failed for cookie %s: %v", cookie.ID, err)
	}
	if err := s.cookieRepo.UpdateLastTouch(cookie.ID, click.ID, click.PartnerID, click.CampaignID, click.OccurredAt); err != nil {
		log.Printf("[Resolver] last-touch update failed for cookie %s: %v", cookie.ID, err)
	}
	if err := s.cookieRepo.ExtendExpiry(cookie.ID, click.OccurredAt.Add(cookieDuration(campaign))); err != nil {
		log.Printf("[Resolver] expiry extension failed for cookie %s: %v", cookie.ID, err)
	}
}

func cookieDuration(campaign *models.Campaign) time.Duration {
	days := 30
	if campaign != nil && campaign.CookieDurationDays > 0 {
		days = campaign.CookieDurationDays
	}
	return time.Duration(days) * 24 * time.Hour
}
