package service

import (
	"log"

	"linkpulse/internal/repository"
)

// ReconciliationService recomputes the best-effort enrollment counters from
// the source-of-truth click and conversion tables, bounding the drift that
// at-least-once increments accumulate. The counters are display-only; payout
// math never reads them.
type ReconciliationService struct {
	enrollmentRepo *repository.EnrollmentRepository
	clickRepo      *repository.ClickRepository
	conversionRepo *repository.ConversionRepository
}

func NewReconciliationService(
	enrollmentRepo *repository.EnrollmentRepository,
	clickRepo *repository.ClickRepository,
	conversionRepo *repository.ConversionRepository,
) *ReconciliationService {
	return &ReconciliationService{
		enrollmentRepo: enrollmentRepo,
		clickRepo:      clickRepo,
		conversionRepo: conversionRepo,
	}
}

// ReconcileAll recomputes every enrollment's counters. Returns how many rows
// were rewritten.
func (s *ReconciliationService) ReconcileAll() (int, error) {
	enrollments, err := s.enrollmentRepo.ListAll()
	if err != nil {
		return 0, err
	}
	fixed := 0
	for _, e := range enrollments {
		clicks, lastClickAt, err := s.clickRepo.CountByPair(e.PartnerID, e.CampaignID)
		if err != nil {
			log.Printf("[Reconcile] click totals for enrollment %d: %v", e.ID, err)
			continue
		}
		totals, err := s.conversionRepo.TotalsByPair(e.PartnerID, e.CampaignID)
		if err != nil {
			log.Printf("[Reconcile] conversion totals for enrollment %d: %v", e.ID, err)
			continue
		}
		if err := s.enrollmentRepo.SetTotals(e.ID, clicks, totals.TotalConversions, totals.TotalRevenue, totals.TotalCommission, lastClickAt); err != nil {
			log.Printf("[Reconcile] write failed for enrollment %d: %v", e.ID, err)
			continue
		}
		fixed++
	}
	return fixed, nil
}
