package service

import (
	"time"

	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"

	"github.com/shopspring/decimal"
)

// CommissionService resolves the applicable commission rule for an attributed
// conversion and computes the amount owed.
//
// Tier bucketing decision: the tier is selected by the PRE-EVENT cumulative
// value for the (partner, campaign) pair, accumulated over its lifetime. The
// cumulative basis is read from approved conversion events (source of truth),
// never from the display counters on the enrollment row.
type CommissionService struct {
	overrideRepo   *repository.OverrideRepository
	conversionRepo *repository.ConversionRepository
}

func NewCommissionService(
	overrideRepo *repository.OverrideRepository,
	conversionRepo *repository.ConversionRepository,
) *CommissionService {
	return &CommissionService{overrideRepo: overrideRepo, conversionRepo: conversionRepo}
}

type CommissionResult struct {
	Type        string
	Value       decimal.Decimal
	Amount      decimal.Decimal
	NeedsReview bool
}

var hundred = decimal.NewFromInt(100)

// Compute resolves the rule (partner override, then event-type default, then
// campaign default) and applies it. A non-commissionable event type earns
// nothing. Percentage rules without an event value fail with
// ErrInvalidCommissionInput; a negative result is clamped to zero and flagged
// for review rather than passed downstream.
func (s *CommissionService) Compute(
	partnerID, campaignID uint,
	eventType *models.EventType,
	eventValue *decimal.Decimal,
	campaign *models.Campaign,
	now time.Time,
) (CommissionResult, error) {
	if !eventType.Commissionable {
		return CommissionResult{}, nil
	}

	ruleType, ruleValue := s.resolveRule(partnerID, campaignID, eventType, campaign, now)

	var amount decimal.Decimal
	switch ruleType {
	case domain.CommissionFlat:
		amount = ruleValue
	case domain.CommissionPercentage:
		if eventValue == nil {
			return CommissionResult{}, domain.ErrInvalidCommissionInput
		}
		amount = eventValue.Mul(ruleValue).Div(hundred).RoundBank(2)
	case domain.CommissionTiered:
		tier, err := s.selectTier(partnerID, campaignID, campaign)
		if err != nil {
			return CommissionResult{}, err
		}
		if tier == nil {
			// No tiers configured; nothing to pay.
			return CommissionResult{Type: domain.CommissionTiered}, nil
		}
		ruleValue = tier.CommissionValue
		if tier.CommissionType == domain.CommissionFlat {
			amount = tier.CommissionValue
		} else {
			if eventValue == nil {
				return CommissionResult{}, domain.ErrInvalidCommissionInput
			}
			amount = eventValue.Mul(tier.CommissionValue).Div(hundred).RoundBank(2)
		}
	default:
		return CommissionResult{}, nil
	}

	result := CommissionResult{Type: ruleType, Value: ruleValue, Amount: amount}
	if amount.IsNegative() {
		result.Amount = decimal.Zero
		result.NeedsReview = true
	}
	return result, nil
}

// resolveRule walks the resolution order; first match wins.
func (s *CommissionService) resolveRule(
	partnerID, campaignID uint,
	eventType *models.EventType,
	campaign *models.Campaign,
	now time.Time,
) (string, decimal.Decimal) {
	if s.overrideRepo != nil {
		// Any lookup failure falls through to the defaults; rule resolution
		// must never fail an attributed conversion.
		if o, err := s.overrideRepo.GetActive(partnerID, campaignID, eventType.ID, now); err == nil {
			return o.CommissionType, o.CommissionValue
		}
	}
	if eventType.DefaultCommissionType != "" && eventType.DefaultCommissionValue != nil {
		return eventType.DefaultCommissionType, *eventType.DefaultCommissionValue
	}
	return campaign.CommissionType, campaign.CommissionValue
}

// selectTier picks the tier whose [min, max) range contains the pre-event
// cumulative value. Beyond the top of a table whose highest tier is bounded,
// the highest tier applies. Saved tables are validated, so this never fails
// for a well-formed configuration.
func (s *CommissionService) selectTier(partnerID, campaignID uint, campaign *models.Campaign) (*models.CommissionTier, error) {
	if len(campaign.Tiers) == 0 {
		return nil, nil
	}
	var cumulative decimal.Decimal
	var err error
	if campaign.TierBasis == domain.TierBasisConversions {
		var count int64
		count, err = s.conversionRepo.CountApproved(partnerID, campaignID)
		cumulative = decimal.NewFromInt(count)
	} else {
		cumulative, err = s.conversionRepo.SumApprovedValue(partnerID, campaignID)
	}
	if err != nil {
		return nil, err
	}
	for i := range campaign.Tiers {
		t := &campaign.Tiers[i]
		if cumulative.GreaterThanOrEqual(t.MinValue) && (t.MaxValue == nil || cumulative.LessThan(*t.MaxValue)) {
			return t, nil
		}
	}
	return &campaign.Tiers[len(campaign.Tiers)-1], nil
}

// ValidateTiers rejects tier tables with gaps or overlaps at save time so
// calculation time never has to. Tiers must start at zero, be contiguous
// [min, max) ranges, and only the last may be unbounded.
func ValidateTiers(tiers []models.CommissionTier) error {
	if len(tiers) == 0 {
		return nil
	}
	sorted := make([]models.CommissionTier, len(tiers))
	copy(sorted, tiers)
	for i := 0; i < len(sorted)-1; i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].MinValue.LessThan(sorted[i].MinValue) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	if !sorted[0].MinValue.IsZero() {
		return domain.ErrInvalidTierConfig
	}
	for i := range sorted {
		t := &sorted[i]
		if t.MaxValue != nil && !t.MaxValue.GreaterThan(t.MinValue) {
			return domain.ErrInvalidTierConfig
		}
		last := i == len(sorted)-1
		if t.MaxValue == nil && !last {
			return domain.ErrInvalidTierConfig
		}
		if !last {
			next := &sorted[i+1]
			if t.MaxValue == nil || !t.MaxValue.Equal(next.MinValue) {
				return domain.ErrInvalidTierConfig
			}
		}
	}
	return nil
}
