package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"linkpulse/config"
	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"
	"linkpulse/pkg/disburse"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayoutService batches approved commissions into payouts and drives the
// payout state machine:
//
//	PENDING -> PROCESSING -> COMPLETED
//	           PROCESSING -> FAILED -> PENDING (manual retry)
//
// COMPLETED is terminal; further amounts need a new payout.
type PayoutService struct {
	cfg            *config.PayoutConfig
	payoutRepo     *repository.PayoutRepository
	conversionRepo *repository.ConversionRepository
	partnerRepo    *repository.PartnerRepository
	provider       disburse.Provider
}

func NewPayoutService(
	cfg *config.PayoutConfig,
	payoutRepo *repository.PayoutRepository,
	conversionRepo *repository.ConversionRepository,
	partnerRepo *repository.PartnerRepository,
	provider disburse.Provider,
) *PayoutService {
	return &PayoutService{
		cfg:            cfg,
		payoutRepo:     payoutRepo,
		conversionRepo: conversionRepo,
		partnerRepo:    partnerRepo,
		provider:       provider,
	}
}

var (
	ErrNoEligibleEvents = errors.New("no eligible conversion events in period")
	ErrBelowMinimum     = errors.New("payout amount below configured minimum")
)

// CreatePayout selects every approved, never-allocated conversion for the
// partner within [periodStart, periodEnd) and allocates all of them to a new
// PENDING payout in one transaction. Two concurrent runs over an overlapping
// set cannot both succeed: the unique index on payout_events.conversion_event_id
// aborts the loser's entire transaction, so partial payouts never surface.
func (s *PayoutService) CreatePayout(partnerID uint, paymentMethod string, periodStart, periodEnd time.Time) (*models.Payout, error) {
	partner, err := s.partnerRepo.GetByID(partnerID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	if partner.Status != domain.PartnerStatusActive {
		return nil, fmt.Errorf("partner %d is %s: %w", partnerID, partner.Status, domain.ErrForbidden)
	}

	var payout *models.Payout
	err = s.payoutRepo.DB().Transaction(func(tx *gorm.DB) error {
		events, err := s.conversionRepo.ListUnallocatedApproved(tx, partnerID, periodStart, periodEnd)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return ErrNoEligibleEvents
		}
		total := decimal.Zero
		for _, e := range events {
			total = total.Add(e.CommissionAmount)
		}
		if total.LessThan(decimal.NewFromFloat(s.cfg.MinAmount)) {
			return ErrBelowMinimum
		}
		payout = &models.Payout{
			Reference:     "po_" + uuid.NewString(),
			PartnerID:     partnerID,
			PaymentMethod: paymentMethod,
			PeriodStart:   periodStart,
			PeriodEnd:     periodEnd,
			Amount:        total,
			Currency:      s.cfg.Currency,
			Status:        domain.PayoutStatusPending,
		}
		return s.payoutRepo.CreateWithAllocations(tx, payout, events)
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}

func (s *PayoutService) GetByReference(ref string) (*models.Payout, error) {
	return s.payoutRepo.GetByReference(ref)
}

// MarkProcessing transitions PENDING -> PROCESSING and kicks off the
// disbursement. The provider call is fire-and-forget: the outcome lands later
// through the payout webhook, except an immediate rejection which fails the
// payout right away.
func (s *PayoutService) MarkProcessing(ctx context.Context, id uint) (*models.Payout, error) {
	rows, err := s.payoutRepo.UpdateStatusFrom(id, domain.PayoutStatusPending, domain.PayoutStatusProcessing, nil)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrInvalidStateTransition
	}
	payout, err := s.payoutRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s.provider != nil {
		partner, err := s.partnerRepo.GetByID(payout.PartnerID)
		destination := payout.PaymentMethod
		if err == nil && partner.PayoutEmail != "" {
			destination = partner.PayoutEmail
		}
		go func() {
			txnID, err := s.provider.Disburse(context.WithoutCancel(ctx), disburse.Request{
				Reference:   payout.Reference,
				Amount:      payout.Amount,
				Currency:    payout.Currency,
				Destination: destination,
			})
			if err != nil {
				log.Printf("[Payout] disbursement rejected for %s: %v", payout.Reference, err)
				if _, ferr := s.MarkFailed(payout.ID, err.Error()); ferr != nil {
					log.Printf("[Payout] failed to mark %s failed: %v", payout.Reference, ferr)
				}
				return
			}
			if txnID != "" {
				p, err := s.payoutRepo.GetByID(payout.ID)
				if err == nil && p.ProviderTxnID == "" {
					p.ProviderTxnID = txnID
					_ = s.payoutRepo.Update(p)
				}
			}
		}()
	}
	return payout, nil
}

// MarkCompleted transitions PROCESSING -> COMPLETED with the provider's
// transaction reference. Any other current state is a caller error.
func (s *PayoutService) MarkCompleted(id uint, providerTxnID string) (*models.Payout, error) {
	now := time.Now()
	rows, err := s.payoutRepo.UpdateStatusFrom(id, domain.PayoutStatusProcessing, domain.PayoutStatusCompleted, map[string]interface{}{
		"provider_txn_id": providerTxnID,
		"completed_at":    now,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrInvalidStateTransition
	}
	return s.payoutRepo.GetByID(id)
}

// MarkFailed transitions PROCESSING -> FAILED, recording the reason.
func (s *PayoutService) MarkFailed(id uint, reason string) (*models.Payout, error) {
	rows, err := s.payoutRepo.UpdateStatusFrom(id, domain.PayoutStatusProcessing, domain.PayoutStatusFailed, map[string]interface{}{
		"failure_reason": reason,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrInvalidStateTransition
	}
	return s.payoutRepo.GetByID(id)
}

// Retry transitions FAILED -> PENDING for a manual re-run. The allocation
// rows stay untouched; only the state moves back.
func (s *PayoutService) Retry(id uint) (*models.Payout, error) {
	rows, err := s.payoutRepo.UpdateStatusFrom(id, domain.PayoutStatusFailed, domain.PayoutStatusPending, nil)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrInvalidStateTransition
	}
	return s.payoutRepo.GetByID(id)
}
