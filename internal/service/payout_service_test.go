package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"linkpulse/config"
	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type payoutFixture struct {
	db      *gorm.DB
	svc     *PayoutService
	partner *models.Partner
	sale    *models.EventType
	seq     int
}

func newPayoutFixture(t *testing.T) *payoutFixture {
	db := newTestDB(t)
	svc := NewPayoutService(
		&config.PayoutConfig{Currency: "USD", MinAmount: 10},
		repository.NewPayoutRepository(db),
		repository.NewConversionRepository(db),
		repository.NewPartnerRepository(db),
		nil,
	)
	return &payoutFixture{
		db:      db,
		svc:     svc,
		partner: seedPartner(t, db, domain.PartnerStatusActive),
		sale:    seedEventType(t, db, "sale", true, true),
	}
}

func (f *payoutFixture) approvedConversion(t *testing.T, commission string, at time.Time) *models.ConversionEvent {
	t.Helper()
	f.seq++
	e := &models.ConversionEvent{
		DedupKey:         fmt.Sprintf("txn-%d", f.seq),
		EventTypeID:      f.sale.ID,
		PartnerID:        &f.partner.ID,
		CampaignID:       nil,
		EventValue:       decPtr("100"),
		CommissionAmount: dec(commission),
		Status:           domain.ConversionStatusApproved,
		OccurredAt:       at,
	}
	require.NoError(t, f.db.Create(e).Error)
	return e
}

func period(now time.Time) (time.Time, time.Time) {
	return now.Add(-30 * 24 * time.Hour), now.Add(time.Hour)
}

func TestCreatePayoutAllocatesOnce(t *testing.T) {
	f := newPayoutFixture(t)
	now := time.Now()
	f.approvedConversion(t, "12.50", now.Add(-time.Hour))
	f.approvedConversion(t, "7.50", now.Add(-2*time.Hour))
	start, end := period(now)

	payout, err := f.svc.CreatePayout(f.partner.ID, "paypal", start, end)
	require.NoError(t, err)
	assert.Equal(t, "20.00", payout.Amount.StringFixed(2))
	assert.Equal(t, domain.PayoutStatusPending, payout.Status)
	assert.NotEmpty(t, payout.Reference)

	var allocations int64
	f.db.Model(&models.PayoutEvent{}).Where("payout_id = ?", payout.ID).Count(&allocations)
	assert.Equal(t, int64(2), allocations)

	// The same period again has nothing left to pay.
	_, err = f.svc.CreatePayout(f.partner.ID, "paypal", start, end)
	assert.ErrorIs(t, err, ErrNoEligibleEvents)
}

func TestCreatePayoutSkipsPendingAndRejected(t *testing.T) {
	f := newPayoutFixture(t)
	now := time.Now()
	f.approvedConversion(t, "15.00", now.Add(-time.Hour))
	pending := f.approvedConversion(t, "99.00", now.Add(-time.Hour))
	require.NoError(t, f.db.Model(pending).Update("status", domain.ConversionStatusPending).Error)
	start, end := period(now)

	payout, err := f.svc.CreatePayout(f.partner.ID, "paypal", start, end)
	require.NoError(t, err)
	assert.Equal(t, "15.00", payout.Amount.StringFixed(2))
}

func TestCreatePayoutBelowMinimum(t *testing.T) {
	f := newPayoutFixture(t)
	now := time.Now()
	f.approvedConversion(t, "4.00", now.Add(-time.Hour))
	start, end := period(now)

	_, err := f.svc.CreatePayout(f.partner.ID, "paypal", start, end)
	assert.ErrorIs(t, err, ErrBelowMinimum)

	// A failed batch must not leave allocations behind.
	var allocations int64
	f.db.Model(&models.PayoutEvent{}).Count(&allocations)
	assert.Equal(t, int64(0), allocations)
}

func TestCreatePayoutInactivePartner(t *testing.T) {
	f := newPayoutFixture(t)
	suspended := seedPartner(t, f.db, domain.PartnerStatusSuspended)
	start, end := period(time.Now())

	_, err := f.svc.CreatePayout(suspended.ID, "paypal", start, end)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPayoutStateMachine(t *testing.T) {
	f := newPayoutFixture(t)
	now := time.Now()
	f.approvedConversion(t, "25.00", now.Add(-time.Hour))
	start, end := period(now)
	ctx := context.Background()

	payout, err := f.svc.CreatePayout(f.partner.ID, "paypal", start, end)
	require.NoError(t, err)

	// Completion straight from PENDING is illegal.
	_, err = f.svc.MarkCompleted(payout.ID, "prov-1")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	payout, err = f.svc.MarkProcessing(ctx, payout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusProcessing, payout.Status)

	// Processing twice is a no-op conflict, not a double send.
	_, err = f.svc.MarkProcessing(ctx, payout.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	payout, err = f.svc.MarkFailed(payout.ID, "provider timeout")
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusFailed, payout.Status)
	assert.Equal(t, "provider timeout", payout.FailureReason)

	payout, err = f.svc.Retry(payout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusPending, payout.Status)

	payout, err = f.svc.MarkProcessing(ctx, payout.ID)
	require.NoError(t, err)
	payout, err = f.svc.MarkCompleted(payout.ID, "prov-2")
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusCompleted, payout.Status)
	assert.Equal(t, "prov-2", payout.ProviderTxnID)
	require.NotNil(t, payout.CompletedAt)

	// COMPLETED is terminal.
	_, err = f.svc.MarkFailed(payout.ID, "late callback")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = f.svc.Retry(payout.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestRetryDoesNotReallocate(t *testing.T) {
	f := newPayoutFixture(t)
	now := time.Now()
	f.approvedConversion(t, "25.00", now.Add(-time.Hour))
	start, end := period(now)
	ctx := context.Background()

	payout, err := f.svc.CreatePayout(f.partner.ID, "paypal", start, end)
	require.NoError(t, err)
	_, err = f.svc.MarkProcessing(ctx, payout.ID)
	require.NoError(t, err)
	_, err = f.svc.MarkFailed(payout.ID, "boom")
	require.NoError(t, err)
	_, err = f.svc.Retry(payout.ID)
	require.NoError(t, err)

	// The failed-then-retried payout keeps its original allocations and no
	// second payout can claim the same conversions.
	var allocations int64
	f.db.Model(&models.PayoutEvent{}).Count(&allocations)
	assert.Equal(t, int64(1), allocations)

	_, err = f.svc.CreatePayout(f.partner.ID, "paypal", start, end)
	assert.ErrorIs(t, err, ErrNoEligibleEvents)
}
