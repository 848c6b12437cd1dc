package service

import (
	"testing"

	"linkpulse/config"
	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := config.Load()
	return NewAuthService(cfg, repository.NewUserRepository(db), repository.NewPartnerRepository(db))
}

func TestRegisterPartnerCreatesPendingProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	u, access, refresh, err := svc.Register("Alex@Example.com", "s3cret-pass", "partner", "Alex Media")
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", u.Email)
	assert.Equal(t, domain.RolePartner, u.Role)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	var p models.Partner
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&p).Error)
	assert.Equal(t, domain.PartnerStatusPending, p.Status)
}

func TestRegisterVendorNoPartnerProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	u, _, _, err := svc.Register("shop@example.com", "s3cret-pass", "VENDOR", "Shop Inc")
	require.NoError(t, err)

	var count int64
	db.Model(&models.Partner{}).Where("user_id = ?", u.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, _, _, err := svc.Register("dup@example.com", "s3cret-pass", "VENDOR", "")
	require.NoError(t, err)
	_, _, _, err = svc.Register("dup@example.com", "another-pass", "VENDOR", "")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	_, _, _, err := svc.Register("x@example.com", "s3cret-pass", "ADMIN", "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestLoginAndRefresh(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, _, _, err := svc.Register("login@example.com", "s3cret-pass", "VENDOR", "")
	require.NoError(t, err)

	u, _, refresh, err := svc.Login("login@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", u.Email)

	access, err := svc.Refresh(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, _, _, err = svc.Login("login@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, err = svc.Refresh("garbage-token")
	assert.Error(t, err)
}
