package service

import (
	"errors"
	"strings"

	"linkpulse/config"
	"linkpulse/internal/auth"
	"linkpulse/internal/domain"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrInvalidRole  = errors.New("role must be VENDOR or PARTNER")
)

type AuthService struct {
	cfg         *config.Config
	userRepo    *repository.UserRepository
	partnerRepo *repository.PartnerRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, partnerRepo *repository.PartnerRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, partnerRepo: partnerRepo}
}

// Register creates a user account. Partner signups also create the partner
// record in PENDING; a vendor approves it later.
func (s *AuthService) Register(email, password, role, companyName string) (*models.User, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	role = strings.ToUpper(strings.TrimSpace(role))
	if role != domain.RoleVendor && role != domain.RolePartner {
		return nil, "", "", ErrInvalidRole
	}
	_, err := s.userRepo.GetByEmail(email)
	if err == nil {
		return nil, "", "", ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CompanyName:  companyName,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", "", err
	}
	if role == domain.RolePartner {
		partner := &models.Partner{
			UserID: user.ID,
			Status: domain.PartnerStatusPending,
			Tier:   domain.PartnerTierStandard,
		}
		if err := s.partnerRepo.Create(partner); err != nil {
			return nil, "", "", err
		}
	}
	access, refresh, err := s.issueTokens(user)
	return user, access, refresh, err
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, refresh, err := s.issueTokens(user)
	return user, access, refresh, err
}

func (s *AuthService) Refresh(refreshToken string) (string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", err
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", ErrInvalidCreds
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, user.ID, user.Email, user.Role)
}

func (s *AuthService) issueTokens(user *models.User) (string, string, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, user.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
