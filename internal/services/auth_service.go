package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coinpoll/coinpoll-backend/internal/config"
	"github.com/coinpoll/coinpoll-backend/internal/dto"
	"github.com/coinpoll/coinpoll-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles registration, login and token lifecycle. Signup also
// drives the best-effort guest migration: a failed migration is logged and
// swallowed so it can never fail an otherwise successful signup.
type AuthService struct {
	db      *gorm.DB
	cfg     *config.Config
	guests  *GuestService
	devices *DeviceService
}

func NewAuthService(db *gorm.DB, cfg *config.Config, guests *GuestService, devices *DeviceService) *AuthService {
	return &AuthService{db: db, cfg: cfg, guests: guests, devices: devices}
}

func (s *AuthService) Signup(req *dto.SignupRequest) (*dto.SignupResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	phone := strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		return nil, errors.New("email or phone is required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	if email != "" {
		var existing models.User
		if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
			return nil, ErrEmailTaken
		}
	}
	if phone != "" {
		var existing models.User
		if err := s.db.Where("phone = ?", phone).First(&existing).Error; err == nil {
			return nil, ErrPhoneTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	name := req.Name
	if name == "" && email != "" {
		name = strings.Split(email, "@")[0]
	}

	user := models.User{
		ID:       uuid.New(),
		Password: string(hash),
		Name:     name,
		Role:     "user",
		Kind:     models.UserKindRegistered,
	}
	if email != "" {
		user.Email = &email
	}
	if phone != "" {
		user.Phone = &phone
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	accessToken, refreshToken, err := s.generateTokenPair(&user)
	if err != nil {
		return nil, err
	}

	resp := &dto.SignupResponse{
		Success:      true,
		Token:        accessToken,
		RefreshToken: refreshToken,
		User:         userResponse(&user),
	}

	// Best-effort guest migration: a guest id that does not resolve to a
	// guest identity, or any migration failure, leaves the signup intact.
	if req.GuestUserID != "" {
		guestID, err := uuid.Parse(req.GuestUserID)
		if err != nil {
			slog.Warn("signup carried unparseable guest id", "guest_id", req.GuestUserID)
		} else if result, err := s.guests.MigrateGuestToUser(guestID, user.ID); err != nil {
			slog.Warn("guest migration skipped", "guest_id", guestID, "user_id", user.ID, "error", err)
		} else {
			resp.HasGuestData = result.Migrated
			resp.GuestCoinsTransferred = result.CoinsTransferred
		}
	}

	if req.DeviceID != "" {
		if completed, err := s.devices.CheckOnboarding(req.DeviceID); err == nil {
			resp.OnboardingCompleted = completed
		}
	}

	return resp, nil
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	phone := strings.TrimSpace(req.Phone)

	var user models.User
	var err error
	switch {
	case email != "":
		err = s.db.Where("email = ?", email).First(&user).Error
	case phone != "":
		err = s.db.Where("phone = ?", phone).First(&user).Error
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Guests carry no credential hash and can never authenticate.
	if user.IsGuest() || user.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.generateTokenPair(&user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userResponse(&user),
	}, nil
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	// Rotation: the presented token is spent regardless of what follows.
	s.db.Model(&stored).Update("revoked", true)

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	accessToken, refreshToken, err := s.generateTokenPair(&user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userResponse(&user),
	}, nil
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

func (s *AuthService) generateTokenPair(user *models.User) (string, string, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func userResponse(user *models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:   user.ID,
		Name: user.Name,
		Role: user.Role,
	}
	if user.Email != nil {
		resp.Email = *user.Email
	}
	if user.Phone != nil {
		resp.Phone = *user.Phone
	}
	return resp
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
