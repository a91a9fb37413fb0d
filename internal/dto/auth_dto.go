package dto

import "github.com/google/uuid"

type SignupRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	// GuestUserID triggers the best-effort guest data migration.
	GuestUserID string `json:"guest_user_id,omitempty"`
	// DeviceID lets the response report the device's onboarding state.
	DeviceID string `json:"device_id,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
	Phone string    `json:"phone,omitempty"`
	Name  string    `json:"name,omitempty"`
	Role  string    `json:"role"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type SignupResponse struct {
	Success               bool         `json:"success"`
	Token                 string       `json:"token"`
	RefreshToken          string       `json:"refresh_token"`
	User                  UserResponse `json:"user"`
	HasGuestData          bool         `json:"has_guest_data"`
	GuestCoinsTransferred int          `json:"guest_coins_transferred"`
	OnboardingCompleted   bool         `json:"onboarding_completed"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
