package services

import (
	"errors"
	"testing"

	"github.com/coinpoll/coinpoll-backend/internal/dto"
	"gorm.io/gorm"
)

func setupAuth(t *testing.T) (*gorm.DB, *AuthService, *GuestService) {
	t.Helper()
	db := newTestDB(t)
	cfg := testConfig()
	guests := NewGuestService(db, cfg)
	devices := NewDeviceService(db)
	auth := NewAuthService(db, cfg, guests, devices)
	return db, auth, guests
}

func TestSignupAndLogin(t *testing.T) {
	_, auth, _ := setupAuth(t)

	resp, err := auth.Signup(&dto.SignupRequest{Email: "New@Example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if !resp.Success || resp.Token == "" || resp.RefreshToken == "" {
		t.Error("signup response missing tokens")
	}
	if resp.User.Email != "new@example.com" {
		t.Errorf("email not normalized: %q", resp.User.Email)
	}
	if resp.HasGuestData {
		t.Error("signup without guest id must not report guest data")
	}

	login, err := auth.Login(&dto.LoginRequest{Email: "new@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Error("login returned a different user")
	}

	if _, err := auth.Login(&dto.LoginRequest{Email: "new@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignupValidation(t *testing.T) {
	_, auth, _ := setupAuth(t)

	if _, err := auth.Signup(&dto.SignupRequest{Password: "supersecret"}); err == nil {
		t.Error("signup without email or phone must fail")
	}
	if _, err := auth.Signup(&dto.SignupRequest{Email: "a@b.c", Password: "short"}); err == nil {
		t.Error("signup with short password must fail")
	}
}

func TestSignupDuplicateContact(t *testing.T) {
	_, auth, _ := setupAuth(t)

	if _, err := auth.Signup(&dto.SignupRequest{Email: "dup@example.com", Password: "supersecret"}); err != nil {
		t.Fatal(err)
	}
	if _, err := auth.Signup(&dto.SignupRequest{Email: "dup@example.com", Password: "supersecret"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}

	if _, err := auth.Signup(&dto.SignupRequest{Phone: "+15550001111", Password: "supersecret"}); err != nil {
		t.Fatal(err)
	}
	if _, err := auth.Signup(&dto.SignupRequest{Phone: "+15550001111", Password: "supersecret"}); !errors.Is(err, ErrPhoneTaken) {
		t.Errorf("err = %v, want ErrPhoneTaken", err)
	}
}

func TestGuestCannotLogin(t *testing.T) {
	_, auth, guests := setupAuth(t)

	guest, err := guests.ResolveOrCreateGuest("")
	if err != nil {
		t.Fatal(err)
	}
	_, err = auth.Login(&dto.LoginRequest{Email: *guest.Email, Password: ""})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("guest login err = %v, want ErrInvalidCredentials", err)
	}
}

// The end-to-end guest funnel: earn coins anonymously, sign up, keep them.
func TestSignupMigratesGuestData(t *testing.T) {
	db, auth, guests := setupAuth(t)
	submissions := NewSubmissionService(db)
	points := NewPointsService(db)
	survey := createGuestSurvey(t, db, true)

	guest, err := guests.ResolveOrCreateGuest("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := submissions.Submit(guest.ID, survey.ID, fullAnswers(survey), false); err != nil {
		t.Fatalf("guest submit failed: %v", err)
	}

	resp, err := auth.Signup(&dto.SignupRequest{
		Email:       "converted@example.com",
		Password:    "supersecret",
		GuestUserID: guest.ID.String(),
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if !resp.HasGuestData {
		t.Error("expected has_guest_data = true")
	}
	if resp.GuestCoinsTransferred != 18 {
		t.Errorf("guest coins transferred = %d, want 18", resp.GuestCoinsTransferred)
	}

	balance, err := points.Balance(resp.User.ID)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 18 {
		t.Errorf("post-signup balance = %d, want 18", balance)
	}

	if _, err := guests.ResolveOrCreateGuest(guest.ID.String()); !errors.Is(err, ErrInvalidGuest) {
		t.Error("guest identity should no longer exist after migration")
	}
}

// Migration is best-effort: a bogus guest id degrades to a plain signup.
func TestSignupWithInvalidGuestIDStillSucceeds(t *testing.T) {
	_, auth, _ := setupAuth(t)

	resp, err := auth.Signup(&dto.SignupRequest{
		Email:       "plain@example.com",
		Password:    "supersecret",
		GuestUserID: "definitely-not-a-guest",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if resp.HasGuestData || resp.GuestCoinsTransferred != 0 {
		t.Error("failed migration must not report transferred data")
	}
}

func TestSignupReportsDeviceOnboarding(t *testing.T) {
	db, auth, _ := setupAuth(t)
	devices := NewDeviceService(db)

	if _, err := devices.CompleteOnboarding("device-42"); err != nil {
		t.Fatal(err)
	}

	resp, err := auth.Signup(&dto.SignupRequest{
		Email:    "device@example.com",
		Password: "supersecret",
		DeviceID: "device-42",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if !resp.OnboardingCompleted {
		t.Error("expected onboarding_completed = true for onboarded device")
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	_, auth, _ := setupAuth(t)

	signup, err := auth.Signup(&dto.SignupRequest{Email: "rotate@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatal(err)
	}

	refreshed, err := auth.Refresh(&dto.RefreshRequest{RefreshToken: signup.RefreshToken})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.RefreshToken == signup.RefreshToken {
		t.Error("refresh must rotate the token")
	}

	// The spent token is gone for good.
	if _, err := auth.Refresh(&dto.RefreshRequest{RefreshToken: signup.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reused token err = %v, want ErrInvalidToken", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	_, auth, _ := setupAuth(t)

	signup, err := auth.Signup(&dto.SignupRequest{Email: "bye@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatal(err)
	}
	if err := auth.Logout(&dto.LogoutRequest{RefreshToken: signup.RefreshToken}); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := auth.Refresh(&dto.RefreshRequest{RefreshToken: signup.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("post-logout refresh err = %v, want ErrInvalidToken", err)
	}
}
