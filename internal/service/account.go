package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

// OTPTTL is how long an email verification code stays valid.
const OTPTTL = 10 * time.Minute

// ResetTTL is how long a password reset link stays valid.
const ResetTTL = time.Hour

// Registration is the input of AccountService.Register.
type Registration struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      model.Role
}

// AccountService manages sign-up, email verification and credential
// checks.  Token issuance stays in the auth handler.
type AccountService struct {
	Users      UserStore
	OTPs       OTPStore
	Resets     PasswordResetStore
	Notifier   Notifier
	Log        *zap.Logger
	BcryptCost int
	SiteDomain string
	Now        func() time.Time
	// NewCode generates verification codes; tests replace it.
	NewCode func() (string, error)
}

// NewPassword is the input of AccountService.SetNewPassword.
type NewPassword struct {
	Token           string
	Password        string
	ConfirmPassword string
}

func (s *AccountService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Register creates an unverified account and emails a verification code.
// A failure to send the email does not fail the registration.
func (s *AccountService) Register(ctx context.Context, r Registration) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(r.Email))
	role := r.Role
	if role == "" {
		role = model.RoleClient
	}
	if !role.SelfRegistrable() {
		return model.User{}, fmt.Errorf("%w: role %q cannot be self-registered", ErrInvalidInput, role)
	}
	id, err := s.Users.Create(ctx, repository.NewUser{
		Email:     email,
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Password:  r.Password,
		Role:      role,
	}, s.BcryptCost)
	if err != nil {
		return model.User{}, fromRepo(err)
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, fromRepo(err)
	}
	s.Log.Info("user registered", zap.Uint64("user_id", u.ID), zap.String("role", string(u.Role)))
	s.sendCode(ctx, u)
	return u, nil
}

// ResendCode replaces the user's verification code.  Unknown and already
// verified emails are ignored without error so callers cannot probe for
// accounts.
func (s *AccountService) ResendCode(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.IsVerified {
		return nil
	}
	s.sendCode(ctx, u)
	return nil
}

// VerifyEmail checks code against the user's pending code and marks the
// account verified.
func (s *AccountService) VerifyEmail(ctx context.Context, email, code string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if u.IsVerified {
		return nil
	}
	otp, err := s.OTPs.Get(ctx, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	code = strings.TrimSpace(code)
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 || s.now().After(otp.ExpiresAt) {
		return ErrInvalidCode
	}
	if err := s.Users.MarkVerified(ctx, u.ID); err != nil {
		return fromRepo(err)
	}
	if err := s.OTPs.Delete(ctx, u.ID); err != nil {
		s.Log.Warn("delete used otp failed", zap.Uint64("user_id", u.ID), zap.Error(err))
	}
	s.Log.Info("email verified", zap.Uint64("user_id", u.ID))
	return nil
}

// Authenticate checks credentials.  Unverified accounts are refused with
// ErrNotVerified once the password is known to be correct.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return model.User{}, ErrNotVerified
	}
	return u, nil
}

// RequestPasswordReset emails a one-time reset link.  Unknown emails are
// ignored without error so callers cannot probe for accounts; a newer
// request invalidates the previous link.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if !u.IsActive {
		return nil
	}
	raw, err := utils.NewResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.Resets.Replace(ctx, u.ID, utils.HashToken(raw), s.now().Add(ResetTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	s.Log.Info("password reset requested", zap.Uint64("user_id", u.ID))
	if s.Notifier == nil {
		return nil
	}
	link := fmt.Sprintf("http://%s/reset-password?token=%s", s.SiteDomain, raw)
	body := fmt.Sprintf("Hi, use this link to reset your password:\n%s\n\nThe link expires in %d minutes.\n",
		link, int(ResetTTL/time.Minute))
	if err := s.Notifier.SendEmail(ctx, u.Email, "Reset your password", body); err != nil {
		s.Log.Warn("reset email failed", zap.Uint64("user_id", u.ID), zap.Error(err))
	}
	return nil
}

// SetNewPassword redeems a reset token and replaces the password.  The
// token is only spent once the new password is acceptable.  It returns the
// account id so the caller can end existing sessions.
func (s *AccountService) SetNewPassword(ctx context.Context, in NewPassword) (uint64, error) {
	if in.Password != in.ConfirmPassword {
		return 0, fmt.Errorf("%w: passwords do not match", ErrInvalidInput)
	}
	if !utils.PasswordLengthOK(in.Password) {
		return 0, fmt.Errorf("%w: password must be %d to %d characters", ErrInvalidInput,
			utils.MinPasswordLen, utils.MaxPasswordLen)
	}
	raw := strings.TrimSpace(in.Token)
	if raw == "" {
		return 0, ErrInvalidResetToken
	}
	userID, err := s.Resets.Consume(ctx, utils.HashToken(raw), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrInvalidResetToken
		}
		return 0, err
	}
	if err := s.Users.SetPassword(ctx, userID, in.Password, s.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrInvalidResetToken
		}
		return 0, err
	}
	s.Log.Info("password reset", zap.Uint64("user_id", userID))
	return userID, nil
}

// User loads an account by id.
func (s *AccountService) User(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	return u, fromRepo(err)
}

// EnsureSystemAdmin provisions the bootstrap system admin.
func (s *AccountService) EnsureSystemAdmin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil
	}
	if err := s.Users.EnsureSystemAdmin(ctx, email, password, s.BcryptCost); err != nil {
		return fmt.Errorf("ensure system admin: %w", err)
	}
	s.Log.Info("system admin ensured", zap.String("email", strings.ToLower(strings.TrimSpace(email))))
	return nil
}

func (s *AccountService) sendCode(ctx context.Context, u model.User) {
	gen := s.NewCode
	if gen == nil {
		gen = GenerateOTP
	}
	code, err := gen()
	if err != nil {
		s.Log.Error("generate otp failed", zap.Uint64("user_id", u.ID), zap.Error(err))
		return
	}
	if err := s.OTPs.Upsert(ctx, u.ID, code, s.now().Add(OTPTTL)); err != nil {
		s.Log.Error("store otp failed", zap.Uint64("user_id", u.ID), zap.Error(err))
		return
	}
	if s.Notifier == nil {
		return
	}
	name := u.FirstName
	if name == "" {
		name = u.Email
	}
	body := fmt.Sprintf("Hi %s,\n\nThanks for signing up on %s.\nPlease verify your email with the following one-time passcode:\n\n%s\n\nThis code will expire in %d minutes.\n\nIf you didn't request this code, please ignore this email.\n",
		name, s.SiteDomain, code, int(OTPTTL/time.Minute))
	if err := s.Notifier.SendEmail(ctx, u.Email, "One-Time Passcode for Email Verification", body); err != nil {
		s.Log.Warn("otp email failed", zap.Uint64("user_id", u.ID), zap.Error(err))
	}
}

// GenerateOTP returns a random six digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
