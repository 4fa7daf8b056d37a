package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/config"
	"github.com/boardinghub/boardinghub-api/internal/dto"
	"github.com/boardinghub/boardinghub-api/internal/mail"
	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken               = errors.New("An account with this email already exists")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrInvalidToken             = errors.New("invalid or expired refresh token")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification code")
	ErrTooManyAttempts          = errors.New("too many incorrect codes, request a new one")
	ErrEmailNotVerified         = errors.New("please verify your email address before signing in")
	ErrAccountSuspended         = errors.New("this account has been suspended")
	ErrUserNotFound             = errors.New("user not found")
	ErrWeakPassword             = errors.New("password must be at least 8 characters")
	ErrInvalidEmail             = errors.New("a valid email address is required")
	ErrInvalidRole              = errors.New("role must be tenant or landlord")
	ErrPasswordRequired         = errors.New("password is required")
	ErrHasListings              = errors.New("remove your property listings before deleting the account")
	ErrActiveBookings           = errors.New("cancel your active bookings before deleting the account")
)

const (
	minPasswordLength = 8
	// maxCodeAttempts wrong codes burn the outstanding token.
	maxCodeAttempts = 5
)

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	mailer   mail.Mailer
	profiles *ProfileService
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mailer mail.Mailer, profiles *ProfileService) *AuthService {
	if mailer == nil {
		mailer = mail.LogMailer{}
	}
	return &AuthService{db: db, cfg: cfg, mailer: mailer, profiles: profiles, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := normalizeEmail(req.Email)
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	role := req.Role
	if role == "" {
		role = models.RoleTenant
	}
	if role != models.RoleTenant && role != models.RoleLandlord {
		return nil, ErrInvalidRole
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hash),
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
		Role:     role,
		Status:   models.UserStatusActive,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if role == models.RoleLandlord && s.profiles != nil {
		if _, err := s.profiles.Resolve(&user, true); err != nil {
			slog.Warn("landlord profile setup failed", "user_id", user.ID, "error", err)
		}
	}

	if err := s.sendToken(ctx, &user, models.PurposeEmailVerification); err != nil {
		slog.Warn("verification email failed", "user_id", user.ID, "error", err)
	}

	return &dto.RegisterResponse{
		User:                 ToUserResponse(&user),
		VerificationRequired: true,
		Message:              "Registration successful. Check your email for the verification code.",
	}, nil
}

// VerifyEmail redeems an email-verification code or link and signs the user in.
func (s *AuthService) VerifyEmail(req *dto.VerifyEmailRequest) (*dto.AuthResponse, error) {
	tok, user, err := s.redeem(models.PurposeEmailVerification, req.Email, req.Code, req.Token)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := consume(tx, tok, now); err != nil {
			return err
		}
		return tx.Model(user).Updates(map[string]interface{}{
			"email_verified":    true,
			"email_verified_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	user.EmailVerified = true
	user.EmailVerifiedAt = &now

	if user.Status == models.UserStatusSuspended {
		return nil, ErrAccountSuspended
	}
	return s.generateTokenPair(user)
}

// ResendVerification issues a fresh code when an unverified account exists.
// It reports nothing about whether the address is registered.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	return s.sendToken(ctx, &user, models.PurposeEmailVerification)
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status == models.UserStatusSuspended {
		return nil, ErrAccountSuspended
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	if s.profiles != nil {
		user.Role = s.profiles.ResolveRole(&user)
	}
	return s.generateTokenPair(&user)
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if err := s.db.Model(&stored).Update("revoked", true).Error; err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if user.Status == models.UserStatusSuspended {
		return nil, ErrAccountSuspended
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

// RequestPasswordReset mails a reset code when the account exists. Like
// ResendVerification it never reveals whether it does.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.sendToken(ctx, &user, models.PurposePasswordReset)
}

func (s *AuthService) ResetPassword(req *dto.ResetPasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	tok, user, err := s.redeem(models.PurposePasswordReset, req.Email, req.Code, req.Token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := consume(tx, tok, now); err != nil {
			return err
		}
		updates := map[string]interface{}{"password": string(hash)}
		// Following the emailed link proves ownership of the address.
		if !user.EmailVerified {
			updates["email_verified"] = true
			updates["email_verified_at"] = now
		}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked = false", user.ID).
			Update("revoked", true).Error
	})
}

func (s *AuthService) ChangePassword(userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.Model(user).Update("password", string(hash)).Error
}

func (s *AuthService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) DeleteAccount(userID uuid.UUID, password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return RemoveUser(s.db, user)
}

// RemoveUser deletes a user and the rows that only make sense with them.
// Landlords must delete their listings first and tenants may not have
// pending or approved bookings.
func RemoveUser(db *gorm.DB, user *models.User) error {
	var listings int64
	if err := db.Model(&models.Property{}).Where("landlord_id = ?", user.ID).Count(&listings).Error; err != nil {
		return err
	}
	if listings > 0 {
		return ErrHasListings
	}
	var active int64
	if err := db.Model(&models.Booking{}).
		Where("tenant_id = ? AND status IN ?", user.ID, []string{models.BookingStatusPending, models.BookingStatusApproved}).
		Count(&active).Error; err != nil {
		return err
	}
	if active > 0 {
		return ErrActiveBookings
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, q := range []struct {
			col   string
			model interface{}
		}{
			{"user_id", &models.RefreshToken{}},
			{"user_id", &models.VerificationToken{}},
			{"user_id", &models.Notification{}},
			{"reporter_id", &models.Flag{}},
			{"tenant_id", &models.Review{}},
			{"tenant_id", &models.Booking{}},
			{"user_id", &models.LandlordProfile{}},
		} {
			if err := tx.Where(q.col+" = ?", user.ID).Delete(q.model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(user).Error
	})
}

// IssueToken creates a token of the given purpose for user and returns the
// one-time code and the signed link token.
func (s *AuthService) IssueToken(user *models.User, purpose string) (code, link string, err error) {
	code, err = generateCode(6)
	if err != nil {
		return "", "", err
	}

	ttl := s.cfg.VerificationTokenTTL
	if purpose == models.PurposePasswordReset {
		ttl = s.cfg.ResetTokenTTL
	}
	now := s.now().UTC()
	tok := models.VerificationToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Purpose:   purpose,
		CodeHash:  hashToken(code),
		ExpiresAt: now.Add(ttl),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Only the newest token of a purpose stays redeemable.
		if err := tx.Model(&models.VerificationToken{}).
			Where("user_id = ? AND purpose = ? AND consumed_at IS NULL", user.ID, purpose).
			Update("consumed_at", now).Error; err != nil {
			return err
		}
		return tx.Create(&tok).Error
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to store verification token: %w", err)
	}

	link, err = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     user.ID.String(),
		"jti":     tok.ID.String(),
		"purpose": purpose,
		"iat":     now.Unix(),
		"exp":     tok.ExpiresAt.Unix(),
	}).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign link token: %w", err)
	}
	return code, link, nil
}

func (s *AuthService) sendToken(ctx context.Context, user *models.User, purpose string) error {
	code, link, err := s.IssueToken(user, purpose)
	if err != nil {
		return err
	}

	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	msg := mail.Message{To: user.Email}
	switch purpose {
	case models.PurposePasswordReset:
		msg.Subject = "Reset your BoardingHub password"
		msg.Text = fmt.Sprintf("Your password reset code is %s.\n\nOr open %s/reset-password?token=%s\n\nIf you did not ask for this, ignore this email.",
			code, base, url.QueryEscape(link))
	default:
		msg.Subject = "Verify your BoardingHub account"
		msg.Text = fmt.Sprintf("Your verification code is %s.\n\nOr open %s/verify-email?token=%s",
			code, base, url.QueryEscape(link))
	}
	return s.mailer.Send(ctx, msg)
}

// redeem locates a usable token from either a link token (JWT, possibly
// wrapped in a URL) or an email plus code. The token is not consumed.
func (s *AuthService) redeem(purpose, email, code, token string) (*models.VerificationToken, *models.User, error) {
	raw := ExtractToken(token)
	if raw == "" {
		raw = strings.TrimSpace(code)
	}
	if raw == "" {
		return nil, nil, ErrInvalidVerificationToken
	}

	var tok models.VerificationToken
	var user models.User

	if LooksLikeJWT(raw) {
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return nil, nil, ErrInvalidVerificationToken
		}
		if p, _ := claims["purpose"].(string); p != purpose {
			return nil, nil, ErrInvalidVerificationToken
		}
		jti, _ := claims["jti"].(string)
		sub, _ := claims["sub"].(string)
		if err := s.db.Where("id = ? AND user_id = ? AND purpose = ?", jti, sub, purpose).First(&tok).Error; err != nil {
			return nil, nil, ErrInvalidVerificationToken
		}
		if err := s.db.First(&user, "id = ?", tok.UserID).Error; err != nil {
			return nil, nil, ErrInvalidVerificationToken
		}
	} else {
		if email == "" {
			return nil, nil, ErrInvalidVerificationToken
		}
		if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
			return nil, nil, ErrInvalidVerificationToken
		}
		// Issuing consumes older tokens, so the newest live one is the only
		// candidate and every wrong guess counts against it.
		if err := s.db.Where("user_id = ? AND purpose = ? AND consumed_at IS NULL", user.ID, purpose).
			Order("created_at DESC").First(&tok).Error; err != nil {
			return nil, nil, ErrInvalidVerificationToken
		}
		if !tok.Usable(s.now()) {
			return nil, nil, ErrInvalidVerificationToken
		}
		if subtle.ConstantTimeCompare([]byte(tok.CodeHash), []byte(hashToken(raw))) != 1 {
			return nil, nil, s.failedAttempt(&tok)
		}
	}

	if !tok.Usable(s.now()) {
		return nil, nil, ErrInvalidVerificationToken
	}
	return &tok, &user, nil
}

// failedAttempt counts a wrong code against tok and burns it once the limit
// is reached.
func (s *AuthService) failedAttempt(tok *models.VerificationToken) error {
	tok.Attempts++
	updates := map[string]interface{}{"attempts": gorm.Expr("attempts + 1")}
	locked := tok.Attempts >= maxCodeAttempts
	if locked {
		updates["consumed_at"] = s.now().UTC()
	}
	if err := s.db.Model(&models.VerificationToken{}).Where("id = ?", tok.ID).Updates(updates).Error; err != nil {
		slog.Warn("failed to record code attempt", "token_id", tok.ID, "error", err)
	}
	if locked {
		slog.Warn("verification token locked after failed attempts", "user_id", tok.UserID, "purpose", tok.Purpose)
		return ErrTooManyAttempts
	}
	return ErrInvalidVerificationToken
}

// consume marks tok used; a concurrent redemption makes it fail.
func consume(tx *gorm.DB, tok *models.VerificationToken, now time.Time) error {
	result := tx.Model(&models.VerificationToken{}).
		Where("id = ? AND consumed_at IS NULL", tok.ID).
		Update("consumed_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidVerificationToken
	}
	return nil
}

func ToUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		FullName:      user.FullName,
		Phone:         user.Phone,
		Role:          user.Role,
		Status:        user.Status,
		EmailVerified: user.EmailVerified,
	}
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         ToUserResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
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
		ExpiresAt: s.now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}
