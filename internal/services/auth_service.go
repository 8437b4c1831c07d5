package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/localnerve/designerhub/internal/config"
	"github.com/localnerve/designerhub/internal/database"
	"github.com/localnerve/designerhub/internal/mail"
	"github.com/localnerve/designerhub/internal/models"
	"github.com/localnerve/designerhub/internal/session"
	"github.com/localnerve/designerhub/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	jwtIssuer        = "designerhub"

	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes = 72
)

// Identity is the authenticated caller of a request
type Identity struct {
	AccountID uint64
	Email     string
	IsStaff   bool
	IsAdmin   bool
}

// TokenPair is the credential pair issued at login
type TokenPair struct {
	Refresh string `json:"refresh,omitempty"`
	Access  string `json:"access"`
}

// RegisterInput carries registration fields
type RegisterInput struct {
	Email     string  `json:"email" validate:"required,email,max=254"`
	FirstName string  `json:"first_name" validate:"required,max=30"`
	LastName  *string `json:"last_name" validate:"omitempty,max=30"`
	Password  string  `json:"password" validate:"required"`
	Password2 string  `json:"password2" validate:"required"`
}

type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
	Email     string `json:"email,omitempty"`
	IsStaff   bool   `json:"is_staff,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}

// AuthService owns accounts, credentials and password-reset tokens
type AuthService struct {
	DB       *gorm.DB
	Mailer   mail.Mailer
	Revoker  session.AccountRevoker // optional
	Secret   []byte
	HashCost int

	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	PasswordResetTTL time.Duration
	PasswordResetURL string

	Now func() time.Time

	dummyOnce sync.Once
	dummy     []byte
}

// NewAuthService builds the identity service from configuration
func NewAuthService(db *gorm.DB, cfg *config.Config, mailer mail.Mailer, revoker session.AccountRevoker) *AuthService {
	return &AuthService{
		DB:               db,
		Mailer:           mailer,
		Revoker:          revoker,
		Secret:           []byte(cfg.JWTSecret),
		HashCost:         bcrypt.DefaultCost,
		AccessTTL:        cfg.AccessTokenTTL,
		RefreshTTL:       cfg.RefreshTokenTTL,
		PasswordResetTTL: cfg.PasswordResetTTL,
		PasswordResetURL: cfg.PasswordResetURL,
		Now:              func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account with a hashed password
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, types.Validation("auth.validation.email", "Email is required")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, types.Validation("auth.validation.first_name", "First name is required")
	}
	if in.Password != in.Password2 {
		return nil, types.Validation("auth.validation.password", "Password fields didn't match")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	account := models.Account{
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     in.LastName,
		PasswordHash: hash,
		IsActive:     true,
		DateJoined:   s.Now(),
	}

	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, types.Conflict("auth.conflict.email", "An account with this email already exists")
	}
	if err := db.Create(&account).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, types.Conflict("auth.conflict.email", "An account with this email already exists")
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "account registered", "account_id", account.ID)
	return &account, nil
}

// Authenticate checks credentials and issues a refresh/access pair
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	var account models.Account
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(password))
		return nil, types.Auth("auth.login", "Invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !account.IsActive {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(password))
		return nil, types.Auth("auth.login", "Invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, types.Auth("auth.login", "Invalid email or password")
	}

	refresh, err := s.sign(account, tokenTypeRefresh, s.RefreshTTL)
	if err != nil {
		return nil, err
	}
	access, err := s.sign(account, tokenTypeAccess, s.AccessTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Refresh: refresh, Access: access}, nil
}

// Refresh exchanges a valid refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.verify(ctx, refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	account, err := s.Me(ctx, claims.accountID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.Auth("auth.token", "Token is invalid or expired")
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, types.Auth("auth.token", "Token is invalid or expired")
	}
	access, err := s.sign(*account, tokenTypeAccess, s.AccessTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access}, nil
}

// VerifyAccess validates an access token and returns the caller's identity
func (s *AuthService) VerifyAccess(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := s.verify(ctx, accessToken, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &Identity{
		AccountID: claims.accountID,
		Email:     claims.Email,
		IsStaff:   claims.IsStaff,
		IsAdmin:   claims.IsAdmin,
	}, nil
}

// Me loads the account behind an identity
func (s *AuthService) Me(ctx context.Context, accountID uint64) (*models.Account, error) {
	var account models.Account
	err := s.DB.WithContext(ctx).First(&account, accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("auth.account", "Account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &account, nil
}

// RequestPasswordReset issues a reset token and emails it to the account owner.
// The token is only kept if the mail was handed to the relay.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	var account models.Account
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NotFound("auth.password_reset", "No account with this email")
	}
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token := models.PasswordResetToken{
			AccountID: account.ID,
			Token:     uuid.NewString(),
			CreatedAt: s.Now(),
		}
		if err := tx.Create(&token).Error; err != nil {
			return fmt.Errorf("create reset token: %w", err)
		}
		return s.Mailer.Send(ctx, mail.Message{
			To:      []string{account.Email},
			Subject: "Password Reset Request",
			Body:    fmt.Sprintf("Password reset token: %s?token=%s", s.PasswordResetURL, token.Token),
		})
	})
}

// ConfirmPasswordReset consumes a reset token and sets a new password.
// Expired tokens are deleted when they are presented.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return types.Validation("auth.validation.password", "Password fields didn't match")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	parsed, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return types.Validation("auth.validation.token", "Must be a valid UUID")
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}

	var (
		expired   bool
		accountID uint64
		now       = s.Now()
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.PasswordResetToken
		err := tx.Where("token = ?", parsed.String()).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("auth.password_reset", "Invalid token")
		}
		if err != nil {
			return fmt.Errorf("load reset token: %w", err)
		}

		deleted := tx.Delete(&models.PasswordResetToken{}, record.ID)
		if deleted.Error != nil {
			return fmt.Errorf("delete reset token: %w", deleted.Error)
		}
		if deleted.RowsAffected == 0 {
			// consumed by a concurrent request
			return types.NotFound("auth.password_reset", "Invalid token")
		}

		if now.Sub(record.CreatedAt) >= s.PasswordResetTTL {
			expired = true
			return nil
		}

		updated := tx.Model(&models.Account{}).Where("id = ?", record.AccountID).Update("password_hash", hash)
		if updated.Error != nil {
			return fmt.Errorf("update password: %w", updated.Error)
		}
		if updated.RowsAffected == 0 {
			return types.NotFound("auth.password_reset", "Invalid token")
		}
		accountID = record.AccountID
		return nil
	})
	if err != nil {
		return err
	}
	if expired {
		return types.ExpiredToken("auth.password_reset", "Token expired")
	}

	if s.Revoker != nil {
		ttl := max(s.AccessTTL, s.RefreshTTL)
		if err := s.Revoker.RevokeAccount(ctx, accountID, now, ttl); err != nil {
			slog.WarnContext(ctx, "failed to revoke sessions after password reset", "account_id", accountID, "error", err)
		}
	}
	slog.InfoContext(ctx, "password reset", "account_id", accountID)
	return nil
}

type verifiedClaims struct {
	tokenClaims
	accountID uint64
}

func (s *AuthService) sign(account models.Account, tokenType string, ttl time.Duration) (string, error) {
	now := s.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(account.ID, 10),
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		TokenType: tokenType,
	}
	if tokenType == tokenTypeAccess {
		claims.Email = account.Email
		claims.IsStaff = account.IsStaff
		claims.IsAdmin = account.IsAdmin
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *AuthService) verify(ctx context.Context, raw, tokenType string) (*verifiedClaims, error) {
	invalid := types.Auth("auth.token", "Token is invalid or expired")

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, invalid
	}
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil || claims.TokenType != tokenType {
		return nil, invalid
	}
	accountID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || accountID == 0 {
		return nil, invalid
	}

	if s.Revoker != nil {
		cutoff, err := s.Revoker.RevokedAfter(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if !cutoff.IsZero() && (claims.IssuedAt == nil || !claims.IssuedAt.Time.After(cutoff)) {
			return nil, invalid
		}
	}

	return &verifiedClaims{tokenClaims: claims, accountID: accountID}, nil
}

func (s *AuthService) cost() int {
	if s.HashCost == 0 {
		return bcrypt.DefaultCost
	}
	return s.HashCost
}

func (s *AuthService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// dummyHash stands in for a stored hash on login misses, at the same cost as real ones
func (s *AuthService) dummyHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummy, _ = bcrypt.GenerateFromPassword([]byte("designerhub-login-miss"), s.cost())
	})
	return s.dummy
}

// validatePassword applies the minimum password policy
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return types.Validation("auth.validation.password", "This password is too short. It must contain at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return types.Validation("auth.validation.password", "This password is too long. It must contain at most %d bytes", maxPasswordBytes)
	}
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return types.Validation("auth.validation.password", "This password is entirely numeric")
	}
	return nil
}

// normalizeEmail trims the address and lower-cases its domain part
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
