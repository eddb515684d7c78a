package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/justsurfingit/job-application-tracker/internal/auth"
	"github.com/justsurfingit/job-application-tracker/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrAccountExists     = errors.New("account already exists")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrWeakPassword      = errors.New("password too short")
)

// FriendlyMessage turns a sign-in or sign-up failure into text for the form.
func FriendlyMessage(err error) string {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return "No account found with this email."
	case errors.Is(err, ErrIncorrectPassword):
		return "Incorrect password. Please try again."
	case errors.Is(err, ErrAccountExists):
		return "An account with this email already exists."
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, ErrWeakPassword):
		return fmt.Sprintf("Password must be at least %d characters.", minPasswordLength)
	case errors.Is(err, auth.ErrInvalidToken):
		return "Your session has expired. Please sign in again."
	}
	return "An unknown error occurred."
}

type AccountService struct {
	DB     *gorm.DB
	Tokens *auth.Tokens
}

func NewAccountService(db *gorm.DB, tokens *auth.Tokens) *AccountService {
	return &AccountService{DB: db, Tokens: tokens}
}

// SignUp registers a new account and signs it in.
func (s *AccountService) SignUp(ctx context.Context, email, password, displayName string) (models.Account, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return models.Account{}, "", err
	}
	if len(password) < minPasswordLength {
		return models.Account{}, "", ErrWeakPassword
	}

	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.Account{}, "", err
	}
	if count > 0 {
		return models.Account{}, "", ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, "", err
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	acct := models.Account{Email: email, PasswordHash: string(hash), DisplayName: strings.TrimSpace(displayName)}
	if err := db.Create(&acct).Error; err != nil {
		return models.Account{}, "", fmt.Errorf("create account: %w", err)
	}

	token, err := s.Tokens.Generate(acct.ID, acct.Email)
	if err != nil {
		return models.Account{}, "", err
	}
	return acct, token, nil
}

// SignIn checks the password and issues a session token.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (models.Account, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return models.Account{}, "", err
	}

	acct, err := s.byEmail(ctx, email)
	if err != nil {
		return models.Account{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return models.Account{}, "", ErrIncorrectPassword
	}

	token, err := s.Tokens.Generate(acct.ID, acct.Email)
	if err != nil {
		return models.Account{}, "", err
	}
	return acct, token, nil
}

// Profile loads the current account.
func (s *AccountService) Profile(ctx context.Context, id uint) (models.Account, error) {
	var acct models.Account
	err := s.DB.WithContext(ctx).First(&acct, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return acct, ErrAccountNotFound
	}
	return acct, err
}

// UpdateProfile changes the display name and avatar.
func (s *AccountService) UpdateProfile(ctx context.Context, id uint, displayName, avatarURL string) (models.Account, error) {
	acct, err := s.Profile(ctx, id)
	if err != nil {
		return acct, err
	}
	if name := strings.TrimSpace(displayName); name != "" {
		acct.DisplayName = name
	}
	acct.AvatarURL = strings.TrimSpace(avatarURL)
	if err := s.DB.WithContext(ctx).Save(&acct).Error; err != nil {
		return acct, fmt.Errorf("update profile: %w", err)
	}
	return acct, nil
}

// ByEmail looks an account up by address.
func (s *AccountService) ByEmail(ctx context.Context, email string) (models.Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return models.Account{}, err
	}
	return s.byEmail(ctx, email)
}

func (s *AccountService) byEmail(ctx context.Context, email string) (models.Account, error) {
	var acct models.Account
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return acct, ErrAccountNotFound
	}
	return acct, err
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
