package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrDealerProfileAbsent = errors.New("dealer profile not found")
)

type SignupInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" validate:"required"`
}

// Service owns account creation and credential checks.
type Service struct {
	DB     *gorm.DB
	Tokens *Tokens
}

func NewService(db *gorm.DB, tokens *Tokens) *Service {
	return &Service{DB: db, Tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates the user and the matching dealer or seller profile in one
// transaction.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         role,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := createUser(tx, user); err != nil {
			return err
		}
		switch role {
		case models.RoleDealer:
			return tx.Create(&models.DealerProfile{
				UserID:              user.ID,
				CompanyName:         user.FirstName,
				VerificationStatus:  models.VerificationPending,
				AutoFollowupEnabled: true,
				FollowupDay1:        true,
				FollowupDay3:        true,
				FollowupDay7:        true,
			}).Error
		default:
			return tx.Create(&models.SellerProfile{UserID: user.ID}).Error
		}
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// createUser maps a unique-index violation to ErrEmailTaken. The count check
// above does not hold against a concurrent signup for the same address.
func createUser(tx *gorm.DB, user *models.User) error {
	err := tx.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

// Login returns ErrInvalidCredentials for both an unknown email and a wrong
// password.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// CurrentUser resolves a bearer token to its user.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	id, err := claims.SubjectID()
	if err != nil {
		return nil, err
	}
	var user models.User
	err = s.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DealerProfile loads the dealer profile owned by userID.
func (s *Service) DealerProfile(ctx context.Context, userID uint) (*models.DealerProfile, error) {
	var profile models.DealerProfile
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDealerProfileAbsent
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
