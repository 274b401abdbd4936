package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/mytournaments/models"
	"github.com/Dosada05/mytournaments/repositories"
	"github.com/Dosada05/mytournaments/utils"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Имена claims в JWT.
const (
	ClaimUserID = "user_id"
	ClaimEmail  = "email"
)

type AuthService struct {
	stores    repositories.StoreFactory
	jwtSecret []byte
	tokenTTL  time.Duration
	clock     clockwork.Clock
}

func NewAuthService(stores repositories.StoreFactory, jwtSecret string, tokenTTL time.Duration, clock clockwork.Clock) *AuthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuthService{
		stores:    stores,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		clock:     clock,
	}
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register validates the registration form and creates a user.
// A taken email is reported as a field error on Email.
func (s *AuthService) Register(ctx context.Context, vm viewmodels.RegisterViewModel) (*models.User, error) {
	if errs := vm.Validate(s.clock.Now()); len(errs) > 0 {
		return nil, validationError(errs)
	}

	hash, err := utils.HashPassword(vm.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	store := s.stores()
	user := &models.User{
		Email:        utils.NormalizeEmail(vm.Email),
		BirthYear:    vm.Year,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
	}
	store.Users.Add(user)
	if _, err := store.SaveChanges(ctx); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, fmt.Errorf("%w: %w", ErrUserEmailConflict, validationError(viewmodels.FieldErrors{
				{Field: "Email", Message: "This email address is already registered."},
			}))
		}
		return nil, handleRepositoryError(err, "create user")
	}

	log.Ctx(ctx).Info().Int("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login checks the credentials and returns the user with a signed token.
func (s *AuthService) Login(ctx context.Context, vm viewmodels.LoginViewModel) (*models.User, string, error) {
	if errs := vm.Validate(); len(errs) > 0 {
		return nil, "", validationError(errs)
	}

	user, err := s.stores().Users.GetByEmail(ctx, utils.NormalizeEmail(vm.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if !utils.CheckPasswordHash(vm.Password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	user.PasswordHash = ""
	return user, token, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		ClaimUserID: user.ID,
		ClaimEmail:  user.Email,
		"exp":       now.Add(s.tokenTTL).Unix(),
		"iat":       now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
