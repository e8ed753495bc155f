package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Dosada05/tennis-roundrobin/utils"
)

const tokenTTL = 12 * time.Hour

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
}

type LoginInput struct {
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type authService struct {
	passwordHash string
	jwtSecret    []byte
	logger       *slog.Logger
	validate     *validator.Validate
	now          func() time.Time
}

// NewAuthService authenticates the single organizer account. An empty
// passwordHash disables login.
func NewAuthService(passwordHash string, jwtSecret []byte, logger *slog.Logger) AuthService {
	return &authService{
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		logger:       logger,
		validate:     NewValidator(),
		now:          time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := validationError(s.validate.Struct(input)); err != nil {
		return nil, err
	}
	if s.passwordHash == "" || !utils.CheckPasswordHash(input.Password, s.passwordHash) {
		s.logger.WarnContext(ctx, "organizer login failed")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	token, err := utils.GenerateJWT(s.jwtSecret, utils.RoleOrganizer, utils.RoleOrganizer, tokenTTL, now)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: now.Add(tokenTTL).UTC()}, nil
}
