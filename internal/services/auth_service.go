package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/cvstudio/internal/models"
	"github.com/yoockh/cvstudio/internal/repositories"
	"github.com/yoockh/cvstudio/internal/utils"
	"github.com/yoockh/cvstudio/internal/validator"
)

// AuthResult is returned by Register and Login. It never carries the password hash.
type AuthResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type AuthService interface {
	Register(ctx context.Context, in validator.RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in validator.LoginInput) (*AuthResult, error)
}

type authService struct {
	users      repositories.UserRepository
	tokens     TokenService
	validate   *validator.Validator
	bcryptCost int
	log        logrus.FieldLogger
}

func NewAuthService(users repositories.UserRepository, tokens TokenService, v *validator.Validator, bcryptCost int, log logrus.FieldLogger) AuthService {
	return &authService{users: users, tokens: tokens, validate: v, bcryptCost: bcryptCost, log: log}
}

func (s *authService) Register(ctx context.Context, in validator.RegisterInput) (*AuthResult, error) {
	const op = "AuthService.Register"

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := s.check(op, in); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, utils.E(utils.CodeInvalidArgument, op, "User already exists", utils.ErrDuplicateEmail)
	case !errors.Is(err, utils.ErrNotFound):
		return nil, utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// a concurrent registration can win between the lookup and the insert
		if errors.Is(err, utils.ErrDuplicateEmail) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "User already exists", utils.ErrDuplicateEmail)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID}).Info("user registered")
	return s.result(u)
}

func (s *authService) Login(ctx context.Context, in validator.LoginInput) (*AuthResult, error) {
	const op = "AuthService.Login"

	in.Email = normalizeEmail(in.Email)
	if err := s.check(op, in); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeUnauthorized, op, "Invalid credentials", utils.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}
	if err := utils.CheckPassword(u.PasswordHash, in.Password); err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "Invalid credentials", utils.ErrInvalidCredentials)
	}

	return s.result(u)
}

func (s *authService) check(op string, in any) error {
	err := s.validate.Validate(in)
	if err == nil {
		return nil
	}
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		return utils.Invalid(op, ve.Messages[0], ve.Messages, nil)
	}
	return utils.E(utils.CodeInternal, op, "failed to validate input", err)
}

func (s *authService) result(u *models.User) (*AuthResult, error) {
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{ID: u.ID, Name: u.Name, Email: u.Email, Token: tok}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
