package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"go-storefront/apperror"
	"go-storefront/models"
	"go-storefront/repositories"
	"go-storefront/utils"
)

const welcomeEmailTimeout = 10 * time.Second

// UserService manages accounts and issues tokens
type UserService struct {
	users  repositories.UserRepository
	carts  repositories.CartRepository
	tokens *utils.TokenIssuer
	mailer utils.Mailer
	logger *logrus.Logger
}

func NewUserService(users repositories.UserRepository, carts repositories.CartRepository, tokens *utils.TokenIssuer, mailer utils.Mailer, logger *logrus.Logger) *UserService {
	return &UserService{users: users, carts: carts, tokens: tokens, mailer: mailer, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	oid, err := parseID(id, "user not found")
	if err != nil {
		return models.User{}, err
	}
	return s.users.GetByID(ctx, oid)
}

// GetByEmail is used by the admin gate to re-read the caller's role.
func (s *UserService) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.users.GetByEmail(ctx, normalizeEmail(email))
}

// Register creates the account and returns it with a fresh token. The
// welcome email is sent in the background and never fails registration.
func (s *UserService) Register(ctx context.Context, reg models.Registration) (models.AuthResult, error) {
	reg.Email = normalizeEmail(reg.Email)
	if err := utils.Validate(reg); err != nil {
		return models.AuthResult{}, err
	}

	hash, err := utils.HashPassword(reg.Password)
	if err != nil {
		return models.AuthResult{}, apperror.Internal("Error hashing password", err)
	}

	user, err := s.users.Create(ctx, models.User{
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Password:  hash,
	})
	if err != nil {
		return models.AuthResult{}, err
	}

	go s.sendWelcome(user)

	return s.authResult(user)
}

func (s *UserService) sendWelcome(user models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), welcomeEmailTimeout)
	defer cancel()
	if err := s.mailer.SendWelcome(ctx, user); err != nil {
		s.logger.WithError(err).WithField("email", user.Email).Warn("welcome email failed")
	}
}

// SignIn checks the credentials. An unknown email and a wrong password are
// indistinguishable to the caller.
func (s *UserService) SignIn(ctx context.Context, creds models.Credentials) (models.AuthResult, error) {
	if err := utils.Validate(creds); err != nil {
		return models.AuthResult{}, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return models.AuthResult{}, apperror.Unauthorized("invalid email or password", nil)
		}
		return models.AuthResult{}, err
	}
	if !utils.CheckPassword(user.Password, creds.Password) {
		return models.AuthResult{}, apperror.Unauthorized("invalid email or password", nil)
	}

	return s.authResult(user)
}

func (s *UserService) authResult(user models.User) (models.AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.AuthResult{}, apperror.Internal("Error generating token", err)
	}
	return models.AuthResult{UserSummary: user.Summary(), Token: token}, nil
}

// Update applies the non-empty fields of patch.
func (s *UserService) Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	oid, err := parseID(id, "user not found")
	if err != nil {
		return models.User{}, err
	}
	patch.Email = normalizeEmail(patch.Email)
	if err := utils.Validate(patch); err != nil {
		return models.User{}, err
	}

	user, err := s.users.GetByID(ctx, oid)
	if err != nil {
		return models.User{}, err
	}
	if patch.Password != "" {
		hash, err := utils.HashPassword(patch.Password)
		if err != nil {
			return models.User{}, apperror.Internal("Error hashing password", err)
		}
		patch.Password = hash
	}
	patch.Apply(&user)
	return s.users.Update(ctx, user)
}

// SetAdmin grants or revokes the administrator flag.
func (s *UserService) SetAdmin(ctx context.Context, email string, isAdmin bool) (models.User, error) {
	return s.users.SetAdmin(ctx, normalizeEmail(email), isAdmin)
}

// Delete removes the account and its cart.
func (s *UserService) Delete(ctx context.Context, id string) (models.User, error) {
	oid, err := parseID(id, "user not found")
	if err != nil {
		return models.User{}, err
	}
	deleted, err := s.users.Delete(ctx, oid)
	if err != nil {
		return models.User{}, err
	}
	if _, err := s.carts.DeleteByUser(ctx, oid); err != nil {
		s.logger.WithError(err).WithField("user_id", oid.Hex()).Warn("failed to delete cart of removed user")
	}
	return deleted, nil
}
