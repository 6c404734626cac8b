package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ordermind/ordermind/middlewares"
	"ordermind/ordermind/sources/psql/models"
	"ordermind/ordermind/types"
	"ordermind/ordermind/utils/logging"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultRole = "user"
	bcryptCost  = 10
)

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UserStore interface {
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, email, passwordHash, role string) (*models.User, error)
}

type AuthController struct {
	users  UserStore
	secret string
	now    func() time.Time
}

func NewAuthController(users UserStore, secret string) *AuthController {
	return &AuthController{users: users, secret: secret, now: time.Now}
}

func (c *AuthController) Signup(ctx context.Context, req types.SignupRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	existing, err := c.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := c.users.CreateUser(ctx, email, string(hash), DefaultRole)
	if err != nil {
		return nil, err
	}
	logging.AppLogger.Info("user signed up", zap.Int("user_id", user.ID))
	return user, nil
}

// Signin checks the credentials and returns a signed session token.
func (c *AuthController) Signin(ctx context.Context, req types.SigninRequest) (string, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return "", ErrMissingFields
	}
	user, err := c.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil || !user.IsActive {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}
	token, err := middlewares.IssueToken(c.secret, user.ID, c.now())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	logging.AppLogger.Info("user signed in", zap.Int("user_id", user.ID))
	return token, nil
}
