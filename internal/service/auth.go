package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iliyamo/lab-equipment-booking/internal/config"
	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
	"github.com/iliyamo/lab-equipment-booking/internal/utils"
)

const minPasswordLen = 6

var errBadLogin = errs.E(errs.ErrInvalidCredentials, "Invalid email or password")

// AuthResult is returned by login and register.
type AuthResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type AuthService struct {
	users  UserStore
	secret string
	ttl    time.Duration
	cost   int
	log    *zap.Logger
}

func NewAuthService(users UserStore, cfg config.Auth, log *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		secret: cfg.JWTSecret,
		ttl:    cfg.AccessTTL(),
		cost:   cfg.BcryptCost,
		log:    log.Named("auth"),
	}
}

// Login never tells an unknown email apart from a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return AuthResult{}, errBadLogin
		}
		return AuthResult{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return AuthResult{}, errBadLogin
	}
	return s.issue(u)
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return AuthResult{}, errs.E(errs.ErrValidation, "Username, email and password are required")
	}
	if len(in.Password) < minPasswordLen {
		return AuthResult{}, errs.Ef(errs.ErrValidation, "Password must be at least %d characters long", minPasswordLen)
	}
	role, err := model.ParseRole(in.Role)
	if err != nil {
		return AuthResult{}, err
	}

	taken, err := s.users.Exists(ctx, in.Email, in.Username)
	if err != nil {
		return AuthResult{}, err
	}
	if taken {
		return AuthResult{}, errs.E(errs.ErrConflict, "User already exists")
	}

	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return AuthResult{}, errors.Wrap(err, "hash password")
	}
	u := model.User{Username: in.Username, Email: in.Email, PasswordHash: hash, Role: role}
	// the unique indexes still catch a concurrent registration
	if err := s.users.Create(ctx, &u); err != nil {
		return AuthResult{}, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return s.issue(u)
}

func (s *AuthService) Me(ctx context.Context, actor model.Actor) (model.User, error) {
	return s.users.GetByID(ctx, actor.ID)
}

func (s *AuthService) ListUsers(ctx context.Context, actor model.Actor) ([]model.User, error) {
	if !actor.Role.Can(model.CapUserList) {
		return nil, errs.E(errs.ErrForbidden, "Not allowed to list users")
	}
	return s.users.List(ctx)
}

func (s *AuthService) issue(u model.User) (AuthResult, error) {
	tok, err := utils.NewAccessToken(s.secret, u, s.ttl)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: tok.Token, ExpiresAt: tok.Exp, User: u}, nil
}
