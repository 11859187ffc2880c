package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"talent-ledger/internal/pkg/jwt"
	"talent-ledger/internal/repository"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRefreshToken    = errors.New("invalid refresh token")
	ErrRefreshTokenExpired    = errors.New("refresh token expired")
)

type RegisterInput struct {
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (repository.Account, string, string, error)
	Login(ctx context.Context, in LoginInput) (repository.Account, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

type Auth struct {
	accounts repository.AccountRepository
	jwt      jwt.Service

	now func() time.Time
}

func NewAuthUsecase(accounts repository.AccountRepository, jwtSvc jwt.Service) *Auth {
	return &Auth{accounts: accounts, jwt: jwtSvc, now: time.Now}
}

// Register creates a MEMBER account. Elevated roles are granted
// afterwards through platform governance, never at signup.
func (u *Auth) Register(ctx context.Context, in RegisterInput) (repository.Account, string, string, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !isValidPassword(in.Password) {
		return repository.Account{}, "", "", ErrInvalidInput
	}

	exists, err := u.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return repository.Account{}, "", "", ErrInternal
	}
	if exists {
		return repository.Account{}, "", "", ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return repository.Account{}, "", "", ErrInternal
	}

	acc := repository.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         repository.RoleMember,
		CreatedAt:    u.now().UTC(),
	}
	if err := u.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return repository.Account{}, "", "", ErrEmailAlreadyRegistered
		}
		return repository.Account{}, "", "", ErrInternal
	}

	access, refresh, err := u.issueTokens(acc)
	if err != nil {
		return repository.Account{}, "", "", ErrInternal
	}
	return sanitize(acc), access, refresh, nil
}

func (u *Auth) Login(ctx context.Context, in LoginInput) (repository.Account, string, string, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return repository.Account{}, "", "", ErrInvalidCredentials
	}

	acc, err := u.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Account{}, "", "", ErrInvalidCredentials
		}
		return repository.Account{}, "", "", ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(in.Password)); err != nil {
		return repository.Account{}, "", "", ErrInvalidCredentials
	}

	access, refresh, err := u.issueTokens(acc)
	if err != nil {
		return repository.Account{}, "", "", ErrInternal
	}
	return sanitize(acc), access, refresh, nil
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrRefreshTokenExpired
		}
		return "", "", ErrInvalidRefreshToken
	}
	if !u.jwt.IsRefreshToken(claims) {
		return "", "", ErrInvalidRefreshToken
	}

	acc, err := u.accounts.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", "", ErrInternal
	}

	access, refresh, err := u.issueTokens(acc)
	if err != nil {
		return "", "", ErrInternal
	}
	return access, refresh, nil
}

func (u *Auth) issueTokens(acc repository.Account) (string, string, error) {
	access, err := u.jwt.GenerateAccessToken(acc.ID, acc.Email)
	if err != nil {
		return "", "", err
	}
	refresh, err := u.jwt.GenerateRefreshToken(acc.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidPassword(pw string) bool {
	return len(strings.TrimSpace(pw)) >= 8
}

func sanitize(acc repository.Account) repository.Account {
	acc.PasswordHash = ""
	return acc
}
