package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lexgraph/lexgraph/internal/domain"
)

// DefaultTokenTTL is how long an issued access token stays valid
const DefaultTokenTTL = 24 * time.Hour

const minPasswordLength = 8

// UserRepositoryInterface defines user persistence used by the auth service
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthService handles registration, login, and JWT issuance/validation
type AuthService struct {
	users    UserRepositoryInterface
	uuidGen  UUIDGenerator
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(users UserRepositoryInterface, secret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		users:    users,
		uuidGen:  &DefaultUUIDGenerator{},
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithUUIDGenerator overrides ID generation, used by tests
func (s *AuthService) WithUUIDGenerator(gen UUIDGenerator) *AuthService {
	s.uuidGen = gen
	return s
}

// WithClock overrides the time source, used by tests
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates an account with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !domain.IsValidEmail(email) {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to hash password", err)
	}

	user := &domain.User{
		ID:           s.uuidGen.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a signed access token. Unknown email
// and wrong password produce the same error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to sign token", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token and returns the account it was
// issued to.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
