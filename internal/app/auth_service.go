package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/pkg/jwtutil"
	"taskhub/internal/pkg/password"
	"taskhub/internal/repository"
)

const TokenTypeBearer = "bearer"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrUnauthenticated   = errors.New("not authenticated")
)

type AuthService struct {
	userRepo      *repository.UserRepository
	jwtSecret     string
	jwtIssuer     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret, jwtIssuer string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtIssuer:     jwtIssuer,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) HashPassword(plaintext string) (string, error) {
	return password.Hash(plaintext)
}

func (s *AuthService) VerifyPassword(plaintext, hash string) bool {
	return password.Verify(plaintext, hash)
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if username == "" || email == "" || input.Password == "" || len(input.Password) > password.MaxBytes {
		return nil, ErrInvalidInput
	}

	existingByName, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		return nil, ErrUsernameExists
	}

	existingByEmail, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, ErrEmailExists
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, s.conflictFor(ctx, username, email)
		}
		return nil, err
	}
	user.Tasks = []model.Task{}
	return user, nil
}

// conflictFor names the unique column a concurrent insert collided on.
func (s *AuthService) conflictFor(ctx context.Context, username, email string) error {
	if existing, err := s.userRepo.GetByUsername(ctx, username); err == nil && existing != nil {
		return ErrUsernameExists
	}
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return ErrEmailExists
	}
	return ErrUsernameExists
}

// Authenticate returns nil without an error when the username is unknown or
// the password does not match.
func (s *AuthService) Authenticate(ctx context.Context, username, plaintext string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil || !s.VerifyPassword(plaintext, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, input.Username, input.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	token, err := s.IssueToken(user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

func (s *AuthService) IssueToken(username string) (string, error) {
	return jwtutil.GenerateToken(s.jwtSecret, s.jwtIssuer, s.jwtExpiration, username)
}

// ResolveCurrentUser maps a bearer token to its user. Every failure other than
// a storage error is reported as ErrUnauthenticated.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// Profile returns the user with the tasks it owns.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetWithTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}
