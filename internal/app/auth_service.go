package app

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"email-assistant/internal/model"
	"email-assistant/internal/pkg/jwtutil"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredential covers both unknown identity and wrong
	// password so the login endpoint cannot be used to enumerate
	// accounts.
	ErrInvalidCredential = errors.New("invalid credentials")
)

// UserStore is what the auth flows need from persistence.
type UserStore interface {
	Create(user *model.User) error
	FindActiveByLogin(login string) (*model.User, error)
}

type AuthService struct {
	users     UserStore
	jwtSecret string
	tokenTTL  time.Duration
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken string
	TokenType   string
}

func NewAuthService(users UserStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register hashes the password and persists the user. Duplicate
// usernames or emails are not rejected here; see DESIGN.md.
func (s *AuthService) Register(input RegisterInput) (*model.User, error) {
	if input.Name == "" || input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate resolves the login handle (email when it contains "@",
// username otherwise, soft-deleted users excluded) and checks the
// password. Both failure causes collapse into ErrInvalidCredential.
func (s *AuthService) Authenticate(login, password string) (*model.User, error) {
	if login == "" || password == "" {
		return nil, ErrInvalidCredential
	}

	user, err := s.users.FindActiveByLogin(login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}
	return user, nil
}

// Login authenticates and issues a bearer token whose subject is the
// user's username.
func (s *AuthService) Login(login, password string) (*LoginResult, error) {
	user, err := s.Authenticate(login, password)
	if err != nil {
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.tokenTTL, user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, TokenType: "bearer"}, nil
}
