// Package service provides the business logic for accounts, plants and care
// logs, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/PlantCare/internal/apperr"
	"github.com/atinyakov/PlantCare/internal/models"
	"github.com/atinyakov/PlantCare/internal/token"
)

const maxUsernameLen = 150

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// CreateUser stores a new account. A taken username is a validation error.
	CreateUser(ctx context.Context, u models.User) (*models.User, error)
	// GetUserByUsername returns a not-found error for unknown names.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	// DeleteUser removes the account together with its plants and logs.
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// TokenIssuer creates and rotates session tokens.
type TokenIssuer interface {
	Issue(userID int64) (token.Pair, error)
	Refresh(refreshToken string) (int64, token.Pair, error)
}

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	Token   string       `json:"token"`
	Refresh string       `json:"refresh"`
	User    *models.User `json:"user"`
}

// AuthService implements account operations.
type AuthService struct {
	repo   UserRepository
	tokens TokenIssuer
	cost   int
}

// NewAuthService constructs a new AuthService.
func NewAuthService(repo UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, apperr.Invalid("password", "This field is required.")
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.CreateUser(ctx, models.User{
		Username:     in.Username,
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}
	return s.signIn(u)
}

// Login verifies credentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.Invalid("", "Username and password are required")
	}

	u, err := s.repo.GetUserByUsername(ctx, username)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if !u.IsActive {
		return nil, apperr.Unauthorized("User account is disabled")
	}
	return s.signIn(u)
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, apperr.Invalid("refresh", "This field is required.")
	}
	uid, pair, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Token is invalid or expired")
	}
	u, err := s.repo.GetUserByID(ctx, uid)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized("User not found")
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, apperr.Unauthorized("User account is disabled")
	}
	return &AuthResult{Token: pair.Access, Refresh: pair.Refresh, User: u}, nil
}

// Authenticate resolves the user behind a verified access token. Deleted
// and disabled accounts are rejected.
func (s *AuthService) Authenticate(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized("User not found")
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, apperr.Unauthorized("User account is disabled")
	}
	return u, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// UpdateMe applies a partial update to the caller's account.
func (s *AuthService) UpdateMe(ctx context.Context, userID int64, p models.UserPatch) (*models.User, error) {
	var upd models.UserUpdate
	if p.Username != nil {
		name := strings.TrimSpace(*p.Username)
		if err := validateUsername(name); err != nil {
			return nil, err
		}
		upd.Username = &name
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		upd.Email = &email
	}
	if p.DisplayName != nil {
		name := strings.TrimSpace(*p.DisplayName)
		upd.DisplayName = &name
	}
	if p.Password != nil {
		if *p.Password == "" {
			return nil, apperr.Invalid("password", "This field may not be blank.")
		}
		hash, err := s.hash(*p.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = hash
	}
	return s.repo.UpdateUser(ctx, userID, upd)
}

// DeleteMe removes the caller's account with all their plants and logs.
func (s *AuthService) DeleteMe(ctx context.Context, userID int64) error {
	return s.repo.DeleteUser(ctx, userID)
}

// ListUsers returns every account. It is only reachable with the service
// credential.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *AuthService) signIn(u *models.User) (*AuthResult, error) {
	pair, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, apperr.Internal("could not issue token", err)
	}
	return &AuthResult{Token: pair.Access, Refresh: pair.Refresh, User: u}, nil
}

func (s *AuthService) hash(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.Invalid("password", "Password is too long.")
	}
	if err != nil {
		return nil, apperr.Internal("could not hash password", err)
	}
	return hash, nil
}

func validateUsername(name string) error {
	if name == "" {
		return apperr.Invalid("username", "This field is required.")
	}
	if utf8.RuneCountInString(name) > maxUsernameLen {
		return apperr.Invalid("username", fmt.Sprintf("Ensure this field has no more than %d characters.", maxUsernameLen))
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Invalid("email", "Enter a valid email address.")
	}
	return nil
}
