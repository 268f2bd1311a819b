package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/policy"
	"littlelemon/repository"
	"littlelemon/utils"

	"golang.org/x/crypto/bcrypt"
)

// AuthService registers users, issues tokens and turns tokens back into
// request identities.
type AuthService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAuthService(repo *repository.UserRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		userRepo:  repo,
		jwtSecret: secret,
		jwtTTL:    ttl,
	}
}

type RegisterIn struct {
	Username string `json:"username" validate:"required,min=1,max=150"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginIn struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Profile is the current user as returned by /auth/users/me/.
type Profile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// compared against when the username is unknown so both paths cost a bcrypt
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("littlelemon-dummy"), bcrypt.DefaultCost)

var errBadCredentials = fmt.Errorf("%w: unable to log in with provided credentials", apperr.ErrUnauthenticated)

// Register creates a customer account. A taken username is a
// ConstraintViolation.
func (s *AuthService) Register(ctx context.Context, in RegisterIn) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(in); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, in LoginIn) (string, error) {
	if err := check(in); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
			return "", errBadCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return "", errBadCredentials
	}

	token, err := utils.GenerateToken(user.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Resolve maps a bearer token to the caller. The role comes from the user's
// groups as they are now, not when the token was issued. Any failure yields
// the anonymous identity.
func (s *AuthService) Resolve(ctx context.Context, token string) (policy.Identity, error) {
	if token == "" {
		return policy.Anonymous, nil
	}
	claims, err := utils.ParseToken(token, s.jwtSecret)
	if err != nil {
		return policy.Anonymous, fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}
	id, err := s.Lookup(ctx, claims.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return policy.Anonymous, fmt.Errorf("%w: user no longer exists", apperr.ErrUnauthenticated)
	}
	return id, err
}

// Lookup builds the identity of userID from its current groups.
func (s *AuthService) Lookup(ctx context.Context, userID uint) (policy.Identity, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return policy.Anonymous, err
	}
	return policy.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     policy.RoleFromGroups(user.GroupNames()),
	}, nil
}

// Me returns the profile of the caller.
func (s *AuthService) Me(ctx context.Context, id policy.Identity) (*Profile, error) {
	if !id.Authenticated() {
		return nil, apperr.ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     policy.RoleFromGroups(user.GroupNames()).String(),
	}, nil
}
