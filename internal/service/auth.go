package service

import (
	"context"
	"errors"
	"time"

	"github.com/reelrate/reelrate-go/internal/crypto"
	"github.com/reelrate/reelrate-go/internal/model"
	"github.com/reelrate/reelrate-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailTaken         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrMovieIDRequired    = errors.New("movieId is required")
	ErrRatingOutOfRange   = errors.New("rating must be between 1 and 5")
)

// UserStore is the persistence contract the auth service needs. Satisfied
// by repository.UserRepository and repository.MemoryUserRepository.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error)
	UpsertRating(ctx context.Context, id string, rating model.RatedMovie) (*model.User, error)
}

// AuthService handles authentication business logic.
type AuthService struct {
	store      UserStore
	jwtSecret  string
	sessionTTL time.Duration
}

// NewAuthService creates a new AuthService. ttl is the shared lifetime of
// session tokens and the cookie that carries them.
func NewAuthService(store UserStore, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		store:      store,
		jwtSecret:  secret,
		sessionTTL: ttl,
	}
}

// Signup creates a new user account and opens a session for it. Duplicate
// emails report ErrEmailTaken whether caught here or by the store's unique
// index.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.AuthResult, error) {
	if req.Username == "" {
		return model.AuthResult{}, ErrUsernameRequired
	}
	if req.Email == "" {
		return model.AuthResult{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.AuthResult{}, ErrPasswordRequired
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResult{}, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResult{}, ErrEmailTaken
		}
		return model.AuthResult{}, err
	}

	token, err := crypto.IssueToken(user.ID.Hex(), s.jwtSecret, s.sessionTTL)
	if err != nil {
		return model.AuthResult{}, err
	}

	return model.AuthResult{Token: token, User: user.Public()}, nil
}

// Signin authenticates a user and opens a new session. An unknown email
// and a wrong password are indistinguishable to the caller.
func (s *AuthService) Signin(ctx context.Context, req model.SigninRequest) (model.AuthResult, error) {
	user, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResult{}, ErrInvalidCredentials
		}
		return model.AuthResult{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResult{}, err
	}
	if !match {
		return model.AuthResult{}, ErrInvalidCredentials
	}

	token, err := crypto.IssueToken(user.ID.Hex(), s.jwtSecret, s.sessionTTL)
	if err != nil {
		return model.AuthResult{}, err
	}

	return model.AuthResult{Token: token, User: user.Public()}, nil
}

// ResolveUser looks up the user a verified session token is bound to.
func (s *AuthService) ResolveUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the caller's display fields and returns the
// updated profile view.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (model.ProfileResponse, error) {
	user, err := s.store.UpdateProfile(ctx, userID, req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.ProfileResponse{}, ErrUserNotFound
		}
		return model.ProfileResponse{}, err
	}
	return user.Profile(), nil
}

// RateMovie records or replaces the caller's rating of one movie and
// returns the updated profile view.
func (s *AuthService) RateMovie(ctx context.Context, userID string, rating model.RatedMovie) (model.ProfileResponse, error) {
	if rating.MovieID <= 0 {
		return model.ProfileResponse{}, ErrMovieIDRequired
	}
	if rating.Rating < 1 || rating.Rating > 5 {
		return model.ProfileResponse{}, ErrRatingOutOfRange
	}

	user, err := s.store.UpsertRating(ctx, userID, rating)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.ProfileResponse{}, ErrUserNotFound
		}
		return model.ProfileResponse{}, err
	}
	return user.Profile(), nil
}
