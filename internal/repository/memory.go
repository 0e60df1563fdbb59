package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelrate/reelrate-go/internal/model"
)

// MemoryUserRepository is an in-memory user store with the same contract
// as UserRepository. It backs tests and secret-free local runs.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string
}

// NewMemoryUserRepository creates an empty in-memory store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	cp := *user
	r.byID[user.ID.Hex()] = &cp
	r.byEmail[user.Email] = user.ID.Hex()
	return nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, id string, req model.UpdateProfileRequest) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	user.UpdatedAt = time.Now().UTC()

	cp := *user
	return &cp, nil
}

func (r *MemoryUserRepository) UpsertRating(_ context.Context, id string, rating model.RatedMovie) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	replaced := false
	for i, rm := range user.RatedMovies {
		if rm.MovieID == rating.MovieID {
			user.RatedMovies[i] = rating
			replaced = true
			break
		}
	}
	if !replaced {
		user.RatedMovies = append(user.RatedMovies, rating)
	}
	user.UpdatedAt = time.Now().UTC()

	cp := *user
	cp.RatedMovies = append([]model.RatedMovie(nil), user.RatedMovies...)
	return &cp, nil
}

// Delete removes a user. Stored users are never deleted by the service;
// this exists so tests can exercise the guard's stale-session path.
func (r *MemoryUserRepository) Delete(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.byID[id]; ok {
		delete(r.byEmail, user.Email)
		delete(r.byID, id)
	}
}
