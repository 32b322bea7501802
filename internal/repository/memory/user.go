package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) CreateUser(_ context.Context, user models.User, password string) (models.User, error) {
	user, err := repository.PrepareUser(user, password)
	if err != nil {
		return models.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return models.User{}, repository.ErrAlreadyExists
	}
	user.CreatedAt = time.Now().UTC()
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *UserRepository) AuthenticateUser(_ context.Context, email, password string) (models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	user := r.byID[id]
	r.mu.RUnlock()

	if !ok {
		return models.User{}, repository.ErrInvalidCredentials
	}
	if err := repository.CheckPassword(user, password); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(_ context.Context, userID string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[userID]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) CountUsers(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}
