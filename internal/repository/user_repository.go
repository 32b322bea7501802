package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stanstork/maintenance-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserFieldsRequired = errors.New("email and password are required")
	ErrUnitRequired       = errors.New("unit managers require a unit")
	ErrNameRequired       = errors.New("technicians require a name")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User, password string) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
	GetUserByID(ctx context.Context, userID string) (models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, name, role, unit, password_hash, is_active, created_at`

// PrepareUser validates and normalizes user, hashing password into it.
func PrepareUser(user models.User, password string) (models.User, error) {
	if user.Role == "" {
		user.Role = models.RoleTechnician
	}
	if !models.IsValidRole(user.Role) {
		return models.User{}, ErrInvalidRole
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Name = strings.TrimSpace(user.Name)
	user.Unit = strings.TrimSpace(user.Unit)
	if user.Email == "" || password == "" {
		return models.User{}, ErrUserFieldsRequired
	}
	if user.Role == models.RoleUnitManager && user.Unit == "" {
		return models.User{}, ErrUnitRequired
	}
	if user.Role == models.RoleTechnician && user.Name == "" {
		return models.User{}, ErrNameRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.PasswordHash = string(hash)
	user.IsActive = true
	return user, nil
}

// CheckPassword verifies password against an already loaded user.
func CheckPassword(user models.User, password string) error {
	if !user.IsActive {
		return ErrUserInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (u *userRepository) CreateUser(ctx context.Context, user models.User, password string) (models.User, error) {
	user, err := PrepareUser(user, password)
	if err != nil {
		return models.User{}, err
	}

	const query = `
		INSERT INTO maint.users (id, email, name, role, unit, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	var created models.User
	err = u.db.GetContext(ctx, &created, query, user.ID, user.Email, user.Name, user.Role, user.Unit, user.PasswordHash, user.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

func (u *userRepository) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM maint.users WHERE email = $1`

	var user models.User
	err := u.db.GetContext(ctx, &user, query, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if err := CheckPassword(user, password); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (u *userRepository) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM maint.users WHERE id = $1`

	var user models.User
	if err := u.db.GetContext(ctx, &user, query, userID); err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

func (u *userRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := u.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM maint.users`)
	return count, err
}
