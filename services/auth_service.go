package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/models"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher uses bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher; a zero cost means bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Compare checks password against hash.
func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Session is what a successful login returns to the UI.
type Session struct {
	User        models.User  `json:"user"`
	Role        *models.Role `json:"role"`
	Permissions []string     `json:"permissions"`
}

// AuthService checks user credentials.
type AuthService struct {
	db     *gorm.DB
	hasher PasswordHasher
}

// NewAuthService creates an AuthService.
func NewAuthService(db *gorm.DB, hasher PasswordHasher) *AuthService {
	return &AuthService{db: db, hasher: hasher}
}

// Login returns the session of an active user with a matching password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := &Session{User: user, Permissions: []string{}}
	if user.RoleID != "" {
		var role models.Role
		err := db.Where("id = ?", user.RoleID).First(&role).Error
		switch {
		case err == nil:
			session.Role = &role
			session.Permissions = append(session.Permissions, role.Permissions...)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to load role: %w", err)
		}
	}
	return session, nil
}
