package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/campusshare/api/model"
	"github.com/campusshare/api/services"
)

// UserByID loads a user by primary key.
func (s *GORMStore) UserByID(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UserByEmail loads a user by email.
func (s *GORMStore) UserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a user, mapping a unique-index conflict on email to
// ErrDuplicateEmail.
func (s *GORMStore) CreateUser(user *model.User) error {
	err := s.db.Create(user).Error
	if err != nil && isUniqueViolation(err) {
		return services.ErrDuplicateEmail
	}
	return err
}

// SaveUser persists all fields of an existing user.
func (s *GORMStore) SaveUser(user *model.User) error {
	err := s.db.Save(user).Error
	if err != nil && isUniqueViolation(err) {
		return services.ErrDuplicateEmail
	}
	return err
}

// isUniqueViolation detects a Postgres unique constraint failure
// (SQLSTATE 23505) without tying this package to one driver's error type.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}
