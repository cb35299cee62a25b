package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chatlog/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user. Uniqueness violations surface as
// gorm.ErrDuplicatedKey inside the wrapped error.
func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

// GetByEmailWithTree eager-loads the user's sessions and each session's chats
// in storage order.
func (r *UserRepository) GetByEmailWithTree(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Sessions.Chats").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user tree by email failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByIDWithTree(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Sessions.Chats").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user tree by id failed: %w", err)
	}
	return &user, nil
}

// List returns users in persistence order using an offset/limit window.
func (r *UserRepository) List(skip, limit int) ([]model.User, error) {
	var users []model.User
	if err := r.db.Order("id ASC").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users failed: %w", err)
	}
	return users, nil
}
