package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chatlog/internal/model"
	"chatlog/internal/pkg/jwtutil"
	"chatlog/internal/repository"
)

const (
	defaultListLimit = 10
)

type UserService struct {
	userRepo      *repository.UserRepository
	publisher     EventPublisher
	log           *zap.Logger
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the authenticated user with sessions and chats
// eager-loaded in storage order, plus a bearer token.
type LoginResult struct {
	Token string
	User  *model.User
}

func NewUserService(
	userRepo *repository.UserRepository,
	publisher EventPublisher,
	log *zap.Logger,
	jwtSecret string,
	jwtExpiration time.Duration,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		publisher:     publisher,
		log:           log,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register hashes the password and stores the user. The uniqueness of
// username and email is ultimately enforced by the database constraints, so
// two concurrent registrations with the same email resolve to exactly one
// success.
func (s *UserService) Register(input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password

	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	existingByName, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		return nil, ErrUsernameTaken
	}

	existingByEmail, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.resolveDuplicate(username, email)
		}
		return nil, err
	}

	publishEvent(s.publisher, s.log, model.EventUserCreated, user.ID, user.ID, map[string]string{
		"username": user.Username,
	})
	return user, nil
}

// resolveDuplicate decides which constraint a racing insert tripped.
func (s *UserService) resolveDuplicate(username, email string) error {
	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return ErrEmailTaken
	}
	if existing, err := s.userRepo.GetByUsername(username); err == nil && existing != nil {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

// Login authenticates by email and returns the user's full nested tree.
// Sessions and chats stay in storage order here; only the dedicated chats
// listing applies sorting.
func (s *UserService) Login(input LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := input.Password
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmailWithTree(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrIncorrectEmail
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

// List pages through users in creation order. Negative skip and limit fall
// back to the defaults (0 and 10); an explicit zero limit returns an empty
// page.
func (s *UserService) List(skip, limit int) ([]model.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = defaultListLimit
	}
	return s.userRepo.List(skip, limit)
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(id)
}
