package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"chatlog/internal/generate"
	"chatlog/internal/model"
	"chatlog/internal/repository"
)

type ChatService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	chatRepo    *repository.ChatRepository
	generator   generate.AnswerGenerator
	publisher   EventPublisher
	treeCache   TreeCache
	log         *zap.Logger
}

// TreeCache holds the sorted nested tree served by ListUserChats. A nil cache
// is valid; every lookup then goes to the database.
type TreeCache interface {
	GetTree(ctx context.Context, userID uint) (*model.User, bool, error)
	SetTree(ctx context.Context, userID uint, user *model.User) error
	Invalidate(ctx context.Context, userID uint) error
	MarkDirty(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

type CreateSessionInput struct {
	UserID uint
	Title  string
}

type CreateChatInput struct {
	UserID    uint
	SessionID uint
	Message   string
}

func NewChatService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	chatRepo *repository.ChatRepository,
	generator generate.AnswerGenerator,
	publisher EventPublisher,
	treeCache TreeCache,
	log *zap.Logger,
) *ChatService {
	if generator == nil {
		generator = generate.NewStaticGenerator()
	}
	return &ChatService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		chatRepo:    chatRepo,
		generator:   generator,
		publisher:   publisher,
		treeCache:   treeCache,
		log:         log,
	}
}

func (s *ChatService) CreateSession(input CreateSessionInput) (*model.Session, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	session := &model.Session{
		UserID: input.UserID,
		Title:  strings.TrimSpace(input.Title),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	s.invalidateTree(input.UserID)
	publishEvent(s.publisher, s.log, model.EventSessionCreated, input.UserID, session.ID, map[string]string{
		"session_title": session.Title,
	})
	return session, nil
}

// CreateChat validates both referenced rows, asks the generator for an
// answer, and stores the pair. The returned row always carries a non-empty
// answer.
func (s *ChatService) CreateChat(ctx context.Context, input CreateChatInput) (*model.Chat, error) {
	if input.UserID == 0 || input.SessionID == 0 {
		return nil, ErrInvalidInput
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	session, err := s.sessionRepo.GetByID(input.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	answer, err := s.generator.Generate(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	chat := &model.Chat{
		UserID:    input.UserID,
		SessionID: input.SessionID,
		Message:   message,
		Answer:    answer,
	}
	if err := s.chatRepo.Create(chat); err != nil {
		return nil, err
	}

	s.invalidateTree(input.UserID)
	publishEvent(s.publisher, s.log, model.EventChatCreated, input.UserID, chat.ID, nil)
	return chat, nil
}

// ListUserChats returns the user with sessions ordered most-recently-updated
// first and chats inside each session in chronological reading order.
func (s *ChatService) ListUserChats(ctx context.Context, userID uint) (*model.User, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.treeCache != nil {
		if dirty, err := s.treeCache.IsDirty(ctx, userID); err == nil && !dirty {
			if cached, hit, cacheErr := s.treeCache.GetTree(ctx, userID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	user, err := s.userRepo.GetByIDWithTree(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	sortTree(user)

	if s.treeCache != nil {
		if dirty, err := s.treeCache.IsDirty(ctx, userID); err == nil && !dirty {
			if err := s.treeCache.SetTree(ctx, userID, user); err != nil && s.log != nil {
				s.log.Warn("cache tree failed", zap.Uint("user_id", userID), zap.Error(err))
			}
		}
	}
	return user, nil
}

// DeleteSession removes the session and all of its chats as one transaction.
func (s *ChatService) DeleteSession(sessionID uint) error {
	if sessionID == 0 {
		return ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	if err := s.sessionRepo.DeleteWithChats(sessionID); err != nil {
		return err
	}

	s.invalidateTree(session.UserID)
	publishEvent(s.publisher, s.log, model.EventSessionDeleted, session.UserID, sessionID, nil)
	return nil
}

func (s *ChatService) invalidateTree(userID uint) {
	if s.treeCache == nil {
		return
	}
	ctx := context.Background()
	if err := s.treeCache.MarkDirty(ctx, userID); err != nil && s.log != nil {
		s.log.Warn("mark tree dirty failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	if err := s.treeCache.Invalidate(ctx, userID); err != nil && s.log != nil {
		s.log.Warn("invalidate tree failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func sortTree(user *model.User) {
	sort.SliceStable(user.Sessions, func(i, j int) bool {
		return user.Sessions[i].UpdatedAt.After(user.Sessions[j].UpdatedAt)
	})
	for i := range user.Sessions {
		chats := user.Sessions[i].Chats
		sort.SliceStable(chats, func(a, b int) bool {
			return chats[a].UpdatedAt.Before(chats[b].UpdatedAt)
		})
	}
}
