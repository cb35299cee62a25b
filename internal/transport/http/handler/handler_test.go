package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chatlog/internal/app"
	"chatlog/internal/model"
	"chatlog/internal/repository"
	"chatlog/internal/transport/http/middleware"
)

const testJWTSecret = "handler-test-secret"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Session{}, &model.Chat{}))

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	chatRepo := repository.NewChatRepository(db)

	userService := app.NewUserService(userRepo, nil, zap.NewNop(), testJWTSecret, time.Hour)
	chatService := app.NewChatService(userRepo, sessionRepo, chatRepo, nil, nil, nil, zap.NewNop())

	userHandler := NewUserHandler(userService)
	chatHandler := NewChatHandler(chatService)

	router := gin.New()
	router.POST("/users/", userHandler.Register)
	router.POST("/login/", userHandler.Login)
	router.GET("/users/", userHandler.List)
	router.GET("/me", middleware.AuthJWT(testJWTSecret), userHandler.Me)
	router.POST("/sessions/", chatHandler.CreateSession)
	router.POST("/chats/", chatHandler.CreateChat)
	router.GET("/users/:user_id/chats", chatHandler.ListUserChats)
	router.DELETE("/session/:session_id", chatHandler.DeleteSession)
	return router
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func registerUser(t *testing.T, router *gin.Engine, username, email string) uint {
	t.Helper()
	w, env := doJSON(t, router, http.MethodPost, "/users/", gin.H{
		"username": username,
		"email":    email,
		"password": "opensesame",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary UserSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	require.NotZero(t, summary.ID)
	return summary.ID
}

func TestRegisterEndpoint(t *testing.T) {
	router := newTestRouter(t)

	registerUser(t, router, "alice", "alice@example.com")

	// duplicate email conflicts
	w, _ := doJSON(t, router, http.MethodPost, "/users/", gin.H{
		"username": "someone",
		"email":    "alice@example.com",
		"password": "opensesame",
	}, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// malformed payload rejected by binding
	w, _ = doJSON(t, router, http.MethodPost, "/users/", gin.H{
		"username": "bob",
		"email":    "not-an-email",
		"password": "opensesame",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)
	userID := registerUser(t, router, "alice", "alice@example.com")

	w, env := doJSON(t, router, http.MethodPost, "/sessions/", gin.H{
		"user_id":       userID,
		"session_title": "first",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var session model.Session
	require.NoError(t, json.Unmarshal(env.Data, &session))

	w, _ = doJSON(t, router, http.MethodPost, "/chats/", gin.H{
		"user_id":    userID,
		"session_id": session.ID,
		"message":    "hello",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, router, http.MethodPost, "/login/", gin.H{
		"email":    "alice@example.com",
		"password": "opensesame",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var loginData struct {
		Token string   `json:"token"`
		User  UserTree `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &loginData))
	require.NotEmpty(t, loginData.Token)
	require.Len(t, loginData.User.Sessions, 1)
	require.Len(t, loginData.User.Sessions[0].Chats, 1)
	require.NotEmpty(t, loginData.User.Sessions[0].Chats[0].Answer)

	w, env = doJSON(t, router, http.MethodPost, "/login/", gin.H{
		"email":    "nobody@example.com",
		"password": "opensesame",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "incorrect email", env.Message)

	w, env = doJSON(t, router, http.MethodPost, "/login/", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "incorrect password", env.Message)
}

func TestListUsersEndpoint(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < 15; i++ {
		registerUser(t, router, fmt.Sprintf("user%02d", i), fmt.Sprintf("user%02d@example.com", i))
	}

	w, env := doJSON(t, router, http.MethodGet, "/users/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []UserSummary
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 10)
	require.Equal(t, "user00", users[0].Username)

	w, env = doJSON(t, router, http.MethodGet, "/users/?skip=10&limit=10", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 5)
	require.Equal(t, "user10", users[0].Username)

	// limit=0 asks for an empty page
	w, env = doJSON(t, router, http.MethodGet, "/users/?limit=0", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Empty(t, users)
}

func TestSessionAndChatEndpoints(t *testing.T) {
	router := newTestRouter(t)
	userID := registerUser(t, router, "alice", "alice@example.com")

	// session for a missing user
	w, _ := doJSON(t, router, http.MethodPost, "/sessions/", gin.H{
		"user_id":       9999,
		"session_title": "ghost",
	}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w, env := doJSON(t, router, http.MethodPost, "/sessions/", gin.H{
		"user_id":       userID,
		"session_title": "real",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var session model.Session
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.Equal(t, "real", session.Title)

	// chat referencing a missing session
	w, _ = doJSON(t, router, http.MethodPost, "/chats/", gin.H{
		"user_id":    userID,
		"session_id": 9999,
		"message":    "hello",
	}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w, env = doJSON(t, router, http.MethodPost, "/chats/", gin.H{
		"user_id":    userID,
		"session_id": session.ID,
		"message":    "hello",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var chat model.Chat
	require.NoError(t, json.Unmarshal(env.Data, &chat))
	require.NotEmpty(t, chat.Answer)

	// nested sorted tree
	w, env = doJSON(t, router, http.MethodGet, fmt.Sprintf("/users/%d/chats", userID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tree UserTree
	require.NoError(t, json.Unmarshal(env.Data, &tree))
	require.Len(t, tree.Sessions, 1)
	require.Len(t, tree.Sessions[0].Chats, 1)

	w, _ = doJSON(t, router, http.MethodGet, "/users/9999/chats", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSessionEndpoint(t *testing.T) {
	router := newTestRouter(t)
	userID := registerUser(t, router, "alice", "alice@example.com")

	w, env := doJSON(t, router, http.MethodPost, "/sessions/", gin.H{
		"user_id":       userID,
		"session_title": "doomed",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var session model.Session
	require.NoError(t, json.Unmarshal(env.Data, &session))

	w, env = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/session/%d", session.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var confirmation struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &confirmation))
	require.Equal(t, "Session and associated chats deleted successfully", confirmation.Message)

	w, _ = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/session/%d", session.ID), nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMeEndpoint(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice", "alice@example.com")

	w, env := doJSON(t, router, http.MethodPost, "/login/", gin.H{
		"email":    "alice@example.com",
		"password": "opensesame",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var loginData struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &loginData))

	w, env = doJSON(t, router, http.MethodGet, "/me", nil, map[string]string{
		"Authorization": "Bearer " + loginData.Token,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var me UserSummary
	require.NoError(t, json.Unmarshal(env.Data, &me))
	require.Equal(t, "alice", me.Username)

	w, _ = doJSON(t, router, http.MethodGet, "/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
