package handler

import "chatlog/internal/model"

// Response shapes for the nested user→sessions→chats tree. The arrays are
// always present, never null, and keep whatever order the service handed
// over: login serves storage order, the chats listing serves sorted order.

type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ChatNode struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	SessionID uint   `json:"session_id"`
	Message   string `json:"message"`
	Answer    string `json:"answer"`
}

type SessionNode struct {
	ID           uint       `json:"id"`
	UserID       uint       `json:"user_id"`
	SessionTitle string     `json:"session_title"`
	Chats        []ChatNode `json:"chats"`
}

type UserTree struct {
	ID       uint          `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Sessions []SessionNode `json:"sessions"`
}

func newUserSummary(user *model.User) UserSummary {
	return UserSummary{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

func newUserTree(user *model.User) UserTree {
	tree := UserTree{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Sessions: make([]SessionNode, 0, len(user.Sessions)),
	}
	for _, session := range user.Sessions {
		node := SessionNode{
			ID:           session.ID,
			UserID:       user.ID,
			SessionTitle: session.Title,
			Chats:        make([]ChatNode, 0, len(session.Chats)),
		}
		for _, chat := range session.Chats {
			node.Chats = append(node.Chats, ChatNode{
				ID:        chat.ID,
				UserID:    chat.UserID,
				SessionID: chat.SessionID,
				Message:   chat.Message,
				Answer:    chat.Answer,
			})
		}
		tree.Sessions = append(tree.Sessions, node)
	}
	return tree
}
