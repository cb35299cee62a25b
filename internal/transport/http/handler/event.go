package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatlog/internal/repository"
	"chatlog/internal/transport/http/response"
)

// EventHandler serves the audit trail written by the event worker.
type EventHandler struct {
	eventRepo *repository.EventRepository
}

func NewEventHandler(eventRepo *repository.EventRepository) *EventHandler {
	return &EventHandler{eventRepo: eventRepo}
}

func (h *EventHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid limit")
		return
	}

	events, err := h.eventRepo.ListRecent(limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list events failed")
		return
	}
	response.OK(c, events)
}
