package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/messagely/messagely-be/internal/auth"
	"github.com/messagely/messagely-be/internal/http/respond"
	"github.com/messagely/messagely-be/internal/middleware"
	"github.com/messagely/messagely-be/internal/models/dto"
	"github.com/messagely/messagely-be/internal/storage"
)

// MessagesHandler serves message creation, message detail, and read receipts.
type MessagesHandler struct {
	messages storage.MessageStore
	tokens   *auth.TokenManager
}

// NewMessagesHandler constructs the handler.
func NewMessagesHandler(messages storage.MessageStore, tokens *auth.TokenManager) *MessagesHandler {
	return &MessagesHandler{messages: messages, tokens: tokens}
}

// Register attaches message routes to the mux.
func (h *MessagesHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /messages", middleware.RequireAuth(h.tokens, h.handleSend))
	mux.HandleFunc("GET /messages/{id}", middleware.RequireAuth(h.tokens, h.handleGet))
	mux.HandleFunc("POST /messages/{id}/read", middleware.RequireAuth(h.tokens, h.handleMarkRead))
}

func (h *MessagesHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	var req dto.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.ToUsername) == "" || strings.TrimSpace(req.Body) == "" {
		respond.Error(w, http.StatusBadRequest, "to_username and body are required")
		return
	}

	// The sender always comes from the token, never from the payload.
	from := middleware.Username(r.Context())
	message, err := h.messages.CreateMessage(r.Context(), from, req.ToUsername, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "recipient not found")
		default:
			log.Printf("create message from %s: %v", from, err)
			respond.Error(w, http.StatusInternalServerError, "failed to create message")
		}
		return
	}
	respond.JSON(w, http.StatusCreated, dto.MessageResponse{Message: message})
}

func (h *MessagesHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseMessageID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid message id")
		return
	}

	detail, err := h.messages.GetMessage(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "message not found")
			return
		}
		log.Printf("get message %d: %v", id, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch message")
		return
	}

	username := middleware.Username(r.Context())
	if err := auth.EnsureMessageParty(detail.FromUser.Username, detail.ToUser.Username, username); err != nil {
		respond.Error(w, http.StatusForbidden, "not a party to this message")
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageDetailResponse{Message: detail})
}

func (h *MessagesHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseMessageID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid message id")
		return
	}

	detail, err := h.messages.GetMessage(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "message not found")
			return
		}
		log.Printf("get message %d: %v", id, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch message")
		return
	}

	username := middleware.Username(r.Context())
	if err := auth.EnsureRecipient(detail.ToUser.Username, username); err != nil {
		respond.Error(w, http.StatusForbidden, "only the recipient can mark a message read")
		return
	}

	receipt, err := h.messages.MarkRead(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "message not found")
			return
		}
		log.Printf("mark read %d: %v", id, err)
		respond.Error(w, http.StatusInternalServerError, "failed to mark message read")
		return
	}
	respond.JSON(w, http.StatusOK, dto.ReadReceiptResponse{Message: receipt})
}

func parseMessageID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
