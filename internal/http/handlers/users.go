package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/messagely/messagely-be/internal/auth"
	"github.com/messagely/messagely-be/internal/http/respond"
	"github.com/messagely/messagely-be/internal/middleware"
	"github.com/messagely/messagely-be/internal/models/dto"
	"github.com/messagely/messagely-be/internal/storage"
)

// UsersHandler serves the user listing, user detail, and per-user message
// projections. Every route requires a valid token; the detail and message
// routes additionally require the token to belong to the routed username.
type UsersHandler struct {
	users  storage.UserStore
	tokens *auth.TokenManager
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(users storage.UserStore, tokens *auth.TokenManager) *UsersHandler {
	return &UsersHandler{users: users, tokens: tokens}
}

// Register attaches user routes to the mux.
func (h *UsersHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /users", middleware.RequireAuth(h.tokens, h.handleList))
	mux.HandleFunc("GET /users/{username}", middleware.RequireAuth(h.tokens, h.handleGet))
	mux.HandleFunc("GET /users/{username}/to", middleware.RequireAuth(h.tokens, h.handleMessagesTo))
	mux.HandleFunc("GET /users/{username}/from", middleware.RequireAuth(h.tokens, h.handleMessagesFrom))
}

func (h *UsersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		log.Printf("list users: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	respond.JSON(w, http.StatusOK, dto.UsersResponse{Users: users})
}

func (h *UsersHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if err := auth.EnsureCorrectUser(username, middleware.Username(r.Context())); err != nil {
		respond.Error(w, http.StatusForbidden, "cannot view another user's profile")
		return
	}

	user, err := h.users.GetUser(r.Context(), username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("get user %s: %v", username, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	respond.JSON(w, http.StatusOK, dto.UserResponse{User: user})
}

func (h *UsersHandler) handleMessagesTo(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if err := auth.EnsureCorrectUser(username, middleware.Username(r.Context())); err != nil {
		respond.Error(w, http.StatusForbidden, "cannot view another user's messages")
		return
	}

	messages, err := h.users.MessagesTo(r.Context(), username)
	if err != nil {
		log.Printf("messages to %s: %v", username, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}
	respond.JSON(w, http.StatusOK, dto.InboundMessagesResponse{Messages: messages})
}

func (h *UsersHandler) handleMessagesFrom(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if err := auth.EnsureCorrectUser(username, middleware.Username(r.Context())); err != nil {
		respond.Error(w, http.StatusForbidden, "cannot view another user's messages")
		return
	}

	messages, err := h.users.MessagesFrom(r.Context(), username)
	if err != nil {
		log.Printf("messages from %s: %v", username, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}
	respond.JSON(w, http.StatusOK, dto.OutboundMessagesResponse{Messages: messages})
}
