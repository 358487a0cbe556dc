package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/messagely/messagely-be/internal/auth"
	"github.com/messagely/messagely-be/internal/http/respond"
	"github.com/messagely/messagely-be/internal/models"
	"github.com/messagely/messagely-be/internal/models/dto"
	"github.com/messagely/messagely-be/internal/storage"
)

// AuthHandler owns the register/login endpoints.
type AuthHandler struct {
	users  storage.UserStore
	tokens *auth.TokenManager
	hasher auth.PasswordHasher
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users storage.UserStore, tokens *auth.TokenManager, hasher auth.PasswordHasher) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, hasher: hasher}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validateRegistration(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := h.hasher.Hash(req.Password)
	if err != nil {
		log.Printf("hash password: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: passwordHash,
	}
	created, err := h.users.CreateUser(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusBadRequest, "username already taken")
		default:
			log.Printf("create user error: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	token, err := h.tokens.Generate(created.Username)
	if err != nil {
		log.Printf("generate token: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusCreated, dto.TokenResponse{Token: token})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := h.users.GetCredentials(r.Context(), username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Same body as a wrong password so the response never says
			// which part was wrong.
			respond.Error(w, http.StatusBadRequest, "invalid username/password")
			return
		}
		log.Printf("fetch credentials for %s: %v", username, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if !h.hasher.Compare(hash, req.Password) {
		respond.Error(w, http.StatusBadRequest, "invalid username/password")
		return
	}

	if err := h.users.TouchLogin(r.Context(), username); err != nil {
		log.Printf("update last login for %s: %v", username, err)
		respond.Error(w, http.StatusInternalServerError, "failed to update login timestamp")
		return
	}

	token, err := h.tokens.Generate(username)
	if err != nil {
		log.Printf("generate token: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

func validateRegistration(req dto.RegisterRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return errors.New("username is required")
	}
	if req.Password == "" {
		return errors.New("password is required")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return errors.New("first_name and last_name are required")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return errors.New("phone is required")
	}
	return nil
}
