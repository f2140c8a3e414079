package handler

import (
	"net/http"

	"github.com/shelfstack/api/internal/middleware"
	"github.com/shelfstack/api/internal/model"
	"github.com/shelfstack/api/internal/service"
)

// AuthHandler handles registration and login endpoints
type AuthHandler struct {
	identity *service.IdentityService
	tokens   *service.TokenService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identity *service.IdentityService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{identity: identity, tokens: tokens}
}

// RegisterRequest represents the register endpoint request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login endpoint request body
type LoginRequest struct {
	Login    string `json:"login"` // Username or email
	Password string `json:"password"`
}

// SessionResponse carries the signed token alongside the account it is for
type SessionResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	user, err := h.identity.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		WriteError(w, model.NewInternalError("failed to issue token"))
		return
	}

	WriteData(w, http.StatusCreated, SessionResponse{Token: token, User: user}, map[string]string{
		"self": "/v1/auth/me",
	})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	user, err := h.identity.Authorize(r.Context(), req.Login, req.Password)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		WriteError(w, model.NewInternalError("failed to issue token"))
		return
	}

	WriteData(w, http.StatusOK, SessionResponse{Token: token, User: user}, map[string]string{
		"self": "/v1/auth/me",
	})
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	user, err := h.identity.GetUserByID(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user, map[string]string{
		"self": "/v1/auth/me",
	})
}

// actorFrom reconstructs the authenticated user from token claims. It never
// touches the store: the claims carry everything the ownership checks need.
func actorFrom(r *http.Request) (*model.User, *model.ProblemDetails) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		return nil, model.NewUnauthorizedError("authentication required")
	}
	id, ok := model.ParseID("user", claims.UserID)
	if !ok {
		return nil, model.NewUnauthorizedError("invalid token subject")
	}
	return &model.User{
		ID:       id,
		Username: claims.Username,
		Level:    claims.Level,
	}, nil
}
