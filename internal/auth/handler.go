package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/revomotors/api-leads/internal/models"
	"github.com/revomotors/api-leads/internal/utils"
)

type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	UserID      uint        `json:"user_id"`
	Role        models.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// Signup registers a seller or dealer and returns a bearer token.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupInput
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.Service.Signup(r.Context(), req)
	switch {
	case errors.Is(err, ErrEmailTaken):
		utils.Error(w, http.StatusBadRequest, "Email already exists")
		return
	case errors.Is(err, models.ErrUnknownRole):
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		utils.InternalError(w, r, "signup", err)
		return
	}
	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login accepts a JSON body {email, password} or an OAuth2 password form
// (username, password).
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid form body")
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		utils.Error(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		utils.InternalError(w, r, "login", err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, user)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := h.Service.Tokens.Issue(user)
	if err != nil {
		utils.InternalError(w, r, "issue token", err)
		return
	}
	utils.JSON(w, status, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      user.ID,
		Role:        user.Role,
	})
}
