package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/antonminaichev/storefront/internal/middleware"
	"github.com/antonminaichev/storefront/internal/response"
	"github.com/antonminaichev/storefront/internal/types/user"
)

type Handler struct {
	svc          *Service
	secureCookie bool
}

// NewHandler builds the auth endpoints. secureCookie marks the session
// cookie Secure, which production deployments need.
func NewHandler(svc *Service, secureCookie bool) *Handler {
	return &Handler{svc: svc, secureCookie: secureCookie}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.svc.TTL() / time.Second),
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			response.Error(w, http.StatusBadRequest, "Name, email and password are required")
		case errors.Is(err, ErrPasswordTooShort):
			response.Error(w, http.StatusBadRequest, "Password must be at least 8 characters")
		case errors.Is(err, ErrUserExists):
			response.Error(w, http.StatusBadRequest, "Email already in use")
		default:
			response.ServerError(w, "register", err)
		}
		return
	}

	token, err := h.svc.IssueToken(u.ID)
	if err != nil {
		response.ServerError(w, "issue token", err)
		return
	}
	h.setSession(w, token)
	response.JSON(w, http.StatusCreated, map[string]*user.User{"user": u})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	u, token, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCreds) {
		response.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		response.ServerError(w, "login", err)
		return
	}
	h.setSession(w, token)
	response.JSON(w, http.StatusOK, map[string]*user.User{"user": u})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	response.JSON(w, http.StatusOK, response.Message{Message: "Logged out"})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Profile(r.Context(), middleware.UserIDFromContext(r.Context()))
	if errors.Is(err, ErrUserNotFound) {
		response.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		response.ServerError(w, "profile", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]*user.User{"user": u})
}
