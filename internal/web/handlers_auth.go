package web

import (
	"errors"
	"net/http"

	"spa-directory/internal/auth"
	"spa-directory/internal/logging"
	mw "spa-directory/internal/web/middleware"

	"github.com/go-chi/render"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates a new account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondMessage(w, r, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		s.respondMessage(w, r, http.StatusBadRequest, "Email, password, and name are required.")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.Password, req.Name, req.Phone)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail):
		s.respondMessage(w, r, http.StatusBadRequest, "Invalid email format.")
	case errors.Is(err, auth.ErrWeakPassword):
		s.respondMessage(w, r, http.StatusBadRequest, "Password must be at least 6 characters long.")
	case errors.Is(err, auth.ErrEmailTaken):
		s.respondMessage(w, r, http.StatusBadRequest, "User with this email already exists.")
	case err != nil:
		s.respondInternalError(w, r, err, "Registration failed. Please try again.")
	default:
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"success": true,
			"message": "User registered successfully.",
			"user":    user,
		})
	}
}

// handleLogin verifies credentials and returns a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondMessage(w, r, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.respondMessage(w, r, http.StatusBadRequest, "Email and password are required.")
		return
	}

	token, user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.respondMessage(w, r, http.StatusUnauthorized, "Invalid email or password.")
	case errors.Is(err, auth.ErrAccountDisabled):
		s.respondMessage(w, r, http.StatusForbidden, "Your account has been deactivated. Please contact support.")
	case err != nil:
		s.respondInternalError(w, r, err, "Login failed. Please try again.")
	default:
		render.JSON(w, r, map[string]any{
			"success": true,
			"message": "Login successful.",
			"token":   token,
			"user":    user,
		})
	}
}

// handleLogout invalidates the session behind the presented token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := mw.TokenFromContext(r.Context())

	if err := s.auth.Logout(r.Context(), token); err != nil {
		s.respondInternalError(w, r, err, "Logout failed. Please try again.")
		return
	}

	render.JSON(w, r, map[string]any{
		"success": true,
		"message": "Logout successful.",
	})
}

// handleMe returns the authenticated user's account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	ident, _ := mw.IdentityFromContext(r.Context())

	user, err := s.auth.CurrentUser(r.Context(), ident)
	if errors.Is(err, auth.ErrUserNotFound) {
		s.respondMessage(w, r, http.StatusNotFound, "User not found.")
		return
	}
	if err != nil {
		s.respondInternalError(w, r, err, "Failed to get user info.")
		return
	}

	render.JSON(w, r, map[string]any{
		"success": true,
		"user":    user,
	})
}

// handleListUsers returns all registered accounts. Admin only; role
// enforcement happens in the route middleware.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.respondInternalError(w, r, err, "Failed to get users.")
		return
	}

	render.JSON(w, r, map[string]any{
		"success": true,
		"users":   users,
	})
}

// respondMessage writes the API's success/message envelope with a status.
func (s *Server) respondMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]any{
		"success": false,
		"message": message,
	})
}

// respondInternalError logs the technical error and returns a sanitized
// message to the client.
func (s *Server) respondInternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logging.FromContext(r.Context()).Error("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"error", err,
	)
	s.respondMessage(w, r, http.StatusInternalServerError, message)
}
