package devserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/vperfumes/tracker/pkg/auth"
	"github.com/vperfumes/tracker/pkg/bind"
	"github.com/vperfumes/tracker/pkg/logger"
	"github.com/vperfumes/tracker/pkg/rbac"
	"github.com/vperfumes/tracker/pkg/response"
)

type ctxKey int

const userKey ctxKey = iota

// currentUser returns the authenticated user stored by requireUser.
func currentUser(r *http.Request) *User {
	u, _ := r.Context().Value(userKey).(*User)
	return u
}

// authenticate resolves the session cookie to a live user account. Returns
// nil when the cookie is missing, invalid, expired or orphaned.
func (s *Server) authenticate(r *http.Request) *User {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := auth.ValidateToken(cookie.Value)
	if err != nil {
		return nil
	}
	user, err := s.store.UserByID(claims.UserID)
	if err != nil {
		logger.Error("devserver: load session user", "error", err)
		return nil
	}
	return user
}

// requireUser rejects unauthenticated requests with 401.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.authenticate(r)
		if user == nil {
			response.Unauthorized(w)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	}
}

// require rejects callers whose role lacks the action with 403.
func (s *Server) require(action rbac.Action, next http.HandlerFunc) http.HandlerFunc {
	return s.requireUser(func(w http.ResponseWriter, r *http.Request) {
		if !rbac.Can(currentUser(r).Role, action) {
			response.Forbidden(w)
			return
		}
		next(w, r)
	})
}

// setSessionCookie issues the signed session cookie.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// handleLogin verifies credentials, issues the session cookie and returns
// the identity under the "user" key.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	errs, err := bind.JSON(r, &creds)
	if err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(errs) > 0 {
		response.ValidationFailed(w, errs)
		return
	}

	user, err := s.store.UserByUsername(strings.TrimSpace(creds.Username))
	if err != nil {
		response.Internal(w)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, creds.Password) {
		response.Detail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		response.Internal(w)
		return
	}
	setSessionCookie(w, token)
	response.OK(w, map[string]interface{}{"user": identityOf(user)})
}

// handleLogout clears the session cookie. Always succeeds.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	response.Message(w, "Logged out")
}

// handleCurrentUser returns the identity behind the session cookie.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{"user": identityOf(currentUser(r))})
}

type registerInput struct {
	Username    string `json:"username"     validate:"required"`
	Password    string `json:"password"     validate:"required,min=6"`
	CompanyName string `json:"company_name" validate:"required"`
}

// handleRegister creates a company account. Admin only.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(errs) > 0 {
		response.ValidationFailed(w, errs)
		return
	}

	in.Username = strings.TrimSpace(in.Username)
	in.CompanyName = strings.TrimSpace(in.CompanyName)

	taken, err := s.store.UsernameTaken(in.Username)
	if err != nil {
		response.Internal(w)
		return
	}
	if taken {
		response.Detail(w, http.StatusBadRequest, "Username already registered")
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		response.Internal(w)
		return
	}

	user := &User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         "company",
		CompanyName:  in.CompanyName,
	}
	if err := s.store.CreateUser(user); err != nil {
		response.Internal(w)
		return
	}

	logger.Info("devserver: company registered", "username", user.Username, "company", user.CompanyName)
	response.Created(w, map[string]interface{}{"user": identityOf(user)})
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6"`
}

// handleChangePassword lets any authenticated user rotate their own password
// after proving the current one.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var in changePasswordInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Detail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(errs) > 0 {
		response.ValidationFailed(w, errs)
		return
	}

	user := currentUser(r)
	if !auth.CheckPassword(user.PasswordHash, in.CurrentPassword) {
		response.Detail(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		response.Internal(w)
		return
	}
	if err := s.store.UpdatePassword(user.ID, hash); err != nil {
		response.Internal(w)
		return
	}

	response.Message(w, "Password updated")
}

// Seed ensures the admin account exists, creating it with the given
// credentials on first run.
func (s *Server) Seed(username, password string) error {
	existing, err := s.store.UserByUsername(username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &User{Username: username, PasswordHash: hash, Role: "admin"}
	if err := s.store.CreateUser(admin); err != nil {
		return err
	}
	logger.Info("devserver: admin account created", "username", username)
	return nil
}
