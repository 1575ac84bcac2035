package handlers

import (
	"net/http"
	"strings"

	"expensetracker/internal/auth"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
	"expensetracker/internal/version"
)

type sessionResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username   string `json:"username"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		AutoDetect *bool  `json:"auto_detect"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "signup_decode_error", err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case !auth.ValidateEmail(req.Email):
		fail(w, r, "signup_invalid", badRequest("invalid email format"))
		return
	case !auth.ValidateUsername(req.Username):
		fail(w, r, "signup_invalid", badRequest("username must be between 3 and 30 characters"))
		return
	case !auth.ValidatePassword(req.Password):
		fail(w, r, "signup_invalid", badRequest("password must be at least 8 characters with a letter and a digit"))
		return
	}

	autoDetect := true
	if req.AutoDetect != nil {
		autoDetect = *req.AutoDetect
	}
	u, err := h.db.CreateUser(req.Username, req.Email, req.Password, autoDetect)
	if err != nil {
		fail(w, r, "signup_error", err)
		return
	}

	ctx := logger.WithUser(r.Context(), u.ID)
	token, err := h.auth.IssueToken(ctx, u)
	if err != nil {
		fail(w, r, "signup_token_error", err)
		return
	}
	h.auth.SetSessionCookie(w, token)
	logger.FromContext(ctx).Info("user_registered")
	writeJSON(w, http.StatusCreated, sessionResponse{User: u, Token: token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "login_decode_error", err)
		return
	}

	u, err := h.db.Authenticate(req.Email, req.Password)
	if err != nil {
		fail(w, r, "auth_login_failed", err)
		return
	}

	ctx := logger.WithUser(r.Context(), u.ID)
	token, err := h.auth.IssueToken(ctx, u)
	if err != nil {
		fail(w, r, "auth_token_error", err)
		return
	}
	h.auth.SetSessionCookie(w, token)
	logger.FromContext(ctx).Info("auth_login_success")
	writeJSON(w, http.StatusOK, sessionResponse{User: u, Token: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearSessionCookie(w)
	logger.FromContext(r.Context()).Info("auth_logout")
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r)
	if err != nil {
		fail(w, r, "user_get_error", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username   string `json:"username"`
		AutoDetect bool   `json:"auto_detect"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "settings_decode_error", err)
		return
	}
	if !auth.ValidateUsername(strings.TrimSpace(req.Username)) {
		fail(w, r, "settings_invalid", badRequest("username must be between 3 and 30 characters"))
		return
	}

	id := userID(r)
	if err := h.db.UpdateUserSettings(id, req.Username, req.AutoDetect); err != nil {
		fail(w, r, "settings_update_error", err)
		return
	}
	h.cache.ClearGroup(userCacheKey(id))

	u, err := h.db.GetUser(id)
	if err != nil {
		fail(w, r, "user_get_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("settings_updated", "auto_detect", u.AutoDetect)
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) APIVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"build_time": version.BuildTime,
		"git_commit": version.GitCommit,
	})
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Categories)
}
