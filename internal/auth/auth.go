package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"expensetracker/internal/logger"
	"expensetracker/internal/models"
)

const (
	SessionCookieName = "expenses_session"
	DefaultTTL        = 30 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid session token")

type contextKey struct{}

// Claims is the session token payload
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Auth struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// New returns an Auth signing HS256 session tokens with secret. Secure marks
// the session cookie https-only.
func New(secret string, ttl time.Duration, secure bool) *Auth {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Auth{secret: []byte(secret), ttl: ttl, secure: secure}
}

// IssueToken signs a session token for u
func (a *Auth) IssueToken(ctx context.Context, u models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   u.ID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		logger.FromContext(ctx).Error("auth_token_sign_error", "error", err.Error())
		return "", fmt.Errorf("sign token: %w", err)
	}
	logger.FromContext(ctx).Info("auth_session_created", "expires_at", claims.ExpiresAt.Format(time.RFC3339))
	return token, nil
}

// ParseToken validates a session token and returns its claims
func (a *Auth) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SetSessionCookie sets the session cookie on the response
func (a *Auth) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie
func (a *Auth) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
	})
}

// TokenFromRequest reads the session cookie, falling back to a Bearer
// Authorization header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// Middleware rejects requests without a valid session with a JSON 401 and
// puts the user ID into the request context.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		l := logger.FromContext(ctx)

		token := TokenFromRequest(r)
		if token == "" {
			l.Debug("auth_no_session", "path", r.URL.Path)
			unauthorized(w)
			return
		}

		claims, err := a.ParseToken(token)
		if err != nil {
			l.Debug("auth_session_invalid", "path", r.URL.Path)
			unauthorized(w)
			return
		}

		ctx = WithUserID(ctx, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithUserID stores the authenticated user on ctx and its logger
func WithUserID(ctx context.Context, userID int64) context.Context {
	ctx = logger.WithUser(ctx, userID)
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserIDFromContext returns the user set by Middleware
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextKey{}).(int64)
	return id, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
