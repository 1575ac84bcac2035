package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/auth"
	"expensetracker/internal/cache"
	"expensetracker/internal/database"
	"expensetracker/internal/detect"
	"expensetracker/internal/filestore"
	"expensetracker/internal/linktrack"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	db       *database.DB
	auth     *auth.Auth
	files    *filestore.Store
	cache    *cache.Cache
	importer *detect.Importer
	links    *linktrack.Tracker

	forecastDays int
	now          func() time.Time
}

func New(db *database.DB, a *auth.Auth, files *filestore.Store, c *cache.Cache, forecastDays int) *Handler {
	return &Handler{
		db:           db,
		auth:         a,
		files:        files,
		cache:        c,
		importer:     detect.NewImporter(),
		links:        linktrack.New(db),
		forecastDays: forecastDays,
		now:          time.Now,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps err onto a status code and writes it. Server errors are logged
// under event and their detail is kept out of the response.
func fail(w http.ResponseWriter, r *http.Request, event string, err error) {
	l := logger.FromContext(r.Context())
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		l.Error(event, "error", err.Error())
		writeError(w, status, "internal error")
		return
	}
	l.Warn(event, "status", status, "error", err.Error())
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	var invalid *invalidInput
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrInvalidAmount),
		errors.Is(err, database.ErrInvalidName),
		errors.Is(err, filestore.ErrBadPassphrase),
		errors.Is(err, linktrack.ErrInvalidLink):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, database.ErrEmailTaken),
		errors.Is(err, database.ErrChallengeActive):
		return http.StatusConflict
	case errors.Is(err, database.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// invalidInput is a client mistake caught before reaching the store
type invalidInput struct{ msg string }

func (e *invalidInput) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &invalidInput{msg: fmt.Sprintf(format, args...)}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid request body")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s", name)
	}
	return id, nil
}

// userID is only called behind auth.Middleware
func userID(r *http.Request) int64 {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

func userCacheKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}

// currentUser loads the signed-in user, caching the row until settings change
func (h *Handler) currentUser(r *http.Request) (models.User, error) {
	id := userID(r)
	key := userCacheKey(id)
	if v, ok := h.cache.Get(key); ok {
		if u, ok := v.(models.User); ok {
			return u, nil
		}
	}
	u, err := h.db.GetUser(id)
	if err != nil {
		return u, err
	}
	h.cache.Set(key, key, u)
	return u, nil
}

// record logs a stored transaction to the user's text log. The database row
// is the source of truth, so a failed append is only logged.
func (h *Handler) record(r *http.Request, t models.Transaction) {
	if err := h.files.AppendLog(t); err != nil {
		logger.FromContext(r.Context()).Warn("user_log_append_error", "error", err.Error())
	}
}
