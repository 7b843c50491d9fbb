// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/GalladeX3/exercise-tracker-test-project/internal/domain"
)

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	registry *domain.Registry
	exlog    *domain.ExerciseLog
}

// NewHandler builds a Handler.
func NewHandler(registry *domain.Registry, exlog *domain.ExerciseLog) *Handler {
	return &Handler{registry: registry, exlog: exlog}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/users", h.users)
	mux.HandleFunc("/api/users/", h.userSubresource)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.registerUser(w, r)
	case http.MethodGet:
		h.listUsers(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// userSubresource dispatches /api/users/{id}/exercises and
// /api/users/{id}/logs.
func (h *Handler) userSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.SplitN(rest, "/", 2)
	userID := parts[0]
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
		return
	}

	switch parts[1] {
	case "exercises":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.logExercise(w, r, userID)
	case "logs":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.getLogs(w, r, userID)
	default:
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	}
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	user, err := h.registry.Register(r.Context(), req.Username)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(*user))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.registry.ListUsers(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) logExercise(w http.ResponseWriter, r *http.Request, userID string) {
	var req LogExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	user, exercise, err := h.exlog.LogExercise(r.Context(), userID, req.Description, string(req.Duration), req.Date)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExerciseView(*user, *exercise))
}

func (h *Handler) getLogs(w http.ResponseWriter, r *http.Request, userID string) {
	query := r.URL.Query()
	user, entries, err := h.exlog.GetLogs(r.Context(), userID, query.Get("from"), query.Get("to"), query.Get("limit"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	entryViews := make([]LogEntryView, 0, len(entries))
	for _, entry := range entries {
		entryViews = append(entryViews, LogEntryView{
			Description: entry.Description,
			Duration:    entry.DurationMin,
			Date:        entry.PerformedAt.UTC().Format(domain.LogDateFormat),
		})
	}

	writeJSON(w, http.StatusOK, LogView{
		Username: user.Username,
		Count:    len(entryViews),
		ID:       user.ID,
		Log:      entryViews,
	})
}

// writeDomainError maps domain failures onto the HTTP taxonomy. Anything
// outside validation and not-found is an infrastructure failure: the detail
// is logged, never returned.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", domain.ErrUserNotFound.Error())
	default:
		log.Printf("api: internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

// RegisterUserRequest is the payload for POST /api/users.
type RegisterUserRequest struct {
	Username string `json:"username"`
}

// LogExerciseRequest is the payload for POST /api/users/{id}/exercises.
// Duration tolerates both a JSON number and a numeric string; validation of
// the value itself happens in the domain layer.
type LogExerciseRequest struct {
	Description string     `json:"description"`
	Duration    flexString `json:"duration"`
	Date        string     `json:"date"`
}

// flexString decodes a JSON string or number into its textual form. Any
// other shape decodes to empty and is left to domain validation to reject.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	*f = ""
	return nil
}

// UserView is the {id, username} projection returned for users.
type UserView struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// ExerciseView is the response for a logged exercise. The id field echoes
// the USER's id, not the exercise's; existing clients depend on that.
type ExerciseView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Date        string `json:"date"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// LogEntryView is one entry inside a LogView.
type LogEntryView struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogView is the response for a history query. Count reflects the entries
// actually returned, after filtering and limiting.
type LogView struct {
	Username string         `json:"username"`
	Count    int            `json:"count"`
	ID       string         `json:"id"`
	Log      []LogEntryView `json:"log"`
}

func toUserView(user domain.User) UserView {
	return UserView{Username: user.Username, ID: user.ID}
}

func toExerciseView(user domain.User, exercise domain.Exercise) ExerciseView {
	return ExerciseView{
		ID:          user.ID,
		Username:    user.Username,
		Date:        exercise.PerformedAt.UTC().Format(domain.LogDateFormat),
		Duration:    exercise.DurationMin,
		Description: exercise.Description,
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
