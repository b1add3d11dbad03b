// Package api exposes HTTP handlers for the coach insight service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/OHANAGROUP/nexfit/internal/auth"
	"github.com/OHANAGROUP/nexfit/internal/coach"
	"github.com/OHANAGROUP/nexfit/internal/domain"
	"github.com/OHANAGROUP/nexfit/internal/observability"
	"github.com/OHANAGROUP/nexfit/internal/snapshot"
)

// Handler coordinates HTTP requests with the coach engine and the
// notification service.
type Handler struct {
	builder  *snapshot.Builder
	selector *coach.Selector
	resolver *coach.Resolver
	service  *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(builder *snapshot.Builder, selector *coach.Selector, resolver *coach.Resolver, service *domain.Service) *Handler {
	return &Handler{builder: builder, selector: selector, resolver: resolver, service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/coach/phrase", h.phrase)
	mux.HandleFunc("/v1/coach/insights", h.insights)
	mux.HandleFunc("/v1/coach/questions", h.questions)
	mux.HandleFunc("/v1/notifications", h.notifications)
	mux.HandleFunc("/v1/notifications/", h.notificationByID)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) phrase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeInsightsRead)
	if !ok {
		return
	}

	snap, fallback := h.builder.Build(r.Context(), claims.TenantID)
	observability.RecordSnapshot(fallback)

	writeJSON(w, http.StatusOK, PhraseResponse{
		Phrase:   h.selector.SelectPhrase(snap),
		Fallback: fallback,
	})
}

func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeInsightsRead)
	if !ok {
		return
	}

	var req InsightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return
	}

	snap, fallback := h.builder.Build(r.Context(), claims.TenantID)
	observability.RecordSnapshot(fallback)

	writeJSON(w, http.StatusOK, InsightResponse{
		Answer:   h.resolver.ResolveInsight(req.Query, snap),
		Fallback: fallback,
	})
}

func (h *Handler) questions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireScope(w, r, auth.ScopeInsightsRead); !ok {
		return
	}
	writeJSON(w, http.StatusOK, QuestionsResponse{Questions: coach.QuickQuestions})
}

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeAlertsRead)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	alerts, err := h.service.ListNotifications(r.Context(), claims.TenantID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]AlertView, 0, len(alerts))
	for _, alert := range alerts {
		items = append(items, toAlertView(alert))
	}
	writeJSON(w, http.StatusOK, NotificationsResponse{Items: items})
}

func (h *Handler) notificationByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/notifications/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing notification id")
		return
	}
	if r.Method != http.MethodPost || action != "read" {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeAlertsWrite)
	if !ok {
		return
	}

	if err := h.service.MarkNotificationRead(r.Context(), claims.TenantID, id); err != nil {
		if errors.Is(err, domain.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "notification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requireScope(w http.ResponseWriter, r *http.Request, scope string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !claims.HasScope(scope) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
		return nil, false
	}
	return claims, true
}

// PhraseResponse carries the ambient phrase for the dashboard companion.
type PhraseResponse struct {
	Phrase   string `json:"phrase"`
	Fallback bool   `json:"fallback"`
}

// InsightRequest is the payload for POST /v1/coach/insights.
type InsightRequest struct {
	Query string `json:"query"`
}

// InsightResponse carries the rendered answer.
type InsightResponse struct {
	Answer   string `json:"answer"`
	Fallback bool   `json:"fallback"`
}

// QuestionsResponse lists the suggested chat-panel questions.
type QuestionsResponse struct {
	Questions []string `json:"questions"`
}

// AlertView exposes a stored alert to the notification center.
type AlertView struct {
	AlertID    string         `json:"alert_id"`
	SubjectID  string         `json:"subject_id"`
	Kind       string         `json:"kind"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Severity   string         `json:"severity"`
	IsRead     bool           `json:"is_read"`
	DetectedOn string         `json:"detected_on"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NotificationsResponse packages list results.
type NotificationsResponse struct {
	Items []AlertView `json:"items"`
}

func toAlertView(alert domain.Alert) AlertView {
	return AlertView{
		AlertID:    alert.ID,
		SubjectID:  alert.SubjectID,
		Kind:       string(alert.Kind),
		Title:      alert.Title,
		Message:    alert.Message,
		Severity:   string(alert.Severity),
		IsRead:     alert.IsRead,
		DetectedOn: alert.DetectedOn.Format(domain.DayFormat),
		Metadata:   alert.Metadata,
		CreatedAt:  alert.CreatedAt,
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
