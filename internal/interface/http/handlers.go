package http

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/focushub/pomodoro-hub/internal/application/command"
	"github.com/focushub/pomodoro-hub/internal/application/query"
	"github.com/focushub/pomodoro-hub/internal/i18n"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth returns overall health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{Healthy: true, Ready: true}
	if s.deps.HealthChecker != nil {
		status = s.deps.HealthChecker.Check(r.Context())
	}

	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":  statusWord(status.Healthy),
		"ready":   status.Ready,
		"message": status.Message,
		"uptime":  s.Uptime().String(),
	})
}

// handleReady returns readiness status (can the server accept traffic).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ready := true
	if s.deps.HealthChecker != nil {
		ready = s.deps.HealthChecker.Check(r.Context()).Ready
	}

	if !ready {
		writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "Server is not ready")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive returns liveness status (is the process alive).
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleRoot returns API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "Pomodoro Focus Hub API",
		"version": "v1",
		"endpoints": []string{
			"POST /api/v1/users",
			"POST /api/v1/auth/login",
			"POST /api/v1/users/{id}/completions",
			"GET /api/v1/users/{id}/stats",
			"GET /api/v1/users/{id}/progress",
			"GET /api/v1/users/{id}/charts",
			"GET /api/v1/leaderboard",
			"GET /health",
		},
	})
}

func statusWord(healthy bool) string {
	if healthy {
		return "healthy"
	}
	return "unhealthy"
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Language string `json:"language,omitempty"`
}

// handleRegister creates a new user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.RegisterUserHandler.Handle(r.Context(), command.RegisterUserCommand{
		Username: req.Username,
		Password: req.Password,
		Language: req.Language,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin verifies credentials and issues a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.LoginUserHandler.Handle(r.Context(), command.LoginUserCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type recordCompletionRequest struct {
	FocusDurationSeconds int       `json:"focus_duration_seconds"`
	OccurredAt           time.Time `json:"occurred_at,omitempty"`
}

// handleRecordCompletion records a finished focus session and returns
// the resulting deltas: XP gained, level, streak, new achievements.
func (s *Server) handleRecordCompletion(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req recordCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.RecordCompletionHandler.Handle(r.Context(), command.RecordCompletionCommand{
		UserID:               userID,
		FocusDurationSeconds: req.FocusDurationSeconds,
		OccurredAt:           req.OccurredAt,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	tag := s.requestLanguage(r)
	for i := range result.NewAchievements {
		result.NewAchievements[i].Name = i18n.T(tag, result.NewAchievements[i].Name)
		result.NewAchievements[i].Description = i18n.T(tag, result.NewAchievements[i].Description)
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetStats returns the user's aggregate statistics.
// Achievement names and descriptions are localized per Accept-Language.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	view, err := s.deps.GetStatsHandler.Handle(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	localizeStats(view, s.requestLanguage(r))
	writeJSON(w, http.StatusOK, view)
}

// handleGetXPProgress returns the user's progress towards the next level.
func (s *Server) handleGetXPProgress(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	view, err := s.deps.GetXPProgressHandler.Handle(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// handleGetCharts returns histogram data for the dashboard charts.
// The period query parameter selects weekly, monthly or both (default).
func (s *Server) handleGetCharts(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	period := query.Period(r.URL.Query().Get("period"))
	switch period {
	case "", query.PeriodWeekly, query.PeriodMonthly, query.PeriodBoth:
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid_period", "Period must be weekly, monthly or both")
		return
	}

	data, err := s.deps.GetChartDataHandler.Handle(r.Context(), userID, period)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, data)
}

// handleGetLeaderboard returns the top users ranked by total XP.
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := getQueryParamInt(r, "limit", 0)

	rows, err := s.deps.GetLeaderboardHandler.Handle(r.Context(), limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": rows,
		"count":   len(rows),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// LOCALIZATION HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// requestLanguage resolves the response language. An explicit lang query
// parameter wins over the Accept-Language header.
func (s *Server) requestLanguage(r *http.Request) language.Tag {
	return i18n.Resolve(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

// localizeStats translates achievement strings in place.
func localizeStats(view *query.StatsView, tag language.Tag) {
	if tag == i18n.DefaultTag() {
		return
	}
	for i := range view.Achievements {
		view.Achievements[i].Name = i18n.T(tag, view.Achievements[i].Name)
		view.Achievements[i].Description = i18n.T(tag, view.Achievements[i].Description)
	}
	for i := range view.AvailableAchievements {
		view.AvailableAchievements[i].Name = i18n.T(tag, view.AvailableAchievements[i].Name)
		view.AvailableAchievements[i].Description = i18n.T(tag, view.AvailableAchievements[i].Description)
	}
}
