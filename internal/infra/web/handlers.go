package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/infra/logging"
	"nomadlybot/internal/infra/metrics"
	"nomadlybot/internal/infra/worker"
	"nomadlybot/internal/usecase"
)

type tokenRequest struct {
	APIKey string `json:"api_key"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleToken exchanges the admin API key for a short-lived JWT.
// The key may come from the X-API-Key header or the JSON body.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !s.auth.Enabled() {
		writeError(w, http.StatusForbidden, "admin API disabled")
		return
	}
	key := r.Header.Get("X-API-Key")
	if key == "" {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		key = req.APIKey
	}
	if !s.auth.CheckAPIKey(key) {
		metrics.IncAdminRequest("POST /api/v1/auth/token", "unauthorized")
		writeError(w, http.StatusUnauthorized, "invalid api key")
		return
	}
	tok, exp, err := s.auth.Mint()
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("token signing failed")
		writeError(w, http.StatusInternalServerError, "token signing failed")
		return
	}
	metrics.IncAdminRequest("POST /api/v1/auth/token", "authorized")
	writeJSON(w, http.StatusOK, tokenResponse{Token: tok, ExpiresAt: exp.UTC()})
}

// handleTriggerBroadcast queues a manual run and answers before it starts.
func (s *Server) handleTriggerBroadcast(w http.ResponseWriter, r *http.Request) {
	theme := model.Theme(strings.ToLower(chi.URLParam(r, "theme")))
	lang := model.Language(strings.ToLower(chi.URLParam(r, "lang")))
	if !theme.Valid() {
		writeError(w, http.StatusBadRequest, "unknown theme")
		return
	}
	if !s.deps.SupportsLanguage(lang) {
		writeError(w, http.StatusBadRequest, "unsupported language")
		return
	}

	log := logging.With(r.Context(), s.log)
	err := s.deps.Queue.Submit(func(ctx context.Context) error {
		run := s.deps.Broadcasts.Broadcast(ctx, theme, lang)
		if s.deps.OnRun != nil {
			s.deps.OnRun(run)
		}
		return nil
	})
	switch {
	case errors.Is(err, worker.ErrQueueFull):
		writeError(w, http.StatusServiceUnavailable, "broadcast queue full")
		return
	case err != nil:
		log.Error().Err(err).Msg("broadcast submit failed")
		writeError(w, http.StatusInternalServerError, "broadcast submit failed")
		return
	}
	log.Info().Str("theme", string(theme)).Str("lang", string(lang)).Msg("manual broadcast queued")
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"theme":  string(theme),
		"lang":   string(lang),
	})
}

type runResponse struct {
	ID          string    `json:"id"`
	Theme       string    `json:"theme"`
	Language    string    `json:"lang"`
	Variation   string    `json:"variation"`
	UsedAI      bool      `json:"used_ai"`
	Total       int       `json:"total"`
	Success     int       `json:"success"`
	Errors      int       `json:"errors"`
	Skipped     int       `json:"skipped"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
}

func toRunResponse(run *model.BroadcastRun) runResponse {
	return runResponse{
		ID:          run.ID,
		Theme:       string(run.Theme),
		Language:    string(run.Language),
		Variation:   run.Variation,
		UsedAI:      run.UsedAI,
		Total:       run.Total,
		Success:     run.Success,
		Errors:      run.Errors,
		Skipped:     run.Skipped,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		DurationMs:  run.Duration().Milliseconds(),
	}
}

func (s *Server) handleListBroadcasts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.deps.Broadcasts.RecentRuns(r.Context(), limit)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("list broadcast runs failed")
		writeError(w, http.StatusInternalServerError, "failed to list broadcast runs")
		return
	}
	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		if run != nil {
			out = append(out, toRunResponse(run))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type notifyRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleNotifyGroups(w http.ResponseWriter, r *http.Request) {
	if s.deps.Relay == nil {
		writeError(w, http.StatusServiceUnavailable, "group relay disabled")
		return
	}
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	res := s.deps.Relay.NotifyGroups(r.Context(), req.Message)
	metrics.ObserveGroupRelay(res.Delivered, res.Removed, res.Failed)
	writeJSON(w, http.StatusOK, res)
}

// eventRequest carries the fields of a platform activity announcement.
// Which fields are required depends on the event kind.
type eventRequest struct {
	Name     string  `json:"name"`
	Plan     string  `json:"plan"`
	Domain   string  `json:"domain"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Count    int     `json:"count"`
}

// handleGroupEvent relays a masked activity announcement, e.g. a purchase
// reported by another service, to every registered group.
func (s *Server) handleGroupEvent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Relay == nil {
		writeError(w, http.StatusServiceUnavailable, "group relay disabled")
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	var res usecase.RelayResult
	switch kind := chi.URLParam(r, "kind"); kind {
	case "new-user":
		res = s.deps.Relay.NotifyNewUser(ctx, req.Name)
	case "subscription":
		if req.Plan == "" {
			writeError(w, http.StatusBadRequest, "plan is required")
			return
		}
		res = s.deps.Relay.NotifySubscription(ctx, req.Name, req.Plan)
	case "domain":
		if req.Domain == "" {
			writeError(w, http.StatusBadRequest, "domain is required")
			return
		}
		res = s.deps.Relay.NotifyDomainPurchased(ctx, req.Name, req.Domain)
	case "wallet":
		if req.Amount <= 0 || req.Currency == "" {
			writeError(w, http.StatusBadRequest, "amount and currency are required")
			return
		}
		res = s.deps.Relay.NotifyWalletFunded(ctx, req.Name, req.Amount, req.Currency)
	case "short-link":
		res = s.deps.Relay.NotifyLinkShortened(ctx, req.Name)
	case "leads":
		if req.Count <= 0 {
			writeError(w, http.StatusBadRequest, "count is required")
			return
		}
		res = s.deps.Relay.NotifyLeadsPurchased(ctx, req.Name, req.Count)
	default:
		writeError(w, http.StatusNotFound, "unknown event kind")
		return
	}
	metrics.ObserveGroupRelay(res.Delivered, res.Removed, res.Failed)
	writeJSON(w, http.StatusOK, res)
}

type resetRequest struct {
	Count int `json:"count"`
}

func (s *Server) handleResetFreeLinks(w http.ResponseWriter, r *http.Request) {
	if s.deps.FreeLinks == nil {
		writeError(w, http.StatusServiceUnavailable, "free links disabled")
		return
	}
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.deps.FreeLinks.Reset(r.Context(), chatID, req.Count); err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.With(logging.WithChatID(r.Context(), chatID), s.log).Error().Err(err).Msg("free link reset failed")
		writeError(w, http.StatusInternalServerError, "free link reset failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chat_id": chatID, "remaining": req.Count})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
