package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/fleetgate/fleetgate-core/internal/core/domain"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driving"
)

// oauthStateCookie carries the signed login attempt between the redirect
// to the provider and the callback.
const oauthStateCookie = "oauth_state"

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`

	// Detail carries the provider's raw response body when a call
	// upstream failed. Empty otherwise.
	Detail string `json:"detail,omitempty"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	if s.lock != nil {
		if err := s.lock.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "lock backend unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Login flow endpoints

// handleLogin starts a login: the attempt travels in a signed cookie and
// the browser is sent to the provider's authorize endpoint.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	redirect, err := s.authFlow.BeginLogin(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "login initiation failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    redirect.AttemptToken,
		Path:     "/",
		MaxAge:   int(domain.AttemptTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, redirect.AuthorizationURL, http.StatusTemporaryRedirect)
}

// handleCallback completes a login. The attempt cookie is cleared before
// any outcome is written, so a token is never accepted twice.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	req := driving.CallbackRequest{
		Code:          r.URL.Query().Get("code"),
		State:         r.URL.Query().Get("state"),
		ProviderError: r.URL.Query().Get("error"),
	}

	if cookie, err := r.Cookie(oauthStateCookie); err == nil {
		req.AttemptToken = cookie.Value
		req.AttemptPresent = true
	}

	clearCookie(w, oauthStateCookie)

	result, err := s.authFlow.CompleteLogin(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	target := s.successURL + "?token=" + url.QueryEscape(result.SessionToken)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// User endpoints

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.users.Profile(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Vehicle endpoints

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	payload, err := s.vehicles.ListVehicles(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeRawJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	vehicleID := r.PathValue("id")
	command := r.PathValue("command")

	payload, err := s.vehicles.SendCommand(r.Context(), userID, vehicleID, command)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeRawJSON(w, http.StatusOK, payload)
}

// Helpers

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// writeDomainError maps a domain error onto a status code and error code.
// Upstream failures carry the provider's body in the detail field, and
// command and vehicle-list failures pass the provider's status through.
func writeDomainError(w http.ResponseWriter, err error) {
	var detail string
	upstreamStatus := http.StatusBadGateway
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		detail = upstream.Body
		if upstream.StatusCode != 0 {
			upstreamStatus = upstream.StatusCode
		}
	}

	switch {
	case errors.Is(err, domain.ErrOAuthDenied):
		writeErrorDetail(w, http.StatusBadRequest, "oauth_denied", detail)
	case errors.Is(err, domain.ErrMissingAttempt):
		writeErrorDetail(w, http.StatusBadRequest, "missing_attempt", detail)
	case errors.Is(err, domain.ErrInvalidAttempt):
		writeErrorDetail(w, http.StatusBadRequest, "invalid_attempt", detail)
	case errors.Is(err, domain.ErrStateMismatch):
		writeErrorDetail(w, http.StatusBadRequest, "state_mismatch", detail)
	case errors.Is(err, domain.ErrTokenExchangeFailed):
		writeErrorDetail(w, http.StatusBadRequest, "token_exchange_failed", detail)
	case errors.Is(err, domain.ErrSubjectUnresolved):
		writeErrorDetail(w, http.StatusBadRequest, "subject_unresolved", detail)
	case errors.Is(err, domain.ErrBadRequest):
		writeErrorDetail(w, http.StatusBadRequest, "bad_request", detail)
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorDetail(w, http.StatusUnauthorized, "unauthorized", detail)
	case errors.Is(err, domain.ErrNoToken):
		// No delegated token on file: the client must run /login again.
		writeErrorDetail(w, http.StatusUnauthorized, "no_token", detail)
	case errors.Is(err, domain.ErrNotFound):
		writeErrorDetail(w, http.StatusNotFound, "not_found", detail)
	case errors.Is(err, domain.ErrRefreshFailed):
		writeErrorDetail(w, http.StatusBadGateway, "refresh_failed", detail)
	case errors.Is(err, domain.ErrCommandFailed):
		writeErrorDetail(w, upstreamStatus, "command_failed", detail)
	case errors.Is(err, domain.ErrVehicleListFailed):
		writeErrorDetail(w, upstreamStatus, "vehicle_list_failed", detail)
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeRawJSON(w http.ResponseWriter, status int, data json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeErrorDetail(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Error: code, Detail: detail})
}
