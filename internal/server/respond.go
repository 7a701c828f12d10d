package server

import (
	"fmt"
	"net/http"

	"rank-tracker/internal/apperror"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// fail maps err onto a status and a public message. messages overrides the
// default text per status.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, messages map[int]string) {
	status := apperror.StatusCode(err)
	log := zerolog.Ctx(r.Context())

	if status >= http.StatusInternalServerError && !apperror.IsUpstream(err) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request rejected")
	}

	msg, ok := messages[status]
	if !ok {
		msg = defaultMessage(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func defaultMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Invalid request"
	case http.StatusUnauthorized:
		return "Not authenticated"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusConflict:
		return "Already exists"
	case http.StatusServiceUnavailable:
		return "Stats provider unavailable"
	case http.StatusGatewayTimeout:
		return "Stats provider timed out"
	default:
		return "Internal server error"
	}
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode body: %v: %w", err, apperror.ErrBadRequest)
	}
	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("validate body: %v: %w", err, apperror.ErrBadRequest)
	}
	return nil
}

// playerParam returns the validated stats-provider id from the URL.
func (s *Server) playerParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "playerID")
	if err := s.validate.Var(id, "required,numeric,max=20"); err != nil {
		return "", fmt.Errorf("player id %q: %w", id, apperror.ErrBadRequest)
	}
	return id, nil
}
