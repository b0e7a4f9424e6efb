package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pagoa/brewops/internal/auth"
	"github.com/pagoa/brewops/internal/domain/production"
	"github.com/pagoa/brewops/internal/domain/sales"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.deps.Log.Error("encode response", "err", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
	// PartiallyApplied is set on confirmation failures where stock or
	// audit writes landed before the error; the operator needs to know
	// reconciliation may be required.
	PartiallyApplied bool `json:"partially_applied,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, production.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, production.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, production.ErrPrecondition):
		return http.StatusConflict
	case errors.Is(err, production.ErrStockConflict):
		return http.StatusConflict
	case errors.Is(err, sales.ErrInsufficient):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway // backing store failure
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusBadGateway {
		s.deps.Log.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func decode(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
