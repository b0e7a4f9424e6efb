package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pagoa/brewops/internal/auth"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	if req.Email == "" || len(req.Password) < 6 {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "email and a password of at least 6 characters are required"})
		return
	}

	existing, err := s.deps.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if existing != nil {
		s.writeJSON(w, http.StatusConflict, errorBody{Error: "email already registered"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	u, err := s.deps.Users.Create(r.Context(), req.Email, req.FullName, hash)
	if err != nil {
		s.writeError(w, err)
		return
	}
	token, err := s.deps.Tokens.Issue(u.ID, u.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, authResponse{Token: token, UserID: u.ID, Email: u.Email, FullName: u.FullName})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	u, err := s.deps.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		s.writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
		return
	}
	token, err := s.deps.Tokens.Issue(u.ID, u.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, authResponse{Token: token, UserID: u.ID, Email: u.Email, FullName: u.FullName})
}

// requireAuth validates the bearer token and stashes the user id in the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			s.writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
			return
		}
		claims, err := s.deps.Tokens.Verify(tokenStr)
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(r *http.Request) (int64, error) {
	id, ok := r.Context().Value(userIDKey).(int64)
	if !ok {
		return 0, fmt.Errorf("no authenticated user in context")
	}
	return id, nil
}
