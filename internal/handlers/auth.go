package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Satyam216/todo-collab/internal/api/middleware"
	"github.com/Satyam216/todo-collab/internal/auth"
	"github.com/Satyam216/todo-collab/internal/metrics"
)

// SignInRequest carries the identity asserted by the sign-in flow.
type SignInRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SignIn establishes a session and returns the bearer token.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" {
		h.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.Name, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrSignInFailed) {
			h.Error(w, http.StatusUnauthorized, "sign-in failed")
			return
		}
		h.Error(w, http.StatusInternalServerError, "sign-in failed")
		return
	}

	metrics.SignIns.Inc()
	h.JSON(w, http.StatusOK, session)
}

// SignOut terminates the current session.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.auth.SignOut(r.Context(), *ident); err != nil {
		h.logger.Error().Err(err).Msg("sign-out failed")
		h.Error(w, http.StatusInternalServerError, "sign-out failed")
		return
	}

	h.JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// Me returns the profile behind the presented session.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), ident.UserID)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if user == nil {
		// Session outlived the user record.
		h.Error(w, http.StatusUnauthorized, "unknown user")
		return
	}

	h.JSON(w, http.StatusOK, user)
}
