package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/transport"

	"github.com/rs/zerolog"
)

const genericLoginFailure = "login failed"

type AuthHandler struct {
	sessions *services.SessionService
	paths    middleware.Paths
	logger   zerolog.Logger
}

func NewAuthHandler(sessions *services.SessionService, paths middleware.Paths, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		paths:    paths,
		logger:   logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := h.sessions.Login(r.Context(), req.Credentials, req.Role)
	if err != nil {
		h.respondLoginError(w, err)
		return
	}

	redirect := h.paths.LandingFor(user.Role)
	if safeReturnPath(req.From) {
		redirect = req.From
	}
	respondWithJSON(w, http.StatusOK, models.LoginResponse{User: user, Redirect: redirect})
}

// respondLoginError shows the server's message when there is one and a
// generic notice otherwise.
func (h *AuthHandler) respondLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrMissingCredentials),
		errors.Is(err, services.ErrMissingConsumerID):
		respondWithError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var terr *transport.Error
	if errors.As(err, &terr) {
		msg := terr.Message
		if msg == "" {
			msg = genericLoginFailure
		}
		code := http.StatusBadGateway
		if terr.Status >= 400 && terr.Status < 500 {
			code = http.StatusUnauthorized
		}
		respondWithError(w, code, "login_failed", msg)
		return
	}

	h.logger.Error().Err(err).Msg("Login transport unavailable")
	respondWithError(w, http.StatusBadGateway, "login_failed", genericLoginFailure)
}

func (h *AuthHandler) TokenLogin(w http.ResponseWriter, r *http.Request) {
	var req models.TokenLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	h.sessions.SetUserFromToken(r.Context(), req.Token, req.Role)
	respondWithJSON(w, http.StatusOK, h.sessions.Snapshot())
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.sessions.Snapshot())
}

// LoginPage describes the login form. An already signed-in user is sent
// to their landing path.
func (h *AuthHandler) LoginPage(view string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := h.sessions.Snapshot()
		if sess.IsAuthenticated {
			http.Redirect(w, r, h.paths.LandingFor(sess.User.Role), http.StatusSeeOther)
			return
		}
		from := r.URL.Query().Get("from")
		if !safeReturnPath(from) {
			from = ""
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"view":    view,
			"from":    from,
			"loading": sess.IsLoading,
		})
	}
}

// Home sends the visitor to their landing path or the login page.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Snapshot()
	if sess.IsAuthenticated {
		http.Redirect(w, r, h.paths.LandingFor(sess.User.Role), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.paths.Login, http.StatusSeeOther)
}
