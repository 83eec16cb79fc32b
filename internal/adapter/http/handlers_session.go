package adapthttp

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"nutrigo/internal/adapter/localauth"
	"nutrigo/internal/domain"
)

// sessionResponse is the snapshot the UI renders from.
type sessionResponse struct {
	Loading    bool         `json:"loading"`
	SignedIn   bool         `json:"signedIn"`
	Incomplete bool         `json:"incomplete,omitempty"`
	User       *domain.User `json:"user,omitempty"`
}

// handleSession reports the current session snapshot. Serving it also marks
// the app as active, which lets the rollup scheduler re-validate the day
// after the process was idle across midnight.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u, ok, loading := s.sessions.CurrentUser()
	resp := sessionResponse{Loading: loading, SignedIn: ok}
	if ok {
		resp.User = &u
		resp.Incomplete = s.sessions.ProfileIncomplete()
		if err := s.rollup.Activate(r.Context(), u.ID, time.Now()); err != nil {
			s.log.Error().Err(err).Msg("daily rollup failed")
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.local == nil {
		http.Error(w, "local login disabled", http.StatusNotFound)
		return
	}

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := s.parseValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.local.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, localauth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.local == nil {
		http.Error(w, "local login disabled", http.StatusNotFound)
		return
	}

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}
	if err := s.parseValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ident, err := s.local.Register(r.Context(), req.Email, req.Password)
	if errors.Is(err, localauth.ErrUserExists) {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": ident.ID, "email": ident.Email})
}

// handleLogout is always locally effective: the session manager clears the
// local snapshot even when the auth source cannot be reached.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.sessions.Logout(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.sso == nil {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, s.sso.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.sso == nil {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}

	state, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != state.Value {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", MaxAge: -1, Path: "/"})

	if err := s.sso.Exchange(r.Context(), r.URL.Query().Get("code")); err != nil {
		http.Error(w, "failed to exchange token", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
