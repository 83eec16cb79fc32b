// Package adapthttp implements the HTTP adapter that exposes the core to
// the UI layer.
package adapthttp

import (
	"errors"
	"net/http"

	"nutrigo/internal/adapter/localauth"
	"nutrigo/internal/adapter/oidc"
	"nutrigo/internal/app"
	"nutrigo/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Server is the driving HTTP adapter that routes UI requests to the
// application services.
type Server struct {
	sessions *app.SessionManager
	rollup   *app.RollupScheduler
	calories *app.CalorieService
	water    *app.WaterService
	weights  *app.WeightService
	series   *app.SeriesService

	// local and sso are optional; whichever auth source the install uses.
	local *localauth.Source
	sso   *oidc.AuthSource

	webDir   string
	validate *validator.Validate
	log      zerolog.Logger
}

// New creates a Server wired to the given application services.
func New(sessions *app.SessionManager, rollup *app.RollupScheduler, calories *app.CalorieService, water *app.WaterService, weights *app.WeightService, series *app.SeriesService, webDir string, log zerolog.Logger) *Server {
	return &Server{
		sessions: sessions,
		rollup:   rollup,
		calories: calories,
		water:    water,
		weights:  weights,
		series:   series,
		webDir:   webDir,
		validate: validator.New(),
		log:      log,
	}
}

// WithLocalAuth enables the offline login endpoints.
func (s *Server) WithLocalAuth(src *localauth.Source) *Server {
	s.local = src
	return s
}

// WithSSO enables the OIDC login endpoints.
func (s *Server) WithSSO(src *oidc.AuthSource) *Server {
	s.sso = src
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/session", s.handleSession)
	api.HandleFunc("/session/login", s.handleLogin)
	api.HandleFunc("/session/register", s.handleRegister)
	api.HandleFunc("/session/logout", s.handleLogout)
	api.HandleFunc("/session/sso/login", s.handleSSOLogin)
	api.HandleFunc("/session/sso/callback", s.handleSSOCallback)

	api.HandleFunc("/profile", s.handleProfile)

	api.HandleFunc("/calories", s.handleCalories)
	api.HandleFunc("/calories/today", s.handleCaloriesToday)
	api.HandleFunc("/water", s.handleWater)
	api.HandleFunc("/water/today", s.handleWaterToday)
	api.HandleFunc("/weight", s.handleWeight)

	api.HandleFunc("/charts/calories", s.handleChartsCalories)
	api.HandleFunc("/charts/water", s.handleChartsWater)
	api.HandleFunc("/charts/weight", s.handleChartsWeight)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return withNoCache(root)
}

var errNotSignedIn = errors.New("not signed in")

// currentUser returns the confirmed-or-provisional snapshot or writes a 401.
func (s *Server) currentUser(w http.ResponseWriter) (domain.User, bool) {
	u, ok, _ := s.sessions.CurrentUser()
	if !ok {
		writeError(w, http.StatusUnauthorized, errNotSignedIn)
		return domain.User{}, false
	}
	return u, true
}

// parseValid decodes the body into dst and runs struct validation.
func (s *Server) parseValid(r *http.Request, dst any) error {
	if err := parseJSON(r, dst); err != nil {
		return err
	}
	if err := s.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}
