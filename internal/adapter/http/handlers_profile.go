package adapthttp

import (
	"errors"
	"net/http"

	"nutrigo/internal/app"
)

// handleProfile applies single-field profile edits. The update is optimistic:
// the local snapshot changes immediately and the remote merge write follows
// in the background, so a 200 here means "locally applied".
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		u, ok := s.currentUser(w)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, u)
	case http.MethodPatch:
		var req struct {
			Field string `json:"field" validate:"required,oneof=name age height weight gender goal activityLevel calorieTarget image"`
			Value any    `json:"value" validate:"required"`
		}
		if err := s.parseValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		err := s.sessions.UpdateField(r.Context(), req.Field, req.Value)
		if errors.Is(err, app.ErrNoUser) {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		u, _, _ := s.sessions.CurrentUser()
		writeJSON(w, http.StatusOK, u)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
