package adapthttp

import (
	"net/http"
	"time"

	"nutrigo/internal/domain"
)

func (s *Server) handleCalories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	u, ok := s.currentUser(w)
	if !ok {
		return
	}

	var body struct {
		Calories float64 `json:"calories" validate:"required,gt=0"`
	}
	if err := s.parseValid(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	total, err := s.calories.AddCalories(r.Context(), u.ID, body.Calories, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"totalCalories": total, "calorieTarget": s.series.DailyCalorieTarget(u)})
}

func (s *Server) handleCaloriesToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	u, ok := s.currentUser(w)
	if !ok {
		return
	}

	total, err := s.calories.TodayTotal(r.Context(), u.ID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"totalCalories": total, "calorieTarget": s.series.DailyCalorieTarget(u)})
}

func (s *Server) handleWater(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	u, ok := s.currentUser(w)
	if !ok {
		return
	}

	var body struct {
		Amount float64 `json:"amount" validate:"gte=0"`
		Note   string  `json:"note"`
	}
	if err := s.parseValid(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := s.water.AddIntake(r.Context(), u.ID, body.Amount, body.Note, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleWaterToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	u, ok := s.currentUser(w)
	if !ok {
		return
	}

	total, err := s.water.TodayTotal(r.Context(), u.ID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"totalMl": total})
}

func (s *Server) handleWeight(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var body struct {
			Date   string `json:"date" validate:"required"`
			Weight string `json:"weight" validate:"required"`
			Note   string `json:"note"`
		}
		if err := s.parseValid(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.weights.MarkWeight(r.Context(), u.ID, body.Date, body.Weight, body.Note); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case http.MethodDelete:
		date := r.URL.Query().Get("date")
		if _, err := time.Parse(domain.DayFormat, date); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.weights.Unmark(r.Context(), u.ID, date); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
