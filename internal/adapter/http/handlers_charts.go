package adapthttp

import (
	"context"
	"net/http"

	"nutrigo/internal/domain"
)

func (s *Server) handleChartsCalories(w http.ResponseWriter, r *http.Request) {
	s.serveSeries(w, r, s.series.CaloriesSeries)
}

func (s *Server) handleChartsWater(w http.ResponseWriter, r *http.Request) {
	s.serveSeries(w, r, s.series.WaterSeries)
}

func (s *Server) handleChartsWeight(w http.ResponseWriter, r *http.Request) {
	s.serveSeries(w, r, s.series.WeightSeries)
}

func (s *Server) serveSeries(w http.ResponseWriter, r *http.Request, load func(context.Context, string) ([]domain.SeriesPoint, error)) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	u, ok := s.currentUser(w)
	if !ok {
		return
	}

	points, err := load(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": points})
}
