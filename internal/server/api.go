// internal/server/api.go
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"nutrilens/internal/models"
)

type analyzeImageRequest struct {
	Image    string `json:"image"`
	MIMEType string `json:"mimeType"`
	Note     string `json:"note,omitempty"`
}

type describeMealRequest struct {
	Description string `json:"description"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(target); err != nil {
		return badRequestf("invalid JSON body: %v", err)
	}
	return nil
}

func (s *NutriLensServer) apiAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	var body analyzeImageRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err, "route", "analyze-image")
		return
	}

	data, mimeType, err := decodeImage(body.Image, body.MIMEType)
	if err != nil {
		s.writeError(w, err, "route", "analyze-image")
		return
	}

	result, err := s.analyzer.AnalyzeFood(r.Context(), data, mimeType, body.Note)
	if err != nil {
		s.writeError(w, err, "route", "analyze-image")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *NutriLensServer) apiDescribeMeal(w http.ResponseWriter, r *http.Request) {
	var body describeMealRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err, "route", "describe-meal")
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		s.writeError(w, badRequestf("description is required"), "route", "describe-meal")
		return
	}

	result, err := s.analyzer.DescribeMeal(r.Context(), body.Description)
	if err != nil {
		s.writeError(w, err, "route", "describe-meal")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *NutriLensServer) apiExercisePlan(w http.ResponseWriter, r *http.Request) {
	var body models.ExerciseRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err, "route", "exercise-plan")
		return
	}
	if err := body.Validate(); err != nil {
		s.writeError(w, badRequest(err), "route", "exercise-plan")
		return
	}

	plan, err := s.analyzer.PlanExercise(r.Context(), &body)
	if err != nil {
		s.writeError(w, err, "route", "exercise-plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *NutriLensServer) apiRecommendations(w http.ResponseWriter, r *http.Request) {
	var body models.RecommendationRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err, "route", "recommendations")
		return
	}
	if err := body.Validate(); err != nil {
		s.writeError(w, badRequest(err), "route", "recommendations")
		return
	}

	rec, err := s.analyzer.Recommend(r.Context(), &body)
	if err != nil {
		s.writeError(w, err, "route", "recommendations")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *NutriLensServer) apiBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := s.foodFacts.Lookup(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		s.writeError(w, err, "route", "barcode")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *NutriLensServer) apiListMeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, badRequestf("limit must be an integer, got %q", raw), "route", "meals")
			return
		}
		limit = n
	}

	query, err := mealQuery(q.Get("start_date"), q.Get("end_date"), limit)
	if err != nil {
		s.writeError(w, err, "route", "meals")
		return
	}

	meals, err := s.storage.GetMeals(query)
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to retrieve meals: %w", err), "route", "meals")
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

func (s *NutriLensServer) apiGetMeal(w http.ResponseWriter, r *http.Request) {
	meal, err := s.storage.GetMeal(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err, "route", "meal")
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

func (s *NutriLensServer) apiDeleteMeal(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteMeal(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err, "route", "meal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
