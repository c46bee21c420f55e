// internal/models/requests.go
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

var (
	ExerciseGoals       = []string{"lose_weight", "build_muscle", "maintain", "improve_endurance", "flexibility"}
	FitnessLevels       = []string{"beginner", "intermediate", "advanced"}
	NutritionGoals      = []string{"lose_weight", "maintain", "gain_weight", "build_muscle"}
	ActivityLevels      = []string{"sedentary", "light", "moderate", "active", "very_active"}
	Sexes               = []string{"male", "female", "other"}
	SupportedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/heic", "image/heif"}
)

type ExerciseRequest struct {
	Goal           string   `json:"goal" description:"One of lose_weight, build_muscle, maintain, improve_endurance, flexibility"`
	FitnessLevel   string   `json:"fitness_level" description:"One of beginner, intermediate, advanced"`
	DaysPerWeek    int      `json:"days_per_week" description:"Training days per week (1-7)"`
	SessionMinutes int      `json:"session_minutes" description:"Length of one session in minutes (10-180)"`
	Equipment      []string `json:"equipment,omitempty" description:"Available equipment"`
	Limitations    string   `json:"limitations,omitempty" description:"Injuries or limitations to respect"`
}

func (r *ExerciseRequest) Validate() error {
	if err := oneOf("goal", r.Goal, ExerciseGoals); err != nil {
		return err
	}
	if err := oneOf("fitness_level", r.FitnessLevel, FitnessLevels); err != nil {
		return err
	}
	if err := between("days_per_week", r.DaysPerWeek, 1, 7); err != nil {
		return err
	}
	return between("session_minutes", r.SessionMinutes, 10, 180)
}

type RecommendationRequest struct {
	Age                int      `json:"age" description:"Age in years (13-120)"`
	Sex                string   `json:"sex" description:"One of male, female, other"`
	WeightKg           float64  `json:"weight_kg" description:"Body weight in kilograms (30-300)"`
	HeightCm           float64  `json:"height_cm" description:"Height in centimetres (100-250)"`
	ActivityLevel      string   `json:"activity_level" description:"One of sedentary, light, moderate, active, very_active"`
	Goal               string   `json:"goal" description:"One of lose_weight, maintain, gain_weight, build_muscle"`
	DietaryPreferences []string `json:"dietary_preferences,omitempty" description:"Diet types or foods to avoid"`
	RecentMeals        []string `json:"recent_meals,omitempty" description:"Names of recently eaten meals"`
}

func (r *RecommendationRequest) Validate() error {
	if err := between("age", r.Age, 13, 120); err != nil {
		return err
	}
	if err := oneOf("sex", r.Sex, Sexes); err != nil {
		return err
	}
	if r.WeightKg < 30 || r.WeightKg > 300 {
		return fmt.Errorf("weight_kg must be between 30 and 300, got %g", r.WeightKg)
	}
	if r.HeightCm < 100 || r.HeightCm > 250 {
		return fmt.Errorf("height_cm must be between 100 and 250, got %g", r.HeightCm)
	}
	if err := oneOf("activity_level", r.ActivityLevel, ActivityLevels); err != nil {
		return err
	}
	return oneOf("goal", r.Goal, NutritionGoals)
}

// ValidateImageType checks a declared image MIME type.
func ValidateImageType(mimeType string) error {
	if mimeType == "" {
		return errors.New("mime_type is required")
	}
	return oneOf("mime_type", strings.ToLower(mimeType), SupportedImageTypes)
}

func oneOf(field, value string, allowed []string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	if !lo.Contains(allowed, value) {
		return fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed, ", "), value)
	}
	return nil
}

func between(field string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d, got %d", field, min, max, value)
	}
	return nil
}
