// internal/nutrition/analyzer.go
package nutrition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nutrilens/internal/gateway"
	"nutrilens/internal/models"
)

var ErrEmptyImage = errors.New("image data is required")

const msgNoFoodInText = "Could not find any food in that description. Please describe what you ate."

// Analyzer turns user input into prompts and sends them through the gateway.
type Analyzer struct {
	gateway *gateway.Gateway
	log     *zap.SugaredLogger
}

func NewAnalyzer(g *gateway.Gateway, log *zap.SugaredLogger) *Analyzer {
	return &Analyzer{gateway: g, log: log}
}

// AnalyzeFood estimates nutrition for a food photo.
func (a *Analyzer) AnalyzeFood(ctx context.Context, image []byte, mimeType, note string) (*models.FoodAnalysis, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if err := models.ValidateImageType(mimeType); err != nil {
		return nil, err
	}

	req := gateway.Request{
		Prompt: foodImagePrompt(note),
		Media:  &gateway.InlineMedia{Data: image, MIMEType: strings.ToLower(mimeType)},
	}
	result, err := gateway.InvokeInto[models.FoodAnalysis](ctx, a.gateway, req, models.FoodAnalysisSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze food image: %w", err)
	}

	a.log.Infow("food image analyzed", "food", result.FoodName, "calories", result.EstimatedCalories, "health_score", result.HealthScore)
	return result, nil
}

// DescribeMeal estimates nutrition from a free-text meal description.
func (a *Analyzer) DescribeMeal(ctx context.Context, description string) (*models.FoodAnalysis, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errors.New("meal description is required")
	}

	req := gateway.Request{
		Prompt:              mealDescriptionPrompt(description),
		UnrecognizedMessage: msgNoFoodInText,
	}
	result, err := gateway.InvokeInto[models.FoodAnalysis](ctx, a.gateway, req, models.FoodAnalysisSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze meal description: %w", err)
	}

	a.log.Infow("meal description analyzed", "food", result.FoodName, "calories", result.EstimatedCalories)
	return result, nil
}

func (a *Analyzer) PlanExercise(ctx context.Context, req *models.ExerciseRequest) (*models.ExercisePlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, err := gateway.InvokeInto[models.ExercisePlan](ctx, a.gateway, gateway.Request{Prompt: exercisePlanPrompt(req)}, models.ExercisePlanSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to generate exercise plan: %w", err)
	}

	a.log.Infow("exercise plan generated", "plan", plan.PlanName, "exercises", len(plan.Exercises))
	return plan, nil
}

func (a *Analyzer) Recommend(ctx context.Context, req *models.RecommendationRequest) (*models.Recommendation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rec, err := gateway.InvokeInto[models.Recommendation](ctx, a.gateway, gateway.Request{Prompt: recommendationPrompt(req)}, models.RecommendationSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to generate recommendations: %w", err)
	}

	a.log.Infow("recommendations generated", "calorie_target", rec.DailyCalorieTarget)
	return rec, nil
}
