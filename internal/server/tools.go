// internal/server/tools.go
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"nutrilens/internal/models"
)

type toolHandler func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type AnalyzeFoodParams struct {
	Image    string `json:"image" description:"Base64 encoded photo, optionally as a data: URL"`
	MIMEType string `json:"mime_type,omitempty" description:"Image MIME type (taken from the data: URL when omitted)"`
	Note     string `json:"note,omitempty" description:"Extra context about the meal"`
}

type DescribeMealParams struct {
	Description string `json:"description" description:"Description of the meal eaten"`
}

type LogMealParams struct {
	Description string `json:"description,omitempty" description:"Description of the meal eaten"`
	Image       string `json:"image,omitempty" description:"Base64 encoded photo of the meal"`
	MIMEType    string `json:"mime_type,omitempty" description:"Image MIME type"`
	Barcode     string `json:"barcode,omitempty" description:"EAN/UPC barcode of a packaged food"`
	Timestamp   string `json:"timestamp,omitempty" description:"ISO timestamp of when meal was eaten (defaults to now)"`
}

type GetMealsParams struct {
	StartDate string `json:"start_date,omitempty" description:"Start date for meal query (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date for meal query (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of meals to return"`
}

type DeleteMealParams struct {
	ID string `json:"id" description:"ID of the meal to delete"`
}

type LookupBarcodeParams struct {
	Barcode string `json:"barcode" description:"EAN/UPC barcode"`
}

const (
	defaultMealLimit = 20
	maxMealLimit     = 500
)

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return badRequestf("invalid parameters: %v", err)
	}

	return nil
}

func (s *NutriLensServer) handleAnalyzeFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AnalyzeFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	data, mimeType, err := decodeImage(params.Image, params.MIMEType)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.AnalyzeFood(ctx, data, mimeType, params.Note)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(result)
}

func (s *NutriLensServer) handleDescribeMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DescribeMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Description) == "" {
		return nil, badRequestf("meal description is required")
	}

	result, err := s.analyzer.DescribeMeal(ctx, params.Description)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(result)
}

// handleLogMeal analyzes a meal from a photo, a barcode or a description and stores it.
func (s *NutriLensServer) handleLogMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC()
	if params.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, params.Timestamp)
		if err != nil {
			return nil, badRequestf("invalid timestamp format: %v", err)
		}
		timestamp = ts
	}

	var (
		analysis *models.FoodAnalysis
		source   models.MealSource
		err      error
	)
	switch {
	case params.Image != "":
		data, mimeType, derr := decodeImage(params.Image, params.MIMEType)
		if derr != nil {
			return nil, derr
		}
		analysis, err = s.analyzer.AnalyzeFood(ctx, data, mimeType, params.Description)
		source = models.SourceImage
	case params.Barcode != "":
		product, lerr := s.foodFacts.Lookup(ctx, params.Barcode)
		if lerr != nil {
			return nil, lerr
		}
		a := product.Analysis()
		analysis, err = &a, nil
		source = models.SourceBarcode
	case strings.TrimSpace(params.Description) != "":
		analysis, err = s.analyzer.DescribeMeal(ctx, params.Description)
		source = models.SourceDescription
	default:
		return nil, badRequestf("one of description, image or barcode is required")
	}
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(params.Description)
	if description == "" {
		description = analysis.FoodName
	}

	now := time.Now().UTC()
	meal := &models.Meal{
		ID:          uuid.NewString(),
		Description: description,
		Timestamp:   timestamp,
		Analysis:    *analysis,
		CreatedAt:   now,
		UpdatedAt:   now,
		Source:      source,
	}

	if err := s.storage.SaveMeal(meal); err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}
	s.log.Infow("meal logged", "id", meal.ID, "food", analysis.FoodName, "source", source)

	return s.createJSONResponse(meal)
}

// handleGetMeals retrieves meals from storage
func (s *NutriLensServer) handleGetMeals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	query, err := mealQuery(params.StartDate, params.EndDate, params.Limit)
	if err != nil {
		return nil, err
	}

	meals, err := s.storage.GetMeals(query)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve meals: %w", err)
	}

	return s.createJSONResponse(meals)
}

func (s *NutriLensServer) handleDeleteMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DeleteMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, badRequestf("id is required")
	}

	if err := s.storage.DeleteMeal(params.ID); err != nil {
		return nil, fmt.Errorf("failed to delete meal %s: %w", params.ID, err)
	}

	return s.createJSONResponse(map[string]interface{}{"deleted": true, "id": params.ID})
}

func (s *NutriLensServer) handlePlanExercise(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params models.ExerciseRequest
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, badRequest(err)
	}

	plan, err := s.analyzer.PlanExercise(ctx, &params)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(plan)
}

func (s *NutriLensServer) handleRecommendNutrition(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params models.RecommendationRequest
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, badRequest(err)
	}

	rec, err := s.analyzer.Recommend(ctx, &params)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(rec)
}

func (s *NutriLensServer) handleLookupBarcode(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LookupBarcodeParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	product, err := s.foodFacts.Lookup(ctx, params.Barcode)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(product)
}

func (s *NutriLensServer) registerTools() {
	s.tools = map[string]toolHandler{
		"analyze_food":        s.handleAnalyzeFood,
		"describe_meal":       s.handleDescribeMeal,
		"log_meal":            s.handleLogMeal,
		"get_meals":           s.handleGetMeals,
		"delete_meal":         s.handleDeleteMeal,
		"plan_exercise":       s.handlePlanExercise,
		"recommend_nutrition": s.handleRecommendNutrition,
		"lookup_barcode":      s.handleLookupBarcode,
	}

	s.log.Debugw("registered tools", "tools", s.toolNames())
}

func (s *NutriLensServer) toolNames() []string {
	names := lo.Keys(s.tools)
	sort.Strings(names)
	return names
}

func mealQuery(start, end string, limit int) (models.MealQuery, error) {
	for _, d := range []string{start, end} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return models.MealQuery{}, badRequestf("dates must be YYYY-MM-DD, got %q", d)
		}
	}
	if limit <= 0 {
		limit = defaultMealLimit
	}
	return models.MealQuery{
		StartDate: start,
		EndDate:   end,
		Limit:     lo.Clamp(limit, 1, maxMealLimit),
	}, nil
}

// decodeImage accepts raw base64 or a data: URL. A MIME type in the URL is
// used when none is given explicitly.
func decodeImage(encoded, mimeType string) ([]byte, string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, "", badRequestf("image is required")
	}

	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", badRequestf("malformed data URL")
		}
		if mimeType == "" {
			mimeType, _, _ = strings.Cut(header, ";")
		}
		encoded = payload
	}

	if err := models.ValidateImageType(mimeType); err != nil {
		return nil, "", badRequest(err)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", badRequestf("image is not valid base64: %v", err)
	}
	if len(data) == 0 {
		return nil, "", badRequestf("image is required")
	}

	return data, strings.ToLower(mimeType), nil
}
