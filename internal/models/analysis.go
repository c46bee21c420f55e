// internal/models/analysis.go
package models

import (
	"nutrilens/internal/schema"
)

const DefaultRecommendation = "No specific recommendation available."

// FoodAnalysis is the normalized result of a food photo or description.
type FoodAnalysis struct {
	FoodName          string         `json:"foodName"`
	EstimatedCalories int            `json:"estimatedCalories"`
	Protein           float64        `json:"protein"`
	Carbs             float64        `json:"carbs"`
	Fat               float64        `json:"fat"`
	HealthScore       int            `json:"healthScore"`
	Warnings          []string       `json:"warnings"`
	Recommendation    string         `json:"recommendation"`
	DetailedFacts     NutritionFacts `json:"detailedFacts"`
}

// NutritionFacts mirrors a nutrition label. Missing label values fall back
// to the top-level estimates of the analysis.
type NutritionFacts struct {
	ServingSize        string  `json:"servingSize"`
	Calories           int     `json:"calories"`
	TotalFat           float64 `json:"totalFat"`
	SaturatedFat       float64 `json:"saturatedFat"`
	TransFat           float64 `json:"transFat"`
	Cholesterol        float64 `json:"cholesterol"`
	Sodium             float64 `json:"sodium"`
	TotalCarbohydrates float64 `json:"totalCarbohydrates"`
	DietaryFiber       float64 `json:"dietaryFiber"`
	Sugars             float64 `json:"sugars"`
	Protein            float64 `json:"protein"`
}

// grams covers any single plate of food
func grams(name string) schema.Field {
	return schema.FloatField(name, 0).Clamped(0, 5000)
}

func milligrams(name string) schema.Field {
	return schema.FloatField(name, 0).Clamped(0, 100000)
}

var FoodAnalysisSchema = &schema.Schema{
	Name: "food_analysis",
	Fields: []schema.Field{
		schema.StringField("foodName", "Unidentified meal"),
		schema.IntField("estimatedCalories", 0).Clamped(0, 10000),
		grams("protein"),
		grams("carbs"),
		grams("fat"),
		schema.IntField("healthScore", 50).Clamped(0, 100),
		schema.StringListField("warnings"),
		schema.StringField("recommendation", DefaultRecommendation),
		schema.ObjectField("detailedFacts",
			schema.StringField("servingSize", "1 serving"),
			schema.IntField("calories", 0).Clamped(0, 10000).FallbackTo("estimatedCalories"),
			grams("totalFat").FallbackTo("fat"),
			grams("saturatedFat"),
			grams("transFat"),
			milligrams("cholesterol"),
			milligrams("sodium"),
			grams("totalCarbohydrates").FallbackTo("carbs"),
			grams("dietaryFiber"),
			grams("sugars"),
			grams("protein").FallbackTo("protein"),
		),
	},
	Sentinel: &schema.Sentinel{Field: "foodName", Value: "unknown"},
}

// ExercisePlan is the normalized result of a workout planning request.
type ExercisePlan struct {
	PlanName                string     `json:"planName"`
	Goal                    string     `json:"goal"`
	DurationWeeks           int        `json:"durationWeeks"`
	SessionsPerWeek         int        `json:"sessionsPerWeek"`
	Exercises               []Exercise `json:"exercises"`
	EstimatedCaloriesBurned int        `json:"estimatedCaloriesBurned"`
	Tips                    []string   `json:"tips"`
	Summary                 string     `json:"summary"`
}

type Exercise struct {
	Name            string `json:"name"`
	Sets            int    `json:"sets"`
	Reps            int    `json:"reps"`
	DurationMinutes int    `json:"durationMinutes"`
	RestSeconds     int    `json:"restSeconds"`
	Instructions    string `json:"instructions"`
}

var ExercisePlanSchema = &schema.Schema{
	Name: "exercise_plan",
	Fields: []schema.Field{
		schema.StringField("planName", "Personal workout plan"),
		schema.StringField("goal", "general fitness"),
		schema.IntField("durationWeeks", 4).Clamped(1, 52),
		schema.IntField("sessionsPerWeek", 3).Clamped(1, 7),
		schema.ObjectListField("exercises",
			schema.StringField("name", "Exercise"),
			schema.IntField("sets", 3).Clamped(1, 10),
			schema.IntField("reps", 10).Clamped(0, 100),
			schema.IntField("durationMinutes", 0).Clamped(0, 180),
			schema.IntField("restSeconds", 60).Clamped(0, 600),
			schema.StringField("instructions", "Perform with controlled form."),
		),
		schema.IntField("estimatedCaloriesBurned", 0).Clamped(0, 10000),
		schema.StringListField("tips"),
		schema.StringField("summary", "No plan summary available."),
	},
}

// Recommendation is the normalized result of a nutrition recommendation request.
type Recommendation struct {
	Summary            string     `json:"summary"`
	DailyCalorieTarget int        `json:"dailyCalorieTarget"`
	MacroSplit         MacroSplit `json:"macroSplit"`
	Recommendations    []string   `json:"recommendations"`
	SuggestedFoods     []string   `json:"suggestedFoods"`
	Warnings           []string   `json:"warnings"`
}

// MacroSplit is a percentage share of daily calories.
type MacroSplit struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

var RecommendationSchema = &schema.Schema{
	Name: "recommendation",
	Fields: []schema.Field{
		schema.StringField("summary", DefaultRecommendation),
		schema.IntField("dailyCalorieTarget", 2000).Clamped(0, 10000),
		schema.ObjectField("macroSplit",
			schema.IntField("protein", 30).Clamped(0, 100),
			schema.IntField("carbs", 40).Clamped(0, 100),
			schema.IntField("fat", 30).Clamped(0, 100),
		),
		schema.StringListField("recommendations"),
		schema.StringListField("suggestedFoods"),
		schema.StringListField("warnings"),
	},
}
