// internal/nutrition/prompts.go
package nutrition

import (
	"fmt"
	"strings"

	"nutrilens/internal/models"
)

const foodAnalysisFormat = `IMPORTANT: Always respond with valid JSON in this exact format and nothing else:
{
  "foodName": "name of the dish or food",
  "estimatedCalories": [integer kcal for the whole portion],
  "protein": [grams],
  "carbs": [grams],
  "fat": [grams],
  "healthScore": [integer 0-100, higher is healthier],
  "warnings": ["allergens, very high sugar/sodium/fat and similar concerns"],
  "recommendation": "one or two sentences of practical advice",
  "detailedFacts": {
    "servingSize": "estimated portion",
    "calories": [integer],
    "totalFat": [grams],
    "saturatedFat": [grams],
    "transFat": [grams],
    "cholesterol": [milligrams],
    "sodium": [milligrams],
    "totalCarbohydrates": [grams],
    "dietaryFiber": [grams],
    "sugars": [grams],
    "protein": [grams]
  }
}`

func foodImagePrompt(note string) string {
	var b strings.Builder
	b.WriteString("You are a nutrition expert. Identify the food in this image and estimate its nutritional content for the portion shown.\n\n")
	b.WriteString(`If the image does not show food, set "foodName" to "unknown".` + "\n")
	if note = strings.TrimSpace(note); note != "" {
		fmt.Fprintf(&b, "Additional context from the user: %q\n", note)
	}
	b.WriteString("\n")
	b.WriteString(foodAnalysisFormat)
	return b.String()
}

func mealDescriptionPrompt(description string) string {
	return fmt.Sprintf(`You are a nutrition expert. Estimate the nutritional content of this meal: %q

Assume typical portion sizes where the description is vague.
If the text does not describe food, set "foodName" to "unknown".

%s`, description, foodAnalysisFormat)
}

func exercisePlanPrompt(req *models.ExerciseRequest) string {
	var b strings.Builder
	b.WriteString("You are a certified personal trainer. Create a safe, progressive workout plan.\n\n")
	b.WriteString("USER PROFILE:\n")
	fmt.Fprintf(&b, "- Goal: %s\n", req.Goal)
	fmt.Fprintf(&b, "- Fitness level: %s\n", req.FitnessLevel)
	fmt.Fprintf(&b, "- Training days per week: %d\n", req.DaysPerWeek)
	fmt.Fprintf(&b, "- Session length: %d minutes\n", req.SessionMinutes)
	if len(req.Equipment) > 0 {
		fmt.Fprintf(&b, "- Available equipment: %s\n", strings.Join(req.Equipment, ", "))
	} else {
		b.WriteString("- Available equipment: none (bodyweight only)\n")
	}
	if req.Limitations != "" {
		fmt.Fprintf(&b, "- Limitations: %s\n", req.Limitations)
	}
	b.WriteString(`
IMPORTANT: Always respond with valid JSON in this exact format and nothing else:
{
  "planName": "short plan title",
  "goal": "restated goal",
  "durationWeeks": [integer 1-52],
  "sessionsPerWeek": [integer 1-7],
  "exercises": [
    {
      "name": "exercise name",
      "sets": [integer],
      "reps": [integer, 0 for timed exercises],
      "durationMinutes": [integer, 0 for rep-based exercises],
      "restSeconds": [integer],
      "instructions": "one sentence on form"
    }
  ],
  "estimatedCaloriesBurned": [integer kcal per session],
  "tips": ["short tip"],
  "summary": "two sentence overview"
}`)
	return b.String()
}

func recommendationPrompt(req *models.RecommendationRequest) string {
	var b strings.Builder
	b.WriteString("You are a registered dietitian. Give personalised daily nutrition guidance.\n\n")
	b.WriteString("USER PROFILE:\n")
	fmt.Fprintf(&b, "- Age: %d years\n", req.Age)
	fmt.Fprintf(&b, "- Sex: %s\n", req.Sex)
	fmt.Fprintf(&b, "- Weight: %.1f kg\n", req.WeightKg)
	fmt.Fprintf(&b, "- Height: %.1f cm\n", req.HeightCm)
	fmt.Fprintf(&b, "- Activity level: %s\n", req.ActivityLevel)
	fmt.Fprintf(&b, "- Goal: %s\n", req.Goal)
	if len(req.DietaryPreferences) > 0 {
		fmt.Fprintf(&b, "- Dietary preferences: %s\n", strings.Join(req.DietaryPreferences, ", "))
	}
	if len(req.RecentMeals) > 0 {
		fmt.Fprintf(&b, "- Recently eaten: %s\n", strings.Join(req.RecentMeals, "; "))
	}
	b.WriteString(`
IMPORTANT: Always respond with valid JSON in this exact format and nothing else:
{
  "summary": "two sentence overview",
  "dailyCalorieTarget": [integer kcal],
  "macroSplit": {"protein": [percent], "carbs": [percent], "fat": [percent]},
  "recommendations": ["concrete action"],
  "suggestedFoods": ["food"],
  "warnings": ["health caution, if any"]
}`)
	return b.String()
}
