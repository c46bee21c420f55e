// internal/foodfacts/analysis.go
package foodfacts

import (
	"fmt"
	"math"

	"nutrilens/internal/models"
)

// per 100 g thresholds for a "high" traffic-light rating
const (
	highSugarGrams = 22.5
	highFatGrams   = 17.5
	highSaltGrams  = 1.5
)

var nutriScoreHealth = map[string]int{
	"A": 90,
	"B": 75,
	"C": 55,
	"D": 35,
	"E": 15,
}

// Analysis expresses the product's per-100 g values as a FoodAnalysis so
// scanned products can be logged like any other meal.
func (p *Product) Analysis() models.FoodAnalysis {
	name := p.Name
	if name == "" {
		name = "Product " + p.Barcode
	}
	if p.Brand != "" {
		name = fmt.Sprintf("%s (%s)", name, p.Brand)
	}

	score, ok := nutriScoreHealth[p.NutriScore]
	if !ok {
		score = 50
	}

	n := p.Per100g
	warnings := []string{}
	if n.Sugars > highSugarGrams {
		warnings = append(warnings, "High in sugar")
	}
	if n.Fat > highFatGrams {
		warnings = append(warnings, "High in fat")
	}
	if n.Salt > highSaltGrams {
		warnings = append(warnings, "High in salt")
	}

	calories := int(math.Round(n.Calories))
	return models.FoodAnalysis{
		FoodName:          name,
		EstimatedCalories: calories,
		Protein:           n.Protein,
		Carbs:             n.Carbs,
		Fat:               n.Fat,
		HealthScore:       score,
		Warnings:          warnings,
		Recommendation:    models.DefaultRecommendation,
		DetailedFacts: models.NutritionFacts{
			ServingSize:        "100 g",
			Calories:           calories,
			TotalFat:           n.Fat,
			TotalCarbohydrates: n.Carbs,
			Sugars:             n.Sugars,
			Protein:            n.Protein,
			// sodium is 40% of salt by mass
			Sodium: math.Round(n.Salt * 400),
		},
	}
}
