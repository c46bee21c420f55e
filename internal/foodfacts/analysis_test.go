package foodfacts

import (
	"testing"

	. "github.com/onsi/gomega"

	"nutrilens/internal/models"
)

func TestProductAnalysis(t *testing.T) {
	RegisterTestingT(t)

	p := &Product{
		Barcode:    "3017620422003",
		Name:       "Nutella",
		Brand:      "Ferrero",
		NutriScore: "E",
		Per100g:    Nutriments{Calories: 539.4, Protein: 6.3, Carbs: 57.5, Fat: 30.9, Sugars: 56.3, Salt: 0.107},
	}

	a := p.Analysis()
	Expect(a.FoodName).To(Equal("Nutella (Ferrero)"))
	Expect(a.EstimatedCalories).To(Equal(539))
	Expect(a.HealthScore).To(Equal(15))
	Expect(a.Warnings).To(Equal([]string{"High in sugar", "High in fat"}))
	Expect(a.Recommendation).To(Equal(models.DefaultRecommendation))
	Expect(a.DetailedFacts.ServingSize).To(Equal("100 g"))
	Expect(a.DetailedFacts.Sodium).To(Equal(43.0))
}

func TestProductAnalysisDefaults(t *testing.T) {
	RegisterTestingT(t)

	a := (&Product{Barcode: "12345678"}).Analysis()
	Expect(a.FoodName).To(Equal("Product 12345678"))
	Expect(a.HealthScore).To(Equal(50))
	Expect(a.Warnings).To(BeEmpty())
	Expect(a.Warnings).NotTo(BeNil())
}
