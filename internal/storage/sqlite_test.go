package storage

import (
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"nutrilens/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "meals.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testMeal(id string, ts time.Time, warnings ...string) *models.Meal {
	if warnings == nil {
		warnings = []string{}
	}
	return &models.Meal{
		ID:          id,
		Description: "lunch " + id,
		Timestamp:   ts,
		Analysis: models.FoodAnalysis{
			FoodName:          "Chicken salad",
			EstimatedCalories: 420,
			Protein:           35.5,
			Carbs:             12,
			Fat:               24.25,
			HealthScore:       82,
			Warnings:          warnings,
			Recommendation:    "Add whole grains.",
			DetailedFacts: models.NutritionFacts{
				ServingSize: "1 bowl",
				Calories:    420,
				TotalFat:    24.25,
				Sodium:      640,
				Protein:     35.5,
			},
		},
		CreatedAt: ts,
		UpdatedAt: ts,
		Source:    models.SourceImage,
	}
}

func TestSaveAndGetMeal(t *testing.T) {
	RegisterTestingT(t)
	s := newTestStorage(t)

	ts := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
	meal := testMeal("m1", ts, "high sodium", "contains dairy")
	Expect(s.SaveMeal(meal)).To(Succeed())

	got, err := s.GetMeal("m1")
	Expect(err).To(BeNil())
	Expect(got).To(Equal(meal))

	_, err = s.GetMeal("missing")
	Expect(err).To(MatchError(ErrMealNotFound))
}

func TestSaveMealDuplicateIDRollsBack(t *testing.T) {
	RegisterTestingT(t)
	s := newTestStorage(t)

	ts := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
	Expect(s.SaveMeal(testMeal("m1", ts, "first"))).To(Succeed())
	Expect(s.SaveMeal(testMeal("m1", ts, "second"))).NotTo(Succeed())

	got, err := s.GetMeal("m1")
	Expect(err).To(BeNil())
	Expect(got.Analysis.Warnings).To(Equal([]string{"first"}))
}

func TestGetMealsFiltersAndOrders(t *testing.T) {
	RegisterTestingT(t)
	s := newTestStorage(t)

	day := func(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC) }
	for _, m := range []*models.Meal{
		testMeal("a", day(1, 8)),
		testMeal("b", day(2, 13), "sugar"),
		testMeal("c", day(2, 19)),
		testMeal("d", day(4, 7)),
	} {
		Expect(s.SaveMeal(m)).To(Succeed())
	}

	all, err := s.GetMeals(models.MealQuery{Limit: 20})
	Expect(err).To(BeNil())
	Expect(ids(all)).To(Equal([]string{"d", "c", "b", "a"}))

	ranged, err := s.GetMeals(models.MealQuery{StartDate: "2026-03-02", EndDate: "2026-03-03", Limit: 20})
	Expect(err).To(BeNil())
	Expect(ids(ranged)).To(Equal([]string{"c", "b"}))
	Expect(ranged[1].Analysis.Warnings).To(Equal([]string{"sugar"}))
	Expect(ranged[0].Analysis.Warnings).To(BeEmpty())

	limited, err := s.GetMeals(models.MealQuery{Limit: 1})
	Expect(err).To(BeNil())
	Expect(ids(limited)).To(Equal([]string{"d"}))

	none, err := s.GetMeals(models.MealQuery{StartDate: "2027-01-01", Limit: 5})
	Expect(err).To(BeNil())
	Expect(none).To(BeEmpty())
}

func TestDeleteMeal(t *testing.T) {
	RegisterTestingT(t)
	s := newTestStorage(t)

	Expect(s.SaveMeal(testMeal("x", time.Now(), "w"))).To(Succeed())
	Expect(s.DeleteMeal("x")).To(Succeed())
	Expect(s.DeleteMeal("x")).To(MatchError(ErrMealNotFound))

	_, err := s.GetMeal("x")
	Expect(err).To(MatchError(ErrMealNotFound))
}

func ids(meals []*models.Meal) []string {
	out := make([]string, 0, len(meals))
	for _, m := range meals {
		out = append(out, m.ID)
	}
	return out
}
