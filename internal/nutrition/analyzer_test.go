package nutrition

import (
	"context"
	"errors"
	"sync"
	"testing"

	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"nutrilens/internal/gateway"
	"nutrilens/internal/models"
)

type fakeTransport struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []gateway.Request
}

func (f *fakeTransport) Send(_ context.Context, req gateway.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestAnalyzer(ft *fakeTransport) *Analyzer {
	return NewAnalyzer(gateway.New(ft, gateway.WithBaseDelay(0)), zap.NewNop().Sugar())
}

func TestAnalyzeFood(t *testing.T) {
	RegisterTestingT(t)
	ft := &fakeTransport{reply: "```json\n" + `{"foodName":"Banana","estimatedCalories":105,"protein":1.3,"carbs":27,"fat":0.4,"healthScore":88}` + "\n```"}
	a := newTestAnalyzer(ft)

	res, err := a.AnalyzeFood(context.Background(), []byte{0xff, 0xd8}, "IMAGE/JPEG", "half eaten")
	Expect(err).To(BeNil())
	Expect(res.FoodName).To(Equal("Banana"))
	Expect(res.EstimatedCalories).To(Equal(105))
	Expect(res.Warnings).To(BeEmpty())
	Expect(res.Recommendation).To(Equal(models.DefaultRecommendation))
	Expect(res.DetailedFacts.Calories).To(Equal(105))
	Expect(res.DetailedFacts.TotalCarbohydrates).To(Equal(27.0))

	Expect(ft.requests).To(HaveLen(1))
	req := ft.requests[0]
	Expect(req.Multimodal()).To(BeTrue())
	Expect(req.Media.MIMEType).To(Equal("image/jpeg"))
	Expect(req.Prompt).To(ContainSubstring(`"half eaten"`))
	Expect(req.Prompt).To(ContainSubstring(`"foodName"`))
}

func TestAnalyzeFoodRejectsBadInput(t *testing.T) {
	RegisterTestingT(t)
	ft := &fakeTransport{reply: `{}`}
	a := newTestAnalyzer(ft)

	_, err := a.AnalyzeFood(context.Background(), nil, "image/png", "")
	Expect(err).To(MatchError(ErrEmptyImage))

	_, err = a.AnalyzeFood(context.Background(), []byte{1}, "application/pdf", "")
	Expect(err).To(MatchError(ContainSubstring("mime_type must be one of")))

	Expect(ft.calls()).To(Equal(0))
}

func TestAnalyzeFoodUnrecognized(t *testing.T) {
	RegisterTestingT(t)
	ft := &fakeTransport{reply: `{"foodName":"unknown"}`}
	a := newTestAnalyzer(ft)

	_, err := a.AnalyzeFood(context.Background(), []byte{1, 2, 3}, "image/png", "")
	Expect(errors.Is(err, gateway.ErrUnrecognizedSubject)).To(BeTrue())
	Expect(gateway.UserMessage(err)).To(ContainSubstring("clearer photo"))
}

func TestDescribeMeal(t *testing.T) {
	RegisterTestingT(t)
	ft := &fakeTransport{reply: `{"foodName":"Oatmeal","estimatedCalories":300,"warnings":["contains gluten"]}`}
	a := newTestAnalyzer(ft)

	res, err := a.DescribeMeal(context.Background(), "  bowl of oatmeal with honey ")
	Expect(err).To(BeNil())
	Expect(res.FoodName).To(Equal("Oatmeal"))
	Expect(res.Warnings).To(Equal([]string{"contains gluten"}))
	Expect(ft.requests[0].Multimodal()).To(BeFalse())
	Expect(ft.requests[0].Prompt).To(ContainSubstring(`"bowl of oatmeal with honey"`))

	_, err = a.DescribeMeal(context.Background(), "   ")
	Expect(err).To(HaveOccurred())
	Expect(ft.calls()).To(Equal(1))
}

func TestDescribeMealUnrecognized(t *testing.T) {
	RegisterTestingT(t)
	ft := &fakeTransport{reply: `{"foodName":"unknown"}`}
	a := newTestAnalyzer(ft)

	_, err := a.DescribeMeal(context.Background(), "my car needs new tyres")
	Expect(errors.Is(err, gateway.ErrUnrecognizedSubject)).To(BeTrue())
	Expect(gateway.UserMessage(err)).To(ContainSubstring("description"))
	Expect(gateway.UserMessage(err)).NotTo(ContainSubstring("photo"))
}

func TestDescribeMealUpstreamError(t *testing.T) {
	RegisterTestingT(t)
	ft := &fakeTransport{err: &gateway.StatusError{Code: 401, Message: "API key not valid"}}
	a := newTestAnalyzer(ft)

	_, err := a.DescribeMeal(context.Background(), "toast")
	Expect(gateway.KindOf(err)).To(Equal(gateway.KindUpstreamError))
	Expect(ft.calls()).To(Equal(1))
}

func TestPlanExercise(t *testing.T) {
	RegisterTestingT(t)
	ft := &fakeTransport{reply: `{"planName":"Starter","exercises":[{"name":"Squat","sets":3,"reps":12},"bogus"],"tips":["hydrate",4]}`}
	a := newTestAnalyzer(ft)

	req := &models.ExerciseRequest{
		Goal:           "build_muscle",
		FitnessLevel:   "beginner",
		DaysPerWeek:    3,
		SessionMinutes: 45,
		Equipment:      []string{"dumbbells"},
	}
	plan, err := a.PlanExercise(context.Background(), req)
	Expect(err).To(BeNil())
	Expect(plan.PlanName).To(Equal("Starter"))
	Expect(plan.Exercises).To(HaveLen(1))
	Expect(plan.Exercises[0].Name).To(Equal("Squat"))
	Expect(plan.Tips).To(Equal([]string{"hydrate"}))
	Expect(ft.requests[0].Prompt).To(ContainSubstring("dumbbells"))
	Expect(ft.requests[0].Prompt).To(ContainSubstring("Training days per week: 3"))
}

func TestPlanExerciseValidation(t *testing.T) {
	RegisterTestingT(t)
	ft := &fakeTransport{reply: `{}`}
	a := newTestAnalyzer(ft)

	cases := []models.ExerciseRequest{
		{Goal: "fly", FitnessLevel: "beginner", DaysPerWeek: 3, SessionMinutes: 30},
		{Goal: "maintain", FitnessLevel: "", DaysPerWeek: 3, SessionMinutes: 30},
		{Goal: "maintain", FitnessLevel: "advanced", DaysPerWeek: 8, SessionMinutes: 30},
		{Goal: "maintain", FitnessLevel: "advanced", DaysPerWeek: 2, SessionMinutes: 5},
	}
	for i := range cases {
		_, err := a.PlanExercise(context.Background(), &cases[i])
		Expect(err).To(HaveOccurred(), "case %d", i)
	}
	Expect(ft.calls()).To(Equal(0))
}

func TestRecommend(t *testing.T) {
	RegisterTestingT(t)
	ft := &fakeTransport{reply: `{"summary":"Eat more greens.","dailyCalorieTarget":2300,"macroSplit":{"protein":35}}`}
	a := newTestAnalyzer(ft)

	req := &models.RecommendationRequest{
		Age:           34,
		Sex:           "female",
		WeightKg:      68,
		HeightCm:      170,
		ActivityLevel: "moderate",
		Goal:          "maintain",
		RecentMeals:   []string{"Caesar salad", "Pad thai"},
	}
	rec, err := a.Recommend(context.Background(), req)
	Expect(err).To(BeNil())
	Expect(rec.DailyCalorieTarget).To(Equal(2300))
	Expect(rec.MacroSplit).To(Equal(models.MacroSplit{Protein: 35, Carbs: 40, Fat: 30}))
	Expect(rec.Recommendations).To(BeEmpty())
	Expect(ft.requests[0].Prompt).To(ContainSubstring("Caesar salad; Pad thai"))

	req.WeightKg = 10
	_, err = a.Recommend(context.Background(), req)
	Expect(err).To(MatchError(ContainSubstring("weight_kg")))
	Expect(ft.calls()).To(Equal(1))
}
