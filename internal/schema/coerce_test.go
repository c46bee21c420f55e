package schema

import (
	"testing"

	. "github.com/onsi/gomega"
)

var testSchema = &Schema{
	Name: "test",
	Fields: []Field{
		StringField("name", "nothing"),
		IntField("score", 50).Clamped(0, 100),
		FloatField("fat", 0).Clamped(0, 5000),
		BoolField("verified", false),
		StringListField("tags"),
		ObjectField("details",
			FloatField("fat", 0).Clamped(0, 5000).FallbackTo("fat"),
			StringField("serving", "1 serving"),
		),
		ObjectListField("items",
			StringField("label", "item"),
			IntField("count", 1).Clamped(1, 10),
		),
	},
	Sentinel: &Sentinel{Field: "name", Value: "unknown"},
}

func mustCoerce(t *testing.T, text string) map[string]any {
	t.Helper()
	obj, err := Parse(text)
	Expect(err).To(BeNil())
	return testSchema.Coerce(obj)
}

func TestCoerceIdentity(t *testing.T) {
	RegisterTestingT(t)

	got := mustCoerce(t, `{
		"name": "Apple",
		"score": 80,
		"fat": 0.3,
		"verified": true,
		"tags": ["fruit", "raw"],
		"details": {"fat": 0.2, "serving": "1 medium"},
		"items": [{"label": "slice", "count": 4}]
	}`)

	Expect(got["name"]).To(Equal("Apple"))
	Expect(got["score"]).To(Equal(80))
	Expect(got["fat"]).To(Equal(0.3))
	Expect(got["verified"]).To(BeTrue())
	Expect(got["tags"]).To(Equal([]string{"fruit", "raw"}))
	Expect(got["details"]).To(Equal(map[string]any{"fat": 0.2, "serving": "1 medium"}))
	Expect(got["items"]).To(Equal([]map[string]any{{"label": "slice", "count": 4}}))
}

func TestCoerceDefaults(t *testing.T) {
	RegisterTestingT(t)

	got := mustCoerce(t, `{}`)

	Expect(got["name"]).To(Equal("nothing"))
	Expect(got["score"]).To(Equal(50))
	Expect(got["fat"]).To(Equal(0.0))
	Expect(got["verified"]).To(BeFalse())
	Expect(got["tags"]).To(Equal([]string{}))
	Expect(got["details"]).To(Equal(map[string]any{"fat": 0.0, "serving": "1 serving"}))
	Expect(got["items"]).To(Equal([]map[string]any{}))
}

func TestCoerceWrongTypesAndNulls(t *testing.T) {
	RegisterTestingT(t)

	got := mustCoerce(t, `{
		"name": 12,
		"score": "high",
		"fat": null,
		"verified": "yes",
		"tags": "fruit",
		"details": [],
		"items": {"label": "x"}
	}`)

	Expect(got["name"]).To(Equal("nothing"))
	Expect(got["score"]).To(Equal(50))
	Expect(got["fat"]).To(Equal(0.0))
	Expect(got["verified"]).To(BeFalse())
	Expect(got["tags"]).To(Equal([]string{}))
	Expect(got["items"]).To(Equal([]map[string]any{}))
}

func TestCoerceEmptyStringUsesDefault(t *testing.T) {
	RegisterTestingT(t)

	got := mustCoerce(t, `{"name": "   "}`)
	Expect(got["name"]).To(Equal("nothing"))
}

func TestCoerceClamps(t *testing.T) {
	RegisterTestingT(t)

	Expect(mustCoerce(t, `{"score": 140}`)["score"]).To(Equal(100))
	Expect(mustCoerce(t, `{"score": -5}`)["score"]).To(Equal(0))
	Expect(mustCoerce(t, `{"score": 72.6}`)["score"]).To(Equal(73))
	Expect(mustCoerce(t, `{"fat": -1.5}`)["fat"]).To(Equal(0.0))
	Expect(mustCoerce(t, `{"items": [{"count": 99}]}`)["items"]).To(Equal([]map[string]any{{"label": "item", "count": 10}}))
}

func TestCoerceNestedFallback(t *testing.T) {
	RegisterTestingT(t)

	// nested value missing: use the top-level figure
	got := mustCoerce(t, `{"fat": 12.5, "details": {"serving": "100g"}}`)
	Expect(got["details"]).To(Equal(map[string]any{"fat": 12.5, "serving": "100g"}))

	// nested object missing entirely
	got = mustCoerce(t, `{"fat": 7}`)
	Expect(got["details"]).To(Equal(map[string]any{"fat": 7.0, "serving": "1 serving"}))

	// nested value present wins
	got = mustCoerce(t, `{"fat": 7, "details": {"fat": 3}}`)
	Expect(got["details"].(map[string]any)["fat"]).To(Equal(3.0))

	// both invalid
	got = mustCoerce(t, `{"fat": "lots", "details": {"fat": null}}`)
	Expect(got["details"].(map[string]any)["fat"]).To(Equal(0.0))
}

func TestCoerceFiltersListElements(t *testing.T) {
	RegisterTestingT(t)

	got := mustCoerce(t, `{"tags": ["a", 1, null, "b"], "items": [1, {"label": "ok"}, "x"]}`)
	Expect(got["tags"]).To(Equal([]string{"a", "b"}))
	Expect(got["items"]).To(Equal([]map[string]any{{"label": "ok", "count": 1}}))
}

func TestCoerceDropsUnknownKeys(t *testing.T) {
	RegisterTestingT(t)

	got := mustCoerce(t, `{"name": "Pear", "extra": true}`)
	Expect(got).NotTo(HaveKey("extra"))
	Expect(got).To(HaveLen(len(testSchema.Fields)))
}

func TestCoerceDefaultSliceIsNotShared(t *testing.T) {
	RegisterTestingT(t)

	a := mustCoerce(t, `{}`)["tags"].([]string)
	a = append(a, "mutated")
	b := mustCoerce(t, `{}`)["tags"].([]string)
	Expect(b).To(BeEmpty())
	Expect(a).To(HaveLen(1))
}

func TestParse(t *testing.T) {
	RegisterTestingT(t)

	_, err := Parse(`{"a": 1`)
	Expect(err).To(MatchError(ErrNotJSON))

	_, err = Parse(`[1, 2]`)
	Expect(err).To(MatchError(ErrNotObject))

	_, err = Parse(`Sure! Here is the JSON you asked for.`)
	Expect(err).To(MatchError(ErrNotJSON))

	obj, err := Parse(`{"a": 1}`)
	Expect(err).To(BeNil())
	Expect(obj.Get("a").Int()).To(Equal(int64(1)))
}

func TestMatchesSentinel(t *testing.T) {
	RegisterTestingT(t)

	obj, _ := Parse(`{"name": "unknown"}`)
	Expect(testSchema.MatchesSentinel(obj)).To(BeTrue())

	obj, _ = Parse(`{"name": "Unknown dish"}`)
	Expect(testSchema.MatchesSentinel(obj)).To(BeFalse())

	noSentinel := &Schema{Name: "plain"}
	obj, _ = Parse(`{"name": "unknown"}`)
	Expect(noSentinel.MatchesSentinel(obj)).To(BeFalse())
}
