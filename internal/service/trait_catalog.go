package service

import (
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
)

// CatalogFunc produces the fixed trait list for one instrument. The scores
// are the documented baseline model, not a general psychometric algorithm;
// swapping in a richer model means registering a different CatalogFunc.
type CatalogFunc func() model.TraitMeasurements

type catalogKey struct {
	ModuleType string
	Category   string
}

// TraitCatalogRegistry is the capability lookup table keyed by
// (module_type, category). New instruments register here without touching
// the scoring core.
type TraitCatalogRegistry struct {
	catalogs map[catalogKey]CatalogFunc
}

func NewTraitCatalogRegistry() *TraitCatalogRegistry {
	r := &TraitCatalogRegistry{catalogs: make(map[catalogKey]CatalogFunc)}
	r.Register(model.ModuleTypePersonality, "mbti", mbtiCatalog)
	r.Register(model.ModuleTypePersonality, "big_five", bigFiveCatalog)
	r.Register(model.ModuleTypeIntelligence, "wais", waisCatalog)
	return r
}

func (r *TraitCatalogRegistry) Register(moduleType, category string, fn CatalogFunc) {
	r.catalogs[catalogKey{ModuleType: moduleType, Category: category}] = fn
}

// Lookup returns the trait list for the instrument, or (nil, false) when the
// pair is unknown.
func (r *TraitCatalogRegistry) Lookup(moduleType, category string) (model.TraitMeasurements, bool) {
	fn, ok := r.catalogs[catalogKey{ModuleType: moduleType, Category: category}]
	if !ok {
		return nil, false
	}
	return fn(), true
}

func mbtiCatalog() model.TraitMeasurements {
	return model.TraitMeasurements{
		{Name: "Extraversion", Score: 75, Category: "mbti", Description: "Preference for engaging with the outer world"},
		{Name: "Intuition", Score: 68, Category: "mbti", Description: "Preference for patterns and possibilities over facts"},
		{Name: "Thinking", Score: 82, Category: "mbti", Description: "Preference for logic-driven decisions"},
		{Name: "Judging", Score: 71, Category: "mbti", Description: "Preference for structure and planning"},
	}
}

func bigFiveCatalog() model.TraitMeasurements {
	return model.TraitMeasurements{
		{Name: "Openness", Score: 72, Category: "big_five", Description: "Openness to new experiences and ideas"},
		{Name: "Conscientiousness", Score: 78, Category: "big_five", Description: "Organization, dependability, and discipline"},
		{Name: "Extraversion", Score: 65, Category: "big_five", Description: "Sociability and assertiveness"},
		{Name: "Agreeableness", Score: 70, Category: "big_five", Description: "Cooperation and concern for others"},
		{Name: "Neuroticism", Score: 45, Category: "big_five", Description: "Tendency toward negative emotionality"},
	}
}

func waisCatalog() model.TraitMeasurements {
	return model.TraitMeasurements{
		{Name: "Verbal Comprehension", Score: 80, Category: "wais", Description: "Verbal reasoning and concept formation"},
		{Name: "Perceptual Reasoning", Score: 76, Category: "wais", Description: "Nonverbal and fluid reasoning"},
		{Name: "Working Memory", Score: 69, Category: "wais", Description: "Attention, concentration, and mental control"},
		{Name: "Processing Speed", Score: 73, Category: "wais", Description: "Speed of mental and graphomotor processing"},
	}
}
