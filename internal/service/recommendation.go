package service

import (
	"fmt"
	"strings"

	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"github.com/shopspring/decimal"
)

// Trait score cutoffs for the recommendation callouts.
const (
	traitStrengthFloor   = 80
	traitDevelopmentCeil = 40
)

// BuildDescription summarises the result in one deterministic sentence.
func BuildDescription(scaled decimal.Decimal, grade string, passed bool) string {
	outcome := "did not reach the passing threshold"
	if passed {
		outcome = "passed"
	}
	return fmt.Sprintf("Scored %s of 100 (grade %s) and %s.", scaled.StringFixed(2), grade, outcome)
}

// BuildRecommendations assembles the advice text from the score outcome and,
// when traits are present, per-trait strength and development callouts.
// Same inputs always produce the same text.
func BuildRecommendations(grade string, passed bool, traits model.TraitMeasurements) string {
	var b strings.Builder

	switch grade {
	case model.GradeA:
		b.WriteString("Outstanding performance. Consider advanced material to stay challenged.")
	case model.GradeB:
		b.WriteString("Strong performance. Review the few missed areas to reach the top band.")
	case model.GradeC:
		b.WriteString("Solid performance with room to grow. Targeted practice on weaker topics is recommended.")
	case model.GradeD:
		b.WriteString("Passing performance, but the margin is thin. A structured review plan is recommended.")
	default:
		b.WriteString("The passing threshold was not reached. A full review of the material is recommended before retaking the test.")
	}

	if !passed && grade != model.GradeE {
		b.WriteString(" Note that this score is below the configured passing threshold.")
	}

	var strengths, development []string
	for _, t := range traits {
		switch {
		case t.Score >= traitStrengthFloor:
			strengths = append(strengths, t.Name)
		case t.Score <= traitDevelopmentCeil:
			development = append(development, t.Name)
		}
	}
	if len(strengths) > 0 {
		b.WriteString(" Strengths: " + strings.Join(strengths, ", ") + ".")
	}
	if len(development) > 0 {
		b.WriteString(" Development areas: " + strings.Join(development, ", ") + ".")
	}

	return b.String()
}
