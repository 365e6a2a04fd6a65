// Package analyze computes the completeness/confidence situation of an
// identification result. Analyze is a pure function: identical inputs
// always map to the same situation regardless of call order.
package analyze

import "wine-cellar-be/pkg/agent/store"

// Situation is the analyzer's classification, used downstream to select
// a chip set and message.
type Situation string

const (
	SituationCompleteHighConfidence Situation = "complete_high_confidence"
	SituationCompleteLowConfidence  Situation = "complete_low_confidence"
	SituationMissingProducer        Situation = "missing_producer"
	SituationMissingWineName        Situation = "missing_wine_name"
	SituationMissingVintage         Situation = "missing_vintage"
	SituationGrapeOnly              Situation = "grape_only"
	SituationNothingFound           Situation = "nothing_found"
)

// NameFallback says what can substitute for a missing wine name.
type NameFallback string

const (
	FallbackNone     NameFallback = "none"
	FallbackProducer NameFallback = "producer"
	FallbackGrapes   NameFallback = "grapes"
)

// DefaultConfidenceThreshold separates high from low confidence. A policy
// constant surfaced through config, not law.
const DefaultConfidenceThreshold = 0.70

// Analysis is the classified result.
type Analysis struct {
	Situation    Situation
	NameFallback NameFallback
}

// Analyze classifies a result. threshold is the high-confidence cutoff in
// [0,1]; result confidence is 0..100.
func Analyze(r *store.IdentificationResult, threshold float64) Analysis {
	if r == nil || r.Empty() {
		return Analysis{Situation: SituationNothingFound, NameFallback: FallbackNone}
	}

	hasProducer := r.Producer != ""
	hasName := r.WineName != ""
	hasVintage := r.Vintage != ""
	hasGrapes := len(r.GrapeVarieties) > 0

	if hasProducer && hasName && hasVintage {
		if r.Confidence >= threshold*100 {
			return Analysis{Situation: SituationCompleteHighConfidence, NameFallback: FallbackNone}
		}
		return Analysis{Situation: SituationCompleteLowConfidence, NameFallback: FallbackNone}
	}

	// Grape-only: nothing concrete to confirm, so the flow stays in
	// awaiting_input rather than confirming.
	if !hasProducer && !hasName {
		if hasGrapes {
			return Analysis{Situation: SituationGrapeOnly, NameFallback: FallbackGrapes}
		}
		return Analysis{Situation: SituationNothingFound, NameFallback: FallbackNone}
	}

	if !hasProducer {
		return Analysis{Situation: SituationMissingProducer, NameFallback: FallbackNone}
	}

	if !hasName {
		fb := FallbackProducer
		if hasGrapes {
			fb = FallbackGrapes
		}
		return Analysis{Situation: SituationMissingWineName, NameFallback: fb}
	}

	return Analysis{Situation: SituationMissingVintage, NameFallback: FallbackNone}
}

// MissingField maps a situation onto the field to collect next, if any.
func (a Analysis) MissingField() (store.Field, bool) {
	switch a.Situation {
	case SituationMissingProducer:
		return store.FieldProducer, true
	case SituationMissingWineName:
		return store.FieldWineName, true
	case SituationMissingVintage:
		return store.FieldVintage, true
	}
	return "", false
}
