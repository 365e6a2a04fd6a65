package analyze

import (
	"testing"

	"wine-cellar-be/pkg/agent/store"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name   string
		result *store.IdentificationResult
		want   Analysis
	}{
		{
			name:   "nil result",
			result: nil,
			want:   Analysis{Situation: SituationNothingFound, NameFallback: FallbackNone},
		},
		{
			name:   "empty result",
			result: &store.IdentificationResult{},
			want:   Analysis{Situation: SituationNothingFound, NameFallback: FallbackNone},
		},
		{
			name: "complete high confidence",
			result: &store.IdentificationResult{
				Producer: "Krug", WineName: "Grande Cuvée", Vintage: "NV", Confidence: 85,
			},
			want: Analysis{Situation: SituationCompleteHighConfidence, NameFallback: FallbackNone},
		},
		{
			name: "complete at exact threshold is high",
			result: &store.IdentificationResult{
				Producer: "Krug", WineName: "Grande Cuvée", Vintage: "NV", Confidence: 70,
			},
			want: Analysis{Situation: SituationCompleteHighConfidence, NameFallback: FallbackNone},
		},
		{
			name: "complete low confidence",
			result: &store.IdentificationResult{
				Producer: "Krug", WineName: "Grande Cuvée", Vintage: "NV", Confidence: 40,
			},
			want: Analysis{Situation: SituationCompleteLowConfidence, NameFallback: FallbackNone},
		},
		{
			name: "missing vintage",
			result: &store.IdentificationResult{
				Producer: "Gaja", WineName: "Barbaresco", Confidence: 90,
			},
			want: Analysis{Situation: SituationMissingVintage, NameFallback: FallbackNone},
		},
		{
			name: "missing producer",
			result: &store.IdentificationResult{
				WineName: "Barbaresco", Vintage: "2016", Confidence: 75,
			},
			want: Analysis{Situation: SituationMissingProducer, NameFallback: FallbackNone},
		},
		{
			name: "missing name falls back to producer",
			result: &store.IdentificationResult{
				Producer: "Gaja", Vintage: "2016", Confidence: 75,
			},
			want: Analysis{Situation: SituationMissingWineName, NameFallback: FallbackProducer},
		},
		{
			name: "missing name prefers grape fallback",
			result: &store.IdentificationResult{
				Producer: "Gaja", Vintage: "2016", GrapeVarieties: []string{"Nebbiolo"}, Confidence: 75,
			},
			want: Analysis{Situation: SituationMissingWineName, NameFallback: FallbackGrapes},
		},
		{
			name: "grape only",
			result: &store.IdentificationResult{
				GrapeVarieties: []string{"Riesling"}, Confidence: 30,
			},
			want: Analysis{Situation: SituationGrapeOnly, NameFallback: FallbackGrapes},
		},
		{
			name: "vintage alone is still nothing concrete",
			result: &store.IdentificationResult{
				Vintage: "2010", Confidence: 20,
			},
			want: Analysis{Situation: SituationNothingFound, NameFallback: FallbackNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.result, DefaultConfidenceThreshold)
			if got != tt.want {
				t.Errorf("Analyze() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMissingField(t *testing.T) {
	tests := []struct {
		situation Situation
		field     store.Field
		ok        bool
	}{
		{SituationMissingProducer, store.FieldProducer, true},
		{SituationMissingWineName, store.FieldWineName, true},
		{SituationMissingVintage, store.FieldVintage, true},
		{SituationCompleteHighConfidence, "", false},
		{SituationNothingFound, "", false},
	}
	for _, tt := range tests {
		f, ok := Analysis{Situation: tt.situation}.MissingField()
		if f != tt.field || ok != tt.ok {
			t.Errorf("MissingField(%s) = %s, %v", tt.situation, f, ok)
		}
	}
}
