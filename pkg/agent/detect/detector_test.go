package detect

import (
	"testing"

	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/store"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ctx  Context
		want Detection
	}{
		{
			name: "start over command",
			raw:  "start over",
			want: Detection{Kind: KindCommand, Command: CommandStartOver},
		},
		{
			name: "cancel with one typo",
			raw:  "cancl",
			want: Detection{Kind: KindCommand, Command: CommandCancel},
		},
		{
			name: "wine vocabulary disarms command matching",
			raw:  "Domaine Quit Estate",
			want: Detection{Kind: KindFreshQuery, Query: "Domaine Quit Estate"},
		},
		{
			name: "long input disarms command matching",
			raw:  "please could you go back to the very first wine we discussed",
			want: Detection{Kind: KindFreshQuery, Query: "please could you go back to the very first wine we discussed"},
		},
		{
			name: "field correction with is",
			raw:  "the producer is Penfolds",
			want: Detection{Kind: KindFieldCorrection, Field: store.FieldProducer, Value: "Penfolds"},
		},
		{
			name: "field correction with year synonym",
			raw:  "year should be 1998",
			want: Detection{Kind: KindFieldCorrection, Field: store.FieldVintage, Value: "1998"},
		},
		{
			name: "direct vintage while prompted",
			raw:  "2015",
			ctx:  Context{PromptedField: store.FieldVintage},
			want: Detection{Kind: KindDirectFieldValue, Field: store.FieldVintage, Value: "2015"},
		},
		{
			name: "nv normalized while prompted for vintage",
			raw:  "nv",
			ctx:  Context{PromptedField: store.FieldVintage},
			want: Detection{Kind: KindDirectFieldValue, Field: store.FieldVintage, Value: store.NonVintage},
		},
		{
			name: "non-year while prompted for vintage falls through",
			raw:  "grange",
			ctx:  Context{PromptedField: store.FieldVintage},
			want: Detection{Kind: KindBriefInput, Query: "grange"},
		},
		{
			name: "short producer answer while prompted",
			raw:  "Vega Sicilia",
			ctx:  Context{PromptedField: store.FieldProducer},
			want: Detection{Kind: KindDirectFieldValue, Field: store.FieldProducer, Value: "Vega Sicilia"},
		},
		{
			name: "affirmative while confirming",
			raw:  "yes",
			ctx:  Context{Phase: phase.Confirming},
			want: Detection{Kind: KindChipEquivalent, Affirmative: true},
		},
		{
			name: "negative while confirming",
			raw:  "not quite",
			ctx:  Context{Phase: phase.Confirming},
			want: Detection{Kind: KindChipEquivalent, Affirmative: false},
		},
		{
			name: "affirmative outside confirming is brief input",
			raw:  "yes",
			ctx:  Context{Phase: phase.AwaitingInput},
			want: Detection{Kind: KindBriefInput, Query: "yes"},
		},
		{
			name: "typing over a shown result is a new search",
			raw:  "penfolds grange shiraz",
			ctx:  Context{Phase: phase.Confirming, HasResult: true},
			want: Detection{Kind: KindNewSearchCandidate, Query: "penfolds grange shiraz"},
		},
		{
			name: "lone token is brief input",
			raw:  "grange",
			want: Detection{Kind: KindBriefInput, Query: "grange"},
		},
		{
			name: "empty input is brief input",
			raw:  "   ",
			want: Detection{Kind: KindBriefInput, Query: ""},
		},
		{
			name: "multi word text is a fresh query",
			raw:  "a bottle of red from Rioja, 2010 I think",
			want: Detection{Kind: KindFreshQuery, Query: "a bottle of red from Rioja, 2010 I think"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.raw, tt.ctx)
			if got != tt.want {
				t.Errorf("Detect(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"cancel", "cancel", 0},
		{"cancl", "cancel", 1},
		{"retyr", "retry", 2},
		{"", "abc", 3},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
