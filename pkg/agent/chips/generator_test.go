package chips

import (
	"testing"

	"github.com/google/uuid"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/agenterr"
	"wine-cellar-be/pkg/agent/analyze"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
)

func countPrimary(chips []store.Chip) int {
	n := 0
	for _, c := range chips {
		if c.Variant == store.VariantPrimary {
			n++
		}
	}
	return n
}

func TestEverySetCarriesExactlyOnePrimary(t *testing.T) {
	p := registry.PersonalitySommelier

	sets := map[string][]store.Chip{
		"complete_high": ForSituation(analyze.Analysis{Situation: analyze.SituationCompleteHighConfidence}, p),
		"complete_low":  ForSituation(analyze.Analysis{Situation: analyze.SituationCompleteLowConfidence}, p),
		"missing_vintage": ForSituation(analyze.Analysis{
			Situation: analyze.SituationMissingVintage,
		}, p),
		"missing_producer": ForSituation(analyze.Analysis{
			Situation: analyze.SituationMissingProducer,
		}, p),
		"grape_only":      ForSituation(analyze.Analysis{Situation: analyze.SituationGrapeOnly}, p),
		"nothing_found":   ForSituation(analyze.Analysis{Situation: analyze.SituationNothingFound}, p),
		"correction":      ForFieldCorrection(&store.IdentificationResult{Producer: "Krug"}, nil, p),
		"error_retryable": ForError(agenterr.KindTimeout, p),
		"error_quota":     ForError(agenterr.KindQuotaExceeded, p),
		"error_terminal":  ForError(agenterr.KindValidation, p),
		"brief_input":     ForBriefInput("grange", p),
		"duplicate":       ForDuplicate(p),
		"cached_mismatch": ForCachedMismatch(p),
		"enrich_offer":    ForEnrichOffer(p),
		"manual_fallback": ForManualFallback(p),
		"entity_selection": ForEntitySelection(store.EntityProducer, []store.Candidate{
			{ID: uuid.New(), Name: "Penfolds", Detail: "South Australia"},
			{ID: uuid.New(), Name: "Penley Estate"},
		}, p),
	}

	for name, chips := range sets {
		if got := countPrimary(chips); got != 1 {
			t.Errorf("%s: primary chips = %d, want exactly 1", name, got)
		}
		for _, c := range chips {
			if c.Label == "" {
				t.Errorf("%s: chip %s has no label", name, c.Key)
			}
			if c.Action.Type == "" {
				t.Errorf("%s: chip %s has no action", name, c.Key)
			}
		}
	}
}

func TestForFieldCorrectionCoversAllScalars(t *testing.T) {
	result := &store.IdentificationResult{Producer: "Gaja", Vintage: "2016"}
	locked := func(f store.Field) bool { return f == store.FieldVintage }

	chips := ForFieldCorrection(result, locked, registry.PersonalityCasual)

	if len(chips) != len(store.ScalarFields)+3 {
		t.Fatalf("chips = %d, want %d", len(chips), len(store.ScalarFields)+3)
	}

	byKey := make(map[string]store.Chip, len(chips))
	for _, c := range chips {
		byKey[c.Key] = c
	}

	if c := byKey["field_vintage"]; c.Variant != store.VariantLocked {
		t.Errorf("locked vintage variant = %s", c.Variant)
	}
	if c := byKey["field_wine_name"]; c.Variant != store.VariantPlaceholder {
		t.Errorf("empty wine name variant = %s", c.Variant)
	}
	if c := byKey["field_producer"]; c.Variant != store.VariantSecondary {
		t.Errorf("filled producer variant = %s", c.Variant)
	}
	if c := byKey["field_producer"]; c.Action.Type != action.TypeCorrectField {
		t.Errorf("field chip action = %s", c.Action.Type)
	}
}

func TestForErrorSetsFollowRetryability(t *testing.T) {
	p := registry.PersonalitySommelier

	retry := ForError(agenterr.KindNetwork, p)
	if retry[0].Action.Type != action.TypeRetry {
		t.Errorf("retryable error leads with %s", retry[0].Action.Type)
	}

	quota := ForError(agenterr.KindQuotaExceeded, p)
	if quota[0].Action.Type != action.TypeManualEntry {
		t.Errorf("quota error leads with %s", quota[0].Action.Type)
	}

	terminal := ForError(agenterr.KindInputQuality, p)
	if len(terminal) != 1 || terminal[0].Action.Type != action.TypeStartOver {
		t.Errorf("terminal error set = %+v", terminal)
	}
}

func TestForEntitySelectionFirstCandidateIsPrimary(t *testing.T) {
	id := uuid.New()
	chips := ForEntitySelection(store.EntityRegion, []store.Candidate{
		{ID: id, Name: "Burgundy", Detail: "France"},
		{ID: uuid.New(), Name: "Beaujolais"},
	}, registry.PersonalitySommelier)

	if chips[0].Variant != store.VariantPrimary {
		t.Error("first candidate is not primary")
	}
	if chips[0].Label != "Burgundy (France)" {
		t.Errorf("label = %q", chips[0].Label)
	}
	if chips[0].Action.Payload.EntityID == nil || *chips[0].Action.Payload.EntityID != id {
		t.Error("candidate chip does not carry its entity id")
	}
}
