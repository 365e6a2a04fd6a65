// Package chips maps analyzer situations and flow contexts onto concrete
// ordered chip sets. Every generated set carries exactly one primary
// "advance the flow" chip.
package chips

import (
	"fmt"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/agenterr"
	"wine-cellar-be/pkg/agent/analyze"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
)

func chip(p registry.Personality, key registry.ChipKey, a action.Action, v store.ChipVariant) store.Chip {
	return store.Chip{
		Key:     string(key),
		Label:   registry.ChipLabel(p, key),
		Action:  a,
		Variant: v,
	}
}

// ForSituation generates the chip set shown alongside an identification
// outcome.
func ForSituation(an analyze.Analysis, p registry.Personality) []store.Chip {
	switch an.Situation {
	case analyze.SituationCompleteHighConfidence:
		return []store.Chip{
			chip(p, registry.ChipAddToCellar, action.Action{Type: action.TypeConfirmResult}, store.VariantPrimary),
			chip(p, registry.ChipNotCorrect, action.Action{Type: action.TypeRejectResult}, store.VariantSecondary),
			chip(p, registry.ChipLookCloser, action.Action{Type: action.TypeEscalate}, store.VariantSecondary),
		}
	case analyze.SituationCompleteLowConfidence:
		return []store.Chip{
			chip(p, registry.ChipLookCloser, action.Action{Type: action.TypeEscalate}, store.VariantPrimary),
			chip(p, registry.ChipLooksRight, action.Action{Type: action.TypeConfirmResult}, store.VariantSecondary),
			chip(p, registry.ChipNotCorrect, action.Action{Type: action.TypeRejectResult}, store.VariantSecondary),
		}
	case analyze.SituationMissingVintage:
		return []store.Chip{
			chip(p, registry.ChipSpecifyVintage, action.Action{
				Type:    action.TypeProvideMissingField,
				Payload: action.Payload{Field: string(store.FieldVintage)},
			}, store.VariantPrimary),
			chip(p, registry.ChipNonVintage, action.Action{Type: action.TypeSetNonVintage}, store.VariantSecondary),
			chip(p, registry.ChipContinueAsIs, action.Action{Type: action.TypeContinueAsIs}, store.VariantSecondary),
		}
	case analyze.SituationMissingProducer, analyze.SituationMissingWineName:
		field := store.FieldProducer
		if an.Situation == analyze.SituationMissingWineName {
			field = store.FieldWineName
		}
		return []store.Chip{
			chip(p, registry.ChipContinueAsIs, action.Action{Type: action.TypeContinueAsIs}, store.VariantPrimary),
			chip(p, registry.ChipLookCloser, action.Action{Type: action.TypeEscalate}, store.VariantSecondary),
			{
				Key:     "provide_" + string(field),
				Label:   registry.FieldLabel(string(field)),
				Action:  action.Action{Type: action.TypeProvideMissingField, Payload: action.Payload{Field: string(field)}},
				Variant: store.VariantSecondary,
			},
		}
	case analyze.SituationGrapeOnly:
		return []store.Chip{
			chip(p, registry.ChipAddDetails, action.Action{Type: action.TypeAddDetail}, store.VariantPrimary),
			chip(p, registry.ChipStartOver, action.Action{Type: action.TypeStartOver}, store.VariantSecondary),
		}
	default: // nothing_found
		return []store.Chip{
			chip(p, registry.ChipAddDetails, action.Action{Type: action.TypeAddDetail}, store.VariantPrimary),
			chip(p, registry.ChipRetry, action.Action{Type: action.TypeRetry}, store.VariantSecondary),
			chip(p, registry.ChipStartOver, action.Action{Type: action.TypeStartOver}, store.VariantSecondary),
		}
	}
}

// LockedFunc reports whether a field is user-locked.
type LockedFunc func(store.Field) bool

// ForFieldCorrection derives the "not correct" chip set dynamically from
// the current result: one chip per scalar field (always six, empty
// fields as "add…" placeholders, locked fields lock-indicated), plus the
// fixed action group.
func ForFieldCorrection(result *store.IdentificationResult, locked LockedFunc, p registry.Personality) []store.Chip {
	out := make([]store.Chip, 0, len(store.ScalarFields)+3)
	for _, f := range store.ScalarFields {
		value := ""
		if result != nil {
			value = result.Get(f)
		}
		label := registry.FieldLabel(string(f))
		variant := store.VariantSecondary
		switch {
		case locked != nil && locked(f):
			variant = store.VariantLocked
			label = fmt.Sprintf("%s: %s", label, value)
		case value == "":
			variant = store.VariantPlaceholder
			label = fmt.Sprintf("Add %s…", registry.FieldLabel(string(f)))
		default:
			label = fmt.Sprintf("%s: %s", label, value)
		}
		out = append(out, store.Chip{
			Key:     "field_" + string(f),
			Label:   label,
			Action:  action.Action{Type: action.TypeCorrectField, Payload: action.Payload{Field: string(f)}},
			Variant: variant,
		})
	}
	out = append(out,
		chip(p, registry.ChipLookCloser, action.Action{Type: action.TypeEscalate}, store.VariantPrimary),
		chip(p, registry.ChipAddDetails, action.Action{Type: action.TypeAddDetail}, store.VariantSecondary),
		chip(p, registry.ChipStartOver, action.Action{Type: action.TypeStartOver}, store.VariantSecondary),
	)
	return out
}

// ForError attaches the escape-path chip set for a classified failure.
// The retryable flag entirely determines the set.
func ForError(kind agenterr.Kind, p registry.Personality) []store.Chip {
	if kind.Retryable() {
		return []store.Chip{
			chip(p, registry.ChipRetry, action.Action{Type: action.TypeRetry}, store.VariantPrimary),
			chip(p, registry.ChipStartOver, action.Action{Type: action.TypeStartOver}, store.VariantSecondary),
		}
	}
	if kind == agenterr.KindQuotaExceeded {
		// No lookups left today; hand the user the manual path.
		return []store.Chip{
			chip(p, registry.ChipManualEntry, action.Action{Type: action.TypeManualEntry}, store.VariantPrimary),
			chip(p, registry.ChipStartOver, action.Action{Type: action.TypeStartOver}, store.VariantSecondary),
		}
	}
	return []store.Chip{
		chip(p, registry.ChipStartOver, action.Action{Type: action.TypeStartOver}, store.VariantPrimary),
	}
}

// ForBriefInput asks whether a lone token should be searched as-is.
func ForBriefInput(query string, p registry.Personality) []store.Chip {
	return []store.Chip{
		chip(p, registry.ChipSearchAnyway, action.Action{
			Type:    action.TypeSearchAnyway,
			Payload: action.Payload{Text: query},
		}, store.VariantPrimary),
		chip(p, registry.ChipAddDetails, action.Action{Type: action.TypeAddDetail}, store.VariantSecondary),
	}
}

// ForDuplicate offers the two ways out of a duplicate-wine detection.
func ForDuplicate(p registry.Personality) []store.Chip {
	return []store.Chip{
		chip(p, registry.ChipAddAnotherBottle, action.Action{Type: action.TypeAddAnotherBottle}, store.VariantPrimary),
		chip(p, registry.ChipCreateNewWine, action.Action{Type: action.TypeCreateNewWine}, store.VariantSecondary),
	}
}

// ForCachedMismatch pauses enrichment on a near-match cache hit.
func ForCachedMismatch(p registry.Personality) []store.Chip {
	return []store.Chip{
		chip(p, registry.ChipUseCached, action.Action{Type: action.TypeAcceptCachedMatch}, store.VariantPrimary),
		chip(p, registry.ChipFetchFresh, action.Action{Type: action.TypeRefreshEnrichment}, store.VariantSecondary),
	}
}

// ForEntitySelection lists candidate matches for the entity being
// resolved, with an add-new escape hatch and an on-demand explanation.
func ForEntitySelection(kind store.EntityKind, candidates []store.Candidate, p registry.Personality) []store.Chip {
	out := make([]store.Chip, 0, len(candidates)+2)
	for i, c := range candidates {
		variant := store.VariantSecondary
		if i == 0 {
			variant = store.VariantPrimary
		}
		id := c.ID
		label := c.Name
		if c.Detail != "" {
			label = fmt.Sprintf("%s (%s)", c.Name, c.Detail)
		}
		out = append(out, store.Chip{
			Key:     fmt.Sprintf("match_%s_%d", kind, i),
			Label:   label,
			Action:  action.Action{Type: action.TypeSelectMatch, Payload: action.Payload{EntityID: &id}},
			Variant: variant,
		})
	}
	out = append(out,
		chip(p, registry.ChipAddNewEntity, action.Action{Type: action.TypeCreateNewEntity}, store.VariantSecondary),
		chip(p, registry.ChipExplainMatches, action.Action{Type: action.TypeExplainMatches}, store.VariantSecondary),
	)
	return out
}

// ForEnrichOffer asks whether to fetch the full profile before the write.
func ForEnrichOffer(p registry.Personality) []store.Chip {
	return []store.Chip{
		chip(p, registry.ChipEnrichWine, action.Action{Type: action.TypeEnrich}, store.VariantPrimary),
		chip(p, registry.ChipSkipEnrichment, action.Action{Type: action.TypeSubmitWine}, store.VariantSecondary),
	}
}

// ForManualFallback is offered when automated identification cannot
// recover.
func ForManualFallback(p registry.Personality) []store.Chip {
	return []store.Chip{
		chip(p, registry.ChipManualEntry, action.Action{Type: action.TypeManualEntry}, store.VariantPrimary),
		chip(p, registry.ChipStartOver, action.Action{Type: action.TypeStartOver}, store.VariantSecondary),
	}
}
