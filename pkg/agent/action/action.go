package action

import (
	"fmt"

	"github.com/google/uuid"
)

// Type is the discriminant of a dispatched action.
type Type string

// Conversation actions
const (
	TypeUserMessage Type = "user_message"
	TypeStartOver   Type = "start_over"
	TypeGoBack      Type = "go_back"
	TypeCancel      Type = "cancel"
	TypeRetry       Type = "retry"
	TypeGreet       Type = "greet"
)

// Identification actions
const (
	TypeIdentifyText        Type = "identify_text"
	TypeIdentifyImage       Type = "identify_image"
	TypeReidentify          Type = "reidentify"
	TypeEscalate            Type = "escalate"
	TypeConfirmResult       Type = "confirm_result"
	TypeRejectResult        Type = "reject_result"
	TypeCorrectField        Type = "correct_field"
	TypeProvideMissingField Type = "provide_missing_field"
	TypeContinueAsIs        Type = "continue_as_is"
	TypeSetNonVintage       Type = "set_non_vintage"
	TypeSearchAnyway        Type = "search_anyway"
	TypeAddDetail           Type = "add_detail"
	TypeCancelIdentify      Type = "cancel_identify"
)

// Enrichment actions
const (
	TypeEnrich            Type = "enrich"
	TypeAcceptCachedMatch Type = "accept_cached_match"
	TypeRefreshEnrichment Type = "refresh_enrichment"
	TypeCancelEnrich      Type = "cancel_enrich"
)

// Add-wine actions
const (
	TypeAddToCellar      Type = "add_to_cellar"
	TypeAddAnotherBottle Type = "add_another_bottle"
	TypeCreateNewWine    Type = "create_new_wine"
	TypeSelectMatch      Type = "select_match"
	TypeCreateNewEntity  Type = "create_new_entity"
	TypeExplainMatches   Type = "explain_matches"
	TypeSubmitWine       Type = "submit_wine"
)

// Forms actions
const (
	TypeSetBottleField    Type = "set_bottle_field"
	TypeNextFormStep      Type = "next_form_step"
	TypePrevFormStep      Type = "prev_form_step"
	TypeSubmitBottleForm  Type = "submit_bottle_form"
	TypeManualEntry       Type = "manual_entry"
	TypeSubmitManualEntry Type = "submit_manual_entry"
)

// Family identifies the handler module that owns an action type.
type Family string

const (
	FamilyConversation   Family = "conversation"
	FamilyIdentification Family = "identification"
	FamilyEnrichment     Family = "enrichment"
	FamilyAddWine        Family = "add_wine"
	FamilyForms          Family = "forms"
)

// Payload carries the optional, type-specific parameters of an action.
// Only the fields relevant to the action type are populated.
type Payload struct {
	Text     string            `json:"text,omitempty"`
	Field    string            `json:"field,omitempty"`
	Value    string            `json:"value,omitempty"`
	ImageRef string            `json:"image_ref,omitempty"`
	ChipKey  string            `json:"chip_key,omitempty"`
	EntityID *uuid.UUID        `json:"entity_id,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// Action is the single unit of work accepted by the dispatcher.
type Action struct {
	Type    Type    `json:"type"`
	Payload Payload `json:"payload,omitempty"`
}

// owners maps every declared action type to exactly one handler family.
// Checked for exhaustiveness by Validate at router construction time so
// unknown-action drift fails fast instead of at dispatch.
var owners = map[Type]Family{
	TypeUserMessage: FamilyConversation,
	TypeStartOver:   FamilyConversation,
	TypeGoBack:      FamilyConversation,
	TypeCancel:      FamilyConversation,
	TypeRetry:       FamilyConversation,
	TypeGreet:       FamilyConversation,

	TypeIdentifyText:        FamilyIdentification,
	TypeIdentifyImage:       FamilyIdentification,
	TypeReidentify:          FamilyIdentification,
	TypeEscalate:            FamilyIdentification,
	TypeConfirmResult:       FamilyIdentification,
	TypeRejectResult:        FamilyIdentification,
	TypeCorrectField:        FamilyIdentification,
	TypeProvideMissingField: FamilyIdentification,
	TypeContinueAsIs:        FamilyIdentification,
	TypeSetNonVintage:       FamilyIdentification,
	TypeSearchAnyway:        FamilyIdentification,
	TypeAddDetail:           FamilyIdentification,
	TypeCancelIdentify:      FamilyIdentification,

	TypeEnrich:            FamilyEnrichment,
	TypeAcceptCachedMatch: FamilyEnrichment,
	TypeRefreshEnrichment: FamilyEnrichment,
	TypeCancelEnrich:      FamilyEnrichment,

	TypeAddToCellar:      FamilyAddWine,
	TypeAddAnotherBottle: FamilyAddWine,
	TypeCreateNewWine:    FamilyAddWine,
	TypeSelectMatch:      FamilyAddWine,
	TypeCreateNewEntity:  FamilyAddWine,
	TypeExplainMatches:   FamilyAddWine,
	TypeSubmitWine:       FamilyAddWine,

	TypeSetBottleField:    FamilyForms,
	TypeNextFormStep:      FamilyForms,
	TypePrevFormStep:      FamilyForms,
	TypeSubmitBottleForm:  FamilyForms,
	TypeManualEntry:       FamilyForms,
	TypeSubmitManualEntry: FamilyForms,
}

// OwnerOf resolves the handler family owning an action type.
func OwnerOf(t Type) (Family, bool) {
	f, ok := owners[t]
	return f, ok
}

// All returns every declared action type.
func All() []Type {
	types := make([]Type, 0, len(owners))
	for t := range owners {
		types = append(types, t)
	}
	return types
}

// Validate verifies that every declared action type has exactly one owner
// among the provided families. The router calls this at construction.
func Validate(families []Family) error {
	known := make(map[Family]bool, len(families))
	for _, f := range families {
		known[f] = true
	}
	for t, f := range owners {
		if !known[f] {
			return fmt.Errorf("action %q is owned by unregistered family %q", t, f)
		}
	}
	return nil
}
