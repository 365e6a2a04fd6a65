package registry

// ChipKey is the stable identifier of a selectable chip.
type ChipKey string

const (
	ChipAddToCellar      ChipKey = "add_to_cellar"
	ChipLooksRight       ChipKey = "looks_right"
	ChipNotCorrect       ChipKey = "not_correct"
	ChipLookCloser       ChipKey = "look_closer"
	ChipSpecifyVintage   ChipKey = "specify_vintage"
	ChipNonVintage       ChipKey = "non_vintage"
	ChipSearchAnyway     ChipKey = "search_anyway"
	ChipAddDetails       ChipKey = "add_details"
	ChipStartOver        ChipKey = "start_over"
	ChipRetry            ChipKey = "retry"
	ChipContinueAsIs     ChipKey = "continue_as_is"
	ChipAddAnotherBottle ChipKey = "add_another_bottle"
	ChipCreateNewWine    ChipKey = "create_new_wine"
	ChipAddNewEntity     ChipKey = "add_new_entity"
	ChipExplainMatches   ChipKey = "explain_matches"
	ChipUseCached        ChipKey = "use_cached"
	ChipFetchFresh       ChipKey = "fetch_fresh"
	ChipManualEntry      ChipKey = "manual_entry"
	ChipEnrichWine       ChipKey = "enrich_wine"
	ChipSkipEnrichment   ChipKey = "skip_enrichment"
)

var chipLabels = map[ChipKey]map[Personality]string{
	ChipAddToCellar:      {PersonalitySommelier: "Add to cellar", PersonalityCasual: "Add it"},
	ChipLooksRight:       {PersonalitySommelier: "Looks right", PersonalityCasual: "Yep, that's it"},
	ChipNotCorrect:       {PersonalitySommelier: "Not correct", PersonalityCasual: "Nope"},
	ChipLookCloser:       {PersonalitySommelier: "Look closer", PersonalityCasual: "Look closer"},
	ChipSpecifyVintage:   {PersonalitySommelier: "Specify vintage", PersonalityCasual: "Enter the year"},
	ChipNonVintage:       {PersonalitySommelier: "Non-vintage", PersonalityCasual: "No year (NV)"},
	ChipSearchAnyway:     {PersonalitySommelier: "Search anyway", PersonalityCasual: "Search anyway"},
	ChipAddDetails:       {PersonalitySommelier: "Add details", PersonalityCasual: "Add more info"},
	ChipStartOver:        {PersonalitySommelier: "Start over", PersonalityCasual: "Start over"},
	ChipRetry:            {PersonalitySommelier: "Try again", PersonalityCasual: "Retry"},
	ChipContinueAsIs:     {PersonalitySommelier: "Continue as-is", PersonalityCasual: "Good enough"},
	ChipAddAnotherBottle: {PersonalitySommelier: "Add another bottle", PersonalityCasual: "One more bottle"},
	ChipCreateNewWine:    {PersonalitySommelier: "Create new wine", PersonalityCasual: "Make a new entry"},
	ChipAddNewEntity:     {PersonalitySommelier: "Add new", PersonalityCasual: "Add new"},
	ChipExplainMatches:   {PersonalitySommelier: "Explain the options", PersonalityCasual: "What's the difference?"},
	ChipUseCached:        {PersonalitySommelier: "Use what you have", PersonalityCasual: "Use saved info"},
	ChipFetchFresh:       {PersonalitySommelier: "Fetch fresh notes", PersonalityCasual: "Get fresh info"},
	ChipManualEntry:      {PersonalitySommelier: "Enter by hand", PersonalityCasual: "Type it in myself"},
	ChipEnrichWine:       {PersonalitySommelier: "Fetch the full profile", PersonalityCasual: "Get the details"},
	ChipSkipEnrichment:   {PersonalitySommelier: "Skip the profile", PersonalityCasual: "Skip details"},
}

// ChipLabel renders a chip label for the given personality.
func ChipLabel(p Personality, key ChipKey) string {
	byPersona, ok := chipLabels[key]
	if !ok {
		return string(key)
	}
	label, ok := byPersona[p]
	if !ok {
		label = byPersona[PersonalitySommelier]
	}
	return label
}

// FieldLabel renders the display label of a correctable result field.
func FieldLabel(field string) string {
	switch field {
	case "producer":
		return "Producer"
	case "wine_name":
		return "Wine name"
	case "vintage":
		return "Vintage"
	case "region":
		return "Region"
	case "country":
		return "Country"
	case "wine_type":
		return "Type"
	default:
		return field
	}
}
