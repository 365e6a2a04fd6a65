// Package detect classifies raw user text into the small set of inputs
// the orchestrator understands. The detection order is load-bearing:
// commands before field corrections before chip equivalents before the
// fresh-query fallback.
package detect

import (
	"regexp"
	"strings"

	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/store"
)

// Kind is the classification outcome.
type Kind string

const (
	KindCommand            Kind = "command"
	KindChipEquivalent     Kind = "chip_equivalent"
	KindFieldCorrection    Kind = "field_correction"
	KindDirectFieldValue   Kind = "direct_field_value"
	KindNewSearchCandidate Kind = "new_search_candidate"
	KindBriefInput         Kind = "brief_input"
	KindFreshQuery         Kind = "fresh_query"
)

// Command is a recognized navigation command.
type Command string

const (
	CommandStartOver Command = "start_over"
	CommandCancel    Command = "cancel"
	CommandGoBack    Command = "go_back"
	CommandRetry     Command = "retry"
)

// Detection is the classified input.
type Detection struct {
	Kind        Kind
	Command     Command
	Field       store.Field
	Value       string
	Affirmative bool
	Query       string
}

// Context is what the detector knows about the conversation.
type Context struct {
	Phase         phase.Phase
	HasResult     bool
	PromptedField store.Field
}

var commandSynonyms = map[Command][]string{
	CommandStartOver: {"start over", "restart", "reset", "new wine", "start again", "begin again"},
	CommandCancel:    {"cancel", "stop", "never mind", "nevermind", "forget it", "quit"},
	CommandGoBack:    {"go back", "back", "previous", "undo"},
	CommandRetry:     {"retry", "try again", "again", "redo"},
}

// wineVocabulary: strings containing these bypass command matching so a
// legitimate wine name with a command-like substring (e.g. "Château
// Quit-something") cannot hijack navigation.
var wineVocabulary = []string{
	"château", "chateau", "domaine", "estate", "vineyard", "winery",
	"appellation", "cru", "reserve", "riserva", "gran reserva", "cuvée", "cuvee",
	"burgundy", "bordeaux", "rioja", "tuscany", "barolo", "chianti",
	"napa", "mosel", "champagne", "côtes", "cotes", "valley",
}

var fieldCorrectionRe = regexp.MustCompile(
	`(?i)^(?:the\s+)?(producer|winery|wine\s*name|name|vintage|year|region|country|wine\s*type|type)\s+(?:is|was|should\s+be|=|:)\s*(.+)$`)

var vintageRe = regexp.MustCompile(`^(19|20)\d{2}$`)

var affirmatives = []string{"yes", "yeah", "yep", "correct", "right", "that's it", "thats it", "looks right", "looks good", "exactly"}
var negatives = []string{"no", "nope", "wrong", "not correct", "incorrect", "not right", "not quite"}

// Detect classifies raw user text given the conversation context.
func Detect(raw string, ctx Context) Detection {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)
	words := strings.Fields(lower)

	if text == "" {
		return Detection{Kind: KindBriefInput, Query: text}
	}

	// Wine-domain vocabulary or long input disarms command matching so
	// legitimate wine names cannot be hijacked by a command substring.
	commandSafe := len(words) <= 6 && !containsWineVocabulary(lower)

	// 1. Navigation commands, with typo tolerance.
	if commandSafe {
		if cmd, ok := matchCommand(lower); ok {
			return Detection{Kind: KindCommand, Command: cmd}
		}
	}

	// 2. Explicit "field is value" correction.
	if m := fieldCorrectionRe.FindStringSubmatch(text); m != nil {
		if f, ok := normalizeField(m[1]); ok {
			return Detection{Kind: KindFieldCorrection, Field: f, Value: strings.TrimSpace(m[2])}
		}
	}

	// 3. Direct bare-value entry while a specific field is prompted for.
	if ctx.PromptedField != "" {
		if v, ok := directValueFor(ctx.PromptedField, text); ok {
			return Detection{Kind: KindDirectFieldValue, Field: ctx.PromptedField, Value: v}
		}
	}

	// 4. Yes/no chip equivalents, only while confirming.
	if ctx.Phase == phase.Confirming && commandSafe {
		if matchAny(lower, affirmatives) {
			return Detection{Kind: KindChipEquivalent, Affirmative: true}
		}
		if matchAny(lower, negatives) {
			return Detection{Kind: KindChipEquivalent, Affirmative: false}
		}
	}

	// 5. Typing over an existing shown result reads as a new search.
	if ctx.HasResult && len(words) > 1 {
		return Detection{Kind: KindNewSearchCandidate, Query: text}
	}

	// 6. A lone token is brief input, to be confirmed before searching.
	if len(words) == 1 {
		return Detection{Kind: KindBriefInput, Query: text}
	}

	// 7. Fallback: fresh identification query.
	return Detection{Kind: KindFreshQuery, Query: text}
}

func containsWineVocabulary(lower string) bool {
	for _, term := range wineVocabulary {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func matchCommand(lower string) (Command, bool) {
	for cmd, synonyms := range commandSynonyms {
		for _, syn := range synonyms {
			if lower == syn || levenshtein(lower, syn) == 1 {
				return cmd, true
			}
		}
	}
	return "", false
}

func matchAny(lower string, options []string) bool {
	for _, o := range options {
		if lower == o {
			return true
		}
	}
	return false
}

func normalizeField(raw string) (store.Field, bool) {
	switch strings.Join(strings.Fields(strings.ToLower(raw)), " ") {
	case "producer", "winery":
		return store.FieldProducer, true
	case "wine name", "name":
		return store.FieldWineName, true
	case "vintage", "year":
		return store.FieldVintage, true
	case "region":
		return store.FieldRegion, true
	case "country":
		return store.FieldCountry, true
	case "wine type", "type":
		return store.FieldWineType, true
	}
	return "", false
}

func directValueFor(f store.Field, text string) (string, bool) {
	switch f {
	case store.FieldDetail:
		// Free-form supplementary detail accepts anything.
		return text, true
	case store.FieldVintage:
		if vintageRe.MatchString(text) {
			return text, true
		}
		if strings.EqualFold(text, "nv") || strings.EqualFold(text, store.NonVintage) {
			return store.NonVintage, true
		}
		return "", false
	default:
		// Any short entry answers a direct prompt for a text field.
		if len(strings.Fields(text)) <= 5 {
			return text, true
		}
		return "", false
	}
}

// levenshtein is a small edit distance for one-typo command tolerance.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
