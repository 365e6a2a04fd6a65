// Package registry is the type-safe catalog of dialogue text templates
// and chip labels, parameterized by personality variant. Pure lookup,
// no logic.
package registry

import "fmt"

// Personality selects the voice the agent speaks in.
type Personality string

const (
	PersonalitySommelier Personality = "sommelier"
	PersonalityCasual    Personality = "casual"
)

// Key identifies a dialogue template.
type Key string

const (
	KeyGreeting          Key = "greeting"
	KeyStartOver         Key = "start_over"
	KeyIdentifying       Key = "identifying"
	KeyConfirmResult     Key = "confirm_result"
	KeyLowConfidence     Key = "low_confidence"
	KeyAskProducer       Key = "ask_producer"
	KeyAskWineName       Key = "ask_wine_name"
	KeyAskVintage        Key = "ask_vintage"
	KeyGrapeOnly         Key = "grape_only"
	KeyNothingFound      Key = "nothing_found"
	KeyBriefInput        Key = "brief_input"
	KeyWhichFieldWrong   Key = "which_field_wrong"
	KeyFieldCorrected    Key = "field_corrected"
	KeyEscalating        Key = "escalating"
	KeyEnriching         Key = "enriching"
	KeyEnrichmentReady   Key = "enrichment_ready"
	KeyCachedMismatch    Key = "cached_mismatch"
	KeyDuplicateFound    Key = "duplicate_found"
	KeyResolvingEntity   Key = "resolving_entity"
	KeySelectMatch       Key = "select_match"
	KeyBottleDetails     Key = "bottle_details"
	KeyWineAdded         Key = "wine_added"
	KeyBottleAdded       Key = "bottle_added"
	KeyNothingToRetry    Key = "nothing_to_retry"
	KeyCancelled         Key = "cancelled"
	KeyAskFieldValue     Key = "ask_field_value"
	KeyAddDetailsPrompt  Key = "add_details_prompt"
	KeyEnrichOffer       Key = "enrich_offer"
	KeyManualEntry       Key = "manual_entry"
	KeyExplainMatches    Key = "explain_matches"
	KeyErrTimeout        Key = "err_timeout"
	KeyErrRateLimit      Key = "err_rate_limit"
	KeyErrQuotaExceeded  Key = "err_quota_exceeded"
	KeyErrServer         Key = "err_server"
	KeyErrInputQuality   Key = "err_input_quality"
	KeyErrValidation     Key = "err_validation"
	KeyErrNetwork        Key = "err_network"
)

var messages = map[Key]map[Personality]string{
	KeyGreeting: {
		PersonalitySommelier: "Welcome back to your cellar. Show me a bottle or tell me about a wine and I will take it from there.",
		PersonalityCasual:    "Hey! Snap a label or type a wine and I'll figure out what it is.",
	},
	KeyStartOver: {
		PersonalitySommelier: "Very well, a clean slate. What wine shall we look at?",
		PersonalityCasual:    "Fresh start. What wine are we looking at?",
	},
	KeyIdentifying: {
		PersonalitySommelier: "Let me examine that...",
		PersonalityCasual:    "On it, give me a second...",
	},
	KeyConfirmResult: {
		PersonalitySommelier: "Here is what I found. Does this look right?",
		PersonalityCasual:    "Found this — look right to you?",
	},
	KeyLowConfidence: {
		PersonalitySommelier: "I found a likely match, though I am not fully certain. Shall I look closer?",
		PersonalityCasual:    "Best guess below, but I'm not 100%% sure. Want me to look closer?",
	},
	KeyAskProducer: {
		PersonalitySommelier: "I could not make out the producer. Who makes this wine?",
		PersonalityCasual:    "Couldn't catch the producer — who makes it?",
	},
	KeyAskWineName: {
		PersonalitySommelier: "I have the producer but not the cuvée. What is the wine called?",
		PersonalityCasual:    "Got the producer, missing the wine name. What's it called?",
	},
	KeyAskVintage: {
		PersonalitySommelier: "Which vintage is this? If it carries no year, it may be non-vintage.",
		PersonalityCasual:    "What year? (Or is it non-vintage?)",
	},
	KeyGrapeOnly: {
		PersonalitySommelier: "I can only tell the grape so far: %s. Any detail about the producer or label would help.",
		PersonalityCasual:    "All I've got is the grape: %s. Anything else on the label?",
	},
	KeyNothingFound: {
		PersonalitySommelier: "I could not identify that wine. A clearer photo or a few words from the label would help.",
		PersonalityCasual:    "No luck identifying that one. Got a clearer photo or some label text?",
	},
	KeyBriefInput: {
		PersonalitySommelier: "\"%s\" alone is rather little to go on. Shall I search with just that?",
		PersonalityCasual:    "Just \"%s\"? I can search with that, or you can add more.",
	},
	KeyWhichFieldWrong: {
		PersonalitySommelier: "My apologies. Which detail is off?",
		PersonalityCasual:    "Oops. Which part is wrong?",
	},
	KeyFieldCorrected: {
		PersonalitySommelier: "Noted — %s is now %s. Does the rest look right?",
		PersonalityCasual:    "Fixed: %s is %s. Rest okay?",
	},
	KeyEscalating: {
		PersonalitySommelier: "Allow me a closer look...",
		PersonalityCasual:    "Looking closer...",
	},
	KeyEnriching: {
		PersonalitySommelier: "Gathering the wine's profile...",
		PersonalityCasual:    "Pulling up details on this one...",
	},
	KeyEnrichmentReady: {
		PersonalitySommelier: "Here is the full profile.",
		PersonalityCasual:    "Here's everything I found.",
	},
	KeyCachedMismatch: {
		PersonalitySommelier: "I have notes for %s on file — close, but not the exact bottle. Use those, or fetch fresh ones?",
		PersonalityCasual:    "I've got saved info for %s — close but not exact. Use it, or fetch fresh?",
	},
	KeyDuplicateFound: {
		PersonalitySommelier: "You already have this wine in the cellar (%d bottle(s)). Add another bottle, or create a new entry?",
		PersonalityCasual:    "This one's already in your cellar (%d bottles). Add another bottle or make a new entry?",
	},
	KeyResolvingEntity: {
		PersonalitySommelier: "Filing it properly — checking the %s first.",
		PersonalityCasual:    "Sorting out the %s first.",
	},
	KeySelectMatch: {
		PersonalitySommelier: "I found several possible matches for %q. Which is it?",
		PersonalityCasual:    "A few matches for %q — which one?",
	},
	KeyBottleDetails: {
		PersonalitySommelier: "Now, the bottle itself — size, where it rests, and what you paid.",
		PersonalityCasual:    "Last bit: bottle size, where it's stored, what it cost.",
	},
	KeyWineAdded: {
		PersonalitySommelier: "Done. %s now rests in your cellar.",
		PersonalityCasual:    "Added! %s is in your cellar.",
	},
	KeyBottleAdded: {
		PersonalitySommelier: "Another bottle of %s recorded.",
		PersonalityCasual:    "One more bottle of %s logged.",
	},
	KeyNothingToRetry: {
		PersonalitySommelier: "There is nothing recent to retry. Shall we start again?",
		PersonalityCasual:    "Nothing to retry. Start over?",
	},
	KeyCancelled: {
		PersonalitySommelier: "As you wish. I will hold what we had so far.",
		PersonalityCasual:    "Okay, stopped. Your progress is still here.",
	},
	KeyAskFieldValue: {
		PersonalitySommelier: "And what should the %s be?",
		PersonalityCasual:    "What's the %s then?",
	},
	KeyAddDetailsPrompt: {
		PersonalitySommelier: "Tell me anything else you recall — the label, the shop, the year on the cork.",
		PersonalityCasual:    "Got any more clues? Label text, where you bought it, anything.",
	},
	KeyEnrichOffer: {
		PersonalitySommelier: "Shall I gather tasting notes and a drinking window before we file it?",
		PersonalityCasual:    "Want tasting notes and a drink-by window before saving?",
	},
	KeyManualEntry: {
		PersonalitySommelier: "Of course — enter the details yourself and I will file them as given.",
		PersonalityCasual:    "No problem — type the details in and I'll save them as-is.",
	},
	KeyExplainMatches: {
		PersonalitySommelier: "%s",
		PersonalityCasual:    "%s",
	},
	KeyErrTimeout: {
		PersonalitySommelier: "That took longer than it should have. Shall we try once more?",
		PersonalityCasual:    "That timed out. Try again?",
	},
	KeyErrRateLimit: {
		PersonalitySommelier: "I am being asked to slow down for a moment. Try again shortly?",
		PersonalityCasual:    "Getting rate limited — give it a sec and retry?",
	},
	KeyErrQuotaExceeded: {
		PersonalitySommelier: "I have reached today's limit for lookups. We can continue tomorrow, or enter details by hand.",
		PersonalityCasual:    "Out of lookups for today. Come back tomorrow or enter it manually.",
	},
	KeyErrServer: {
		PersonalitySommelier: "Something went wrong on my end. Shall we try again?",
		PersonalityCasual:    "Something broke on my side. Retry?",
	},
	KeyErrInputQuality: {
		PersonalitySommelier: "I could not read that clearly. A sharper photo or a few typed words would help.",
		PersonalityCasual:    "Couldn't read that — got a sharper photo or some text?",
	},
	KeyErrValidation: {
		PersonalitySommelier: "Some details are missing or malformed. Kindly correct them and resubmit.",
		PersonalityCasual:    "Some fields don't look right — fix them and resubmit.",
	},
	KeyErrNetwork: {
		PersonalitySommelier: "The connection slipped away. Shall we try again?",
		PersonalityCasual:    "Connection dropped. Retry?",
	},
}

// Text renders a template for the given personality. Unknown keys render
// as the key itself so a miss is visible rather than silent.
func Text(p Personality, key Key, args ...interface{}) string {
	byPersona, ok := messages[key]
	if !ok {
		return string(key)
	}
	tmpl, ok := byPersona[p]
	if !ok {
		tmpl = byPersona[PersonalitySommelier]
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
