package constant

const (
	// IdentifyPromptV2 extracts structured wine facts from free text.
	// Tier 0 prompt; the escalation prompt adds reasoning budget.
	IdentifyPromptV2 = `You are a master sommelier identifying a wine from partial evidence.

Evidence:
%s

RULES:
1. Only state what the evidence supports. Leave unknown fields empty.
2. If a year appears on the label or in the text, use it as vintage.
3. These field values were confirmed by the owner and MUST be returned exactly as given:
%s

Respond with ONLY a JSON object, no prose, in this exact shape:
{
  "producer": "",
  "wine_name": "",
  "vintage": "",
  "region": "",
  "country": "",
  "wine_type": "",
  "grape_varieties": [],
  "confidence": 0
}
confidence is an integer 0-100 for the identification as a whole.`

	// IdentifyEscalationPromptV2 is the tier-1+ variant: same output
	// contract, more deliberate reasoning over the accumulated evidence.
	IdentifyEscalationPromptV2 = `You are a master sommelier taking a second, closer look at a wine that resisted identification.

All evidence gathered so far, in order:
%s

Previous attempt (tier %d) was inconclusive or low confidence. Reason step by step internally about producer naming conventions, label layout, appellation rules and vintage plausibility, but respond with ONLY the JSON object:
{
  "producer": "",
  "wine_name": "",
  "vintage": "",
  "region": "",
  "country": "",
  "wine_type": "",
  "grape_varieties": [],
  "confidence": 0
}
These owner-confirmed values MUST be returned exactly as given:
%s`

	// EnrichPromptV1 produces the reference profile for a confirmed wine.
	EnrichPromptV1 = `You are a wine reference writer. Produce a concise profile for:

Producer: %s
Wine: %s
Vintage: %s

Respond with ONLY a JSON object:
{
  "overview": "",
  "grape_composition": {},
  "style_profile": "",
  "critic_scores": [{"critic": "", "score": 0, "scale": 100}],
  "drink_window": {"from": 0, "to": 0},
  "tasting_notes": "",
  "pairing_notes": ""
}
grape_composition maps variety name to percentage. Omit critic_scores entries you are not confident about.`

	// ExplainCandidatesPromptV1 disambiguates similar catalog matches.
	ExplainCandidatesPromptV1 = `A wine collector is filing a %s named "%s" and their catalog holds several similar records:

%s

In at most three short sentences, explain the practical difference between these records so the collector can pick the right one. Plain prose, no markdown, no JSON.`
)
