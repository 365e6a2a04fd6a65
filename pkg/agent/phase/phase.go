package phase

// Phase is the single active dialogue phase of a conversation.
type Phase string

const (
	Greeting      Phase = "greeting"
	AwaitingInput Phase = "awaiting_input"
	Identifying   Phase = "identifying"
	Confirming    Phase = "confirming"
	AddingWine    Phase = "adding_wine"
	Enriching     Phase = "enriching"
	Error         Phase = "error"
	Complete      Phase = "complete"
)

// transitions is the closed table of legal phase changes. Every phase
// allows a jump back to Greeting because start_over is legal everywhere.
var transitions = map[Phase][]Phase{
	Greeting:      {AwaitingInput, Identifying, Error, Greeting},
	AwaitingInput: {Identifying, Confirming, AddingWine, Error, Greeting},
	Identifying:   {Confirming, AwaitingInput, Error, Greeting},
	Confirming:    {AddingWine, Enriching, Identifying, AwaitingInput, Error, Greeting},
	AddingWine:    {Enriching, Confirming, Complete, AwaitingInput, Error, Greeting},
	Enriching:     {AddingWine, Confirming, Complete, AwaitingInput, Error, Greeting},
	Error:         {AwaitingInput, Identifying, Enriching, Complete, Greeting},
	Complete:      {AwaitingInput, Identifying, Error, Greeting},
}

// CanTransition reports whether moving from one phase to another is legal.
// Self-transitions are always allowed (re-setting the current phase is a
// no-op, not a violation).
func CanTransition(from, to Phase) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedFrom returns a copy of the allowed target set for a phase.
func AllowedFrom(p Phase) []Phase {
	allowed := transitions[p]
	out := make([]Phase, len(allowed))
	copy(out, allowed)
	return out
}

// Valid reports whether p is a declared phase.
func Valid(p Phase) bool {
	_, ok := transitions[p]
	return ok
}

// Requirement states which stores must be non-empty while a phase is
// active. These are advisory: legitimate transitional states briefly
// violate them, so they back test assertions rather than runtime gates.
type Requirement struct {
	NeedsResult  bool
	NeedsAddFlow bool
}

// Invariants is the companion per-phase requirement table.
var Invariants = map[Phase]Requirement{
	Confirming: {NeedsResult: true},
	AddingWine: {NeedsResult: true, NeedsAddFlow: true},
	Enriching:  {NeedsResult: true},
}
