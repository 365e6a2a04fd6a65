package phase

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Phase
		to   Phase
		want bool
	}{
		{"greeting to awaiting input", Greeting, AwaitingInput, true},
		{"greeting to identifying", Greeting, Identifying, true},
		{"greeting straight to confirming", Greeting, Confirming, false},
		{"identifying to confirming", Identifying, Confirming, true},
		{"identifying back to awaiting input", Identifying, AwaitingInput, true},
		{"confirming to adding wine", Confirming, AddingWine, true},
		{"confirming to enriching", Confirming, Enriching, true},
		{"adding wine to complete", AddingWine, Complete, true},
		{"enriching to complete", Enriching, Complete, true},
		{"complete back to identifying", Complete, Identifying, true},
		{"complete to confirming", Complete, Confirming, false},
		{"error to awaiting input", Error, AwaitingInput, true},
		{"error to adding wine", Error, AddingWine, false},
		{"awaiting input to complete", AwaitingInput, Complete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestEveryPhaseCanReachError(t *testing.T) {
	// The error middleware may fire on any dispatched action, including
	// the very first user message and anything sent after completion.
	for p := range transitions {
		if p == Error {
			continue
		}
		if !CanTransition(p, Error) {
			t.Errorf("phase %s cannot transition to error", p)
		}
	}
}

func TestSelfTransitionAlwaysAllowed(t *testing.T) {
	for p := range transitions {
		if !CanTransition(p, p) {
			t.Errorf("self transition refused for %s", p)
		}
	}
}

func TestEveryPhaseCanReturnToGreeting(t *testing.T) {
	for p := range transitions {
		if !CanTransition(p, Greeting) {
			t.Errorf("phase %s cannot return to greeting", p)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid(Confirming) {
		t.Error("Valid(Confirming) = false")
	}
	if Valid(Phase("daydreaming")) {
		t.Error("Valid accepted an undeclared phase")
	}
}

func TestAllowedFromReturnsCopy(t *testing.T) {
	a := AllowedFrom(Greeting)
	if len(a) == 0 {
		t.Fatal("AllowedFrom(Greeting) is empty")
	}
	a[0] = Phase("mutated")
	if transitions[Greeting][0] == Phase("mutated") {
		t.Error("AllowedFrom leaks the internal slice")
	}
}
