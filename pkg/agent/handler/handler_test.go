package handler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/handler"
	"wine-cellar-be/pkg/agent/middleware"
	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/router"
	"wine-cellar-be/pkg/agent/store"
	"wine-cellar-be/pkg/sommelier"
)

type testLogger struct{}

func (testLogger) Debug(string, string, map[string]interface{}) {}
func (testLogger) Info(string, string, map[string]interface{})  {}
func (testLogger) Warn(string, string, map[string]interface{})  {}
func (testLogger) Error(string, string, map[string]interface{}) {}
func (testLogger) Sync() error                                  { return nil }

type identifyCall struct {
	req sommelier.IdentifyRequest
	ch  chan sommelier.IdentifyEvent
}

// fakeSommelier hands the test one controllable event channel per
// Identify call and records Abandon notifications.
type fakeSommelier struct {
	mu        sync.Mutex
	calls     []identifyCall
	abandoned []string
}

var _ sommelier.Client = (*fakeSommelier)(nil)

func (f *fakeSommelier) Identify(_ context.Context, req sommelier.IdentifyRequest) (<-chan sommelier.IdentifyEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan sommelier.IdentifyEvent, 8)
	f.calls = append(f.calls, identifyCall{req: req, ch: ch})
	return ch, nil
}

func (f *fakeSommelier) Enrich(context.Context, sommelier.EnrichRequest) (<-chan sommelier.EnrichEvent, error) {
	ch := make(chan sommelier.EnrichEvent)
	close(ch)
	return ch, nil
}

func (f *fakeSommelier) Abandon(_ context.Context, requestID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abandoned = append(f.abandoned, requestID)
	return nil
}

func (f *fakeSommelier) ExplainCandidates(context.Context, string, string, []string) (string, error) {
	return "", nil
}

func (f *fakeSommelier) call(t *testing.T, i int) identifyCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) <= i {
		t.Fatalf("identify call %d never happened (have %d)", i, len(f.calls))
	}
	return f.calls[i]
}

func (f *fakeSommelier) abandonedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.abandoned...)
}

type fakeCellar struct {
	mu          sync.Mutex
	dup         *handler.DuplicateMatch
	searchCalls int
	addedTo     []uuid.UUID
	created     []*store.SubmitPayload
}

var _ handler.Cellar = (*fakeCellar)(nil)

func (f *fakeCellar) CheckDuplicate(context.Context, uuid.UUID, string, string, string) (*handler.DuplicateMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dup, nil
}

func (f *fakeCellar) SearchEntities(context.Context, uuid.UUID, store.EntityKind, string) ([]store.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	return nil, nil
}

func (f *fakeCellar) CreateWineWithBottle(_ context.Context, _ uuid.UUID, payload *store.SubmitPayload) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, payload)
	return uuid.New(), nil
}

func (f *fakeCellar) AddBottle(_ context.Context, _ uuid.UUID, wineID uuid.UUID, _ store.BottleDetails) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addedTo = append(f.addedTo, wineID)
	return 4, nil
}

func (f *fakeCellar) searches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls
}

func (f *fakeCellar) bottlesAddedTo() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.addedTo...)
}

func (f *fakeCellar) winesCreated() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func newRig(t *testing.T) (*fakeSommelier, *fakeCellar, *router.Router, *store.Session) {
	t.Helper()
	client := &fakeSommelier{}
	cellar := &fakeCellar{}
	deps := &handler.Deps{
		Client:  client,
		Cellar:  cellar,
		Log:     testLogger{},
		Tracker: middleware.NewRetryTracker(0),
		Config: handler.Config{
			ConfidenceThreshold:      0.70,
			ImageAutoVerifyThreshold: 0.60,
		},
	}
	r, err := router.New(deps, testLogger{})
	if err != nil {
		t.Fatalf("router.New: %v", err)
	}
	s := store.NewSession(uuid.New(), registry.PersonalitySommelier, 0, nil)
	return client, cellar, r, s
}

func dispatch(t *testing.T, r *router.Router, s *store.Session, a action.Action) {
	t.Helper()
	if err := r.Dispatch(context.Background(), s, a); err != nil {
		t.Fatalf("Dispatch(%s): %v", a.Type, err)
	}
}

func waitFor(t *testing.T, s *store.Session, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.Lock()
		ok := cond()
		s.Unlock()
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func completeResult() *sommelier.IdentifyResult {
	return &sommelier.IdentifyResult{
		Producer:   "Penfolds",
		WineName:   "Grange",
		Vintage:    "2015",
		Region:     "South Australia",
		Country:    "Australia",
		WineType:   "red",
		Confidence: 90,
	}
}

func TestCancelMidStreamReturnsToAwaitingInput(t *testing.T) {
	client, _, r, s := newRig(t)

	dispatch(t, r, s, action.Action{Type: action.TypeIdentifyText, Payload: action.Payload{Text: "penfolds grange"}})
	call := client.call(t, 0)

	call.ch <- sommelier.IdentifyEvent{Partial: &sommelier.FieldPartial{Field: "producer", Value: "Penfolds"}}
	call.ch <- sommelier.IdentifyEvent{Partial: &sommelier.FieldPartial{Field: "wine_name", Value: "Grange"}}
	waitFor(t, s, "streamed partials applied", func() bool {
		res := s.Identification.Result()
		return res != nil && res.WineName == "Grange"
	})

	dispatch(t, r, s, action.Action{Type: action.TypeCancelIdentify})

	s.Lock()
	if got := s.Conversation.Phase(); got != phase.AwaitingInput {
		t.Errorf("phase after cancel = %s, want %s", got, phase.AwaitingInput)
	}
	if s.Identification.HasResult() {
		t.Error("cancelled stream's fragments survive as a result")
	}
	s.Unlock()

	// Events still queued from the dead stream must change nothing.
	call.ch <- sommelier.IdentifyEvent{Partial: &sommelier.FieldPartial{Field: "vintage", Value: "2015"}}
	call.ch <- sommelier.IdentifyEvent{Final: completeResult()}
	close(call.ch)

	waitFor(t, s, "backend abandon notification", func() bool {
		for _, id := range client.abandonedIDs() {
			if id == call.req.RequestID {
				return true
			}
		}
		return false
	})
	time.Sleep(50 * time.Millisecond)

	s.Lock()
	defer s.Unlock()
	if got := s.Conversation.Phase(); got != phase.AwaitingInput {
		t.Errorf("phase after stale final = %s, want %s", got, phase.AwaitingInput)
	}
	if s.Identification.HasResult() {
		t.Error("stale final installed a result after cancel")
	}
}

func TestDuplicateDetectedOffersBottleShortcut(t *testing.T) {
	client, cellar, r, s := newRig(t)
	existing := uuid.New()
	cellar.dup = &handler.DuplicateMatch{WineID: existing, BottleCount: 3}

	dispatch(t, r, s, action.Action{Type: action.TypeIdentifyText, Payload: action.Payload{Text: "penfolds grange 2015"}})
	call := client.call(t, 0)
	call.ch <- sommelier.IdentifyEvent{Final: completeResult()}
	close(call.ch)
	waitFor(t, s, "confirmation surface", func() bool {
		return s.Conversation.Phase() == phase.Confirming
	})

	dispatch(t, r, s, action.Action{Type: action.TypeConfirmResult})

	s.Lock()
	msgs := s.Conversation.Messages()
	last := msgs[len(msgs)-1]
	if len(last.Chips) != 2 {
		t.Fatalf("duplicate chip set has %d chips, want 2", len(last.Chips))
	}
	if last.Chips[0].Key != "add_another_bottle" || last.Chips[0].Variant != store.VariantPrimary {
		t.Errorf("first chip = %s/%s, want add_another_bottle primary", last.Chips[0].Key, last.Chips[0].Variant)
	}
	if last.Chips[1].Key != "create_new_wine" {
		t.Errorf("second chip = %s, want create_new_wine", last.Chips[1].Key)
	}
	if got := s.Conversation.AddStep(); got != store.StepDuplicate {
		t.Errorf("add step = %s, want %s", got, store.StepDuplicate)
	}
	s.Unlock()

	dispatch(t, r, s, action.Action{Type: action.TypeAddAnotherBottle})

	if got := cellar.searches(); got != 0 {
		t.Errorf("entity matching ran %d times for a known duplicate, want 0", got)
	}
	s.Lock()
	if got := s.Conversation.AddStep(); got != store.StepBottleDetails {
		t.Errorf("add step = %s, want %s", got, store.StepBottleDetails)
	}
	s.Unlock()

	dispatch(t, r, s, action.Action{Type: action.TypeSubmitWine})

	if added := cellar.bottlesAddedTo(); len(added) != 1 || added[0] != existing {
		t.Errorf("AddBottle wine ids = %v, want [%s]", added, existing)
	}
	if got := cellar.winesCreated(); got != 0 {
		t.Error("a new wine was created despite the duplicate shortcut")
	}
	s.Lock()
	defer s.Unlock()
	if got := s.Conversation.Phase(); got != phase.Complete {
		t.Errorf("phase after submit = %s, want %s", got, phase.Complete)
	}
}

func TestEscalationKeepsLockedFields(t *testing.T) {
	client, _, r, s := newRig(t)

	dispatch(t, r, s, action.Action{Type: action.TypeIdentifyText, Payload: action.Payload{Text: "grange"}})
	first := client.call(t, 0)
	res := completeResult()
	res.Vintage = "2014"
	first.ch <- sommelier.IdentifyEvent{Final: res}
	close(first.ch)
	waitFor(t, s, "confirmation surface", func() bool {
		return s.Conversation.Phase() == phase.Confirming
	})

	dispatch(t, r, s, action.Action{
		Type:    action.TypeCorrectField,
		Payload: action.Payload{Field: string(store.FieldVintage), Value: "2015"},
	})

	dispatch(t, r, s, action.Action{Type: action.TypeEscalate})
	second := client.call(t, 1)
	if second.req.Tier != 1 {
		t.Errorf("escalated request tier = %d, want 1", second.req.Tier)
	}
	if got := second.req.Locked["vintage"]; got != "2015" {
		t.Errorf("escalated request locked vintage = %q, want 2015", got)
	}

	escalated := completeResult()
	escalated.Vintage = "2013"
	escalated.Confidence = 95
	second.ch <- sommelier.IdentifyEvent{Final: escalated}
	close(second.ch)
	waitFor(t, s, "escalated result installed", func() bool {
		return !s.Identification.Streaming()
	})

	s.Lock()
	defer s.Unlock()
	if got := s.Identification.Result().Vintage; got != "2015" {
		t.Errorf("vintage after escalation = %q, user correction lost", got)
	}
	if !s.Identification.Locked(store.FieldVintage) {
		t.Error("vintage lock dropped by escalation")
	}
}
