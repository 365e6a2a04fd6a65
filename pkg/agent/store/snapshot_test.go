package store

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/registry"
)

func buildSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(uuid.New(), registry.PersonalitySommelier, 0, nil)

	s.Conversation.Append(Message{Role: RoleUser, Category: CategoryImage, ImageRef: "labels/abc.jpg"})
	s.Conversation.Append(Message{Role: RoleAgent, Category: CategoryText, Text: "Let me examine that..."})
	if !s.Conversation.SetPhase(phase.Identifying) {
		t.Fatal("greeting to identifying refused")
	}

	gen := s.Identification.BeginRequest()
	s.Identification.Complete(gen, &IdentificationResult{
		Producer:   "Tenuta San Guido",
		WineName:   "Sassicaia",
		Vintage:    "2016",
		Confidence: 88,
	})
	s.Identification.SetField(FieldVintage, "2015")
	s.Identification.SetTier(1)
	s.Identification.AppendAugmentation("label shows a gold rosette")

	egen := s.Enrichment.BeginRequest(LookupKey("Tenuta San Guido", "Sassicaia", "2015"))
	s.Enrichment.Complete(egen, &EnrichmentResult{
		LookupKey: LookupKey("Tenuta San Guido", "Sassicaia", "2015"),
		Overview:  "A Bolgheri benchmark.",
		Source:    SourceWebSearch,
	})
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := buildSession(t)

	// Leave a request visibly in flight; the restored session must not
	// inherit the flag.
	s.Identification.BeginRequest()
	s.AddFlow.Begin()
	s.AddFlow.SetSubmitting(true)

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	r := RestoreSession(&snap, 0, nil)

	if r.ID != s.ID || r.UserID != s.UserID || r.Personality != s.Personality {
		t.Error("identity fields lost in round trip")
	}
	if got := len(r.Conversation.Messages()); got != 2 {
		t.Errorf("messages = %d, want 2", got)
	}
	if r.Conversation.Phase() != phase.Identifying {
		t.Errorf("phase = %s, want identifying", r.Conversation.Phase())
	}

	res := r.Identification.Result()
	if res.Vintage != "2015" {
		t.Errorf("Vintage = %q, want corrected 2015", res.Vintage)
	}
	if !r.Identification.Locked(FieldVintage) {
		t.Error("vintage lock lost in round trip")
	}
	if r.Identification.Tier() != 1 {
		t.Errorf("tier = %d, want 1", r.Identification.Tier())
	}
	if len(r.Identification.Augmentation()) != 1 {
		t.Error("augmentation lost in round trip")
	}

	enr := r.Enrichment.Result()
	if enr == nil || enr.Overview != "A Bolgheri benchmark." || enr.Source != SourceWebSearch {
		t.Errorf("enrichment = %+v", enr)
	}

	if r.Identification.Streaming() || r.Enrichment.Streaming() {
		t.Error("restored session is streaming")
	}
	if r.AddFlow.Submitting() {
		t.Error("restored session is submitting")
	}
	if !r.AddFlow.Active() {
		t.Error("active add flow lost in round trip")
	}
}

func TestRestoreInvalidPhaseFallsBackToGreeting(t *testing.T) {
	snap := &Snapshot{SessionID: "s1", UserID: uuid.New(), Phase: phase.Phase("corrupted")}
	r := RestoreSession(snap, 0, nil)
	if r.Conversation.Phase() != phase.Greeting {
		t.Errorf("phase = %s, want greeting fallback", r.Conversation.Phase())
	}
}

func TestDropImages(t *testing.T) {
	s := buildSession(t)
	snap := s.Snapshot()

	snap.DropImages()

	for _, m := range snap.Messages {
		if m.ImageRef != "" {
			t.Error("message still carries an image ref")
		}
	}
	if snap.PendingImage != "" {
		t.Error("pending image survived DropImages")
	}
}

func TestTrimMessagesKeepsNewest(t *testing.T) {
	s := NewSession(uuid.New(), registry.PersonalityCasual, 0, nil)
	for i := 0; i < 8; i++ {
		s.Conversation.Append(Message{Role: RoleUser, Category: CategoryText, Text: string(rune('a' + i))})
	}
	snap := s.Snapshot()

	snap.TrimMessages()

	if len(snap.Messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(snap.Messages))
	}
	if snap.Messages[len(snap.Messages)-1].Text != "h" {
		t.Error("newest message lost by trim")
	}

	single := &Snapshot{Messages: snap.Messages[:1]}
	single.TrimMessages()
	if len(single.Messages) != 1 {
		t.Error("single-message history should not shrink")
	}
}

func TestSnapshotCopiesMessages(t *testing.T) {
	s := buildSession(t)
	snap := s.Snapshot()

	msgs := s.Conversation.Messages()
	msgs[1].Text = "mutated after snapshot"

	if snap.Messages[1].Text == "mutated after snapshot" {
		t.Error("snapshot shares message storage with the live session")
	}
}
