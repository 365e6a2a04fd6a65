package store

import "testing"

func TestApplyPartialGenerationGuard(t *testing.T) {
	s := NewIdentificationStore()
	gen := s.BeginRequest()

	if !s.ApplyPartial(gen, FieldProducer, "Penfolds") {
		t.Error("partial with current generation refused")
	}
	if s.ApplyPartial(gen-1, FieldWineName, "Grange") {
		t.Error("partial with stale generation accepted")
	}
	if s.Result().WineName != "" {
		t.Error("stale partial was applied")
	}

	s.CancelRequest()
	if s.ApplyPartial(gen, FieldVintage, "2015") {
		t.Error("partial accepted after cancel")
	}
	if s.Streaming() {
		t.Error("still streaming after cancel")
	}
}

func TestCancelDiscardsOwnPartials(t *testing.T) {
	s := NewIdentificationStore()
	gen := s.BeginRequest()
	s.ApplyPartial(gen, FieldProducer, "Penfolds")
	s.ApplyPartial(gen, FieldWineName, "Grange")

	s.CancelRequest()
	if s.HasResult() {
		t.Error("cancelled request's fragments survive as a result")
	}
	if s.Result() != nil {
		t.Errorf("Result = %+v, want nil after cancelling a first request", s.Result())
	}
}

func TestCancelRestoresPriorResult(t *testing.T) {
	s := NewIdentificationStore()
	gen := s.BeginRequest()
	if !s.Complete(gen, &IdentificationResult{
		Producer: "Penfolds", WineName: "Grange", Vintage: "2015", Confidence: 85,
	}) {
		t.Fatal("Complete refused the current generation")
	}

	// A re-search streams a few fields, then gets cancelled.
	gen = s.BeginRequest()
	s.ApplyPartial(gen, FieldProducer, "Henschke")
	s.ApplyPartial(gen, FieldWineName, "Hill of Grace")
	s.CancelRequest()

	got := s.Result()
	if got == nil || got.Producer != "Penfolds" || got.WineName != "Grange" {
		t.Errorf("Result = %+v, want the completed result restored", got)
	}
}

func TestLockedFieldRefusesPartials(t *testing.T) {
	s := NewIdentificationStore()
	s.SetField(FieldVintage, "2010")
	gen := s.BeginRequest()

	if s.ApplyPartial(gen, FieldVintage, "2015") {
		t.Error("partial overwrote a locked field")
	}
	if got := s.Result().Vintage; got != "2010" {
		t.Errorf("Vintage = %q, want locked 2010", got)
	}
}

func TestCompleteReappliesLockedValues(t *testing.T) {
	s := NewIdentificationStore()
	s.SetField(FieldProducer, "Domaine Leflaive")
	gen := s.BeginRequest()

	final := &IdentificationResult{
		Producer:   "Leflaive & Associés",
		WineName:   "Puligny-Montrachet",
		Vintage:    "2019",
		Confidence: 90,
	}
	if !s.Complete(gen, final) {
		t.Fatal("Complete refused the current generation")
	}

	got := s.Result()
	if got.Producer != "Domaine Leflaive" {
		t.Errorf("Producer = %q, locked correction lost", got.Producer)
	}
	if got.WineName != "Puligny-Montrachet" {
		t.Errorf("WineName = %q, final result not installed", got.WineName)
	}
	if s.Streaming() {
		t.Error("still streaming after Complete")
	}
}

func TestCompleteStaleGeneration(t *testing.T) {
	s := NewIdentificationStore()
	old := s.BeginRequest()
	s.BeginRequest()

	if s.Complete(old, &IdentificationResult{WineName: "Old"}) {
		t.Error("Complete accepted a superseded generation")
	}
}

func TestLockedFieldsOrderAndValues(t *testing.T) {
	s := NewIdentificationStore()
	s.SetField(FieldVintage, "1998")
	s.SetField(FieldProducer, "Krug")

	fields := s.LockedFields()
	if len(fields) != 2 || fields[0] != FieldProducer || fields[1] != FieldVintage {
		t.Errorf("LockedFields = %v, want display order [producer vintage]", fields)
	}

	values := s.LockedValues()
	if values[FieldProducer] != "Krug" || values[FieldVintage] != "1998" {
		t.Errorf("LockedValues = %v", values)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := NewIdentificationStore()
	gen := s.BeginRequest()
	s.ApplyPartial(gen, FieldProducer, "Gaja")
	s.SetField(FieldVintage, "2016")
	s.SetTier(2)
	s.AppendAugmentation("back label mentions Barbaresco")
	s.SetPromptedField(FieldWineName)

	s.Reset()

	if s.HasResult() {
		t.Error("result survived Reset")
	}
	if s.Locked(FieldVintage) {
		t.Error("lock survived Reset")
	}
	if s.Tier() != 0 {
		t.Error("tier survived Reset")
	}
	if len(s.Augmentation()) != 0 {
		t.Error("augmentation survived Reset")
	}
	if s.PromptedField() != "" {
		t.Error("prompted field survived Reset")
	}
	if s.ApplyPartial(gen, FieldProducer, "stale") {
		t.Error("pre-reset generation still accepted")
	}
}

func TestResultReturnsCopy(t *testing.T) {
	s := NewIdentificationStore()
	gen := s.BeginRequest()
	s.ApplyPartial(gen, FieldProducer, "Vega Sicilia")

	r := s.Result()
	r.Producer = "mutated"
	if s.Result().Producer != "Vega Sicilia" {
		t.Error("Result leaks internal state")
	}
}
