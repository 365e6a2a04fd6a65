package store

import (
	"testing"

	"github.com/google/uuid"
)

func TestAddFlowResolutionWalk(t *testing.T) {
	s := NewAddFlowStore()
	s.Begin()

	kind, ok := s.CurrentEntity()
	if !ok || kind != EntityRegion {
		t.Fatalf("first entity = %s, want region", kind)
	}

	regionID := uuid.New()
	s.SetCandidates(EntityRegion, "Burgundy", []Candidate{{ID: regionID, Name: "Burgundy", Exact: true, Score: 1.0}})
	s.Select(EntityRegion, regionID)

	if !s.Advance() {
		t.Fatal("Advance exhausted after region")
	}
	kind, _ = s.CurrentEntity()
	if kind != EntityProducer {
		t.Fatalf("second entity = %s, want producer", kind)
	}
	s.MarkCreateNew(EntityProducer)

	if !s.Advance() {
		t.Fatal("Advance exhausted after producer")
	}
	kind, _ = s.CurrentEntity()
	if kind != EntityWine {
		t.Fatalf("third entity = %s, want wine", kind)
	}
	s.MarkCreateNew(EntityWine)

	if s.Advance() {
		t.Error("Advance did not report exhaustion after wine")
	}
	if _, ok := s.CurrentEntity(); ok {
		t.Error("CurrentEntity still reports an entity after exhaustion")
	}

	region := s.Resolution(EntityRegion)
	if region == nil || !region.Resolved || region.SelectedID == nil || *region.SelectedID != regionID {
		t.Errorf("region resolution = %+v", region)
	}
	producer := s.Resolution(EntityProducer)
	if producer == nil || !producer.CreateNew || producer.SelectedID != nil {
		t.Errorf("producer resolution = %+v", producer)
	}
}

func TestAddFlowBeginResetsBottle(t *testing.T) {
	s := NewAddFlowStore()
	s.Begin()
	if q := s.Bottle().Quantity; q != 1 {
		t.Errorf("fresh flow quantity = %d, want 1", q)
	}
}

func TestSetBottleField(t *testing.T) {
	s := NewAddFlowStore()
	s.Begin()

	s.SetBottleField("size", "1.5L")
	s.SetBottleField("location", "rack B3")
	s.SetBottleField("purchase_price", "$42.50")
	s.SetBottleField("purchase_date", "2024-06-15")
	s.SetBottleField("quantity", "3")

	b := s.Bottle()
	if b.Size != "1.5L" || b.Location != "rack B3" || b.PurchasePrice != "$42.50" {
		t.Errorf("bottle = %+v", b)
	}
	if b.PurchaseDate == nil || b.PurchaseDate.Year() != 2024 {
		t.Errorf("purchase date = %v", b.PurchaseDate)
	}
	if b.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", b.Quantity)
	}

	// Unparseable values leave the previous state untouched.
	s.SetBottleField("quantity", "several")
	s.SetBottleField("purchase_date", "last summer")
	b = s.Bottle()
	if b.Quantity != 3 || b.PurchaseDate.Year() != 2024 {
		t.Errorf("invalid values mutated bottle: %+v", b)
	}
}

func TestAddFlowDestroy(t *testing.T) {
	s := NewAddFlowStore()
	s.Begin()
	s.SetDuplicate(&DuplicateInfo{ExistingWineID: uuid.New(), ExistingBottleCount: 2})
	s.SetSubmitPayload(&SubmitPayload{})
	s.SetSubmitting(true)

	s.Destroy()

	if s.Active() || s.Submitting() {
		t.Error("flow still active after Destroy")
	}
	if s.Duplicate() != nil || s.SubmitPayload() != nil {
		t.Error("flow state survived Destroy")
	}
}
