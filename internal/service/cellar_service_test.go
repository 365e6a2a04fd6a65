package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"wine-cellar-be/pkg/agent/store"
)

func TestParseVintage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int
	}{
		{"plain year", "2015", intPtr(2015)},
		{"padded year", "  1998 ", intPtr(1998)},
		{"non vintage upper", "NV", nil},
		{"non vintage lower", "nv", nil},
		{"empty", "", nil},
		{"garbage", "two thousand", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseVintage(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				assert.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func intPtr(v int) *int { return &v }

func TestBottleFromDetailsDefaults(t *testing.T) {
	userID, wineID := uuid.New(), uuid.New()

	b := bottleFromDetails(userID, wineID, store.BottleDetails{})

	assert.Equal(t, userID, b.UserId)
	assert.Equal(t, wineID, b.WineId)
	assert.Equal(t, "750ml", b.Size)
	assert.Equal(t, 1, b.Quantity)
	assert.Nil(t, b.Location)
	assert.Nil(t, b.PurchasePrice)
}

func TestBottleFromDetailsParsesPrice(t *testing.T) {
	b := bottleFromDetails(uuid.New(), uuid.New(), store.BottleDetails{
		Size:          "1.5L",
		Location:      "rack B3",
		PurchasePrice: "$42.50",
		Quantity:      6,
	})

	assert.Equal(t, "1.5L", b.Size)
	assert.Equal(t, 6, b.Quantity)
	if assert.NotNil(t, b.Location) {
		assert.Equal(t, "rack B3", *b.Location)
	}
	if assert.NotNil(t, b.PurchasePrice) {
		assert.Equal(t, 42.50, *b.PurchasePrice)
	}
}

func TestBottleFromDetailsIgnoresUnparseablePrice(t *testing.T) {
	b := bottleFromDetails(uuid.New(), uuid.New(), store.BottleDetails{PurchasePrice: "around forty"})
	assert.Nil(t, b.PurchasePrice)
}

func TestScoreCandidate(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		candName  string
		query     string
		wantScore float64
		wantExact bool
	}{
		{"exact ignoring case", "Penfolds", "penfolds", 1.0, true},
		{"prefix match", "Penley Estate", "pen", 0.9, false},
		{"substring only", "Château Penfolds", "penfolds", 0.7, false},
		{"query with surrounding space", "Burgundy", " burgundy ", 1.0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreCandidate(id, tt.candName, "", tt.query)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantExact, got.Exact)
			assert.Equal(t, tt.candName, got.Name)
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "Rioja", firstNonEmpty("", "Rioja", "Spain"))
	assert.Equal(t, "Spain", firstNonEmpty("", "", "Spain"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
