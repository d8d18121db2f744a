package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryBlock_Rows_MarkerComesLast(t *testing.T) {
	block := CategoryBlock{
		Category: "Legal Services",
		Records: []BusinessRecord{
			{Name: "Acme Law", Email: "office@acmelaw.com", Category: "Legal Services"},
			{Name: "Bishop & Co", Email: "hello@bishopco.ca", Category: "Legal Services"},
		},
		Marker: ShortfallText(10, "Legal Services"),
	}

	rows := block.Rows()
	require.Len(t, rows, 3)

	assert.Equal(t, "Acme Law", rows[0][0])
	assert.Equal(t, "Bishop & Co", rows[1][0])
	assert.Equal(t, "Less than 10 records available for Legal Services", rows[2][0])

	// Marker rows carry only the note and the category.
	assert.Equal(t, []string{rows[2][0], "", "", "", "", "Legal Services"}, rows[2])
}

func TestCategoryBlock_Rows_NoMarkerWhenQuotaMet(t *testing.T) {
	block := CategoryBlock{
		Category: "Cafes",
		Records:  []BusinessRecord{{Name: "Brew Stop", Email: "hi@brewstop.com", Category: "Cafes"}},
	}

	assert.False(t, block.Shortfall())
	assert.Len(t, block.Rows(), 1)
}

func TestBusinessRecord_Row_FieldOrder(t *testing.T) {
	rec := BusinessRecord{
		Name:     "Acme Co",
		Email:    "a@acme.com",
		Phone:    "(316) 555-0134",
		Website:  "https://acme.com",
		Address:  "12 Main St",
		Category: "Consulting",
	}

	assert.Equal(t, []string{"Acme Co", "a@acme.com", "(316) 555-0134", "https://acme.com", "12 Main St", "Consulting"}, rec.Row())
	assert.Equal(t, []string{"Business Name", "Email", "Phone", "Website", "Address", "Category"}, ExportHeader())
}

func TestHarvestResult_Rows_FlattensBlocksInOrder(t *testing.T) {
	result := HarvestResult{
		RegionKey: "kansas",
		Blocks: []CategoryBlock{
			{Category: "Restaurants", Records: []BusinessRecord{{Name: "Diner", Email: "eat@diner.com"}}},
			{Category: "Cafes", Marker: ShortfallText(10, "Cafes")},
		},
	}

	rows := result.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Diner", rows[0][0])
	assert.Equal(t, "Less than 10 records available for Cafes", rows[1][0])
	assert.Equal(t, 1, result.RecordCount())
}

func TestParseProviderKind(t *testing.T) {
	for _, kind := range []ProviderKind{YellowPagesUS, YellowPagesCA, Yelp, Manta, Canada411} {
		parsed, err := ParseProviderKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseProviderKind("craigslist")
	assert.Error(t, err)
}
