package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadharvest/pkg/models"
)

func TestRegions_BuiltInTable(t *testing.T) {
	regions := Regions()
	require.Len(t, regions, 2)

	kansas := regions[0]
	assert.Equal(t, "kansas", kansas.Key)
	assert.Equal(t, "United States", kansas.Country)
	assert.Equal(t, "KS", kansas.SubdivisionCode)
	require.Len(t, kansas.Providers, 3)
	assert.Equal(t, models.YellowPagesUS, kansas.Providers[0].Kind)
	assert.Equal(t, models.Yelp, kansas.Providers[1].Kind)
	assert.Equal(t, models.Manta, kansas.Providers[2].Kind)

	nunavut := regions[1]
	assert.Equal(t, "nunavut", nunavut.Key)
	assert.Equal(t, "Canada", nunavut.Country)
	require.Len(t, nunavut.Providers, 3)
	assert.Equal(t, models.YellowPagesCA, nunavut.Providers[0].Kind)

	// Priority ranks define the fallback order.
	for _, region := range regions {
		for i, p := range region.Providers {
			assert.Equal(t, i+1, p.Priority)
		}
	}
}

func TestCategories_SixteenInFixedOrder(t *testing.T) {
	require.Len(t, Categories, 16)
	assert.Equal(t, "Clothing & Apparel", Categories[0])
	assert.Equal(t, "Furniture & Décor", Categories[4])
	assert.Equal(t, "Coaching Institutes", Categories[15])
}

func TestLoadRegions_EmptyPathUsesBuiltIn(t *testing.T) {
	regions, err := LoadRegions("")
	require.NoError(t, err)
	assert.Equal(t, Regions(), regions)
}

func TestLoadRegions_YAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	doc := `
regions:
  - key: alberta
    name: Alberta
    country: Canada
    subdivision: AB
    providers:
      - kind: yellowpages-ca
        base_url: https://www.yellowpages.ca
      - kind: yelp
        base_url: https://www.yelp.ca
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	regions, err := LoadRegions(path)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	alberta := regions[0]
	assert.Equal(t, "alberta", alberta.Key)
	assert.Equal(t, "AB", alberta.SubdivisionCode)
	require.Len(t, alberta.Providers, 2)
	assert.Equal(t, models.YellowPagesCA, alberta.Providers[0].Kind)
	assert.Equal(t, 1, alberta.Providers[0].Priority)
	assert.Equal(t, models.Yelp, alberta.Providers[1].Kind)
	assert.Equal(t, 2, alberta.Providers[1].Priority)
}

func TestLoadRegions_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRegions(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("no regions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "regions.yaml")
		require.NoError(t, os.WriteFile(path, []byte("regions: []"), 0o644))
		_, err := LoadRegions(path)
		assert.Error(t, err)
	})

	t.Run("empty provider list", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "regions.yaml")
		doc := "regions:\n  - key: x\n    name: X\n    country: Canada\n    providers: []\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
		_, err := LoadRegions(path)
		assert.ErrorContains(t, err, "provider list is empty")
	})

	t.Run("unknown provider kind", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "regions.yaml")
		doc := "regions:\n  - key: x\n    name: X\n    country: Canada\n    providers:\n      - kind: craigslist\n        base_url: https://example.com\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
		_, err := LoadRegions(path)
		assert.ErrorContains(t, err, "unknown provider kind")
	})
}
