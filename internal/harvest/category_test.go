package harvest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadharvest/internal/extract"
	"leadharvest/internal/fetch"
	"leadharvest/pkg/models"
)

// stubExtractor replays canned outcomes instead of parsing pages.
type stubExtractor struct {
	kind     models.ProviderKind
	outcomes []extract.Outcome
	err      error
	calls    int
	emitted  int
}

func (s *stubExtractor) Kind() models.ProviderKind { return s.kind }

func (s *stubExtractor) SearchURL(region models.Region, category string) string {
	return fmt.Sprintf("https://%s.example.com/search?q=%s", s.kind, category)
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte, _ string, emit extract.Emit) error {
	s.calls++
	for _, o := range s.outcomes {
		s.emitted++
		if !emit(o) {
			return nil
		}
	}
	return s.err
}

// stubClient serves an empty page for every URL unless told to fail.
type stubClient struct {
	calls []string
	fail  map[string]error
}

func (c *stubClient) Get(_ context.Context, url string) ([]byte, error) {
	c.calls = append(c.calls, url)
	if err, ok := c.fail[url]; ok {
		return nil, err
	}
	return []byte("<html></html>"), nil
}

func stubFactory(stubs ...*stubExtractor) Factory {
	return func(spec models.ProviderSpec) (extract.Extractor, error) {
		for _, s := range stubs {
			if s.kind == spec.Kind {
				return s, nil
			}
		}
		return nil, fmt.Errorf("no extractor for provider kind %q", spec.Kind)
	}
}

func valid(name, category string) extract.Outcome {
	email := strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@example.com"
	return extract.Outcome{Candidate: models.Candidate{Name: name, Email: email, Category: category}}
}

func validN(category string, n int) []extract.Outcome {
	outcomes := make([]extract.Outcome, 0, n)
	for i := 0; i < n; i++ {
		outcomes = append(outcomes, valid(fmt.Sprintf("Biz %02d", i), category))
	}
	return outcomes
}

func twoProviderRegion() models.Region {
	return models.Region{
		Key: "kansas", Name: "Kansas", Country: "United States",
		Providers: []models.ProviderSpec{
			{Kind: models.YellowPagesUS, BaseURL: "https://www.yellowpages.com", Priority: 1},
			{Kind: models.Yelp, BaseURL: "https://www.yelp.com", Priority: 2},
		},
	}
}

func TestCategory_QuotaMetByFirstProviderSkipsTheRest(t *testing.T) {
	// 12 listings, 10 usable. The quota is reached inside the page, so the
	// last two listings and the whole second provider go untouched.
	outcomes := []extract.Outcome{
		valid("Biz 00", "Restaurants"), valid("Biz 01", "Restaurants"),
		{Drop: models.DropNoName},
		valid("Biz 02", "Restaurants"), valid("Biz 03", "Restaurants"),
		valid("Biz 04", "Restaurants"), valid("Biz 05", "Restaurants"),
		{Candidate: models.Candidate{Name: "No Mail Diner", Category: "Restaurants"}},
		valid("Biz 06", "Restaurants"), valid("Biz 07", "Restaurants"),
		valid("Biz 08", "Restaurants"), valid("Biz 09", "Restaurants"),
	}
	primary := &stubExtractor{kind: models.YellowPagesUS, outcomes: outcomes}
	fallback := &stubExtractor{kind: models.Yelp, outcomes: validN("Restaurants", 5)}
	client := &stubClient{}

	h := NewHarvester(10, client, stubFactory(primary, fallback), nil)
	block, stats := h.Category(context.Background(), twoProviderRegion(), "Restaurants")

	require.Len(t, block.Records, 10)
	assert.False(t, block.Shortfall())
	assert.Empty(t, block.Marker)
	assert.Equal(t, "Biz 00", block.Records[0].Name)
	assert.Equal(t, "Biz 09", block.Records[9].Name)

	assert.Equal(t, 1, stats.ProvidersTried)
	assert.Equal(t, 0, fallback.calls, "second provider must never be consulted")
	assert.Len(t, client.calls, 1)
	assert.Equal(t, len(outcomes), primary.emitted, "the quota lands on the last listing here")
}

func TestCategory_EarlyExitStopsMidPage(t *testing.T) {
	primary := &stubExtractor{kind: models.YellowPagesUS, outcomes: validN("Cafes", 15)}
	h := NewHarvester(10, &stubClient{}, stubFactory(primary), nil)

	region := twoProviderRegion()
	region.Providers = region.Providers[:1]
	block, stats := h.Category(context.Background(), region, "Cafes")

	require.Len(t, block.Records, 10)
	assert.Equal(t, 10, primary.emitted, "listings past the quota must not be examined")
	assert.Equal(t, 10, stats.Listings)
}

func TestCategory_ShortfallAppendsMarker(t *testing.T) {
	primary := &stubExtractor{kind: models.YellowPagesUS, outcomes: validN("Legal Services", 3)}
	fallback := &stubExtractor{kind: models.Yelp, outcomes: []extract.Outcome{
		valid("Plains Law Group", "Legal Services"),
		valid("Market Street Counsel", "Legal Services"),
	}}

	h := NewHarvester(10, &stubClient{}, stubFactory(primary, fallback), nil)
	block, stats := h.Category(context.Background(), twoProviderRegion(), "Legal Services")

	require.Len(t, block.Records, 5)
	assert.True(t, block.Shortfall())
	assert.Equal(t, "Less than 10 records available for Legal Services", block.Marker)
	assert.Equal(t, 2, stats.ProvidersTried)

	rows := block.Rows()
	require.Len(t, rows, 6)
	assert.Equal(t, block.Marker, rows[5][0], "the marker is the last row, in the name column")
	assert.Equal(t, "Legal Services", rows[5][5])
}

func TestCategory_DuplicateAcrossProvidersKeepsFirstSighting(t *testing.T) {
	primary := &stubExtractor{kind: models.YellowPagesUS, outcomes: []extract.Outcome{
		{Candidate: models.Candidate{Name: "Acme Co", Email: "a@acme.com", Category: "Consulting"}},
	}}
	fallback := &stubExtractor{kind: models.Yelp, outcomes: []extract.Outcome{
		{Candidate: models.Candidate{Name: "ACME CO", Email: "A@ACME.COM", Category: "Consulting"}},
		valid("Second Opinion LLC", "Consulting"),
	}}

	h := NewHarvester(10, &stubClient{}, stubFactory(primary, fallback), nil)
	block, stats := h.Category(context.Background(), twoProviderRegion(), "Consulting")

	require.Len(t, block.Records, 2)
	assert.Equal(t, "Acme Co", block.Records[0].Name)
	assert.Equal(t, "Second Opinion LLC", block.Records[1].Name)
	assert.Equal(t, 1, stats.Drops[models.DropDuplicate])
}

func TestCategory_DropReasonsAreCounted(t *testing.T) {
	primary := &stubExtractor{kind: models.YellowPagesUS, outcomes: []extract.Outcome{
		{Drop: models.DropNoName},
		{Candidate: models.Candidate{Name: "No Mail Diner", Category: "Cafes"}},
		valid("Tundra Cafe", "Cafes"),
	}}

	h := NewHarvester(10, &stubClient{}, stubFactory(primary), nil)
	region := twoProviderRegion()
	region.Providers = region.Providers[:1]
	block, stats := h.Category(context.Background(), region, "Cafes")

	require.Len(t, block.Records, 1)
	assert.Equal(t, 3, stats.Listings)
	assert.Equal(t, 1, stats.Drops[models.DropNoName])
	assert.Equal(t, 1, stats.Drops[models.DropNoEmail])
}

func TestCategory_ProviderFailureFallsThrough(t *testing.T) {
	primary := &stubExtractor{kind: models.YellowPagesUS}
	fallback := &stubExtractor{kind: models.Yelp, outcomes: validN("Fitness Centers", 2)}

	client := &stubClient{fail: map[string]error{
		primary.SearchURL(models.Region{}, "Fitness Centers"): &fetch.Error{
			URL: "https://yellowpages-us.example.com", Cause: fetch.CauseStatus, Status: 503,
		},
	}}

	h := NewHarvester(10, client, stubFactory(primary, fallback), nil)
	block, stats := h.Category(context.Background(), twoProviderRegion(), "Fitness Centers")

	require.Len(t, block.Records, 2)
	assert.Equal(t, 2, stats.ProvidersTried)
	assert.Equal(t, 0, primary.calls, "a dead search page never reaches extraction")
	assert.Equal(t, 1, fallback.calls)
}

func TestCategory_ExtractorErrorKeepsEarlierListings(t *testing.T) {
	primary := &stubExtractor{
		kind:     models.YellowPagesUS,
		outcomes: []extract.Outcome{valid("Harvest Kitchen", "Catering Services")},
		err:      fmt.Errorf("parse yellowpages-us page: truncated"),
	}
	fallback := &stubExtractor{kind: models.Yelp, outcomes: []extract.Outcome{
		valid("Backup Banquets", "Catering Services"),
	}}

	h := NewHarvester(10, &stubClient{}, stubFactory(primary, fallback), nil)
	block, _ := h.Category(context.Background(), twoProviderRegion(), "Catering Services")

	require.Len(t, block.Records, 2)
	assert.Equal(t, "Harvest Kitchen", block.Records[0].Name, "listings emitted before the failure survive")
	assert.Equal(t, "Backup Banquets", block.Records[1].Name)
}

func TestCategory_UnknownProviderKindIsSkipped(t *testing.T) {
	fallback := &stubExtractor{kind: models.Yelp, outcomes: validN("Cafes", 1)}

	region := twoProviderRegion()
	region.Providers[0].Kind = models.Manta // not in the factory

	h := NewHarvester(10, &stubClient{}, stubFactory(fallback), nil)
	block, stats := h.Category(context.Background(), region, "Cafes")

	require.Len(t, block.Records, 1)
	assert.Equal(t, 2, stats.ProvidersTried)
}
