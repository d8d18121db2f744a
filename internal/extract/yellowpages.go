package extract

import (
	"context"
	"leadharvest/pkg/models"
	"net/url"
)

// yellowPagesUS reads yellowpages.com result pages: one div.info card per
// business.
type yellowPagesUS struct {
	base string
	deps Deps
}

var yellowPagesUSRules = cardRules{
	card:    "div.info",
	name:    []string{"a.business-name", "h2", "h3"},
	phone:   []string{"div.phones.phone.primary", "div.phone"},
	website: []string{"a.track-visit-website", "a[href]"},
	address: []string{"div.street-address", "span.street-address"},
}

func (y *yellowPagesUS) Kind() models.ProviderKind { return models.YellowPagesUS }

func (y *yellowPagesUS) SearchURL(region models.Region, category string) string {
	q := url.Values{}
	q.Set("search_terms", category)
	q.Set("geo_location_terms", region.Name+", "+region.Country)
	return y.base + "/search?" + q.Encode()
}

func (y *yellowPagesUS) Extract(ctx context.Context, page []byte, category string, emit Emit) error {
	return extractCards(ctx, y.deps, y.Kind(), yellowPagesUSRules, page, category, emit)
}

// yellowPagesCA reads yellowpages.ca result pages. The markup is BEM-style;
// the website link sometimes has no class and is found by its text.
type yellowPagesCA struct {
	base string
	deps Deps
}

var yellowPagesCARules = cardRules{
	card:          "div.listing",
	cardAlt:       "div.listing__content",
	name:          []string{"h3.listing__name", "a.listing__name--link"},
	phone:         []string{"a.phone", "div.listing__phone"},
	website:       []string{"a.listing__website"},
	address:       []string{"div.listing__address", "span.address"},
	websiteByText: true,
}

func (y *yellowPagesCA) Kind() models.ProviderKind { return models.YellowPagesCA }

func (y *yellowPagesCA) SearchURL(region models.Region, category string) string {
	return y.base + "/search/si/1/" + url.QueryEscape(category) + "/" + url.QueryEscape(region.Name+", "+region.Country)
}

func (y *yellowPagesCA) Extract(ctx context.Context, page []byte, category string, emit Emit) error {
	return extractCards(ctx, y.deps, y.Kind(), yellowPagesCARules, page, category, emit)
}
