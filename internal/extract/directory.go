package extract

import (
	"context"
	"leadharvest/pkg/models"
	"net/url"
)

// manta reads manta.com result pages. It is a low-priority fallback, so its
// selectors are kept loose.
type manta struct {
	base string
	deps Deps
}

var mantaRules = cardRules{
	card:          "div.serp-card",
	cardAlt:       "div.card",
	name:          []string{"h2 a", "h2", "h3"},
	phone:         []string{"span.phone", "div.phone"},
	website:       []string{"a.website"},
	address:       []string{"div.address", "span.address"},
	websiteByText: true,
}

func (m *manta) Kind() models.ProviderKind { return models.Manta }

func (m *manta) SearchURL(region models.Region, category string) string {
	q := url.Values{}
	q.Set("search", category)
	q.Set("search_location", region.Name+", "+region.Country)
	return m.base + "/search?" + q.Encode()
}

func (m *manta) Extract(ctx context.Context, page []byte, category string, emit Emit) error {
	return extractCards(ctx, m.deps, m.Kind(), mantaRules, page, category, emit)
}

// canada411 reads canada411.ca result pages. The site shares its search URL
// shape with yellowpages.ca.
type canada411 struct {
	base string
	deps Deps
}

var canada411Rules = cardRules{
	card:          "div.c411Listing",
	cardAlt:       "div.listing",
	name:          []string{"h2.c411ListedName a", "h2.c411ListedName", "h3"},
	phone:         []string{"span.c411Phone", "div.c411Phone"},
	website:       []string{"a.c411Website"},
	address:       []string{"span.c411Address", "div.c411Address"},
	websiteByText: true,
}

func (c *canada411) Kind() models.ProviderKind { return models.Canada411 }

func (c *canada411) SearchURL(region models.Region, category string) string {
	return c.base + "/search/si/1/" + url.QueryEscape(category) + "/" + url.QueryEscape(region.Name+", "+region.Country)
}

func (c *canada411) Extract(ctx context.Context, page []byte, category string, emit Emit) error {
	return extractCards(ctx, c.deps, c.Kind(), canada411Rules, page, category, emit)
}
