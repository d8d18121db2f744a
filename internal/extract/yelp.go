package extract

import (
	"bytes"
	"context"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"leadharvest/pkg/models"
	"net/url"
	"regexp"
	"strings"
)

// yelp reads yelp.com / yelp.ca result pages. Result cards carry little
// beyond the name, so each listing's own business page is fetched for the
// remaining fields. That costs one extra request per listing.
type yelp struct {
	base string
	deps Deps
}

// Street-suffix hint for pages that render the address in a plain <p>.
var yelpAddressHint = regexp.MustCompile(`\d+.*(?:St|Ave|Rd|Blvd|Dr|Ln)`)

func (y *yelp) Kind() models.ProviderKind { return models.Yelp }

func (y *yelp) SearchURL(region models.Region, category string) string {
	q := url.Values{}
	q.Set("find_desc", category)
	q.Set("find_loc", region.Name)
	return y.base + "/search?" + q.Encode()
}

func (y *yelp) Extract(ctx context.Context, page []byte, category string, emit Emit) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return fmt.Errorf("parse %s page: %w", y.Kind(), err)
	}

	cards := doc.Find(`div[data-testid="serp-ia-card"]`)
	if cards.Length() == 0 {
		cards = doc.Find("li.regular-search-result")
	}

	var stopErr error
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= y.deps.Cap {
			return false
		}
		if err := ctx.Err(); err != nil {
			stopErr = err
			return false
		}

		name := firstText(card, "a.css-1m051bw", "span.css-1egxyvc")
		if name == "" {
			return emit(Outcome{Drop: models.DropNoName})
		}

		var d yelpDetails
		if link := firstHref(card, "a.css-1m051bw", `a[href^="/biz"]`); link != "" {
			d = y.details(ctx, link)
		}

		return emit(Outcome{Candidate: models.Candidate{
			Name:     name,
			Email:    d.email,
			Phone:    d.phone,
			Website:  d.website,
			Address:  d.address,
			Category: category,
			Provider: y.Kind(),
		}})
	})
	return stopErr
}

type yelpDetails struct {
	email, phone, website, address string
}

// details fetches the listing's business page and pulls the remaining
// fields from it. A failed fetch or parse leaves them all empty, which
// downstream validation turns into a drop.
func (y *yelp) details(ctx context.Context, link string) yelpDetails {
	var d yelpDetails

	if strings.HasPrefix(link, "/") {
		link = y.base + link
	}
	body, err := y.deps.Fetcher.Get(ctx, link)
	if err != nil {
		return d
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return d
	}

	d.email = EmailFromPage(body)
	if d.email != "" && !y.deps.verified(d.email) {
		d.email = ""
	}

	if text, err := VisibleText(bytes.NewReader(body)); err == nil {
		d.phone = FindPhone(text)
	}

	// The business's own site is linked by text, or through the tracked
	// redirect.
	d.website = hrefByText(doc.Selection, websiteWord)
	if d.website == "" {
		d.website = firstHref(doc.Selection, `a[href*="biz_redir"]`)
	}

	if d.address = firstText(doc.Selection, "address"); d.address == "" {
		d.address = textMatching(doc.Selection, "p", yelpAddressHint)
	}

	if d.email == "" && y.deps.FollowWebsite && y.deps.Emails != nil && d.website != "" {
		d.email = y.deps.Emails.FromWebsite(ctx, d.website)
	}
	return d
}

// textMatching returns the cleaned text of the first element whose text
// matches the pattern.
func textMatching(s *goquery.Selection, selector string, re *regexp.Regexp) string {
	var out string
	s.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if text := CleanText(el.Text()); text != "" && re.MatchString(text) {
			out = text
			return false
		}
		return true
	})
	return out
}
