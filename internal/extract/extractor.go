package extract

import (
	"bytes"
	"context"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"leadharvest/internal/fetch"
	"leadharvest/pkg/models"
	"regexp"
)

// Outcome is the per-listing extraction result: a usable candidate, or the
// reason the listing was dropped. Drops stay observable instead of being
// swallowed.
type Outcome struct {
	Candidate models.Candidate
	Drop      models.DropReason
}

// Emit receives listing outcomes in page order. Returning false stops the
// extractor immediately; remaining listings, and their website lookups, are
// skipped.
type Emit func(Outcome) bool

// Extractor is one provider's page-structure knowledge. Variants share the
// output contract and differ only in selectors and search URL shape.
type Extractor interface {
	Kind() models.ProviderKind
	SearchURL(region models.Region, category string) string
	Extract(ctx context.Context, page []byte, category string, emit Emit) error
}

// Deps is what every variant needs besides its selectors.
type Deps struct {
	Fetcher fetch.Client
	Emails  *EmailHunter

	// FollowWebsite allows one extra fetch of a listing's own website when
	// the card text shows no email.
	FollowWebsite bool

	// Cap bounds how many listings are examined per page.
	Cap int

	Log *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Cap <= 0 {
		d.Cap = 15
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return d
}

// New builds the extractor variant for a provider spec.
func New(spec models.ProviderSpec, deps Deps) (Extractor, error) {
	deps = deps.withDefaults()
	switch spec.Kind {
	case models.YellowPagesUS:
		return &yellowPagesUS{base: spec.BaseURL, deps: deps}, nil
	case models.YellowPagesCA:
		return &yellowPagesCA{base: spec.BaseURL, deps: deps}, nil
	case models.Yelp:
		return &yelp{base: spec.BaseURL, deps: deps}, nil
	case models.Manta:
		return &manta{base: spec.BaseURL, deps: deps}, nil
	case models.Canada411:
		return &canada411{base: spec.BaseURL, deps: deps}, nil
	default:
		return nil, fmt.Errorf("no extractor for provider kind %q", spec.Kind)
	}
}

func (d Deps) verified(email string) bool {
	if d.Emails == nil {
		return true
	}
	return d.Emails.Verify(email)
}

// resolveEmail applies the uniform email policy: the listing's own text
// first, then one fetch of the linked website when allowed.
func (d Deps) resolveEmail(ctx context.Context, listingText, website string) string {
	if email := FindEmail(listingText); email != "" && d.verified(email) {
		return email
	}
	if !d.FollowWebsite || d.Emails == nil || website == "" {
		return ""
	}
	return d.Emails.FromWebsite(ctx, website)
}

// cardRules is the selector set a card-based variant plugs into the shared
// extraction loop.
type cardRules struct {
	card    string
	cardAlt string // tried only when card matches nothing
	name    []string
	phone   []string
	website []string
	address []string

	// websiteByText falls back to the first link whose visible text says
	// "website", for markups that carry no stable class on that link.
	websiteByText bool
}

var websiteWord = regexp.MustCompile(`(?i)website`)

// extractCards runs the shared card loop: select listing cards, pull fields
// with the variant's selectors, resolve the email, and emit one outcome per
// listing.
func extractCards(ctx context.Context, deps Deps, kind models.ProviderKind, rules cardRules, page []byte, category string, emit Emit) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return fmt.Errorf("parse %s page: %w", kind, err)
	}

	cards := doc.Find(rules.card)
	if cards.Length() == 0 && rules.cardAlt != "" {
		cards = doc.Find(rules.cardAlt)
	}

	var stopErr error
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= deps.Cap {
			return false
		}
		if err := ctx.Err(); err != nil {
			stopErr = err
			return false
		}

		name := firstText(card, rules.name...)
		if name == "" {
			return emit(Outcome{Drop: models.DropNoName})
		}

		website := firstHref(card, rules.website...)
		if website == "" && rules.websiteByText {
			website = hrefByText(card, websiteWord)
		}

		phoneText := firstText(card, rules.phone...)
		if phoneText == "" {
			phoneText = card.Text()
		}

		return emit(Outcome{Candidate: models.Candidate{
			Name:     name,
			Email:    deps.resolveEmail(ctx, card.Text(), website),
			Phone:    FindPhone(phoneText),
			Website:  website,
			Address:  firstText(card, rules.address...),
			Category: category,
			Provider: kind,
		}})
	})
	return stopErr
}

// firstText returns the cleaned text of the first selector that matches.
func firstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		el := s.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if text := CleanText(el.Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstHref returns the href of the first selector that matches.
func firstHref(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		el := s.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if href, ok := el.Attr("href"); ok && href != "" {
			return href
		}
	}
	return ""
}

// hrefByText returns the href of the first link whose visible text matches.
func hrefByText(s *goquery.Selection, re *regexp.Regexp) string {
	var href string
	s.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if re.MatchString(CleanText(a.Text())) {
			href, _ = a.Attr("href")
			return false
		}
		return true
	})
	return href
}
