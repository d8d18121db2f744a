package extract

import (
	"bytes"
	"context"
	"github.com/PuerkitoBio/goquery"
	"github.com/miekg/dns"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"leadharvest/internal/fetch"
	"strings"
	"sync"
	"time"
)

// EmailHunter resolves a business email from its own website: one extra
// fetch per site, searched for a visible address or a mailto: link. Results
// are memoized for the run, so businesses sharing a site cost one fetch.
type EmailHunter struct {
	fetcher  fetch.Client
	verifyMX bool
	log      *zap.Logger

	flight singleflight.Group
	mu     sync.Mutex
	memo   map[string]string // site URL -> email, "" records a known miss
}

func NewEmailHunter(fetcher fetch.Client, verifyMX bool, log *zap.Logger) *EmailHunter {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmailHunter{
		fetcher:  fetcher,
		verifyMX: verifyMX,
		log:      log,
		memo:     make(map[string]string),
	}
}

// FromWebsite fetches the site once and searches its content. Failure of
// any kind is just "no email". Concurrent lookups of the same site share a
// single fetch, so the at-most-once cost holds even when regions fan out.
func (h *EmailHunter) FromWebsite(ctx context.Context, site string) string {
	site = NormalizeWebsite(site)
	if site == "" {
		return ""
	}

	h.mu.Lock()
	email, seen := h.memo[site]
	h.mu.Unlock()
	if seen {
		return email
	}

	v, _, _ := h.flight.Do(site, func() (interface{}, error) {
		email := ""
		if body, err := h.fetcher.Get(ctx, site); err == nil {
			email = EmailFromPage(body)
			if email != "" && !h.Verify(email) {
				h.log.Debug("address failed MX check", zap.String("email", email), zap.String("site", site))
				email = ""
			}
		}

		h.mu.Lock()
		h.memo[site] = email
		h.mu.Unlock()
		return email, nil
	})
	return v.(string)
}

// Verify reports whether the address's domain publishes MX records. Always
// true when verification is off.
func (h *EmailHunter) Verify(email string) bool {
	if !h.verifyMX {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return hasMXRecords(email[at+1:])
}

// hasMXRecords asks public resolvers directly; the process may run where
// /etc/resolv.conf is unreliable.
func hasMXRecords(domain string) bool {
	c := new(dns.Client)
	c.Timeout = 5 * time.Second

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeMX)

	for _, server := range []string{"8.8.8.8:53", "1.1.1.1:53"} {
		in, _, err := c.Exchange(m, server)
		if err != nil {
			continue
		}
		if len(in.Answer) > 0 {
			return true
		}
	}
	return false
}

// EmailFromPage searches the page's visible text first, then mailto: link
// targets. Script and style bodies are skipped, so a bundled asset name
// like image@2x.png cannot become an address.
func EmailFromPage(body []byte) string {
	if text, err := VisibleText(bytes.NewReader(body)); err == nil {
		if email := FindEmail(text); email != "" {
			return email
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.HasPrefix(strings.ToLower(href), "mailto:") {
			if email := FindEmail(href); email != "" {
				found = email
				return false
			}
		}
		return true
	})
	return found
}

// NormalizeWebsite makes a listing's website link fetchable. Relative paths
// point back into the provider, not to the business's own site, so they are
// discarded.
func NormalizeWebsite(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return raw
	case strings.HasPrefix(raw, "/"):
		return ""
	default:
		return "https://" + raw
	}
}
