package fetch

import (
	"context"
	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Product token used when matching robots.txt groups.
const robotsAgent = "leadharvest"

// Domains enforces per-host politeness: a rate limiter floor per host plus a
// cached robots.txt verdict. Hosts never share a limiter, so harvesting two
// regions concurrently cannot collapse their pacing.
type Domains struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	robots   map[string]*robotstxt.Group

	interval time.Duration
	respect  bool
	log      *zap.Logger
}

func NewDomains(interval time.Duration, respectRobots bool, log *zap.Logger) *Domains {
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Domains{
		limiters: make(map[string]*rate.Limiter),
		robots:   make(map[string]*robotstxt.Group),
		interval: interval,
		respect:  respectRobots,
		log:      log,
	}
}

// Wait blocks until the host's limiter admits one more request.
func (d *Domains) Wait(ctx context.Context, targetURL string) error {
	u, err := url.Parse(targetURL)
	if err != nil {
		return err
	}

	d.mu.Lock()
	limiter, exists := d.limiters[u.Host]
	if !exists {
		// Burst of 1: the first request goes through, the rest keep spacing.
		limiter = rate.NewLimiter(rate.Every(d.interval), 1)
		d.limiters[u.Host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// Allowed consults the host's robots.txt, fetching and caching it on first
// contact. A missing or unparseable robots.txt counts as allowed.
func (d *Domains) Allowed(link string) bool {
	if !d.respect {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	group, exists := d.robots[u.Host]
	if !exists {
		// Fetching inside the lock keeps first contact per host single-flight.
		resp, err := http.Get(u.Scheme + "://" + u.Host + "/robots.txt")
		if err != nil || resp.StatusCode != 200 {
			if resp != nil {
				resp.Body.Close()
			}
			d.robots[u.Host] = nil
			return true
		}

		data, err := robotstxt.FromResponse(resp)
		resp.Body.Close()
		if err != nil {
			d.robots[u.Host] = nil
			return true
		}
		group = data.FindGroup(robotsAgent)
		d.robots[u.Host] = group
	}

	if group == nil {
		return true
	}
	if !group.Test(u.Path) {
		d.log.Debug("robots.txt disallows path", zap.String("host", u.Host), zap.String("path", u.Path))
		return false
	}
	return true
}
