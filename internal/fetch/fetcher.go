package fetch

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"
)

// DefaultUserAgents is the identity pool used when no USER_AGENTS override
// is configured. Rotating a desktop identity is traffic shaping to avoid
// correlated blocking, not a security mechanism.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
}

// maxBodyBytes caps how much of a response we read. Directory pages are far
// smaller; this guards against endless streams.
const maxBodyBytes = 2 << 20

type Cause int

const (
	CauseTransport Cause = iota
	CauseTimeout
	CauseStatus
	CauseRobots
)

func (c Cause) String() string {
	switch c {
	case CauseTimeout:
		return "timeout"
	case CauseStatus:
		return "status"
	case CauseRobots:
		return "robots"
	default:
		return "transport"
	}
}

// Error is the failure a fetch signals. Callers treat it as "no content",
// never as fatal.
type Error struct {
	URL    string
	Cause  Cause
	Status int // set when Cause == CauseStatus
	Err    error
}

func (e *Error) Error() string {
	if e.Cause == CauseStatus {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Cause, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Cause)
}

func (e *Error) Unwrap() error { return e.Err }

// Client is the narrow boundary the rest of the pipeline sees.
type Client interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Options struct {
	Timeout    time.Duration
	DelayMin   time.Duration
	DelayMax   time.Duration
	UserAgents []string
	Delay      Delay
	Domains    *Domains
	Rand       *rand.Rand
	Logger     *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.DelayMin == 0 && o.DelayMax == 0 {
		o.DelayMin, o.DelayMax = 1*time.Second, 3*time.Second
	}
	if len(o.UserAgents) == 0 {
		o.UserAgents = DefaultUserAgents
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Delay == nil {
		// The delay guards its source with its own lock, so it cannot
		// share o.Rand with the identity pick.
		o.Delay = NewRandomDelay(rand.New(rand.NewSource(o.Rand.Int63())))
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Fetcher retrieves pages under the politeness policy: the host rate limit
// and robots verdict first, then a random in-window delay, a rotating
// identity header, and a per-request timeout.
type Fetcher struct {
	opts   Options
	client *http.Client

	mu sync.Mutex // guards opts.Rand
}

func New(opts Options) *Fetcher {
	opts = opts.withDefaults()
	return &Fetcher{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

func (f *Fetcher) Get(ctx context.Context, targetURL string) ([]byte, error) {
	if f.opts.Domains != nil {
		if !f.opts.Domains.Allowed(targetURL) {
			return f.fail(&Error{URL: targetURL, Cause: CauseRobots})
		}
		if err := f.opts.Domains.Wait(ctx, targetURL); err != nil {
			return f.fail(&Error{URL: targetURL, Cause: CauseTransport, Err: err})
		}
	}

	if err := f.opts.Delay.Wait(ctx, f.opts.DelayMin, f.opts.DelayMax); err != nil {
		return f.fail(&Error{URL: targetURL, Cause: CauseTransport, Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return f.fail(&Error{URL: targetURL, Cause: CauseTransport, Err: err})
	}
	req.Header.Set("User-Agent", f.userAgent())

	f.opts.Logger.Info("fetching", zap.String("url", targetURL))

	resp, err := f.client.Do(req)
	if err != nil {
		return f.fail(&Error{URL: targetURL, Cause: classify(err), Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return f.fail(&Error{URL: targetURL, Cause: CauseStatus, Status: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return f.fail(&Error{URL: targetURL, Cause: classify(err), Err: err})
	}
	return body, nil
}

func (f *Fetcher) userAgent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts.UserAgents[f.opts.Rand.Intn(len(f.opts.UserAgents))]
}

func (f *Fetcher) fail(e *Error) ([]byte, error) {
	f.opts.Logger.Warn("fetch failed",
		zap.String("url", e.URL),
		zap.String("cause", e.Cause.String()),
		zap.Error(e.Err),
	)
	return nil, e
}

// classify splits timeouts from other transport failures so logs can tell
// the difference.
func classify(err error) Cause {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return CauseTimeout
	}
	return CauseTransport
}
