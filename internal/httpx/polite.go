package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"

	"github.com/baxromumarov/trailscript/internal/urlutil"
)

var ErrRobotsDisallowed = errors.New("blocked by robots.txt")

// PoliteTransport is an http.RoundTripper that honours robots.txt and paces
// requests per host. Retries are left to the caller.
type PoliteTransport struct {
	base        http.RoundTripper
	ua          string
	perSecond   rate.Limit
	limiters    map[string]*rate.Limiter
	robotsCache map[string]*robotstxt.RobotsData
	mu          sync.Mutex
}

// NewPoliteTransport wraps base (http.DefaultTransport when nil). A
// requestsPerSecond of zero or less disables pacing.
func NewPoliteTransport(base http.RoundTripper, userAgent string, requestsPerSecond float64) *PoliteTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &PoliteTransport{
		base:        base,
		ua:          userAgent,
		perSecond:   limit,
		limiters:    map[string]*rate.Limiter{},
		robotsCache: map[string]*robotstxt.RobotsData{},
	}
}

func (p *PoliteTransport) limiterFor(host string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(p.perSecond, 1)
	p.limiters[host] = l
	return l
}

func (p *PoliteTransport) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	host := u.Host
	p.mu.Lock()
	if data, ok := p.robotsCache[host]; ok {
		p.mu.Unlock()
		return data, nil
	}
	p.mu.Unlock()

	robotsURL := urlutil.Origin(u) + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	if p.ua != "" {
		req.Header.Set("User-Agent", p.ua)
	}

	if err := p.limiterFor(u.Hostname()).Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := p.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.robotsCache[host] = data
	p.mu.Unlock()
	return data, nil
}

// RoundTrip executes the request respecting robots.txt and the host pace.
func (p *PoliteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if req.Header.Get("User-Agent") == "" && p.ua != "" {
		req = req.Clone(ctx)
		req.Header.Set("User-Agent", p.ua)
	}

	if !p.allowed(ctx, req.URL, req.Method) {
		return nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, req.URL)
	}
	if err := p.limiterFor(req.URL.Hostname()).Wait(ctx); err != nil {
		return nil, err
	}
	return p.base.RoundTrip(req)
}

func (p *PoliteTransport) allowed(ctx context.Context, u *url.URL, method string) bool {
	// we only read
	if !strings.EqualFold(method, http.MethodGet) && !strings.EqualFold(method, http.MethodHead) {
		return false
	}
	data, err := p.robotsFor(ctx, u)
	if err != nil {
		return true // fail open to avoid blocking everything
	}
	group := data.FindGroup(p.ua)
	if group == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}
