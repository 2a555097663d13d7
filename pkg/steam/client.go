package steam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/Jonax/SteamBadgeScan/internal/utils"
)

const (
	DefaultBaseURL = "https://steamcommunity.com"

	USER_AGENT = "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0"

	DefaultSearchRetries = 10
)

// Config controls pacing and transport for one profile's scan.
type Config struct {
	// Profile is the public vanity ID whose badges are scanned.
	Profile string
	BaseURL string
	Proxy   string

	// DelayMin and DelayMax bound the random pause inserted after every
	// fetch. The Community site rate-bans IPs that skip it.
	DelayMin time.Duration
	DelayMax time.Duration

	// SearchRetries caps how often a busy market search is retried.
	SearchRetries int
}

// Client fetches Community pages for one profile. Every fetch goes through
// the same 1 req/s limiter plus the configured random pause.
type Client struct {
	cfg     Config
	http    *retryablehttp.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Profile == "" {
		return nil, errors.New("steam: profile ID is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.DelayMin < 0 || cfg.DelayMax < cfg.DelayMin {
		return nil, fmt.Errorf("steam: bad delay window [%s, %s]", cfg.DelayMin, cfg.DelayMax)
	}
	if cfg.SearchRetries <= 0 {
		cfg.SearchRetries = DefaultSearchRetries
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 3

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("steam: invalid proxy URL: %w", err)
		}
		retryClient.HTTPClient.Transport = &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
		}
	}

	return &Client{
		cfg:     cfg,
		http:    retryClient,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

// page is one fetched document.
type page struct {
	Body     string
	FinalURL string
	Title    string
	Status   int
}

func (c *Client) fetch(ctx context.Context, rawURL string) (*page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("Accept-Language", "en")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	p := &page{
		Body:     string(body),
		FinalURL: resp.Request.URL.String(),
		Status:   resp.StatusCode,
	}
	if title, ok := htmlTitle(p.Body); ok {
		p.Title = strings.TrimSpace(title)
	}
	utils.Log.Debugf("GET %s -> %d %q", rawURL, p.Status, p.Title)

	if err := c.pause(ctx); err != nil {
		return nil, err
	}
	if p.Status >= 400 {
		return nil, fmt.Errorf("steam: GET %s: status %d", rawURL, p.Status)
	}
	return p, nil
}

// pause sleeps a random duration within the configured window. It runs
// after every fetch, whatever the response was.
func (c *Client) pause(ctx context.Context) error {
	d := c.cfg.DelayMin
	if span := c.cfg.DelayMax - c.cfg.DelayMin; span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func htmlTitle(body string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}
	var walk func(*html.Node) (string, bool)
	walk = func(n *html.Node) (string, bool) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				return n.FirstChild.Data, true
			}
			return "", true
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if title, ok := walk(child); ok {
				return title, ok
			}
		}
		return "", false
	}
	return walk(doc)
}
