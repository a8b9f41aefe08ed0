package wikipedia

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/quinielamx/quiniela/internal/domain/fixture"
	"github.com/quinielamx/quiniela/internal/extract"
	"github.com/quinielamx/quiniela/internal/platform/htmltree"
	"github.com/quinielamx/quiniela/internal/platform/logging"
	"github.com/quinielamx/quiniela/internal/platform/resilience"
	"github.com/quinielamx/quiniela/internal/usecase"
)

const (
	defaultBaseURL   = "https://es.wikipedia.org/w/api.php"
	defaultPage      = "Torneo_Apertura_2024_(México)"
	defaultSection   = "13"
	defaultUserAgent = "quiniela/1.0 (fixture sync)"
	maxResponseBytes = 4 << 20
)

var errWikipediaTransient = crerr.New("wikipedia transient failure")

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	Page           string
	Section        string
	Timeout        time.Duration
	MaxRetries     int
	Extract        extract.Config
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the tournament article through the MediaWiki parse API and
// extracts the liguilla fixtures from the rendered section markup. It
// implements fixture.Source.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	page           string
	section        string
	timeout        time.Duration
	maxRetries     int
	extractCfg     extract.Config
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	page := strings.TrimSpace(cfg.Page)
	if page == "" {
		page = defaultPage
	}
	section := strings.TrimSpace(cfg.Section)
	if section == "" {
		section = defaultSection
	}

	extractCfg := cfg.Extract
	if len(extractCfg.StageKeywords) == 0 {
		extractCfg = extract.DefaultConfig(time.Now().UTC().Year())
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		page:           page,
		section:        section,
		timeout:        timeout,
		maxRetries:     max(cfg.MaxRetries, 0),
		extractCfg:     extractCfg,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type parseEnvelope struct {
	Parse struct {
		Title string `json:"title"`
		Text  struct {
			Content string `json:"*"`
		} `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

func (c *Client) Snapshot(ctx context.Context) ([]fixture.Fixture, error) {
	markup, err := c.fetchSectionHTML(ctx)
	if err != nil {
		return nil, err
	}

	root, err := htmltree.ParseFragment(markup)
	if err != nil {
		return nil, fmt.Errorf("parse section markup: %w", err)
	}

	fixtures := extract.Extract(root, c.extractCfg)
	c.logger.InfoContext(ctx, "wikipedia snapshot extracted",
		"page", c.page,
		"section", c.section,
		"fixtures", len(fixtures),
	)
	return fixtures, nil
}

func (c *Client) fetchSectionHTML(ctx context.Context) (string, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "wikipedia circuit breaker rejected request", "state", c.breaker.State())
			return "", fmt.Errorf("%w: fixture source is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	values.Set("action", "parse")
	values.Set("page", c.page)
	values.Set("section", c.section)
	values.Set("prop", "text")
	values.Set("format", "json")
	values.Set("origin", "*")
	fullURL := c.baseURL + "?" + values.Encode()

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errWikipediaTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return "", err
	}

	raw, ok := out.([]byte)
	if !ok {
		return "", fmt.Errorf("unexpected response payload type %T", out)
	}

	markup, err := decodeSectionHTML(raw)
	if err != nil {
		return "", fmt.Errorf("page %s section %s: %w", c.page, c.section, err)
	}
	return markup, nil
}

func decodeSectionHTML(raw []byte) (string, error) {
	var envelope parseEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return "", fmt.Errorf("decode parse response: %w", err)
	}
	if envelope.Error != nil {
		return "", fmt.Errorf("mediawiki error %s: %s", envelope.Error.Code, envelope.Error.Info)
	}
	if envelope.Parse.Text.Content == "" {
		return "", fmt.Errorf("mediawiki parse response held no section text")
	}

	return envelope.Parse.Text.Content, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := c.doOnce(fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !crerr.Is(err, errWikipediaTransient) {
			return nil, err
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "wikipedia request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) doOnce(fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.SetUserAgent(defaultUserAgent)

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, crerr.Wrapf(errWikipediaTransient, "send request: %v", err)
	}

	status := resp.StatusCode()
	body := resp.Body()
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxResponseBytes)
	}

	switch {
	case status >= 200 && status < 300:
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	case isRetryableStatus(status):
		return nil, crerr.Wrapf(errWikipediaTransient, "mediawiki status=%d", status)
	default:
		return nil, fmt.Errorf("mediawiki status=%d body=%s", status, abbreviateBody(body))
	}
}

func isRetryableStatus(status int) bool {
	switch status {
	case fasthttp.StatusTooManyRequests,
		fasthttp.StatusInternalServerError,
		fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable,
		fasthttp.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func abbreviateBody(body []byte) string {
	const limit = 200
	text := strings.TrimSpace(string(body))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
