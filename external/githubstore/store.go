package githubstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/quinielamx/quiniela/internal/domain/prediction"
	"github.com/quinielamx/quiniela/internal/platform/logging"
	"github.com/quinielamx/quiniela/internal/platform/resilience"
	"github.com/quinielamx/quiniela/internal/usecase"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultLabel   = "prediccion"
	perPage        = 100
	maxListPages   = 10
)

var errGitHubTransient = crerr.New("github transient failure")

type StoreConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Owner          string
	Repo           string
	Token          string
	Label          string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Store keeps predictions as labeled issues in a GitHub repository: one open
// issue per accepted prediction, closing the issue retracts it. The issue
// number doubles as the prediction reference.
type Store struct {
	httpClient     *http.Client
	baseURL        string
	owner          string
	repo           string
	token          string
	label          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewStore(cfg StoreConfig) (*Store, error) {
	owner := strings.TrimSpace(cfg.Owner)
	repo := strings.TrimSpace(cfg.Repo)
	if owner == "" || repo == "" {
		return nil, crerr.New("github store requires an owner and a repository")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	label := strings.TrimSpace(cfg.Label)
	if label == "" {
		label = defaultLabel
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Store{
		httpClient:     httpClient,
		baseURL:        baseURL,
		owner:          owner,
		repo:           repo,
		token:          strings.TrimSpace(cfg.Token),
		label:          label,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

type issueBody struct {
	Participant string `json:"participant"`
	FixtureID   string `json:"fixtureId"`
	HomeGoals   int    `json:"homeGoals"`
	AwayGoals   int    `json:"awayGoals"`
	SubmittedAt string `json:"submittedAt"`
}

type issueModel struct {
	Number int    `json:"number"`
	State  string `json:"state"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func (s *Store) List(ctx context.Context) ([]prediction.Prediction, error) {
	out := make([]prediction.Prediction, 0, perPage)

	for page := 1; page <= maxListPages; page++ {
		path := fmt.Sprintf("/repos/%s/%s/issues?labels=%s&state=open&per_page=%d&page=%d",
			s.owner, s.repo, s.label, perPage, page)

		var issues []issueModel
		if err := s.doJSON(ctx, http.MethodGet, path, nil, &issues); err != nil {
			return nil, fmt.Errorf("list prediction issues: %w", err)
		}

		for _, issue := range issues {
			p, ok := s.fromIssue(ctx, issue)
			if !ok {
				continue
			}
			out = append(out, p)
		}

		if len(issues) < perPage {
			break
		}
	}

	return out, nil
}

func (s *Store) Create(ctx context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	body, err := sonic.Marshal(issueBody{
		Participant: p.Participant,
		FixtureID:   p.FixtureID,
		HomeGoals:   p.HomeGoals,
		AwayGoals:   p.AwayGoals,
		SubmittedAt: p.SubmittedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("encode prediction body: %w", err)
	}

	payload, err := sonic.Marshal(map[string]any{
		"title":  issueTitle(p),
		"body":   string(body),
		"labels": []string{s.label},
	})
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("encode issue payload: %w", err)
	}

	path := fmt.Sprintf("/repos/%s/%s/issues", s.owner, s.repo)
	var created issueModel
	if err := s.doJSON(ctx, http.MethodPost, path, payload, &created); err != nil {
		return prediction.Prediction{}, fmt.Errorf("create prediction issue: %w", err)
	}

	p.Ref = strconv.Itoa(created.Number)
	return p, nil
}

func (s *Store) Retract(ctx context.Context, ref string) error {
	number, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil || number <= 0 {
		return fmt.Errorf("%w: %s", prediction.ErrRefNotFound, ref)
	}

	path := fmt.Sprintf("/repos/%s/%s/issues/%d", s.owner, s.repo, number)

	// Closing an already-closed issue would silently succeed, so the current
	// state is checked first.
	var current issueModel
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &current); err != nil {
		if crerr.Is(err, errIssueNotFound) {
			return fmt.Errorf("%w: %s", prediction.ErrRefNotFound, ref)
		}
		return fmt.Errorf("load prediction issue: %w", err)
	}
	if current.State != "open" {
		return fmt.Errorf("%w: %s", prediction.ErrRefNotFound, ref)
	}

	payload, err := sonic.Marshal(map[string]string{"state": "closed"})
	if err != nil {
		return fmt.Errorf("encode close payload: %w", err)
	}
	if err := s.doJSON(ctx, http.MethodPatch, path, payload, &current); err != nil {
		return fmt.Errorf("close prediction issue: %w", err)
	}

	return nil
}

// fromIssue decodes one labeled issue; malformed bodies are skipped with a
// warning rather than failing the whole listing.
func (s *Store) fromIssue(ctx context.Context, issue issueModel) (prediction.Prediction, bool) {
	var body issueBody
	if err := sonic.Unmarshal([]byte(issue.Body), &body); err != nil {
		s.logger.WarnContext(ctx, "skipping prediction issue with malformed body",
			"issue", issue.Number, "error", err)
		return prediction.Prediction{}, false
	}
	if body.Participant == "" || body.FixtureID == "" {
		s.logger.WarnContext(ctx, "skipping prediction issue with missing fields", "issue", issue.Number)
		return prediction.Prediction{}, false
	}

	submittedAt, err := time.Parse(time.RFC3339, body.SubmittedAt)
	if err != nil {
		submittedAt = time.Time{}
	}

	return prediction.Prediction{
		Ref:         strconv.Itoa(issue.Number),
		Participant: body.Participant,
		FixtureID:   body.FixtureID,
		HomeGoals:   body.HomeGoals,
		AwayGoals:   body.AwayGoals,
		SubmittedAt: submittedAt.UTC(),
	}, true
}

var errIssueNotFound = crerr.New("issue not found")

func (s *Store) doJSON(ctx context.Context, method, path string, payload []byte, target any) error {
	if s.circuitEnabled {
		if err := s.breaker.Allow(); err != nil {
			s.logger.WarnContext(ctx, "github circuit breaker rejected request", "state", s.breaker.State())
			return fmt.Errorf("%w: prediction store is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	raw, err := s.executeRequest(ctx, method, s.baseURL+path, payload)
	if s.circuitEnabled {
		if err != nil && crerr.Is(err, errGitHubTransient) {
			s.breaker.RecordFailure()
		} else {
			s.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return err
	}

	if target == nil || len(raw) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode github response: %w", err)
	}

	return nil
}

func issueTitle(p prediction.Prediction) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(p.Participant)
	_, _ = buf.WriteString(": ")
	_, _ = buf.WriteString(p.FixtureID)
	_, _ = buf.WriteString(" (")
	_, _ = buf.WriteString(strconv.Itoa(p.HomeGoals))
	_ = buf.WriteByte('-')
	_, _ = buf.WriteString(strconv.Itoa(p.AwayGoals))
	_ = buf.WriteByte(')')

	return buf.String()
}

func (s *Store) executeRequest(ctx context.Context, method, fullURL string, payload []byte) ([]byte, error) {
	var body io.Reader
	if len(payload) > 0 {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(errGitHubTransient, "send request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, crerr.Wrapf(errGitHubTransient, "read response body: %v", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, errIssueNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, crerr.Wrapf(errGitHubTransient, "github status=%d", resp.StatusCode)
	default:
		return nil, fmt.Errorf("github status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
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
