// Package jira fetches cumulative flow payloads and issue details from Jira
// Cloud.
package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/boardflow/pkg/domain/ticket"
)

const (
	cfdPath     = "/rest/greenhopper/1.0/rapid/charts/cumulativeflowdiagram.json"
	issuePath   = "/rest/api/2/issue/"
	issueFields = "issuetype,summary,parent,status,resolution,updated"

	// maxBodySize caps response bodies; large boards stay well below it.
	maxBodySize = 64 << 20
)

// Credentials authenticate against Jira. An OAuth token takes precedence
// over basic authentication.
type Credentials struct {
	Email      string
	APIToken   string
	OAuthToken string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. With an OAuth token it
// becomes the base transport of the token client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithPresets sets the board presets.
func WithPresets(p map[string]Preset) Option {
	return func(cl *Client) { cl.presets = p }
}

// WithRetry sets the retry budget for each request.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(cl *Client) {
		cl.retryCfg.MaxAttempts = maxAttempts
		cl.retryCfg.InitialDelay = initialDelay
	}
}

// WithTimeout bounds each request including its retries.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// Client talks to one Jira site.
type Client struct {
	base     *url.URL
	creds    Credentials
	http     *http.Client
	presets  map[string]Preset
	retryCfg retry.Config
	timeout  time.Duration
	logger   *slog.Logger
}

// NewClient creates a client for site, which may be a bare host name
// ("acme.atlassian.net") or a URL.
func NewClient(site string, creds Credentials, opts ...Option) (*Client, error) {
	base, err := siteURL(site)
	if err != nil {
		return nil, err
	}
	if creds.OAuthToken == "" && (creds.Email == "" || creds.APIToken == "") {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		base:    base,
		creds:   creds,
		http:    &http.Client{Timeout: 60 * time.Second},
		presets: DefaultPresets(),
		retryCfg: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  500 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		timeout: 2 * time.Minute,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if creds.OAuthToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.http)
		c.http = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: creds.OAuthToken,
			TokenType:   "Bearer",
		}))
	}
	return c, nil
}

func siteURL(site string) (*url.URL, error) {
	site = strings.TrimSpace(site)
	if site == "" {
		return nil, ErrMissingSite
	}
	if !strings.Contains(site, "://") {
		site = "https://" + site
	}
	u, err := url.Parse(strings.TrimRight(site, "/"))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid jira site %q", site)
	}
	return u, nil
}

// Site returns the base URL of the Jira site.
func (c *Client) Site() string {
	return c.base.String()
}

// BoardQuery builds the cumulative flow query for boardID.
func (c *Client) BoardQuery(boardID string) url.Values {
	q := url.Values{}
	q.Set("rapidViewId", boardID)
	if p, ok := c.presets[boardID]; ok {
		p.apply(q)
	}
	return q
}

// FetchBoard returns the raw cumulative flow payload of a board.
func (c *Client) FetchBoard(ctx context.Context, boardID string) ([]byte, error) {
	c.logger.Debug("fetching cumulative flow", "board_id", boardID, "site", c.base.Host)
	return c.get(ctx, cfdPath, c.BoardQuery(boardID))
}

type issueResponse struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		IssueType *named `json:"issuetype"`
		Summary   string `json:"summary"`
		Parent    *struct {
			ID     string `json:"id"`
			Key    string `json:"key"`
			Fields *struct {
				Summary string `json:"summary"`
			} `json:"fields"`
		} `json:"parent"`
		Status     *named `json:"status"`
		Resolution *named `json:"resolution"`
		Updated    string `json:"updated"`
	} `json:"fields"`
}

type named struct {
	Name string `json:"name"`
}

func (n *named) name() string {
	if n == nil {
		return ""
	}
	return n.Name
}

// FetchTicket returns the details of one issue.
func (c *Client) FetchTicket(ctx context.Context, key string) (*ticket.Ticket, error) {
	q := url.Values{}
	q.Set("fields", issueFields)
	data, err := c.get(ctx, issuePath+url.PathEscape(key), q)
	if err != nil {
		return nil, err
	}

	var resp issueResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode issue %s: %w", key, err)
	}

	t := &ticket.Ticket{
		Type:       resp.Fields.IssueType.name(),
		Key:        resp.Key,
		ID:         resp.ID,
		Summary:    resp.Fields.Summary,
		Status:     resp.Fields.Status.name(),
		Resolution: resp.Fields.Resolution.name(),
	}
	if p := resp.Fields.Parent; p != nil {
		t.ParentID = p.ID
		t.ParentKey = p.Key
		if p.Fields != nil {
			t.ParentSummary = p.Fields.Summary
		}
	}
	if resp.Fields.Updated != "" {
		updated, err := parseTimestamp(resp.Fields.Updated)
		if err != nil {
			c.logger.Debug("unparseable updated timestamp", "key", key, "value", resp.Fields.Updated)
		} else {
			t.Updated = updated
		}
	}
	return t, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05.000-0700", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

type response struct {
	status int
	body   []byte
}

// get performs a GET with retry on transport failures, 429 and 5xx. Other
// non-2xx responses fail immediately with an *APIError.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()
	target := u.String()

	r := retry.New[response](c.retryCfg)
	t := timeout.New[response](timeout.Config{DefaultTimeout: c.timeout})

	resp, err := t.Execute(ctx, c.timeout, func(ctx context.Context) (response, error) {
		return r.Do(ctx, func(ctx context.Context) (response, error) {
			res, err := c.do(ctx, target)
			if err != nil {
				c.logger.Debug("jira request failed", "url", target, "error", err)
				return response{}, err
			}
			if apiErr := (&APIError{StatusCode: res.status}); apiErr.retryable() {
				apiErr.URL, apiErr.Body = target, string(res.body)
				c.logger.Debug("jira request will be retried", "url", target, "status", res.status)
				return response{}, apiErr
			}
			return res, nil
		})
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}

	if resp.status < 200 || resp.status >= 300 {
		return nil, &APIError{StatusCode: resp.status, URL: target, Body: string(resp.body)}
	}
	return resp.body, nil
}

func (c *Client) do(ctx context.Context, target string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Boardflow/1.0")
	if c.creds.OAuthToken == "" {
		req.SetBasicAuth(c.creds.Email, c.creds.APIToken)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return response{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return response{}, fmt.Errorf("read response: %w", err)
	}
	return response{status: res.StatusCode, body: body}, nil
}
