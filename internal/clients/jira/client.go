package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/fetch"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/httpx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

const defaultPageSize = 100

// Client pulls issues through Jira Cloud's search API. Jira paginates by
// startAt offset; the offset is carried as the opaque cursor so callers see
// the same pagination contract as every other source.
type Client struct {
	log        *logger.Logger
	baseURL    string
	email      string
	token      string
	jql        string
	pageSize   int
	httpClient *http.Client
	maxRetries int
}

// New builds a fetcher for one integration. baseURL is the site root, e.g.
// https://acme.atlassian.net. Jira Cloud authenticates with email + API
// token over basic auth.
func New(log *logger.Logger, integ *types.Integration, token string) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(integ.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("jira integration has no base url")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("jira integration has no token")
	}
	return &Client{
		log:        log.With("client", "jira"),
		baseURL:    baseURL,
		email:      strings.TrimSpace(integ.AuthEmail),
		token:      strings.TrimSpace(token),
		jql:        strings.TrimSpace(integ.SearchQuery),
		pageSize:   defaultPageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
	}, nil
}

type issuePayload struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string   `json:"summary"`
		Description string   `json:"description"`
		Labels      []string `json:"labels"`
		Created     string   `json:"created"`
		Updated     string   `json:"updated"`
		Status      *struct {
			Name string `json:"name"`
		} `json:"status"`
		Priority *struct {
			Name string `json:"name"`
		} `json:"priority"`
		IssueType *struct {
			Name string `json:"name"`
		} `json:"issuetype"`
		Project *struct {
			Key string `json:"key"`
		} `json:"project"`
		Assignee *struct {
			DisplayName  string `json:"displayName"`
			EmailAddress string `json:"emailAddress"`
		} `json:"assignee"`
		Reporter *struct {
			DisplayName  string `json:"displayName"`
			EmailAddress string `json:"emailAddress"`
		} `json:"reporter"`
	} `json:"fields"`
}

// Jira Cloud renders timestamps with a millisecond fraction and a
// colon-less zone offset, which RFC 3339 parsing rejects.
const jiraTimeLayout = "2006-01-02T15:04:05.000-0700"

func parseJiraTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{jiraTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

type searchResponse struct {
	StartAt    int            `json:"startAt"`
	MaxResults int            `json:"maxResults"`
	Total      int            `json:"total"`
	Issues     []issuePayload `json:"issues"`
}

// FetchPage requests one page of the JQL search. cursor is the stringified
// startAt offset; "" starts at 0.
func (c *Client) FetchPage(ctx context.Context, cursor string) (*fetch.Page, error) {
	startAt := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid jira cursor %q", cursor)
		}
		startAt = n
	}

	jql := c.jql
	if jql == "" {
		jql = "order by created desc"
	}
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("startAt", strconv.Itoa(startAt))
	q.Set("maxResults", strconv.Itoa(c.pageSize))

	var resp searchResponse
	// v2 keeps description as plain text instead of the v3 document format
	if err := c.do(ctx, "/rest/api/2/search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	page := &fetch.Page{Items: make([]fetch.ExternalRecord, 0, len(resp.Issues))}
	for _, issue := range resp.Issues {
		page.Items = append(page.Items, c.normalize(issue))
	}
	next := startAt + len(resp.Issues)
	if len(resp.Issues) > 0 && next < resp.Total {
		page.NextCursor = strconv.Itoa(next)
	}
	return page, nil
}

func (c *Client) normalize(issue issuePayload) fetch.ExternalRecord {
	f := issue.Fields
	rec := fetch.ExternalRecord{
		SourceID:    issue.Key,
		Title:       f.Summary,
		Description: f.Description,
		Labels:      f.Labels,
		URL:         c.baseURL + "/browse/" + issue.Key,
		CreatedAt:   parseJiraTime(f.Created),
		UpdatedAt:   parseJiraTime(f.Updated),
	}
	if f.Status != nil {
		rec.Status = strings.ToLower(f.Status.Name)
	}
	if f.Priority != nil {
		rec.Priority = strings.ToLower(f.Priority.Name)
	}
	if f.Assignee != nil {
		rec.AssigneeName = f.Assignee.DisplayName
		rec.AssigneeEmail = f.Assignee.EmailAddress
	}
	if f.Reporter != nil {
		rec.ReporterName = f.Reporter.DisplayName
		rec.ReporterEmail = f.Reporter.EmailAddress
	}
	system := map[string]any{}
	if f.IssueType != nil && f.IssueType.Name != "" {
		system["issue_type"] = f.IssueType.Name
	}
	if f.Project != nil && f.Project.Key != "" {
		system["project_key"] = f.Project.Key
	}
	if len(system) > 0 {
		rec.SystemFields = system
	}
	return rec
}

func (c *Client) doOnce(ctx context.Context, path string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, nil, err
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &fetch.Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	return resp, raw, nil
}

func (c *Client) do(ctx context.Context, path string, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, path)
		if err == nil {
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("jira decode error: %w", uErr)
			}
			return nil
		}

		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("jira request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		if err := httpx.SleepCtx(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}
