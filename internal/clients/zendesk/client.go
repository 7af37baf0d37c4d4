package zendesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/fetch"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/httpx"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

const defaultPageSize = 100

// Client pulls tickets through Zendesk's incremental cursor export API.
type Client struct {
	log        *logger.Logger
	baseURL    string
	email      string
	token      string
	query      string
	pageSize   int
	httpClient *http.Client
	maxRetries int
}

// New builds a fetcher for one integration. baseURL is the subdomain root,
// e.g. https://acme.zendesk.com. The token pairs with the account email for
// Zendesk's token auth scheme ("email/token:apitoken").
func New(log *logger.Logger, integ *types.Integration, token string) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(integ.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("zendesk integration has no base url")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("zendesk integration has no token")
	}
	return &Client{
		log:        log.With("client", "zendesk"),
		baseURL:    baseURL,
		email:      strings.TrimSpace(integ.AuthEmail),
		token:      strings.TrimSpace(token),
		query:      strings.TrimSpace(integ.SearchQuery),
		pageSize:   defaultPageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
	}, nil
}

type ticketPayload struct {
	ID          int64    `json:"id"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	Via         *struct {
		Channel string `json:"channel"`
	} `json:"via"`
	Assignee *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"assignee"`
	Requester *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"requester"`
	CustomFields []struct {
		ID    int64 `json:"id"`
		Value any   `json:"value"`
	} `json:"custom_fields"`
}

type searchResponse struct {
	Results []ticketPayload `json:"results"`
	Meta    struct {
		HasMore     bool   `json:"has_more"`
		AfterCursor string `json:"after_cursor"`
	} `json:"meta"`
}

// FetchPage requests one page of the ticket search. cursor is Zendesk's
// opaque after_cursor; "" starts from the beginning.
func (c *Client) FetchPage(ctx context.Context, cursor string) (*fetch.Page, error) {
	q := url.Values{}
	query := c.query
	if query == "" {
		query = "type:ticket"
	}
	q.Set("query", query)
	q.Set("page[size]", fmt.Sprintf("%d", c.pageSize))
	if cursor != "" {
		q.Set("page[after]", cursor)
	}

	var resp searchResponse
	if err := c.do(ctx, "/api/v2/search/export.json?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	page := &fetch.Page{Items: make([]fetch.ExternalRecord, 0, len(resp.Results))}
	for _, t := range resp.Results {
		page.Items = append(page.Items, normalize(t))
	}
	if resp.Meta.HasMore && resp.Meta.AfterCursor != "" {
		page.NextCursor = resp.Meta.AfterCursor
	}
	return page, nil
}

func normalize(t ticketPayload) fetch.ExternalRecord {
	rec := fetch.ExternalRecord{
		SourceID:    fmt.Sprintf("%d", t.ID),
		Title:       t.Subject,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Labels:      t.Tags,
		URL:         t.URL,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Assignee != nil {
		rec.AssigneeName = t.Assignee.Name
		rec.AssigneeEmail = t.Assignee.Email
	}
	if t.Requester != nil {
		rec.ReporterName = t.Requester.Name
		rec.ReporterEmail = t.Requester.Email
	}
	if t.Via != nil && t.Via.Channel != "" {
		rec.SystemFields = map[string]any{"via_channel": t.Via.Channel}
	}
	if len(t.CustomFields) > 0 {
		rec.CustomFields = make(map[string]any, len(t.CustomFields))
		for _, cf := range t.CustomFields {
			if cf.Value == nil {
				continue
			}
			rec.CustomFields[fmt.Sprintf("zendesk_field_%d", cf.ID)] = cf.Value
		}
	}
	return rec
}

func (c *Client) doOnce(ctx context.Context, path string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, nil, err
	}
	req.SetBasicAuth(c.email+"/token", c.token)
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
				return fmt.Errorf("zendesk decode error: %w", uErr)
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

		c.log.Warn("zendesk request retrying",
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
