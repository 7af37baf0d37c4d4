package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAuthFailed marks a 401/403 from the upstream API. Auth failures are
// surfaced distinctly so the sync log can say "fix your token" instead of
// "try again later".
var ErrAuthFailed = errors.New("external system rejected credentials")

// Error is a typed HTTP-level fetch failure.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("fetch failed (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch failed (%d)", e.StatusCode)
}

func (e *Error) HTTPStatusCode() int { return e.StatusCode }

func (e *Error) Unwrap() error {
	if e.StatusCode == 401 || e.StatusCode == 403 {
		return ErrAuthFailed
	}
	return nil
}

// ExternalRecord is the normalized form of one upstream ticket/issue.
// SystemFields carries system-owned metadata (e.g. Zendesk's via.channel);
// CustomFields carries source-side custom field values. The reconciler
// merges both under the record's custom_fields blob.
type ExternalRecord struct {
	SourceID      string
	Title         string
	Description   string
	Status        string
	Priority      string
	AssigneeName  string
	AssigneeEmail string
	ReporterName  string
	ReporterEmail string
	Labels        []string
	SystemFields  map[string]any
	CustomFields  map[string]any
	URL           string
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
}

// Page is one page of upstream results. An empty NextCursor means the
// provider has no further pages.
type Page struct {
	Items      []ExternalRecord
	NextCursor string
}

// Fetcher pulls the current upstream state one page at a time. cursor is
// opaque; pass "" for the first page.
type Fetcher interface {
	FetchPage(ctx context.Context, cursor string) (*Page, error)
}
