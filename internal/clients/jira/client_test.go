package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestFetchPageOffsetPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "ops@acme.test" || pass != "jira-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		startAt := r.URL.Query().Get("startAt")
		w.Header().Set("Content-Type", "application/json")
		switch startAt {
		case "0":
			w.Write([]byte(`{
				"startAt": 0, "maxResults": 1, "total": 2,
				"issues": [{
					"key": "PAL-1",
					"fields": {
						"summary": "Fix login",
						"labels": ["auth"],
						"created": "2024-01-02T10:15:30.000+0000",
						"updated": "2024-01-03T08:45:00.000+0100",
						"status": {"name": "In Progress"},
						"priority": {"name": "High"},
						"issuetype": {"name": "Bug"},
						"project": {"key": "PAL"},
						"assignee": {"displayName": "Dana", "emailAddress": "dana@acme.test"}
					}
				}]
			}`))
		case "1":
			w.Write([]byte(`{
				"startAt": 1, "maxResults": 1, "total": 2,
				"issues": [{"key": "PAL-2", "fields": {"summary": "Billing"}}]
			}`))
		default:
			w.Write([]byte(fmt.Sprintf(`{"startAt": %s, "total": 2, "issues": []}`, startAt)))
		}
	}))
	defer srv.Close()

	integ := &types.Integration{BaseURL: srv.URL, AuthEmail: "ops@acme.test"}
	client, err := New(testLogger(t), integ, "jira-token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	page, err := client.FetchPage(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(page.Items) != 1 || page.NextCursor != "1" {
		t.Fatalf("first page: %+v", page)
	}
	rec := page.Items[0]
	if rec.SourceID != "PAL-1" || rec.Title != "Fix login" {
		t.Fatalf("normalized record: %+v", rec)
	}
	if rec.Status != "in progress" || rec.Priority != "high" {
		t.Fatalf("status/priority not lowered: %+v", rec)
	}
	if rec.URL != srv.URL+"/browse/PAL-1" {
		t.Fatalf("url: %q", rec.URL)
	}
	if rec.SystemFields["issue_type"] != "Bug" || rec.SystemFields["project_key"] != "PAL" {
		t.Fatalf("system fields: %+v", rec.SystemFields)
	}
	// jira's offset format, not RFC 3339
	if rec.CreatedAt == nil || !rec.CreatedAt.Equal(time.Date(2024, 1, 2, 10, 15, 30, 0, time.UTC)) {
		t.Fatalf("created timestamp: %v", rec.CreatedAt)
	}
	if rec.UpdatedAt == nil || !rec.UpdatedAt.Equal(time.Date(2024, 1, 3, 7, 45, 0, 0, time.UTC)) {
		t.Fatalf("updated timestamp: %v", rec.UpdatedAt)
	}

	page, err = client.FetchPage(context.Background(), "1")
	if err != nil {
		t.Fatalf("FetchPage offset 1: %v", err)
	}
	if len(page.Items) != 1 || page.NextCursor != "" {
		t.Fatalf("last page: %+v", page)
	}
	// an issue without timestamps stays nil instead of failing the decode
	if page.Items[0].CreatedAt != nil || page.Items[0].UpdatedAt != nil {
		t.Fatalf("missing timestamps should stay nil: %+v", page.Items[0])
	}

	if _, err := client.FetchPage(context.Background(), "not-a-number"); err == nil {
		t.Fatal("expected error on malformed cursor")
	}
}

func TestParseJiraTime(t *testing.T) {
	if got := parseJiraTime("2024-01-02T10:15:30.000+0000"); got == nil || !got.Equal(time.Date(2024, 1, 2, 10, 15, 30, 0, time.UTC)) {
		t.Fatalf("jira layout: %v", got)
	}
	if got := parseJiraTime("2024-01-02T10:15:30Z"); got == nil || !got.Equal(time.Date(2024, 1, 2, 10, 15, 30, 0, time.UTC)) {
		t.Fatalf("rfc3339 fallback: %v", got)
	}
	if got := parseJiraTime("yesterday"); got != nil {
		t.Fatalf("garbage should yield nil, got %v", got)
	}
	if got := parseJiraTime(""); got != nil {
		t.Fatalf("empty should yield nil, got %v", got)
	}
}
