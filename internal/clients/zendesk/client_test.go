package zendesk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	types "github.com/tickhubhq/tickhub-backend/internal/domain"
	"github.com/tickhubhq/tickhub-backend/internal/fetch"
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

func TestFetchPage(t *testing.T) {
	var gotCursor string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "ops@acme.test/token" || pass != "zd-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		gotCursor = r.URL.Query().Get("page[after]")
		w.Header().Set("Content-Type", "application/json")
		if gotCursor == "" {
			w.Write([]byte(`{
				"results": [{
					"id": 1001,
					"subject": "Login broken",
					"status": "open",
					"priority": "high",
					"tags": ["auth", "urgent"],
					"via": {"channel": "email"},
					"assignee": {"name": "Dana", "email": "dana@acme.test"},
					"custom_fields": [
						{"id": 42, "value": "https://acme.atlassian.net/browse/PAL-1"},
						{"id": 43, "value": null}
					]
				}],
				"meta": {"has_more": true, "after_cursor": "c2"}
			}`))
			return
		}
		w.Write([]byte(`{"results": [{"id": 1002, "subject": "Billing"}], "meta": {"has_more": false}}`))
	}))
	defer srv.Close()

	integ := &types.Integration{BaseURL: srv.URL, AuthEmail: "ops@acme.test"}
	client, err := New(testLogger(t), integ, "zd-token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	page, err := client.FetchPage(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(page.Items) != 1 || page.NextCursor != "c2" {
		t.Fatalf("page: %+v", page)
	}
	rec := page.Items[0]
	if rec.SourceID != "1001" || rec.Title != "Login broken" || rec.AssigneeName != "Dana" {
		t.Fatalf("normalized record: %+v", rec)
	}
	if rec.SystemFields["via_channel"] != "email" {
		t.Fatalf("system fields: %+v", rec.SystemFields)
	}
	if rec.CustomFields["zendesk_field_42"] != "https://acme.atlassian.net/browse/PAL-1" {
		t.Fatalf("custom fields: %+v", rec.CustomFields)
	}
	if _, ok := rec.CustomFields["zendesk_field_43"]; ok {
		t.Fatal("null custom field should be dropped")
	}

	page, err = client.FetchPage(context.Background(), "c2")
	if err != nil {
		t.Fatalf("FetchPage c2: %v", err)
	}
	if gotCursor != "c2" || len(page.Items) != 1 || page.NextCursor != "" {
		t.Fatalf("last page: cursor=%q page=%+v", gotCursor, page)
	}
}

func TestFetchPageAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Couldn't authenticate you"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	integ := &types.Integration{BaseURL: srv.URL, AuthEmail: "ops@acme.test"}
	client, err := New(testLogger(t), integ, "bad-token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.FetchPage(context.Background(), "")
	if !errors.Is(err, fetch.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	var fe *fetch.Error
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected typed fetch error, got %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	log := testLogger(t)
	if _, err := New(log, &types.Integration{}, "tok"); err == nil {
		t.Fatal("expected error on missing base url")
	}
	if _, err := New(log, &types.Integration{BaseURL: "https://acme.zendesk.com"}, "  "); err == nil {
		t.Fatal("expected error on missing token")
	}
}
