package matching

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/tickhubhq/tickhub-backend/internal/domain/tickets"
)

func TestBuildIndex(t *testing.T) {
	a := &tickets.Record{ID: uuid.New(), SourceID: "PAL-1", Title: "One"}
	b := &tickets.Record{ID: uuid.New(), SourceID: "pal-1", Title: "Dup key, different case"}
	c := &tickets.Record{ID: uuid.New(), SourceID: "PAL-2", Title: "Two"}
	empty := &tickets.Record{ID: uuid.New(), SourceID: "", Title: "No key"}

	idx := BuildIndex([]*tickets.Record{a, b, c, empty}, "key", Spec{})

	if got := idx.Lookup("PAL-1"); len(got) != 2 || got[0] != a.ID || got[1] != b.ID {
		t.Fatalf("case-insensitive bucket wrong: %v", got)
	}
	if got := idx.Lookup("pal-2"); len(got) != 1 || got[0] != c.ID {
		t.Fatalf("single bucket wrong: %v", got)
	}
	if got := idx.Lookup("pal-3"); got != nil {
		t.Fatalf("absent value should have no entry: %v", got)
	}
	if _, ok := idx[""]; ok {
		t.Fatal("empty values must not be indexed")
	}
}

func TestBuildIndexAppliesTransform(t *testing.T) {
	rec := &tickets.Record{
		ID:           uuid.New(),
		CustomFields: datatypes.JSON([]byte(`{"jira_url":"https://x.atlassian.net/browse/PAL-14571"}`)),
	}
	noURL := &tickets.Record{
		ID:           uuid.New(),
		CustomFields: datatypes.JSON([]byte(`{}`)),
	}

	idx := BuildIndex([]*tickets.Record{rec, noURL}, "custom_jira_url", Spec{Kind: KindExtractJiraKey})

	if got := idx.Lookup("pal-14571"); len(got) != 1 || got[0] != rec.ID {
		t.Fatalf("transformed key lookup wrong: %v", got)
	}
	if len(idx) != 1 {
		t.Fatalf("records without the field must not be indexed, index=%v", idx)
	}
}
