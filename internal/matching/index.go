package matching

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tickhubhq/tickhub-backend/internal/domain/tickets"
)

// Index maps a lower-cased transformed field value to the ids of the records
// carrying it. Built once per target set per mapping so the orchestrator
// probes in O(1) instead of cross-joining source x target.
type Index map[string][]uuid.UUID

// BuildIndex extracts field from every record, applies spec, and buckets
// record ids under the lower-cased result. Records whose raw or transformed
// value is empty contribute nothing.
func BuildIndex(records []*tickets.Record, field string, spec Spec) Index {
	ref := ParseFieldRef(field)
	idx := make(Index, len(records))
	for _, rec := range records {
		raw := ref.Extract(rec)
		if raw == "" {
			continue
		}
		transformed := ApplySpec(raw, spec)
		if transformed == "" {
			continue
		}
		key := strings.ToLower(transformed)
		idx[key] = append(idx[key], rec.ID)
	}
	return idx
}

// Lookup probes the index with an already-transformed value.
func (i Index) Lookup(value string) []uuid.UUID {
	if value == "" {
		return nil
	}
	return i[strings.ToLower(value)]
}
