package matching

import (
	"strings"
	"time"

	"github.com/tickhubhq/tickhub-backend/internal/domain/tickets"
)

// StandardField enumerates the first-class record attributes a mapping can
// address. Anything else resolves through the custom-field side table.
type StandardField int

const (
	FieldSourceID StandardField = iota
	FieldTitle
	FieldDescription
	FieldStatus
	FieldPriority
	FieldAssignee
	FieldReporter
	FieldCreatedAt
	FieldUpdatedAt
)

// FieldRef is the resolved form of a mapping's field name: either a known
// standard attribute or a key into the record's custom fields.
type FieldRef struct {
	Standard StandardField
	Custom   string
	IsCustom bool
}

const customPrefix = "custom_"

var fieldAliases = map[string]StandardField{
	"id":               FieldSourceID,
	"key":              FieldSourceID,
	"title":            FieldTitle,
	"subject":          FieldTitle,
	"summary":          FieldTitle,
	"description":      FieldDescription,
	"status":           FieldStatus,
	"state":            FieldStatus,
	"priority":         FieldPriority,
	"assignee":         FieldAssignee,
	"owner":            FieldAssignee,
	"reporter":         FieldReporter,
	"requester":        FieldReporter,
	"author":           FieldReporter,
	"user":             FieldReporter,
	"from":             FieldReporter,
	"created_at":       FieldCreatedAt,
	"created":          FieldCreatedAt,
	"timestamp":        FieldCreatedAt,
	"created_datetime": FieldCreatedAt,
	"updated_at":       FieldUpdatedAt,
	"updated":          FieldUpdatedAt,
}

// ParseFieldRef resolves a de-prefixed field name. Callers strip system
// prefixes such as "zendesk.custom_123" first; see StripSystemPrefix.
func ParseFieldRef(name string) FieldRef {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, customPrefix) {
		return FieldRef{IsCustom: true, Custom: strings.TrimPrefix(name, customPrefix)}
	}
	if std, ok := fieldAliases[strings.ToLower(name)]; ok {
		return FieldRef{Standard: std}
	}
	// unknown names fall through to a custom-field lookup under the raw name
	return FieldRef{IsCustom: true, Custom: name}
}

// StripSystemPrefix removes a leading "<system>." qualifier when present.
func StripSystemPrefix(name string, system string) string {
	prefix := system + "."
	if system != "" && strings.HasPrefix(name, prefix) {
		return strings.TrimPrefix(name, prefix)
	}
	return name
}

// Extract returns the record's current value for the referenced field, or ""
// when absent. Custom-field parse failures degrade to "" rather than error.
func (ref FieldRef) Extract(rec *tickets.Record) string {
	if rec == nil {
		return ""
	}
	if ref.IsCustom {
		fields, _ := tickets.DecodeCustomFields(rec.CustomFields)
		v, ok := fields[ref.Custom]
		if !ok {
			return ""
		}
		return tickets.ScalarString(v)
	}
	switch ref.Standard {
	case FieldSourceID:
		return rec.SourceID
	case FieldTitle:
		return rec.Title
	case FieldDescription:
		return rec.Description
	case FieldStatus:
		return rec.Status
	case FieldPriority:
		return rec.Priority
	case FieldAssignee:
		if rec.AssigneeName != "" {
			return rec.AssigneeName
		}
		return rec.AssigneeEmail
	case FieldReporter:
		if rec.ReporterName != "" {
			return rec.ReporterName
		}
		return rec.ReporterEmail
	case FieldCreatedAt:
		return formatTime(rec.SourceCreated)
	case FieldUpdatedAt:
		return formatTime(rec.SourceUpdated)
	default:
		return ""
	}
}

// ExtractFieldValue is the one-shot form of ParseFieldRef + Extract.
func ExtractFieldValue(rec *tickets.Record, name string) string {
	return ParseFieldRef(name).Extract(rec)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
