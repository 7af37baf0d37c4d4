package tickets

import (
	"encoding/json"
	"strconv"

	"gorm.io/datatypes"
)

// DecodeCustomFields parses a stored custom_fields blob. A missing or
// malformed blob degrades to an empty map; sync and linking both treat that
// as "no custom data", never as a hard failure.
func DecodeCustomFields(raw datatypes.JSON) (map[string]any, bool) {
	if len(raw) == 0 {
		return map[string]any{}, true
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]any{}, false
	}
	return out, true
}

// EncodeCustomFields is the inverse; an unencodable map degrades to "{}".
func EncodeCustomFields(fields map[string]any) datatypes.JSON {
	if fields == nil {
		fields = map[string]any{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}

// DecodeLabels parses a stored labels blob, degrading to an empty list.
func DecodeLabels(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func EncodeLabels(labels []string) datatypes.JSON {
	if labels == nil {
		labels = []string{}
	}
	raw, err := json.Marshal(labels)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}

// ScalarString renders a custom-field scalar the way it compares: strings
// verbatim, numbers without a trailing exponent, booleans as true/false,
// null as empty.
func ScalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
