package matching

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"gorm.io/datatypes"
)

// Kind names a transformation applied to a raw field value before matching.
type Kind string

const (
	KindNone           Kind = ""
	KindExtractJiraKey Kind = "extract_jira_key"
	KindRegexExtract   Kind = "regex_extract"
	KindURLPathExtract Kind = "url_path_extract"
	KindSubstring      Kind = "substring"
	KindSplitExtract   Kind = "split_extract"
)

// Config carries the per-kind parameters, decoded once from the mapping's
// JSON blob. Pointer fields distinguish "absent" from a zero value.
type Config struct {
	// regex_extract
	Pattern string `json:"pattern"`
	Group   int    `json:"group"`
	// url_path_extract
	PathIndex *int  `json:"path_index"`
	FromEnd   *bool `json:"from_end"`
	// substring
	Start  int  `json:"start"`
	Length *int `json:"length"`
	End    *int `json:"end"`
	// split_extract
	Separator string `json:"separator"`
	Index     int    `json:"index"`
}

// Spec is a resolved transformation: kind plus its decoded config.
type Spec struct {
	Kind   Kind
	Config Config
}

var jiraKeyRe = regexp.MustCompile(`(?i)/browse/([A-Z]+-\d+)`)

// Apply derives a comparison key from value. It is total: on any failure
// (bad pattern, unparsable URL, out-of-range index) the original value comes
// back unchanged, because transformations run against arbitrarily messy
// externally-sourced data and one bad record must never abort a batch.
func Apply(value string, kind Kind, cfg Config) string {
	if value == "" || kind == KindNone {
		return value
	}
	switch kind {
	case KindExtractJiraKey:
		return extractJiraKey(value)
	case KindRegexExtract:
		return regexExtract(value, cfg)
	case KindURLPathExtract:
		return urlPathExtract(value, cfg)
	case KindSubstring:
		return substring(value, cfg)
	case KindSplitExtract:
		return splitExtract(value, cfg)
	default:
		return value
	}
}

// ApplySpec is Apply over a resolved Spec.
func ApplySpec(value string, spec Spec) string {
	return Apply(value, spec.Kind, spec.Config)
}

// ResolveSpec combines a mapping's shared transformation type with a
// per-side transform blob. The blob may carry its own "type" key, which
// wins over the shared kind; its remaining keys are the config.
func ResolveSpec(sharedKind string, blob datatypes.JSON) Spec {
	spec := Spec{Kind: Kind(strings.TrimSpace(sharedKind))}
	if len(blob) == 0 {
		return spec
	}
	var withType struct {
		Type string `json:"type"`
		Config
	}
	if err := json.Unmarshal(blob, &withType); err != nil {
		return spec
	}
	if t := strings.TrimSpace(withType.Type); t != "" {
		spec.Kind = Kind(t)
	}
	spec.Config = withType.Config
	return spec
}

func extractJiraKey(value string) string {
	m := jiraKeyRe.FindStringSubmatch(value)
	if len(m) < 2 || m[1] == "" {
		return value
	}
	return m[1]
}

func regexExtract(value string, cfg Config) string {
	pattern := cfg.Pattern
	if pattern == "" {
		return value
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return value
	}
	m := re.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	group := cfg.Group
	if group <= 0 {
		group = 1
	}
	if group < len(m) && m[group] != "" {
		return m[group]
	}
	return m[0]
}

func urlPathExtract(value string, cfg Config) string {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return value
	}
	segments := make([]string, 0, 8)
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	pathIndex := -1
	if cfg.PathIndex != nil {
		pathIndex = *cfg.PathIndex
	}
	fromEnd := true
	if cfg.FromEnd != nil {
		fromEnd = *cfg.FromEnd
	}
	idx := pathIndex
	if fromEnd {
		idx = len(segments) - 1 + pathIndex
	}
	if idx < 0 || idx >= len(segments) {
		return value
	}
	return segments[idx]
}

func substring(value string, cfg Config) string {
	runes := []rune(value)
	start := cfg.Start
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		start = len(runes)
	}
	end := len(runes)
	// length takes precedence over end when both are given
	if cfg.Length != nil {
		end = start + *cfg.Length
	} else if cfg.End != nil {
		end = *cfg.End
	}
	if end < 0 {
		end = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	// out-of-order bounds swap, the usual substring contract
	if end < start {
		start, end = end, start
	}
	return string(runes[start:end])
}

func splitExtract(value string, cfg Config) string {
	if cfg.Separator == "" {
		return value
	}
	parts := strings.Split(value, cfg.Separator)
	if cfg.Index < 0 || cfg.Index >= len(parts) {
		return value
	}
	return parts[cfg.Index]
}
