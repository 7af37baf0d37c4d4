package tickets

import (
	"testing"

	"gorm.io/datatypes"
)

func TestDecodeCustomFields(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantOK  bool
	}{
		{"empty blob", "", 0, true},
		{"valid object", `{"a":"b","n":2}`, 2, true},
		{"malformed", `{not json`, 0, false},
		{"json null", `null`, 0, false},
		{"wrong shape", `["a","b"]`, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields, ok := DecodeCustomFields(datatypes.JSON([]byte(tc.raw)))
			if ok != tc.wantOK || len(fields) != tc.wantLen {
				t.Fatalf("DecodeCustomFields(%q) = %v, %v", tc.raw, fields, ok)
			}
			if fields == nil {
				t.Fatal("decoded map must never be nil")
			}
		})
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	if got := DecodeLabels(EncodeLabels([]string{"auth", "urgent"})); len(got) != 2 || got[0] != "auth" {
		t.Fatalf("round trip: %v", got)
	}
	if got := DecodeLabels(EncodeLabels(nil)); got == nil || len(got) != 0 {
		t.Fatalf("nil labels: %v", got)
	}
	if got := DecodeLabels(datatypes.JSON([]byte(`{not json`))); got == nil || len(got) != 0 {
		t.Fatalf("malformed labels should degrade to empty: %v", got)
	}
}

func TestScalarString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "PAL-1", "PAL-1"},
		{"bool", true, "true"},
		{"float int value", float64(14571), "14571"},
		{"float fraction", 2.5, "2.5"},
		{"nil", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScalarString(tc.in); got != tc.want {
				t.Fatalf("ScalarString(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRecordTerminal(t *testing.T) {
	for status, want := range map[string]bool{
		"open":       false,
		"pending":    false,
		StatusSolved: true,
		StatusClosed: true,
	} {
		rec := &Record{Status: status}
		if rec.Terminal() != want {
			t.Fatalf("Terminal(%q) = %v", status, !want)
		}
	}
}
