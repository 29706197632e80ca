package node

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	obj := `{"blueprint":{"app_name":"A"},"files":[]}`

	tests := []struct {
		name string
		in   string
		want Extraction
	}{
		{"direct", obj, ExtractionDirect},
		{"direct with whitespace", "\n  " + obj + "\n", ExtractionDirect},
		{"prose wrapped", "Here you go:\n" + obj + "\nThanks", ExtractionEmbedded},
		{"fenced", "```json\n" + obj + "\n```", ExtractionEmbedded},
		{"no braces", "sorry, I cannot help", ExtractionFailed},
		{"reversed braces", "} nothing {", ExtractionFailed},
		{"truncated", `{"blueprint": {"app_name": "A"`, ExtractionFailed},
		{"empty", "", ExtractionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, got := ExtractJSONObject(tt.in)
			if got != tt.want {
				t.Fatalf("extraction = %s, want %s", got, tt.want)
			}
			if got == ExtractionFailed {
				if raw != nil {
					t.Errorf("expected nil payload, got %s", raw)
				}
				return
			}
			var a, b any
			_ = json.Unmarshal(raw, &a)
			_ = json.Unmarshal([]byte(obj), &b)
			if ja, jb := mustJSON(t, a), mustJSON(t, b); ja != jb {
				t.Errorf("payload = %s, want %s", ja, jb)
			}
		})
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
