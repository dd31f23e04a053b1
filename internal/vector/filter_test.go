package vector

import "testing"

func TestFilter_Matches(t *testing.T) {
	md := Metadata{
		"type":       "framework",
		"difficulty": "beginner",
		"rank":       3.0,
		"tags":       []any{"go", "rag"},
		"published":  true,
	}
	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"nil filter", nil, true},
		{"empty filter", Filter{}, true},
		{"single match", Filter{"type": "framework"}, true},
		{"single mismatch", Filter{"type": "practice"}, false},
		{"and all match", Filter{"type": "framework", "difficulty": "beginner"}, true},
		{"and one mismatch", Filter{"type": "framework", "difficulty": "advanced"}, false},
		{"missing key", Filter{"category": "design"}, false},
		{"int vs float", Filter{"rank": 3}, true},
		{"number vs string", Filter{"rank": "3"}, false},
		{"string array", Filter{"tags": []string{"go", "rag"}}, true},
		{"string array order", Filter{"tags": []string{"rag", "go"}}, false},
		{"bool", Filter{"published": true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(md); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_NilMetadata(t *testing.T) {
	if !(Filter{}).Matches(nil) {
		t.Error("empty filter should match nil metadata")
	}
	if (Filter{"type": "x"}).Matches(nil) {
		t.Error("non-empty filter should not match nil metadata")
	}
}
