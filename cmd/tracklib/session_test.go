package main

import (
	"reflect"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain words", "queue add 01 02", []string{"queue", "add", "01", "02"}},
		{"quoted token", `search "Let It Be"`, []string{"search", "Let It Be"}},
		{"quoted key value", `add id=07 name="Hey Jude" artist="The Beatles"`, []string{"add", "id=07", "name=Hey Jude", "artist=The Beatles"}},
		{"extra spaces", "  list   ", []string{"list"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitArgs(tt.line)
			if err != nil {
				t.Fatalf("splitArgs(%q) error: %v", tt.line, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitArgs(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplitArgsUnterminatedQuote(t *testing.T) {
	if _, err := splitArgs(`search "Let It`); err == nil {
		t.Error("expected error for unterminated quote")
	}
}

func TestParseFields(t *testing.T) {
	got, err := parseFields([]string{"id=07", "name=Hey Jude", "rating=4"})
	if err != nil {
		t.Fatalf("parseFields error: %v", err)
	}

	want := map[string]string{
		"id":     "07",
		"name":   "Hey Jude",
		"rating": "4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseFields = %v, want %v", got, want)
	}

	if _, err := parseFields([]string{"badtoken"}); err == nil {
		t.Error("expected error for token without key=value form")
	}
}
