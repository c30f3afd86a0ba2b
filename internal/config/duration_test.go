package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDurationExtended_DaysWeeksAndFallback(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"7d", 7 * 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"1w2d3h", (7*24 + 2*24 + 3) * time.Hour},
		{"1.5d", 36 * time.Hour},
		{"-2w", -14 * 24 * time.Hour},
		{"20s", 20 * time.Second},
		{"1500ms", 1500 * time.Millisecond},
	}

	for _, tc := range cases {
		got, err := parseDurationExtended(tc.in)
		if err != nil {
			t.Fatalf("parseDurationExtended(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseDurationExtended(%q)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDurationExtended_Invalid(t *testing.T) {
	bad := []string{"", "   ", "3x", "2d3x", "-", "d"}
	for _, in := range bad {
		if _, err := parseDurationExtended(in); err == nil {
			t.Fatalf("parseDurationExtended(%q) expected error, got nil", in)
		}
	}
}

func TestDurationUnmarshalYAML(t *testing.T) {
	var doc struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
	}
	if err := yaml.Unmarshal([]byte("a: 20s\nb: 3\n"), &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if doc.A.Std() != 20*time.Second {
		t.Fatalf("expected 20s, got %v", doc.A.Std())
	}
	if doc.B.Std() != 3*time.Second {
		t.Fatalf("expected bare integers to be seconds, got %v", doc.B.Std())
	}
	if err := yaml.Unmarshal([]byte("a: soon\n"), &doc); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
