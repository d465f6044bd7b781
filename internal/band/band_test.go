// SPDX-License-Identifier: MIT
package band

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want ID
	}{
		{"bass", Bass},
		{"lowMid", LowMid},
		{"LOWMID", LowMid},
		{"mid", Mid},
		{"highmid", HighMid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.name)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if _, err := Parse("treble"); err == nil {
		t.Error("expected error for unknown band")
	}
}

func TestString(t *testing.T) {
	for i, id := range All {
		if got := id.String(); got != names[i] {
			t.Errorf("%d.String() = %q, want %q", i, got, names[i])
		}
	}
	if got := ID(9).String(); got != "band(9)" {
		t.Errorf("out of range String() = %q", got)
	}
}

func TestResolveDefault(t *testing.T) {
	s, err := DefaultTable().Resolve()
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	want := Settings{
		{Weight: 1.9, Hue: 0},
		{Weight: 1.4, Hue: 15},
		{Weight: 1.0, Hue: 30},
		{Weight: 1.0, Hue: 45},
	}
	if s != want {
		t.Errorf("Resolve() = %+v, want %+v", s, want)
	}
}

func TestResolveIncomplete(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{"Missing band", Table{"bass": {1, 0}, "lowMid": {1, 0}, "mid": {1, 0}}},
		{"Unknown band", Table{"bass": {1, 0}, "lowMid": {1, 0}, "mid": {1, 0}, "treble": {1, 0}}},
		{"Empty", Table{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.table.Resolve()
			if !errors.Is(err, ErrIncompleteTable) {
				t.Errorf("expected ErrIncompleteTable, got %v", err)
			}
		})
	}
}
