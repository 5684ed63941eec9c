package inspect

import (
	"errors"
	"testing"

	"github.com/regdb/regdb/pkg/model"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"10", 10, false},
		{"0x10", 16, false},
		{"8'hA", 10, false},
		{"'h1F", 31, false},
		{"ff", 255, false},
		{"", 0, true},
		{"zz", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseValue(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseValue(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestResolveFieldValue(t *testing.T) {
	f := model.Field{Name: "mode", LSB: 4, Width: 2, Enums: []model.EnumValue{
		{Name: "IDLE", Value: 0}, {Name: "RUN", Value: 1}, {Name: "HALT", Value: 3},
	}}

	tests := []struct {
		in      string
		want    uint32
		wantErr error
	}{
		{"RUN", 1, nil},
		{"halt", 3, nil},
		{"2", 2, nil},
		{"4", 0, ErrInvalidValue},
		{"fast", 0, ErrInvalidValue},
	}
	for _, tt := range tests {
		got, err := ResolveFieldValue(f, tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ResolveFieldValue(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveFieldValue(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	if GetEnumName(f, 3) != "HALT" || GetEnumName(f, 2) != "" {
		t.Error("GetEnumName mismatch")
	}
}
