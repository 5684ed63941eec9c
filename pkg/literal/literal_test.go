package literal

import (
	"errors"
	"testing"
)

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in     string
		want   uint32
		wantOK bool
	}{
		{"8'hA", 10, true},
		{"'h1F", 31, true},
		{"h1F", 31, true},
		{"H1f", 31, true},
		{"32'HDEAD_BEEF", 0xDEADBEEF, true},
		{"1'h0", 0, true},
		{"FF", 255, true},
		{"10", 16, true},
		{"0x10", 16, true},
		{"0XfF", 255, true},
		{"bogus", 0, false},
		{"", 0, false},
		{"8'h", 0, false},
		{"8'b1010", 0, false},
		{"x'h1", 0, false},
		{"0'h1", 0, false},
		{"'h1_0000_0000", 0, false},
		{" 8'hA", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLiteral(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseLiteral(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseLiteral(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseWidth(t *testing.T) {
	lit, err := Parse("4'hFF")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if lit.Width != 4 {
		t.Errorf("Width = %d, want 4", lit.Width)
	}
	// The declared width does not mask the value.
	if lit.Value != 0xFF {
		t.Errorf("Value = %#x, want 0xff", lit.Value)
	}

	lit, err = Parse("'h3")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if lit.Width != 0 {
		t.Errorf("Width = %d, want 0", lit.Width)
	}
}

func TestParseError(t *testing.T) {
	_, err := Parse("bogus")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error %v does not wrap ErrMalformed", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T is not *ParseError", err)
	}
	if pe.Text != "bogus" {
		t.Errorf("Text = %q, want bogus", pe.Text)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xA, 0xFFFF_FFFF} {
		s := Format(32, v)
		got, ok := ParseLiteral(s)
		if !ok || got != v {
			t.Errorf("ParseLiteral(Format(%#x)) = %#x, %v", v, got, ok)
		}
	}
	if got := Format(8, 0xA); got != "8'hA" {
		t.Errorf("Format(8, 0xA) = %q", got)
	}
	if got := Format(0, 0x1F); got != "'h1F" {
		t.Errorf("Format(0, 0x1F) = %q", got)
	}
}
