package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmountStrict(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"100", "100", false},
		{"0.000000000000000001", "0.000000000000000001", false},
		{"-3.5", "-3.5", false},
		{"", "", true},
		{"abc", "", true},
		{"12,5", "", true},
		{"1e3", "1000", false},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q) succeeded, want error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q) error = %v", tt.input, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestSafeParseInvalidReturnsZero(t *testing.T) {
	if got := SafeParse("not-a-number"); !got.IsZero() {
		t.Errorf("SafeParse(invalid) = %s, want 0", got)
	}
	if got := SafeParse(""); !got.IsZero() {
		t.Errorf("SafeParse(empty) = %s, want 0", got)
	}
}

func TestFormatPrecisions(t *testing.T) {
	d := decimal.RequireFromString("1234.5")

	if got := FormatShares(d); got != "1234.500000000000000000" {
		t.Errorf("FormatShares = %q", got)
	}
	if got := FormatValue(d); got != "1234.500000" {
		t.Errorf("FormatValue = %q", got)
	}
	if got := FormatPct(d); got != "1234.50" {
		t.Errorf("FormatPct = %q", got)
	}
}

func TestFormatSharesKeeps18Digits(t *testing.T) {
	d := decimal.RequireFromString("0.123456789012345678")
	if got := FormatShares(d); got != "0.123456789012345678" {
		t.Errorf("FormatShares = %q, want full 18-decimal precision", got)
	}
}

func TestPercentage(t *testing.T) {
	got := Percentage(decimal.NewFromInt(150), decimal.NewFromInt(150))
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Percentage(150, 150) = %s, want 100", got)
	}

	got = Percentage(decimal.NewFromInt(1), decimal.Zero)
	if !got.IsZero() {
		t.Errorf("Percentage(1, 0) = %s, want 0", got)
	}
}

func TestAddressKey(t *testing.T) {
	if AddressKey("0xABCdef") != AddressKey("0xabcDEF") {
		t.Error("AddressKey is not case-insensitive")
	}
}
