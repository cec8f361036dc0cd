package canonjson

import (
	"errors"
	"math"
	"testing"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-1, "-1"},
		{850, "850"},
		{850.5, "850.5"},
		{0.1, "0.1"},
		{0.000001, "0.000001"},
		{0.0000001, "1e-7"},
		{1.5e-7, "1.5e-7"},
		{123456789012345680000, "123456789012345680000"},
		{1e21, "1e+21"},
		{1.25e22, "1.25e+22"},
		{-4.5e-10, "-4.5e-10"},
		{9007199254740992, "9007199254740992"},
	}

	for _, tt := range tests {
		got, err := FormatFloat(tt.in)
		if err != nil {
			t.Errorf("FormatFloat(%v) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatFloatNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := FormatFloat(v); !errors.Is(err, ErrNonFinite) {
			t.Errorf("Expected ErrNonFinite for %v, got %v", v, err)
		}
	}
}

func TestMarshalSortsKeys(t *testing.T) {
	v := Object{
		"peaks_cm1":        []int64{324, 396},
		"mineral":          "BERYL_EMERALD",
		"intensities_norm": []float64{850, 920.25},
		"nested":           map[string]any{"b": true, "a": nil},
	}
	got, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"intensities_norm":[850,920.25],"mineral":"BERYL_EMERALD","nested":{"a":null,"b":true},"peaks_cm1":[324,396]}`
	if string(got) != want {
		t.Errorf("Marshal mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestStringEscaping(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`quo"te`, `"quo\"te"`},
		{`back\slash`, `"back\\slash"`},
		{"tab\tnew\nline", `"tab\tnew\nline"`},
		{"\x01", `"\u0001"`},
		{"\x7f", `"\u007f"`},
		{"é", `"\u00e9"`},
		{"😀", `"\ud83d\ude00"`},
	}
	for _, tt := range tests {
		got, err := Marshal(tt.in)
		if err != nil {
			t.Errorf("Marshal(%q) failed: %v", tt.in, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%q) = %s, expected %s", tt.in, got, tt.want)
		}
	}

	if _, err := Marshal("\xff"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}
}

func TestMarshalErrors(t *testing.T) {
	if _, err := Marshal([]float64{1, math.NaN()}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Expected ErrNonFinite from nested array, got %v", err)
	}
	if _, err := Marshal(struct{}{}); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Expected ErrUnsupportedType, got %v", err)
	}
}
