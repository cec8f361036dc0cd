package fingerprint

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

const (
	goldenPayload     = `{"intensities_norm":[850,920,1200,450],"mineral":"BERYL_EMERALD","peaks_cm1":[324,396,685,1067]}`
	goldenFingerprint = "0xbc44737ce9a071b20fc3c201a295d824757903507569e71c953c0bbd823d4fc9"
	goldenSHA3        = "0x5176a994d2b6a64b8cc886dd3aa3782ae0d4f71e8889f600cd0def996cb07e68"
	goldenCID         = "bafkreif4irzxz2naogza7q6cagrjlwbeov4qgudvnhtrzfj4bo6yepkpze"
)

func emeraldReading() RawMeasurement {
	return RawMeasurement{
		Peaks:       []float64{324.3, 395.8, 685.1, 1067.4},
		Intensities: []float64{850, 920, 1200, 450},
		Timestamp:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		ScanID:      "a1b2c3d4",
		DeviceID:    "GEMLAB-RAMAN-01",
	}
}

func newTestHasher(t *testing.T, opts ...Option) *Hasher {
	t.Helper()
	h, err := New(opts...)
	if err != nil {
		t.Fatalf("Failed to create hasher: %v", err)
	}
	return h
}

func TestGoldenVector(t *testing.T) {
	h := newTestHasher(t)

	res, err := h.Fingerprint(emeraldReading())
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	wantPeaks := []int64{324, 396, 685, 1067}
	for i, p := range wantPeaks {
		if res.Record.PeaksQuantized[i] != p {
			t.Errorf("Expected peak %d at index %d, got %d", p, i, res.Record.PeaksQuantized[i])
		}
	}
	if string(res.Payload) != goldenPayload {
		t.Errorf("Payload mismatch:\n got  %s\n want %s", res.Payload, goldenPayload)
	}
	if res.Fingerprint != goldenFingerprint {
		t.Errorf("Expected fingerprint %s, got %s", goldenFingerprint, res.Fingerprint)
	}
	if len(res.Fingerprint) != 66 {
		t.Errorf("Expected 66-character fingerprint, got %d", len(res.Fingerprint))
	}
	if res.CID != goldenCID {
		t.Errorf("Expected CID %s, got %s", goldenCID, res.CID)
	}
}

func TestPackageLevelPipelineMatchesHasher(t *testing.T) {
	record, err := Canonicalize(emeraldReading(), DefaultMineralClass)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	fp, err := Generate(record)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if fp != goldenFingerprint {
		t.Errorf("Expected fingerprint %s, got %s", goldenFingerprint, fp)
	}
}

func TestDeterminism(t *testing.T) {
	h := newTestHasher(t)
	raw := emeraldReading()

	first, err := h.Fingerprint(raw)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := h.Fingerprint(raw)
		if err != nil {
			t.Fatalf("Fingerprint failed on run %d: %v", i, err)
		}
		if next.Fingerprint != first.Fingerprint {
			t.Fatalf("Run %d produced %s, expected %s", i, next.Fingerprint, first.Fingerprint)
		}
	}
}

func TestMetadataDoesNotAffectFingerprint(t *testing.T) {
	h := newTestHasher(t)

	a := emeraldReading()
	b := emeraldReading()
	b.Timestamp = time.Now()
	b.ScanID = "ffffffff"
	b.DeviceID = "OTHER-DEVICE"

	ra, err := h.Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	rb, err := h.Fingerprint(b)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if ra.Fingerprint != rb.Fingerprint {
		t.Errorf("Expected metadata to be ignored, got %s and %s", ra.Fingerprint, rb.Fingerprint)
	}
}

// Peaks reported in a different order sort to the same quantized sequence.
// Intensities are carried in input order, so permuting them alongside the
// peaks changes the fingerprint even though the peak field is identical.
func TestPeakOrderPermutation(t *testing.T) {
	h := newTestHasher(t)

	base, err := h.Fingerprint(emeraldReading())
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	permutedPeaks := []float64{1067.2, 324.1, 685.4, 395.9}

	t.Run("same intensity sequence", func(t *testing.T) {
		raw := RawMeasurement{Peaks: permutedPeaks, Intensities: []float64{850, 920, 1200, 450}}
		res, err := h.Fingerprint(raw)
		if err != nil {
			t.Fatalf("Fingerprint failed: %v", err)
		}
		if res.Fingerprint != base.Fingerprint {
			t.Errorf("Expected identical fingerprint %s, got %s", base.Fingerprint, res.Fingerprint)
		}
	})

	t.Run("intensities permuted with peaks", func(t *testing.T) {
		raw := RawMeasurement{Peaks: permutedPeaks, Intensities: []float64{450, 850, 1200, 920}}
		res, err := h.Fingerprint(raw)
		if err != nil {
			t.Fatalf("Fingerprint failed: %v", err)
		}
		if !equalInts(res.Record.PeaksQuantized, base.Record.PeaksQuantized) {
			t.Errorf("Expected sorted peaks %v, got %v", base.Record.PeaksQuantized, res.Record.PeaksQuantized)
		}
		if res.Fingerprint == base.Fingerprint {
			t.Error("Expected intensity order to change the fingerprint")
		}
		if res.Fingerprint != "0x8589962a22a357053eee6ac591c959c89f5cdf9c004d7d2425ebde3ad84373a4" {
			t.Errorf("Unexpected fingerprint for permuted intensities: %s", res.Fingerprint)
		}
	})
}

func TestRoundingTolerance(t *testing.T) {
	centres := []float64{324, 396, 685, 1067, -120, 0}
	noise := []float64{-0.49999, -0.3, -0.1, 0, 0.1, 0.25, 0.4, 0.49999}

	for _, rule := range []RoundingRule{RoundHalfEven, RoundHalfAwayFromZero} {
		for _, c := range centres {
			want := rule.Quantize(c)
			for _, eps := range noise {
				if got := rule.Quantize(c + eps); got != want {
					t.Errorf("%s: Quantize(%v+%v) = %d, expected %d", rule, c, eps, got, want)
				}
			}
		}
	}
}

func TestRoundingBoundary(t *testing.T) {
	tests := []struct {
		value    float64
		halfEven int64
		halfAway int64
	}{
		{324.5, 324, 325},
		{325.5, 326, 326},
		{2.5, 2, 3},
		{-2.5, -2, -3},
		{-3.5, -4, -4},
		{0.5, 0, 1},
		{1067.49, 1067, 1067},
		{1067.51, 1068, 1068},
	}

	for _, tt := range tests {
		if got := RoundHalfEven.Quantize(tt.value); got != tt.halfEven {
			t.Errorf("half-even Quantize(%v) = %d, expected %d", tt.value, got, tt.halfEven)
		}
		if got := RoundHalfAwayFromZero.Quantize(tt.value); got != tt.halfAway {
			t.Errorf("half-away Quantize(%v) = %d, expected %d", tt.value, got, tt.halfAway)
		}
	}
}

func TestRoundingRuleChangesFingerprintOnHalves(t *testing.T) {
	raw := RawMeasurement{Peaks: []float64{324.5}, Intensities: []float64{1}}

	even := newTestHasher(t, WithRounding(RoundHalfEven))
	away := newTestHasher(t, WithRounding(RoundHalfAwayFromZero))

	re, err := even.Fingerprint(raw)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	ra, err := away.Fingerprint(raw)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if re.Record.PeaksQuantized[0] != 324 || ra.Record.PeaksQuantized[0] != 325 {
		t.Errorf("Expected 324/325, got %d/%d", re.Record.PeaksQuantized[0], ra.Record.PeaksQuantized[0])
	}
	if re.Fingerprint == ra.Fingerprint {
		t.Error("Expected different fingerprints for different rounding rules on a half value")
	}
}

func TestSensitivity(t *testing.T) {
	h := newTestHasher(t)
	base, err := h.Fingerprint(emeraldReading())
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	for i := range emeraldReading().Peaks {
		for _, delta := range []float64{-1, 1, 7} {
			raw := emeraldReading()
			raw.Peaks[i] += delta
			res, err := h.Fingerprint(raw)
			if err != nil {
				t.Fatalf("Fingerprint failed: %v", err)
			}
			if res.Fingerprint == base.Fingerprint {
				t.Errorf("Shifting peak %d by %v did not change the fingerprint", i, delta)
			}
		}
	}

	t.Run("peak count", func(t *testing.T) {
		raw := emeraldReading()
		raw.Peaks = raw.Peaks[:3]
		raw.Intensities = raw.Intensities[:3]
		res, err := h.Fingerprint(raw)
		if err != nil {
			t.Fatalf("Fingerprint failed: %v", err)
		}
		if res.Fingerprint == base.Fingerprint {
			t.Error("Dropping a peak did not change the fingerprint")
		}
	})

	t.Run("duplicate peak", func(t *testing.T) {
		raw := emeraldReading()
		raw.Peaks = append(raw.Peaks, 324.2)
		raw.Intensities = append(raw.Intensities, 850)
		res, err := h.Fingerprint(raw)
		if err != nil {
			t.Fatalf("Fingerprint failed: %v", err)
		}
		if res.Fingerprint == base.Fingerprint {
			t.Error("Adding a duplicate peak did not change the fingerprint")
		}
	})

	t.Run("mineral class", func(t *testing.T) {
		other := newTestHasher(t, WithMineralClass("CORUNDUM_RUBY"))
		res, err := other.Fingerprint(emeraldReading())
		if err != nil {
			t.Fatalf("Fingerprint failed: %v", err)
		}
		if res.Fingerprint == base.Fingerprint {
			t.Error("Changing the mineral class did not change the fingerprint")
		}
	})
}

func TestSerializeIsInjective(t *testing.T) {
	base := CanonicalRecord{
		MineralClass:   "BERYL_EMERALD",
		PeaksQuantized: []int64{324, 396},
		IntensitiesRaw: []float64{850, 920},
	}

	variants := map[string]CanonicalRecord{
		"mineral":            {MineralClass: "BERYL_AQUAMARINE", PeaksQuantized: []int64{324, 396}, IntensitiesRaw: []float64{850, 920}},
		"peak value":         {MineralClass: "BERYL_EMERALD", PeaksQuantized: []int64{324, 397}, IntensitiesRaw: []float64{850, 920}},
		"peak count":         {MineralClass: "BERYL_EMERALD", PeaksQuantized: []int64{324}, IntensitiesRaw: []float64{850, 920}},
		"intensity value":    {MineralClass: "BERYL_EMERALD", PeaksQuantized: []int64{324, 396}, IntensitiesRaw: []float64{850, 920.5}},
		"intensity order":    {MineralClass: "BERYL_EMERALD", PeaksQuantized: []int64{324, 396}, IntensitiesRaw: []float64{920, 850}},
		"merged digits":      {MineralClass: "BERYL_EMERALD", PeaksQuantized: []int64{3243, 96}, IntensitiesRaw: []float64{850, 920}},
		"quote in mineral":   {MineralClass: `BERYL_EMERALD","x`, PeaksQuantized: []int64{324, 396}, IntensitiesRaw: []float64{850, 920}},
		"negative intensity": {MineralClass: "BERYL_EMERALD", PeaksQuantized: []int64{324, 396}, IntensitiesRaw: []float64{-850, 920}},
	}

	want, err := Serialize(base)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	seen := map[string]string{string(want): "base"}
	for name, rec := range variants {
		got, err := Serialize(rec)
		if err != nil {
			t.Fatalf("Serialize(%s) failed: %v", name, err)
		}
		if prev, ok := seen[string(got)]; ok {
			t.Errorf("Variant %q serialized identically to %q: %s", name, prev, got)
		}
		seen[string(got)] = name
	}
}

func TestSerializeFormat(t *testing.T) {
	rec := CanonicalRecord{
		MineralClass:   "BERYL_EMERALD",
		PeaksQuantized: []int64{-5, 0, 1067},
		IntensitiesRaw: []float64{850.25, 0.001, -0.0},
	}
	got, err := Serialize(rec)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	want := `{"intensities_norm":[850.25,0.001,0],"mineral":"BERYL_EMERALD","peaks_cm1":[-5,0,1067]}`
	if string(got) != want {
		t.Errorf("Serialize mismatch:\n got  %s\n want %s", got, want)
	}
	if strings.ContainsAny(string(got), " \n\t") {
		t.Errorf("Expected no whitespace in %s", got)
	}
}

func TestSerializeRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		rec := CanonicalRecord{MineralClass: "X", PeaksQuantized: []int64{1}, IntensitiesRaw: []float64{v}}
		_, err := Serialize(rec)
		if err == nil {
			t.Fatalf("Expected error serializing %v", v)
		}
		if !errors.Is(err, ErrSerialization) {
			t.Errorf("Expected ErrSerialization, got %v", err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected non-finite value to also match ErrInvalidInput, got %v", err)
		}
		if _, err := Generate(rec); err == nil {
			t.Errorf("Expected Generate to fail for %v", v)
		}
	}
}

func TestPreconditions(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawMeasurement
		field string
	}{
		{"empty", RawMeasurement{}, "peaks"},
		{"no intensities", RawMeasurement{Peaks: []float64{1}}, "intensities"},
		{"length mismatch", RawMeasurement{Peaks: []float64{1, 2}, Intensities: []float64{1}}, "intensities"},
		{"nan peak", RawMeasurement{Peaks: []float64{1, math.NaN()}, Intensities: []float64{1, 2}}, "peaks[1]"},
		{"inf peak", RawMeasurement{Peaks: []float64{math.Inf(-1)}, Intensities: []float64{1}}, "peaks[0]"},
		{"huge peak", RawMeasurement{Peaks: []float64{1e300}, Intensities: []float64{1}}, "peaks[0]"},
		{"nan intensity", RawMeasurement{Peaks: []float64{1}, Intensities: []float64{math.NaN()}}, "intensities[0]"},
	}

	h := newTestHasher(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.Fingerprint(tt.raw)
			if err == nil {
				t.Fatal("Expected InvalidInput error")
			}
			if !errors.Is(err, ErrInvalidInput) || !IsKind(err, KindInvalidInput) {
				t.Errorf("Expected InvalidInput, got %v", err)
			}
			var fe *Error
			if errors.As(err, &fe) && fe.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, fe.Field)
			}
			if res.Fingerprint != "" || res.Payload != nil {
				t.Errorf("Expected no output on error, got %+v", res)
			}
		})
	}
}

func TestCanonicalizeDoesNotAliasInput(t *testing.T) {
	raw := emeraldReading()
	rec, err := Canonicalize(raw, DefaultMineralClass)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}

	raw.Intensities[0] = 1
	raw.Peaks[0] = 9999
	if rec.IntensitiesRaw[0] != 850 {
		t.Errorf("Record intensities changed with input: %v", rec.IntensitiesRaw)
	}
	if rec.PeaksQuantized[0] != 324 {
		t.Errorf("Record peaks changed with input: %v", rec.PeaksQuantized)
	}

	again, err := Canonicalize(emeraldReading(), DefaultMineralClass)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	if !rec.Equal(again) {
		t.Errorf("Expected structurally equal records, got %+v and %+v", rec, again)
	}
}

func TestAlternateAlgorithms(t *testing.T) {
	t.Run("sha3-256", func(t *testing.T) {
		h := newTestHasher(t, WithAlgorithm(SHA3_256))
		res, err := h.Fingerprint(emeraldReading())
		if err != nil {
			t.Fatalf("Fingerprint failed: %v", err)
		}
		if res.Fingerprint != goldenSHA3 {
			t.Errorf("Expected %s, got %s", goldenSHA3, res.Fingerprint)
		}
		if !strings.HasPrefix(res.CID, "b") {
			t.Errorf("Expected base32 CID, got %s", res.CID)
		}
	})

	t.Run("blake3", func(t *testing.T) {
		empty, err := BLAKE3.Sum(nil)
		if err != nil {
			t.Fatalf("Sum failed: %v", err)
		}
		gen, err := NewGenerator(BLAKE3, "")
		if err != nil {
			t.Fatalf("NewGenerator failed: %v", err)
		}
		if got := gen.render(empty); got != "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262" {
			t.Errorf("Unexpected BLAKE3 digest of empty input: %s", got)
		}

		h := newTestHasher(t, WithAlgorithm(BLAKE3))
		res, err := h.Fingerprint(emeraldReading())
		if err != nil {
			t.Fatalf("Fingerprint failed: %v", err)
		}
		if len(res.Fingerprint) != 66 || res.Fingerprint == goldenFingerprint {
			t.Errorf("Unexpected BLAKE3 fingerprint %s", res.Fingerprint)
		}
	})
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"empty mineral", []Option{WithMineralClass("")}},
		{"non-ascii mineral", []Option{WithMineralClass("ESMERALDA_É")}},
		{"unknown rounding", []Option{WithRounding("ceil")}},
		{"unknown algorithm", []Option{WithAlgorithm("md5")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts...); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected InvalidInput, got %v", err)
			}
		})
	}

	if _, err := ParseRoundingRule("bankers"); err != nil {
		t.Errorf("Expected alias to parse, got %v", err)
	}
	if alg, err := ParseHashAlgorithm("SHA-256"); err != nil || alg != SHA256 {
		t.Errorf("Expected sha256, got %q (%v)", alg, err)
	}
	if _, err := ParseHashAlgorithm("md5"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected InvalidInput for md5, got %v", err)
	}
}

func TestParseFingerprint(t *testing.T) {
	if _, err := ParseFingerprint(goldenFingerprint, DefaultPrefix); err != nil {
		t.Errorf("Expected golden fingerprint to parse, got %v", err)
	}

	bad := []string{
		"",
		strings.TrimPrefix(goldenFingerprint, "0x"),
		"0x" + strings.ToUpper(strings.TrimPrefix(goldenFingerprint, "0x")),
		goldenFingerprint[:65],
		goldenFingerprint + "0",
		"0xzz" + goldenFingerprint[4:],
	}
	for _, s := range bad {
		if _, err := ParseFingerprint(s, DefaultPrefix); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected %q to be rejected, got %v", s, err)
		}
	}

	if got := Fingerprint(goldenFingerprint).Hex(DefaultPrefix); len(got) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(got))
	}
}

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
