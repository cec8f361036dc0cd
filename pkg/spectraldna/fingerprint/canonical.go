package fingerprint

import (
	"sort"
	"strconv"
)

// SchemaVersion identifies the field set and key names of CanonicalRecord.
// Changing either is a new schema and yields different fingerprints.
const SchemaVersion = "v1"

// DefaultMineralClass is the classification used by the reference hasher.
const DefaultMineralClass = "BERYL_EMERALD"

// Serialized key names of the v1 schema.
const (
	KeyIntensities = "intensities_norm"
	KeyMineral     = "mineral"
	KeyPeaks       = "peaks_cm1"
)

// CanonicalRecord is the normalized form of a measurement that gets hashed.
//
// Peaks are quantized and sorted so the fingerprint does not depend on the
// order in which the instrument reported them. Intensities are carried in
// the original input order and are not re-paired with the sorted peaks, so
// the fingerprint stays sensitive to intensity reporting order.
type CanonicalRecord struct {
	MineralClass   string
	PeaksQuantized []int64
	IntensitiesRaw []float64
}

// Canonicalizer turns raw measurements into canonical records. The zero
// value is not usable; build one with NewCanonicalizer.
type Canonicalizer struct {
	mineralClass string
	rounding     RoundingRule
}

// NewCanonicalizer validates the mineral class and rounding rule.
func NewCanonicalizer(mineralClass string, rounding RoundingRule) (*Canonicalizer, error) {
	if err := validateMineralClass(mineralClass); err != nil {
		return nil, err
	}
	if rounding == "" {
		rounding = DefaultRounding
	}
	if !rounding.valid() {
		return nil, invalidInput("rounding", "unknown rounding rule "+strconv.Quote(string(rounding)))
	}
	return &Canonicalizer{mineralClass: mineralClass, rounding: rounding}, nil
}

// MineralClass returns the configured classification label.
func (c *Canonicalizer) MineralClass() string { return c.mineralClass }

// Rounding returns the configured rounding rule.
func (c *Canonicalizer) Rounding() RoundingRule { return c.rounding }

// Canonicalize validates raw and builds its canonical record. No partial
// record is returned on error.
func (c *Canonicalizer) Canonicalize(raw RawMeasurement) (CanonicalRecord, error) {
	if err := raw.Validate(); err != nil {
		return CanonicalRecord{}, err
	}

	peaks := make([]int64, len(raw.Peaks))
	for i, p := range raw.Peaks {
		peaks[i] = c.rounding.Quantize(p)
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i] < peaks[j] })

	intensities := make([]float64, len(raw.Intensities))
	copy(intensities, raw.Intensities)

	return CanonicalRecord{
		MineralClass:   c.mineralClass,
		PeaksQuantized: peaks,
		IntensitiesRaw: intensities,
	}, nil
}

// Canonicalize builds a canonical record with the default rounding rule.
func Canonicalize(raw RawMeasurement, mineralClass string) (CanonicalRecord, error) {
	c, err := NewCanonicalizer(mineralClass, DefaultRounding)
	if err != nil {
		return CanonicalRecord{}, err
	}
	return c.Canonicalize(raw)
}

// Equal reports whether two records have identical field values.
func (r CanonicalRecord) Equal(o CanonicalRecord) bool {
	if r.MineralClass != o.MineralClass ||
		len(r.PeaksQuantized) != len(o.PeaksQuantized) ||
		len(r.IntensitiesRaw) != len(o.IntensitiesRaw) {
		return false
	}
	for i := range r.PeaksQuantized {
		if r.PeaksQuantized[i] != o.PeaksQuantized[i] {
			return false
		}
	}
	for i := range r.IntensitiesRaw {
		if r.IntensitiesRaw[i] != o.IntensitiesRaw[i] {
			return false
		}
	}
	return true
}

// Mineral class labels are restricted to printable ASCII so that every
// encoder renders them identically.
func validateMineralClass(s string) error {
	if s == "" {
		return invalidInput("mineral_class", "must not be empty")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return invalidInput("mineral_class", "must be printable ASCII")
		}
	}
	return nil
}
