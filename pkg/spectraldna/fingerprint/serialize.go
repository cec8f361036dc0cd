package fingerprint

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gemlab/spectraldna/pkg/spectraldna/canonjson"
)

// Serialize renders the record as compact canonical JSON, keys in
// lexicographic order:
//
//	{"intensities_norm":[850,920,1200,450],"mineral":"BERYL_EMERALD","peaks_cm1":[324,396,685,1067]}
//
// The field set is fixed by the v1 schema; nothing else is ever emitted.
func Serialize(r CanonicalRecord) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.Grow(64 + 8*len(r.PeaksQuantized) + 12*len(r.IntensitiesRaw))

	buf.WriteByte('{')

	writeKey(buf, KeyIntensities)
	buf.WriteByte('[')
	for i, v := range r.IntensitiesRaw {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := canonjson.WriteFloat(buf, v); err != nil {
			return nil, serializationFailure(fmt.Sprintf("%s[%d]", KeyIntensities, i), err)
		}
	}
	buf.WriteString("],")

	writeKey(buf, KeyMineral)
	if err := canonjson.WriteString(buf, r.MineralClass); err != nil {
		return nil, serializationFailure(KeyMineral, err)
	}
	buf.WriteByte(',')

	writeKey(buf, KeyPeaks)
	if err := canonjson.Write(buf, r.PeaksQuantized); err != nil {
		return nil, serializationFailure(KeyPeaks, err)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) {
	// keys are fixed ASCII identifiers
	buf.WriteByte('"')
	buf.WriteString(key)
	buf.WriteString(`":`)
}

func serializationFailure(field string, cause error) error {
	e := &Error{Kind: KindSerialization, Field: field, Message: "cannot render field", Cause: cause}
	if errors.Is(cause, canonjson.ErrNonFinite) {
		e.nonFinite = true
	}
	return e
}
