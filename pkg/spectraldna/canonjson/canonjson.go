// Package canonjson writes compact canonical JSON: object keys sorted
// lexicographically, fixed ',' and ':' separators, no insignificant
// whitespace, RFC 8785 number formatting and ASCII-only string escaping.
//
// The output is byte-stable for a given value and is used as the hashing
// input for fingerprints and attestations.
package canonjson

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

var (
	ErrNonFinite       = errors.New("canonjson: NaN and Inf are not representable")
	ErrInvalidUTF8     = errors.New("canonjson: string is not valid UTF-8")
	ErrUnsupportedType = errors.New("canonjson: unsupported type")
)

// Object is an unordered set of members; Marshal emits it with sorted keys.
type Object map[string]any

// Marshal renders v canonically. Supported values are nil, bool, string,
// signed and unsigned integers, float32/float64, Object, map[string]any and
// slices of those ([]any, []string, []int64, []int, []float64).
func Marshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := Write(buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders v canonically into buf.
func Write(buf *bytes.Buffer, v any) error {
	switch value := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if value {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		return WriteString(buf, value)
	case int:
		buf.WriteString(strconv.FormatInt(int64(value), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(value), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(value, 10))
	case uint:
		buf.WriteString(strconv.FormatUint(uint64(value), 10))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(value), 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(value, 10))
	case float32:
		return WriteFloat(buf, float64(value))
	case float64:
		return WriteFloat(buf, value)
	case Object:
		return writeObject(buf, value)
	case map[string]any:
		return writeObject(buf, value)
	case []any:
		return writeArray(buf, len(value), func(i int) error { return Write(buf, value[i]) })
	case []string:
		return writeArray(buf, len(value), func(i int) error { return WriteString(buf, value[i]) })
	case []int:
		return writeArray(buf, len(value), func(i int) error {
			buf.WriteString(strconv.Itoa(value[i]))
			return nil
		})
	case []int64:
		return writeArray(buf, len(value), func(i int) error {
			buf.WriteString(strconv.FormatInt(value[i], 10))
			return nil
		})
	case []float64:
		return writeArray(buf, len(value), func(i int) error { return WriteFloat(buf, value[i]) })
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	return nil
}

func writeObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := WriteString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := Write(buf, obj[k]); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeArray(buf *bytes.Buffer, n int, item func(i int) error) error {
	buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := item(i); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

// WriteString writes s as a quoted JSON string. Every rune outside printable
// ASCII is escaped as \uXXXX (surrogate pairs above U+FFFF), so the output
// is pure ASCII.
func WriteString(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			switch {
			case r < 0x20 || (r > 0x7e && r <= 0xffff):
				writeUnicodeEscape(buf, r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				writeUnicodeEscape(buf, hi)
				writeUnicodeEscape(buf, lo)
			default:
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return nil
}

var hexLower = []byte("0123456789abcdef")

func writeUnicodeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hexLower[(r>>12)&0x0f])
	buf.WriteByte(hexLower[(r>>8)&0x0f])
	buf.WriteByte(hexLower[(r>>4)&0x0f])
	buf.WriteByte(hexLower[r&0x0f])
}

// WriteFloat writes f using the ECMAScript Number-to-String rules adopted by
// RFC 8785: integral values carry no fraction, -0 is written as 0 and the
// exponent form is only used below 1e-6 or at/above 1e21.
func WriteFloat(buf *bytes.Buffer, f float64) error {
	s, err := FormatFloat(f)
	if err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

// FormatFloat returns the canonical text of f.
func FormatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", ErrNonFinite
	}
	if f == 0 {
		return "0", nil
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = math.Abs(f)
	}

	mantissa, exp, err := splitScientific(f)
	if err != nil {
		return "", err
	}
	digits := strings.ReplaceAll(mantissa, ".", "")

	if exp < -6 || exp >= 21 {
		expText := strconv.Itoa(exp)
		if exp > 0 {
			expText = "+" + expText
		}
		if len(digits) == 1 {
			return sign + digits + "e" + expText, nil
		}
		return sign + digits[:1] + "." + digits[1:] + "e" + expText, nil
	}

	point := exp + 1
	if point >= len(digits) {
		return sign + digits + strings.Repeat("0", point-len(digits)), nil
	}
	if point <= 0 {
		return sign + "0." + strings.Repeat("0", -point) + digits, nil
	}
	return sign + digits[:point] + "." + digits[point:], nil
}

func splitScientific(f float64) (string, int, error) {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	parts := strings.SplitN(s, "e", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("canonjson: invalid float format %q", s)
	}
	exp, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("canonjson: invalid float exponent: %w", err)
	}
	return parts[0], exp, nil
}
