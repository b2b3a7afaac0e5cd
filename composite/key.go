package composite

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format returns the canonical string form of an attribute value. It is used
// both when writing index entries and when validating hydrated records, so
// the two sides always agree on representation.
func Format(v any) string {
	switch actual := v.(type) {
	case nil:
		return ""
	case string:
		return actual
	case []byte:
		return string(actual)
	case bool:
		return strconv.FormatBool(actual)
	case int:
		return strconv.Itoa(actual)
	case int8:
		return strconv.FormatInt(int64(actual), 10)
	case int16:
		return strconv.FormatInt(int64(actual), 10)
	case int32:
		return strconv.FormatInt(int64(actual), 10)
	case int64:
		return strconv.FormatInt(actual, 10)
	case uint:
		return strconv.FormatUint(uint64(actual), 10)
	case uint8:
		return strconv.FormatUint(uint64(actual), 10)
	case uint16:
		return strconv.FormatUint(uint64(actual), 10)
	case uint32:
		return strconv.FormatUint(uint64(actual), 10)
	case uint64:
		return strconv.FormatUint(actual, 10)
	case float32:
		return strconv.FormatFloat(float64(actual), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(actual, 'g', -1, 64)
	case time.Time:
		return actual.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if actual == nil {
			return ""
		}
		return actual.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return actual.String()
	default:
		return fmt.Sprint(actual)
	}
}

// Encode joins values into a composite key. Every value is written as
// <byte length>:<value>.
func Encode(values ...any) string {
	var sb strings.Builder
	for _, v := range values {
		s := Format(v)
		sb.WriteString(strconv.Itoa(len(s)))
		sb.WriteByte(':')
		sb.WriteString(s)
	}
	return sb.String()
}

// EncodeStrings is Encode for values that are already formatted.
func EncodeStrings(values []string) string {
	var sb strings.Builder
	for _, s := range values {
		sb.WriteString(strconv.Itoa(len(s)))
		sb.WriteByte(':')
		sb.WriteString(s)
	}
	return sb.String()
}

// Decode splits a key produced by Encode back into its formatted values.
func Decode(key string) ([]string, error) {
	var parts []string
	for pos := 0; pos < len(key); {
		colon := strings.IndexByte(key[pos:], ':')
		if colon <= 0 {
			return nil, fmt.Errorf("composite: malformed key %q: missing length at offset %d", key, pos)
		}
		n, err := strconv.Atoi(key[pos : pos+colon])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("composite: malformed key %q: bad length at offset %d", key, pos)
		}
		start := pos + colon + 1
		end := start + n
		if end > len(key) {
			return nil, fmt.Errorf("composite: malformed key %q: segment overruns key", key)
		}
		parts = append(parts, key[start:end])
		pos = end
	}
	return parts, nil
}
