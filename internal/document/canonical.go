package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical serializes a JSON-shaped value deterministically:
// object keys sorted bytewise, strings NFC-normalized, no HTML escaping,
// 2-space indentation. json.Number values produced by the decoder are
// written back verbatim, so numeric formatting survives a round trip.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const indentUnit = "  "

func writeCanonical(buf *bytes.Buffer, v any, depth int) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		s, err := canonicalString(val)
		if err != nil {
			return err
		}
		buf.Write(s)
	case json.Number:
		buf.WriteString(string(val))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case float64:
		buf.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case []any:
		return writeCanonicalArray(buf, val, depth)
	case map[string]any:
		return writeCanonicalObject(buf, val, depth)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func writeCanonicalArray(buf *bytes.Buffer, arr []any, depth int) error {
	if len(arr) == 0 {
		buf.WriteString("[]")
		return nil
	}
	inner := strings.Repeat(indentUnit, depth+1)
	buf.WriteString("[\n")
	for i, elem := range arr {
		buf.WriteString(inner)
		if err := writeCanonical(buf, elem, depth+1); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
		if i < len(arr)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat(indentUnit, depth))
	buf.WriteByte(']')
	return nil
}

func writeCanonicalObject(buf *bytes.Buffer, obj map[string]any, depth int) error {
	if len(obj) == 0 {
		buf.WriteString("{}")
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	inner := strings.Repeat(indentUnit, depth+1)
	buf.WriteString("{\n")
	for i, k := range keys {
		buf.WriteString(inner)
		ks, err := canonicalString(k)
		if err != nil {
			return err
		}
		buf.Write(ks)
		buf.WriteString(": ")
		if err := writeCanonical(buf, obj[k], depth+1); err != nil {
			return fmt.Errorf("[%q]: %w", k, err)
		}
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat(indentUnit, depth))
	buf.WriteByte('}')
	return nil
}

// canonicalString encodes a string with NFC normalization and HTML escaping
// disabled, so <, >, & pass through untouched.
func canonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	// Encoder adds a trailing newline, strip it.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
