package core

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrDecoding is wrapped by every DecodeSegment failure.
var ErrDecoding = errors.New("failed to decode segment")

// EncodeSegment marshals claims to canonical JSON (object keys sorted, no
// HTML escaping) and encodes it as unpadded base64url.
func EncodeSegment(claims map[string]any) (string, error) {
	if claims == nil {
		claims = map[string]any{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(claims); err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	// Encoder.Encode terminates the document with a newline.
	data := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeSegment reverses EncodeSegment. Padding is restored before a strict
// base64url decode, and the JSON must be a single object. An empty segment
// yields an empty map.
func DecodeSegment(segment string) (map[string]any, error) {
	if segment == "" {
		return map[string]any{}, nil
	}

	raw, err := base64.URLEncoding.Strict().DecodeString(AddPadding(segment))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64url: %v", ErrDecoding, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var claims map[string]any
	if err := dec.Decode(&claims); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrDecoding, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: JSON value is not an object", ErrDecoding)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", ErrDecoding)
	}

	for key, value := range claims {
		claims[key] = normalize(value)
	}
	return claims, nil
}

// AddPadding appends '=' until len(s) is a multiple of four.
func AddPadding(s string) string {
	if rem := len(s) % 4; rem != 0 {
		return s + strings.Repeat("=", 4-rem)
	}
	return s
}

// normalize turns json.Number into int64 when the value is integral and
// float64 otherwise, descending into arrays and objects. An integer literal
// outside the int64 range becomes uint64 when it fits, and stays a
// json.Number otherwise, so it is never rounded.
func normalize(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if !strings.ContainsAny(v.String(), ".eE") {
			if u, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
				return u
			}
			return v
		}
		f, err := v.Float64()
		if err != nil {
			return v.String()
		}
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f)
		}
		return f
	case []any:
		for i := range v {
			v[i] = normalize(v[i])
		}
		return v
	case map[string]any:
		for key := range v {
			v[key] = normalize(v[key])
		}
		return v
	default:
		return value
	}
}
