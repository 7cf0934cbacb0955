package security

import "strings"

// Character classes tracked by the strength checks.
const (
	ClassLower = 1 << iota
	ClassUpper
	ClassDigit
	ClassOther
)

// CharClasses returns a bit set of the ASCII character classes present in s.
// Bytes outside [a-z], [A-Z] and [0-9] count as ClassOther.
func CharClasses(s string) int {
	classes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			classes |= ClassLower
		case c >= 'A' && c <= 'Z':
			classes |= ClassUpper
		case c >= '0' && c <= '9':
			classes |= ClassDigit
		default:
			classes |= ClassOther
		}
	}
	return classes
}

var weakPatterns = [...]string{
	"12345678", "87654321", "11111111", "00000000", "aaaaaaaa",
	"qwerty", "asdfgh", "zxcvbn", "letmein", "welcome", "iloveyou",
	"password", "secret", "changeme", "admin", "default", "example",
}

// IsWeakKey reports whether key has obviously low entropy: a single
// repeated byte, few distinct bytes, a short repeating unit, a run of
// ascending or descending bytes, or a well-known weak substring.
func IsWeakKey(key []byte) bool {
	if len(key) == 0 {
		return true
	}

	distinct := make(map[byte]struct{}, len(key))
	for _, b := range key {
		distinct[b] = struct{}{}
	}
	if len(distinct) == 1 {
		return true
	}
	if len(key) >= 8 && float64(len(distinct))/float64(len(key)) < 0.3 {
		return true
	}

	if hasRepeatingUnit(key) || hasSequentialRun(key, 8) {
		return true
	}

	lower := strings.ToLower(string(key))
	for _, pattern := range weakPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	return false
}

// hasRepeatingUnit detects keys like "abab..." or "xyzxyz..." built from a
// unit of 2 to 4 bytes repeated at least three times.
func hasRepeatingUnit(key []byte) bool {
	for unit := 2; unit <= 4; unit++ {
		if len(key) < unit*3 {
			break
		}
		repeated := true
		for i := unit; i < len(key); i++ {
			if key[i] != key[i%unit] {
				repeated = false
				break
			}
		}
		if repeated {
			return true
		}
	}
	return false
}

func hasSequentialRun(key []byte, run int) bool {
	if len(key) < run {
		return false
	}
	asc, desc := 1, 1
	for i := 1; i < len(key); i++ {
		switch {
		case key[i] == key[i-1]+1:
			asc++
			desc = 1
		case key[i] == key[i-1]-1:
			desc++
			asc = 1
		default:
			asc, desc = 1, 1
		}
		if asc >= run || desc >= run {
			return true
		}
	}
	return false
}
