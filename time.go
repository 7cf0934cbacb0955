package jwtauth

import "time"

// Clock returns the current time. Builders, validators and parsed tokens
// read time only through a Clock so tests can pin it.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

func (c Clock) unix() int64 {
	if c == nil {
		return time.Now().Unix()
	}
	return c().Unix()
}

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// NumericDate converts t to the integer Unix seconds used by exp, nbf and iat.
func NumericDate(t time.Time) int64 {
	return t.Unix()
}
