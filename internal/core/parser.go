package core

import (
	"regexp"
	"strings"
)

// SegmentCount is the number of dot-separated parts of a compact JWT.
const SegmentCount = 3

var structurePattern = regexp.MustCompile(`^[a-zA-Z0-9\-_=]+\.[a-zA-Z0-9\-_=]+\.[a-zA-Z0-9\-_=]+$`)

// SplitSegments splits raw on '.' into header, payload and signature.
// Missing parts are returned as empty strings; anything past the third
// separator is dropped.
func SplitSegments(raw string) [SegmentCount]string {
	var segments [SegmentCount]string
	parts := strings.SplitN(raw, ".", SegmentCount+1)
	for i := 0; i < len(parts) && i < SegmentCount; i++ {
		segments[i] = parts[i]
	}
	return segments
}

// MatchesStructure reports whether raw is exactly three non-empty groups of
// base64url characters (with optional '=' padding) joined by dots.
func MatchesStructure(raw string) bool {
	return structurePattern.MatchString(raw)
}
