package jwtauth

import (
	"errors"
	"fmt"

	"github.com/cybergodev/jwtauth/internal/core"
)

// Error kinds. Every error returned by this package matches one of these
// with errors.Is.
var (
	// Builder errors
	ErrWeakSecret          = errors.New("invalid secret: does not satisfy the secret policy")
	ErrExpiredClaim        = errors.New("expiration claim has expired")
	ErrInvalidAudience     = errors.New("invalid audience claim: must be a string or a list of strings")
	ErrInvalidPayloadClaim = errors.New("invalid payload claim")

	// Parse errors
	ErrDecoding     = core.ErrDecoding
	ErrMissingClaim = errors.New("claim is not set")

	// Validation errors
	ErrStructure = errors.New("token has an invalid structure")
	ErrAlgorithm = errors.New("algorithm claim is not valid")
	ErrSignature = errors.New("signature is invalid")
	ErrNotBefore = errors.New("not before claim has not elapsed")
	ErrAudience  = errors.New("audience claim does not contain the expected value")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error codes carried by *Error.
const (
	CodeStructure           = 1
	CodeAudience            = 2
	CodeSignature           = 3
	CodeExpiredClaim        = 4
	CodeNotBefore           = 5
	CodeMissingExpiration   = 6
	CodeMissingNotBefore    = 7
	CodeInvalidPayloadClaim = 8
	CodeWeakSecret          = 9
	CodeInvalidAudience     = 10
	CodeMissingAudience     = 11
	CodeAlgorithmNotAllowed = 12
	CodeMissingAlgorithm    = 13
	CodeAlgorithmNone       = 14
	CodeDecoding            = 15
)

// Error is a failure with a stable numeric code. Err is the kind sentinel
// (or a wrapped cause whose chain contains it).
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (code %d)", e.Err, e.Code)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code int, kind error, format string, args ...any) *Error {
	msg := kind.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Code: code, Message: msg, Err: kind}
}

// decodingError wraps a codec failure for the named segment.
func decodingError(segment string, err error) *Error {
	return &Error{
		Code:    CodeDecoding,
		Message: fmt.Sprintf("failed to decode %s: %v", segment, err),
		Err:     err,
	}
}

func missingClaim(code int, claim string) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf("%s claim is not set", claim),
		Err:     ErrMissingClaim,
	}
}

// ErrorCode returns the code of the first *Error in err's chain, or 0.
func ErrorCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
