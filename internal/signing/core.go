package signing

import (
	"fmt"

	"github.com/cybergodev/jwtauth/internal/core"
)

// Signer names the header alg value, encodes claim maps into segments and
// signs the header.payload input.
type Signer interface {
	Alg() string
	Encode(claims map[string]any) (string, error)
	Sign(headerSegment, payloadSegment, secret string) (string, error)
}

// SigningInput joins the encoded header and payload with a dot.
func SigningInput(headerSegment, payloadSegment string) string {
	buf := make([]byte, 0, len(headerSegment)+1+len(payloadSegment))
	buf = append(buf, headerSegment...)
	buf = append(buf, '.')
	buf = append(buf, payloadSegment...)
	return string(buf)
}

// SignedString encodes header and payload with m and appends the signature.
func SignedString(m Signer, header, payload map[string]any, secret string) (string, error) {
	headerSegment, err := m.Encode(header)
	if err != nil {
		return "", fmt.Errorf("failed to encode header: %w", err)
	}

	payloadSegment, err := m.Encode(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	signature, err := m.Sign(headerSegment, payloadSegment, secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return SigningInput(headerSegment, payloadSegment) + "." + signature, nil
}

// Lookup returns the signer registered for alg. Only HS256 is registered.
func Lookup(alg string) (Signer, error) {
	switch alg {
	case AlgHS256:
		return HS256, nil
	default:
		return nil, fmt.Errorf("unsupported signing method: %q", alg)
	}
}

// encode is shared by every method: the segment codec does not depend on
// the algorithm.
func encode(claims map[string]any) (string, error) {
	return core.EncodeSegment(claims)
}
