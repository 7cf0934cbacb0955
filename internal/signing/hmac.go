package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"hash"

	"github.com/cybergodev/jwtauth/internal/security"
)

// AlgHS256 is the header alg value for HMAC-SHA256.
const AlgHS256 = "HS256"

type hmacSigningMethod struct {
	name     string
	hashFunc func() hash.Hash
}

// HS256 signs with HMAC-SHA256.
var HS256 Signer = &hmacSigningMethod{name: AlgHS256, hashFunc: sha256.New}

func (h *hmacSigningMethod) Alg() string {
	return h.name
}

func (h *hmacSigningMethod) Encode(claims map[string]any) (string, error) {
	return encode(claims)
}

func (h *hmacSigningMethod) Sign(headerSegment, payloadSegment, secret string) (string, error) {
	mac := h.mac(headerSegment, payloadSegment, secret)
	defer security.ZeroBytes(mac)

	return base64.RawURLEncoding.EncodeToString(mac), nil
}

func (h *hmacSigningMethod) mac(headerSegment, payloadSegment, secret string) []byte {
	key := security.NewSecureBytes(secret)
	defer key.Destroy()

	hasher := hmac.New(h.hashFunc, key.Bytes())
	hasher.Write([]byte(headerSegment))
	hasher.Write([]byte{'.'})
	hasher.Write([]byte(payloadSegment))
	return hasher.Sum(nil)
}
