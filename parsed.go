package jwtauth

// JWT is a read-only view of a parsed token. Accessors never fail: missing
// or mistyped claims read as "", 0 or nil.
type JWT struct {
	token     Token
	header    Claims
	payload   Claims
	signature string
	clock     Clock
}

// Token returns the token the view was parsed from.
func (j *JWT) Token() Token { return j.token }

// Header returns a copy of the header claims.
func (j *JWT) Header() Claims { return j.header.Clone() }

// Payload returns a copy of the payload claims.
func (j *JWT) Payload() Claims { return j.payload.Clone() }

// Signature returns the encoded signature segment.
func (j *JWT) Signature() string { return j.signature }

func (j *JWT) Algorithm() string   { return j.header.String(ClaimAlgorithm) }
func (j *JWT) Type() string        { return j.header.String(ClaimType) }
func (j *JWT) ContentType() string { return j.header.String(ClaimContentType) }

func (j *JWT) Issuer() string  { return j.payload.String(ClaimIssuer) }
func (j *JWT) Subject() string { return j.payload.String(ClaimSubject) }
func (j *JWT) JwtID() string   { return j.payload.String(ClaimJwtID) }

// Audience returns aud as a list. A single string audience is returned as
// a one-element list.
func (j *JWT) Audience() []string { return j.payload.StringSlice(ClaimAudience) }

func (j *JWT) Expiration() int64 { return j.payload.Int64(ClaimExpiration) }
func (j *JWT) NotBefore() int64  { return j.payload.Int64(ClaimNotBefore) }
func (j *JWT) IssuedAt() int64   { return j.payload.Int64(ClaimIssuedAt) }

// ExpiresIn returns the seconds left until exp, never less than zero.
func (j *JWT) ExpiresIn() int64 {
	return max(0, j.Expiration()-j.clock.unix())
}

// UsableIn returns the seconds left until nbf, never less than zero.
func (j *JWT) UsableIn() int64 {
	return max(0, j.NotBefore()-j.clock.unix())
}
