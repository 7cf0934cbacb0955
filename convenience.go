package jwtauth

var defaultProcessor = newProcessor()

// Generate creates an HS256 token from a flat claim map using DefaultConfig.
// See Processor.Generate for the rules applied to the claims.
func Generate(payload map[string]any, secret string) (string, error) {
	token, err := defaultProcessor.Generate(payload, secret)
	if err != nil {
		return "", err
	}
	return token.Raw(), nil
}

// Validate reports whether token is well formed, uses an allowed algorithm
// and is signed with secret. It never returns an error; use a Validator to
// learn why a token was rejected.
func Validate(token, secret string) bool {
	return defaultProcessor.Validate(token, secret)
}

// GetPayload decodes the payload claims of token without checking its
// signature or structure.
func GetPayload(token, secret string) (Claims, error) {
	return defaultProcessor.GetPayload(token, secret)
}
