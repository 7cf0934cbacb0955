// Package httpauth authenticates HTTP requests carrying HS256 bearer tokens.
package httpauth

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cybergodev/jwtauth"
)

type contextKey struct{}

// NewContext returns a copy of ctx carrying token.
func NewContext(ctx context.Context, token *jwtauth.JWT) context.Context {
	return context.WithValue(ctx, contextKey{}, token)
}

// FromContext returns the token stored by Middleware.
func FromContext(ctx context.Context) (*jwtauth.JWT, bool) {
	token, ok := ctx.Value(contextKey{}).(*jwtauth.JWT)
	return token, ok && token != nil
}

// ErrorResponse is the JSON body written on authentication failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

// Option configures Middleware.
type Option func(*options)

type options struct {
	logger            *zap.Logger
	audience          string
	requireExpiration bool
	cookie            string
	limiter           *FailureLimiter
}

// WithLogger logs rejected requests at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAudience requires the aud claim to contain audience.
func WithAudience(audience string) Option {
	return func(o *options) { o.audience = audience }
}

// WithRequireExpiration rejects tokens without an exp claim. By default exp
// and nbf are only enforced when present.
func WithRequireExpiration() Option {
	return func(o *options) { o.requireExpiration = true }
}

// WithCookie also reads the token from the named cookie when the request
// has no Authorization header.
func WithCookie(name string) Option {
	return func(o *options) { o.cookie = name }
}

// WithFailureLimiter refuses clients with too many rejected tokens with
// 429 Too Many Requests.
func WithFailureLimiter(limiter *FailureLimiter) Option {
	return func(o *options) { o.limiter = limiter }
}

// Middleware authenticates every request with a token signed by secret.
// The token must pass p's structure, algorithm and signature checks, then
// the expiration, not-before and audience checks selected by opts. On
// success the parsed token is available through FromContext; otherwise the
// request is answered with 401 and a JSON ErrorResponse.
func Middleware(p *jwtauth.Processor, secret string, opts ...Option) func(http.Handler) http.Handler {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientID(r)
			if o.limiter != nil && o.limiter.Blocked(client) {
				w.Header().Set("Retry-After", strconv.Itoa(max(1, int(o.limiter.RetryAfter().Seconds()))))
				writeError(w, http.StatusTooManyRequests, "too_many_requests", "too many invalid tokens", 0)
				return
			}

			raw := extractToken(r, o.cookie)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "missing_token", "no bearer token provided", 0)
				return
			}

			token, err := authenticate(p, raw, secret, o)
			if err != nil {
				o.logger.Debug("request rejected",
					zap.String("client", client),
					zap.Int("code", jwtauth.ErrorCode(err)),
					zap.Error(err),
				)
				if o.limiter != nil {
					o.limiter.Fail(client)
				}
				writeError(w, http.StatusUnauthorized, errorName(err), "invalid or expired token", jwtauth.ErrorCode(err))
				return
			}

			if o.limiter != nil {
				o.limiter.Reset(client)
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), token)))
		})
	}
}

func authenticate(p *jwtauth.Processor, raw, secret string, o *options) (*jwtauth.JWT, error) {
	v := p.Validator(raw, secret)
	if !v.Validate() {
		return nil, v.Err()
	}

	token, err := p.Parser(raw, secret).Parse()
	if err != nil {
		return nil, err
	}

	payload := token.Payload()
	if o.requireExpiration || payload.Has(jwtauth.ClaimExpiration) {
		v.Expiration()
	}
	if payload.Has(jwtauth.ClaimNotBefore) {
		v.NotBefore()
	}
	if o.audience != "" {
		v.Audience(o.audience)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return token, nil
}

// RequireClaim answers 403 unless the authenticated token's claim key equals
// value, or is a list containing it. It must run after Middleware.
func RequireClaim(key, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "request is not authenticated", 0)
				return
			}
			if !slices.Contains(token.Payload().StringSlice(key), value) {
				writeError(w, http.StatusForbidden, "forbidden", "insufficient claims", 0)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request, cookie string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if cookie != "" {
		if c, err := r.Cookie(cookie); err == nil {
			return c.Value
		}
	}
	return ""
}

// clientID is the host of r.RemoteAddr. Forwarding headers are ignored;
// behind a trusted proxy mount chi's middleware.RealIP first so RemoteAddr
// already holds the client address.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func errorName(err error) string {
	switch {
	case errors.Is(err, jwtauth.ErrExpiredClaim):
		return "token_expired"
	case errors.Is(err, jwtauth.ErrNotBefore):
		return "token_not_yet_valid"
	case errors.Is(err, jwtauth.ErrAudience), errors.Is(err, jwtauth.ErrInvalidAudience):
		return "invalid_audience"
	default:
		return "invalid_token"
	}
}

func writeError(w http.ResponseWriter, status int, name, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: name, Message: message, Code: code})
}
