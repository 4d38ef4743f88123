// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the Idempotency-Key header on unsafe requests. The
// middleware only checks and stashes the key; whether a stored result is
// replayed is decided by the handler through the service. A lookup function,
// when given, lets the middleware spot replays early so the rate limiter can
// let them through without spending a token.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the client's key.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the key length. Values <= 0 mean 200.
	MaxLen int
	// Pattern restricts the key alphabet. Nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Scope names the operation the key belongs to. Empty means
	// "<METHOD> <route template>".
	Scope string
}

// IdempotencyLookup reports whether a still-valid record exists for
// (userID, scope, key) at now. Errors are treated as "no record".
type IdempotencyLookup func(ctx context.Context, userID uint, scope, key string, now time.Time) (bool, error)

// IdempotencyValidator checks the Idempotency-Key header when present.
//
//   - absent header: no-op
//   - malformed key: 400 bad_request
//   - lookup hit for an authenticated caller: exempts the request from
//     rate limiting
//
// Install it after Authenticate so the caller is known.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_request",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		actor := ActorFrom(c)
		if lookup != nil && actor.Authenticated() {
			scope := opts.Scope
			if scope == "" {
				scope = c.Request.Method + " " + c.FullPath()
			}
			if hit, _ := lookup(c.Request.Context(), actor.UserID, scope, key, time.Now().UTC()); hit {
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}
