package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/foodgram-backend/internal/auth"
	"github.com/tbourn/foodgram-backend/internal/domain"
)

const (
	ctxKeyActor  = "actor"
	ctxKeyUserID = "userID"

	// HeaderUserID carries a user id set by a trusted proxy.
	HeaderUserID = "X-User-ID"
)

// ActorLookup resolves a verified user id to an actor and reports whether
// the account still exists.
type ActorLookup func(ctx context.Context, userID uint) (domain.Actor, bool, error)

// AuthOptions configures Authenticate.
type AuthOptions struct {
	// Secret verifies HS256 bearer tokens. Empty rejects every token.
	Secret string
	// TrustUserHeader accepts X-User-ID without a token. Only for deployments
	// behind a proxy that strips the header from client requests.
	TrustUserHeader bool
	Lookup          ActorLookup
}

// ActorFrom returns the caller set by Authenticate, or the anonymous actor.
func ActorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(ctxKeyActor); ok {
		if a, ok := v.(domain.Actor); ok {
			return a
		}
	}
	return domain.Actor{}
}

// Authenticate verifies the caller's credentials, if any, and stores the
// resulting actor in the context. Requests without credentials continue as
// anonymous; permission checks further down decide what they may do.
// Invalid credentials are rejected with 401.
//
// Accepted forms:
//
//	Authorization: Token <jwt>
//	Authorization: Bearer <jwt>
//	X-User-ID: <id>            (TrustUserHeader only)
func Authenticate(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, present, err := credentials(c, opts)
		if !present {
			c.Next()
			return
		}
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		actor := domain.Actor{UserID: uid}
		if opts.Lookup != nil {
			a, found, err := opts.Lookup(c.Request.Context(), uid)
			if err != nil {
				LoggerFrom(c).Error().Err(err).Uint("user_id", uid).Msg("actor lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"request_id": c.Writer.Header().Get(requestIDHeader),
					"code":       "internal_error",
					"message":    "internal server error",
				})
				return
			}
			if !found {
				abortUnauthorized(c, "user not found")
				return
			}
			actor = a
		}

		id := strconv.FormatUint(uint64(actor.UserID), 10)
		c.Set(ctxKeyActor, actor)
		c.Set(ctxKeyUserID, id)
		l := LoggerFrom(c).With().Str("user_id", id).Logger()
		c.Set(ctxKeyLogger, &l)
		c.Next()
	}
}

func credentials(c *gin.Context, opts AuthOptions) (uid uint, present bool, err error) {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		tok = strings.TrimSpace(tok)
		if !ok || tok == "" || !(strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "Token")) {
			return 0, true, auth.ErrInvalidToken
		}
		if opts.Secret == "" {
			return 0, true, auth.ErrInvalidToken
		}
		claims, err := auth.ParseToken([]byte(opts.Secret), tok)
		if err != nil {
			return 0, true, err
		}
		return claims.UserID, true, nil
	}
	if opts.TrustUserHeader {
		if h := strings.TrimSpace(c.GetHeader(HeaderUserID)); h != "" {
			n, err := strconv.ParseUint(h, 10, 64)
			if err != nil || n == 0 {
				return 0, true, auth.ErrInvalidToken
			}
			return uint(n), true, nil
		}
	}
	return 0, false, nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
