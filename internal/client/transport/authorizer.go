package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/core/ports"
	"github.com/marketplace/storefront/internal/metrics"
)

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
)

// sentToken records which token a request actually carried. The Auditor
// plants it in the request context and the Authorizer fills it in.
type sentToken struct {
	token string
}

type sentTokenKey struct{}

func withSentToken(ctx context.Context, token string) (context.Context, *sentToken) {
	st := &sentToken{token: token}
	return context.WithValue(ctx, sentTokenKey{}, st), st
}

func recordSentToken(ctx context.Context, token string) {
	if st, ok := ctx.Value(sentTokenKey{}).(*sentToken); ok {
		st.token = token
	}
}

// Authorizer attaches the session token to each request. The session is read
// on every call because the Auditor may clear it between requests.
//
//   - no token: the request goes out without Authorization
//   - undecodable token: the session is invalidated, no Authorization
//   - expired token (exp ≤ now): the session is invalidated, no Authorization
//   - otherwise: exactly one "Authorization: Bearer <token>"
//
// Invalidation only clears the token that was read here. A login that lands
// while the token is being checked survives.
func Authorizer(session ports.SessionInvalidator, dec ports.TokenDecoder, now func() time.Time, log zerolog.Logger) Middleware {
	if now == nil {
		now = time.Now
	}
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			ctx := req.Context()
			out := req.Clone(ctx)
			out.Header.Del(headerAuthorization)

			token := session.Bundle().Token
			if token == "" {
				metrics.AuthHeadersTotal.WithLabelValues("anonymous").Inc()
				recordSentToken(ctx, "")
				return next(out)
			}

			claims, err := dec.Decode(token)
			if err != nil {
				log.Warn().Err(err).Str("url", req.URL.String()).Msg("invalid token, clearing session")
				metrics.AuthHeadersTotal.WithLabelValues("invalid").Inc()
				session.InvalidateToken(ctx, token, ports.ReasonInvalid)
				recordSentToken(ctx, "")
				return next(out)
			}
			if claims.Expired(now()) {
				log.Warn().Time("expired_at", claims.ExpiresAt).Msg("token expired, clearing session")
				metrics.AuthHeadersTotal.WithLabelValues("expired").Inc()
				session.InvalidateToken(ctx, token, ports.ReasonExpired)
				recordSentToken(ctx, "")
				return next(out)
			}

			out.Header.Set(headerAuthorization, bearerPrefix+token)
			metrics.AuthHeadersTotal.WithLabelValues("attached").Inc()
			recordSentToken(ctx, token)
			return next(out)
		}
	}
}
