package transport

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/core/ports"
	"github.com/marketplace/storefront/internal/metrics"
)

// Auditor reacts to 401 responses by clearing the session and sending the
// navigator to loginPath, unless it is already there. The response itself is
// passed on untouched so the caller still sees the failure. Transport errors
// and other statuses pass through.
//
// Only the token the request carried is cleared. A session that logged in
// while the request was in flight is kept and no redirect happens.
func Auditor(session ports.SessionInvalidator, nav ports.Navigator, loginPath string, log zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			ctx, sent := withSentToken(req.Context(), session.Bundle().Token)
			resp, err := next(req.WithContext(ctx))
			if err != nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			metrics.UnauthorizedTotal.Inc()
			if !session.InvalidateToken(ctx, sent.token, ports.ReasonUnauthorized) && session.IsAuthenticated() {
				log.Warn().
					Str("method", req.Method).
					Str("url", req.URL.String()).
					Msg("401 for a replaced session, keeping the current one")
				return resp, nil
			}
			log.Warn().
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Msg("401 from API, clearing session")

			if nav.Location() != loginPath {
				nav.Navigate(loginPath)
			}
			return resp, nil
		}
	}
}
