package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/metrics"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-Id"

// RequestID stamps requests that have no X-Request-Id with a random one.
func RequestID() Middleware {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderRequestID) != "" {
				return next(req)
			}
			out := req.Clone(req.Context())
			out.Header.Set(HeaderRequestID, uuid.NewString())
			return next(out)
		}
	}
}

// Observe logs every call at debug level and records request metrics.
func Observe(log zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)
			elapsed := time.Since(start)

			metrics.RequestDuration.WithLabelValues(req.Method).Observe(elapsed.Seconds())
			code := "error"
			if resp != nil {
				code = strconv.Itoa(resp.StatusCode)
			}
			metrics.RequestsTotal.WithLabelValues(req.Method, code).Inc()

			evt := log.Debug()
			if err != nil {
				evt = log.Warn().Err(err)
			}
			evt.Str("method", req.Method).
				Str("url", req.URL.String()).
				Str("request_id", req.Header.Get(HeaderRequestID)).
				Str("code", code).
				Dur("elapsed", elapsed).
				Msg("api call")
			return resp, err
		}
	}
}
