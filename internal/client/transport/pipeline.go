// Package transport is the client's HTTP stack: an ordered middleware
// pipeline mounted as the http.RoundTripper of a resty client.
//
// The default pipeline is
//
//	RequestID → Observe → Auditor → Authorizer → network
//
// so the Authorizer runs immediately before a request is dispatched and the
// Auditor runs immediately after its response arrives.
package transport

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/core/ports"
)

// Handler sends one request.
type Handler func(*http.Request) (*http.Response, error)

// Middleware wraps a Handler. Middlewares must not modify the request they
// receive; they clone it first.
type Middleware func(next Handler) Handler

// Pipeline runs a fixed list of middlewares around a base RoundTripper.
type Pipeline struct {
	handler Handler
}

var _ http.RoundTripper = (*Pipeline)(nil)

// NewPipeline builds a pipeline. The first middleware is the outermost one.
// A nil base uses http.DefaultTransport.
func NewPipeline(base http.RoundTripper, mws ...Middleware) *Pipeline {
	if base == nil {
		base = http.DefaultTransport
	}
	h := Handler(base.RoundTrip)
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return &Pipeline{handler: h}
}

func (p *Pipeline) RoundTrip(req *http.Request) (*http.Response, error) {
	return p.handler(req)
}

// SessionPipeline assembles the default client pipeline around base.
type SessionPipeline struct {
	Session   ports.SessionInvalidator
	Decoder   ports.TokenDecoder
	Navigator ports.Navigator
	LoginPath string
	Now       func() time.Time
	Logger    zerolog.Logger
}

// Build returns the pipeline described in the package documentation.
func (s SessionPipeline) Build(base http.RoundTripper) *Pipeline {
	return NewPipeline(base,
		RequestID(),
		Observe(s.Logger),
		Auditor(s.Session, s.Navigator, s.LoginPath, s.Logger),
		Authorizer(s.Session, s.Decoder, s.Now, s.Logger),
	)
}
