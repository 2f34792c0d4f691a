package directory

import (
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/cryptox"
	"github.com/dmitrijs2005/gophdesk/internal/logging"
)

// Option customises a Service.
type Option func(*Service)

// WithLatency sets the simulated network delays.
func WithLatency(l Latency) Option {
	return func(s *Service) { s.latency = l }
}

// WithHasher replaces cryptox.DefaultHasher.
func WithHasher(h cryptox.Hasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithBootstrap overrides the credentials of the administrator account
// written by Initialize.
func WithBootstrap(username, secret string) Option {
	return func(s *Service) {
		s.adminUsername = username
		s.adminSecret = secret
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock sets the time source used for CreatedAt and session issuance.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}
