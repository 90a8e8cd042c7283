package memory

import (
	"github.com/viant/gatekeeper/service/approval"
	"github.com/viant/gatekeeper/service/messaging"
)

type Option func(*service)

// WithEventQueue replaces the default in-process event queue, e.g. with the
// filesystem vendor so that pending requests survive a restart and can be
// consumed by an out-of-band notifier.
func WithEventQueue(q messaging.Queue[approval.Event]) Option {
	return func(s *service) { s.events = q }
}

// WithDecider registers a default decider identity recorded on every
// decision that does not carry one (e.g. "system" for auto-deciders).
func WithDecider(identity string) Option {
	return func(s *service) { s.decider = identity }
}
