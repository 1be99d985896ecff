//go:build js && wasm

package session

import (
	"github.com/sessionlens/recorder/domnode"
	"github.com/sessionlens/recorder/observe"
	"github.com/sessionlens/recorder/reactivity"
)

// Observe starts watching target for mutations, emitting every event
// onto the session's Stream, and ties the browser MutationObserver's
// lifetime to scope (spec.md §4.4, §9 "observer callback lifetime").
// mutationstream.Stream.Emit already satisfies observe.Emitter.
func (s *CaptureSession) Observe(target domnode.Node, scope *reactivity.CleanupScope) *observe.Observer {
	return observe.Observe(target, s.Registry, s.Serializer, s.Clock, s.Stream, scope)
}
