package session

import (
	"github.com/sessionlens/recorder/action"
	"github.com/sessionlens/recorder/domnode"
	"github.com/sessionlens/recorder/idclock"
	"github.com/sessionlens/recorder/mutationstream"
	"github.com/sessionlens/recorder/registry"
	"github.com/sessionlens/recorder/serialize"
	"github.com/sessionlens/recorder/snapshot"
	"github.com/sessionlens/recorder/wire"
)

// CaptureSession owns the one registry, serializer, clock, and mutation
// stream a recorded page needs (spec.md §5, §9's "Session value"
// guidance). It is expected to live as a process-wide singleton per
// recorded page.
type CaptureSession struct {
	Config Config

	Registry    *registry.Capture
	Serializer  *serialize.Serializer
	Snapshotter *snapshot.Snapshotter
	Clock       *idclock.Source
	Stream      *mutationstream.Stream
}

// NewCaptureSession wires a fresh capture session. actionType
// namespaces this session's mutation events on bus so multiple
// sessions (e.g. in tests) may safely share one bus.
func NewCaptureSession(cfg Config, bus action.Bus, actionType string, docURL string, sink mutationstream.Sink) *CaptureSession {
	reg := registry.NewCapture()
	ser := serialize.New(reg, docURL)
	snap := snapshot.New(reg, ser)
	clock := idclock.New()
	stream := mutationstream.New(bus, actionType, cfg.FlushInterval(), sink)

	return &CaptureSession{
		Config:      cfg,
		Registry:    reg,
		Serializer:  ser,
		Snapshotter: snap,
		Clock:       clock,
		Stream:      stream,
	}
}

// Snapshot walks root, registering every node it reaches, and returns
// the wire-ready snapshot payload (spec.md §4.3, §6).
func (s *CaptureSession) Snapshot(root domnode.Node) ([]byte, error) {
	if _, err := s.Snapshotter.Walk(root); err != nil {
		return nil, err
	}
	return wire.EncodeSnapshot(s.Registry.Snapshot())
}

// Run starts the mutation stream's flush loop. Call it in its own
// goroutine; it returns when Close is called.
func (s *CaptureSession) Run() {
	s.Stream.Run()
}

// Close stops the mutation stream, flushing any buffered events.
func (s *CaptureSession) Close() {
	s.Stream.Close()
}
