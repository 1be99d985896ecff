package session

import (
	"github.com/sessionlens/recorder/domnode"
	"github.com/sessionlens/recorder/rebuild"
	"github.com/sessionlens/recorder/registry"
	"github.com/sessionlens/recorder/replay"
	"github.com/sessionlens/recorder/wire"
)

// ReplaySession owns the one replay registry, rebuilder, and replayer a
// replay iframe needs (spec.md §5, §9).
type ReplaySession struct {
	Config Config

	Registry  *registry.Replay
	Rebuilder *rebuild.Rebuilder
	Replayer  *replay.Replayer
}

// NewReplaySession wires a fresh replay session, pacing mutation
// application through sched (replay.NewFrameScheduler() for the
// platform's real scheduler, or a test double).
func NewReplaySession(cfg Config, sched replay.FrameScheduler) *ReplaySession {
	reg := registry.NewReplay()
	rb := rebuild.New(reg)
	rp := replay.New(reg, rb, sched)

	return &ReplaySession{
		Config:    cfg,
		Registry:  reg,
		Rebuilder: rb,
		Replayer:  rp,
	}
}

// IngestSnapshot decodes and rebuilds a snapshot payload into target,
// populating the replay registry (spec.md §4.7).
func (s *ReplaySession) IngestSnapshot(target domnode.Document, payload []byte) error {
	nodes, err := wire.DecodeSnapshot(payload)
	if err != nil {
		return err
	}
	return s.Rebuilder.Rebuild(target, nodes)
}

// IngestMutations decodes a mutation batch and schedules it for paced
// application (spec.md §4.8).
func (s *ReplaySession) IngestMutations(payload []byte) error {
	events, err := wire.DecodeMutationBatch(payload)
	if err != nil {
		return err
	}
	s.Replayer.Replay(events)
	return nil
}
