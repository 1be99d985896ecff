package replay

import (
	"math"
	"sort"
	"time"

	"github.com/sessionlens/recorder/domnode"
	"github.com/sessionlens/recorder/logutil"
	"github.com/sessionlens/recorder/serialize"
	"github.com/sessionlens/recorder/wire"
)

// Registry is the subset of registry.Replay the Replayer needs.
type Registry interface {
	Put(id serialize.NodeID, n domnode.Node)
	LookupNode(id serialize.NodeID) (domnode.Node, bool)
	LookupSerialized(id serialize.NodeID) (*serialize.Node, bool)
	MergeSerialized(m map[serialize.NodeID]*serialize.Node)
	UpdateSerialized(id serialize.NodeID, mutator func(*serialize.Node))
	Evict(id serialize.NodeID)
}

// Builder is the subset of *rebuild.Rebuilder the Replayer needs to
// construct nodes added mid-session (spec.md §4.7.1, reused verbatim by
// §4.8's ChildListAdded application).
type Builder interface {
	Build(rec *serialize.Node, parent, prevSibling, nextSibling domnode.Node) (domnode.Node, error)
}

// Replayer applies an ordered mutation list to a replay registry with
// real-time pacing (spec.md §4.8).
type Replayer struct {
	reg   Registry
	build Builder
	sched FrameScheduler

	// sleep is overridden in tests to avoid real wall-clock waits.
	sleep func(time.Duration)
}

// New builds a Replayer over reg and build, pacing frame-scoped work
// through sched.
func New(reg Registry, build Builder, sched FrameScheduler) *Replayer {
	return &Replayer{reg: reg, build: build, sched: sched, sleep: time.Sleep}
}

// Replay sorts events by millis and applies each one, waiting
// floor(millis delta) between events and running the application itself
// on the next scheduled frame (spec.md §4.8 steps 1-3). It returns only
// once every event has been scheduled; it does not wait for the final
// frame callback to run.
func (r *Replayer) Replay(events []wire.MutationEvent) {
	sorted := make([]wire.MutationEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Millis < sorted[j].Millis })

	lastMillis := 0.0
	for _, ev := range sorted {
		delta := math.Floor(ev.Millis - lastMillis)
		if delta > 0 {
			r.sleep(time.Duration(delta) * time.Millisecond)
		}
		lastMillis = ev.Millis

		ev := ev
		r.sched.ScheduleFrame(func() { r.apply(ev) })
	}
}

func (r *Replayer) apply(ev wire.MutationEvent) {
	switch ev.Type {
	case wire.EventChildListAdded:
		r.applyChildListAdded(ev)
	case wire.EventChildListRemoved:
		r.applyChildListRemoved(ev)
	case wire.EventCharacterData:
		r.applyCharacterData(ev)
	case wire.EventAttributes:
		r.applyAttributes(ev)
	}
}

func (r *Replayer) applyChildListAdded(ev wire.MutationEvent) {
	r.reg.MergeSerialized(ev.AddedMap)

	parent, ok := r.reg.LookupNode(ev.TargetID)
	if !ok {
		logutil.Logf("%v", &Inconsistency{Op: "childListAdded", NodeID: ev.TargetID, Reason: "dangling parent"})
		return
	}

	var prevSibling domnode.Node
	if ev.PrevSiblingID != nil {
		prevSibling, _ = r.reg.LookupNode(*ev.PrevSiblingID)
	}
	var nextSibling domnode.Node
	if ev.NextSiblingID != nil {
		nextSibling, _ = r.reg.LookupNode(*ev.NextSiblingID)
	}

	for _, id := range ev.Nodes {
		rec, ok := ev.AddedMap[id]
		if !ok {
			logutil.Logf("%v", &Inconsistency{Op: "childListAdded", NodeID: id, Reason: "missing from added_map"})
			continue
		}
		built, err := r.build.Build(rec, parent, prevSibling, nextSibling)
		if err != nil {
			logutil.Logf("replay: childListAdded: build node %d: %v", id, err)
			continue
		}
		r.reg.Put(id, built)
		prevSibling = built

		if err := r.buildSubtree(rec, built); err != nil {
			logutil.Logf("replay: childListAdded: build subtree of %d: %v", id, err)
		}
	}
}

// buildSubtree builds and attaches every descendant of an already-built
// node, using the same iterative stack shape as the Rebuilder (spec.md
// §4.7 step 3): children are appended in child_ids order, so siblings
// are always built with nil prevSibling/nextSibling.
func (r *Replayer) buildSubtree(rootRec *serialize.Node, rootLive domnode.Node) error {
	type frame struct {
		parent   domnode.Node
		children []serialize.NodeID
	}
	stack := []frame{{parent: rootLive, children: rootRec.ChildIDs}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.children) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		childID := top.children[0]
		top.children = top.children[1:]

		rec, ok := r.reg.LookupSerialized(childID)
		if !ok {
			return &Inconsistency{Op: "buildSubtree", NodeID: childID, Reason: "missing serialized record"}
		}
		built, err := r.build.Build(rec, top.parent, nil, nil)
		if err != nil {
			return err
		}
		r.reg.Put(childID, built)
		stack = append(stack, frame{parent: built, children: rec.ChildIDs})
	}
	return nil
}

func (r *Replayer) applyChildListRemoved(ev wire.MutationEvent) {
	parent, ok := r.reg.LookupNode(ev.TargetID)
	if !ok {
		logutil.Logf("%v", &Inconsistency{Op: "childListRemoved", NodeID: ev.TargetID, Reason: "dangling parent"})
		return
	}
	for _, id := range ev.Nodes {
		n, ok := r.reg.LookupNode(id)
		if !ok {
			logutil.Logf("%v", &Inconsistency{Op: "childListRemoved", NodeID: id, Reason: "missing target"})
			continue
		}
		parent.RemoveChild(n)
		r.evictSubtree(id)
	}
}

// evictSubtree evicts id and every recorded descendant from the replay
// registry, mirroring observe.Observer.evictSubtree on the capture side
// (spec.md §4.1 lifecycle): removing a node detaches its whole subtree,
// so nothing below it should remain addressable by id either.
func (r *Replayer) evictSubtree(id serialize.NodeID) {
	rec, ok := r.reg.LookupSerialized(id)
	if !ok {
		r.reg.Evict(id)
		return
	}
	for _, childID := range rec.ChildIDs {
		r.evictSubtree(childID)
	}
	r.reg.Evict(id)
}

func (r *Replayer) applyCharacterData(ev wire.MutationEvent) {
	n, ok := r.reg.LookupNode(ev.TargetID)
	if !ok {
		logutil.Logf("%v", &Inconsistency{Op: "characterData", NodeID: ev.TargetID, Reason: "missing target"})
		return
	}
	cd, ok := domnode.AsCharacterData(n)
	if !ok {
		logutil.Logf("replay: characterData: node %d is not character data", ev.TargetID)
		return
	}
	cd.SetData(ev.TextContent)
	text := ev.TextContent
	r.reg.UpdateSerialized(ev.TargetID, func(rec *serialize.Node) {
		rec.TextContent = &text
	})
}

func (r *Replayer) applyAttributes(ev wire.MutationEvent) {
	n, ok := r.reg.LookupNode(ev.TargetID)
	if !ok {
		logutil.Logf("%v", &Inconsistency{Op: "attributes", NodeID: ev.TargetID, Reason: "missing target"})
		return
	}
	el, ok := domnode.AsElement(n)
	if !ok {
		logutil.Logf("replay: attributes: node %d is not an element", ev.TargetID)
		return
	}
	el.SetAttribute(ev.AttrName, ev.AttrValue)
	r.reg.UpdateSerialized(ev.TargetID, func(rec *serialize.Node) {
		rec.ReplaceAttribute(ev.AttrName, ev.AttrValue)
	})
}
