// Package snapshot walks a live DOM subtree once, assigning ids in
// pre-order and populating a capture registry (spec.md §4.3).
package snapshot

import (
	"github.com/sessionlens/recorder/domnode"
	"github.com/sessionlens/recorder/serialize"
)

// Registry is the subset of registry.Capture the Snapshotter needs.
type Registry interface {
	Register(n domnode.Node) serialize.NodeID
	PutSerialized(rec *serialize.Node)
	UpdateSerialized(id serialize.NodeID, mutator func(*serialize.Node))
}

// Serializer is the subset of *serialize.Serializer the Snapshotter
// needs.
type Serializer interface {
	Serialize(n domnode.Node, id serialize.NodeID) (*serialize.Node, error)
}

// Snapshotter performs the single connected-tree walk spec.md §4.3
// describes.
type Snapshotter struct {
	reg Registry
	ser Serializer
}

// New builds a Snapshotter over reg and ser.
func New(reg Registry, ser Serializer) *Snapshotter {
	return &Snapshotter{reg: reg, ser: ser}
}

type stackEntry struct {
	node     domnode.Node
	parentID serialize.NodeID
	hasParent bool
}

// Walk performs an iterative pre-order depth-first traversal of root,
// registering every visited node and returning the set of ids it
// created. Per spec.md §4.3, children are pushed in reverse order so
// they pop left-to-right, and a node whose Element interface exposes a
// shadow root descends into it immediately after its regular children
// (the shadow root is walked as if it were one more child, carrying the
// host's id as its parent, matching the "it rides along as a child
// entry" resolution of the shadow-root open question).
func (s *Snapshotter) Walk(root domnode.Node) ([]serialize.NodeID, error) {
	return s.walk(stackEntry{node: root})
}

// WalkSubtree performs the same traversal as Walk, but seeded with
// (root, parentID): used by the Observer Adapter's added-subtree walk
// (spec.md §4.4), which additionally appends each new top-level id to
// parentID's serialized child_ids, exactly like every other node in the
// walk.
func (s *Snapshotter) WalkSubtree(root domnode.Node, parentID serialize.NodeID) ([]serialize.NodeID, error) {
	return s.walk(stackEntry{node: root, parentID: parentID, hasParent: true})
}

func (s *Snapshotter) walk(seed stackEntry) ([]serialize.NodeID, error) {
	created := make([]serialize.NodeID, 0)
	stack := []stackEntry{seed}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := s.reg.Register(top.node)
		rec, err := s.ser.Serialize(top.node, id)
		if err != nil {
			return created, err
		}
		s.reg.PutSerialized(rec)
		created = append(created, id)

		if top.hasParent {
			s.reg.UpdateSerialized(top.parentID, func(parent *serialize.Node) {
				parent.AppendChildID(id)
			})
		}

		children := top.node.ChildNodes()
		var shadow domnode.Node
		if el, ok := domnode.AsElement(top.node); ok {
			if sr, ok := el.ShadowRoot(); ok {
				shadow = sr
			}
		}
		if shadow != nil {
			stack = append(stack, stackEntry{node: shadow, parentID: id, hasParent: true})
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, stackEntry{node: children[i], parentID: id, hasParent: true})
		}
	}

	return created, nil
}
