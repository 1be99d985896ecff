// Package registry implements the bidirectional node/id correspondence
// spec.md §4.1 describes for both the capture side (three-way: id, live
// node, serialized node, plus composed roots) and the replay side
// (two-way: id, live node).
//
// Live-node identity is established by tagging the underlying live
// object the first time it is seen (domnode.Node.SetIdentityTag), the
// same technique the teacher's dom.ScopeRegistry uses for Elements,
// generalized here to every node kind.
package registry

import (
	"strconv"
	"sync"

	"github.com/sessionlens/recorder/domnode"
	"github.com/sessionlens/recorder/serialize"
)

// Capture is the process-wide capture-side registry: id -> live node,
// live node -> id (by identity tag), id -> serialized node, and the list
// of composed roots seen so far. All operations are safe for concurrent
// use, though spec.md §5 notes the core itself runs cooperatively
// single-threaded; the mutex exists so tests may exercise the registry
// concurrently without extra scaffolding.
type Capture struct {
	mu sync.Mutex

	nextID     uint32
	tagSeq     uint64
	byID       map[serialize.NodeID]domnode.Node
	byTag      map[string]serialize.NodeID
	serialized map[serialize.NodeID]*serialize.Node
	roots      map[string]serialize.NodeID // keyed by composed root's identity tag
}

// NewCapture returns an empty capture registry. The first call to
// Register returns id 0, reserved for the snapshot root (spec.md §3).
func NewCapture() *Capture {
	return &Capture{
		byID:       make(map[serialize.NodeID]domnode.Node),
		byTag:      make(map[string]serialize.NodeID),
		serialized: make(map[serialize.NodeID]*serialize.Node),
		roots:      make(map[string]serialize.NodeID),
	}
}

// mintTag returns a fresh, unique identity tag. It never consumes a
// node id: tags and ids are independent sequences.
func (c *Capture) mintTag() string {
	c.tagSeq++
	return "n" + strconv.FormatUint(c.tagSeq, 36)
}

func (c *Capture) identityTagFor(n domnode.Node) string {
	if tag, ok := n.IdentityTag(); ok {
		return tag
	}
	tag := c.mintTag()
	n.SetIdentityTag(tag)
	return tag
}

// Register assigns the next id to n and stores forward/reverse entries.
// If n was already registered in this session (by identity), its
// existing id is returned unchanged (spec.md §4.1 idempotency rule).
// Ids are assigned from a monotonic counter and are never reused, even
// after Evict (spec.md §3 invariant).
func (c *Capture) Register(n domnode.Node) serialize.NodeID {
	c.mu.Lock()
	defer c.mu.Unlock()

	tag := c.identityTagFor(n)
	if id, ok := c.byTag[tag]; ok {
		return id
	}

	id := serialize.NodeID(c.nextID)
	c.nextID++
	c.byID[id] = n
	c.byTag[tag] = id
	return id
}

// LookupID returns the id registered for n, if any.
func (c *Capture) LookupID(n domnode.Node) (serialize.NodeID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tag, ok := n.IdentityTag()
	if !ok {
		return 0, false
	}
	id, ok := c.byTag[tag]
	return id, ok
}

// LookupNode returns the live node registered under id, if any.
func (c *Capture) LookupNode(id serialize.NodeID) (domnode.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.byID[id]
	return n, ok
}

// LookupSerialized returns the serialized record stored under id, if
// any.
func (c *Capture) LookupSerialized(id serialize.NodeID) (*serialize.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.serialized[id]
	return n, ok
}

// PutSerialized stores rec under its own id, overwriting any previous
// record. Used by the Snapshotter/Observer right after Serialize.
func (c *Capture) PutSerialized(rec *serialize.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serialized[rec.ID] = rec
}

// UpdateSerialized applies mutator to the stored record for id, if one
// exists.
func (c *Capture) UpdateSerialized(id serialize.NodeID, mutator func(*serialize.Node)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec, ok := c.serialized[id]; ok {
		mutator(rec)
	}
}

// Evict removes id's forward, reverse, and serialized entries. The
// caller is responsible for recursing into children (spec.md §4.1).
func (c *Capture) Evict(id serialize.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.byID[id]; ok {
		if tag, ok := n.IdentityTag(); ok {
			delete(c.byTag, tag)
		}
	}
	delete(c.byID, id)
	delete(c.serialized, id)
}

// Snapshot returns a shallow copy of the id->serialized-node map, ready
// for wire.EncodeSnapshot.
func (c *Capture) Snapshot() map[serialize.NodeID]*serialize.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[serialize.NodeID]*serialize.Node, len(c.serialized))
	for id, rec := range c.serialized {
		out[id] = rec
	}
	return out
}

// RootID implements serialize.RootResolver.
func (c *Capture) RootID(root domnode.Node) (serialize.NodeID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tag, ok := root.IdentityTag()
	if !ok {
		return 0, false
	}
	id, ok := c.roots[tag]
	return id, ok
}

// RegisterRoot implements serialize.RootResolver.
func (c *Capture) RegisterRoot(root domnode.Node, id serialize.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tag := c.identityTagFor(root)
	c.roots[tag] = id
}
