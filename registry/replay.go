package registry

import (
	"sync"

	"github.com/sessionlens/recorder/domnode"
	"github.com/sessionlens/recorder/serialize"
)

// Replay is the replay-side registry: id -> live node and id ->
// serialized node (spec.md §4.1, §3). Unlike Capture it needs no reverse
// lookup or identity tagging — the Rebuilder/Replayer always address
// nodes by id, never by live-node identity.
type Replay struct {
	mu         sync.Mutex
	byID       map[serialize.NodeID]domnode.Node
	serialized map[serialize.NodeID]*serialize.Node
}

// NewReplay returns an empty replay registry.
func NewReplay() *Replay {
	return &Replay{
		byID:       make(map[serialize.NodeID]domnode.Node),
		serialized: make(map[serialize.NodeID]*serialize.Node),
	}
}

// Put records that id now maps to the live node n.
func (r *Replay) Put(id serialize.NodeID, n domnode.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = n
}

// LookupNode returns the live node registered under id, if any.
func (r *Replay) LookupNode(id serialize.NodeID) (domnode.Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	return n, ok
}

// PutSerialized stores (or overwrites) the serialized record for id.
func (r *Replay) PutSerialized(rec *serialize.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serialized[rec.ID] = rec
}

// MergeSerialized copies every entry of m into the replay serialized
// map, overwriting any existing entries with the same id (spec.md
// §4.7 step 2, and the ChildListAdded application rule in §4.8).
func (r *Replay) MergeSerialized(m map[serialize.NodeID]*serialize.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range m {
		r.serialized[id] = rec
	}
}

// LookupSerialized returns the serialized record stored under id, if
// any.
func (r *Replay) LookupSerialized(id serialize.NodeID) (*serialize.Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.serialized[id]
	return n, ok
}

// UpdateSerialized applies mutator to the stored record for id, if one
// exists.
func (r *Replay) UpdateSerialized(id serialize.NodeID, mutator func(*serialize.Node)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.serialized[id]; ok {
		mutator(rec)
	}
}

// Evict removes id's live-node and serialized entries.
func (r *Replay) Evict(id serialize.NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	delete(r.serialized, id)
}

// Size reports the number of ids currently reachable in the live-node
// map.
func (r *Replay) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
