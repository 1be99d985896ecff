package wire

import (
	"encoding/json"
	"fmt"

	"github.com/sessionlens/recorder/serialize"
)

// SnapshotPayload is the snapshot ingest body: a mapping from id to
// serialized node (spec.md §6).
type SnapshotPayload struct {
	Nodes map[serialize.NodeID]*serialize.Node `json:"nodes"`
}

// EncodeSnapshot serializes a capture registry's id->serialized-node map
// to the wire format.
func EncodeSnapshot(nodes map[serialize.NodeID]*serialize.Node) ([]byte, error) {
	b, err := json.Marshal(SnapshotPayload{Nodes: nodes})
	if err != nil {
		return nil, fmt.Errorf("wire: encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a snapshot payload produced by EncodeSnapshot.
func DecodeSnapshot(b []byte) (map[serialize.NodeID]*serialize.Node, error) {
	var payload SnapshotPayload
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("wire: decode snapshot: %w", err)
	}
	return payload.Nodes, nil
}

// EncodeMutationBatch serializes an ordered mutation event list to the
// wire format.
func EncodeMutationBatch(events []MutationEvent) ([]byte, error) {
	b, err := json.Marshal(MutationBatch{Events: events})
	if err != nil {
		return nil, fmt.Errorf("wire: encode mutation batch: %w", err)
	}
	return b, nil
}

// DecodeMutationBatch parses a mutation payload produced by
// EncodeMutationBatch.
func DecodeMutationBatch(b []byte) ([]MutationEvent, error) {
	var payload MutationBatch
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("wire: decode mutation batch: %w", err)
	}
	return payload.Events, nil
}
