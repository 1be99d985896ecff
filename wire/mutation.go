// Package wire defines the binary-serialized payload shapes spec.md §6
// requires for snapshot and mutation ingest, and their JSON encoding.
//
// JSON with an explicit `type` discriminator is the corpus's own answer
// to "ordered tagged-union event log on the wire" — see
// internal/recording/types.go in the retrieved gasoline-mcp-ai-devtools
// repository, which solves the identical shape of problem the same way.
package wire

import "github.com/sessionlens/recorder/serialize"

// EventType discriminates the MutationEvent tagged union (spec.md §4.4,
// §4.8).
type EventType string

const (
	EventChildListAdded   EventType = "childListAdded"
	EventChildListRemoved EventType = "childListRemoved"
	EventCharacterData    EventType = "characterData"
	EventAttributes       EventType = "attributes"
)

// MutationEvent is one entry of the ordered mutation payload (spec.md
// §4.4, §6). Only the fields relevant to Type are populated; the rest
// are left at their zero value.
type MutationEvent struct {
	Type   EventType       `json:"type"`
	Millis float64         `json:"millis"`

	TargetID serialize.NodeID `json:"targetId"`

	// ChildListAdded / ChildListRemoved
	PrevSiblingID *serialize.NodeID            `json:"prevSiblingId,omitempty"`
	NextSiblingID *serialize.NodeID            `json:"nextSiblingId,omitempty"`
	Nodes         []serialize.NodeID           `json:"nodes,omitempty"`
	AddedMap      map[serialize.NodeID]*serialize.Node `json:"addedMap,omitempty"`

	// CharacterData
	TextContent string `json:"textContent,omitempty"`

	// Attributes
	AttrName  string `json:"attrName,omitempty"`
	AttrValue string `json:"attrValue,omitempty"`
}

// MutationBatch is the ordered sequence of events spec.md §6 specifies
// for the mutation ingest payload.
type MutationBatch struct {
	Events []MutationEvent `json:"events"`
}
