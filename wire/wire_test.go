package wire_test

import (
	"testing"

	"github.com/sessionlens/recorder/serialize"
	"github.com/sessionlens/recorder/wire"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	text := "hi"
	nodes := map[serialize.NodeID]*serialize.Node{
		0: {ID: 0, Kind: serialize.KindDocument, ChildIDs: []serialize.NodeID{1}},
		1: {ID: 1, Kind: serialize.KindElement, TagName: "P", ChildIDs: []serialize.NodeID{2}},
		2: {ID: 2, Kind: serialize.KindText, TextContent: &text},
	}

	b, err := wire.EncodeSnapshot(nodes)
	require.NoError(t, err)

	got, err := wire.DecodeSnapshot(b)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "P", got[1].TagName)
	require.Equal(t, "hi", *got[2].TextContent)
}

func TestMutationBatchRoundTrip(t *testing.T) {
	sib := serialize.NodeID(4)
	events := []wire.MutationEvent{
		{Type: wire.EventAttributes, Millis: 12.5, TargetID: 3, AttrName: "class", AttrValue: "x"},
		{Type: wire.EventChildListAdded, Millis: 13.0, TargetID: 3, NextSiblingID: &sib, Nodes: []serialize.NodeID{5}},
	}

	b, err := wire.EncodeMutationBatch(events)
	require.NoError(t, err)

	got, err := wire.DecodeMutationBatch(b)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, wire.EventAttributes, got[0].Type)
	require.Equal(t, "class", got[0].AttrName)
	require.Equal(t, serialize.NodeID(4), *got[1].NextSiblingID)
}
