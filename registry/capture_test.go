package registry_test

import (
	"testing"

	"github.com/sessionlens/recorder/domnode/fakenode"
	"github.com/sessionlens/recorder/registry"
	"github.com/sessionlens/recorder/serialize"
	"github.com/stretchr/testify/require"
)

func TestRegister_IsIdempotentByIdentity(t *testing.T) {
	c := registry.NewCapture()
	doc := fakenode.NewDocument("CSS1Compat", "https://example.com/")
	el := doc.CreateElement("DIV")

	id1 := c.Register(el)
	id2 := c.Register(el)
	require.Equal(t, id1, id2)

	lookedUp, ok := c.LookupID(el)
	require.True(t, ok)
	require.Equal(t, id1, lookedUp)
}

func TestRegister_AssignsDistinctMonotonicIds(t *testing.T) {
	c := registry.NewCapture()
	doc := fakenode.NewDocument("CSS1Compat", "https://example.com/")
	a := doc.CreateElement("DIV")
	b := doc.CreateElement("SPAN")

	idA := c.Register(a)
	idB := c.Register(b)
	require.NotEqual(t, idA, idB)
	require.Less(t, idA, idB)
}

func TestEvict_RemovesAllThreeEntries(t *testing.T) {
	c := registry.NewCapture()
	doc := fakenode.NewDocument("CSS1Compat", "https://example.com/")
	el := doc.CreateElement("DIV")
	id := c.Register(el)
	c.PutSerialized(&serialize.Node{ID: id, Kind: serialize.KindElement})

	c.Evict(id)

	_, ok := c.LookupNode(id)
	require.False(t, ok)
	_, ok = c.LookupSerialized(id)
	require.False(t, ok)
	_, ok = c.LookupID(el)
	require.False(t, ok)
}

func TestUpdateSerialized_MutatesStoredRecord(t *testing.T) {
	c := registry.NewCapture()
	c.PutSerialized(&serialize.Node{ID: 1, Kind: serialize.KindElement, TagName: "DIV"})

	c.UpdateSerialized(1, func(n *serialize.Node) {
		n.AppendChildID(2)
	})

	rec, ok := c.LookupSerialized(1)
	require.True(t, ok)
	require.Equal(t, []serialize.NodeID{2}, rec.ChildIDs)
}

func TestRootRegistration_RoundTrips(t *testing.T) {
	c := registry.NewCapture()
	doc := fakenode.NewDocument("CSS1Compat", "https://example.com/")
	id := c.Register(doc)

	_, found := c.RootID(doc)
	require.False(t, found)

	c.RegisterRoot(doc, id)
	got, found := c.RootID(doc)
	require.True(t, found)
	require.Equal(t, id, got)
}
