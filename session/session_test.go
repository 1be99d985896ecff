package session_test

import (
	"testing"

	"github.com/sessionlens/recorder/action"
	"github.com/sessionlens/recorder/domnode"
	"github.com/sessionlens/recorder/domnode/fakenode"
	"github.com/sessionlens/recorder/serialize"
	"github.com/sessionlens/recorder/session"
	"github.com/sessionlens/recorder/wire"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mutations [][]byte
}

func (f *fakeSink) SendMutations(payload []byte) error {
	f.mutations = append(f.mutations, payload)
	return nil
}

type syncScheduler struct{}

func (syncScheduler) ScheduleFrame(fn func()) { fn() }

func TestCaptureSession_Snapshot_RoundTripsThroughReplaySession(t *testing.T) {
	doc := fakenode.NewDocument("CSS1Compat", "https://example.com/")
	html := doc.CreateElement("HTML")
	body := doc.CreateElement("BODY")
	p := doc.CreateElement("P")
	text := doc.CreateTextNode("hi")
	doc.AppendChild(html)
	html.AppendChild(body)
	body.AppendChild(p)
	p.AppendChild(text)

	cfg := session.DefaultConfig()
	sink := &fakeSink{}
	bus := action.NewBus()
	cap := session.NewCaptureSession(cfg, bus, "test.mutations", doc.URL(), sink)

	payload, err := cap.Snapshot(doc)
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	target := fakenode.NewDocument("CSS1Compat", "https://example.com/")
	rep := session.NewReplaySession(cfg, syncScheduler{})
	require.NoError(t, rep.IngestSnapshot(target, payload))

	rebuiltHTML, ok := target.LastChild()
	require.True(t, ok)
	htmlEl, ok := domnode.AsElement(rebuiltHTML)
	require.True(t, ok)
	require.Equal(t, "html", htmlEl.TagName())

	rebuiltBody, ok := rebuiltHTML.LastChild()
	require.True(t, ok)
	rebuiltP, ok := rebuiltBody.LastChild()
	require.True(t, ok)
	rebuiltText, ok := rebuiltP.LastChild()
	require.True(t, ok)
	cd, ok := domnode.AsCharacterData(rebuiltText)
	require.True(t, ok)
	data, _ := cd.Data()
	require.Equal(t, "hi", data)
}

func TestReplaySession_IngestMutations_AppliesAttributeChange(t *testing.T) {
	target := fakenode.NewDocument("CSS1Compat", "https://example.com/")
	el := target.CreateElement("DIV")
	target.AppendChild(el)

	cfg := session.DefaultConfig()
	rep := session.NewReplaySession(cfg, syncScheduler{})
	rep.Registry.Put(0, target)
	rep.Registry.Put(1, el)
	rep.Registry.PutSerialized(&serialize.Node{ID: 1, Kind: serialize.KindElement, TagName: "DIV"})

	batch, err := wire.EncodeMutationBatch([]wire.MutationEvent{
		{Type: wire.EventAttributes, Millis: 1, TargetID: 1, AttrName: "data-x", AttrValue: "y"},
	})
	require.NoError(t, err)
	require.NoError(t, rep.IngestMutations(batch))

	v, ok := el.GetAttribute("data-x")
	require.True(t, ok)
	require.Equal(t, "y", v)
}
