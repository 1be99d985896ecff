package mutationstream_test

import (
	"sync"
	"testing"
	"time"

	"github.com/sessionlens/recorder/action"
	"github.com/sessionlens/recorder/mutationstream"
	"github.com/sessionlens/recorder/wire"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu      sync.Mutex
	batches [][]byte
}

func (f *fakeSink) SendMutations(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, payload)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func TestStream_FlushesOnInterval(t *testing.T) {
	bus := action.New()
	sink := &fakeSink{}
	s := mutationstream.New(bus, "test.mutation", 20*time.Millisecond, sink)
	go s.Run()
	defer s.Close()

	require.NoError(t, s.Emit(wire.MutationEvent{Type: wire.EventAttributes, TargetID: 1, Millis: 1}))
	require.NoError(t, s.Emit(wire.MutationEvent{Type: wire.EventAttributes, TargetID: 2, Millis: 2}))

	require.Eventually(t, func() bool {
		return sink.count() >= 1
	}, time.Second, 5*time.Millisecond)

	events, err := wire.DecodeMutationBatch(sink.batches[0])
	require.NoError(t, err)
	require.Len(t, events, 2)
}

func TestStream_FlushesRemainingChunkOnClose(t *testing.T) {
	bus := action.New()
	sink := &fakeSink{}
	s := mutationstream.New(bus, "test.mutation.close", time.Hour, sink)
	go s.Run()

	require.NoError(t, s.Emit(wire.MutationEvent{Type: wire.EventAttributes, TargetID: 1, Millis: 1}))
	time.Sleep(10 * time.Millisecond) // let the consumer goroutine drain the event
	s.Close()

	require.Equal(t, 1, sink.count())
}
