// Package mutationstream buffers outgoing mutation events and flushes
// them in time-bounded batches (spec.md §4.6).
//
// The single-producer/single-consumer queue is the teacher's own
// action.Stream[T] (github.com/sessionlens/recorder/action), reused
// directly rather than reimplemented: events are dispatched through an
// action.Bus as Action[string] (JSON payload) and pulled back out
// through action.ToStream with a transform that decodes the JSON, the
// same bridge-with-transform pattern action/bus.go's own ToStream
// example exercises.
package mutationstream

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sessionlens/recorder/action"
	"github.com/sessionlens/recorder/logutil"
	"github.com/sessionlens/recorder/wire"
)

// Sink is the narrow transport surface mutationstream needs: hand an
// encoded batch off for asynchronous delivery. transport.MutationSink
// implements it.
type Sink interface {
	SendMutations(payload []byte) error
}

// Stream is the time-batched outbound mutation queue (spec.md §4.6).
type Stream struct {
	bus        action.Bus
	actionType string
	in         action.Stream[wire.MutationEvent]
	sink       Sink
	interval   time.Duration

	mu    sync.Mutex
	chunk []wire.MutationEvent

	stop        chan struct{}
	done        chan struct{}
	consumeDone chan struct{}
}

// New builds a Stream that flushes to sink at least every interval.
// actionType namespaces this stream's events on bus, allowing several
// independent mutationstream.Streams to share one bus.
func New(bus action.Bus, actionType string, interval time.Duration, sink Sink) *Stream {
	in := action.ToStream[wire.MutationEvent](bus, actionType,
		action.BridgeWithBufferSize(256),
		action.BridgeWithDropPolicy(action.DropOldest),
		action.BridgeWithTransform(func(payload any) any {
			raw, ok := payload.(string)
			if !ok {
				return wire.MutationEvent{}
			}
			var ev wire.MutationEvent
			if err := json.Unmarshal([]byte(raw), &ev); err != nil {
				logutil.Logf("[mutationstream] dropping malformed event: %v", err)
				return wire.MutationEvent{}
			}
			return ev
		}),
	)

	return &Stream{
		bus:        bus,
		actionType: actionType,
		in:         in,
		sink:       sink,
		interval:   interval,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		consumeDone: make(chan struct{}),
	}
}

// Emit enqueues ev for delivery. It is the producer side of the single-
// producer/single-consumer contract spec.md §4.6 requires.
func (s *Stream) Emit(ev wire.MutationEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.bus.Dispatch(action.Action[string]{Type: s.actionType, Payload: string(payload)})
}

// Run drains the queue and flushes a chunk whenever interval has
// elapsed since the previous flush, until Close is called. Call it in
// its own goroutine.
func (s *Stream) Run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	go s.consume()

	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.stop:
			<-s.consumeDone
			s.flush()
			return
		}
	}
}

func (s *Stream) consume() {
	defer close(s.consumeDone)
	for {
		ev, ok := s.in.Recv()
		if !ok {
			return
		}
		s.mu.Lock()
		s.chunk = append(s.chunk, ev)
		s.mu.Unlock()
	}
}

func (s *Stream) flush() {
	s.mu.Lock()
	if len(s.chunk) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.chunk
	s.chunk = nil
	s.mu.Unlock()

	payload, err := wire.EncodeMutationBatch(batch)
	if err != nil {
		logutil.Logf("[mutationstream] encode error, dropping batch: %v", err)
		return
	}
	if err := s.sink.SendMutations(payload); err != nil {
		logutil.Logf("[mutationstream] transport error, dropping batch: %v", err)
	}
}

// Close stops accepting new flush ticks, flushes any remaining chunk,
// and waits for Run to return.
func (s *Stream) Close() {
	s.in.Dispose()
	close(s.stop)
	<-s.done
}
