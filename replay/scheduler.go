// Package replay applies an ordered mutation list to a replay-side
// registry with real-time pacing (spec.md §4.8).
package replay

// FrameScheduler runs fn no earlier than the platform's next display
// frame. Events paced into the same frame must still run in the order
// they were scheduled (spec.md §5, "FIFO within a frame").
type FrameScheduler interface {
	ScheduleFrame(fn func())
}
