//go:build js && wasm

package replay

import "syscall/js"

// rafScheduler paces frame-scoped work through the browser's
// requestAnimationFrame, the platform's own notion of "next display
// frame" (spec.md §4.8 step 3).
type rafScheduler struct{}

// NewFrameScheduler returns the browser-backed FrameScheduler.
func NewFrameScheduler() FrameScheduler {
	return rafScheduler{}
}

func (rafScheduler) ScheduleFrame(fn func()) {
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) any {
		cb.Release()
		fn()
		return nil
	})
	js.Global().Call("requestAnimationFrame", cb)
}
