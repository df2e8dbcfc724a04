package marionette

// FrameEvent describes one completed EndFrame.
type FrameEvent struct {
	Frame uint64
	Delta float64
	Stats FrameStats
}

// FrameObserver is the optional hook notified after every EndFrame. See
// package ecs for a Donburi-backed implementation.
type FrameObserver interface {
	FrameEnded(event FrameEvent)
}

// SetObserver sets the frame observer. Nil disables notifications.
func (r *Rig) SetObserver(o FrameObserver) {
	r.observer = o
}
