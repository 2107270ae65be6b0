package world

import "sync/atomic"

type handlerWrapper func(*World, Handler) Handler

var worldHandlerWrap atomic.Value

func init() {
	worldHandlerWrap.Store(handlerWrapper(func(_ *World, h Handler) Handler {
		return h
	}))
}

// SetHandlerWrap installs a wrapper applied to every handler added through
// World.Handle, for example to log or time weather observers. Passing nil
// restores the identity wrapper. Handlers added before the call are not
// rewrapped.
func SetHandlerWrap(w func(*World, Handler) Handler) {
	if w == nil {
		worldHandlerWrap.Store(handlerWrapper(func(_ *World, h Handler) Handler {
			return h
		}))
		return
	}
	worldHandlerWrap.Store(handlerWrapper(w))
}

func wrapWorldHandler(w *World, h Handler) Handler {
	return worldHandlerWrap.Load().(handlerWrapper)(w, h)
}
