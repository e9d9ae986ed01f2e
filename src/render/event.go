package render

import "time"

type EventKind uint8

const (
	EventResize EventKind = iota + 1
	EventClose
	EventKey
)

type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
)

type Event struct {
	Kind          EventKind
	Width, Height int
	Key           Key
}

func ResizeEvent(width, height int) Event {
	return Event{Kind: EventResize, Width: width, Height: height}
}

func CloseEvent() Event {
	return Event{Kind: EventClose}
}

func KeyEvent(k Key) Event {
	return Event{Kind: EventKey, Key: k}
}

// EventSource yields window events without blocking.
type EventSource interface {
	Poll() []Event
}

// EventWaiter is implemented by event sources that can block until an event
// arrives or the timeout elapses. The frame loop uses it while the surface
// has no drawable area.
type EventWaiter interface {
	WaitEvents(timeout time.Duration)
}
