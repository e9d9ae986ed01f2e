package rendertest

import (
	"time"

	"hexthing/src/render"
)

// Surface is a window whose drawable size tests change directly.
type Surface struct {
	Size render.Extent
}

func NewSurface(width, height uint32) *Surface {
	return &Surface{Size: render.Extent{Width: width, Height: height}}
}

func (s *Surface) Extent() render.Extent {
	return s.Size
}

// defaultMaxPolls stops a loop that would otherwise never see a close.
const defaultMaxPolls = 1000

// Events is a scripted event source. Poll n (counting from 1) returns
// Script[n], then whatever OnPoll returns, then a close event once n reaches
// CloseAt.
type Events struct {
	Script  map[int][]render.Event
	OnPoll  func(n int) []render.Event
	CloseAt int
	// MaxPolls forces a close after this many polls; zero means 1000.
	MaxPolls int

	Polls int
	Waits []time.Duration
}

// CloseAfter returns a source that asks to close on poll n.
func CloseAfter(n int) *Events {
	return &Events{Script: map[int][]render.Event{}, CloseAt: n}
}

func (e *Events) Poll() []render.Event {
	e.Polls++
	evs := append([]render.Event(nil), e.Script[e.Polls]...)
	if e.OnPoll != nil {
		evs = append(evs, e.OnPoll(e.Polls)...)
	}
	limit := e.MaxPolls
	if limit == 0 {
		limit = defaultMaxPolls
	}
	if (e.CloseAt > 0 && e.Polls >= e.CloseAt) || e.Polls >= limit {
		evs = append(evs, render.CloseEvent())
	}
	return evs
}

func (e *Events) WaitEvents(timeout time.Duration) {
	e.Waits = append(e.Waits, timeout)
}
