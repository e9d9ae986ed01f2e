package render

// State is the frame loop's observable state.
type State uint8

const (
	Running State = iota
	// AwaitingRecreate is reported while the swapchain-dependent resources
	// are due to be rebuilt at the top of the next iteration.
	AwaitingRecreate
	Exiting
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingRecreate:
		return "awaiting-recreate"
	case Exiting:
		return "exiting"
	}
	return "unknown"
}
