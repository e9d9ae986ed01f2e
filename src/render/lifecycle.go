package render

// Lifecycle tracks whether a resource group may be used.
type Lifecycle uint8

const (
	Uninitialized Lifecycle = iota
	Ready
	Destroyed
)

func (l Lifecycle) String() string {
	switch l {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

func (l Lifecycle) mustBeReady(what string) {
	invariant(l == Ready, "%s used while %s", what, l)
}
