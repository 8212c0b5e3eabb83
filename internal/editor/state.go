// ABOUTME: Resource editor lifecycle states and the pure transition function.
// ABOUTME: Loading, Ready, Submitting, Deleting, Navigated, LoadFailed and Stopped.

package editor

// State is an editor lifecycle state.
type State int

const (
	Loading State = iota
	Ready
	Submitting
	Deleting
	Navigated
	LoadFailed
	Stopped
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Deleting:
		return "deleting"
	case Navigated:
		return "navigated"
	case LoadFailed:
		return "load_failed"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event drives a state transition.
type Event int

const (
	EvLoaded Event = iota
	EvLoadFailed
	EvSubmit
	EvSubmitSucceeded
	EvSubmitSucceededNavigate
	EvSubmitFailed
	EvDelete
	EvDeleteDeclined
	EvDeleteSucceeded
	EvDeleteFailed
	EvRemount
	EvStop
)

func (e Event) String() string {
	switch e {
	case EvLoaded:
		return "loaded"
	case EvLoadFailed:
		return "load_failed"
	case EvSubmit:
		return "submit"
	case EvSubmitSucceeded:
		return "submit_succeeded"
	case EvSubmitSucceededNavigate:
		return "submit_succeeded_navigate"
	case EvSubmitFailed:
		return "submit_failed"
	case EvDelete:
		return "delete"
	case EvDeleteDeclined:
		return "delete_declined"
	case EvDeleteSucceeded:
		return "delete_succeeded"
	case EvDeleteFailed:
		return "delete_failed"
	case EvRemount:
		return "remount"
	case EvStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Transition returns the state after e. Events that do not apply to s leave
// it unchanged. Stopped is left only by a remount.
func Transition(s State, e Event) State {
	switch e {
	case EvRemount:
		return Loading
	case EvStop:
		return Stopped
	}

	switch s {
	case Loading:
		switch e {
		case EvLoaded:
			return Ready
		case EvLoadFailed:
			return LoadFailed
		}
	case Ready:
		switch e {
		case EvSubmit:
			return Submitting
		case EvDelete:
			return Deleting
		}
	case Submitting:
		switch e {
		case EvSubmitSucceeded, EvSubmitFailed:
			return Ready
		case EvSubmitSucceededNavigate:
			return Navigated
		}
	case Deleting:
		switch e {
		case EvDeleteDeclined, EvDeleteFailed:
			return Ready
		case EvDeleteSucceeded:
			return Navigated
		}
	}
	return s
}
