package game

//RunningState is the control state of the current round
type RunningState int

const (
	RunningStatePlaying RunningState = iota
	RunningStatePaused
	RunningStateStopped
)

func (s RunningState) String() string {
	switch s {
	case RunningStatePlaying:
		return "playing"
	case RunningStatePaused:
		return "paused"
	case RunningStateStopped:
		return "stopped"
	}
	return "unknown"
}

//Event is one discrete input event, at most one is produced per input poll
type Event int

const (
	EventNone Event = iota
	EventResume
	EventPause
	EventQuit
	EventRecolor
	EventRestart
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventResume:
		return "resume"
	case EventPause:
		return "pause"
	case EventQuit:
		return "quit"
	case EventRecolor:
		return "recolor"
	case EventRestart:
		return "restart"
	}
	return "unknown"
}

//keys understood while the fight is running
const (
	KeyRecolor = 'c'
	KeyResume  = ' '
	KeyPause   = 's'
	KeyQuit    = 'q'
	KeyRestart = 'r'
)

//ControlEvent maps a raw key read during the fight to an event
//unknown keys are not an error, they are EventNone
func ControlEvent(key byte) Event {
	switch key {
	case KeyRecolor:
		return EventRecolor
	case KeyResume:
		return EventResume
	case KeyPause:
		return EventPause
	case KeyQuit:
		return EventQuit
	}
	return EventNone
}

//PromptEvent maps a raw key read by the restart prompt to an event
func PromptEvent(key byte) Event {
	switch key {
	case KeyRestart:
		return EventRestart
	case KeyQuit:
		return EventQuit
	}
	return EventNone
}

//Transition returns the control state after the event
//recolor is handled by the caller, it never changes the state
func Transition(s RunningState, ev Event) RunningState {
	switch ev {
	case EventResume:
		return RunningStatePlaying
	case EventPause:
		return RunningStatePaused
	case EventQuit:
		return RunningStateStopped
	case EventNone, EventRecolor, EventRestart:
		return s
	}
	return s
}
