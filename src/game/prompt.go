package game

import "fmt"

//Verdict is the answer of the restart prompt
type Verdict int

const (
	VerdictRestart Verdict = iota
	VerdictQuit
)

func (v Verdict) String() string {
	if v == VerdictRestart {
		return "restart"
	}
	return "quit"
}

//AwaitVerdict blocks until the player asks for a replay or quits
//every other key is ignored
func AwaitVerdict(in InputSource) (Verdict, error) {
	for {
		key, err := in.Read()
		if err != nil {
			return VerdictQuit, fmt.Errorf("await verdict: %w", err)
		}
		switch PromptEvent(key) {
		case EventRestart:
			return VerdictRestart, nil
		case EventQuit:
			return VerdictQuit, nil
		}
	}
}
