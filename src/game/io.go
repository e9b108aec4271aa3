package game

import (
	"time"

	"pixelfight/src/battlefield"
)

//InputSource delivers raw keys
type InputSource interface {
	//Poll returns immediately, ok is false when no key is pending
	Poll() (key byte, ok bool, err error)
	//Read blocks until a key arrives
	Read() (byte, error)
}

//Renderer is the output device, the game draws one full frame per loop iteration
//nothing is visible until Flush is called
type Renderer interface {
	Clear() error
	HideCursor()
	ShowCursor()
	DrawCell(x int, y int, c battlefield.RGB, glyph rune)
	//DrawCaption sets the one-line caption shown below the field
	DrawCaption(text string)
	Flush() error
}

//Observer is notified about every tick and every change of the round state
type Observer interface {
	Refresh(st Status)
}

//Clock is the time source of the fixed timestep loop
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

//SystemClock is the wall clock
var SystemClock Clock = systemClock{}

//VirtualClock only moves when somebody sleeps on it
//the loop driven by it simulates as fast as the machine allows
type VirtualClock struct {
	now time.Time
}

func NewVirtualClock() *VirtualClock {
	return &VirtualClock{now: time.Unix(0, 0)}
}

func (c *VirtualClock) Now() time.Time { return c.now }

func (c *VirtualClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }
