package view

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"pixelfight/src/battlefield"
)

var captionStyle = tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 255, 255))

//Screen is the raw true-color frontend: the field is drawn at the top-left corner
//and the caption on the line below it
type Screen struct {
	s      tcell.Screen
	height int
	keys   chan byte
	closed chan struct{}
	once   sync.Once
}

//NewScreen takes over the terminal
func NewScreen(height int) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newScreen(s, height)
}

func newScreen(s tcell.Screen, height int) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	sc := &Screen{
		s:      s,
		height: height,
		keys:   make(chan byte, 64),
		closed: make(chan struct{}),
	}
	go sc.pollEvents()
	return sc, nil
}

//pollEvents translates terminal events to raw keys until the screen is finalized
func (sc *Screen) pollEvents() {
	for {
		switch ev := sc.s.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			sc.s.Sync()
		case *tcell.EventKey:
			var key byte
			switch {
			case ev.Key() == tcell.KeyCtrlC:
				key = 'q'
			case ev.Key() == tcell.KeyRune && ev.Rune() < 0x80:
				key = byte(ev.Rune())
			default:
				continue
			}
			select {
			case sc.keys <- key:
			case <-sc.closed:
				return
			}
		}
	}
}

//Close gives the terminal back
func (sc *Screen) Close() {
	sc.once.Do(func() {
		close(sc.closed)
		sc.s.Fini()
	})
}

func (sc *Screen) Poll() (byte, bool, error) {
	select {
	case k := <-sc.keys:
		return k, true, nil
	case <-sc.closed:
		return 0, false, ErrClosed
	default:
		return 0, false, nil
	}
}

func (sc *Screen) Read() (byte, error) {
	select {
	case k := <-sc.keys:
		return k, nil
	case <-sc.closed:
		return 0, ErrClosed
	}
}

func (sc *Screen) Clear() error {
	sc.s.Clear()
	return nil
}

func (sc *Screen) HideCursor() { sc.s.HideCursor() }

func (sc *Screen) ShowCursor() { sc.s.ShowCursor(0, 0) }

func (sc *Screen) DrawCell(x int, y int, c battlefield.RGB, glyph rune) {
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
	sc.s.SetContent(x, y, glyph, nil, style)
}

func (sc *Screen) DrawCaption(text string) {
	w, _ := sc.s.Size()
	x := 0
	for _, r := range text {
		sc.s.SetContent(x, sc.height, r, nil, captionStyle)
		x++
	}
	for ; x < w; x++ {
		sc.s.SetContent(x, sc.height, ' ', nil, tcell.StyleDefault)
	}
}

func (sc *Screen) Flush() error {
	select {
	case <-sc.closed:
		return ErrClosed
	default:
	}
	sc.s.Show()
	return nil
}
