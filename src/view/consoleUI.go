package view

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"pixelfight/src/battlefield"
	"pixelfight/src/game"
)

//ErrClosed is returned by the input methods once the terminal UI is gone
var ErrClosed = errors.New("terminal UI closed")

type keyBindings struct {
	key   interface{}
	name  string
	descr string
	char  byte
}

type consoleCell struct {
	color uint8
	glyph rune
}

//ConsoleUI is the full-screen gocui frontend
//it is the game's Renderer, InputSource and Observer at the same time
//the game loop publishes snapshots, layout draws the latest one on the gocui goroutine
type ConsoleUI struct {
	g       *gocui.Gui
	k       []keyBindings
	options game.Options
	keys    chan byte
	closed  chan struct{}
	pending atomic.Bool

	//frame being drawn by the game loop
	cells   []consoleCell
	caption string

	mu     sync.Mutex
	latest consoleSnapshot
}

//consoleSnapshot is what the screen shows, published frames are never modified
type consoleSnapshot struct {
	frame   []consoleCell
	caption string
	cursor  bool
	status  game.Status
}

var (
	runningStateDescr = map[game.RunningState]string{
		game.RunningStatePlaying: aurora.Colorize("fighting", aurora.CyanFg).String(),
		game.RunningStatePaused:  aurora.Colorize("paused", aurora.BlueFg).String(),
		game.RunningStateStopped: aurora.Colorize("finished", aurora.RedFg).String(),
	}
)

func NewConsoleUI(o game.Options) (*ConsoleUI, error) {
	var err error
	t := newConsoleState(o)

	t.g, err = gocui.NewGui(gocui.Output256)
	if err != nil {
		return nil, err
	}

	t.k = []keyBindings{
		{gocui.KeyCtrlC, "^C", "Exit", game.KeyQuit},
		{'q', "Q", "Quit", game.KeyQuit},
		{gocui.KeySpace, "SPACE", "Play", game.KeyResume},
		{'s', "S", "Stop", game.KeyPause},
		{'c', "C", "Change colors", game.KeyRecolor},
		{'r', "R", "Replay", game.KeyRestart},
	}
	t.g.SetManagerFunc(t.layout)

	if err = t.initKeyBindings(t.k); err != nil {
		t.g.Close()
		return nil, err
	}

	return t, nil
}

func newConsoleState(o game.Options) *ConsoleUI {
	return &ConsoleUI{
		options: o,
		keys:    make(chan byte, 64),
		closed:  make(chan struct{}),
		cells:   make([]consoleCell, o.Width*o.Height),
		latest:  consoleSnapshot{frame: make([]consoleCell, o.Width*o.Height)},
	}
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) error {
	for _, kb := range k {
		char := kb.char
		if err := t.g.SetKeybinding("", kb.key, gocui.ModNone, func(_ *gocui.Gui, _ *gocui.View) error {
			t.push(char)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

//push queues the key for the game loop, the key is dropped when nobody reads
func (t *ConsoleUI) push(key byte) {
	select {
	case t.keys <- key:
	default:
	}
}

//Start runs the gocui main loop until Stop is called or the terminal fails
func (t *ConsoleUI) Start() error {
	err := t.g.MainLoop()
	close(t.closed)
	t.g.Close()
	if err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

//Stop asks the main loop to quit, returns immediately
func (t *ConsoleUI) Stop() {
	t.g.Update(func(*gocui.Gui) error {
		return gocui.ErrQuit
	})
}

func (t *ConsoleUI) Poll() (byte, bool, error) {
	select {
	case k := <-t.keys:
		return k, true, nil
	case <-t.closed:
		return 0, false, ErrClosed
	default:
		return 0, false, nil
	}
}

func (t *ConsoleUI) Read() (byte, error) {
	select {
	case k := <-t.keys:
		return k, nil
	case <-t.closed:
		return 0, ErrClosed
	}
}

func (t *ConsoleUI) Clear() error {
	for i := range t.cells {
		t.cells[i] = consoleCell{}
	}
	t.caption = ""
	return nil
}

func (t *ConsoleUI) HideCursor() {
	t.setCursor(false)
	t.wake()
}

func (t *ConsoleUI) ShowCursor() {
	t.setCursor(true)
	t.wake()
}

func (t *ConsoleUI) DrawCell(x int, y int, c battlefield.RGB, glyph rune) {
	if x < 0 || y < 0 || x >= t.options.Width || y >= t.options.Height {
		return
	}
	t.cells[y*t.options.Width+x] = consoleCell{xterm256(c), glyph}
}

func (t *ConsoleUI) DrawCaption(text string) {
	t.caption = text
}

//Flush publishes the frame, the screen shows it on the next layout
func (t *ConsoleUI) Flush() error {
	select {
	case <-t.closed:
		return ErrClosed
	default:
	}
	t.publish()
	t.wake()
	return nil
}

//Refresh implements game.Observer
func (t *ConsoleUI) Refresh(st game.Status) {
	t.mu.Lock()
	t.latest.status = st
	t.mu.Unlock()
	t.wake()
}

func (t *ConsoleUI) publish() {
	frame := make([]consoleCell, len(t.cells))
	copy(frame, t.cells)
	t.mu.Lock()
	t.latest.frame = frame
	t.latest.caption = t.caption
	t.mu.Unlock()
}

func (t *ConsoleUI) setCursor(on bool) {
	t.mu.Lock()
	t.latest.cursor = on
	t.mu.Unlock()
}

func (t *ConsoleUI) snapshot() consoleSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

//wake makes the main loop run layout, at most one wake up is queued at a time
func (t *ConsoleUI) wake() {
	if !t.pending.CompareAndSwap(false, true) {
		return
	}
	t.g.Update(func(*gocui.Gui) error {
		t.pending.Store(false)
		return nil
	})
}

//draw puts the latest snapshot on the screen, runs on the gocui goroutine
func (t *ConsoleUI) draw(g *gocui.Gui) {
	s := t.snapshot()
	g.Cursor = s.cursor

	if v, e := g.View("battlefield"); e == nil {
		v.Clear()
		maxW, maxH := v.Size()
		_, _ = fmt.Fprint(v, fieldText(s.frame, t.options.Width, t.options.Height, maxW, maxH))
	}
	if v, e := g.View("caption"); e == nil {
		v.Clear()
		if s.caption != "" {
			_, _ = fmt.Fprint(v, " "+aurora.Bold(s.caption).String())
		}
	}
	if v, e := g.View("status"); e == nil {
		v.Clear()
		_, _ = fmt.Fprint(v, t.statusText(s.status))
	}
}

//fieldText renders the w x h frame into a view of maxW x maxH
func fieldText(cells []consoleCell, w int, h int, maxW int, maxH int) string {
	crop := w > maxW || h > maxH

	var b bytes.Buffer
	for y := 0; y < h; y++ {
		//discard the data outside the view area
		if y >= maxH {
			break
		}
		if y != 0 {
			b.WriteByte('\n')
		}
		if crop && y == (maxH-1) {
			b.WriteString(aurora.Red("The field size is larger than the viewing area").BgBlack().String())
			break
		}
		row := cells[y*w : (y+1)*w]
		if len(row) > maxW {
			row = row[:maxW]
		}
		writeRow(&b, row)
	}
	return b.String()
}

//writeRow writes the row colorizing runs of equal color with a single escape sequence
func writeRow(b *bytes.Buffer, row []consoleCell) {
	for i := 0; i < len(row); {
		j := i
		var run strings.Builder
		for j < len(row) && row[j].color == row[i].color {
			glyph := row[j].glyph
			if glyph == 0 {
				glyph = ' '
			}
			run.WriteRune(glyph)
			j++
		}
		b.WriteString(aurora.Index(row[i].color, run.String()).String())
		i = j
	}
}

func (t *ConsoleUI) statusText(s game.Status) string {
	share := 0.0
	if s.Cells > 0 {
		share = 100 * float64(s.LiveCells) / float64(s.Cells)
	}
	var b strings.Builder
	_, _ = fmt.Fprintln(&b, t.renderProp("Round", "%v", s.Round))
	_, _ = fmt.Fprintln(&b, t.renderProp("Tick", "%v", s.IterationNum))
	_, _ = fmt.Fprintln(&b, t.renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
	_, _ = fmt.Fprintln(&b, t.renderProp("Player 1", "%v %.1f%%", t.swatch(s.Palette.Player1), share))
	_, _ = fmt.Fprintln(&b, t.renderProp("Player 2", "%v %.1f%%", t.swatch(s.Palette.Player2), 100-share))
	_, _ = fmt.Fprintln(&b, t.renderProp("Evaluation time", "%v", s.IterationTime))
	if s.Converged {
		_, _ = fmt.Fprintln(&b, t.renderProp("Winner", "%v", winnerName(s.Winner)))
	}
	return b.String()
}

func (t *ConsoleUI) writeConfiguration(v *gocui.View) {
	c := t.options
	v.Clear()
	_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v x %v", c.Width, c.Height))
	_, _ = fmt.Fprintln(v, t.renderProp("Tick rate", "%v per second", c.TickRate))
	_, _ = fmt.Fprintln(v, t.renderProp("Glyph", "%c", c.Glyph))
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) swatch(c battlefield.RGB) string {
	return aurora.Index(xterm256(c), "██").String()
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("battlefield")
		_ = g.DeleteView("caption")
		return nil
	}
	if _, err := t.headerLayout(g, 3, "Pixel fight"); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
		t.writeConfiguration(v)
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
	}

	if v, err := g.SetView("battlefield", leftColumnWidth+1, 3, maxX-1, maxY-7); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Battle Field"
		v.Frame = true
	}

	if v, err := g.SetView("caption", leftColumnWidth+1, maxY-7, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = true
	}

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		for i, k := range t.k {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	t.draw(g)
	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		if maxX < len(text) {
			return v, fmt.Errorf("terminal width is too small: %v", maxX)
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", (maxX-len(text))/2)+text)
	}
	return
}

func winnerName(c battlefield.Cell) string {
	if c {
		return "player 1"
	}
	return "player 2"
}
