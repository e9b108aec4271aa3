package game

import (
	"fmt"
	"io"
	"log"
	"time"

	"pixelfight/src/battlefield"
)

//default options
const (
	DefTickRate = 30
	DefGlyph    = '█'
)

//HelpCaption is shown below the field while the fight is running
const HelpCaption = "q = quit, r = replay, c = change colors, s = stop, space = play"

//Options represents the game's configurable options
type Options struct {
	Width    int
	Height   int
	Glyph    rune
	TickRate int
	MaxTicks int //stop the run when a round reaches MaxTicks, 0 means no limit
	Logger   *log.Logger
}

var DefaultOptions = Options{
	Width:    battlefield.DefWidth,
	Height:   battlefield.DefHeight,
	Glyph:    DefGlyph,
	TickRate: DefTickRate,
}

//Round is one play-through from the split field to the convergence
type Round struct {
	Number  int
	Area    battlefield.Area
	Palette battlefield.Palette
	State   RunningState
	Tick    int
}

//Status represents the status of the game at concrete moment
type Status struct {
	Round         int
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	Cells         int
	IterationTime time.Duration
	Palette       battlefield.Palette
	Converged     bool
	Winner        battlefield.Cell
}

//Game owns the current round and drives it with a fixed timestep
type Game struct {
	options   Options
	dt        time.Duration
	acc       time.Duration
	engine    battlefield.Engine
	rng       battlefield.Rand
	input     InputSource
	renderer  Renderer
	clock     Clock
	observers []Observer
	round     Round
	log       *log.Logger
}

//New creates the game, the first round starts with Run or Reset
func New(o *Options, engine battlefield.Engine, rng battlefield.Rand, input InputSource, renderer Renderer) *Game {
	if o == nil {
		o = &DefaultOptions
	}
	opts := *o
	if opts.TickRate <= 0 {
		opts.TickRate = DefTickRate
	}
	if opts.Glyph == 0 {
		opts.Glyph = DefGlyph
	}
	g := &Game{
		options:  opts,
		dt:       time.Second / time.Duration(opts.TickRate),
		engine:   engine,
		rng:      rng,
		input:    input,
		renderer: renderer,
		clock:    SystemClock,
		log:      opts.Logger,
	}
	if g.log == nil {
		g.log = log.New(io.Discard, "", 0)
	}
	return g
}

//SetClock replaces the wall clock, must be called before Run
func (g *Game) SetClock(c Clock) {
	g.clock = c
}

//RegisterObserver registers the observer - the game will call it when the state is changed
func (g *Game) RegisterObserver(o Observer) {
	g.observers = append(g.observers, o)
}

//Options returns the game configuration
func (g *Game) Options() Options {
	return g.options
}

//TickDuration returns the simulated time of one tick
func (g *Game) TickDuration() time.Duration {
	return g.dt
}

//Round returns a snapshot of the current round
//the area is copied, engines reuse their buffers on the next ticks
func (g *Game) Round() Round {
	r := g.round
	r.Area = r.Area.Clone()
	return r
}

//Status returns the current status represented by Status struct
func (g *Game) Status() Status {
	winner, converged := g.round.Area.Winner()
	return Status{
		Round:         g.round.Number,
		IterationNum:  g.round.Tick,
		RunningMode:   g.round.State,
		LiveCells:     g.round.Area.LiveCells(),
		Cells:         g.round.Area.Width * g.round.Area.Height,
		IterationTime: g.engine.IterationTime(),
		Palette:       g.round.Palette,
		Converged:     converged && g.round.Tick > 0,
		Winner:        winner,
	}
}

//Reset replaces the current round with a fresh one
func (g *Game) Reset() {
	g.round = Round{
		Number:  g.round.Number + 1,
		Area:    battlefield.NewArea(g.options.Width, g.options.Height),
		Palette: battlefield.RandomPalette(g.rng),
		State:   RunningStatePlaying,
	}
	g.acc = 0
	g.log.Printf("round %d started: %vx%v, colors %v vs %v", g.round.Number, g.options.Width, g.options.Height,
		g.round.Palette.Player1.Hex(), g.round.Palette.Player2.Hex())
	g.refreshView()
}

//Run plays rounds until the player quits
//the cursor and the screen are restored exactly once, whatever the exit path is
func (g *Game) Run() (err error) {
	defer func() {
		if cerr := g.restoreScreen(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err = g.renderer.Clear(); err != nil {
		return fmt.Errorf("clear screen: %w", err)
	}
	g.renderer.HideCursor()
	g.Reset()

	last := g.clock.Now()
	for {
		now := g.clock.Now()
		elapsed := now.Sub(last)
		last = now

		round := g.round.Number
		done, ferr := g.Frame(elapsed)
		if ferr != nil || done {
			return ferr
		}
		if g.round.Number != round {
			//the prompt was waiting for the player, this time is not simulated
			last = g.clock.Now()
		}
		if g.acc < g.dt {
			g.clock.Sleep(g.dt - g.acc)
		}
	}
}

//Frame advances the game by the elapsed wall time and renders one frame
//done is true when the run is over
func (g *Game) Frame(elapsed time.Duration) (done bool, err error) {
	g.acc += elapsed
	for g.acc >= g.dt {
		key, ok, err := g.input.Poll()
		if err != nil {
			return true, fmt.Errorf("poll input: %w", err)
		}
		ev := EventNone
		if ok {
			ev = ControlEvent(key)
		}
		g.apply(ev)

		if g.round.State == RunningStateStopped {
			g.log.Printf("round %d stopped at tick %d", g.round.Number, g.round.Tick)
			return true, nil
		}
		if g.round.State == RunningStatePaused {
			//no catch-up burst on resume
			g.acc = 0
			break
		}

		g.step()
		g.acc -= g.dt

		if g.options.MaxTicks > 0 && g.round.Tick >= g.options.MaxTicks {
			g.log.Printf("round %d reached the tick limit %d", g.round.Number, g.options.MaxTicks)
			g.round.State = RunningStateStopped
			g.refreshView()
			return true, nil
		}
	}

	if err := g.render(HelpCaption); err != nil {
		return true, err
	}
	if g.round.Tick == 0 || !g.round.Area.Converged() {
		return false, nil
	}
	return g.finishRound()
}

//apply runs the control state machine for one input event
func (g *Game) apply(ev Event) {
	prev := g.round.State
	g.round.State = Transition(prev, ev)
	if ev == EventRecolor {
		g.round.Palette = battlefield.RandomPalette(g.rng)
		g.log.Printf("round %d recolored: %v vs %v", g.round.Number, g.round.Palette.Player1.Hex(), g.round.Palette.Player2.Hex())
	}
	if g.round.State != prev || ev == EventRecolor {
		g.refreshView()
	}
}

//step does one simulation tick
func (g *Game) step() {
	g.round.Area = g.engine.Next(g.round.Area, g.rng)
	g.round.Tick++
	g.refreshView()
}

//finishRound asks the player what to do with the converged field
func (g *Game) finishRound() (done bool, err error) {
	winner, _ := g.round.Area.Winner()
	g.round.State = RunningStatePaused
	g.log.Printf("round %d converged after %d ticks, %s wins", g.round.Number, g.round.Tick, playerName(winner))
	g.refreshView()

	if err := g.render(VerdictCaption(winner)); err != nil {
		return true, err
	}
	v, err := AwaitVerdict(g.input)
	if err != nil {
		return true, err
	}
	g.log.Printf("round %d verdict: %v", g.round.Number, v)
	if v == VerdictQuit {
		g.round.State = RunningStateStopped
		g.refreshView()
		return true, nil
	}
	if err := g.renderer.Clear(); err != nil {
		return true, fmt.Errorf("clear screen: %w", err)
	}
	g.Reset()
	return false, nil
}

//render draws the whole field and the caption
func (g *Game) render(caption string) error {
	glyph := g.options.Glyph
	palette := g.round.Palette
	g.round.Area.Walk(func(x int, y int, e battlefield.Cell) {
		g.renderer.DrawCell(x, y, palette.Color(e), glyph)
	})
	g.renderer.DrawCaption(caption)
	if err := g.renderer.Flush(); err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	return nil
}

func (g *Game) restoreScreen() error {
	if err := g.renderer.Clear(); err != nil {
		return fmt.Errorf("restore screen: %w", err)
	}
	g.renderer.ShowCursor()
	if err := g.renderer.Flush(); err != nil {
		return fmt.Errorf("restore screen: %w", err)
	}
	return nil
}

//refreshView calls Refresh for all registered observers
func (g *Game) refreshView() {
	if len(g.observers) == 0 {
		return
	}
	st := g.Status()
	for _, o := range g.observers {
		o.Refresh(st)
	}
}

//VerdictCaption is shown while the restart prompt waits for the player
func VerdictCaption(winner battlefield.Cell) string {
	return fmt.Sprintf("%s wins! r = replay, q = quit", playerName(winner))
}

func playerName(c battlefield.Cell) string {
	if c {
		return "player 1"
	}
	return "player 2"
}
