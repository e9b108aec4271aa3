package view

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"pixelfight/src/battlefield"
	"pixelfight/src/game"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ffff"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))
)

//ScriptInput replays the keys of a script, one key per poll
//'.' means that no key is pending for that poll
//when the script is over Poll answers space and Read answers 'q',
//so a paused fight resumes and a headless run always ends
type ScriptInput struct {
	polls []byte
	reads []byte
}

//NewScriptInput splits the script in the part consumed by the fight and the restart prompt answers:
//"..s. c|rq" polls "..s. c" and answers the prompts with 'r' and then 'q'
func NewScriptInput(script string) *ScriptInput {
	polls, reads, _ := strings.Cut(script, "|")
	return &ScriptInput{polls: []byte(polls), reads: []byte(reads)}
}

func (s *ScriptInput) Poll() (byte, bool, error) {
	if len(s.polls) == 0 {
		return game.KeyResume, true, nil
	}
	k := s.polls[0]
	s.polls = s.polls[1:]
	if k == '.' {
		return 0, false, nil
	}
	return k, true, nil
}

func (s *ScriptInput) Read() (byte, error) {
	if len(s.reads) == 0 {
		return game.KeyQuit, nil
	}
	k := s.reads[0]
	s.reads = s.reads[1:]
	return k, nil
}

//RoundSummary is the outcome of one round
type RoundSummary struct {
	Round    int
	Ticks    int
	Finished bool
	Winner   battlefield.Cell
	Share    float64
}

//ConsoleOut is the non-interactive frontend
//it draws nothing, logs the progress and prints the report at the end
type ConsoleOut struct {
	out       io.Writer
	log       *log.Logger
	every     int
	startTime time.Time
	frames    int
	history   []float64
	rounds    map[int]*RoundSummary
	last      game.Status
}

//NewConsoleOut creates the headless frontend, the progress is logged every `every` ticks
func NewConsoleOut(out io.Writer, logger *log.Logger, every int) *ConsoleOut {
	if every <= 0 {
		every = 100
	}
	return &ConsoleOut{out: out, log: logger, every: every, rounds: map[int]*RoundSummary{}}
}

func (c *ConsoleOut) Clear() error { return nil }

func (c *ConsoleOut) HideCursor() {}

func (c *ConsoleOut) ShowCursor() {}

func (c *ConsoleOut) DrawCell(int, int, battlefield.RGB, rune) {}

func (c *ConsoleOut) DrawCaption(string) {}

func (c *ConsoleOut) Flush() error {
	c.frames++
	return nil
}

//Start prints the running configuration
func (c *ConsoleOut) Start(o game.Options, engine string, seed int64) {
	c.startTime = time.Now()
	fmt.Fprintln(c.out, "Running configuration:")
	fmt.Fprintf(c.out, "  Dimension: %v x %v\n", o.Width, o.Height)
	fmt.Fprintf(c.out, "  Tick rate: %v per second\n", o.TickRate)
	fmt.Fprintf(c.out, "  Max ticks: %v\n", o.MaxTicks)
	fmt.Fprintf(c.out, "  Engine: %v\n", engine)
	fmt.Fprintf(c.out, "  Seed: %v\n", seed)
	fmt.Fprintln(c.out, "\nSimulation started...")
}

//Refresh implements game.Observer
func (c *ConsoleOut) Refresh(st game.Status) {
	if st.Round != c.last.Round {
		c.history = c.history[:0]
	}
	share := 0.0
	if st.Cells > 0 {
		share = float64(st.LiveCells) / float64(st.Cells)
	}
	if st.IterationNum != c.last.IterationNum || st.Round != c.last.Round {
		c.history = append(c.history, share)
		if st.IterationNum > 0 && st.IterationNum%c.every == 0 {
			c.log.Printf("round %v: %v ticks done, player 1 owns %.1f%%", st.Round, st.IterationNum, 100*share)
		}
	}

	r, ok := c.rounds[st.Round]
	if !ok {
		r = &RoundSummary{Round: st.Round}
		c.rounds[st.Round] = r
	}
	r.Ticks = st.IterationNum
	r.Share = share
	if st.Converged {
		r.Finished = true
		r.Winner = st.Winner
	}
	c.last = st
}

//Rounds returns the summaries ordered by round
func (c *ConsoleOut) Rounds() []RoundSummary {
	rounds := make([]RoundSummary, 0, len(c.rounds))
	for _, r := range c.rounds {
		rounds = append(rounds, *r)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Round < rounds[j].Round })
	return rounds
}

//Report prints the summary of all rounds and the share plot of the last one
func (c *ConsoleOut) Report() {
	totalTime := time.Since(c.startTime).Round(time.Millisecond)
	p := c.last.Palette

	lines := []string{titleStyle.Render("Finished")}
	lines = append(lines, c.prop("Rounds", fmt.Sprint(len(c.rounds))))
	lines = append(lines, c.prop("Frames", fmt.Sprint(c.frames)))
	lines = append(lines, c.prop("Total time", fmt.Sprint(totalTime)))
	for _, r := range c.Rounds() {
		outcome := "unfinished"
		if r.Finished {
			outcome = winnerName(r.Winner) + " wins"
		}
		lines = append(lines, c.prop(fmt.Sprintf("Round %v", r.Round), fmt.Sprintf("%v after %v ticks", outcome, r.Ticks)))
	}
	lines = append(lines, c.prop("Colors",
		lipgloss.NewStyle().Foreground(lipgloss.Color(p.Player1.Hex())).Render("██ player 1")+"  "+
			lipgloss.NewStyle().Foreground(lipgloss.Color(p.Player2.Hex())).Render("██ player 2")))
	fmt.Fprintln(c.out, panelStyle.Render(strings.Join(lines, "\n")))

	if len(c.history) > 1 {
		graph := asciigraph.Plot(c.history,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Precision(2),
			asciigraph.Caption(fmt.Sprintf("player 1 share, round %v", c.last.Round)),
		)
		fmt.Fprintln(c.out, graph)
	}
}

func (c *ConsoleOut) prop(name string, value string) string {
	return labelStyle.Render(name+":") + " " + value
}
