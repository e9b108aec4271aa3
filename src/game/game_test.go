package game

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pixelfight/src/battlefield"
)

var _ = Describe("Game", func() {
	var (
		in       *scriptedInput
		renderer *recordingRenderer
		opts     Options
	)

	newGame := func() *Game {
		g := New(&opts, newEngine(), newRand(42), in, renderer)
		g.Reset()
		return g
	}

	BeforeEach(func() {
		in = &scriptedInput{}
		renderer = newRecordingRenderer()
		opts = Options{Width: 40, Height: 20, Glyph: '#', TickRate: 30}
	})

	Describe("a new round", func() {
		It("starts playing on the split field", func() {
			g := newGame()
			r := g.Round()
			Expect(r.Number).To(Equal(1))
			Expect(r.State).To(Equal(RunningStatePlaying))
			Expect(r.Tick).To(BeZero())
			Expect(r.Area.Entities).To(Equal(battlefield.NewArea(40, 20).Entities))
		})

		It("hands out rounds that later ticks leave untouched", func() {
			engine, _ := battlefield.NewEngine("doubleBuff")
			g := New(&opts, engine, newRand(42), in, renderer)
			g.Reset()
			held := g.Round()
			initial := held.Area.Clone()

			Expect(g.Frame(g.TickDuration() * 4)).To(BeFalse())
			Expect(g.Round().Tick).To(Equal(4))
			Expect(held.Area.Entities).To(Equal(initial.Entities))
			Expect(held.Tick).To(BeZero())
		})

		It("uses the defaults for missing options", func() {
			g := New(&Options{Width: 2, Height: 2}, newEngine(), newRand(1), in, renderer)
			Expect(g.TickDuration()).To(Equal(time.Second / 30))
			Expect(g.Options().Glyph).To(Equal(DefGlyph))
		})
	})

	Describe("fixed timestep", func() {
		DescribeTable("applies floor(T/dt) updates per frame while playing",
			func(ticks float64, expected int) {
				g := newGame()
				elapsed := time.Duration(ticks * float64(g.TickDuration()))
				done, err := g.Frame(elapsed)
				Expect(err).NotTo(HaveOccurred())
				Expect(done).To(BeFalse())
				Expect(g.Round().Tick).To(Equal(expected))
				Expect(renderer.frames).To(Equal(1))
			},
			Entry("nothing elapsed", 0.0, 0),
			Entry("less than one tick", 0.9, 0),
			Entry("exactly one tick", 1.0, 1),
			Entry("three and a half ticks", 3.5, 3),
			Entry("ten ticks", 10.2, 10),
		)

		It("keeps the remainder for the next frame", func() {
			g := newGame()
			dt := g.TickDuration()
			Expect(g.Frame(dt * 2 / 3)).To(BeFalse())
			Expect(g.Round().Tick).To(BeZero())
			Expect(g.Frame(dt * 2 / 3)).To(BeFalse())
			Expect(g.Round().Tick).To(Equal(1))
			Expect(renderer.frames).To(Equal(2))
		})

		It("polls the input once per tick", func() {
			g := newGame()
			_, err := g.Frame(g.TickDuration() * 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.polled).To(Equal(4))
		})

		It("renders every cell with the glyph and a help caption", func() {
			g := newGame()
			_, err := g.Frame(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(renderer.cells).To(HaveLen(40 * 20))
			Expect(renderer.glyphs).To(Equal(map[rune]int{'#': 40 * 20}))
			Expect(renderer.captions).To(Equal([]string{HelpCaption}))
			p := g.Round().Palette
			Expect(renderer.cells[[2]int{0, 0}]).To(Equal(p.Player1))
			Expect(renderer.cells[[2]int{39, 19}]).To(Equal(p.Player2))
		})
	})

	Describe("control", func() {
		It("stops the simulation mid-frame on pause without catching up later", func() {
			g := newGame()
			dt := g.TickDuration()
			in.polls = []byte{0, 0, 's'}

			Expect(g.Frame(dt * 5)).To(BeFalse())
			Expect(g.Round().Tick).To(Equal(2))
			Expect(g.Round().State).To(Equal(RunningStatePaused))
			Expect(renderer.frames).To(Equal(1))

			Expect(g.Frame(dt * 5)).To(BeFalse())
			Expect(g.Round().Tick).To(Equal(2))

			in.polls = []byte{' '}
			Expect(g.Frame(dt * 2)).To(BeFalse())
			Expect(g.Round().State).To(Equal(RunningStatePlaying))
			Expect(g.Round().Tick).To(Equal(4))
		})

		It("recolors without changing the state", func() {
			g := newGame()
			before := g.Round().Palette
			in.polls = []byte{'c'}
			Expect(g.Frame(g.TickDuration())).To(BeFalse())
			Expect(g.Round().Palette).NotTo(Equal(before))
			Expect(g.Round().State).To(Equal(RunningStatePlaying))
			Expect(g.Round().Tick).To(Equal(1))
		})

		It("recolors while paused", func() {
			g := newGame()
			in.polls = []byte{'s', 'c'}
			Expect(g.Frame(g.TickDuration())).To(BeFalse())
			before := g.Round().Palette
			Expect(g.Frame(g.TickDuration())).To(BeFalse())
			Expect(g.Round().Palette).NotTo(Equal(before))
			Expect(g.Round().State).To(Equal(RunningStatePaused))
			Expect(g.Round().Tick).To(BeZero())
		})

		It("exits without rendering on quit", func() {
			g := newGame()
			in.polls = []byte{0, 'q'}
			done, err := g.Frame(g.TickDuration() * 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(g.Round().State).To(Equal(RunningStateStopped))
			Expect(g.Round().Tick).To(Equal(1))
			Expect(renderer.frames).To(BeZero())
		})

		It("propagates input errors", func() {
			g := newGame()
			in.pollErr = errors.New("broken pipe")
			done, err := g.Frame(g.TickDuration())
			Expect(done).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring("broken pipe")))
		})
	})

	Describe("convergence", func() {
		BeforeEach(func() {
			opts.Width, opts.Height = 1, 1
		})

		It("is not checked before the first update", func() {
			g := newGame()
			Expect(g.Round().Area.Converged()).To(BeTrue())
			done, err := g.Frame(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(g.Round().State).To(Equal(RunningStatePlaying))
		})

		It("asks for a replay and starts a fresh round", func() {
			g := newGame()
			in.reads = []byte{'x', 'r'}
			done, err := g.Frame(g.TickDuration())
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(g.Round().Number).To(Equal(2))
			Expect(g.Round().Tick).To(BeZero())
			Expect(g.Round().State).To(Equal(RunningStatePlaying))
			Expect(renderer.captions).To(Equal([]string{HelpCaption, VerdictCaption(false)}))
		})

		It("quits from the prompt", func() {
			g := newGame()
			in.reads = []byte{'c', 'q'}
			done, err := g.Frame(g.TickDuration())
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(g.Round().State).To(Equal(RunningStateStopped))
		})
	})

	Describe("Run", func() {
		It("plays rounds until the player quits and restores the screen once", func() {
			opts.Width, opts.Height = 1, 1
			in.reads = []byte{'r', 'z', 'q'}
			g := New(&opts, newEngine(), newRand(3), in, renderer)
			g.SetClock(NewVirtualClock())
			rec := &statusRecorder{}
			g.RegisterObserver(rec)

			Expect(g.Run()).To(Succeed())
			Expect(g.Round().Number).To(Equal(2))
			Expect(renderer.count("show")).To(Equal(1))
			Expect(renderer.count("hide")).To(Equal(1))
			Expect(renderer.ops[len(renderer.ops)-3:]).To(Equal([]string{"clear", "show", "flush"}))

			last := rec.statuses[len(rec.statuses)-1]
			Expect(last.RunningMode).To(Equal(RunningStateStopped))
			Expect(last.Converged).To(BeTrue())
			Expect(last.Winner).To(Equal(battlefield.Cell(false)))
		})

		It("stops at the tick limit", func() {
			opts.MaxTicks = 5
			g := New(&opts, newEngine(), newRand(3), in, renderer)
			g.SetClock(NewVirtualClock())
			Expect(g.Run()).To(Succeed())
			Expect(g.Round().Tick).To(Equal(5))
			Expect(g.Round().State).To(Equal(RunningStateStopped))
			Expect(renderer.count("show")).To(Equal(1))
		})

		It("quits on q and restores the screen", func() {
			in.polls = []byte{0, 0, 'q'}
			g := New(&opts, newEngine(), newRand(3), in, renderer)
			g.SetClock(NewVirtualClock())
			Expect(g.Run()).To(Succeed())
			Expect(g.Round().Tick).To(Equal(2))
			Expect(renderer.ops[0:2]).To(Equal([]string{"clear", "hide"}))
			Expect(renderer.count("show")).To(Equal(1))
		})

		It("returns render errors after restoring the screen", func() {
			renderer.flushErr = errors.New("terminal gone")
			g := New(&opts, newEngine(), newRand(3), in, renderer)
			g.SetClock(NewVirtualClock())
			err := g.Run()
			Expect(err).To(MatchError(ContainSubstring("terminal gone")))
			Expect(errors.Is(err, renderer.flushErr)).To(BeTrue())
			Expect(renderer.count("show")).To(Equal(1))
		})
	})
})
