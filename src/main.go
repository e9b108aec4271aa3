package main

import (
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/integrii/flaggy"

	"pixelfight/src/battlefield"
	"pixelfight/src/config"
	"pixelfight/src/game"
	"pixelfight/src/view"
)

type frontend func(cfg *config.Config, env *EnvOptions, g gameFactory) error

type gameFactory func(in game.InputSource, r game.Renderer) *game.Game

var frontends = map[string]frontend{
	config.FrontendConsole:  runConsole,
	config.FrontendScreen:   runScreen,
	config.FrontendHeadless: runHeadless,
}

type EnvOptions struct {
	configFile string
	saveConfig string
	keys       string
	seed       int64
	logger     *log.Logger
}

//positional holds the arguments of `pixelfight [width [height [glyph]]]`
type positional struct {
	width  string
	height string
	glyph  string
}

func main() {
	cfg, eo := initOptions()

	logOut, err := openLog(cfg)
	if err != nil {
		log.Fatalln(err)
	}
	eo.logger = log.New(logOut, "pixelfight ", log.LstdFlags)

	err = play(cfg, eo)
	if err != nil {
		eo.logger.Println(err)
	}
	//log.Fatalln skips deferred calls
	if cerr := logOut.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalln(err)
	}
}

func play(cfg *config.Config, eo *EnvOptions) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	eo.seed = seed
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	engine, _ := battlefield.NewEngine(cfg.Engine)
	opts := cfg.GameOptions()
	opts.Logger = eo.logger
	eo.logger.Printf("seed %v, engine %v, frontend %v", seed, cfg.Engine, cfg.Frontend)

	newGame := func(in game.InputSource, r game.Renderer) *game.Game {
		return game.New(&opts, engine, rng, in, r)
	}

	return frontends[cfg.Frontend](cfg, eo, newGame)
}

func initOptions() (*config.Config, *EnvOptions) {
	cfg := config.DefaultConfig()
	eo := &EnvOptions{}
	pos := positional{}

	//the config file is loaded first, the flags override it
	for i, a := range os.Args {
		if (a == "-c" || a == "--config") && i+1 < len(os.Args) {
			eo.configFile = os.Args[i+1]
		} else if v, ok := strings.CutPrefix(a, "--config="); ok {
			eo.configFile = v
		}
	}
	if eo.configFile != "" {
		loaded, err := config.Load(eo.configFile)
		if err != nil {
			log.Fatalln(err)
		}
		cfg = loaded
	}

	flaggy.SetName("pixelfight")
	flaggy.SetDescription("Two colors fight for the field until only one is left")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&eo.configFile, "c", "config", "Config file (yaml)")
	flaggy.Int(&cfg.Width, "x", "width", "Width of the field")
	flaggy.Int(&cfg.Height, "y", "height", "Height of the field")
	flaggy.String(&cfg.Glyph, "g", "glyph", "Glyph used to draw a cell")
	flaggy.Int(&cfg.TickRate, "t", "tps", "Simulation ticks per second")
	flaggy.Int64(&cfg.Seed, "", "seed", "Random seed, 0 seeds from the clock")
	flaggy.String(&cfg.Engine, "e", "engine", "Engine to use ["+strings.Join(battlefield.EngineNames(), "|")+"]")
	flaggy.String(&cfg.Frontend, "f", "frontend", "Frontend to use ["+strings.Join(config.Frontends, "|")+"]")
	flaggy.Int(&cfg.MaxTicks, "s", "maxTicks", "Stop a round after maxTicks, 0 means no limit")
	flaggy.String(&cfg.LogFile, "", "log", "Write the log to the file")
	flaggy.String(&eo.keys, "k", "keys", "Headless key script: one key per tick, '.' for none, '|' starts the replay answers")
	flaggy.String(&eo.saveConfig, "", "save-config", "Write the resulting configuration to the file and exit")
	flaggy.AddPositionalValue(&pos.width, "width", 1, false, "Width of the field, overrides -x")
	flaggy.AddPositionalValue(&pos.height, "height", 2, false, "Height of the field, overrides -y")
	flaggy.AddPositionalValue(&pos.glyph, "glyph", 3, false, "Glyph used to draw a cell, overrides -g")

	flaggy.Parse()

	if err := pos.apply(cfg); err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}
	if err := cfg.Validate(); err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}

	if eo.saveConfig != "" {
		if err := config.Save(eo.saveConfig, cfg); err != nil {
			log.Fatalln(err)
		}
		fmt.Printf("configuration written to %v\n", eo.saveConfig)
		os.Exit(0)
	}

	return cfg, eo
}

//apply overrides the configuration with the given positional arguments
func (p positional) apply(cfg *config.Config) error {
	if p.width != "" {
		w, err := strconv.Atoi(p.width)
		if err != nil {
			return fmt.Errorf("invalid width %q: %w", p.width, err)
		}
		cfg.Width = w
	}
	if p.height != "" {
		h, err := strconv.Atoi(p.height)
		if err != nil {
			return fmt.Errorf("invalid height %q: %w", p.height, err)
		}
		cfg.Height = h
	}
	if p.glyph != "" {
		//only the first character counts
		r, _ := utf8.DecodeRuneInString(p.glyph)
		cfg.Glyph = string(r)
	}
	return nil
}

//openLog returns the log destination
//interactive frontends own the terminal, so without a log file the log is discarded
func openLog(cfg *config.Config) (io.WriteCloser, error) {
	if cfg.LogFile != "" {
		return os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	}
	if cfg.Frontend == config.FrontendHeadless {
		return nopCloser{os.Stderr}, nil
	}
	return nopCloser{io.Discard}, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func runConsole(cfg *config.Config, eo *EnvOptions, newGame gameFactory) error {
	ui, err := view.NewConsoleUI(cfg.GameOptions())
	if err != nil {
		return err
	}
	g := newGame(ui, ui)
	g.RegisterObserver(ui)

	runErr := make(chan error, 1)
	go func() {
		err := g.Run()
		ui.Stop()
		runErr <- err
	}()

	uiErr := ui.Start()
	err = <-runErr
	if uiErr != nil {
		return uiErr
	}
	return err
}

func runScreen(cfg *config.Config, eo *EnvOptions, newGame gameFactory) error {
	sc, err := view.NewScreen(cfg.Height)
	if err != nil {
		return err
	}
	defer sc.Close()
	return newGame(sc, sc).Run()
}

func runHeadless(cfg *config.Config, eo *EnvOptions, newGame gameFactory) error {
	out := view.NewConsoleOut(os.Stdout, eo.logger, 10*cfg.TickRate)
	g := newGame(view.NewScriptInput(eo.keys), out)
	g.SetClock(game.NewVirtualClock())
	g.RegisterObserver(out)

	out.Start(g.Options(), cfg.Engine, eo.seed)
	if err := g.Run(); err != nil {
		return err
	}
	out.Report()
	return nil
}
