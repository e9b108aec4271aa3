package battlefield

import (
	"sort"
	"time"
)

//Rand is the random source shared by the rule and the palette
//*math/rand/v2.Rand implements it
type Rand interface {
	Float64() float64
	IntN(n int) int
}

//Engine computes the next state of the battlefield
//the current area is never modified, the next one is built completely before it is returned
type Engine interface {
	Name() string
	Next(a Area, r Rand) Area
	//IterationTime returns the evaluation time of the last Next call
	IterationTime() time.Duration
}

var engines = map[string]func() Engine{
	"base":       func() Engine { return &BaseEngine{} },
	"doubleBuff": func() Engine { return &DoubleBuffEngine{} },
}

//NewEngine creates the engine registered under the name
func NewEngine(name string) (Engine, bool) {
	f, ok := engines[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

//EngineNames returns the sorted names of all registered engines
func EngineNames() (engineNames []string) {
	engineNames = make([]string, 0, len(engines))
	for k := range engines {
		engineNames = append(engineNames, k)
	}
	sort.Strings(engineNames)
	return
}

//CellNextState calculates the next state for the cell at x, y
//the cell survives as player 1 with probability liveNeighbours/validNeighbours
//a cell without neighbours (1x1 area) keeps its value and consumes no draw
func CellNextState(a Area, x int, y int, r Rand) Cell {
	live, valid := a.Neighbours(x, y)
	if valid == 0 {
		return a.Entities[y][x]
	}
	ratio := float64(live) / float64(valid)
	return Cell(ratio > r.Float64())
}

//BaseEngine is the simplest engine: it allocates the new area with full size on each call
type BaseEngine struct {
	iterationTime time.Duration
}

func (e *BaseEngine) Name() string { return "base" }

func (e *BaseEngine) IterationTime() time.Duration { return e.iterationTime }

func (e *BaseEngine) Next(a Area, r Rand) Area {
	start := time.Now()
	next := createArea(a.Width, a.Height)
	a.Walk(func(x int, y int, _ Cell) {
		next.Entities[y][x] = CellNextState(a, x, y, r)
	})
	e.iterationTime = time.Since(start)
	return next
}

//DoubleBuffEngine keeps two buffers
//all cells are calculated to the back buffer and then the buffers are swapped,
//so the area returned by the previous call is reused as the back buffer of the next one
type DoubleBuffEngine struct {
	back          Area
	iterationTime time.Duration
}

func (e *DoubleBuffEngine) Name() string { return "doubleBuff" }

func (e *DoubleBuffEngine) IterationTime() time.Duration { return e.iterationTime }

func (e *DoubleBuffEngine) Next(a Area, r Rand) Area {
	start := time.Now()
	if e.back.Width != a.Width || e.back.Height != a.Height || e.back.Entities == nil || sameBuffer(e.back, a) {
		e.back = createArea(a.Width, a.Height)
	}
	next := e.back
	for y := range a.Entities {
		for x := range a.Entities[y] {
			next.Entities[y][x] = CellNextState(a, x, y, r)
		}
	}
	e.back = a
	e.iterationTime = time.Since(start)
	return next
}

//sameBuffer reports whether both areas share the backing storage
func sameBuffer(a Area, b Area) bool {
	if len(a.Entities) == 0 || len(b.Entities) == 0 || len(a.Entities[0]) == 0 || len(b.Entities[0]) == 0 {
		return false
	}
	return &a.Entities[0][0] == &b.Entities[0][0]
}
