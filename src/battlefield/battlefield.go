package battlefield

type Cell bool

//Area is the rectangular field where both players fight
//true cells belong to player 1, false cells belong to player 2
type Area struct {
	Width    int
	Height   int
	Entities [][]Cell
}

//default dimensions
const (
	DefWidth  = 80
	DefHeight = 40
)

//moore neighbourhood offsets: N, E, S, W, NE, SE, SW, NW
var (
	offsetsX = [8]int{0, 1, 0, -1, 1, 1, -1, -1}
	offsetsY = [8]int{-1, 0, 1, 0, -1, 1, 1, -1}
)

//NewArea creates the area for a new round
//the left half of every row belongs to player 1, the right half to player 2
func NewArea(width int, height int) Area {
	a := createArea(width, height)
	a.Walk(func(x int, y int, _ Cell) {
		a.Entities[y][x] = Cell(x < width/2)
	})
	return a
}

//Neighbours returns the number of valid neighbours of the cell at x, y
//and how many of them belong to player 1
//the area is not toroidal, neighbours outside the area are skipped
func (a Area) Neighbours(x int, y int) (live int, valid int) {
	for i := range offsetsX {
		nx := x + offsetsX[i]
		ny := y + offsetsY[i]
		if nx < 0 || ny < 0 || nx >= a.Width || ny >= a.Height {
			continue
		}
		valid++
		if a.Entities[ny][nx] {
			live++
		}
	}
	return
}

//Converged reports whether every cell holds the same value
func (a Area) Converged() bool {
	live := a.LiveCells()
	return live == 0 || live == a.Width*a.Height
}

//Winner returns the value which owns the whole area
//ok is false while the fight is still going
func (a Area) Winner() (winner Cell, ok bool) {
	if !a.Converged() {
		return false, false
	}
	if a.Width == 0 || a.Height == 0 {
		return false, true
	}
	return a.Entities[0][0], true
}

//LiveCells calculates the count of cells owned by player 1
func (a Area) LiveCells() int {
	liveCells := 0
	a.Walk(func(x int, y int, e Cell) {
		if e {
			liveCells++
		}
	})
	return liveCells
}

//Share returns the part of the area owned by player 1 in range [0, 1]
func (a Area) Share() float64 {
	total := a.Width * a.Height
	if total == 0 {
		return 0
	}
	return float64(a.LiveCells()) / float64(total)
}

//Clone returns a deep copy of the area
func (a Area) Clone() Area {
	c := createArea(a.Width, a.Height)
	for y := range a.Entities {
		copy(c.Entities[y], a.Entities[y])
	}
	return c
}

//Walk walks the entire area row by row and calls the cb function for each cell
func (a Area) Walk(cb func(x int, y int, entity Cell)) {
	for y := range a.Entities {
		for x := range a.Entities[y] {
			cb(x, y, a.Entities[y][x])
		}
	}
}

//createArea allocates the new area backed by one contiguous buffer
func createArea(width int, height int) Area {
	area := Area{Width: width, Height: height, Entities: make([][]Cell, height)}
	b := make([]Cell, width*height)
	for i := range area.Entities {
		start := width * i
		area.Entities[i] = b[start : start+width : start+width]
	}
	return area
}
