package battlefield

import "fmt"

//RGB is a 24-bit color
type RGB struct {
	R, G, B uint8
}

//Hex returns the color in #rrggbb notation
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

//Palette holds the colors of both players
type Palette struct {
	Player1 RGB
	Player2 RGB
}

//Color returns the color of the player who owns the cell
func (p Palette) Color(c Cell) RGB {
	if c {
		return p.Player1
	}
	return p.Player2
}

//RandomColor draws every component uniformly from 0..255
func RandomColor(r Rand) RGB {
	return RGB{uint8(r.IntN(256)), uint8(r.IntN(256)), uint8(r.IntN(256))}
}

//RandomPalette assigns new random colors to both players, player 1 first
func RandomPalette(r Rand) Palette {
	p1 := RandomColor(r)
	p2 := RandomColor(r)
	return Palette{Player1: p1, Player2: p2}
}
