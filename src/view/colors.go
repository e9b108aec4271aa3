package view

import "pixelfight/src/battlefield"

//levels of the xterm 6x6x6 color cube
var cubeLevels = [6]int{0, 95, 135, 175, 215, 255}

//xterm256 maps the color to the nearest entry of the xterm 256-color palette
//only the color cube (16..231) and the grayscale ramp (232..255) are considered,
//the first 16 colors depend on the terminal theme
func xterm256(c battlefield.RGB) uint8 {
	r, g, b := nearestLevel(int(c.R)), nearestLevel(int(c.G)), nearestLevel(int(c.B))
	cube := uint8(16 + 36*r + 6*g + b)
	cubeDist := distance(c, cubeLevels[r], cubeLevels[g], cubeLevels[b])

	avg := (int(c.R) + int(c.G) + int(c.B)) / 3
	gray := (avg - 8) / 10
	if gray < 0 {
		gray = 0
	} else if gray > 23 {
		gray = 23
	}
	level := 8 + 10*gray
	if distance(c, level, level, level) < cubeDist {
		return uint8(232 + gray)
	}
	return cube
}

func nearestLevel(v int) int {
	best := 0
	for i, l := range cubeLevels {
		if abs(v-l) < abs(v-cubeLevels[best]) {
			best = i
		}
	}
	return best
}

func distance(c battlefield.RGB, r int, g int, b int) int {
	dr, dg, db := int(c.R)-r, int(c.G)-g, int(c.B)-b
	return dr*dr + dg*dg + db*db
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
