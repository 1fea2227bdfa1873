package chamber

import (
	"math"

	"github.com/zyedidia/generic/mapset"
)

// RevealPath inserts every cell on the interpolated line between from and to
// into the revealed set, endpoints included.
//
// The interpolation is a coarse rasterization: steps = max(|dx|,|dy|), each
// intermediate point rounded to the nearest integer. Ties can land a cell off
// the strict straight line near 45-degree boundaries. This matches the shipped
// fog-of-war behavior and must not be replaced with a true line algorithm.
//
// The set only ever grows; nothing is removed here or anywhere else.
func RevealPath(from, to Position, revealed mapset.Set[Position]) {
	dx := to.X - from.X
	dy := to.Y - from.Y

	steps := absInt(dx)
	if absInt(dy) > steps {
		steps = absInt(dy)
	}
	if steps == 0 {
		revealed.Put(from)
		return
	}

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(float64(from.X) + float64(dx)*t))
		y := int(math.Round(float64(from.Y) + float64(dy)*t))
		revealed.Put(Position{X: x, Y: y})
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
