package geometry

import (
	"math"
	"strconv"
	"strings"
)

// Curve kinds, as written at the start of a slider's curve field.
const (
	Linear  byte = 'L'
	Bezier  byte = 'B'
	Catmull byte = 'C'
	Perfect byte = 'P'
)

// Point is single precision like the engine's vectors.
type Point struct {
	X, Y float32
}

// Path is a slider curve with control points relative to the slider head.
// The first point is always the head (0, 0).
type Path struct {
	Kind   byte
	Points []Point
}

// Evaluator measures a slider path. calculated is the length of the path
// as drawn; distance is the length the engine uses once the path is
// trimmed or extended to the declared expected length.
type Evaluator interface {
	Distance(path Path, expected float64) (calculated, distance float64)
}

// ParseCurve reads "K|x:y|x:y..." with absolute coordinates. Unknown kinds
// are linear; malformed points are skipped.
func ParseCurve(curve string, startX, startY int) Path {
	kind := Linear
	if curve != "" {
		switch k := byte(strings.ToUpper(curve[:1])[0]); k {
		case Bezier, Catmull, Perfect:
			kind = k
		}
	}

	path := Path{Kind: kind, Points: []Point{{0, 0}}}
	tokens := strings.Split(curve, "|")
	for _, tok := range tokens[1:] {
		xy := strings.Split(tok, ":")
		if len(xy) != 2 {
			continue
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(xy[0]), 32)
		y, errY := strconv.ParseFloat(strings.TrimSpace(xy[1]), 32)
		if errX != nil || errY != nil {
			continue
		}
		path.Points = append(path.Points, Point{float32(x) - float32(startX), float32(y) - float32(startY)})
	}
	return path
}

// PolylineLength sums the straight segments between consecutive points.
func (p Path) PolylineLength() float64 {
	var total float64
	for i := 1; i < len(p.Points); i++ {
		dx := float64(p.Points[i].X - p.Points[i-1].X)
		dy := float64(p.Points[i].Y - p.Points[i-1].Y)
		total += float64(float32(math.Sqrt(dx*dx + dy*dy)))
	}
	return total
}

// ExpectedLength trusts the declared length, which is what the engine ends
// up with whenever it can trim or extend the path. Linear paths are
// measured exactly, so the one case where the engine does not extend (last
// two points equal, path shorter than declared) is honoured for them.
// Curved paths are not evaluated.
type ExpectedLength struct{}

func (ExpectedLength) Distance(path Path, expected float64) (float64, float64) {
	if len(path.Points) < 2 {
		return 0, 0
	}
	calculated := path.PolylineLength()
	if path.Kind == Linear {
		n := len(path.Points)
		if path.Points[n-1] == path.Points[n-2] && expected > calculated {
			return calculated, calculated
		}
	}
	if expected <= 0 {
		return calculated, 0
	}
	return calculated, expected
}
