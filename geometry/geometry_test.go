package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCurve(t *testing.T) {
	p := ParseCurve("b|150:100|bad|200:x|200:150", 100, 100)

	assert := assert.New(t)
	assert.Equal(Bezier, p.Kind)
	assert.Equal([]Point{{0, 0}, {50, 0}, {100, 50}}, p.Points)

	assert.Equal(Linear, ParseCurve("", 0, 0).Kind)
	assert.Equal(Linear, ParseCurve("Z|1:1", 0, 0).Kind)
	assert.Equal(Perfect, ParseCurve("P|1:1|2:0", 0, 0).Kind)
}

func TestExpectedLength(t *testing.T) {
	ev := ExpectedLength{}
	tests := []struct {
		name     string
		curve    string
		expected float64
		calc     float64
		dist     float64
	}{
		{"extends to declared length", "L|130:140", 200, 50, 200},
		{"trims to declared length", "L|130:140", 20, 50, 20},
		{"equal last points block extension", "L|130:140|130:140", 200, 50, 50},
		{"equal last points still trim", "L|130:140|130:140", 20, 50, 20},
		{"head only", "L", 200, 0, 0},
		{"non positive declared length", "L|130:140", 0, 50, 0},
		{"curves take the declared length", "B|130:140|130:140", 200, 50, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, dist := ev.Distance(ParseCurve(tt.curve, 100, 100), tt.expected)
			assert.InDelta(t, tt.calc, calc, 1e-6)
			assert.Equal(t, tt.dist, dist)
		})
	}
}
