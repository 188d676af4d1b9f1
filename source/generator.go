package source

import (
	"math"

	"git.sr.ht/~whereswaldon/rtgraph/store"
)

const (
	// DefaultPointsPerCall is how many points a Generator emits per GetData.
	DefaultPointsPerCall = 200
	// DefaultInterval is the time between consecutive generated points.
	DefaultInterval = 20
)

// wave describes one generated channel.
type wave struct {
	scale, offset float64
}

// GeneratorNames names the generated channels, in order.
var GeneratorNames = []string{"sine", "shifted sine", "fast sine"}

var generatorWaves = []wave{
	{scale: 1.0 / 10000, offset: 0},
	{scale: 1.0 / 10000, offset: math.Pi / 3},
	{scale: 1.0 / 5000, offset: 0},
}

// Generator produces three sine waves of test data.
type Generator struct {
	PointsPerCall int
	Interval      uint32
	t             uint32
}

var _ DataSource = (*Generator)(nil)

// NewGenerator returns a generator whose first point is at time 1.
func NewGenerator() *Generator {
	return &Generator{
		PointsPerCall: DefaultPointsPerCall,
		Interval:      DefaultInterval,
		t:             1,
	}
}

func (g *Generator) GetData() ([]store.Point, error) {
	out := make([]store.Point, 0, g.PointsPerCall)
	for i := 0; i < g.PointsPerCall; i++ {
		out = append(out, g.Sample(g.t))
		g.t += g.Interval
	}
	return out, nil
}

func (g *Generator) NumValues() (int, error) {
	return len(generatorWaves), nil
}

// Sample returns the generated point at time t without advancing the
// generator.
func (g *Generator) Sample(t uint32) store.Point {
	vs := make([]uint16, len(generatorWaves))
	for i, w := range generatorWaves {
		vs[i] = w.sample(t)
	}
	return store.Point{T: t, Vs: vs}
}

func (w wave) sample(t uint32) uint16 {
	return uint16((math.Sin(w.offset+float64(t)*w.scale) + 1) / 2 * math.MaxUint16)
}
