package main

import (
	"math"

	"github.com/daniacca/remcsim/internal/remc"
)

// softSphere returns a finite repulsion that ramps from eps at full overlap
// to zero at separation sigma. Particles placed further apart than sigma do
// not interact at all.
func softSphere(eps, sigma float64) remc.PairPotential {
	return func(a, b remc.Particle) float64 {
		var d2 float64
		for i := 0; i < 3; i++ {
			d := a.Position[i] - b.Position[i]
			d2 += d * d
		}
		if d2 >= sigma*sigma {
			return 0
		}
		x := 1 - math.Sqrt(d2)/sigma
		return eps * x * x
	}
}
