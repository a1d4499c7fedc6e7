package remc

// EnergyEvaluator computes the potential energy of the current population.
// The engine calls it before and after staging a trial move and feeds the
// difference into the Boltzmann factor. Evaluation errors abort the move with
// a rollback; they never terminate the run.
type EnergyEvaluator interface {
	Energy(store ParticleStore) (float64, error)
}

// EnergyFunc adapts a plain function to the EnergyEvaluator interface.
type EnergyFunc func(store ParticleStore) (float64, error)

// Energy calls f.
func (f EnergyFunc) Energy(store ParticleStore) (float64, error) { return f(store) }

// IdealEnergy models non-interacting particles: the potential energy is zero
// for any population, so acceptance reduces to the entropic prefactor.
type IdealEnergy struct{}

// Energy always returns zero.
func (IdealEnergy) Energy(ParticleStore) (float64, error) { return 0, nil }

// PairPotential is a two-body potential evaluated on a particle pair.
type PairPotential func(a, b Particle) float64

// PairwiseEnergy sums a pair potential over all distinct particle pairs.
// Quadratic in the population size, intended for small demonstration systems.
type PairwiseEnergy struct {
	Potential PairPotential
}

// Energy sums the potential over every unordered pair.
func (e PairwiseEnergy) Energy(store ParticleStore) (float64, error) {
	particles := store.All()
	total := 0.0
	for i := 0; i < len(particles); i++ {
		for j := i + 1; j < len(particles); j++ {
			total += e.Potential(particles[i], particles[j])
		}
	}
	return total, nil
}
