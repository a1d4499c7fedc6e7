package remc

// ParticleID is a stable handle for one particle in the store. Handles are
// never reused within a store's lifetime, so a rolled-back move restores the
// exact handles it removed.
type ParticleID uint64

// Position is a point inside the simulation box.
type Position [3]float64

// Particle is one member of the simulated population. The Monte Carlo engine
// only ever touches Type and Charge; Position and Velocity belong to the
// integrator that runs between reaction steps and are carried through moves
// untouched.
type Particle struct {
	ID       ParticleID `json:"id"`
	Type     int        `json:"type"`
	Charge   float64    `json:"charge"`
	Position Position   `json:"position"`
	Velocity [3]float64 `json:"velocity,omitempty"`
}
