package remc

// SpeciesConfig declares one particle species. Type is the external
// identifier used in reaction declarations and particle bookkeeping; Charge,
// when present, becomes the default charge for created particles.
type SpeciesConfig struct {
	Name   string   `json:"name" yaml:"name"`
	Type   int      `json:"type" yaml:"type"`
	Charge *float64 `json:"charge,omitempty" yaml:"charge,omitempty"`
}

// ReactionConfig declares one reaction by species name. Coefficient lists
// pair positionally with the species lists.
type ReactionConfig struct {
	Name                string   `json:"name,omitempty" yaml:"name,omitempty"`
	Educts              []string `json:"educts" yaml:"educts"`
	EductCoefficients   []int    `json:"educt_coefficients" yaml:"educt_coefficients"`
	Products            []string `json:"products" yaml:"products"`
	ProductCoefficients []int    `json:"product_coefficients" yaml:"product_coefficients"`
	EquilibriumConstant float64  `json:"equilibrium_constant" yaml:"equilibrium_constant"`
}

// WaterConfig activates the autodissociation variant: one particle of
// Species splits into one Acid and one Base ion.
type WaterConfig struct {
	Species             string  `json:"species" yaml:"species"`
	Acid                string  `json:"acid" yaml:"acid"`
	Base                string  `json:"base" yaml:"base"`
	EquilibriumConstant float64 `json:"equilibrium_constant" yaml:"equilibrium_constant"`
}

// ParticlesConfig seeds the initial population with Count particles of the
// named species at uniform random positions.
type ParticlesConfig struct {
	Species string `json:"species" yaml:"species"`
	Count   int    `json:"count" yaml:"count"`
}

// SystemConfig is the declarative description of a full simulation: volume,
// temperature, species, reactions and the starting population. Box, when
// omitted, defaults to a cube whose volume matches Volume; when given it only
// places particles, the acceptance probability always uses Volume.
type SystemConfig struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Volume      float64           `json:"volume" yaml:"volume"`
	Temperature float64           `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Box         []float64         `json:"box,omitempty" yaml:"box,omitempty"`
	Seed        *int64            `json:"seed,omitempty" yaml:"seed,omitempty"`
	Species     []SpeciesConfig   `json:"species" yaml:"species"`
	Reactions   []ReactionConfig  `json:"reactions" yaml:"reactions"`
	Water       *WaterConfig      `json:"water,omitempty" yaml:"water,omitempty"`
	Particles   []ParticlesConfig `json:"particles,omitempty" yaml:"particles,omitempty"`
}
