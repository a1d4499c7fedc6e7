package remc

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation issues
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid config: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "config validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// ValidateSystemConfig performs comprehensive validation of a SystemConfig
func ValidateSystemConfig(cfg SystemConfig) error {
	err := &ValidationError{}

	if cfg.Volume <= 0 {
		err.Add(fmt.Sprintf("volume must be positive, got %g", cfg.Volume))
	}
	if cfg.Temperature < 0 {
		err.Add(fmt.Sprintf("temperature must not be negative, got %g", cfg.Temperature))
	}
	if len(cfg.Box) != 0 && len(cfg.Box) != 3 {
		err.Add(fmt.Sprintf("box needs exactly 3 side lengths, got %d", len(cfg.Box)))
	}
	for _, side := range cfg.Box {
		if side <= 0 {
			err.Add(fmt.Sprintf("box side lengths must be positive, got %g", side))
			break
		}
	}

	// Species names and type IDs must both be unique; reactions reference
	// species by name.
	speciesByName := make(map[string]bool)
	typesSeen := make(map[int]string)
	var names []string
	for _, sp := range cfg.Species {
		if sp.Name == "" {
			err.Add("species name is required")
			continue
		}
		if speciesByName[sp.Name] {
			err.Add("duplicate species name: " + sp.Name)
		} else {
			speciesByName[sp.Name] = true
			names = append(names, sp.Name)
		}
		if prior, dup := typesSeen[sp.Type]; dup {
			err.Add(fmt.Sprintf("species '%s' reuses type %d already held by '%s'", sp.Name, sp.Type, prior))
		} else {
			typesSeen[sp.Type] = sp.Name
		}
	}

	checkSpecies := func(prefix, role, name string) {
		if name == "" {
			err.Add(prefix + ": " + role + " species is required")
			return
		}
		if speciesByName[name] {
			return
		}
		issue := prefix + ": " + role + " species '" + name + "' does not exist"
		if hint := suggestSpecies(name, names); hint != "" {
			issue += " (did you mean '" + hint + "'?)"
		}
		err.Add(issue)
	}

	for i, rc := range cfg.Reactions {
		prefix := "reaction at index " + fmt.Sprintf("%d", i)
		if rc.Name != "" {
			prefix = "reaction '" + rc.Name + "'"
		}
		if len(rc.Educts) == 0 {
			err.Add(prefix + ": at least one educt is required")
		}
		if len(rc.Products) == 0 {
			err.Add(prefix + ": at least one product is required")
		}
		if len(rc.Educts) != len(rc.EductCoefficients) {
			err.Add(fmt.Sprintf("%s: %d educts but %d educt coefficients", prefix, len(rc.Educts), len(rc.EductCoefficients)))
		}
		if len(rc.Products) != len(rc.ProductCoefficients) {
			err.Add(fmt.Sprintf("%s: %d products but %d product coefficients", prefix, len(rc.Products), len(rc.ProductCoefficients)))
		}
		for _, name := range rc.Educts {
			checkSpecies(prefix, "educt", name)
		}
		for _, name := range rc.Products {
			checkSpecies(prefix, "product", name)
		}
		for _, c := range rc.EductCoefficients {
			if c < 1 {
				err.Add(fmt.Sprintf("%s: educt coefficients must be >= 1, got %d", prefix, c))
				break
			}
		}
		for _, c := range rc.ProductCoefficients {
			if c < 1 {
				err.Add(fmt.Sprintf("%s: product coefficients must be >= 1, got %d", prefix, c))
				break
			}
		}
		if rc.EquilibriumConstant <= 0 {
			err.Add(fmt.Sprintf("%s: equilibrium constant must be positive, got %g", prefix, rc.EquilibriumConstant))
		}
	}

	if cfg.Water != nil {
		checkSpecies("water", "water", cfg.Water.Species)
		checkSpecies("water", "acid", cfg.Water.Acid)
		checkSpecies("water", "base", cfg.Water.Base)
		if cfg.Water.Species != "" && (cfg.Water.Species == cfg.Water.Acid || cfg.Water.Species == cfg.Water.Base) {
			err.Add("water: water species must differ from its ions")
		}
		if cfg.Water.Acid != "" && cfg.Water.Acid == cfg.Water.Base {
			err.Add("water: acid and base species must differ")
		}
		if cfg.Water.EquilibriumConstant <= 0 {
			err.Add(fmt.Sprintf("water: equilibrium constant must be positive, got %g", cfg.Water.EquilibriumConstant))
		}
	}

	for i, pc := range cfg.Particles {
		prefix := "particles at index " + fmt.Sprintf("%d", i)
		checkSpecies(prefix, "seeded", pc.Species)
		if pc.Count < 0 {
			err.Add(fmt.Sprintf("%s: count must not be negative, got %d", prefix, pc.Count))
		}
	}

	if err.HasIssues() {
		return err
	}
	return nil
}
