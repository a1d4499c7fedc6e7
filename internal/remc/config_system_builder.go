package remc

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTemperature is used when a config omits the temperature.
const DefaultTemperature = 1.0

// ReadSystemConfig loads a SystemConfig from a JSON or YAML file, chosen by
// extension.
func ReadSystemConfig(path string) (SystemConfig, error) {
	var cfg SystemConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse json config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// BuildSystemFromConfig converts a SystemConfig into a ready-to-run engine:
// it validates the config, declares the reactions, registers species and
// their default charges, activates the water variant, and seeds the starting
// population. A nil evaluator defaults to IdealEnergy.
func BuildSystemFromConfig(cfg SystemConfig, evaluator EnergyEvaluator, logger Logger) (*Engine, error) {
	if err := ValidateSystemConfig(cfg); err != nil {
		return nil, err
	}
	if evaluator == nil {
		evaluator = IdealEnergy{}
	}
	if logger == nil {
		logger = NewNoOpLogger()
	}

	var rng RandomSource
	if cfg.Seed != nil {
		rng = NewRandomSource(*cfg.Seed)
	} else {
		rng = NewTimeSeededSource()
	}

	system := NewReactionSystem()
	system.SetName(cfg.Name)
	if err := system.SetVolume(cfg.Volume); err != nil {
		return nil, err
	}

	typeOf := make(map[string]int, len(cfg.Species))
	for _, sp := range cfg.Species {
		typeOf[sp.Name] = sp.Type
		system.RegisterType(sp.Type)
	}

	for _, rc := range cfg.Reactions {
		eductTypes := typesOf(rc.Educts, typeOf)
		productTypes := typesOf(rc.Products, typeOf)
		if _, err := system.AddReaction(eductTypes, rc.EductCoefficients, productTypes, rc.ProductCoefficients, rc.EquilibriumConstant); err != nil {
			name := rc.Name
			if name == "" {
				name = strings.Join(rc.Educts, "+") + " -> " + strings.Join(rc.Products, "+")
			}
			return nil, fmt.Errorf("declare reaction %s: %w", name, err)
		}
	}

	for _, sp := range cfg.Species {
		if sp.Charge == nil {
			continue
		}
		if err := system.SetDefaultCharge(sp.Type, *sp.Charge); err != nil {
			return nil, fmt.Errorf("species %s: %w", sp.Name, err)
		}
	}

	if cfg.Water != nil {
		system.SetWaterType(typeOf[cfg.Water.Species])
		if err := system.ConfigureWaterDissociation(typeOf[cfg.Water.Acid], typeOf[cfg.Water.Base], cfg.Water.EquilibriumConstant); err != nil {
			return nil, fmt.Errorf("configure water dissociation: %w", err)
		}
	}

	box := cfg.Box
	if len(box) == 0 {
		side := math.Cbrt(cfg.Volume)
		box = []float64{side, side, side}
	}
	store := NewBoxStore(box[0], box[1], box[2])

	for _, pc := range cfg.Particles {
		typeID := typeOf[pc.Species]
		charge, err := system.DefaultCharge(typeID)
		if err != nil {
			return nil, fmt.Errorf("seed species %s: %w", pc.Species, err)
		}
		for i := 0; i < pc.Count; i++ {
			store.Create(typeID, charge, store.RandomPosition(rng))
		}
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	engine, err := NewEngine(system, store, evaluator, rng, temperature, logger)
	if err != nil {
		return nil, err
	}
	logger.Infof("built system %q: %d reactions, %d species, %d particles, volume %g",
		cfg.Name, system.ReactionCount(), len(cfg.Species), store.Len(), cfg.Volume)
	return engine, nil
}

func typesOf(names []string, typeOf map[string]int) []int {
	out := make([]int, len(names))
	for i, name := range names {
		out[i] = typeOf[name]
	}
	return out
}
