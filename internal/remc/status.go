package remc

import (
	"fmt"
	"strings"
)

// ReactionSummary is the read-only view of one declared reaction.
type ReactionSummary struct {
	Index               int     `json:"index"`
	EductTypes          []int   `json:"educt_types"`
	EductCoefficients   []int   `json:"educt_coefficients"`
	ProductTypes        []int   `json:"product_types"`
	ProductCoefficients []int   `json:"product_coefficients"`
	EquilibriumConstant float64 `json:"equilibrium_constant"`
	NuBar               int     `json:"nu_bar"`
}

// WaterSummary is the read-only view of the configured water variant.
type WaterSummary struct {
	WaterType           int     `json:"water_type"`
	AcidType            int     `json:"acid_type"`
	BaseType            int     `json:"base_type"`
	EquilibriumConstant float64 `json:"equilibrium_constant"`
}

// StatusReport is the structured summary served over the API and rendered by
// FormatStatus. NrSingleReactions counts only declared reactions, never the
// water variant.
type StatusReport struct {
	Name              string            `json:"name,omitempty"`
	Initialized       bool              `json:"initialized"`
	Volume            float64           `json:"volume"`
	Temperature       float64           `json:"temperature,omitempty"`
	NrSingleReactions int               `json:"nr_single_reactions"`
	Reactions         []ReactionSummary `json:"reactions"`
	RegisteredTypes   []int             `json:"registered_types,omitempty"`
	DefaultCharges    map[int]float64   `json:"default_charges,omitempty"`
	Water             *WaterSummary     `json:"water,omitempty"`
	ParticleCount     int               `json:"particle_count"`
	TypeCounts        map[int]int       `json:"type_counts,omitempty"`
	TotalCharge       float64           `json:"total_charge"`
	Stats             *EngineStats      `json:"stats,omitempty"`
}

// StatusReport summarizes the declared reactions, volume and type registry.
// It never mutates the system.
func (s *ReactionSystem) StatusReport() StatusReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := StatusReport{
		Name:              s.name,
		Initialized:       s.volumeSet,
		Volume:            s.volume,
		NrSingleReactions: len(s.reactions),
		RegisteredTypes:   s.registry.Types(),
	}
	for i, r := range s.reactions {
		report.Reactions = append(report.Reactions, ReactionSummary{
			Index:               i,
			EductTypes:          r.EductTypes(),
			EductCoefficients:   r.EductCoefficients(),
			ProductTypes:        r.ProductTypes(),
			ProductCoefficients: r.ProductCoefficients(),
			EquilibriumConstant: r.EquilibriumConstant(),
			NuBar:               r.NuBar(),
		})
	}
	charges := make(map[int]float64)
	registered := s.registry.Types()
	for idx, c := range s.charges {
		if c != chargeUnset && idx < len(registered) {
			charges[registered[idx]] = c
		}
	}
	if len(charges) > 0 {
		report.DefaultCharges = charges
	}
	if s.water != nil {
		report.Water = &WaterSummary{
			WaterType:           s.water.WaterType(),
			AcidType:            s.water.AcidType(),
			BaseType:            s.water.BaseType(),
			EquilibriumConstant: s.water.EquilibriumConstant(),
		}
	}
	return report
}

// StatusReport extends the system summary with the current population and
// the engine's outcome counters.
func (e *Engine) StatusReport() StatusReport {
	report := e.system.StatusReport()
	report.Temperature = e.temperature
	report.ParticleCount = e.store.Len()
	report.TypeCounts = e.store.TypeCounts()
	report.TotalCharge = e.store.TotalCharge()
	stats := e.Stats()
	report.Stats = &stats
	return report
}

// FormatStatus renders a report as diagnostic text. A system without
// reactions prints a single not-initialized line; otherwise the volume and
// each reaction's stoichiometry follow in declaration order.
func FormatStatus(report StatusReport) string {
	var b strings.Builder
	if report.NrSingleReactions == 0 {
		b.WriteString("Reaction System is not initialized\n")
		return b.String()
	}
	b.WriteString("Reaction System is the following:\n")
	fmt.Fprintf(&b, "volume %f\n", report.Volume)
	for _, r := range report.Reactions {
		fmt.Fprintf(&b, "#Reaction %d#\n", r.Index)
		b.WriteString("educt types:\n")
		writeIntLine(&b, r.EductTypes)
		b.WriteString("educt coefficients:\n")
		writeIntLine(&b, r.EductCoefficients)
		b.WriteString("product types:\n")
		writeIntLine(&b, r.ProductTypes)
		b.WriteString("product coefficients:\n")
		writeIntLine(&b, r.ProductCoefficients)
		fmt.Fprintf(&b, "equilibrium constant: %f\n", r.EquilibriumConstant)
	}
	return b.String()
}

func writeIntLine(b *strings.Builder, values []int) {
	for i, v := range values {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(b, "%d", v)
	}
	b.WriteByte('\n')
}
