package remc

import "fmt"

// WaterDissociation is the constant-pH style variant in which one water
// particle splits into an acid and a base ion. It synthesizes a regular
// one-educt two-product reaction so the engine needs no special casing; the
// variant only differs in how it is declared and that it never counts toward
// the declared reaction total.
type WaterDissociation struct {
	waterType           int
	acidType            int
	baseType            int
	equilibriumConstant float64
	reaction            *SingleReaction
}

// NewWaterDissociation builds the variant for W -> A + B. The three types
// must be pairwise distinct and the constant positive.
func NewWaterDissociation(waterType, acidType, baseType int, equilibriumConstant float64) (*WaterDissociation, error) {
	if waterType == acidType || waterType == baseType || acidType == baseType {
		return nil, fmt.Errorf("water, acid and base types must be distinct (got %d, %d, %d): %w",
			waterType, acidType, baseType, ErrMalformedReaction)
	}
	r, err := NewSingleReaction(
		[]int{waterType}, []int{1},
		[]int{acidType, baseType}, []int{1, 1},
		equilibriumConstant,
	)
	if err != nil {
		return nil, err
	}
	return &WaterDissociation{
		waterType:           waterType,
		acidType:            acidType,
		baseType:            baseType,
		equilibriumConstant: equilibriumConstant,
		reaction:            r,
	}, nil
}

// Reaction returns the synthesized dissociation reaction.
func (w *WaterDissociation) Reaction() *SingleReaction { return w.reaction }

// WaterType returns the water species identifier.
func (w *WaterDissociation) WaterType() int { return w.waterType }

// AcidType returns the acid ion identifier.
func (w *WaterDissociation) AcidType() int { return w.acidType }

// BaseType returns the base ion identifier.
func (w *WaterDissociation) BaseType() int { return w.baseType }

// EquilibriumConstant returns the dissociation constant.
func (w *WaterDissociation) EquilibriumConstant() float64 { return w.equilibriumConstant }
