package remc

import "fmt"

// SingleReaction describes one declared chemical reaction: which particle
// types it consumes (educts), which it produces (products), with which
// integer multiplicities, and its equilibrium constant. A SingleReaction is
// immutable after construction and owned by the ReactionSystem that holds it.
type SingleReaction struct {
	eductTypes          []int
	eductCoefficients   []int
	productTypes        []int
	productCoefficients []int
	equilibriumConstant float64
	nuBar               int
}

// NewSingleReaction validates the stoichiometry lists and derives nu_bar,
// the net particle-count change of one forward execution. Type and
// coefficient lists must be pairwise same-length and non-empty, and every
// coefficient must be at least 1; otherwise ErrMalformedReaction is returned.
func NewSingleReaction(eductTypes, eductCoefficients, productTypes, productCoefficients []int, equilibriumConstant float64) (*SingleReaction, error) {
	if len(eductTypes) == 0 || len(productTypes) == 0 {
		return nil, fmt.Errorf("empty educt or product list: %w", ErrMalformedReaction)
	}
	if len(eductTypes) != len(eductCoefficients) {
		return nil, fmt.Errorf("%d educt types vs %d coefficients: %w", len(eductTypes), len(eductCoefficients), ErrMalformedReaction)
	}
	if len(productTypes) != len(productCoefficients) {
		return nil, fmt.Errorf("%d product types vs %d coefficients: %w", len(productTypes), len(productCoefficients), ErrMalformedReaction)
	}
	for _, c := range eductCoefficients {
		if c < 1 {
			return nil, fmt.Errorf("educt coefficient %d < 1: %w", c, ErrMalformedReaction)
		}
	}
	for _, c := range productCoefficients {
		if c < 1 {
			return nil, fmt.Errorf("product coefficient %d < 1: %w", c, ErrMalformedReaction)
		}
	}
	r := &SingleReaction{
		eductTypes:          append([]int(nil), eductTypes...),
		eductCoefficients:   append([]int(nil), eductCoefficients...),
		productTypes:        append([]int(nil), productTypes...),
		productCoefficients: append([]int(nil), productCoefficients...),
		equilibriumConstant: equilibriumConstant,
	}
	r.nuBar = calculateNuBar(eductCoefficients, productCoefficients)
	return r, nil
}

// calculateNuBar is sum(product coefficients) - sum(educt coefficients).
func calculateNuBar(eductCoefficients, productCoefficients []int) int {
	nu := 0
	for _, c := range productCoefficients {
		nu += c
	}
	for _, c := range eductCoefficients {
		nu -= c
	}
	return nu
}

// EductTypes returns the consumed type identifiers in declaration order.
func (r *SingleReaction) EductTypes() []int { return append([]int(nil), r.eductTypes...) }

// EductCoefficients returns the educt multiplicities in declaration order.
func (r *SingleReaction) EductCoefficients() []int {
	return append([]int(nil), r.eductCoefficients...)
}

// ProductTypes returns the produced type identifiers in declaration order.
func (r *SingleReaction) ProductTypes() []int { return append([]int(nil), r.productTypes...) }

// ProductCoefficients returns the product multiplicities in declaration order.
func (r *SingleReaction) ProductCoefficients() []int {
	return append([]int(nil), r.productCoefficients...)
}

// EquilibriumConstant returns the declared equilibrium constant.
func (r *SingleReaction) EquilibriumConstant() float64 { return r.equilibriumConstant }

// NuBar returns the net particle-count change of one forward execution.
func (r *SingleReaction) NuBar() int { return r.nuBar }

// netChanges aggregates the reaction into per-type signed coefficients for
// the requested direction: negative entries are consumed, positive entries
// are produced. A type appearing on both sides contributes its net change,
// which is what the acceptance prefactor and the trial move both need.
func (r *SingleReaction) netChanges(forward bool) map[int]int {
	net := make(map[int]int, len(r.eductTypes)+len(r.productTypes))
	educts, eductCoeffs := r.eductTypes, r.eductCoefficients
	products, productCoeffs := r.productTypes, r.productCoefficients
	if !forward {
		educts, eductCoeffs = r.productTypes, r.productCoefficients
		products, productCoeffs = r.eductTypes, r.eductCoefficients
	}
	for i, t := range educts {
		net[t] -= eductCoeffs[i]
	}
	for i, t := range products {
		net[t] += productCoeffs[i]
	}
	return net
}

// AllTypes returns every type identifier referenced by either side, in
// declaration order with educts first and duplicates removed.
func (r *SingleReaction) AllTypes() []int {
	seen := make(map[int]struct{}, len(r.eductTypes)+len(r.productTypes))
	out := make([]int, 0, len(r.eductTypes)+len(r.productTypes))
	for _, t := range r.eductTypes {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	for _, t := range r.productTypes {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
