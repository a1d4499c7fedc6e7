package remc

import (
	"fmt"
	"math"
	"sync"
)

// chargeUnset marks a registered type whose default charge was never
// assigned. Particles of such a type are created neutral.
const chargeUnset = math.MaxFloat64

// ReactionSystem owns the declared reactions, the reaction volume, the type
// registry and the per-type default charges. Exactly one system is live per
// simulation; declaration calls mutate it in place during the single-threaded
// setup phase and the engine reads it during stepping. The mutex exists for
// the server surface, which may report status while a run is in flight.
type ReactionSystem struct {
	mu        sync.RWMutex
	name      string
	volume    float64
	volumeSet bool
	reactions []*SingleReaction
	registry  *TypeRegistry
	charges   []float64
	water     *WaterDissociation
	waterType int
	waterSet  bool
}

// NewReactionSystem returns an empty, uninitialized system. SetVolume must be
// called before any reaction is declared.
func NewReactionSystem() *ReactionSystem {
	return &ReactionSystem{registry: NewTypeRegistry()}
}

// Name returns the optional display name assigned by configuration.
func (s *ReactionSystem) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// SetName assigns a display name used in reports and move events.
func (s *ReactionSystem) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// SetVolume sets the reaction volume used by the acceptance probability.
// The volume is set-once: a second call fails with ErrAlreadyInitialized, and
// non-positive volumes are rejected.
func (s *ReactionSystem) SetVolume(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.volumeSet {
		return fmt.Errorf("volume already %g: %w", s.volume, ErrAlreadyInitialized)
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("volume must be positive, got %g", v)
	}
	s.volume = v
	s.volumeSet = true
	return nil
}

// Volume returns the reaction volume, or ErrNotInitialized if it was never
// set.
func (s *ReactionSystem) Volume() (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.volumeSet {
		return 0, ErrNotInitialized
	}
	return s.volume, nil
}

// AddReaction validates and appends a reaction declaration. Every type
// identifier appearing on either side is registered, and the default-charge
// table grows with an unset sentinel for newly seen types. The reaction's
// index in declaration order is returned and identifies it in reports.
func (s *ReactionSystem) AddReaction(eductTypes, eductCoefficients, productTypes, productCoefficients []int, equilibriumConstant float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.volumeSet {
		return 0, fmt.Errorf("set the volume before declaring reactions: %w", ErrNotInitialized)
	}
	r, err := NewSingleReaction(eductTypes, eductCoefficients, productTypes, productCoefficients, equilibriumConstant)
	if err != nil {
		return 0, err
	}
	s.reactions = append(s.reactions, r)
	for _, t := range r.AllTypes() {
		idx := s.registry.ResolveOrInsert(t)
		for len(s.charges) <= idx {
			s.charges = append(s.charges, chargeUnset)
		}
	}
	return len(s.reactions) - 1, nil
}

// RegisterType registers an external type identifier without a reaction,
// for species that only ever sit in the box. Idempotent; returns the
// internal slot.
func (s *ReactionSystem) RegisterType(typeID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.registry.ResolveOrInsert(typeID)
	for len(s.charges) <= idx {
		s.charges = append(s.charges, chargeUnset)
	}
	return idx
}

// ReactionCount returns the number of declared reactions.
func (s *ReactionSystem) ReactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reactions)
}

// Reaction returns the declared reaction at index i.
func (s *ReactionSystem) Reaction(i int) (*SingleReaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.reactions) {
		return nil, fmt.Errorf("reaction index %d out of range [0,%d)", i, len(s.reactions))
	}
	return s.reactions[i], nil
}

// Reactions returns the declared reactions in declaration order. The slice
// is a copy; the records themselves are immutable.
func (s *ReactionSystem) Reactions() []*SingleReaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*SingleReaction(nil), s.reactions...)
}

// SetDefaultCharge records the charge newly created particles of the given
// type receive. The type must already be registered through a declaration;
// otherwise ErrUnknownType is returned.
func (s *ReactionSystem) SetDefaultCharge(typeID int, charge float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.registry.Lookup(typeID)
	if err != nil {
		return err
	}
	s.charges[idx] = charge
	return nil
}

// DefaultCharge returns the default charge for typeID. Types that were
// registered but never assigned a charge are neutral. Unregistered types
// fail with ErrUnknownType.
func (s *ReactionSystem) DefaultCharge(typeID int) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultChargeLocked(typeID)
}

func (s *ReactionSystem) defaultChargeLocked(typeID int) (float64, error) {
	idx, err := s.registry.Lookup(typeID)
	if err != nil {
		return 0, err
	}
	c := s.charges[idx]
	if c == chargeUnset {
		return 0, nil
	}
	return c, nil
}

// SetWaterType records the external identifier of the water species used by
// the autodissociation variant. Prior registration is not required; the type
// is registered lazily when the variant is fully configured.
func (s *ReactionSystem) SetWaterType(typeID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waterType = typeID
	s.waterSet = true
}

// WaterType returns the recorded water type identifier, if any.
func (s *ReactionSystem) WaterType() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.waterType, s.waterSet
}

// ConfigureWaterDissociation completes the autodissociation variant with the
// ion types and its equilibrium constant. It registers all three types so the
// variant can assign charges, and activates the variant for the engine. The
// water type must have been recorded with SetWaterType first.
func (s *ReactionSystem) ConfigureWaterDissociation(acidType, baseType int, equilibriumConstant float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.waterSet {
		return fmt.Errorf("water type not recorded: %w", ErrUnknownType)
	}
	w, err := NewWaterDissociation(s.waterType, acidType, baseType, equilibriumConstant)
	if err != nil {
		return err
	}
	for _, t := range []int{s.waterType, acidType, baseType} {
		idx := s.registry.ResolveOrInsert(t)
		for len(s.charges) <= idx {
			s.charges = append(s.charges, chargeUnset)
		}
	}
	s.water = w
	return nil
}

// WaterDissociation returns the configured autodissociation variant, or nil
// when the variant is inactive (water type recorded but ions unconfigured, or
// never recorded at all).
func (s *ReactionSystem) WaterDissociation() *WaterDissociation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.water
}

// RegisteredTypes returns the external type identifiers in registration
// order.
func (s *ReactionSystem) RegisteredTypes() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Types()
}

// LookupTypeIndex resolves an external type identifier to its internal slot.
func (s *ReactionSystem) LookupTypeIndex(typeID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Lookup(typeID)
}

// Initialized reports whether the volume has been set.
func (s *ReactionSystem) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volumeSet
}

// Teardown releases all reactions, clears the registry and the charge table,
// and resets the volume to unset. Safe to call on a system that was never
// initialized.
func (s *ReactionSystem) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reactions = nil
	s.registry.Reset()
	s.charges = nil
	s.volume = 0
	s.volumeSet = false
	s.water = nil
	s.waterType = 0
	s.waterSet = false
	s.name = ""
}
