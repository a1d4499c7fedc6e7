package remc

import "errors"

// Domain errors for reaction-system declaration and Monte Carlo stepping.
var (
	// ErrMalformedReaction indicates mismatched or empty stoichiometry lists.
	ErrMalformedReaction = errors.New("remc: malformed reaction (mismatched or empty stoichiometry lists)")

	// ErrUnknownType indicates an operation referencing a particle type that
	// was never registered through a reaction declaration.
	ErrUnknownType = errors.New("remc: unknown particle type")

	// ErrAlreadyInitialized indicates the reaction volume was set twice.
	ErrAlreadyInitialized = errors.New("remc: reaction system already initialized")

	// ErrNotInitialized indicates the reaction volume was never set.
	ErrNotInitialized = errors.New("remc: reaction system not initialized")

	// ErrEnergyEvaluation indicates the energy collaborator could not produce
	// a finite potential energy for the current configuration.
	ErrEnergyEvaluation = errors.New("remc: energy evaluation failed")

	// ErrParticleNotFound indicates a particle handle that is not present in
	// the store.
	ErrParticleNotFound = errors.New("remc: particle not found")
)

// StepError wraps a step-level failure with the reaction that was being
// attempted. The population is always rolled back before a StepError is
// returned.
type StepError struct {
	ReactionIndex int
	Forward       bool
	Wrapped       error
}

func (e *StepError) Error() string {
	return e.Wrapped.Error()
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
