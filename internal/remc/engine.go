package remc

import (
	"fmt"
	"math"
	"sync"
)

// MoveOutcome classifies how a single trial move ended.
type MoveOutcome string

const (
	// OutcomeAccepted means the move passed the acceptance test and the
	// population keeps the staged changes.
	OutcomeAccepted MoveOutcome = "accepted"
	// OutcomeRejected means the acceptance test failed and the staged
	// changes were rolled back.
	OutcomeRejected MoveOutcome = "rejected"
	// OutcomeInsufficientEducts means the population could not supply the
	// particles the move consumes. Nothing was staged.
	OutcomeInsufficientEducts MoveOutcome = "insufficient_educts"
	// OutcomeNoReactions means no reaction was available to attempt.
	OutcomeNoReactions MoveOutcome = "no_reactions"
	// OutcomeEnergyFailure means the energy evaluator failed. The staged
	// changes were rolled back and the error is carried on the result.
	OutcomeEnergyFailure MoveOutcome = "energy_failure"
)

// MoveResult describes one trial move. ReactionIndex is the declaration
// index, or -1 when the move attempted the water dissociation variant.
type MoveResult struct {
	ReactionIndex int         `json:"reaction_index"`
	Water         bool        `json:"water,omitempty"`
	Forward       bool        `json:"forward"`
	Outcome       MoveOutcome `json:"outcome"`
	DeltaEnergy   float64     `json:"delta_energy"`
	Acceptance    float64     `json:"acceptance"`
	Err           error       `json:"-"`
}

// EngineStats aggregates move outcomes over the life of an engine.
type EngineStats struct {
	Attempted      uint64  `json:"attempted"`
	Accepted       uint64  `json:"accepted"`
	Rejected       uint64  `json:"rejected"`
	Insufficient   uint64  `json:"insufficient_educts"`
	EnergyFailures uint64  `json:"energy_failures"`
	NoReactions    uint64  `json:"no_reactions"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// Engine drives reaction ensemble sampling over a system and a particle
// population. One goroutine performs moves; callers that report concurrently
// read through the stats and the store, which guard themselves.
type Engine struct {
	system      *ReactionSystem
	store       ParticleStore
	evaluator   EnergyEvaluator
	rng         RandomSource
	temperature float64
	beta        float64
	logger      Logger

	statsMu sync.RWMutex
	stats   EngineStats
}

// NewEngine wires a sampling engine. A nil logger falls back to NoOpLogger.
func NewEngine(system *ReactionSystem, store ParticleStore, evaluator EnergyEvaluator, rng RandomSource, temperature float64, logger Logger) (*Engine, error) {
	if system == nil {
		return nil, fmt.Errorf("engine needs a reaction system")
	}
	if store == nil {
		return nil, fmt.Errorf("engine needs a particle store")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("engine needs an energy evaluator")
	}
	if rng == nil {
		return nil, fmt.Errorf("engine needs a random source")
	}
	if temperature <= 0 || math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return nil, fmt.Errorf("temperature must be positive, got %g", temperature)
	}
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &Engine{
		system:      system,
		store:       store,
		evaluator:   evaluator,
		rng:         rng,
		temperature: temperature,
		beta:        1 / temperature,
		logger:      logger,
	}, nil
}

// System returns the reaction system the engine samples.
func (e *Engine) System() *ReactionSystem { return e.system }

// Store returns the particle population the engine mutates.
func (e *Engine) Store() ParticleStore { return e.store }

// Temperature returns the sampling temperature in reduced units.
func (e *Engine) Temperature() float64 { return e.temperature }

// Stats returns a snapshot of the outcome counters.
func (e *Engine) Stats() EngineStats {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	s := e.stats
	if s.Attempted > 0 {
		s.AcceptanceRate = float64(s.Accepted) / float64(s.Attempted)
	}
	return s
}

// DoReaction performs steps trial moves and returns one result per move.
// With no reactions declared and no water variant configured every move is a
// no-op; the population is never touched. Failing the volume precondition is
// the only hard error, individual move failures are carried on their results.
func (e *Engine) DoReaction(steps int) ([]MoveResult, error) {
	if steps < 0 {
		return nil, fmt.Errorf("step count must be non-negative, got %d", steps)
	}
	volume, err := e.system.Volume()
	if err != nil {
		return nil, err
	}
	candidates := e.system.Reactions()
	water := e.system.WaterDissociation()
	total := len(candidates)
	if water != nil {
		total++
	}

	results := make([]MoveResult, 0, steps)
	accepted := 0
	for i := 0; i < steps; i++ {
		if total == 0 {
			results = append(results, MoveResult{ReactionIndex: -1, Outcome: OutcomeNoReactions})
			e.record(OutcomeNoReactions)
			continue
		}
		pick := e.rng.Intn(total)
		forward := e.rng.UniformUnit() < 0.5

		var r *SingleReaction
		res := MoveResult{Forward: forward}
		if pick < len(candidates) {
			r = candidates[pick]
			res.ReactionIndex = pick
		} else {
			r = water.Reaction()
			res.ReactionIndex = -1
			res.Water = true
		}
		e.attemptMove(r, volume, &res)
		e.record(res.Outcome)
		if res.Outcome == OutcomeAccepted {
			accepted++
		}
		results = append(results, res)
	}

	e.logger.Debugf("performed %d trial moves, %d accepted", steps, accepted)
	return results, nil
}

// Populate creates count particles of a registered type at uniform random
// positions with the type's default charge.
func (e *Engine) Populate(typeID, count int) error {
	if count < 0 {
		return fmt.Errorf("count must be non-negative, got %d", count)
	}
	charge, err := e.system.DefaultCharge(typeID)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		e.store.Create(typeID, charge, e.randomPosition())
	}
	return nil
}

// attemptMove stages one trial move for r in the given direction and either
// commits it or rolls the population back to its prior state.
func (e *Engine) attemptMove(r *SingleReaction, volume float64, res *MoveResult) {
	types, deltas := orderedNetChanges(r, res.Forward)

	// Feasibility first: a move that would drive any count negative is
	// rejected before anything is touched.
	for i, t := range types {
		if deltas[i] < 0 && e.store.CountOfType(t) < -deltas[i] {
			res.Outcome = OutcomeInsufficientEducts
			return
		}
	}

	factor := e.entropicFactor(r, volume, types, deltas, res.Forward)

	before, err := e.evaluator.Energy(e.store)
	if err != nil {
		res.Outcome = OutcomeEnergyFailure
		res.Err = &StepError{ReactionIndex: res.ReactionIndex, Forward: res.Forward,
			Wrapped: fmt.Errorf("%w: %v", ErrEnergyEvaluation, err)}
		return
	}

	staged, err := e.stage(types, deltas)
	if err != nil {
		staged.rollback(e.store)
		res.Outcome = OutcomeEnergyFailure
		res.Err = &StepError{ReactionIndex: res.ReactionIndex, Forward: res.Forward, Wrapped: err}
		return
	}

	after, err := e.evaluator.Energy(e.store)
	if err != nil {
		staged.rollback(e.store)
		res.Outcome = OutcomeEnergyFailure
		res.Err = &StepError{ReactionIndex: res.ReactionIndex, Forward: res.Forward,
			Wrapped: fmt.Errorf("%w: %v", ErrEnergyEvaluation, err)}
		return
	}

	res.DeltaEnergy = after - before
	acceptance := factor * math.Exp(-e.beta*res.DeltaEnergy)
	if acceptance > 1 {
		acceptance = 1
	}
	res.Acceptance = acceptance

	if e.rng.UniformUnit() < acceptance {
		res.Outcome = OutcomeAccepted
		return
	}
	staged.rollback(e.store)
	res.Outcome = OutcomeRejected
}

// entropicFactor computes V^nu_bar * K^(+-1) * prod_t N_t!/(N_t+nu_t)! from
// the population counts before the move.
func (e *Engine) entropicFactor(r *SingleReaction, volume float64, types, deltas []int, forward bool) float64 {
	nuBar := r.NuBar()
	k := r.EquilibriumConstant()
	if !forward {
		nuBar = -nuBar
		k = 1 / k
	}
	factor := math.Pow(volume, float64(nuBar)) * k
	for i, t := range types {
		factor *= countFactorialRatio(e.store.CountOfType(t), deltas[i])
	}
	return factor
}

// countFactorialRatio returns n0! / (n0+nu)! without evaluating factorials.
// For nu > 0 this telescopes to 1/((n0+1)...(n0+nu)), for nu < 0 to
// n0(n0-1)...(n0+nu+1).
func countFactorialRatio(n0, nu int) float64 {
	value := 1.0
	switch {
	case nu > 0:
		for i := 1; i <= nu; i++ {
			value /= float64(n0 + i)
		}
	case nu < 0:
		for i := 0; i < -nu; i++ {
			value *= float64(n0 - i)
		}
	}
	return value
}

// stagedMove records what a trial move changed, in application order, so a
// rejection can undo it exactly.
type stagedMove struct {
	relabeled []relabelRecord
	removed   []Particle
	created   []ParticleID
}

type relabelRecord struct {
	id     ParticleID
	typeID int
	charge float64
}

// stage applies the net changes to the store. Consumed particles are drawn
// uniformly per type; as many as possible are relabeled into product slots in
// declaration order, the surplus is removed, and missing products are created
// at uniform positions with their type's default charge.
func (e *Engine) stage(types, deltas []int) (*stagedMove, error) {
	staged := &stagedMove{}

	var consumed []Particle
	for i, t := range types {
		if deltas[i] >= 0 {
			continue
		}
		ids, err := SampleOfType(e.store, t, -deltas[i], e.rng)
		if err != nil {
			return staged, err
		}
		for _, id := range ids {
			p, ok := e.store.Get(id)
			if !ok {
				return staged, fmt.Errorf("sampled particle %d: %w", id, ErrParticleNotFound)
			}
			consumed = append(consumed, p)
		}
	}

	next := 0
	for i, t := range types {
		if deltas[i] <= 0 {
			continue
		}
		charge, err := e.system.DefaultCharge(t)
		if err != nil {
			return staged, err
		}
		for n := 0; n < deltas[i]; n++ {
			if next < len(consumed) {
				p := consumed[next]
				next++
				if err := e.store.Relabel(p.ID, t, charge); err != nil {
					return staged, err
				}
				staged.relabeled = append(staged.relabeled, relabelRecord{id: p.ID, typeID: p.Type, charge: p.Charge})
				continue
			}
			pos := e.randomPosition()
			created := e.store.Create(t, charge, pos)
			staged.created = append(staged.created, created.ID)
		}
	}

	for ; next < len(consumed); next++ {
		p, err := e.store.Remove(consumed[next].ID)
		if err != nil {
			return staged, err
		}
		staged.removed = append(staged.removed, p)
	}
	return staged, nil
}

// rollback undoes a staged move in reverse application order. Restored
// particles come back verbatim, relabeled ones regain their old type and
// charge.
func (m *stagedMove) rollback(store ParticleStore) {
	for i := len(m.created) - 1; i >= 0; i-- {
		store.Remove(m.created[i])
	}
	for i := len(m.removed) - 1; i >= 0; i-- {
		store.Restore(m.removed[i])
	}
	for i := len(m.relabeled) - 1; i >= 0; i-- {
		rec := m.relabeled[i]
		store.Relabel(rec.id, rec.typeID, rec.charge)
	}
}

func (e *Engine) randomPosition() Position {
	box := e.store.Box()
	return Position{
		e.rng.UniformUnit() * box[0],
		e.rng.UniformUnit() * box[1],
		e.rng.UniformUnit() * box[2],
	}
}

// orderedNetChanges flattens a reaction's per-type net changes into parallel
// slices ordered by first appearance in the declaration, dropping types whose
// counts do not change.
func orderedNetChanges(r *SingleReaction, forward bool) (types []int, deltas []int) {
	changes := r.netChanges(forward)
	for _, t := range r.AllTypes() {
		if d := changes[t]; d != 0 {
			types = append(types, t)
			deltas = append(deltas, d)
		}
	}
	return types, deltas
}

func (e *Engine) record(outcome MoveOutcome) {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	switch outcome {
	case OutcomeAccepted:
		e.stats.Attempted++
		e.stats.Accepted++
	case OutcomeRejected:
		e.stats.Attempted++
		e.stats.Rejected++
	case OutcomeInsufficientEducts:
		e.stats.Attempted++
		e.stats.Insufficient++
	case OutcomeEnergyFailure:
		e.stats.Attempted++
		e.stats.EnergyFailures++
	case OutcomeNoReactions:
		e.stats.NoReactions++
	}
}
