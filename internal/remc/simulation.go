package remc

import (
	"fmt"
	"sync"
)

// Simulation is the single live system slot the server operates on. Exactly
// one system can be live at a time; initializing a second one fails with
// ErrAlreadyInitialized until the first is torn down. Stepping is serialized
// so concurrent API calls cannot interleave trial moves.
type Simulation struct {
	mu            sync.RWMutex
	runID         string
	engine        *Engine
	metrics       *Metrics
	notifications *NotificationManager
	logger        Logger

	stepMu sync.Mutex
}

// NewSimulation creates an empty simulation slot with its own metrics and
// notification routing.
func NewSimulation(logger Logger) *Simulation {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &Simulation{
		metrics:       NewMetrics(),
		notifications: NewNotificationManager(logger),
		logger:        logger,
	}
}

// Initialize builds a system from the config and makes it live. Returns the
// run ID identifying this system's lifetime, or ErrAlreadyInitialized when a
// system is already live.
func (s *Simulation) Initialize(cfg SystemConfig, evaluator EnergyEvaluator) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		return "", fmt.Errorf("run %s is live: %w", s.runID, ErrAlreadyInitialized)
	}
	engine, err := BuildSystemFromConfig(cfg, evaluator, s.logger)
	if err != nil {
		return "", err
	}
	s.engine = engine
	s.runID = NewRandomID()
	s.logger.Infof("system %q live as run %s", cfg.Name, s.runID)
	return s.runID, nil
}

// Engine returns the live engine, or false when none is live.
func (s *Simulation) Engine() (*Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine, s.engine != nil
}

// RunID returns the identifier of the live run, empty when none is live.
func (s *Simulation) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// Step performs a batch of trial moves on the live system, records metrics
// and fans the resulting event out to all registered notifiers.
func (s *Simulation) Step(steps int) (MoveEvent, []MoveResult, error) {
	s.mu.RLock()
	engine := s.engine
	runID := s.runID
	s.mu.RUnlock()
	if engine == nil {
		return MoveEvent{}, nil, ErrNotInitialized
	}

	s.stepMu.Lock()
	results, err := engine.DoReaction(steps)
	s.stepMu.Unlock()
	if err != nil {
		return MoveEvent{}, nil, err
	}

	s.metrics.Observe(results, engine.Store())
	event := NewMoveEvent(runID, engine, results)
	s.notifications.Enqueue(event, s.notifications.ListNotifiers())
	return event, results, nil
}

// Populate seeds particles into the live system's box.
func (s *Simulation) Populate(typeID, count int) error {
	engine, ok := s.Engine()
	if !ok {
		return ErrNotInitialized
	}
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	return engine.Populate(typeID, count)
}

// Status reports the live system, or an empty not-initialized report.
func (s *Simulation) Status() StatusReport {
	engine, ok := s.Engine()
	if !ok {
		return StatusReport{}
	}
	return engine.StatusReport()
}

// Snapshot captures the live system's state.
func (s *Simulation) Snapshot() (Snapshot, error) {
	engine, ok := s.Engine()
	if !ok {
		return Snapshot{}, ErrNotInitialized
	}
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	return TakeSnapshot(engine), nil
}

// Teardown releases the live system. Calling it with no live system is a
// no-op; registered notifiers and metrics survive for the next run.
func (s *Simulation) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return
	}
	s.engine.System().Teardown()
	s.logger.Infof("run %s torn down", s.runID)
	s.engine = nil
	s.runID = ""
}

// RegisterNotifier adds a notification channel for move events.
func (s *Simulation) RegisterNotifier(n Notifier) error {
	return s.notifications.RegisterNotifier(n)
}

// UnregisterNotifier removes a notification channel.
func (s *Simulation) UnregisterNotifier(id string) error {
	return s.notifications.UnregisterNotifier(id)
}

// Notifications returns the manager fanning move events out, for callers
// that need to enumerate the registered channels.
func (s *Simulation) Notifications() *NotificationManager {
	return s.notifications
}

// Metrics returns the simulation's collectors for serving.
func (s *Simulation) Metrics() *Metrics {
	return s.metrics
}

// Close tears the live system down and shuts the notification workers.
func (s *Simulation) Close() error {
	s.Teardown()
	return s.notifications.Close()
}
