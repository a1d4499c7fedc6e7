package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/daniacca/remcsim/internal/archive"
	"github.com/daniacca/remcsim/internal/remc"
	"github.com/daniacca/remcsim/internal/remc/notifiers"
	"github.com/daniacca/remcsim/internal/runstore"
)

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleSystemRoutes dispatches /system by method: install, status, teardown.
func (s *Server) handleSystemRoutes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleApplySystem(w, r)
	case http.MethodGet:
		s.handleSystemStatus(w, r)
	case http.MethodDelete:
		s.handleDeleteSystem(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// POST /system
// Body: SystemConfig JSON
// Builds the system and makes it live, replacing a previous one.
func (s *Server) handleApplySystem(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var cfg remc.SystemConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid system json: "+err.Error(), http.StatusBadRequest)
		return
	}

	runID, err := s.installSystem(cfg)
	if err != nil {
		s.logger.Errorf("Failed to install system: name=%s error=%v", cfg.Name, err)
		http.Error(w, "cannot build system: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Infof("System installed: name=%s run_id=%s", cfg.Name, runID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "run_id": runID})
}

// GET /system
// Structured status report; initialized=false when no system is live.
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Status())
}

// GET /system/report
// Diagnostic text rendering of the status report.
func (s *Server) handleSystemReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(remc.FormatStatus(s.sim.Status())))
}

// DELETE /system
func (s *Server) handleDeleteSystem(w http.ResponseWriter, r *http.Request) {
	s.stepMu.Lock()
	s.sim.Teardown()
	s.stepCount = 0
	s.sinceSnapshot = 0
	s.stepMu.Unlock()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("system torn down"))
}

// POST /particles
// Body: { "type": 1, "count": 100 }
type seedParticlesRequest struct {
	Type  int `json:"type"`
	Count int `json:"count"`
}

func (s *Server) handleSeedParticles(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req seedParticlesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Count <= 0 {
		http.Error(w, "count must be positive", http.StatusBadRequest)
		return
	}

	if err := s.sim.Populate(req.Type, req.Count); err != nil {
		if errors.Is(err, remc.ErrNotInitialized) {
			http.Error(w, "no system initialized", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Debugf("Particles seeded: type=%d count=%d", req.Type, req.Count)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /particles/counts
func (s *Server) handleParticleCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := s.sim.Status()
	if !report.Initialized {
		http.Error(w, "no system initialized", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		TypeCounts    map[int]int `json:"type_counts"`
		ParticleCount int         `json:"particle_count"`
		TotalCharge   float64     `json:"total_charge"`
	}{report.TypeCounts, report.ParticleCount, report.TotalCharge})
}

// POST /step
// Body: { "steps": 100 } (default 1)
type stepRequest struct {
	Steps int `json:"steps"`
}

type stepResponse struct {
	remc.MoveEvent
	Results []remc.MoveResult `json:"results"`
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Steps <= 0 {
		req.Steps = 1
	}

	s.stepMu.Lock()
	event, results, err := s.sim.Step(req.Steps)
	if err != nil {
		s.stepMu.Unlock()
		if errors.Is(err, remc.ErrNotInitialized) {
			http.Error(w, "no system initialized", http.StatusBadRequest)
			return
		}
		s.logger.Errorf("Step failed: error=%v", err)
		http.Error(w, "step failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	records := runstore.RecordsFromResults(event.RunID, s.stepCount+1, results)
	s.stepCount += int64(len(results))
	if err := s.moves.AppendMoves(r.Context(), records...); err != nil {
		s.logger.Errorf("Failed to record moves: run_id=%s error=%v", event.RunID, err)
	}

	if s.snapshotEvery > 0 {
		s.sinceSnapshot += len(results)
		if s.sinceSnapshot >= s.snapshotEvery {
			s.sinceSnapshot = 0
			if snap, err := s.sim.Snapshot(); err == nil {
				if _, err := s.snapshots.Put(r.Context(), snap); err != nil {
					s.logger.Warnf("Periodic snapshot failed: error=%v", err)
				} else {
					s.logger.Debugf("Periodic snapshot archived: id=%s", snap.ID)
				}
			}
		}
	}
	s.stepMu.Unlock()

	writeJSON(w, http.StatusOK, stepResponse{MoveEvent: event, Results: results})
}

// POST /snapshot
// Archives the live population synchronously.
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.sim.Snapshot()
	if err != nil {
		http.Error(w, "no system initialized", http.StatusBadRequest)
		return
	}

	info, err := s.snapshots.Put(r.Context(), snap)
	if err != nil {
		s.logger.Errorf("Failed to archive snapshot: id=%s error=%v", snap.ID, err)
		http.Error(w, "failed to archive snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Debugf("Snapshot archived: id=%s size=%d", info.ID, info.Size)
	writeJSON(w, http.StatusOK, struct {
		Status   string       `json:"status"`
		Snapshot archive.Info `json:"snapshot"`
	}{"ok", info})
}

// GET /snapshots
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	infos, err := s.snapshots.List(r.Context())
	if err != nil {
		http.Error(w, "failed to list snapshots: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]archive.Info{"snapshots": infos})
}

// GET /snapshots/{id} returns the archived snapshot document.
// DELETE /snapshots/{id} removes it.
func (s *Server) handleSnapshotByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/snapshots/")
	if id == "" {
		http.Error(w, "snapshot ID is required in path: /snapshots/{id}", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		snap, err := s.snapshots.Get(r.Context(), id)
		if err != nil {
			http.Error(w, "snapshot not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	case http.MethodDelete:
		existed, err := s.snapshots.Delete(r.Context(), id)
		if err != nil {
			http.Error(w, "failed to delete snapshot: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if !existed {
			http.Error(w, "snapshot not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("snapshot deleted"))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /moves?limit=N
// Returns the most recent recorded moves in chronological order.
func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		val, err := strconv.Atoi(limitStr)
		if err != nil || val < 0 {
			http.Error(w, "invalid limit: must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = val
	}

	records, err := s.moves.Moves(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to read moves: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]runstore.MoveRecord{"moves": records})
}

// GET /moves/summary
func (s *Server) handleMoveSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := s.moves.Summary(r.Context())
	if err != nil {
		http.Error(w, "failed to summarize moves: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleNotifiersRoutes handles notifier management endpoints
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	ids := s.sim.Notifications().ListNotifiers()

	notifierList := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		notifier, exists := s.sim.Notifications().GetNotifier(id)
		if exists {
			notifierList = append(notifierList, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifiers": notifierList})
}

// POST /notifiers
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier remc.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := notifiers.NewWebhookNotifier(req.ID, url)

		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}

		notifier = wh
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.sim.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.sim.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

// GET /ws
// Upgrades to a websocket carrying one JSON move event per step batch.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.wsNotifier.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: error=%v", err)
		return
	}

	s.wsNotifier.RegisterClient(conn)
	s.logger.Debugf("WebSocket client connected: remote=%s", conn.RemoteAddr())

	// Drain the client side; unregister when it goes away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.wsNotifier.UnregisterClient(conn)
				return
			}
		}
	}()
}
