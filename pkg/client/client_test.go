package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/daniacca/remcsim/internal/remc"
)

func TestSystemBuilder(t *testing.T) {
	system := NewSystem("test-system").
		Volume(100).
		Temperature(1.5).
		Seed(42).
		Species("A", 1).
		ChargedSpecies("B", 2, -1).
		Particles("A", 50)

	cfg := system.Build()

	if cfg.Name != "test-system" {
		t.Errorf("Expected name 'test-system', got '%s'", cfg.Name)
	}

	if cfg.Volume != 100 {
		t.Errorf("Expected volume 100, got %f", cfg.Volume)
	}

	if cfg.Temperature != 1.5 {
		t.Errorf("Expected temperature 1.5, got %f", cfg.Temperature)
	}

	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Errorf("Expected seed 42, got %v", cfg.Seed)
	}

	if len(cfg.Species) != 2 {
		t.Fatalf("Expected 2 species, got %d", len(cfg.Species))
	}

	if cfg.Species[0].Name != "A" || cfg.Species[0].Type != 1 {
		t.Errorf("Expected first species A/1, got %s/%d", cfg.Species[0].Name, cfg.Species[0].Type)
	}

	if cfg.Species[1].Charge == nil || *cfg.Species[1].Charge != -1 {
		t.Errorf("Expected species B to carry charge -1, got %v", cfg.Species[1].Charge)
	}

	if len(cfg.Particles) != 1 || cfg.Particles[0].Count != 50 {
		t.Errorf("Expected 50 seeded A particles, got %+v", cfg.Particles)
	}
}

func TestReactionBuilder(t *testing.T) {
	reaction := NewReaction("dissociation").
		Educt("HA", 1).
		Product("A-", 1).
		Product("H+", 1).
		Equilibrium(1.8e-5)

	cfg := reaction.Build()

	if cfg.Name != "dissociation" {
		t.Errorf("Expected name 'dissociation', got '%s'", cfg.Name)
	}

	if len(cfg.Educts) != 1 || cfg.Educts[0] != "HA" {
		t.Errorf("Expected educts [HA], got %v", cfg.Educts)
	}

	if len(cfg.EductCoefficients) != 1 || cfg.EductCoefficients[0] != 1 {
		t.Errorf("Expected educt coefficients [1], got %v", cfg.EductCoefficients)
	}

	if len(cfg.Products) != 2 || cfg.Products[1] != "H+" {
		t.Errorf("Expected products [A- H+], got %v", cfg.Products)
	}

	if len(cfg.ProductCoefficients) != 2 {
		t.Errorf("Expected 2 product coefficients, got %v", cfg.ProductCoefficients)
	}

	if cfg.EquilibriumConstant != 1.8e-5 {
		t.Errorf("Expected equilibrium constant 1.8e-5, got %g", cfg.EquilibriumConstant)
	}
}

func TestBoxOverride(t *testing.T) {
	cfg := NewSystem("boxed").Volume(1000).Box(20, 10, 5).Build()

	if len(cfg.Box) != 3 || cfg.Box[0] != 20 || cfg.Box[2] != 5 {
		t.Errorf("Expected box [20 10 5], got %v", cfg.Box)
	}
}

func TestComplexSystem(t *testing.T) {
	system := NewSystem("acid-base").
		Volume(500).
		Species("HA", 1).
		ChargedSpecies("A-", 2, -1).
		ChargedSpecies("H+", 3, 1).
		ChargedSpecies("OH-", 4, -1).
		Species("H2O", 5).
		Reaction(NewReaction("dissociation").
			Educt("HA", 1).
			Product("A-", 1).
			Product("H+", 1).
			Equilibrium(1.8e-5),
		).
		Water("H2O", "H+", "OH-", 1e-14).
		Particles("HA", 200).
		Particles("H2O", 1000)

	cfg := system.Build()

	if cfg.Name != "acid-base" {
		t.Errorf("Expected name 'acid-base', got '%s'", cfg.Name)
	}

	if len(cfg.Species) != 5 {
		t.Errorf("Expected 5 species, got %d", len(cfg.Species))
	}

	if len(cfg.Reactions) != 1 {
		t.Fatalf("Expected 1 reaction, got %d", len(cfg.Reactions))
	}

	if cfg.Water == nil {
		t.Fatal("Expected water config to be set")
	}

	if cfg.Water.Acid != "H+" || cfg.Water.Base != "OH-" {
		t.Errorf("Expected water ions H+/OH-, got %s/%s", cfg.Water.Acid, cfg.Water.Base)
	}

	if len(cfg.Particles) != 2 {
		t.Errorf("Expected 2 particle seeds, got %d", len(cfg.Particles))
	}
}

func TestBuildSystemFromClientConfig(t *testing.T) {
	system := NewSystem("test").
		Volume(10).
		Seed(7).
		Species("A", 1).
		Species("B", 2).
		Reaction(NewReaction("").
			Educt("A", 1).
			Product("B", 1).
			Equilibrium(2)).
		Particles("A", 10)

	cfg := system.Build()

	if err := remc.ValidateSystemConfig(cfg); err != nil {
		t.Fatalf("Expected built config to validate, got: %v", err)
	}

	// Verify the engine accepts the built config end to end.
	eng, err := remc.BuildSystemFromConfig(cfg, nil, nil)
	if err != nil {
		t.Fatalf("Failed to build system from config: %v", err)
	}
	if got := eng.Store().Len(); got != 10 {
		t.Errorf("Expected 10 seeded particles, got %d", got)
	}
}

func TestClientRequests(t *testing.T) {
	var gotMethod, gotURL string
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotURL = r.URL.String()
		gotBody, _ = io.ReadAll(r.Body)
		switch {
		case r.URL.Path == "/system" && r.Method == http.MethodPost:
			fmt.Fprint(w, `{"status":"ok","run_id":"run-1"}`)
		case r.URL.Path == "/step":
			fmt.Fprint(w, `{"run_id":"run-1","steps":3,"results":[]}`)
		case r.URL.Path == "/moves":
			fmt.Fprint(w, `{"moves":[]}`)
		default:
			fmt.Fprint(w, `{}`)
		}
	}))
	defer ts.Close()

	c := New(ts.URL)
	ctx := context.Background()

	runID, err := c.ApplySystem(ctx, NewSystem("t").Volume(1).Species("A", 1))
	if err != nil {
		t.Fatalf("ApplySystem failed: %v", err)
	}
	if runID != "run-1" {
		t.Errorf("Expected run ID 'run-1', got '%s'", runID)
	}
	if gotMethod != http.MethodPost || gotURL != "/system" {
		t.Errorf("Expected POST /system, got %s %s", gotMethod, gotURL)
	}
	var sent remc.SystemConfig
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("Failed to parse sent config: %v", err)
	}
	if sent.Name != "t" || sent.Volume != 1 {
		t.Errorf("Expected the built config on the wire, got %+v", sent)
	}

	result, err := c.Step(ctx, 3)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if result.Steps != 3 {
		t.Errorf("Expected 3 steps, got %d", result.Steps)
	}
	if !strings.Contains(string(gotBody), `"steps":3`) {
		t.Errorf("Expected step count in request body, got %s", gotBody)
	}

	if _, err := c.Moves(ctx, 7); err != nil {
		t.Fatalf("Moves failed: %v", err)
	}
	if gotURL != "/moves?limit=7" {
		t.Errorf("Expected /moves?limit=7, got %s", gotURL)
	}

	if err := c.Teardown(ctx); err != nil {
		t.Fatalf("Teardown failed: %v", err)
	}
	if gotMethod != http.MethodDelete || gotURL != "/system" {
		t.Errorf("Expected DELETE /system, got %s %s", gotMethod, gotURL)
	}
}

func TestClientErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no system initialized", http.StatusBadRequest)
	}))
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.Step(context.Background(), 1)
	if err == nil {
		t.Fatal("Expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Errorf("Expected status in error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "no system initialized") {
		t.Errorf("Expected server message in error, got: %v", err)
	}
}

func TestWithHTTPClient(t *testing.T) {
	custom := &http.Client{}
	c := New("http://localhost:8080", WithHTTPClient(custom))
	if c.http != custom {
		t.Error("Expected the custom HTTP client to be used")
	}
}
