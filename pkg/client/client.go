package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/daniacca/remcsim/internal/archive"
	"github.com/daniacca/remcsim/internal/remc"
	"github.com/daniacca/remcsim/internal/runstore"
)

// SystemBuilder provides a fluent API for building system configurations.
// Use it to declare the species, reactions and starting population of a
// reaction ensemble system.
type SystemBuilder struct {
	cfg       remc.SystemConfig
	reactions []*ReactionBuilder
}

// NewSystem creates a new system builder with the given name.
// The name identifies the system in status reports and snapshots.
func NewSystem(name string) *SystemBuilder {
	return &SystemBuilder{
		cfg: remc.SystemConfig{Name: name},
	}
}

// Volume sets the system volume that enters the acceptance probability.
func (sb *SystemBuilder) Volume(v float64) *SystemBuilder {
	sb.cfg.Volume = v
	return sb
}

// Temperature sets the sampling temperature in reduced units.
// If not set, the server defaults it to 1.0.
func (sb *SystemBuilder) Temperature(t float64) *SystemBuilder {
	sb.cfg.Temperature = t
	return sb
}

// Box sets the edge lengths of the box where created particles are placed.
// If not set, the box defaults to a cube whose volume matches Volume.
func (sb *SystemBuilder) Box(lx, ly, lz float64) *SystemBuilder {
	sb.cfg.Box = []float64{lx, ly, lz}
	return sb
}

// Seed fixes the RNG seed so a run can be reproduced exactly.
// If not set, the server seeds from the wall clock.
func (sb *SystemBuilder) Seed(seed int64) *SystemBuilder {
	sb.cfg.Seed = &seed
	return sb
}

// Species adds a species definition with the given name and type identifier.
// The type identifier must be unique within the system.
func (sb *SystemBuilder) Species(name string, typeID int) *SystemBuilder {
	sb.cfg.Species = append(sb.cfg.Species, remc.SpeciesConfig{Name: name, Type: typeID})
	return sb
}

// ChargedSpecies adds a species whose created particles carry the given
// default charge.
func (sb *SystemBuilder) ChargedSpecies(name string, typeID int, charge float64) *SystemBuilder {
	sb.cfg.Species = append(sb.cfg.Species, remc.SpeciesConfig{Name: name, Type: typeID, Charge: &charge})
	return sb
}

// Reaction adds a reaction definition to the system.
// Reactions reference species by the names declared with Species.
func (sb *SystemBuilder) Reaction(rb *ReactionBuilder) *SystemBuilder {
	sb.reactions = append(sb.reactions, rb)
	return sb
}

// Water activates the autodissociation variant: one particle of the given
// species splits into one acid and one base ion.
func (sb *SystemBuilder) Water(species, acid, base string, equilibriumConstant float64) *SystemBuilder {
	sb.cfg.Water = &remc.WaterConfig{
		Species:             species,
		Acid:                acid,
		Base:                base,
		EquilibriumConstant: equilibriumConstant,
	}
	return sb
}

// Particles seeds the starting population with count particles of the named
// species, placed at uniform random positions.
func (sb *SystemBuilder) Particles(species string, count int) *SystemBuilder {
	sb.cfg.Particles = append(sb.cfg.Particles, remc.ParticlesConfig{Species: species, Count: count})
	return sb
}

// Build converts the builder to a SystemConfig that can be used with
// ApplySystem or handed to the library API directly.
func (sb *SystemBuilder) Build() remc.SystemConfig {
	cfg := sb.cfg
	cfg.Reactions = make([]remc.ReactionConfig, 0, len(sb.reactions))
	for _, rb := range sb.reactions {
		cfg.Reactions = append(cfg.Reactions, rb.Build())
	}
	return cfg
}

// ReactionBuilder provides a fluent API for building reaction declarations.
// Educts and products are referenced by species name; coefficients pair
// positionally with the species they were added with.
type ReactionBuilder struct {
	cfg remc.ReactionConfig
}

// NewReaction creates a new reaction builder with the given name.
// The name is optional and only appears in logs and status output.
func NewReaction(name string) *ReactionBuilder {
	return &ReactionBuilder{
		cfg: remc.ReactionConfig{Name: name},
	}
}

// Educt adds one educt species with its stoichiometric coefficient.
func (rb *ReactionBuilder) Educt(species string, coefficient int) *ReactionBuilder {
	rb.cfg.Educts = append(rb.cfg.Educts, species)
	rb.cfg.EductCoefficients = append(rb.cfg.EductCoefficients, coefficient)
	return rb
}

// Product adds one product species with its stoichiometric coefficient.
func (rb *ReactionBuilder) Product(species string, coefficient int) *ReactionBuilder {
	rb.cfg.Products = append(rb.cfg.Products, species)
	rb.cfg.ProductCoefficients = append(rb.cfg.ProductCoefficients, coefficient)
	return rb
}

// Equilibrium sets the reaction's equilibrium constant.
func (rb *ReactionBuilder) Equilibrium(k float64) *ReactionBuilder {
	rb.cfg.EquilibriumConstant = k
	return rb
}

// Build converts the builder to a ReactionConfig.
func (rb *ReactionBuilder) Build() remc.ReactionConfig {
	return rb.cfg
}

// Client is an HTTP client for a running remcsim server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client, for callers that need
// custom timeouts or transports.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the server at baseURL
// (e.g., "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ApplySystem builds the configuration and installs it on the server.
// It returns the run ID of the fresh run. Installing over a live system
// tears the old one down first.
func (c *Client) ApplySystem(ctx context.Context, system *SystemBuilder) (string, error) {
	return c.ApplySystemConfig(ctx, system.Build())
}

// ApplySystemConfig installs an already built configuration on the server.
func (c *Client) ApplySystemConfig(ctx context.Context, cfg remc.SystemConfig) (string, error) {
	var resp struct {
		RunID string `json:"run_id"`
	}
	if err := c.do(ctx, http.MethodPost, []string{"system"}, nil, cfg, &resp); err != nil {
		return "", err
	}
	return resp.RunID, nil
}

// Status returns the server's structured status report. It works whether or
// not a system is installed; check the Initialized field.
func (c *Client) Status(ctx context.Context) (remc.StatusReport, error) {
	var report remc.StatusReport
	err := c.do(ctx, http.MethodGet, []string{"system"}, nil, nil, &report)
	return report, err
}

// Teardown discards the live system. Recorded moves and archived snapshots
// survive the teardown.
func (c *Client) Teardown(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, []string{"system"}, nil, nil, nil)
}

// SeedParticles inserts count particles of the given type at uniform random
// positions in the box.
func (c *Client) SeedParticles(ctx context.Context, typeID, count int) error {
	body := map[string]int{"type": typeID, "count": count}
	return c.do(ctx, http.MethodPost, []string{"particles"}, nil, body, nil)
}

// ParticleCounts is the per-type population breakdown of the live system.
type ParticleCounts struct {
	TypeCounts    map[int]int `json:"type_counts"`
	ParticleCount int         `json:"particle_count"`
	TotalCharge   float64     `json:"total_charge"`
}

// Counts returns the per-type population of the live system.
func (c *Client) Counts(ctx context.Context) (ParticleCounts, error) {
	var counts ParticleCounts
	err := c.do(ctx, http.MethodGet, []string{"particles", "counts"}, nil, nil, &counts)
	return counts, err
}

// StepResult is the server's reply to a step request: the move event fanned
// out to notifiers plus the per-move results of the batch.
type StepResult struct {
	remc.MoveEvent
	Results []remc.MoveResult `json:"results"`
}

// Step attempts the given number of reaction moves and returns the batch
// outcome.
func (c *Client) Step(ctx context.Context, steps int) (StepResult, error) {
	var result StepResult
	err := c.do(ctx, http.MethodPost, []string{"step"}, nil, map[string]int{"steps": steps}, &result)
	return result, err
}

// SaveSnapshot archives the live population and returns the archive entry.
func (c *Client) SaveSnapshot(ctx context.Context) (archive.Info, error) {
	var resp struct {
		Snapshot archive.Info `json:"snapshot"`
	}
	err := c.do(ctx, http.MethodPost, []string{"snapshot"}, nil, nil, &resp)
	return resp.Snapshot, err
}

// Snapshots lists the archived snapshots, sorted by ID.
func (c *Client) Snapshots(ctx context.Context) ([]archive.Info, error) {
	var resp struct {
		Snapshots []archive.Info `json:"snapshots"`
	}
	err := c.do(ctx, http.MethodGet, []string{"snapshots"}, nil, nil, &resp)
	return resp.Snapshots, err
}

// GetSnapshot fetches one archived snapshot by ID.
func (c *Client) GetSnapshot(ctx context.Context, id string) (remc.Snapshot, error) {
	var snap remc.Snapshot
	err := c.do(ctx, http.MethodGet, []string{"snapshots", id}, nil, nil, &snap)
	return snap, err
}

// DeleteSnapshot removes one archived snapshot by ID.
func (c *Client) DeleteSnapshot(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, []string{"snapshots", id}, nil, nil, nil)
}

// Moves returns the most recent limit move records, oldest first.
// A limit of 0 returns the full recorded history.
func (c *Client) Moves(ctx context.Context, limit int) ([]runstore.MoveRecord, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}
	var resp struct {
		Moves []runstore.MoveRecord `json:"moves"`
	}
	err := c.do(ctx, http.MethodGet, []string{"moves"}, query, nil, &resp)
	return resp.Moves, err
}

// MoveSummary returns outcome totals over the whole recorded history.
func (c *Client) MoveSummary(ctx context.Context) (runstore.Summary, error) {
	var summary runstore.Summary
	err := c.do(ctx, http.MethodGet, []string{"moves", "summary"}, nil, nil, &summary)
	return summary, err
}

// RegisterWebhook registers a webhook notifier that receives every move
// event as JSON. Headers, when given, are added to each delivery.
func (c *Client) RegisterWebhook(ctx context.Context, id, webhookURL string, headers map[string]string) error {
	cfg := map[string]any{"url": webhookURL}
	if len(headers) > 0 {
		cfg["headers"] = headers
	}
	body := map[string]any{"type": "webhook", "id": id, "config": cfg}
	return c.do(ctx, http.MethodPost, []string{"notifiers"}, nil, body, nil)
}

// UnregisterNotifier removes a registered notifier by ID.
func (c *Client) UnregisterNotifier(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, []string{"notifiers", id}, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method string, pathElems []string, query url.Values, body, out any) error {
	u, err := url.JoinPath(c.baseURL, pathElems...)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
