package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/daniacca/remcsim/internal/archive"
	"github.com/daniacca/remcsim/internal/remc"
	"github.com/daniacca/remcsim/internal/runstore"
)

func main() {
	var (
		configFile    = flag.String("config", "", "path to system config file, JSON or YAML (required)")
		steps         = flag.Int("steps", 1000, "number of reaction moves to attempt")
		seed          = flag.Int64("seed", 0, "RNG seed override (0 keeps the config's seed)")
		reportEvery   = flag.Int("report-every", 0, "print a progress line every N moves (0 disables)")
		snapshotEvery = flag.Int("snapshot-every", 0, "archive a snapshot every N moves (0 disables)")
		snapshotDir   = flag.String("snapshot-dir", "", "directory to archive snapshots into (optional)")
		moveStore     = flag.String("runstore", "", "record moves to this backend: memory, sqlite or postgres (empty disables)")
		movePath      = flag.String("runstore-path", "", "database path when -runstore=sqlite")
		moveDSN       = flag.String("runstore-dsn", "", "connection string when -runstore=postgres")
	)
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintf(os.Stderr, "error: --config is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, eng, err := loadSystemFromFile(*configFile, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading system: %v\n", err)
		os.Exit(1)
	}

	var snapshots archive.Store
	if *snapshotDir != "" {
		snapshots, err = archive.NewFilesystem(*snapshotDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening snapshot dir: %v\n", err)
			os.Exit(1)
		}
	}

	var moves runstore.Store
	runID := remc.NewRandomID()
	if *moveStore != "" {
		moves, err = runstore.OpenDriver(runstore.Driver(*moveStore), *movePath, *moveDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening runstore: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = moves.Close() }()
		fmt.Printf("recording moves: run=%s driver=%s\n", runID, moves.Driver())
	}

	ctx := context.Background()
	done := 0
	sinceSnapshot := 0
	for done < *steps {
		batch := *steps - done
		if *reportEvery > 0 && batch > *reportEvery {
			batch = *reportEvery
		}
		results, err := eng.DoReaction(batch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error running moves: %v\n", err)
			os.Exit(1)
		}

		if moves != nil {
			records := runstore.RecordsFromResults(runID, int64(done)+1, results)
			if err := moves.AppendMoves(ctx, records...); err != nil {
				fmt.Fprintf(os.Stderr, "error recording moves: %v\n", err)
				os.Exit(1)
			}
		}
		done += len(results)

		if *reportEvery > 0 {
			stats := eng.Stats()
			fmt.Printf("step %d/%d: accepted=%d acceptance=%.3f\n", done, *steps, stats.Accepted, stats.AcceptanceRate)
		}

		if snapshots != nil && *snapshotEvery > 0 {
			sinceSnapshot += len(results)
			if sinceSnapshot >= *snapshotEvery {
				sinceSnapshot = 0
				if err := archiveSnapshot(ctx, snapshots, eng); err != nil {
					fmt.Fprintf(os.Stderr, "error archiving snapshot: %v\n", err)
					os.Exit(1)
				}
			}
		}
	}

	if snapshots != nil {
		if err := archiveSnapshot(ctx, snapshots, eng); err != nil {
			fmt.Fprintf(os.Stderr, "error archiving final snapshot: %v\n", err)
			os.Exit(1)
		}
	}

	printSummary(cfg, *steps, eng)

	if moves != nil {
		summary, err := moves.Summary(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading move history: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Move history: %d moves, mean acceptance %.3f (driver=%s)\n",
			summary.Moves, summary.MeanAcceptance, moves.Driver())
	}
}

func loadSystemFromFile(path string, seed int64) (remc.SystemConfig, *remc.Engine, error) {
	cfg, err := remc.ReadSystemConfig(path)
	if err != nil {
		return remc.SystemConfig{}, nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := remc.ValidateSystemConfig(cfg); err != nil {
		return remc.SystemConfig{}, nil, fmt.Errorf("validating config: %w", err)
	}

	if seed != 0 {
		cfg.Seed = &seed
	}

	eng, err := remc.BuildSystemFromConfig(cfg, nil, remc.NewNoOpLogger())
	if err != nil {
		return remc.SystemConfig{}, nil, fmt.Errorf("building system: %w", err)
	}

	return cfg, eng, nil
}

func archiveSnapshot(ctx context.Context, snapshots archive.Store, eng *remc.Engine) error {
	snap := remc.TakeSnapshot(eng)
	info, err := snapshots.Put(ctx, snap)
	if err != nil {
		return err
	}
	fmt.Printf("snapshot archived: id=%s size=%d\n", info.ID, info.Size)
	return nil
}

func printSummary(cfg remc.SystemConfig, steps int, eng *remc.Engine) {
	report := eng.StatusReport()
	stats := eng.Stats()

	name := cfg.Name
	if name == "" {
		name = "unnamed"
	}
	fmt.Printf("Simulation finished (system=%s, steps=%d)\n", name, steps)
	fmt.Printf("Moves: accepted=%d rejected=%d insufficient=%d no_reactions=%d energy_failures=%d\n",
		stats.Accepted, stats.Rejected, stats.Insufficient, stats.NoReactions, stats.EnergyFailures)
	fmt.Printf("Acceptance rate: %.3f\n", stats.AcceptanceRate)
	fmt.Println("Species counts:")

	typeNames := make(map[int]string)
	for _, sp := range cfg.Species {
		typeNames[sp.Type] = sp.Name
	}

	names := make([]string, 0, len(report.TypeCounts))
	countsByName := make(map[string]int)
	for typeID, count := range report.TypeCounts {
		label, ok := typeNames[typeID]
		if !ok {
			label = fmt.Sprintf("type-%d", typeID)
		}
		names = append(names, label)
		countsByName[label] = count
	}
	sort.Strings(names)

	for _, label := range names {
		fmt.Printf("  %s: %d\n", label, countsByName[label])
	}
	fmt.Printf("Total charge: %.3f\n", report.TotalCharge)
}
