package genetic

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// IslandParams tune the island topology. Per-island evolution reuses Params
// (elite size, keep-top share, seed); the generation budget is spent in
// epochs of MigrationInterval generations.
type IslandParams struct {
	NumIslands          int
	PopulationPerIsland int
	MigrationInterval   int
	MigrationSize       int
}

// EpochStats is one migration epoch's diagnostic line.
type EpochStats struct {
	Epoch       int       `json:"epoch"`
	IslandBests []float64 `json:"island_bests"`
	BestEver    float64   `json:"best_ever"`
}

// IslandEngine evolves isolated sub-populations in parallel and trades a
// few top contracts between neighbours each epoch. Islands are the parallel
// unit: one goroutine per island per epoch, serial evaluation inside, so
// wire it with a SerialEvaluator.
type IslandEngine struct {
	pool      []domain.ContractEntry
	evaluator BatchEvaluator
	reporter  Reporter
	params    Params
	island    IslandParams
	logger    *slog.Logger
}

// NewIslandEngine assembles an island-model engine over a prebuilt pool.
func NewIslandEngine(pool []domain.ContractEntry, evaluator BatchEvaluator, reporter Reporter, params Params, island IslandParams, logger *slog.Logger) *IslandEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &IslandEngine{
		pool:      pool,
		evaluator: evaluator,
		reporter:  reporter,
		params:    params,
		island:    island,
		logger:    logger.With(slog.String("component", "island_engine")),
	}
}

// Name identifies the engine in the registry and in results.
func (e *IslandEngine) Name() string { return EngineIsland }

// islandRun is what one island hands back after an epoch.
type islandRun struct {
	population []domain.Contract
	best       domain.Contract
	bestROI    float64
	migrants   []domain.Contract
}

// Run executes the island search: epochs of isolated evolution joined by a
// ring migration, a running global best over the islands' epoch bests, and
// a final re-ranking across every island's terminal population.
func (e *IslandEngine) Run(ctx context.Context) (*Result, error) {
	k, err := poolContractSize(e.pool)
	if err != nil {
		return nil, err
	}

	n := e.island.NumIslands
	epochs := e.params.Generations / e.island.MigrationInterval

	seed := e.params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// One stream per island keeps islands deterministic under a fixed seed
	// even though they run concurrently.
	rngs := make([]*rand.Rand, n)
	for i := range rngs {
		rngs[i] = rand.New(rand.NewSource(seed + int64(i)))
	}

	runID := uuid.NewString()
	logger := e.logger.With(slog.String("run_id", runID))
	logger.Info("starting island run",
		slog.Int("islands", n),
		slog.Int("population_per_island", e.island.PopulationPerIsland),
		slog.Int("epochs", epochs),
		slog.Int("migration_interval", e.island.MigrationInterval),
		slog.Int("migration_size", e.island.MigrationSize),
		slog.Int("pool_size", len(e.pool)),
		slog.Int64("seed", seed),
	)

	start := time.Now()
	populations := make([][]domain.Contract, n)
	for i := range populations {
		populations[i] = InitPopulation(rngs[i], e.pool, e.island.PopulationPerIsland, k)
	}

	var best domain.Contract
	bestROI := math.Inf(-1)
	epochStats := make([]EpochStats, 0, epochs)

	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results := make([]islandRun, n)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				res, err := e.runEpoch(gctx, rngs[i], populations[i], k)
				if err != nil {
					return fmt.Errorf("island %d: %w", i, err)
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("genetic: epoch %d: %w", epoch, err)
		}

		bests := make([]float64, n)
		for i, res := range results {
			populations[i] = res.population
			bests[i] = res.bestROI
			if res.bestROI > bestROI {
				bestROI = res.bestROI
				best = res.best
			}
		}
		epochStats = append(epochStats, EpochStats{Epoch: epoch, IslandBests: bests, BestEver: bestROI})
		logger.Info("epoch complete",
			slog.Int("epoch", epoch),
			slog.Float64("best_ever", bestROI),
			slog.Any("island_bests", bests),
		)

		// Ring migration: island i inherits the migrants of island i-1 and
		// rebuilds the rest of its population fresh. Skipped after the last
		// epoch; the terminal populations go to the final ranking as-is.
		if epoch < epochs-1 {
			for i := 0; i < n; i++ {
				migrants := results[(i-1+n)%n].migrants
				fresh := InitPopulation(rngs[i], e.pool, e.island.PopulationPerIsland-len(migrants), k)
				populations[i] = append(fresh, migrants...)
			}
		}
	}

	// Final aggregation: re-score every island's terminal population, keep
	// each island's top 5, and re-rank the merged set globally.
	var merged []scored
	for i := range populations {
		scores, err := e.evaluator.EvaluateBatch(ctx, populations[i])
		if err != nil {
			return nil, fmt.Errorf("genetic: final ranking island %d: %w", i, err)
		}
		ranked := rankScored(populations[i], scores)
		if len(ranked) > 5 {
			ranked = ranked[:5]
		}
		merged = append(merged, ranked...)
	}
	sort.SliceStable(merged, func(a, b int) bool { return merged[a].roi > merged[b].roi })
	top := topReports(e.reporter, merged, 5, logger)

	elapsed := time.Since(start)
	st := e.evaluator.Stats()
	logger.Info("island run complete",
		slog.Float64("best_roi", bestROI),
		slog.Duration("elapsed", elapsed),
		slog.Int64("evaluations", st.Evaluations),
		slog.Int64("unfit", st.Unfit),
	)

	return &Result{
		RunID:       runID,
		Engine:      e.Name(),
		Rarity:      e.pool[0].Item.Rarity,
		StatTrak:    e.pool[0].Item.StatTrak,
		Best:        best,
		BestROI:     bestROI,
		Elapsed:     elapsed,
		Evaluations: st.Evaluations,
		Unfit:       st.Unfit,
		Epochs:      epochStats,
		Top:         top,
	}, nil
}

// runEpoch evolves one island for a full migration interval. Unlike the
// generational engine it reproduces after every generation, including the
// last; a terminal re-evaluation then decides who migrates.
func (e *IslandEngine) runEpoch(ctx context.Context, rng *rand.Rand, population []domain.Contract, k int) (islandRun, error) {
	out := islandRun{bestROI: math.Inf(-1)}

	for gen := 0; gen < e.island.MigrationInterval; gen++ {
		if err := ctx.Err(); err != nil {
			return islandRun{}, err
		}
		scores, err := e.evaluator.EvaluateBatch(ctx, population)
		if err != nil {
			return islandRun{}, fmt.Errorf("generation %d: %w", gen, err)
		}

		elite := selectTop(population, scores, e.params.EliteSize)
		if genBest := lo.Max(scores); genBest > out.bestROI {
			out.bestROI = genBest
			out.best = elite[0]
		}

		population = nextGeneration(rng, e.pool, elite, e.island.PopulationPerIsland, k, e.params.KeepTopPercentage)
	}

	scores, err := e.evaluator.EvaluateBatch(ctx, population)
	if err != nil {
		return islandRun{}, fmt.Errorf("migrant selection: %w", err)
	}
	migrants := selectTop(population, scores, min(5, e.params.EliteSize))
	if len(migrants) > e.island.MigrationSize {
		migrants = migrants[:e.island.MigrationSize]
	}

	out.population = population
	out.migrants = migrants
	return out, nil
}
