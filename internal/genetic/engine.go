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

	"github.com/cs2trade/tradeupbot/internal/domain"
	"github.com/cs2trade/tradeupbot/internal/tradeup"
)

// Params tune a generational run. The island engine shares them for its
// per-island evolution.
type Params struct {
	PopulationSize    int
	Generations       int
	EliteSize         int
	KeepTopPercentage float64
	// Seed fixes the random stream for reproducible runs; 0 seeds from the
	// clock.
	Seed int64
}

// GenerationStats is one generation's diagnostic line.
type GenerationStats struct {
	Generation int     `json:"generation"`
	BestROI    float64 `json:"best_roi"`
	AvgROI     float64 `json:"avg_roi"`
	BestEver   float64 `json:"best_ever"`
	Diversity  float64 `json:"diversity"`
}

// Result is the outcome of one engine run.
type Result struct {
	RunID       string                   `json:"run_id"`
	Engine      string                   `json:"engine"`
	Rarity      domain.Rarity            `json:"rarity"`
	StatTrak    bool                     `json:"stattrak"`
	Best        domain.Contract          `json:"best"`
	BestROI     float64                  `json:"best_roi"`
	Elapsed     time.Duration            `json:"elapsed"`
	Evaluations int64                    `json:"evaluations"`
	Unfit       int64                    `json:"unfit"`
	Generations []GenerationStats        `json:"generations,omitempty"`
	Epochs      []EpochStats             `json:"epochs,omitempty"`
	Top         []tradeup.ContractReport `json:"top"`
}

// Reporter expands a contract into its full outcome breakdown for the final
// top-5 listing. tradeup.Evaluator implements it.
type Reporter interface {
	Report(c domain.Contract) (tradeup.ContractReport, error)
}

// Engine is the single-population generational loop:
// evaluate, select, reproduce, repeat for a fixed generation budget.
// There is no convergence-based early stop; a stalled search still burns
// its whole budget.
type Engine struct {
	pool      []domain.ContractEntry
	evaluator BatchEvaluator
	reporter  Reporter
	params    Params
	logger    *slog.Logger
}

// NewEngine assembles a generational engine over a prebuilt input pool.
func NewEngine(pool []domain.ContractEntry, evaluator BatchEvaluator, reporter Reporter, params Params, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		pool:      pool,
		evaluator: evaluator,
		reporter:  reporter,
		params:    params,
		logger:    logger.With(slog.String("component", "genetic_engine")),
	}
}

// Name identifies the engine in the registry and in results.
func (e *Engine) Name() string { return EngineStandard }

// Run executes the full generational search and reports the best contract
// found across all generations, not just the terminal population.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	k, err := poolContractSize(e.pool)
	if err != nil {
		return nil, err
	}

	seed := e.params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	runID := uuid.NewString()
	logger := e.logger.With(slog.String("run_id", runID))
	logger.Info("starting generational run",
		slog.Int("population_size", e.params.PopulationSize),
		slog.Int("generations", e.params.Generations),
		slog.Int("elite_size", e.params.EliteSize),
		slog.Int("pool_size", len(e.pool)),
		slog.Int64("seed", seed),
	)

	start := time.Now()
	population := InitPopulation(rng, e.pool, e.params.PopulationSize, k)

	var best domain.Contract
	bestROI := math.Inf(-1)
	var prevElite []domain.Contract
	genStats := make([]GenerationStats, 0, e.params.Generations)

	for gen := 0; gen < e.params.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores, err := e.evaluator.EvaluateBatch(ctx, population)
		if err != nil {
			return nil, fmt.Errorf("genetic: generation %d: %w", gen, err)
		}

		elite := selectTop(population, scores, e.params.EliteSize)
		genBest := lo.Max(scores)
		if genBest > bestROI {
			bestROI = genBest
			best = elite[0]
		}

		diversity := 0.0
		if prevElite != nil {
			diversity = Diversity(elite, prevElite)
		}
		prevElite = elite

		gs := GenerationStats{
			Generation: gen,
			BestROI:    genBest,
			AvgROI:     lo.Sum(scores) / float64(len(scores)),
			BestEver:   bestROI,
			Diversity:  diversity,
		}
		genStats = append(genStats, gs)
		logger.Debug("generation complete",
			slog.Int("generation", gen),
			slog.Float64("best_roi", gs.BestROI),
			slog.Float64("avg_roi", gs.AvgROI),
			slog.Float64("best_ever", gs.BestEver),
			slog.Float64("diversity", gs.Diversity),
		)

		if gen < e.params.Generations-1 {
			population = nextGeneration(rng, e.pool, elite, e.params.PopulationSize, k, e.params.KeepTopPercentage)
		}
	}

	// Rank the terminal population for the top-5 listing. The loop's last
	// scores cover the same population, but re-scoring keeps this step
	// correct if the budget is ever restructured.
	finalScores, err := e.evaluator.EvaluateBatch(ctx, population)
	if err != nil {
		return nil, fmt.Errorf("genetic: final ranking: %w", err)
	}
	top := topReports(e.reporter, rankScored(population, finalScores), 5, logger)

	elapsed := time.Since(start)
	st := e.evaluator.Stats()
	logger.Info("generational run complete",
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
		Generations: genStats,
		Top:         top,
	}, nil
}

// poolContractSize derives K from the pool's tier and checks the pool can
// fill a contract at all.
func poolContractSize(pool []domain.ContractEntry) (int, error) {
	if len(pool) == 0 {
		return 0, fmt.Errorf("genetic: empty input pool: %w", domain.ErrNoEligibleItems)
	}
	k := pool[0].Item.Rarity.ContractSize()
	if len(pool) < k {
		return 0, fmt.Errorf("genetic: pool holds %d entries, a contract needs %d: %w",
			len(pool), k, domain.ErrNoEligibleItems)
	}
	return k, nil
}

type scored struct {
	contract domain.Contract
	roi      float64
}

// rankScored pairs contracts with their scores and sorts best-first. The
// sort is stable so equal scores keep population order.
func rankScored(population []domain.Contract, scores []float64) []scored {
	ranked := make([]scored, len(population))
	for i := range population {
		ranked[i] = scored{contract: population[i], roi: scores[i]}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].roi > ranked[b].roi })
	return ranked
}

// selectTop returns the n best contracts by score.
func selectTop(population []domain.Contract, scores []float64, n int) []domain.Contract {
	ranked := rankScored(population, scores)
	if n > len(ranked) {
		n = len(ranked)
	}
	return lo.Map(ranked[:n], func(s scored, _ int) domain.Contract { return s.contract })
}

// nextGeneration applies the reproduce step: the single best contract
// survives unconditionally, a sampled share of the remaining elite rides
// along, and every other slot is filled independently by a fresh sample
// (40%), a crossover of two elites (30%), or a mutated elite (30%).
// Duplicates are then filtered and the shortfall topped up with fresh,
// possibly-duplicate samples.
func nextGeneration(rng *rand.Rand, pool []domain.ContractEntry, elite []domain.Contract, size, k int, keepTop float64) []domain.Contract {
	next := make([]domain.Contract, 0, size)
	next = append(next, elite[0])

	keep := int(float64(len(elite)-1) * keepTop)
	if keep > 0 {
		for _, i := range sampleIndices(rng, len(elite)-1, keep) {
			next = append(next, elite[1+i])
		}
	}

	for len(next) < size {
		switch r := rng.Float64(); {
		case r < 0.4:
			next = append(next, SampleContract(rng, pool, k))
		case r < 0.7:
			a := elite[rng.Intn(len(elite))]
			b := elite[rng.Intn(len(elite))]
			next = append(next, Crossover(rng, a, b))
		default:
			next = append(next, Mutate(rng, elite[rng.Intn(len(elite))], pool))
		}
	}

	next = Dedupe(next)
	for len(next) < size {
		next = append(next, SampleContract(rng, pool, k))
	}
	return next[:size]
}

// topReports expands the n best ranked contracts into full outcome reports.
// A contract that cannot be reported (an unfit leftover that survived to
// the end) is skipped, not fatal.
func topReports(reporter Reporter, ranked []scored, n int, logger *slog.Logger) []tradeup.ContractReport {
	out := make([]tradeup.ContractReport, 0, n)
	for _, s := range ranked {
		if len(out) == n {
			break
		}
		rep, err := reporter.Report(s.contract)
		if err != nil {
			logger.Warn("skipping unreportable contract",
				slog.Float64("roi", s.roi),
				slog.String("error", err.Error()),
			)
			continue
		}
		out = append(out, rep)
	}
	return out
}
