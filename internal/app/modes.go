package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/cs2trade/tradeupbot/internal/catalog"
	"github.com/cs2trade/tradeupbot/internal/domain"
	"github.com/cs2trade/tradeupbot/internal/genetic"
	"github.com/cs2trade/tradeupbot/internal/notify"
	"github.com/cs2trade/tradeupbot/internal/tradeup"
)

// SingleMode runs one optimization for the configured tier and StatTrak flag
// and reports the outcome.
func (a *App) SingleMode(ctx context.Context, deps *Dependencies) error {
	rarity, err := domain.ParseRarity(a.cfg.Run.Rarity)
	if err != nil {
		return fmt.Errorf("single mode: %w", err)
	}

	a.logger.InfoContext(ctx, "starting single mode",
		slog.String("rarity", rarity.String()),
		slog.Bool("stattrak", a.cfg.Run.StatTrak),
		slog.String("engine", a.cfg.Run.Engine),
	)

	ev, snap, err := a.buildEvaluator(ctx, deps)
	if err != nil {
		return fmt.Errorf("single mode: %w", err)
	}

	res, err := a.runEngine(ctx, snap, ev, rarity, a.cfg.Run.StatTrak)
	if err != nil {
		a.notifyFailure(ctx, deps, rarity, a.cfg.Run.StatTrak, err)
		return fmt.Errorf("single mode: %w", err)
	}

	a.logResult(ctx, res)
	title := fmt.Sprintf("Trade-up run complete: %s", tierLabel(rarity, a.cfg.Run.StatTrak))
	if err := deps.Notifier.Notify(ctx, notify.EventRunCompleted, title, resultMessage(res)); err != nil {
		a.logger.WarnContext(ctx, "result notification failed", slog.String("error", err.Error()))
	}
	return nil
}

// SweepMode runs one optimization per input tier over a single catalog
// snapshot. A tier that fails is reported and skipped; the sweep only fails
// as a whole when every tier does.
func (a *App) SweepMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting sweep mode",
		slog.Bool("stattrak", a.cfg.Run.StatTrak),
		slog.String("engine", a.cfg.Run.Engine),
	)

	ev, snap, err := a.buildEvaluator(ctx, deps)
	if err != nil {
		return fmt.Errorf("sweep mode: %w", err)
	}

	rarities := domain.InputRarities()
	lines := make([]string, 0, len(rarities))
	failures := 0
	for _, rarity := range rarities {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := a.runEngine(ctx, snap, ev, rarity, a.cfg.Run.StatTrak)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			failures++
			a.logger.ErrorContext(ctx, "tier optimization failed",
				slog.String("rarity", rarity.String()),
				slog.String("error", err.Error()),
			)
			lines = append(lines, fmt.Sprintf("%s: failed (%v)", rarity, err))
			continue
		}

		a.logResult(ctx, res)
		lines = append(lines, fmt.Sprintf("%s: best ROI %.2f%%", rarity, res.BestROI))
	}

	title := fmt.Sprintf("Trade-up sweep complete: %d/%d tiers", len(rarities)-failures, len(rarities))
	if err := deps.Notifier.Notify(ctx, notify.EventSweepCompleted, title, strings.Join(lines, "\n")); err != nil {
		a.logger.WarnContext(ctx, "sweep notification failed", slog.String("error", err.Error()))
	}

	if failures == len(rarities) {
		return fmt.Errorf("sweep mode: all %d tiers failed", failures)
	}
	return nil
}

// buildEvaluator loads the catalog through the wired provider and precomputes
// the outcome table the run will score against.
func (a *App) buildEvaluator(ctx context.Context, deps *Dependencies) (*tradeup.Evaluator, *catalog.Snapshot, error) {
	start := time.Now()
	snap, err := catalog.Load(ctx, deps.Provider, catalog.Options{
		MinOffers:    a.cfg.Catalog.MinOffers,
		DedupeByName: a.cfg.Catalog.DedupeByName,
	})
	if err != nil {
		return nil, nil, err
	}
	a.logger.InfoContext(ctx, "catalog loaded",
		slog.Int("items", snap.Len()),
		slog.Int("sources", snap.SourceCount()),
		slog.Duration("elapsed", time.Since(start)),
	)

	table := tradeup.Precompute(snap)
	a.logger.InfoContext(ctx, "outcome table built",
		slog.Int("entries", table.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return tradeup.NewEvaluator(table), snap, nil
}

// runEngine builds the input pool for one tier and runs the configured
// engine over it.
func (a *App) runEngine(ctx context.Context, snap *catalog.Snapshot, ev *tradeup.Evaluator, rarity domain.Rarity, stattrak bool) (*genetic.Result, error) {
	pool, err := snap.InputPool(rarity, stattrak)
	if err != nil {
		return nil, err
	}

	factory, err := genetic.DefaultRegistry().Get(a.cfg.Run.Engine)
	if err != nil {
		return nil, err
	}

	island := genetic.IslandParams{
		NumIslands:          a.cfg.Island.NumIslands,
		PopulationPerIsland: a.cfg.Island.PopulationPerIsland,
		MigrationInterval:   a.cfg.Island.MigrationInterval,
		MigrationSize:       a.cfg.Island.MigrationSize,
	}
	if island.NumIslands <= 0 {
		island.NumIslands = runtime.NumCPU()
	}

	runner, err := factory(genetic.Options{
		Pool:     pool,
		Scorer:   ev,
		Reporter: ev,
		Params: genetic.Params{
			PopulationSize:    a.cfg.GA.PopulationSize,
			Generations:       a.cfg.GA.Generations,
			EliteSize:         a.cfg.GA.EliteSize,
			KeepTopPercentage: a.cfg.GA.KeepTopPercentage,
			Seed:              a.cfg.GA.Seed,
		},
		Island:  island,
		Workers: a.cfg.GA.Workers,
		Logger:  a.logger,
	})
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx)
}

// logResult writes the run summary and its top contracts to the log.
func (a *App) logResult(ctx context.Context, res *genetic.Result) {
	a.logger.InfoContext(ctx, "optimization complete",
		slog.String("run_id", res.RunID),
		slog.String("engine", res.Engine),
		slog.String("rarity", res.Rarity.String()),
		slog.Bool("stattrak", res.StatTrak),
		slog.Float64("best_roi", res.BestROI),
		slog.Int64("evaluations", res.Evaluations),
		slog.Int64("unfit", res.Unfit),
		slog.Duration("elapsed", res.Elapsed),
	)
	for i, rep := range res.Top {
		a.logger.InfoContext(ctx, "top contract",
			slog.Int("rank", i+1),
			slog.Float64("roi", rep.ROI),
			slog.Float64("total_cost", rep.TotalCost),
			slog.Float64("expected_value", rep.ExpectedValue),
			slog.Float64("profit_chance", rep.ProfitChance),
			slog.Int("factor", rep.Factor),
			slog.String("inputs", contractLine(rep.Contract)),
		)
	}
}

// notifyFailure reports a failed run. Cancellation is the operator's own
// doing and is not notified.
func (a *App) notifyFailure(ctx context.Context, deps *Dependencies, rarity domain.Rarity, stattrak bool, runErr error) {
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		return
	}
	title := fmt.Sprintf("Trade-up run failed: %s", tierLabel(rarity, stattrak))
	if err := deps.Notifier.Notify(ctx, notify.EventRunFailed, title, runErr.Error()); err != nil {
		a.logger.WarnContext(ctx, "failure notification failed", slog.String("error", err.Error()))
	}
}

// tierLabel renders a tier for titles, e.g. "StatTrak Classified".
func tierLabel(r domain.Rarity, stattrak bool) string {
	if stattrak {
		return "StatTrak " + r.String()
	}
	return r.String()
}

// contractLine renders a contract's inputs as "3x Name A, 7x Name B".
func contractLine(c domain.Contract) string {
	counts := make(map[string]int)
	var order []string
	for _, e := range c.Entries {
		if _, seen := counts[e.Item.Name]; !seen {
			order = append(order, e.Item.Name)
		}
		counts[e.Item.Name]++
	}
	parts := make([]string, 0, len(order))
	for _, name := range order {
		parts = append(parts, fmt.Sprintf("%dx %s", counts[name], name))
	}
	return strings.Join(parts, ", ")
}

// resultMessage builds the notification body for a completed run.
func resultMessage(res *genetic.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Engine: %s\n", res.Engine)
	fmt.Fprintf(&b, "Best ROI: %.2f%%\n", res.BestROI)
	fmt.Fprintf(&b, "Evaluations: %d (%d unfit)\n", res.Evaluations, res.Unfit)
	fmt.Fprintf(&b, "Elapsed: %s", res.Elapsed.Round(time.Millisecond))
	if len(res.Top) > 0 {
		rep := res.Top[0]
		fmt.Fprintf(&b, "\nCost %.2f, expected value %.2f, profit chance %.1f%%", rep.TotalCost, rep.ExpectedValue, rep.ProfitChance)
		fmt.Fprintf(&b, "\nInputs: %s", contractLine(rep.Contract))
	}
	return b.String()
}
