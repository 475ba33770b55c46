package genetic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cs2trade/tradeupbot/internal/domain"
	"github.com/cs2trade/tradeupbot/internal/genetic"
)

// priceScorer scores a contract by its first entry's price, which the tests
// use as an index marker to verify score/population alignment.
type priceScorer struct {
	fail func(c domain.Contract) error
}

func (s *priceScorer) Score(c domain.Contract) (float64, error) {
	if s.fail != nil {
		if err := s.fail(c); err != nil {
			return 0, err
		}
	}
	return c.Entries[0].Price, nil
}

func indexedPopulation(n int) []domain.Contract {
	it := poolItem("marker", domain.RarityMilSpec, 1)
	population := make([]domain.Contract, n)
	for i := range population {
		population[i] = domain.Contract{Entries: []domain.ContractEntry{
			{Item: it, Float: 0.5, Price: float64(i)},
		}}
	}
	return population
}

func TestParallelMatchesSerial(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	// 101 contracts across 4 workers leaves a remainder batch.
	population := indexedPopulation(101)

	serial := genetic.NewSerialEvaluator(&priceScorer{})
	parallel := genetic.NewParallelEvaluator(&priceScorer{}, 4)

	want, err := serial.EvaluateBatch(ctx, population)
	rq.NoError(err)
	got, err := parallel.EvaluateBatch(ctx, population)
	rq.NoError(err)

	rq.Equal(want, got)
	for i, roi := range got {
		rq.Equal(float64(i), roi)
	}

	rq.Equal(int64(101), serial.Stats().Evaluations)
	rq.Equal(int64(101), parallel.Stats().Evaluations)
}

func TestParallelClampsWorkers(t *testing.T) {
	rq := require.New(t)

	parallel := genetic.NewParallelEvaluator(&priceScorer{}, 64)
	got, err := parallel.EvaluateBatch(context.Background(), indexedPopulation(3))
	rq.NoError(err)
	rq.Equal([]float64{0, 1, 2}, got)
}

func TestEvaluatorMapsInfeasibleToUnfit(t *testing.T) {
	rq := require.New(t)

	// Contracts 2 and 5 are infeasible in two different ways; both score
	// UnfitROI instead of failing the batch.
	scorer := &priceScorer{fail: func(c domain.Contract) error {
		switch c.Entries[0].Price {
		case 2:
			return &domain.MissingOutcomeError{SourceID: "src", Factor: 50}
		case 5:
			return domain.ErrZeroCost
		}
		return nil
	}}

	ev := genetic.NewSerialEvaluator(scorer)
	got, err := ev.EvaluateBatch(context.Background(), indexedPopulation(8))
	rq.NoError(err)
	rq.Equal([]float64{0, 1, genetic.UnfitROI, 3, 4, genetic.UnfitROI, 6, 7}, got)

	st := ev.Stats()
	rq.Equal(int64(8), st.Evaluations)
	rq.Equal(int64(2), st.Unfit)
}

func TestEvaluatorWorkerFailureAborts(t *testing.T) {
	rq := require.New(t)

	boom := errors.New("table corrupted")
	scorer := &priceScorer{fail: func(c domain.Contract) error {
		if c.Entries[0].Price == 7 {
			return boom
		}
		return nil
	}}

	_, err := genetic.NewParallelEvaluator(scorer, 4).EvaluateBatch(context.Background(), indexedPopulation(20))
	rq.ErrorIs(err, boom)

	_, err = genetic.NewSerialEvaluator(scorer).EvaluateBatch(context.Background(), indexedPopulation(20))
	rq.ErrorIs(err, boom)
}

func TestEvaluatorHonorsCancellation(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := genetic.NewSerialEvaluator(&priceScorer{}).EvaluateBatch(ctx, indexedPopulation(10))
	rq.ErrorIs(err, context.Canceled)

	_, err = genetic.NewParallelEvaluator(&priceScorer{}, 2).EvaluateBatch(ctx, indexedPopulation(10))
	rq.ErrorIs(err, context.Canceled)
}
