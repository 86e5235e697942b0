package backtest_test

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adnavarro/rouletbot/internal/backtest"
	"github.com/adnavarro/rouletbot/internal/domain"
	"github.com/adnavarro/rouletbot/internal/strategy"
)

// alwaysRed apuesta siempre a rojo con confianza fija.
type alwaysRed struct{}

func (alwaysRed) Name() string { return "always_red" }

func (alwaysRed) GetSignal(_ []domain.OutcomeRecord, _ domain.OutcomeRecord) *strategy.Signal {
	return &strategy.Signal{
		Action:         strategy.ActionBet,
		PredictedColor: domain.ColorRed,
		Confidence:     0.7,
	}
}

// neverBets nunca apuesta.
type neverBets struct{}

func (neverBets) Name() string { return "never_bets" }

func (neverBets) GetSignal(_ []domain.OutcomeRecord, _ domain.OutcomeRecord) *strategy.Signal {
	return nil
}

// sequence construye un histórico ascendente a partir de números del Double.
func sequence(numbers ...int) domain.History {
	h := make(domain.History, len(numbers))
	for i, n := range numbers {
		h[i] = domain.OutcomeRecord{
			Number:    n,
			Color:     domain.ColorForRoll(n),
			Timestamp: int64(1000 + i),
		}
	}
	return h
}

func TestRun_EmptyData(t *testing.T) {
	e := backtest.NewEngine(1000)

	result := e.Run(alwaysRed{}, domain.History{}, backtest.Options{})
	assert.Equal(t, 0, result.TotalTrades)
	assert.Zero(t, result.NetProfit)
	assert.Zero(t, result.WinRate)
	assert.Zero(t, result.SharpeRatio)
	assert.Zero(t, result.ProfitFactor)
}

func TestRun_SingleRecordNoTrades(t *testing.T) {
	e := backtest.NewEngine(1000)

	result := e.Run(alwaysRed{}, sequence(3), backtest.Options{})
	assert.Equal(t, 0, result.TotalTrades)
}

func TestRun_WinsAndLosses(t *testing.T) {
	e := backtest.NewEngine(1000)

	// 5 registros → 4 apuestas a rojo; los siguientes son rojo, rojo,
	// negro, rojo → 3 ganadas, 1 perdida
	data := sequence(3, 5, 2, 10, 7)
	result := e.Run(alwaysRed{}, data, backtest.Options{BetAmount: 10})

	assert.Equal(t, 4, result.TotalTrades)
	assert.Equal(t, 3, result.WinningTrades)
	assert.Equal(t, 1, result.LosingTrades)
	assert.InDelta(t, 0.75, result.WinRate, 1e-9)
	// +10 +10 -10 +10 = +20
	assert.InDelta(t, 20.0, result.NetProfit, 1e-9)
	assert.InDelta(t, 2.0, result.ROI, 1e-9)
	assert.InDelta(t, 30.0, result.TotalProfit, 1e-9)
	assert.InDelta(t, 10.0, result.TotalLoss, 1e-9)
	assert.InDelta(t, 3.0, result.ProfitFactor, 1e-9)
	assert.Equal(t, 2, result.ConsecutiveWins)
	assert.Equal(t, 1, result.ConsecutiveLosses)
	assert.InDelta(t, 10.0, result.AvgWin, 1e-9)
	assert.InDelta(t, 10.0, result.AvgLoss, 1e-9)
	require.Len(t, result.Trades, 4)
	assert.InDelta(t, 1010.0, result.Trades[0].CapitalAfter, 1e-9)
}

func TestRun_Deterministic(t *testing.T) {
	data := sequence(3, 10, 5, 12, 7, 1, 9, 4)
	opts := backtest.Options{BetAmount: 5}

	a := backtest.NewEngine(1000).Run(alwaysRed{}, data, opts)
	b := backtest.NewEngine(1000).Run(alwaysRed{}, data, opts)
	assert.Equal(t, a, b)
}

func TestRun_ProfitFactorInfWithoutLosses(t *testing.T) {
	e := backtest.NewEngine(1000)

	// Todos los siguientes son rojos: solo victorias
	result := e.Run(alwaysRed{}, sequence(3, 5, 2, 7), backtest.Options{BetAmount: 1})
	require.Equal(t, 3, result.WinningTrades)
	assert.True(t, math.IsInf(result.ProfitFactor, 1))
	assert.Zero(t, result.MaxDrawdown)
}

func TestRun_NeverBetsYieldsZeroTrades(t *testing.T) {
	e := backtest.NewEngine(1000)

	result := e.Run(neverBets{}, sequence(3, 10, 5, 12), backtest.Options{})
	assert.Equal(t, 0, result.TotalTrades)
	assert.Zero(t, result.ProfitFactor)
}

func TestRun_BetClampedToTenPercent(t *testing.T) {
	e := backtest.NewEngine(100)

	// Apuesta pedida 50 pero el tope es 10% del capital (10)
	result := e.Run(alwaysRed{}, sequence(3, 5), backtest.Options{BetAmount: 50})
	require.Len(t, result.Trades, 1)
	assert.InDelta(t, 10.0, result.Trades[0].BetAmount, 1e-9)
}

func TestRun_MaxBetsStopsEarly(t *testing.T) {
	e := backtest.NewEngine(1000)

	numbers := make([]int, 50)
	for i := range numbers {
		numbers[i] = 3
	}
	result := e.Run(alwaysRed{}, sequence(numbers...), backtest.Options{BetAmount: 1, MaxBets: 10})
	assert.Equal(t, 10, result.TotalTrades)
}

func TestRun_AccumulatesResults(t *testing.T) {
	e := backtest.NewEngine(1000)
	data := sequence(3, 5, 10)

	e.Run(alwaysRed{}, data, backtest.Options{})
	e.Run(neverBets{}, data, backtest.Options{})
	assert.Len(t, e.Results(), 2)
}

func TestCompare(t *testing.T) {
	e := backtest.NewEngine(1000)
	data := sequence(3, 5, 10, 7, 2)

	results := e.Compare([]strategy.Strategy{alwaysRed{}, neverBets{}}, data, backtest.Options{})
	require.Len(t, results, 2)
	assert.Contains(t, results, "always_red")
	assert.Contains(t, results, "never_bets")
	assert.Equal(t, 0, results["never_bets"].TotalTrades)
}

func TestReport(t *testing.T) {
	e := backtest.NewEngine(1000)
	result := e.Run(alwaysRed{}, sequence(3, 5, 10, 7), backtest.Options{BetAmount: 10})

	report := e.Report(result)
	assert.Contains(t, report, "always_red")
	assert.Contains(t, report, "Win rate")
	assert.Contains(t, report, "Drawdown")
}

func TestExport_RoundTrip(t *testing.T) {
	e := backtest.NewEngine(1000)
	// Solo victorias: profit factor +Inf, el caso difícil del JSON
	e.Run(alwaysRed{}, sequence(3, 5, 2, 7), backtest.Options{BetAmount: 1})

	path := filepath.Join(t.TempDir(), "results.json")
	written, err := e.Export(path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var results []backtest.Result
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 1)
	assert.True(t, math.IsInf(results[0].ProfitFactor, 1))
	assert.Equal(t, "always_red", results[0].StrategyName)
	assert.Len(t, results[0].Trades, 3)
}
