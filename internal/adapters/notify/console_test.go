package notify_test

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adnavarro/rouletbot/internal/adapters/notify"
	"github.com/adnavarro/rouletbot/internal/analyzer"
	"github.com/adnavarro/rouletbot/internal/backtest"
	"github.com/adnavarro/rouletbot/internal/domain"
	"github.com/adnavarro/rouletbot/internal/risk"
)

func makeSignal(kind domain.SignalKind, confidence, priority float64) domain.Signal {
	sig := domain.NewSignal(kind, confidence, priority)
	sig.Rationale = "razón de prueba"
	return sig
}

func TestConsole_NotifyEmpty(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, c.Notify(context.Background(), nil))
	assert.Contains(t, buf.String(), "sin señales")
}

func TestConsole_NotifyCompact(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false)

	sig := makeSignal(domain.SignalTemporalTrend, 65, 45)
	sig.PredictedColor = domain.ColorRed

	require.NoError(t, c.Notify(context.Background(), []domain.Signal{sig}))
	out := buf.String()
	assert.Contains(t, out, "1 señales")
	assert.Contains(t, out, "temporal-trend")
	assert.Contains(t, out, "red")
}

func TestConsole_NotifyTable(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	bias := makeSignal(domain.SignalWheelBias, 90, 100)
	bias.SuggestedNumbers = []int{7, 12, 30}

	require.NoError(t, c.Notify(context.Background(), []domain.Signal{bias}))
	out := buf.String()
	assert.Contains(t, out, "wheel-bias")
	assert.Contains(t, out, "7,12,30")
	assert.Contains(t, out, "90%")
}

func TestConsole_PrintStats(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	a := analyzer.New(analyzer.Config{})
	var h domain.History
	for i := 0; i < 25; i++ {
		n := i % 15
		h = append(h, domain.OutcomeRecord{Number: n, Color: domain.ColorForRoll(n)})
	}

	c.PrintStats(a.ComprehensiveStats(h))
	out := buf.String()
	assert.Contains(t, out, "25 giros")
	assert.Contains(t, out, "Voisins du Zéro")
	assert.Contains(t, out, "Calientes")
}

func TestConsole_PrintBacktestComparison(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	results := map[string]backtest.Result{
		"always_red": {
			StrategyName: "always_red",
			TotalTrades:  10,
			WinRate:      0.6,
			ROI:          12.5,
			ProfitFactor: math.Inf(1),
		},
		"never_bets": {
			StrategyName: "never_bets",
		},
	}

	c.PrintBacktestComparison(results)
	out := buf.String()
	assert.Contains(t, out, "always_red")
	assert.Contains(t, out, "never_bets")
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "12.50%")
}

func TestConsole_PrintRiskSummary(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	m, err := risk.NewManager(risk.Params{InitialCapital: 1000})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		m.RecordTrade(10, -10, false, 0.5)
	}

	c.PrintRiskSummary(m.GetRiskMetrics(), m.GetDailySummary())
	out := buf.String()
	assert.Contains(t, out, "EXTREME")
	assert.Contains(t, out, "STOP LOSS ACTIVO")
}
