package session_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adnavarro/rouletbot/internal/analyzer"
	"github.com/adnavarro/rouletbot/internal/application/session"
	"github.com/adnavarro/rouletbot/internal/domain"
	"github.com/adnavarro/rouletbot/internal/risk"
	"github.com/adnavarro/rouletbot/internal/strategy"
)

// sliceFeed entrega registros pregrabados y termina con io.EOF.
type sliceFeed struct {
	records []domain.OutcomeRecord
	pos     int
}

func (f *sliceFeed) Next(ctx context.Context) (domain.OutcomeRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.OutcomeRecord{}, err
	}
	if f.pos >= len(f.records) {
		return domain.OutcomeRecord{}, io.EOF
	}
	r := f.records[f.pos]
	f.pos++
	return r, nil
}

// memStorage es un ports.Storage en memoria para tests.
type memStorage struct {
	outcomes domain.History
	signals  []domain.Signal
}

func (s *memStorage) SaveOutcome(_ context.Context, r domain.OutcomeRecord) error {
	s.outcomes = append(s.outcomes, r)
	return nil
}

func (s *memStorage) GetRecent(_ context.Context, n int) (domain.History, error) {
	if n > len(s.outcomes) {
		n = len(s.outcomes)
	}
	return append(domain.History(nil), s.outcomes[len(s.outcomes)-n:]...), nil
}

func (s *memStorage) GetRange(_ context.Context, from, to time.Time) (domain.History, error) {
	return s.outcomes.FilterByRange(from, to), nil
}

func (s *memStorage) SaveSignal(_ context.Context, sig domain.Signal) error {
	s.signals = append(s.signals, sig)
	return nil
}

func (s *memStorage) Close() error { return nil }

// recordingNotifier captura las notificaciones emitidas.
type recordingNotifier struct {
	calls [][]domain.Signal
}

func (n *recordingNotifier) Notify(_ context.Context, signals []domain.Signal) error {
	n.calls = append(n.calls, signals)
	return nil
}

// alwaysRed apuesta siempre a rojo.
type alwaysRed struct{}

func (alwaysRed) Name() string { return "always_red" }

func (alwaysRed) GetSignal(_ []domain.OutcomeRecord, _ domain.OutcomeRecord) *strategy.Signal {
	return &strategy.Signal{
		Action:         strategy.ActionBet,
		PredictedColor: domain.ColorRed,
		Confidence:     0.8,
	}
}

func outcomes(numbers ...int) []domain.OutcomeRecord {
	records := make([]domain.OutcomeRecord, len(numbers))
	for i, n := range numbers {
		records[i] = domain.OutcomeRecord{
			Number:    n,
			Color:     domain.ColorForRoll(n),
			Timestamp: int64(1000 + i),
		}
	}
	return records
}

func newEngine(t *testing.T, records []domain.OutcomeRecord) (*session.Engine, *memStorage, *risk.Manager) {
	t.Helper()
	riskMgr, err := risk.NewManager(risk.Params{InitialCapital: 1000})
	require.NoError(t, err)

	store := &memStorage{}
	engine := session.New(
		&sliceFeed{records: records},
		store,
		&recordingNotifier{},
		analyzer.New(analyzer.Config{}),
		alwaysRed{},
		riskMgr,
		session.Config{BaseBet: 10},
	)
	return engine, store, riskMgr
}

func TestRun_SettlesEachBetOnce(t *testing.T) {
	// 4 giros: el primero solo coloca apuesta, los 3 siguientes liquidan
	// la pendiente y colocan otra
	engine, store, riskMgr := newEngine(t, outcomes(3, 5, 10, 7))

	require.NoError(t, engine.Run(context.Background()))

	trades := riskMgr.TradeHistory()
	require.Len(t, trades, 3)
	// rojo, negro, rojo: 2 victorias y 1 derrota
	assert.True(t, trades[0].IsWin)
	assert.False(t, trades[1].IsWin)
	assert.True(t, trades[2].IsWin)

	// Todos los giros quedaron persistidos
	assert.Len(t, store.outcomes, 4)
}

func TestRun_CapitalTracksResults(t *testing.T) {
	engine, _, riskMgr := newEngine(t, outcomes(3, 5, 2))

	require.NoError(t, engine.Run(context.Background()))

	// 2 victorias con la apuesta dimensionada por el risk manager:
	// el capital termina por encima del inicial
	assert.Greater(t, riskMgr.CurrentCapital(), 1000.0)
}

func TestRun_EmptyFeed(t *testing.T) {
	engine, _, riskMgr := newEngine(t, nil)

	require.NoError(t, engine.Run(context.Background()))
	assert.Empty(t, riskMgr.TradeHistory())
}

func TestRun_CancelledContext(t *testing.T) {
	engine, _, _ := newEngine(t, outcomes(3, 5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, engine.Run(ctx))
}

func TestID_Unique(t *testing.T) {
	a, _, _ := newEngine(t, nil)
	b, _, _ := newEngine(t, nil)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEmpty(t, a.ID())
}
