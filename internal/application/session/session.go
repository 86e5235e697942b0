// Package session implementa el engine de sesión en vivo: consume giros de
// un feed, mantiene el histórico, liquida la apuesta pendiente contra cada
// giro nuevo y dimensiona la siguiente con el gestor de riesgo.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/adnavarro/rouletbot/internal/analyzer"
	"github.com/adnavarro/rouletbot/internal/domain"
	"github.com/adnavarro/rouletbot/internal/ports"
	"github.com/adnavarro/rouletbot/internal/risk"
	"github.com/adnavarro/rouletbot/internal/strategy"
)

const (
	defaultHistorySize    = 500
	defaultNotifyCooldown = 60 * time.Second
)

// Config ajusta la sesión. Los campos en cero toman el default.
type Config struct {
	HistorySize    int           // registros precargados del storage (default 500)
	NotifyCooldown time.Duration // mínimo entre notificaciones (default 60s)
	BaseBet        float64       // apuesta base; 0 activa Kelly en el risk manager
	StrategyRisk   float64       // multiplicador de riesgo de la estrategia (default 1.0)
}

// pendingBet es la apuesta colocada sobre el giro anterior, a la espera del
// siguiente resultado para liquidarse. A lo sumo una viva por sesión.
type pendingBet struct {
	color      domain.Color
	amount     float64
	confidence float64
}

// Engine orquesta una sesión en vivo. Dueño único de su estado mutable:
// Run se ejecuta en una sola goroutine.
type Engine struct {
	id       string
	cfg      Config
	feed     ports.OutcomeFeed
	store    ports.Storage
	notifier ports.Notifier
	analyzer *analyzer.Analyzer
	strat    strategy.Strategy
	riskMgr  *risk.Manager

	history domain.History
	pending *pendingBet
	limiter *rate.Limiter
}

// New crea la sesión con sus dependencias ya construidas.
func New(
	feed ports.OutcomeFeed,
	store ports.Storage,
	notifier ports.Notifier,
	an *analyzer.Analyzer,
	strat strategy.Strategy,
	riskMgr *risk.Manager,
	cfg Config,
) *Engine {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	if cfg.NotifyCooldown <= 0 {
		cfg.NotifyCooldown = defaultNotifyCooldown
	}
	if cfg.StrategyRisk <= 0 {
		cfg.StrategyRisk = 1.0
	}

	return &Engine{
		id:       uuid.NewString(),
		cfg:      cfg,
		feed:     feed,
		store:    store,
		notifier: notifier,
		analyzer: an,
		strat:    strat,
		riskMgr:  riskMgr,
		limiter:  rate.NewLimiter(rate.Every(cfg.NotifyCooldown), 1),
	}
}

// ID devuelve el identificador de la sesión.
func (e *Engine) ID() string {
	return e.id
}

// Run consume el feed hasta que se agote o el contexto se cancele.
// Devuelve nil en ambos casos de parada limpia.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.preload(ctx); err != nil {
		return err
	}

	slog.Info("sesión iniciada",
		"session", e.id,
		"strategy", e.strat.Name(),
		"history", len(e.history),
	)

	for {
		record, err := e.feed.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			slog.Info("feed agotado, cerrando sesión", "session", e.id)
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			slog.Info("sesión cancelada", "session", e.id)
			return nil
		case err != nil:
			return fmt.Errorf("session.Run: feed: %w", err)
		}

		if err := e.handleOutcome(ctx, record); err != nil {
			slog.Warn("error procesando giro", "session", e.id, "err", err)
		}
	}
}

// handleOutcome procesa un giro: persistir, liquidar la apuesta pendiente,
// re-analizar y dimensionar la siguiente apuesta.
func (e *Engine) handleOutcome(ctx context.Context, record domain.OutcomeRecord) error {
	if err := e.store.SaveOutcome(ctx, record); err != nil {
		slog.Warn("no se pudo persistir el giro", "err", err)
	}
	e.history = append(e.history, record)

	e.settle(record)

	signals := e.analyzer.AnalyzeAll(e.history)
	for _, sig := range signals {
		if err := e.store.SaveSignal(ctx, sig); err != nil {
			slog.Warn("no se pudo persistir la señal", "signal", sig.ID, "err", err)
		}
	}
	if len(signals) > 0 && e.limiter.Allow() {
		if err := e.notifier.Notify(ctx, signals); err != nil {
			slog.Warn("error notificando señales", "err", err)
		}
	}

	e.placeNextBet(record)
	return nil
}

// settle liquida la apuesta pendiente contra el giro recién llegado.
// Cada apuesta se liquida exactamente una vez.
func (e *Engine) settle(record domain.OutcomeRecord) {
	if e.pending == nil {
		return
	}
	bet := *e.pending
	e.pending = nil

	actual := record.Color
	if record.InDoubleRange() {
		actual = domain.ColorForRoll(record.Number)
	}

	isWin := bet.color == actual
	profit := -bet.amount
	if isWin {
		profit = bet.amount
	}

	metrics := e.riskMgr.RecordTrade(bet.amount, profit, isWin, bet.confidence)
	if metrics.StopLossTriggered || metrics.TakeProfitTriggered {
		slog.Warn("sesión bloqueada por el gestor de riesgo",
			"session", e.id,
			"stop_loss", metrics.StopLossTriggered,
			"take_profit", metrics.TakeProfitTriggered,
		)
	}
}

// placeNextBet consulta la estrategia y deja registrada la apuesta para el
// próximo giro, si el gestor de riesgo la autoriza.
func (e *Engine) placeNextBet(current domain.OutcomeRecord) {
	sig := e.strat.GetSignal(e.history, current)
	if sig == nil || sig.Action != strategy.ActionBet {
		return
	}

	amount := e.riskMgr.CalculateBetSize(sig.Confidence, e.cfg.BaseBet, e.cfg.StrategyRisk)
	if amount <= 0 {
		return
	}

	e.pending = &pendingBet{
		color:      sig.PredictedColor,
		amount:     amount,
		confidence: sig.Confidence,
	}
	slog.Info("apuesta colocada",
		"session", e.id,
		"color", sig.PredictedColor,
		"amount", fmt.Sprintf("%.2f", amount),
		"confidence", fmt.Sprintf("%.2f", sig.Confidence),
	)
}

// preload carga el histórico reciente desde el storage.
func (e *Engine) preload(ctx context.Context) error {
	history, err := e.store.GetRecent(ctx, e.cfg.HistorySize)
	if err != nil {
		return fmt.Errorf("session.preload: %w", err)
	}
	e.history = history
	return nil
}
