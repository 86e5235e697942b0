// Package risk implementa la gestión de riesgo y money management de una
// sesión de apuestas: dimensionado de apuestas, stop-loss, take-profit y
// métricas de drawdown.
package risk

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Level clasifica el riesgo vigente de la sesión en cuatro niveles.
type Level string

const (
	LevelLow     Level = "low"
	LevelMedium  Level = "medium"
	LevelHigh    Level = "high"
	LevelExtreme Level = "extreme"
)

// Params son los parámetros de una sesión. Los campos en cero toman el
// default de Defaults().
type Params struct {
	InitialCapital       float64 `yaml:"initial_capital" json:"initial_capital"`
	MaxRiskPerTrade      float64 `yaml:"max_risk_per_trade" json:"max_risk_per_trade"`           // fracción por trade (default 0.02)
	MaxDailyRisk         float64 `yaml:"max_daily_risk" json:"max_daily_risk"`                   // fracción por día (default 0.10)
	MaxDrawdown          float64 `yaml:"max_drawdown" json:"max_drawdown"`                       // stop por drawdown (default 0.20)
	StopLossConsecutive  int     `yaml:"stop_loss_consecutive" json:"stop_loss_consecutive"`     // stop tras N pérdidas seguidas (default 5)
	TakeProfitMultiplier float64 `yaml:"take_profit_multiplier" json:"take_profit_multiplier"`   // take profit en N× el capital inicial (default 2.0)
}

// Defaults devuelve los parámetros por defecto de una sesión.
func Defaults() Params {
	return Params{
		InitialCapital:       1000,
		MaxRiskPerTrade:      0.02,
		MaxDailyRisk:         0.10,
		MaxDrawdown:          0.20,
		StopLossConsecutive:  5,
		TakeProfitMultiplier: 2.0,
	}
}

// Validate rechaza parámetros incoherentes. Se llama en la construcción:
// un parámetro inválido es un error de configuración, no algo que deba
// descubrirse a mitad de sesión.
func (p Params) Validate() error {
	if p.InitialCapital <= 0 {
		return fmt.Errorf("risk: initial_capital debe ser positivo, recibido %.2f", p.InitialCapital)
	}
	if p.MaxRiskPerTrade <= 0 || p.MaxRiskPerTrade > 1 {
		return fmt.Errorf("risk: max_risk_per_trade fuera de (0,1]: %.4f", p.MaxRiskPerTrade)
	}
	if p.MaxDailyRisk <= 0 || p.MaxDailyRisk > 1 {
		return fmt.Errorf("risk: max_daily_risk fuera de (0,1]: %.4f", p.MaxDailyRisk)
	}
	if p.MaxDrawdown <= 0 || p.MaxDrawdown > 1 {
		return fmt.Errorf("risk: max_drawdown fuera de (0,1]: %.4f", p.MaxDrawdown)
	}
	if p.StopLossConsecutive <= 0 {
		return fmt.Errorf("risk: stop_loss_consecutive debe ser positivo, recibido %d", p.StopLossConsecutive)
	}
	if p.TakeProfitMultiplier <= 1 {
		return fmt.Errorf("risk: take_profit_multiplier debe ser > 1, recibido %.2f", p.TakeProfitMultiplier)
	}
	return nil
}

// TradeRecord es la entrada del historial de la sesión. Append-only.
type TradeRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	BetAmount    float64   `json:"bet_amount"`
	Profit       float64   `json:"profit"`
	IsWin        bool      `json:"is_win"`
	Confidence   float64   `json:"confidence"`
	CapitalAfter float64   `json:"capital_after"`
	Drawdown     float64   `json:"drawdown"`
}

// Metrics es el snapshot de riesgo tras un trade.
type Metrics struct {
	CurrentDrawdown     float64 `json:"current_drawdown"`
	MaxDrawdown         float64 `json:"max_drawdown"`
	ConsecutiveLosses   int     `json:"consecutive_losses"`
	WinRate             float64 `json:"win_rate"`
	ProfitFactor        float64 `json:"profit_factor"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	RiskLevel           Level   `json:"risk_level"`
	RecommendedBetSize  float64 `json:"recommended_bet_size"`
	MaxBetSize          float64 `json:"max_bet_size"`
	StopLossTriggered   bool    `json:"stop_loss_triggered"`
	TakeProfitTriggered bool    `json:"take_profit_triggered"`
}

// DailySummary resume la actividad del día en curso.
type DailySummary struct {
	Date           string  `json:"date"`
	TradesCount    int     `json:"trades_count"`
	DailyPnL       float64 `json:"daily_pnl"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRate        float64 `json:"win_rate"`
	CurrentCapital float64 `json:"current_capital"`
	Drawdown       float64 `json:"drawdown"`
}

// Manager gobierna una sesión de apuestas. Objeto mutable de dueño único:
// NO es seguro para uso concurrente, el dueño debe serializar las llamadas
// (una sesión = un Manager).
type Manager struct {
	params Params

	currentCapital      float64
	peakCapital         float64
	dailyPnL            float64
	consecutiveLosses   int
	consecutiveWins     int
	totalTrades         int
	winningTrades       int
	currentDrawdown     float64
	maxDrawdownAchieved float64

	tradeHistory []TradeRecord

	sessionStart  time.Time
	lastResetDate time.Time

	// now es inyectable en tests para fijar el reloj.
	now func() time.Time
}

// NewManager valida los parámetros y crea la sesión.
func NewManager(params Params) (*Manager, error) {
	def := Defaults()
	if params.InitialCapital == 0 {
		params.InitialCapital = def.InitialCapital
	}
	if params.MaxRiskPerTrade == 0 {
		params.MaxRiskPerTrade = def.MaxRiskPerTrade
	}
	if params.MaxDailyRisk == 0 {
		params.MaxDailyRisk = def.MaxDailyRisk
	}
	if params.MaxDrawdown == 0 {
		params.MaxDrawdown = def.MaxDrawdown
	}
	if params.StopLossConsecutive == 0 {
		params.StopLossConsecutive = def.StopLossConsecutive
	}
	if params.TakeProfitMultiplier == 0 {
		params.TakeProfitMultiplier = def.TakeProfitMultiplier
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("risk.NewManager: %w", err)
	}

	m := &Manager{
		params:         params,
		currentCapital: params.InitialCapital,
		peakCapital:    params.InitialCapital,
		now:            time.Now,
	}
	m.sessionStart = m.now()
	m.lastResetDate = m.sessionStart
	slog.Info("risk manager inicializado", "capital", params.InitialCapital)
	return m, nil
}

// CurrentCapital devuelve el capital vigente.
func (m *Manager) CurrentCapital() float64 {
	return m.currentCapital
}

// TradeHistory devuelve el historial de la sesión (solo lectura).
func (m *Manager) TradeHistory() []TradeRecord {
	return m.tradeHistory
}

// CanPlaceBet evalúa las guardas de la sesión en orden: drawdown, pérdidas
// consecutivas, take profit y límite diario. No muta estado.
func (m *Manager) CanPlaceBet() bool {
	if m.currentDrawdown >= m.params.MaxDrawdown {
		slog.Warn("stop loss por drawdown", "drawdown", m.currentDrawdown)
		return false
	}
	if m.consecutiveLosses >= m.params.StopLossConsecutive {
		slog.Warn("stop loss por pérdidas consecutivas", "losses", m.consecutiveLosses)
		return false
	}
	if m.currentCapital >= m.params.InitialCapital*m.params.TakeProfitMultiplier {
		slog.Info("take profit alcanzado", "capital", m.currentCapital)
		return false
	}
	if math.Abs(m.dailyPnL) >= m.currentCapital*m.params.MaxDailyRisk {
		slog.Warn("límite de riesgo diario alcanzado", "daily_pnl", m.dailyPnL)
		return false
	}
	return true
}

// CalculateBetSize dimensiona la próxima apuesta. confidence va en 0-1;
// baseBet en 0 activa el criterio de Kelly simplificado; strategyRisk es un
// multiplicador de la estrategia (1.0 = neutro). Devuelve 0 si la sesión
// está bloqueada; nunca devuelve negativo.
func (m *Manager) CalculateBetSize(confidence, baseBet, strategyRisk float64) float64 {
	if !m.CanPlaceBet() {
		return 0
	}
	if strategyRisk <= 0 {
		strategyRisk = 1.0
	}

	confidenceRisk := math.Min(confidence, 0.95)
	riskMultiplier := confidenceRisk * strategyRisk

	var betSize float64
	if baseBet > 0 {
		betSize = baseBet * riskMultiplier
	} else {
		winRate := m.GetWinRate()
		if winRate > 0 {
			// Kelly simplificado para una apuesta binaria con pago 2×,
			// acotado al 25% del capital.
			kelly := (winRate*2 - 1) * confidenceRisk
			kelly = math.Max(0, math.Min(kelly, 0.25))
			betSize = m.currentCapital * kelly
		} else {
			betSize = m.currentCapital * m.params.MaxRiskPerTrade * riskMultiplier
		}
	}

	maxPerTrade := m.currentCapital * m.params.MaxRiskPerTrade
	maxDaily := m.currentCapital * m.params.MaxDailyRisk
	betSize = math.Min(betSize, math.Min(maxPerTrade, maxDaily))

	if m.currentDrawdown > 0.05 {
		betSize *= math.Max(0.1, 1-m.currentDrawdown*2)
	}
	if m.consecutiveLosses > 0 {
		betSize *= math.Max(0.1, 1-float64(m.consecutiveLosses)*0.1)
	}

	return math.Max(0, betSize)
}

// RecordTrade aplica el resultado de un trade al estado de la sesión y
// devuelve las métricas recalculadas. Las rachas de victorias y derrotas
// son mutuamente excluyentes: registrar una resetea la otra.
func (m *Manager) RecordTrade(betAmount, profit float64, isWin bool, confidence float64) Metrics {
	m.currentCapital += profit
	m.dailyPnL += profit
	m.totalTrades++

	if isWin {
		m.winningTrades++
		m.consecutiveWins++
		m.consecutiveLosses = 0
	} else {
		m.consecutiveLosses++
		m.consecutiveWins = 0
	}

	if m.currentCapital > m.peakCapital {
		m.peakCapital = m.currentCapital
		m.currentDrawdown = 0
	} else {
		m.currentDrawdown = (m.peakCapital - m.currentCapital) / m.peakCapital
		if m.currentDrawdown > m.maxDrawdownAchieved {
			m.maxDrawdownAchieved = m.currentDrawdown
		}
	}

	m.tradeHistory = append(m.tradeHistory, TradeRecord{
		Timestamp:    m.now(),
		BetAmount:    betAmount,
		Profit:       profit,
		IsWin:        isWin,
		Confidence:   confidence,
		CapitalAfter: m.currentCapital,
		Drawdown:     m.currentDrawdown,
	})

	metrics := m.GetRiskMetrics()

	outcome := "LOSS"
	if isWin {
		outcome = "WIN"
	}
	slog.Info("trade registrado",
		"outcome", outcome,
		"profit", fmt.Sprintf("%.2f", profit),
		"capital", fmt.Sprintf("%.2f", m.currentCapital),
		"drawdown", fmt.Sprintf("%.2f%%", m.currentDrawdown*100),
	)
	return metrics
}

// GetRiskMetrics calcula el snapshot de riesgo vigente. Las divisiones
// degeneradas devuelven centinelas (+Inf para profit factor sin pérdidas,
// 0 para Sharpe y win rate sin datos) en lugar de fallar.
func (m *Manager) GetRiskMetrics() Metrics {
	winRate := m.GetWinRate()

	var totalProfit, totalLoss float64
	for _, t := range m.tradeHistory {
		if t.IsWin {
			totalProfit += t.Profit
		} else {
			totalLoss += math.Abs(t.Profit)
		}
	}
	profitFactor := math.Inf(1)
	if totalLoss > 0 {
		profitFactor = totalProfit / totalLoss
	}

	var sharpe float64
	if len(m.tradeHistory) > 1 {
		returns := make([]float64, len(m.tradeHistory))
		for i, t := range m.tradeHistory {
			returns[i] = t.Profit / m.params.InitialCapital
		}
		if std := popStdDev(returns); std > 0 {
			sharpe = stat.Mean(returns, nil) / std
		}
	}

	return Metrics{
		CurrentDrawdown:    m.currentDrawdown,
		MaxDrawdown:        m.maxDrawdownAchieved,
		ConsecutiveLosses:  m.consecutiveLosses,
		WinRate:            winRate,
		ProfitFactor:       profitFactor,
		SharpeRatio:        sharpe,
		RiskLevel:          m.riskLevel(),
		RecommendedBetSize: m.CalculateBetSize(0.7, 0, 1.0),
		MaxBetSize:         m.currentCapital * m.params.MaxRiskPerTrade,
		StopLossTriggered: m.currentDrawdown >= m.params.MaxDrawdown ||
			m.consecutiveLosses >= m.params.StopLossConsecutive,
		TakeProfitTriggered: m.currentCapital >= m.params.InitialCapital*m.params.TakeProfitMultiplier,
	}
}

// riskLevel clasifica la sesión de más a menos severo. Los umbrales se
// combinan con OR: basta una condición para escalar de nivel.
func (m *Manager) riskLevel() Level {
	winRate := m.GetWinRate()
	switch {
	case m.currentDrawdown >= 0.15 || m.consecutiveLosses >= 4 || winRate < 0.3:
		return LevelExtreme
	case m.currentDrawdown >= 0.10 || m.consecutiveLosses >= 3 || winRate < 0.4:
		return LevelHigh
	case m.currentDrawdown >= 0.05 || m.consecutiveLosses >= 2 || winRate < 0.5:
		return LevelMedium
	default:
		return LevelLow
	}
}

// GetWinRate devuelve la tasa de acierto de la sesión (0 sin trades).
func (m *Manager) GetWinRate() float64 {
	if m.totalTrades == 0 {
		return 0
	}
	return float64(m.winningTrades) / float64(m.totalTrades)
}

// ResetDailyMetrics pone a cero el P&L diario. Lo invoca el dueño de la
// sesión al cruzar la medianoche.
func (m *Manager) ResetDailyMetrics() {
	m.dailyPnL = 0
	m.lastResetDate = m.now()
	slog.Info("métricas diarias reseteadas")
}

// ResetSession limpia rachas y drawdown y fija un nuevo pico en el capital
// vigente. El capital y el historial se conservan.
func (m *Manager) ResetSession() {
	m.consecutiveLosses = 0
	m.consecutiveWins = 0
	m.currentDrawdown = 0
	m.peakCapital = m.currentCapital
	m.sessionStart = m.now()
	slog.Info("sesión de trading reseteada")
}

// GetDailySummary resume los trades del día en curso.
func (m *Manager) GetDailySummary() DailySummary {
	today := m.now()
	y, mo, d := today.Date()

	var count, wins int
	for _, t := range m.tradeHistory {
		ty, tmo, td := t.Timestamp.Date()
		if ty == y && tmo == mo && td == d {
			count++
			if t.IsWin {
				wins++
			}
		}
	}

	summary := DailySummary{
		Date:           today.Format("2006-01-02"),
		TradesCount:    count,
		DailyPnL:       m.dailyPnL,
		WinningTrades:  wins,
		LosingTrades:   count - wins,
		CurrentCapital: m.currentCapital,
		Drawdown:       m.currentDrawdown,
	}
	if count > 0 {
		summary.WinRate = float64(wins) / float64(count)
	}
	return summary
}

// report es el esquema del export JSON de riesgo.
type report struct {
	Timestamp           string        `json:"timestamp"`
	InitialCapital      float64       `json:"initial_capital"`
	CurrentCapital      float64       `json:"current_capital"`
	TotalTrades         int           `json:"total_trades"`
	WinningTrades       int           `json:"winning_trades"`
	LosingTrades        int           `json:"losing_trades"`
	WinRate             float64       `json:"win_rate"`
	CurrentDrawdown     float64       `json:"current_drawdown"`
	MaxDrawdown         float64       `json:"max_drawdown"`
	ConsecutiveLosses   int           `json:"consecutive_losses"`
	ProfitFactor        any           `json:"profit_factor"`
	SharpeRatio         float64       `json:"sharpe_ratio"`
	RiskLevel           Level         `json:"risk_level"`
	RecommendedBetSize  float64       `json:"recommended_bet_size"`
	MaxBetSize          float64       `json:"max_bet_size"`
	StopLossTriggered   bool          `json:"stop_loss_triggered"`
	TakeProfitTriggered bool          `json:"take_profit_triggered"`
	DailySummary        DailySummary  `json:"daily_summary"`
	TradeHistory        []TradeRecord `json:"trade_history"`
}

// ExportRiskReport escribe el informe de riesgo como JSON. Con path vacío
// genera un nombre con timestamp. Devuelve la ruta escrita.
func (m *Manager) ExportRiskReport(path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("risk_report_%s.json", m.now().Format("20060102_150405"))
	}

	metrics := m.GetRiskMetrics()
	r := report{
		Timestamp:           m.now().Format(time.RFC3339),
		InitialCapital:      m.params.InitialCapital,
		CurrentCapital:      m.currentCapital,
		TotalTrades:         m.totalTrades,
		WinningTrades:       m.winningTrades,
		LosingTrades:        m.totalTrades - m.winningTrades,
		WinRate:             metrics.WinRate,
		CurrentDrawdown:     metrics.CurrentDrawdown,
		MaxDrawdown:         metrics.MaxDrawdown,
		ConsecutiveLosses:   metrics.ConsecutiveLosses,
		ProfitFactor:        metrics.ProfitFactor,
		SharpeRatio:         metrics.SharpeRatio,
		RiskLevel:           metrics.RiskLevel,
		RecommendedBetSize:  metrics.RecommendedBetSize,
		MaxBetSize:          metrics.MaxBetSize,
		StopLossTriggered:   metrics.StopLossTriggered,
		TakeProfitTriggered: metrics.TakeProfitTriggered,
		DailySummary:        m.GetDailySummary(),
		TradeHistory:        m.tradeHistory,
	}
	if pf, ok := r.ProfitFactor.(float64); ok && math.IsInf(pf, 1) {
		r.ProfitFactor = "inf"
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("risk.ExportRiskReport: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("risk.ExportRiskReport: write %q: %w", path, err)
	}

	slog.Info("informe de riesgo exportado", "path", path)
	return path, nil
}

// popStdDev es la desviación estándar poblacional (divisor n).
func popStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := stat.Mean(xs, nil)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
