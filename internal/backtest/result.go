package backtest

import (
	"encoding/json"
	"math"
	"time"

	"github.com/adnavarro/rouletbot/internal/domain"
)

// Trade es una apuesta simulada durante un backtest. Se crea una por
// oportunidad apostada y nunca se muta después.
type Trade struct {
	Timestamp      int64        `json:"timestamp"`
	PredictedColor domain.Color `json:"predicted_color"`
	ActualColor    domain.Color `json:"actual_color"`
	BetAmount      float64      `json:"bet_amount"`
	Profit         float64      `json:"profit"`
	CapitalAfter   float64      `json:"capital_after"`
	Confidence     float64      `json:"confidence"`
	IsWin          bool         `json:"is_win"`
}

// Result es el snapshot inmutable de un backtest completo. Lo posee quien
// llama a Run (p.ej. un informe de comparación).
type Result struct {
	StrategyName string    `json:"strategy_name"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"` // fracción 0-1

	TotalProfit float64 `json:"total_profit"`
	TotalLoss   float64 `json:"total_loss"`
	NetProfit   float64 `json:"net_profit"`
	ROI         float64 `json:"roi"` // %

	MaxDrawdown  float64 `json:"max_drawdown"` // fracción 0-1
	SharpeRatio  float64 `json:"sharpe_ratio"`
	ProfitFactor float64 `json:"profit_factor"` // +Inf si no hubo pérdidas

	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"`
	LargestWin  float64 `json:"largest_win"`
	LargestLoss float64 `json:"largest_loss"`

	ConsecutiveWins   int `json:"consecutive_wins"`   // mejor racha de la simulación
	ConsecutiveLosses int `json:"consecutive_losses"` // peor racha de la simulación

	Trades []Trade `json:"trades"`
}

const infMarker = "inf"

// MarshalJSON maneja el centinela +Inf de profit_factor, que el JSON
// estándar no puede representar como número.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	out := struct {
		alias
		ProfitFactor any `json:"profit_factor"`
	}{alias: alias(r), ProfitFactor: r.ProfitFactor}
	if math.IsInf(r.ProfitFactor, 1) {
		out.ProfitFactor = infMarker
	}
	return json.Marshal(out)
}

// marshalResults serializa un lote de resultados con indentación, listo
// para escribir a disco.
func marshalResults(results []Result) ([]byte, error) {
	return json.MarshalIndent(results, "", "  ")
}

// UnmarshalJSON es el inverso de MarshalJSON (fidelidad de round-trip).
func (r *Result) UnmarshalJSON(data []byte) error {
	type alias Result
	aux := struct {
		*alias
		ProfitFactor any `json:"profit_factor"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch v := aux.ProfitFactor.(type) {
	case string:
		if v == infMarker {
			r.ProfitFactor = math.Inf(1)
		}
	case float64:
		r.ProfitFactor = v
	}
	return nil
}
