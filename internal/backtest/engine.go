// Package backtest reproduce una estrategia sobre un histórico de
// resultados bajo un modelo de capital y produce métricas de rendimiento y
// riesgo. Computación pura y determinista: dos ejecuciones con los mismos
// datos, parámetros y estrategia determinista dan resultados idénticos.
package backtest

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/adnavarro/rouletbot/internal/domain"
	"github.com/adnavarro/rouletbot/internal/strategy"
)

const (
	defaultBetAmount = 1.0
	defaultMaxBets   = 1000

	// maxCapitalFraction limita cada apuesta al 10% del capital vigente.
	maxCapitalFraction = 0.10

	// winPayout es el multiplicador de pago en acierto de color (apuesta
	// binaria; apuestas a número o blanco quedan fuera del modelo).
	winPayout = 2.0
)

// Options parametriza una ejecución de backtest. Los campos en cero toman
// el default (sin filtro de fechas, apuesta 1.0, máximo 1000 apuestas).
type Options struct {
	StartDate time.Time
	EndDate   time.Time
	BetAmount float64
	MaxBets   int
}

// Engine ejecuta backtests con un capital inicial fijo. Acumula los
// resultados de cada Run para exportarlos juntos — intencional, para
// informes comparativos posteriores; cada Run usa solo estado local.
type Engine struct {
	initialCapital float64
	results        []Result
}

// NewEngine crea un engine con el capital inicial dado (default 1000).
func NewEngine(initialCapital float64) *Engine {
	if initialCapital <= 0 {
		initialCapital = 1000
	}
	return &Engine{initialCapital: initialCapital}
}

// InitialCapital devuelve el capital inicial del engine.
func (e *Engine) InitialCapital() float64 {
	return e.initialCapital
}

// Results devuelve los resultados acumulados por este engine.
func (e *Engine) Results() []Result {
	return e.results
}

// Run reproduce la estrategia sobre data (orden cronológico ascendente).
//
// Recorre pares consecutivos (data[i], data[i+1]): data[i] es el giro
// "actual" y la estrategia recibe data[:i+1] como histórico. Una apuesta se
// dimensiona como min(BetAmount, capital×0.10) y gana si el color predicho
// coincide con el de data[i+1] (pago 2×). Con data vacío o de un solo
// elemento devuelve un resultado de cero trades, nunca un error.
func (e *Engine) Run(strat strategy.Strategy, data domain.History, opts Options) Result {
	if opts.BetAmount <= 0 {
		opts.BetAmount = defaultBetAmount
	}
	if opts.MaxBets <= 0 {
		opts.MaxBets = defaultMaxBets
	}
	if !opts.StartDate.IsZero() || !opts.EndDate.IsZero() {
		data = data.FilterByRange(opts.StartDate, opts.EndDate)
	}

	slog.Info("iniciando backtest", "strategy", strat.Name(), "records", len(data))

	var (
		trades        []Trade
		capital       = e.initialCapital
		peakCapital   = e.initialCapital
		maxDrawdown   float64
		returns       []float64
		totalProfit   float64
		totalLoss     float64
		winning       int
		losing        int
		largestWin    float64
		largestLoss   float64
		curWins       int
		curLosses     int
		maxWinStreak  int
		maxLossStreak int
	)

	for i := 0; i < len(data)-1; i++ {
		if len(trades) >= opts.MaxBets {
			break
		}

		historical := []domain.OutcomeRecord(data[:i+1])
		current := data[i]
		next := data[i+1]

		sig := strat.GetSignal(historical, current)
		if sig == nil || sig.Action != strategy.ActionBet {
			continue
		}

		betValue := math.Min(opts.BetAmount, capital*maxCapitalFraction)
		if betValue <= 0 {
			continue
		}

		actual := actualColor(next)
		isWin := sig.PredictedColor == actual
		payout := 0.0
		if isWin {
			payout = betValue * winPayout
		}
		profit := payout - betValue
		capital += profit

		if isWin {
			winning++
			totalProfit += profit
			curWins++
			curLosses = 0
			if curWins > maxWinStreak {
				maxWinStreak = curWins
			}
			if profit > largestWin {
				largestWin = profit
			}
		} else {
			losing++
			totalLoss += -profit
			curLosses++
			curWins = 0
			if curLosses > maxLossStreak {
				maxLossStreak = curLosses
			}
			if -profit > largestLoss {
				largestLoss = -profit
			}
		}

		if capital > peakCapital {
			peakCapital = capital
		}
		drawdown := (peakCapital - capital) / peakCapital
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}

		returns = append(returns, profit/e.initialCapital)

		trades = append(trades, Trade{
			Timestamp:      current.Timestamp,
			PredictedColor: sig.PredictedColor,
			ActualColor:    actual,
			BetAmount:      betValue,
			Profit:         profit,
			CapitalAfter:   capital,
			Confidence:     sig.Confidence,
			IsWin:          isWin,
		})
	}

	result := Result{
		StrategyName:      strat.Name(),
		TotalTrades:       len(trades),
		WinningTrades:     winning,
		LosingTrades:      losing,
		TotalProfit:       totalProfit,
		TotalLoss:         totalLoss,
		NetProfit:         capital - e.initialCapital,
		MaxDrawdown:       maxDrawdown,
		SharpeRatio:       sharpeRatio(returns),
		ProfitFactor:      profitFactor(totalProfit, totalLoss),
		LargestWin:        largestWin,
		LargestLoss:       largestLoss,
		ConsecutiveWins:   maxWinStreak,
		ConsecutiveLosses: maxLossStreak,
		Trades:            trades,
	}
	if len(trades) > 0 {
		result.WinRate = float64(winning) / float64(len(trades))
	}
	result.ROI = result.NetProfit / e.initialCapital * 100
	if winning > 0 {
		result.AvgWin = totalProfit / float64(winning)
	}
	if losing > 0 {
		result.AvgLoss = totalLoss / float64(losing)
	}
	result.StartDate = opts.StartDate
	result.EndDate = opts.EndDate
	if result.StartDate.IsZero() && len(data) > 0 {
		result.StartDate = data[0].Time()
	}
	if result.EndDate.IsZero() && len(data) > 0 {
		result.EndDate = data[len(data)-1].Time()
	}

	e.results = append(e.results, result)

	slog.Info("backtest completado",
		"strategy", strat.Name(),
		"trades", result.TotalTrades,
		"roi_pct", fmt.Sprintf("%.2f", result.ROI),
		"win_rate", fmt.Sprintf("%.2f", result.WinRate),
	)
	return result
}

// Compare ejecuta el backtest de cada estrategia sobre los mismos datos y
// devuelve los resultados indexados por nombre. No hay estado compartido
// entre ejecuciones más allá de la acumulación en results.
func (e *Engine) Compare(strategies []strategy.Strategy, data domain.History, opts Options) map[string]Result {
	slog.Info("comparando estrategias", "count", len(strategies))
	out := make(map[string]Result, len(strategies))
	for _, strat := range strategies {
		out[strat.Name()] = e.Run(strat, data, opts)
	}
	return out
}

// Report genera el informe de texto de un resultado.
func (e *Engine) Report(r Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== BACKTEST: %s ===\n", r.StrategyName)
	fmt.Fprintf(&sb, "Período: %s — %s\n\n", r.StartDate.Format("02/01/2006"), r.EndDate.Format("02/01/2006"))

	fmt.Fprintf(&sb, "Trades: %d (%d ganados / %d perdidos)\n", r.TotalTrades, r.WinningTrades, r.LosingTrades)
	fmt.Fprintf(&sb, "Win rate: %.2f%%\n\n", r.WinRate*100)

	fmt.Fprintf(&sb, "Capital inicial: %.2f\n", e.initialCapital)
	fmt.Fprintf(&sb, "Capital final: %.2f\n", e.initialCapital+r.NetProfit)
	fmt.Fprintf(&sb, "Beneficio neto: %.2f (ROI %.2f%%)\n\n", r.NetProfit, r.ROI)

	fmt.Fprintf(&sb, "Drawdown máximo: %.2f%%\n", r.MaxDrawdown*100)
	fmt.Fprintf(&sb, "Sharpe: %.2f\n", r.SharpeRatio)
	if math.IsInf(r.ProfitFactor, 1) {
		fmt.Fprintf(&sb, "Profit factor: INF (sin pérdidas)\n\n")
	} else {
		fmt.Fprintf(&sb, "Profit factor: %.2f\n\n", r.ProfitFactor)
	}

	fmt.Fprintf(&sb, "Mayor ganancia: %.2f | Mayor pérdida: %.2f\n", r.LargestWin, r.LargestLoss)
	fmt.Fprintf(&sb, "Ganancia media: %.2f | Pérdida media: %.2f\n", r.AvgWin, r.AvgLoss)
	fmt.Fprintf(&sb, "Mejor racha: %d victorias | Peor racha: %d derrotas\n", r.ConsecutiveWins, r.ConsecutiveLosses)
	return sb.String()
}

// Export escribe los resultados acumulados como JSON. Con path vacío
// genera un nombre con timestamp. Devuelve la ruta escrita.
func (e *Engine) Export(path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("backtest_results_%s.json", time.Now().Format("20060102_150405"))
	}

	data, err := marshalResults(e.results)
	if err != nil {
		return "", fmt.Errorf("backtest.Export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("backtest.Export: write %q: %w", path, err)
	}

	slog.Info("resultados exportados", "path", path, "results", len(e.results))
	return path, nil
}

// actualColor devuelve el color real de un giro. Para números del Double
// se deriva del número (fuente de verdad); para el resto se usa el color
// que trae el registro.
func actualColor(r domain.OutcomeRecord) domain.Color {
	if r.InDoubleRange() {
		return domain.ColorForRoll(r.Number)
	}
	return r.Color
}

// sharpeRatio calcula media/desviación de los retornos por trade.
// 0 con menos de 2 trades o varianza nula.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := stat.Mean(returns, nil)
	std := popStdDev(returns)
	if std == 0 {
		return 0
	}
	return mean / std
}

// profitFactor devuelve total_profit/total_loss con centinelas seguros:
// +Inf sin pérdidas y con beneficio, 0 si no hubo ni uno ni otro.
func profitFactor(totalProfit, totalLoss float64) float64 {
	if totalLoss > 0 {
		return totalProfit / totalLoss
	}
	if totalProfit > 0 {
		return math.Inf(1)
	}
	return 0
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
