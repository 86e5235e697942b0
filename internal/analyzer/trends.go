package analyzer

import (
	"fmt"
	"math"

	"github.com/adnavarro/rouletbot/internal/domain"
)

const (
	minTrendRecords = 50
	trendBlockSize  = 10
	trendWindow     = 50
)

// AnalyzeTemporalTrends busca una deriva sostenida del porcentaje de rojo.
// Divide los últimos 50 resultados en 5 bloques de 10, calcula el % de rojo
// por bloque y ajusta una regresión lineal sobre el índice de bloque. Una
// pendiente de más de 5 puntos por bloque se considera tendencia: positiva
// favorece rojo, negativa favorece negro.
//
// results debe venir con el más reciente primero; el bloque 0 es el más
// reciente.
func (a *Analyzer) AnalyzeTemporalTrends(results []domain.OutcomeRecord) *domain.Signal {
	if len(results) < minTrendRecords {
		return nil
	}

	window := results
	if len(window) > trendWindow {
		window = window[:trendWindow]
	}

	var redPcts []float64
	for i := 0; i+trendBlockSize <= len(window); i += trendBlockSize {
		block := window[i : i+trendBlockSize]
		red := 0
		for _, r := range block {
			if r.Color == domain.ColorRed {
				red++
			}
		}
		redPcts = append(redPcts, float64(red)/float64(len(block))*100)
	}
	if len(redPcts) < 3 {
		return nil
	}

	xs := make([]float64, len(redPcts))
	for i := range xs {
		xs[i] = float64(i)
	}
	slope, intercept := linearFit(xs, redPcts)

	if math.Abs(slope) <= a.cfg.TrendMinSlope {
		return nil
	}

	color := domain.ColorRed
	direction := "creciente"
	if slope < 0 {
		color = domain.ColorBlack
		direction = "decreciente"
	}

	confidence := 50 + math.Abs(slope)*3
	if confidence > 68 {
		confidence = 68
	}

	sig := domain.NewSignal(domain.SignalTemporalTrend, confidence, math.Abs(slope)*3)
	sig.PredictedColor = color
	sig.Rationale = fmt.Sprintf(
		"Tendencia %s de rojo en bloques de %d giros: %.1f%% por bloque. La tendencia favorece %s a corto plazo",
		direction, trendBlockSize, slope, color,
	)
	sig.Evidence["slope"] = slope
	sig.Evidence["intercept"] = intercept
	sig.Evidence["blocks_analyzed"] = float64(len(redPcts))
	sig.Evidence["last_block_red_pct"] = redPcts[len(redPcts)-1]
	return &sig
}
