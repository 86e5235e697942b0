package strategy

import (
	"fmt"

	"github.com/adnavarro/rouletbot/internal/analyzer"
	"github.com/adnavarro/rouletbot/internal/domain"
)

const trendFollowName = "trend_follow"

// TrendFollow conecta el detector de tendencias temporales del analyzer con
// el contrato de estrategia: apuesta al color que favorece la tendencia.
// Es el puente detector→estrategia: la misma señal que ve el usuario en el
// analizador puede backtestearse como política de apuesta.
type TrendFollow struct {
	analyzer *analyzer.Analyzer
}

// NewTrendFollow crea la estrategia sobre un analyzer ya configurado.
func NewTrendFollow(a *analyzer.Analyzer) *TrendFollow {
	return &TrendFollow{analyzer: a}
}

// Name implementa Strategy.
func (s *TrendFollow) Name() string {
	return trendFollowName
}

// GetSignal implementa Strategy. Adapta la convención de orden: la historia
// llega ascendente y el detector espera el más reciente primero.
func (s *TrendFollow) GetSignal(history []domain.OutcomeRecord, _ domain.OutcomeRecord) *Signal {
	sig := s.analyzer.AnalyzeTemporalTrends(domain.History(history).NewestFirst())
	if sig == nil || sig.PredictedColor == "" {
		return nil
	}

	return &Signal{
		Action:         ActionBet,
		PredictedColor: sig.PredictedColor,
		Confidence:     sig.Confidence / 100, // el detector reporta 0-100
		Reasoning:      fmt.Sprintf("tendencia temporal hacia %s (slope %.1f)", sig.PredictedColor, sig.Evidence["slope"]),
	}
}
