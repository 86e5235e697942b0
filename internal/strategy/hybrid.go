package strategy

import (
	"fmt"

	"github.com/adnavarro/rouletbot/internal/domain"
)

const hybridName = "hybrid"

// Hybrid combina varias estrategias ponderadas. Solo apuesta cuando el peso
// acumulado a favor de un color supera el umbral; si las sub-estrategias se
// contradicen, los pesos se restan y normalmente el resultado es no apostar.
type Hybrid struct {
	members   []weighted
	threshold float64
}

type weighted struct {
	strategy Strategy
	weight   float64
}

// NewHybrid crea la combinación. Los pesos deben ser positivos; el umbral
// en cero toma 0.5 (mayoría ponderada simple).
func NewHybrid(threshold float64) *Hybrid {
	if threshold <= 0 {
		threshold = 0.5
	}
	return &Hybrid{threshold: threshold}
}

// Add registra una sub-estrategia con su peso.
func (s *Hybrid) Add(member Strategy, weight float64) *Hybrid {
	if weight > 0 {
		s.members = append(s.members, weighted{strategy: member, weight: weight})
	}
	return s
}

// Name implementa Strategy.
func (s *Hybrid) Name() string {
	return hybridName
}

// GetSignal implementa Strategy. Suma peso×confianza por color y apuesta al
// ganador si su score normalizado supera el umbral.
func (s *Hybrid) GetSignal(history []domain.OutcomeRecord, current domain.OutcomeRecord) *Signal {
	if len(s.members) == 0 {
		return nil
	}

	scores := map[domain.Color]float64{}
	var totalWeight float64
	votes := 0
	for _, m := range s.members {
		totalWeight += m.weight
		sig := m.strategy.GetSignal(history, current)
		if sig == nil || sig.Action != ActionBet {
			continue
		}
		scores[sig.PredictedColor] += m.weight * sig.Confidence
		votes++
	}
	if votes == 0 || totalWeight == 0 {
		return nil
	}

	var best domain.Color
	for _, color := range []domain.Color{domain.ColorRed, domain.ColorBlack, domain.ColorWhite} {
		if scores[color] > scores[best] {
			best = color
		}
	}
	score := scores[best] / totalWeight
	if score < s.threshold {
		return nil
	}

	return &Signal{
		Action:         ActionBet,
		PredictedColor: best,
		Confidence:     clamp(score, 0, 0.95),
		Reasoning:      fmt.Sprintf("consenso ponderado de %d sub-estrategias hacia %s (score %.2f)", votes, best, score),
	}
}
