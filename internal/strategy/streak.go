package strategy

import (
	"fmt"

	"github.com/adnavarro/rouletbot/internal/domain"
)

const streakBreakName = "streak_break"

// StreakBreak es la estrategia basada en patrones: detecta rachas largas de
// un mismo color y apuesta a la ruptura. El blanco corta cualquier racha.
type StreakBreak struct {
	minStreak     int
	minConfidence float64
	maxConfidence float64
}

// StreakBreakConfig configura la estrategia.
type StreakBreakConfig struct {
	MinStreak     int     // racha mínima para apostar (default 4)
	MinConfidence float64 // default 0.6
	MaxConfidence float64 // default 0.95
}

// NewStreakBreak crea la estrategia con la configuración dada.
func NewStreakBreak(cfg StreakBreakConfig) *StreakBreak {
	if cfg.MinStreak <= 0 {
		cfg.MinStreak = 4
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.6
	}
	if cfg.MaxConfidence <= 0 {
		cfg.MaxConfidence = 0.95
	}
	return &StreakBreak{
		minStreak:     cfg.MinStreak,
		minConfidence: cfg.MinConfidence,
		maxConfidence: cfg.MaxConfidence,
	}
}

// Name implementa Strategy.
func (s *StreakBreak) Name() string {
	return streakBreakName
}

// GetSignal implementa Strategy. Cuenta la racha de color actual desde el
// final del histórico y apuesta al color opuesto si alcanza el mínimo.
func (s *StreakBreak) GetSignal(history []domain.OutcomeRecord, current domain.OutcomeRecord) *Signal {
	if len(history) < s.minStreak {
		return nil
	}

	color := current.Color
	if color != domain.ColorRed && color != domain.ColorBlack {
		return nil
	}

	streak := 0
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Color != color {
			break
		}
		streak++
	}
	if streak < s.minStreak {
		return nil
	}

	predicted := domain.ColorBlack
	if color == domain.ColorBlack {
		predicted = domain.ColorRed
	}

	// Confianza crece 5 puntos por giro extra de racha por encima del mínimo.
	confidence := clamp(s.minConfidence+float64(streak-s.minStreak)*0.05, s.minConfidence, s.maxConfidence)

	return &Signal{
		Action:         ActionBet,
		PredictedColor: predicted,
		Confidence:     confidence,
		Reasoning:      fmt.Sprintf("racha de %d %s consecutivos; apostar a la ruptura", streak, color),
	}
}
