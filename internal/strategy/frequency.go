package strategy

import (
	"fmt"

	"github.com/adnavarro/rouletbot/internal/domain"
)

const frequencyName = "frequency_deviation"

// FrequencyDeviation es la estrategia estadística: sobre una ventana
// reciente mide la proporción rojo/negro y apuesta al color sub-representado
// esperando reversión a la media (~46.7% cada uno en el Double, con el
// blanco quedándose el resto).
type FrequencyDeviation struct {
	window       int
	minDeviation float64
}

// FrequencyDeviationConfig configura la estrategia.
type FrequencyDeviationConfig struct {
	Window       int     // tamaño de la ventana (default 30)
	MinDeviation float64 // desvío mínimo de la proporción esperada (default 0.10)
}

// NewFrequencyDeviation crea la estrategia con la configuración dada.
func NewFrequencyDeviation(cfg FrequencyDeviationConfig) *FrequencyDeviation {
	if cfg.Window <= 0 {
		cfg.Window = 30
	}
	if cfg.MinDeviation <= 0 {
		cfg.MinDeviation = 0.10
	}
	return &FrequencyDeviation{window: cfg.Window, minDeviation: cfg.MinDeviation}
}

// Name implementa Strategy.
func (s *FrequencyDeviation) Name() string {
	return frequencyName
}

// GetSignal implementa Strategy.
func (s *FrequencyDeviation) GetSignal(history []domain.OutcomeRecord, _ domain.OutcomeRecord) *Signal {
	if len(history) < s.window {
		return nil
	}

	window := history[len(history)-s.window:]
	red, black := 0, 0
	for _, r := range window {
		switch r.Color {
		case domain.ColorRed:
			red++
		case domain.ColorBlack:
			black++
		}
	}
	colored := red + black
	if colored == 0 {
		return nil
	}

	redShare := float64(red) / float64(colored)
	deviation := 0.5 - redShare
	predicted := domain.ColorRed
	if deviation < 0 {
		deviation = -deviation
		predicted = domain.ColorBlack
	}
	if deviation < s.minDeviation {
		return nil
	}

	// Confianza proporcional al desvío: 0.6 en el umbral, +1 punto por cada
	// punto extra de desvío, techo 0.9.
	confidence := clamp(0.6+(deviation-s.minDeviation), 0.6, 0.9)

	return &Signal{
		Action:         ActionBet,
		PredictedColor: predicted,
		Confidence:     confidence,
		Reasoning: fmt.Sprintf(
			"%s sub-representado en la ventana: %d rojo / %d negro (desvío %.0f%%)",
			predicted, red, black, deviation*100,
		),
	}
}
