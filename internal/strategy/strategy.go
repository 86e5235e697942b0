// Package strategy define el contrato de las políticas de apuesta y sus
// implementaciones concretas. Las estrategias son deterministas dada la
// misma historia: el engine de backtest depende de ello.
package strategy

import "github.com/adnavarro/rouletbot/internal/domain"

// Action es la decisión de una estrategia para la próxima ronda.
type Action string

const (
	ActionBet  Action = "bet"
	ActionSkip Action = "skip"
)

// Signal es la decisión de apuesta de una estrategia.
type Signal struct {
	Action         Action
	PredictedColor domain.Color
	Confidence     float64 // 0-1
	Reasoning      string
}

// Strategy es una política de apuesta conectable. history viene en orden
// cronológico ascendente (el más viejo primero) y current es su último
// elemento; la convención es la misma que usa el engine de backtest.
// Devuelve nil cuando no hay apuesta que hacer.
type Strategy interface {
	// Name devuelve el identificador único de la estrategia.
	Name() string

	// GetSignal evalúa el histórico y decide si apostar en la próxima ronda.
	GetSignal(history []domain.OutcomeRecord, current domain.OutcomeRecord) *Signal
}

// Registry mantiene las estrategias disponibles indexadas por nombre.
type Registry map[string]Strategy

// NewRegistry crea un registry vacío.
func NewRegistry() Registry {
	return make(Registry)
}

// Register añade una estrategia al registry.
func (r Registry) Register(s Strategy) {
	r[s.Name()] = s
}

// Get devuelve la estrategia por nombre.
func (r Registry) Get(name string) (Strategy, bool) {
	s, ok := r[name]
	return s, ok
}

// Names devuelve los nombres registrados (orden no garantizado).
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}

// clamp limita la confianza al rango [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
