package domain

import (
	"time"

	"github.com/google/uuid"
)

// SignalKind identifica el detector que produjo la señal.
type SignalKind string

const (
	SignalHotSector      SignalKind = "hot-sector"
	SignalWheelBias      SignalKind = "wheel-bias"
	SignalSpatialCluster SignalKind = "spatial-cluster"
	SignalTemporalTrend  SignalKind = "temporal-trend"
)

// Signal es la recomendación producida por un detector: apostar a un color
// o a un conjunto de números, con confianza y evidencia estadística.
// Inmutable una vez creada; el core no la persiste (eso es del adapter).
type Signal struct {
	ID         string     `json:"id"`
	Kind       SignalKind `json:"kind"`
	Confidence float64    `json:"confidence"` // escala 0-100
	Priority   float64    `json:"priority"`

	// Sugerencia de apuesta. PredictedColor puede estar vacío para señales
	// que sugieren números concretos (bias, cluster, sector).
	PredictedColor   Color  `json:"predicted_color,omitempty"`
	SuggestedNumbers []int  `json:"suggested_numbers,omitempty"`
	Rationale        string `json:"rationale"`

	// Evidencia estadística que sustenta la señal (chi2, p_value, slope...).
	Evidence map[string]float64 `json:"evidence"`

	CreatedAt time.Time `json:"created_at"`
}

// NewSignal crea una señal con ID único y timestamp actual.
func NewSignal(kind SignalKind, confidence, priority float64) Signal {
	return Signal{
		ID:         uuid.NewString(),
		Kind:       kind,
		Confidence: confidence,
		Priority:   priority,
		Evidence:   make(map[string]float64),
		CreatedAt:  time.Now(),
	}
}
