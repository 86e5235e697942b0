package analyzer

import (
	"fmt"

	"github.com/adnavarro/rouletbot/internal/domain"
)

const (
	minClusterRecords    = 20
	clusterWindow        = 20
	minMappedPositions   = 15
	clusterHalfWindow    = 3
	expectedMeanCircDist = float64(domain.WheelSlots) / 2 // ~18.5 con colocación uniforme
)

// AnalyzeSpatialClusters detecta concentración de resultados en una región
// física de la rueda. Mapea los últimos 20 giros a posiciones del cilindro,
// mide la distancia circular media entre giros consecutivos y la compara
// con la esperada (~18.5). Si la observada cae por debajo del 60% de la
// esperada, busca la posición más "tocada" con una ventana deslizante de
// ±3 huecos y sugiere los 7 números centrados ahí.
//
// results debe venir con el más reciente primero.
func (a *Analyzer) AnalyzeSpatialClusters(results []domain.OutcomeRecord) *domain.Signal {
	if len(results) < minClusterRecords {
		return nil
	}

	window := results
	if len(window) > clusterWindow {
		window = window[:clusterWindow]
	}

	positions := make([]int, 0, len(window))
	for _, r := range window {
		pos, ok := domain.WheelPosition(r.Number)
		if !ok {
			continue
		}
		positions = append(positions, pos)
	}
	if len(positions) < minMappedPositions {
		return nil
	}

	var sum float64
	for i := 0; i < len(positions)-1; i++ {
		sum += float64(domain.CircularDistance(positions[i], positions[i+1]))
	}
	avgDistance := sum / float64(len(positions)-1)

	if avgDistance >= expectedMeanCircDist*a.cfg.ClusterMaxRatio {
		return nil
	}

	// Región más caliente: cada giro "toca" su posición y las ±3 vecinas.
	positionFreq := make(map[int]int)
	for _, pos := range positions {
		lo := pos - clusterHalfWindow
		if lo < 0 {
			lo = 0
		}
		hi := pos + clusterHalfWindow + 1
		if hi > domain.WheelSlots {
			hi = domain.WheelSlots
		}
		for p := lo; p < hi; p++ {
			positionFreq[p]++
		}
	}
	hotPosition := 0
	for p := 0; p < domain.WheelSlots; p++ {
		if positionFreq[p] > positionFreq[hotPosition] {
			hotPosition = p
		}
	}

	lo := hotPosition - clusterHalfWindow
	if lo < 0 {
		lo = 0
	}
	hi := hotPosition + clusterHalfWindow + 1
	if hi > domain.WheelSlots {
		hi = domain.WheelSlots
	}
	hotNumbers := append([]int(nil), domain.WheelOrder[lo:hi]...)

	confidence := 60 + (expectedMeanCircDist-avgDistance)*2
	if confidence > 78 {
		confidence = 78
	}
	clusterStrength := (1 - avgDistance/expectedMeanCircDist) * 100

	sig := domain.NewSignal(domain.SignalSpatialCluster, confidence, 85)
	sig.SuggestedNumbers = hotNumbers
	sig.Rationale = fmt.Sprintf(
		"Resultados concentrados en una región de la rueda: distancia media %.1f posiciones (esperada %.1f). Apostar alrededor de la posición %d: %s",
		avgDistance, expectedMeanCircDist, hotPosition, joinNumbers(hotNumbers),
	)
	sig.Evidence["average_distance"] = avgDistance
	sig.Evidence["expected_distance"] = expectedMeanCircDist
	sig.Evidence["cluster_strength"] = clusterStrength
	sig.Evidence["hot_position"] = float64(hotPosition)
	return &sig
}
