package analyzer

import (
	"fmt"
	"strings"

	"github.com/adnavarro/rouletbot/internal/domain"
)

const (
	minSectorRecords = 20
	sectorWindow     = 50
)

// AnalyzeSectors detecta un sector físico "caliente" de la rueda.
//
// results debe venir con el más reciente primero (domain.History.Recent).
// Usa los últimos 50 resultados (o menos si no hay), cuenta apariciones por
// sector y contrasta con una distribución uniforme por tercios mediante
// chi-cuadrado. Solo emite señal si el sector dominante concentra >= 45% de
// los giros Y el desvío es estadísticamente significativo (p < 0.05).
//
// Devuelve nil si no hay datos suficientes o el desvío no es significativo.
func (a *Analyzer) AnalyzeSectors(results []domain.OutcomeRecord) *domain.Signal {
	if len(results) < minSectorRecords {
		return nil
	}

	window := results
	if len(window) > sectorWindow {
		window = window[:sectorWindow]
	}

	counts := map[domain.Sector]int{
		domain.SectorVoisins:   0,
		domain.SectorTiers:     0,
		domain.SectorOrphelins: 0,
	}
	total := 0
	for _, r := range window {
		sector, ok := domain.SectorOf(r.Number)
		if !ok {
			// registro fuera de la rueda (p.ej. roll del Double): se salta
			continue
		}
		counts[sector]++
		total++
	}
	if total < minSectorRecords {
		return nil
	}

	hot := domain.SectorVoisins
	for _, s := range []domain.Sector{domain.SectorTiers, domain.SectorOrphelins} {
		if counts[s] > counts[hot] {
			hot = s
		}
	}
	count := counts[hot]
	percentage := float64(count) / float64(total) * 100

	expected := float64(total) / 3
	observed := []float64{
		float64(counts[domain.SectorVoisins]),
		float64(counts[domain.SectorTiers]),
		float64(counts[domain.SectorOrphelins]),
	}
	chi2, pValue := chiSquareTest(observed, []float64{expected, expected, expected})

	if percentage < a.cfg.SectorMinShare || pValue >= a.cfg.SectorAlpha {
		return nil
	}

	confidence := 55 + (percentage-a.cfg.SectorMinShare)*1.2
	if confidence > 80 {
		confidence = 80
	}

	sig := domain.NewSignal(domain.SignalHotSector, confidence, percentage)
	sig.SuggestedNumbers = append([]int(nil), domain.SectorNumbers[hot]...)
	sig.Rationale = fmt.Sprintf(
		"El sector %q apareció en %d de %d resultados (%.1f%%). Chi-cuadrado indica desvío significativo (p=%.4f). Apostar a: %s",
		domain.SectorDisplayName[hot], count, total, percentage, pValue,
		joinNumbers(domain.SectorNumbers[hot]),
	)
	sig.Evidence["chi_square"] = chi2
	sig.Evidence["p_value"] = pValue
	sig.Evidence["count"] = float64(count)
	sig.Evidence["total"] = float64(total)
	sig.Evidence["percentage"] = percentage
	return &sig
}

func joinNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
