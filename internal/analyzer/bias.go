package analyzer

import (
	"fmt"
	"math"
	"sort"

	"github.com/adnavarro/rouletbot/internal/domain"
)

const minBiasRecords = 100

// biasedNumber es un número cuya frecuencia observada se desvía de la
// esperada más allá del umbral configurado.
type biasedNumber struct {
	number    int
	count     int
	deviation float64 // % sobre la frecuencia esperada
}

// DetectBias busca bias físico de la rueda con un chi-cuadrado sobre los
// 37 números. Es la señal más rara y valiosa: su prioridad es fija (100)
// para que siempre gane a cualquier otra cuando aparece.
//
// results debe venir con el más reciente primero, aunque para este test el
// orden es irrelevante (usa el histórico completo). Requiere >= 100 giros y
// significancia al 1%; luego marca los números con desvío individual > 50%.
func (a *Analyzer) DetectBias(results []domain.OutcomeRecord) *domain.Signal {
	if len(results) < minBiasRecords {
		return nil
	}

	frequency := make(map[int]int, domain.WheelSlots)
	total := 0
	for _, r := range results {
		if !r.InWheelRange() {
			continue
		}
		frequency[r.Number]++
		total++
	}
	if total < minBiasRecords {
		return nil
	}

	expectedFreq := float64(total) / domain.WheelSlots
	observed := make([]float64, domain.WheelSlots)
	expected := make([]float64, domain.WheelSlots)
	for n := 0; n < domain.WheelSlots; n++ {
		observed[n] = float64(frequency[n])
		expected[n] = expectedFreq
	}

	chi2, pValue := chiSquareTest(observed, expected)
	if pValue >= a.cfg.BiasAlpha {
		return nil
	}

	var biased []biasedNumber
	for n := 0; n < domain.WheelSlots; n++ {
		deviation := (float64(frequency[n]) - expectedFreq) / expectedFreq * 100
		if math.Abs(deviation) > a.cfg.BiasMinDeviation {
			biased = append(biased, biasedNumber{number: n, count: frequency[n], deviation: deviation})
		}
	}
	if len(biased) == 0 {
		return nil
	}

	sort.SliceStable(biased, func(i, j int) bool {
		return math.Abs(biased[i].deviation) > math.Abs(biased[j].deviation)
	})
	top := biased[0]

	confidence := 70 + math.Abs(top.deviation)*0.2
	if confidence > 90 {
		confidence = 90
	}

	suggested := make([]int, 0, 5)
	for _, b := range biased {
		if len(suggested) == 5 {
			break
		}
		suggested = append(suggested, b.number)
	}

	sig := domain.NewSignal(domain.SignalWheelBias, confidence, 100)
	sig.SuggestedNumbers = suggested
	sig.Rationale = fmt.Sprintf(
		"Posible bias de rueda: el número %d salió %d veces en %d giros (desvío %.1f%%). χ²=%.2f, p=%.6f. Apostar a: %s",
		top.number, top.count, total, top.deviation, chi2, pValue,
		joinNumbers(suggested),
	)
	sig.Evidence["chi_square"] = chi2
	sig.Evidence["p_value"] = pValue
	sig.Evidence["top_number"] = float64(top.number)
	sig.Evidence["top_count"] = float64(top.count)
	sig.Evidence["top_deviation_pct"] = top.deviation
	sig.Evidence["biased_count"] = float64(len(biased))
	sig.Evidence["total"] = float64(total)
	return &sig
}
