package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/adnavarro/rouletbot/internal/analyzer"
	"github.com/adnavarro/rouletbot/internal/domain"
)

// record construye un giro con color derivado cuando el número es del Double.
func record(number int) domain.OutcomeRecord {
	color := domain.ColorRed
	if number <= domain.DoubleMaxNumber {
		color = domain.ColorForRoll(number)
	}
	return domain.OutcomeRecord{Number: number, Color: color}
}

// biasedHistory genera 200 giros con el número 7 sobre-representado (40
// apariciones) y el resto casi uniforme: 16 números salen 5 veces y 20
// números salen 4 veces.
func biasedHistory() []domain.OutcomeRecord {
	var results []domain.OutcomeRecord
	for i := 0; i < 40; i++ {
		results = append(results, record(7))
	}
	others := make([]int, 0, 36)
	for n := 0; n <= domain.WheelMaxNumber; n++ {
		if n != 7 {
			others = append(others, n)
		}
	}
	for i, n := range others {
		reps := 4
		if i < 16 {
			reps = 5
		}
		for r := 0; r < reps; r++ {
			results = append(results, record(n))
		}
	}
	return results
}

func TestAnalyzeSectors_InsufficientData(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	var results []domain.OutcomeRecord
	for i := 0; i < 19; i++ {
		results = append(results, record(0))
	}
	assert.Nil(t, a.AnalyzeSectors(results))
}

func TestAnalyzeSectors_HotSector(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	// 50 giros: voisins 30 (60%), tiers 12, orphelins 8
	var results []domain.OutcomeRecord
	voisins := domain.SectorNumbers[domain.SectorVoisins]
	tiers := domain.SectorNumbers[domain.SectorTiers]
	orphelins := domain.SectorNumbers[domain.SectorOrphelins]
	for i := 0; i < 30; i++ {
		results = append(results, record(voisins[i%len(voisins)]))
	}
	for i := 0; i < 12; i++ {
		results = append(results, record(tiers[i%len(tiers)]))
	}
	for i := 0; i < 8; i++ {
		results = append(results, record(orphelins[i%len(orphelins)]))
	}

	sig := a.AnalyzeSectors(results)
	require.NotNil(t, sig)
	assert.Equal(t, domain.SignalHotSector, sig.Kind)
	assert.ElementsMatch(t, voisins, sig.SuggestedNumbers)
	assert.InDelta(t, 60.0, sig.Evidence["percentage"], 0.001)
	assert.InDelta(t, 60.0, sig.Priority, 0.001)
	// conf = 55 + (60-45)*1.2 = 73
	assert.InDelta(t, 73.0, sig.Confidence, 0.001)
	assert.Less(t, sig.Evidence["p_value"], 0.05)
}

func TestAnalyzeSectors_UniformIsSilent(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	// Reparto casi uniforme entre sectores: sin señal
	var results []domain.OutcomeRecord
	for i := 0; i <= domain.WheelMaxNumber; i++ {
		results = append(results, record(i))
	}
	for i := 0; i < 13; i++ {
		results = append(results, record(i))
	}
	assert.Nil(t, a.AnalyzeSectors(results))
}

func TestDetectBias_InsufficientData(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	var results []domain.OutcomeRecord
	for i := 0; i < 99; i++ {
		results = append(results, record(i%15))
	}
	assert.Nil(t, a.DetectBias(results))
}

func TestDetectBias_FindsHotNumber(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	sig := a.DetectBias(biasedHistory())
	require.NotNil(t, sig)
	assert.Equal(t, domain.SignalWheelBias, sig.Kind)
	assert.InDelta(t, 100.0, sig.Priority, 0.001)
	assert.EqualValues(t, 7, sig.Evidence["top_number"])
	assert.EqualValues(t, 40, sig.Evidence["top_count"])
	require.NotEmpty(t, sig.SuggestedNumbers)
	assert.Equal(t, 7, sig.SuggestedNumbers[0])
	assert.Less(t, sig.Evidence["p_value"], 0.01)
	// desvío ~640% → confianza saturada en 90
	assert.InDelta(t, 90.0, sig.Confidence, 0.001)
}

func TestDetectBias_ChiSquareReproducible(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	sig := a.DetectBias(biasedHistory())
	require.NotNil(t, sig)

	// Recalcular chi-cuadrado y p-value desde las mismas frecuencias
	expected := 200.0 / 37.0
	var chi2 float64
	counts := map[int]int{7: 40}
	idx := 0
	for n := 0; n <= domain.WheelMaxNumber; n++ {
		if n == 7 {
			continue
		}
		if idx < 16 {
			counts[n] = 5
		} else {
			counts[n] = 4
		}
		idx++
	}
	for n := 0; n < domain.WheelSlots; n++ {
		d := float64(counts[n]) - expected
		chi2 += d * d / expected
	}
	pValue := distuv.ChiSquared{K: 36}.Survival(chi2)

	assert.InDelta(t, chi2, sig.Evidence["chi_square"], 1e-9)
	assert.InDelta(t, pValue, sig.Evidence["p_value"], 1e-12)
}

func TestAnalyzeSpatialClusters_DetectsTightRegion(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	// 20 giros dentro de una ventana de 5 posiciones (10-14 del cilindro)
	clusterNumbers := []int{
		domain.WheelOrder[10], domain.WheelOrder[11], domain.WheelOrder[12],
		domain.WheelOrder[13], domain.WheelOrder[14],
	}
	var results []domain.OutcomeRecord
	for i := 0; i < 20; i++ {
		results = append(results, record(clusterNumbers[i%len(clusterNumbers)]))
	}

	sig := a.AnalyzeSpatialClusters(results)
	require.NotNil(t, sig)
	assert.Equal(t, domain.SignalSpatialCluster, sig.Kind)
	assert.Greater(t, sig.Evidence["cluster_strength"], 0.0)
	assert.InDelta(t, 85.0, sig.Priority, 0.001)

	// Los números sugeridos salen de la región caliente (10-14 ± 3)
	for _, n := range sig.SuggestedNumbers {
		pos, ok := domain.WheelPosition(n)
		require.True(t, ok)
		assert.GreaterOrEqual(t, pos, 7)
		assert.LessOrEqual(t, pos, 17)
	}
}

func TestAnalyzeSpatialClusters_TooFewMapped(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	// 20 registros pero solo 14 mapean a la rueda: sin señal
	var results []domain.OutcomeRecord
	for i := 0; i < 14; i++ {
		results = append(results, record(domain.WheelOrder[10+i%3]))
	}
	for i := 0; i < 6; i++ {
		results = append(results, domain.OutcomeRecord{Number: 50, Color: domain.ColorRed})
	}
	assert.Nil(t, a.AnalyzeSpatialClusters(results))
}

func TestAnalyzeSpatialClusters_SpreadIsSilent(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	// Saltos de media rueda entre giros consecutivos: distancia media alta
	var results []domain.OutcomeRecord
	for i := 0; i < 20; i++ {
		pos := (i * 18) % domain.WheelSlots
		results = append(results, record(domain.WheelOrder[pos]))
	}
	assert.Nil(t, a.AnalyzeSpatialClusters(results))
}

// trendHistory genera 50 giros (el más reciente primero) con % de rojo por
// bloque de 10: redPerBlock[0] es el bloque más reciente.
func trendHistory(redPerBlock []int) []domain.OutcomeRecord {
	var results []domain.OutcomeRecord
	for _, reds := range redPerBlock {
		for i := 0; i < 10; i++ {
			if i < reds {
				results = append(results, domain.OutcomeRecord{Number: 3, Color: domain.ColorRed})
			} else {
				results = append(results, domain.OutcomeRecord{Number: 10, Color: domain.ColorBlack})
			}
		}
	}
	return results
}

func TestAnalyzeTemporalTrends_DetectsSlope(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	// Rojo 90% en el bloque reciente cayendo a 10% en el más viejo:
	// pendiente -20 sobre el índice de bloque
	sig := a.AnalyzeTemporalTrends(trendHistory([]int{9, 7, 5, 3, 1}))
	require.NotNil(t, sig)
	assert.Equal(t, domain.SignalTemporalTrend, sig.Kind)
	assert.Equal(t, domain.ColorBlack, sig.PredictedColor)
	assert.InDelta(t, -20.0, sig.Evidence["slope"], 1e-9)
	// confianza saturada: 50 + 20*3 > 68
	assert.InDelta(t, 68.0, sig.Confidence, 0.001)
	assert.InDelta(t, 60.0, sig.Priority, 0.001)
}

func TestAnalyzeTemporalTrends_SlopeAtThresholdIsSilent(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	// Pendiente exactamente -5: el umbral es estricto, sin señal
	assert.Nil(t, a.AnalyzeTemporalTrends(trendHistory([]int{6, 5, 5, 4, 4})))
}

func TestAnalyzeTemporalTrends_InsufficientData(t *testing.T) {
	a := analyzer.New(analyzer.Config{})
	assert.Nil(t, a.AnalyzeTemporalTrends(trendHistory([]int{9, 7, 5, 3})))
}

func TestAnalyzeAll_PrioritySorted(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	sigs := a.AnalyzeAll(domain.History(biasedHistory()))
	require.NotEmpty(t, sigs)
	for i := 1; i < len(sigs); i++ {
		assert.GreaterOrEqual(t, sigs[i-1].Priority, sigs[i].Priority)
	}
	// La señal de bias (prioridad fija 100) va primera
	assert.Equal(t, domain.SignalWheelBias, sigs[0].Kind)
}

func TestAnalyzeAll_EmptyHistory(t *testing.T) {
	a := analyzer.New(analyzer.Config{})
	assert.Empty(t, a.AnalyzeAll(domain.History{}))
}

func TestComprehensiveStats(t *testing.T) {
	a := analyzer.New(analyzer.Config{})

	var h domain.History
	for i := 0; i < 10; i++ {
		h = append(h, record(7))
	}
	h = append(h, record(0), record(10), record(10))

	stats := a.ComprehensiveStats(h)
	assert.Equal(t, 13, stats.TotalSpins)
	assert.Equal(t, 10, stats.Colors[domain.ColorRed])
	assert.Equal(t, 2, stats.Colors[domain.ColorBlack])
	assert.Equal(t, 1, stats.Colors[domain.ColorWhite])

	require.NotEmpty(t, stats.HotNumbers)
	assert.Equal(t, 7, stats.HotNumbers[0].Number)
	assert.Equal(t, 10, stats.HotNumbers[0].Count)

	total := 0
	for _, st := range stats.Sectors {
		total += st.Count
	}
	assert.Equal(t, 13, total)

	var pctSum float64
	for _, st := range stats.Sectors {
		pctSum += st.Percentage
	}
	assert.InDelta(t, 100.0, pctSum, 1e-9)
}

func TestComprehensiveStats_Empty(t *testing.T) {
	a := analyzer.New(analyzer.Config{})
	stats := a.ComprehensiveStats(domain.History{})
	assert.Equal(t, 0, stats.TotalSpins)
	assert.Empty(t, stats.Sectors)
	assert.Empty(t, stats.HotNumbers)
}
