package analyzer

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// chiSquareTest ejecuta un test chi-cuadrado de bondad de ajuste entre las
// frecuencias observadas y esperadas. Devuelve el estadístico y el p-value
// con len(observed)-1 grados de libertad.
//
// Los bins con esperado <= 0 se ignoran (no deberían existir con inputs
// válidos, pero un test estadístico nunca debe dividir por cero).
func chiSquareTest(observed, expected []float64) (chi2, pValue float64) {
	df := 0
	for i := range observed {
		if i >= len(expected) || expected[i] <= 0 {
			continue
		}
		diff := observed[i] - expected[i]
		chi2 += diff * diff / expected[i]
		df++
	}
	df--
	if df < 1 {
		return 0, 1
	}

	dist := distuv.ChiSquared{K: float64(df)}
	return chi2, dist.Survival(chi2)
}

// popStdDev es la desviación estándar poblacional (divisor n, no n-1).
// stat.StdDev de gonum usa el estimador muestral; aquí replicamos la
// definición poblacional que usa el resto del pipeline de métricas.
func popStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := stat.Mean(xs, nil)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// linearFit ajusta y = intercept + slope*x por mínimos cuadrados.
func linearFit(xs, ys []float64) (slope, intercept float64) {
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept
}
