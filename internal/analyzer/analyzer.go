// Package analyzer contiene los detectores estadísticos de patrones y su
// agregador. Todos los detectores son computación pura sobre un snapshot
// inmutable del histórico: pueden invocarse concurrentemente siempre que
// cada llamada reciba su propia copia de la ventana.
package analyzer

import (
	"sort"
	"time"

	"github.com/adnavarro/rouletbot/internal/domain"
)

// Config ajusta los umbrales de los detectores. Los tamaños mínimos de
// ventana son fijos (constantes de cada detector); aquí solo van los
// umbrales de decisión.
type Config struct {
	SectorMinShare   float64 // % mínimo del sector dominante (default 45)
	SectorAlpha      float64 // significancia del test de sectores (default 0.05)
	BiasAlpha        float64 // significancia del test de bias (default 0.01)
	BiasMinDeviation float64 // % de desvío individual para marcar un número (default 50)
	ClusterMaxRatio  float64 // fracción de la distancia esperada (default 0.6)
	TrendMinSlope    float64 // puntos de % por bloque (default 5)
}

// DefaultConfig devuelve los umbrales originales del analizador.
func DefaultConfig() Config {
	return Config{
		SectorMinShare:   45,
		SectorAlpha:      0.05,
		BiasAlpha:        0.01,
		BiasMinDeviation: 50,
		ClusterMaxRatio:  0.6,
		TrendMinSlope:    5,
	}
}

// Analyzer agrupa los cuatro detectores avanzados. Sin estado mutable:
// es propiedad del call site (inyección), no un singleton de paquete.
type Analyzer struct {
	cfg Config
}

// New crea un Analyzer. Los campos en cero de cfg toman el default.
func New(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.SectorMinShare <= 0 {
		cfg.SectorMinShare = def.SectorMinShare
	}
	if cfg.SectorAlpha <= 0 {
		cfg.SectorAlpha = def.SectorAlpha
	}
	if cfg.BiasAlpha <= 0 {
		cfg.BiasAlpha = def.BiasAlpha
	}
	if cfg.BiasMinDeviation <= 0 {
		cfg.BiasMinDeviation = def.BiasMinDeviation
	}
	if cfg.ClusterMaxRatio <= 0 {
		cfg.ClusterMaxRatio = def.ClusterMaxRatio
	}
	if cfg.TrendMinSlope <= 0 {
		cfg.TrendMinSlope = def.TrendMinSlope
	}
	return &Analyzer{cfg: cfg}
}

// AnalyzeAll ejecuta todos los detectores sobre el histórico y devuelve las
// señales ordenadas por prioridad descendente. El detector de bias solo
// corre con >= 100 registros. No deduplica entre tipos: pueden coexistir
// varias señales.
func (a *Analyzer) AnalyzeAll(h domain.History) []domain.Signal {
	results := h.NewestFirst()

	var signals []domain.Signal
	if sig := a.AnalyzeSectors(results); sig != nil {
		signals = append(signals, *sig)
	}
	if len(results) >= minBiasRecords {
		if sig := a.DetectBias(results); sig != nil {
			signals = append(signals, *sig)
		}
	}
	if sig := a.AnalyzeSpatialClusters(results); sig != nil {
		signals = append(signals, *sig)
	}
	if sig := a.AnalyzeTemporalTrends(results); sig != nil {
		signals = append(signals, *sig)
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Priority > signals[j].Priority
	})
	return signals
}

// NumberCount es la frecuencia de un número en el histórico.
type NumberCount struct {
	Number int `json:"number"`
	Count  int `json:"count"`
}

// SectorStat es la frecuencia de un sector en el histórico.
type SectorStat struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Stats es el resumen estadístico completo del histórico.
type Stats struct {
	TotalSpins  int                          `json:"total_spins"`
	Colors      map[domain.Color]int         `json:"colors"`
	HotNumbers  []NumberCount                `json:"hot_numbers"`
	ColdNumbers []NumberCount                `json:"cold_numbers"`
	Sectors     map[domain.Sector]SectorStat `json:"sectors"`
	GeneratedAt time.Time                    `json:"generated_at"`
}

// ComprehensiveStats calcula tablas de frecuencia, números calientes/fríos
// y conteos por sector. Con histórico vacío devuelve el cero de Stats.
func (a *Analyzer) ComprehensiveStats(h domain.History) Stats {
	if len(h) == 0 {
		return Stats{}
	}

	frequency := make(map[int]int)
	colors := make(map[domain.Color]int)
	for _, r := range h {
		frequency[r.Number]++
		colors[r.Color]++
	}

	sorted := make([]NumberCount, 0, len(frequency))
	for n, c := range frequency {
		sorted = append(sorted, NumberCount{Number: n, Count: c})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Number < sorted[j].Number
	})

	topN := 5
	if topN > len(sorted) {
		topN = len(sorted)
	}
	hot := append([]NumberCount(nil), sorted[:topN]...)
	cold := append([]NumberCount(nil), sorted[len(sorted)-topN:]...)

	total := len(h)
	sectors := make(map[domain.Sector]SectorStat, 3)
	for sector, numbers := range domain.SectorNumbers {
		count := 0
		for _, n := range numbers {
			count += frequency[n]
		}
		sectors[sector] = SectorStat{
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		}
	}

	return Stats{
		TotalSpins:  total,
		Colors:      colors,
		HotNumbers:  hot,
		ColdNumbers: cold,
		Sectors:     sectors,
		GeneratedAt: time.Now(),
	}
}
