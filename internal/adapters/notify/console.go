package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/adnavarro/rouletbot/internal/analyzer"
	"github.com/adnavarro/rouletbot/internal/backtest"
	"github.com/adnavarro/rouletbot/internal/domain"
	"github.com/adnavarro/rouletbot/internal/risk"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime las señales en el modo configurado.
func (c *Console) Notify(_ context.Context, signals []domain.Signal) error {
	if len(signals) == 0 {
		fmt.Fprintf(c.out, "[%s] sin señales\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(signals)
	} else {
		c.printCompact(signals)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(signals []domain.Signal) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d señales", now, len(signals))

	shown := 0
	for _, sig := range signals {
		if shown >= 3 {
			break
		}
		fmt.Fprintf(&sb, " | %s conf:%.0f %s", sig.Kind, sig.Confidence, betLabel(sig))
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla de señales con su evidencia resumida.
func (c *Console) printFull(signals []domain.Signal) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %d señales detectadas\n", now, len(signals))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Tipo", "Conf", "Prio", "Apuesta", "Razón")

	for i, sig := range signals {
		table.Append(
			fmt.Sprintf("%d", i+1),
			string(sig.Kind),
			fmt.Sprintf("%.0f%%", sig.Confidence),
			fmt.Sprintf("%.0f", sig.Priority),
			betLabel(sig),
			truncate(sig.Rationale, 60),
		)
	}

	table.Render()
	fmt.Fprintln(c.out, "  Conf = confianza del detector (0-100) | Prio = orden de ranking")
}

// PrintStats imprime el resumen estadístico del histórico.
func (c *Console) PrintStats(stats analyzer.Stats) {
	if stats.TotalSpins == 0 {
		fmt.Fprintln(c.out, "\n  Sin datos en el histórico.")
		return
	}

	fmt.Fprintf(c.out, "\n=== ESTADÍSTICAS (%d giros) ===\n", stats.TotalSpins)

	fmt.Fprintf(c.out, "  Colores: rojo %d | negro %d | blanco %d\n",
		stats.Colors[domain.ColorRed], stats.Colors[domain.ColorBlack], stats.Colors[domain.ColorWhite])

	hot := make([]string, len(stats.HotNumbers))
	for i, n := range stats.HotNumbers {
		hot[i] = fmt.Sprintf("%d(×%d)", n.Number, n.Count)
	}
	cold := make([]string, len(stats.ColdNumbers))
	for i, n := range stats.ColdNumbers {
		cold[i] = fmt.Sprintf("%d(×%d)", n.Number, n.Count)
	}
	fmt.Fprintf(c.out, "  Calientes: %s\n", strings.Join(hot, " "))
	fmt.Fprintf(c.out, "  Fríos:     %s\n", strings.Join(cold, " "))

	sectors := make([]domain.Sector, 0, len(stats.Sectors))
	for sector := range stats.Sectors {
		sectors = append(sectors, sector)
	}
	sort.Slice(sectors, func(i, j int) bool { return sectors[i] < sectors[j] })
	for _, sector := range sectors {
		st := stats.Sectors[sector]
		fmt.Fprintf(c.out, "  %-22s %3d giros (%.1f%%)\n",
			domain.SectorDisplayName[sector], st.Count, st.Percentage)
	}
	fmt.Fprintln(c.out)
}

// PrintBacktestComparison imprime la tabla comparativa de estrategias,
// ordenada por ROI descendente.
func (c *Console) PrintBacktestComparison(results map[string]backtest.Result) {
	if len(results) == 0 {
		fmt.Fprintln(c.out, "\n  Sin resultados de backtest.")
		return
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return results[names[i]].ROI > results[names[j]].ROI
	})

	fmt.Fprintf(c.out, "\n=== COMPARATIVA DE ESTRATEGIAS (%d) ===\n", len(results))

	table := tablewriter.NewWriter(c.out)
	table.Header("Estrategia", "Trades", "WinRate", "ROI", "MaxDD", "Sharpe", "PF")

	for _, name := range names {
		r := results[name]

		pf := fmt.Sprintf("%.2f", r.ProfitFactor)
		if math.IsInf(r.ProfitFactor, 1) {
			pf = "INF"
		}

		table.Append(
			name,
			fmt.Sprintf("%d", r.TotalTrades),
			fmt.Sprintf("%.1f%%", r.WinRate*100),
			fmt.Sprintf("%.2f%%", r.ROI),
			fmt.Sprintf("%.1f%%", r.MaxDrawdown*100),
			fmt.Sprintf("%.2f", r.SharpeRatio),
			pf,
		)
	}

	table.Render()
	fmt.Fprintln(c.out, "  MaxDD = drawdown máximo | PF = profit factor (INF sin pérdidas)")
}

// PrintRiskSummary imprime el estado de riesgo de la sesión.
func (c *Console) PrintRiskSummary(metrics risk.Metrics, daily risk.DailySummary) {
	fmt.Fprintf(c.out, "\n=== RIESGO [%s] ===\n", strings.ToUpper(string(metrics.RiskLevel)))

	fmt.Fprintf(c.out, "  Capital: %.2f | P&L del día: %+.2f (%d trades)\n",
		daily.CurrentCapital, daily.DailyPnL, daily.TradesCount)
	fmt.Fprintf(c.out, "  Drawdown: %.1f%% (máx %.1f%%) | Pérdidas seguidas: %d\n",
		metrics.CurrentDrawdown*100, metrics.MaxDrawdown*100, metrics.ConsecutiveLosses)
	fmt.Fprintf(c.out, "  Win rate: %.1f%% | Apuesta recomendada: %.2f (tope %.2f)\n",
		metrics.WinRate*100, metrics.RecommendedBetSize, metrics.MaxBetSize)

	if metrics.StopLossTriggered {
		fmt.Fprintln(c.out, "  !! STOP LOSS ACTIVO — sesión bloqueada")
	}
	if metrics.TakeProfitTriggered {
		fmt.Fprintln(c.out, "  >> TAKE PROFIT ALCANZADO — sesión bloqueada")
	}
	fmt.Fprintln(c.out)
}

// --- helpers ---

// betLabel resume la sugerencia de apuesta de una señal.
func betLabel(sig domain.Signal) string {
	if sig.PredictedColor != "" {
		return string(sig.PredictedColor)
	}
	if len(sig.SuggestedNumbers) > 0 {
		numbers := make([]string, 0, len(sig.SuggestedNumbers))
		for _, n := range sig.SuggestedNumbers {
			numbers = append(numbers, fmt.Sprintf("%d", n))
		}
		return strings.Join(numbers, ",")
	}
	return "-"
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
