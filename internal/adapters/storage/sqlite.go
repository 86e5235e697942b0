package storage

// sqlite.go — persistencia de giros y señales.
//
// Estrategia:
//   - `outcomes`: una fila por giro. Es la fuente del histórico que consumen
//     los detectores y el backtest.
//   - `signals`: una fila por señal emitida, como registro de auditoría
//     (qué sugirió el sistema y cuándo). No se leen de vuelta en el flujo
//     normal.
//   - Prune automático al arrancar: outcomes > 90d, signals > 30d.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/adnavarro/rouletbot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Un giro de la ruleta por fila
CREATE TABLE IF NOT EXISTS outcomes (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    number    INTEGER NOT NULL,
    color     TEXT    NOT NULL,
    timestamp INTEGER NOT NULL
);

-- Señales emitidas, para auditoría
CREATE TABLE IF NOT EXISTS signals (
    id                TEXT PRIMARY KEY,
    kind              TEXT NOT NULL,
    confidence        REAL NOT NULL,
    priority          REAL NOT NULL,
    predicted_color   TEXT,
    suggested_numbers TEXT,
    rationale         TEXT,
    evidence          TEXT,
    created_at        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_ts  ON outcomes(timestamp);
CREATE INDEX IF NOT EXISTS idx_signals_at   ON signals(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_signals_kind ON signals(kind);
`

const (
	retentionOutcomes = 90 * 24 * time.Hour // giros: 90 días
	retentionSignals  = 30 * 24 * time.Hour // señales: 30 días
)

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveOutcome persiste un giro.
func (s *SQLiteStorage) SaveOutcome(ctx context.Context, record domain.OutcomeRecord) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (number, color, timestamp) VALUES (?, ?, ?)`,
		record.Number, string(record.Color), record.Timestamp,
	); err != nil {
		return fmt.Errorf("storage.SaveOutcome: %w", err)
	}
	return nil
}

// GetRecent devuelve los últimos n giros en orden cronológico ascendente.
func (s *SQLiteStorage) GetRecent(ctx context.Context, n int) (domain.History, error) {
	// La subconsulta recorta por id descendente (los últimos insertados) y
	// el SELECT externo restaura el orden ascendente del histórico.
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, color, timestamp FROM (
			SELECT id, number, color, timestamp
			FROM outcomes
			ORDER BY id DESC
			LIMIT ?
		)
		ORDER BY id ASC
	`, n)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRecent: query: %w", err)
	}
	defer rows.Close()

	return scanOutcomes(rows)
}

// GetRange devuelve los giros cuyo timestamp cae en [from, to], ascendente.
func (s *SQLiteStorage) GetRange(ctx context.Context, from, to time.Time) (domain.History, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, color, timestamp
		FROM outcomes
		WHERE timestamp BETWEEN ? AND ?
		ORDER BY timestamp ASC, id ASC
	`, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("storage.GetRange: query: %w", err)
	}
	defer rows.Close()

	return scanOutcomes(rows)
}

// SaveSignal registra una señal emitida.
func (s *SQLiteStorage) SaveSignal(ctx context.Context, signal domain.Signal) error {
	evidence, err := json.Marshal(signal.Evidence)
	if err != nil {
		return fmt.Errorf("storage.SaveSignal: marshal evidence: %w", err)
	}

	numbers := make([]string, len(signal.SuggestedNumbers))
	for i, n := range signal.SuggestedNumbers {
		numbers[i] = fmt.Sprintf("%d", n)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO signals
			(id, kind, confidence, priority, predicted_color,
			 suggested_numbers, rationale, evidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		signal.ID,
		string(signal.Kind),
		signal.Confidence,
		signal.Priority,
		string(signal.PredictedColor),
		strings.Join(numbers, ","),
		signal.Rationale,
		string(evidence),
		signal.CreatedAt.Unix(),
	); err != nil {
		return fmt.Errorf("storage.SaveSignal: insert %s: %w", signal.ID, err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func scanOutcomes(rows *sql.Rows) (domain.History, error) {
	var history domain.History
	for rows.Next() {
		var r domain.OutcomeRecord
		var color string
		if err := rows.Scan(&r.Number, &color, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("storage: scan row: %w", err)
		}
		r.Color = domain.Color(color)
		history = append(history, r)
	}
	return history, rows.Err()
}

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoffOutcomes := time.Now().UTC().Add(-retentionOutcomes)
	cutoffSignals := time.Now().UTC().Add(-retentionSignals)
	s.db.ExecContext(ctx, `DELETE FROM outcomes WHERE timestamp < ?`, cutoffOutcomes.Unix())
	s.db.ExecContext(ctx, `DELETE FROM signals WHERE created_at < ?`, cutoffSignals.Unix())
}
