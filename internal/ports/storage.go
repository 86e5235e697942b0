package ports

import (
	"context"
	"time"

	"github.com/adnavarro/rouletbot/internal/domain"
)

// Storage persiste los resultados de la ruleta y las señales emitidas.
type Storage interface {
	// SaveOutcome persiste un giro de la ruleta.
	SaveOutcome(ctx context.Context, record domain.OutcomeRecord) error

	// GetRecent devuelve los últimos n resultados en orden cronológico
	// ascendente (el formato canónico de domain.History).
	GetRecent(ctx context.Context, n int) (domain.History, error)

	// GetRange devuelve los resultados cuyo timestamp cae en [from, to].
	GetRange(ctx context.Context, from, to time.Time) (domain.History, error)

	// SaveSignal registra una señal emitida, para auditoría posterior.
	SaveSignal(ctx context.Context, signal domain.Signal) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
