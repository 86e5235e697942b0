package ports

import (
	"context"

	"github.com/adnavarro/rouletbot/internal/domain"
)

// Notifier presenta las señales detectadas al usuario.
type Notifier interface {
	// Notify muestra las señales ordenadas por prioridad.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, signals []domain.Signal) error
}
