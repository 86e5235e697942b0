package ports

import (
	"context"

	"github.com/adnavarro/rouletbot/internal/domain"
)

// OutcomeFeed entrega giros de la ruleta uno a uno. Next bloquea hasta que
// llega el siguiente resultado, el contexto se cancela o el feed se agota
// (io.EOF).
type OutcomeFeed interface {
	Next(ctx context.Context) (domain.OutcomeRecord, error)
}
