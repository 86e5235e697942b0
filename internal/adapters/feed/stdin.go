// Package feed contiene los adapters de entrada de giros de la ruleta.
package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/adnavarro/rouletbot/internal/domain"
)

// Stdin implementa ports.OutcomeFeed leyendo líneas de un reader (por
// defecto la entrada estándar). Cada línea es `number` o `number,color`;
// sin color explícito se deriva del número con la tabla del Double.
// Las líneas vacías y los comentarios (#) se ignoran; las líneas
// malformadas se saltan y se reportan, no abortan el feed.
type Stdin struct {
	scanner *bufio.Scanner

	// now es inyectable en tests para fijar timestamps.
	now func() time.Time
}

// NewStdin crea el feed sobre el reader dado.
func NewStdin(r io.Reader) *Stdin {
	return &Stdin{
		scanner: bufio.NewScanner(r),
		now:     time.Now,
	}
}

// Next devuelve el siguiente giro válido. io.EOF cuando el reader se agota.
func (f *Stdin) Next(ctx context.Context) (domain.OutcomeRecord, error) {
	for f.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return domain.OutcomeRecord{}, err
		}

		line := strings.TrimSpace(f.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		record, err := parseLine(line, f.now())
		if err != nil {
			// Registro malformado: se salta, el feed sigue vivo.
			slog.Warn("línea ignorada", "err", err)
			continue
		}
		return record, nil
	}

	if err := f.scanner.Err(); err != nil {
		return domain.OutcomeRecord{}, fmt.Errorf("feed.Next: %w", err)
	}
	return domain.OutcomeRecord{}, io.EOF
}

// parseLine interpreta `number` o `number,color`.
func parseLine(line string, at time.Time) (domain.OutcomeRecord, error) {
	parts := strings.SplitN(line, ",", 2)

	number, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.OutcomeRecord{}, fmt.Errorf("número inválido %q", parts[0])
	}
	if number < 0 || number > domain.WheelMaxNumber {
		return domain.OutcomeRecord{}, fmt.Errorf("número fuera de rango: %d", number)
	}

	var color domain.Color
	if len(parts) == 2 {
		color = domain.ParseColor(strings.TrimSpace(strings.ToLower(parts[1])))
		if color == "" {
			return domain.OutcomeRecord{}, fmt.Errorf("color inválido %q", parts[1])
		}
	} else if number <= domain.DoubleMaxNumber {
		color = domain.ColorForRoll(number)
	} else {
		return domain.OutcomeRecord{}, fmt.Errorf("número %d fuera del Double requiere color explícito", number)
	}

	return domain.OutcomeRecord{
		Number:    number,
		Color:     color,
		Timestamp: at.Unix(),
	}, nil
}
