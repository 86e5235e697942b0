package domain

import "time"

// Color es el color asociado a un resultado de la ruleta.
type Color string

const (
	ColorRed   Color = "red"
	ColorBlack Color = "black"
	ColorWhite Color = "white"
)

// DoubleMaxNumber es el número más alto del juego Double (0-14).
const DoubleMaxNumber = 14

// WheelMaxNumber es el número más alto de la rueda europea (0-36).
const WheelMaxNumber = 36

// ColorForRoll deriva el color de un número del juego Double:
// 0 = blanco, 1-7 = rojo, 8-14 = negro.
func ColorForRoll(n int) Color {
	switch {
	case n == 0:
		return ColorWhite
	case n >= 1 && n <= 7:
		return ColorRed
	default:
		return ColorBlack
	}
}

// ParseColor valida un color recibido de fuera (feed manual, DB).
// Devuelve "" si el string no es un color conocido.
func ParseColor(s string) Color {
	switch Color(s) {
	case ColorRed, ColorBlack, ColorWhite:
		return Color(s)
	}
	return ""
}

// OutcomeRecord es un giro de la ruleta. Inmutable una vez creado:
// todos los componentes del core lo consumen de solo lectura.
type OutcomeRecord struct {
	Number    int   `json:"number"`
	Color     Color `json:"color"`
	Timestamp int64 `json:"timestamp"` // unix seconds
}

// Time devuelve el timestamp como time.Time.
func (r OutcomeRecord) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// InDoubleRange indica si el número pertenece al juego Double (0-14).
func (r OutcomeRecord) InDoubleRange() bool {
	return r.Number >= 0 && r.Number <= DoubleMaxNumber
}

// InWheelRange indica si el número pertenece a la rueda europea (0-36).
func (r OutcomeRecord) InWheelRange() bool {
	return r.Number >= 0 && r.Number <= WheelMaxNumber
}

// History es la secuencia canónica de resultados en orden cronológico
// ascendente: History[0] es el más viejo, History[len-1] el más reciente.
//
// El engine de backtest consume el slice ascendente tal cual. Los detectores
// estadísticos asumen la convención opuesta (el más reciente primero), así
// que SIEMPRE deben pasar por Recent(n) o NewestFirst() en lugar de indexar
// el slice directamente.
type History []OutcomeRecord

// Last devuelve el resultado más reciente. ok=false si no hay datos.
func (h History) Last() (OutcomeRecord, bool) {
	if len(h) == 0 {
		return OutcomeRecord{}, false
	}
	return h[len(h)-1], true
}

// Recent devuelve una copia de los últimos n resultados con el más
// reciente en la posición 0. Si n > len, devuelve todo el histórico.
func (h History) Recent(n int) []OutcomeRecord {
	if n > len(h) {
		n = len(h)
	}
	out := make([]OutcomeRecord, n)
	for i := 0; i < n; i++ {
		out[i] = h[len(h)-1-i]
	}
	return out
}

// NewestFirst devuelve una copia completa con el más reciente primero.
func (h History) NewestFirst() []OutcomeRecord {
	return h.Recent(len(h))
}

// FilterByRange devuelve los resultados cuyo timestamp cae en [from, to].
// Un límite en cero se ignora.
func (h History) FilterByRange(from, to time.Time) History {
	out := make(History, 0, len(h))
	for _, r := range h {
		t := r.Time()
		if !from.IsZero() && t.Before(from) {
			continue
		}
		if !to.IsZero() && t.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}
