package domain

import "fmt"

// Sector es uno de los tres sectores tradicionales de la rueda europea.
type Sector string

const (
	SectorVoisins   Sector = "voisins"
	SectorTiers     Sector = "tiers"
	SectorOrphelins Sector = "orphelins"
)

// SectorNumbers define qué números pertenecen a cada sector físico.
// Cardinalidades: voisins 17, tiers 12, orphelins 8 (17+12+8 = 37).
// Es configuración estática, no código: ValidateWheelLayout comprueba
// en arranque que la unión cubre exactamente los 37 números sin duplicados.
var SectorNumbers = map[Sector][]int{
	SectorVoisins:   {22, 18, 29, 7, 28, 12, 35, 3, 26, 0, 32, 15, 19, 4, 21, 2, 25},
	SectorTiers:     {27, 13, 36, 11, 30, 8, 23, 10, 5, 24, 16, 33},
	SectorOrphelins: {17, 34, 6, 1, 20, 14, 31, 9},
}

// SectorDisplayName es el nombre presentable de cada sector.
var SectorDisplayName = map[Sector]string{
	SectorVoisins:   "Voisins du Zéro",
	SectorTiers:     "Tiers du Cylindre",
	SectorOrphelins: "Orphelins",
}

// WheelOrder es el orden físico de los números en la rueda europea,
// empezando por el 0 y girando en sentido horario.
var WheelOrder = []int{
	0, 32, 15, 19, 4, 21, 2, 25, 17, 34, 6, 27, 13, 36, 11, 30, 8, 23, 10, 5,
	24, 16, 33, 1, 20, 14, 31, 9, 22, 18, 29, 7, 28, 12, 35, 3, 26,
}

// WheelSlots es el número de posiciones físicas de la rueda.
const WheelSlots = 37

// wheelPosition mapea número → posición física, construido desde WheelOrder.
var wheelPosition = func() map[int]int {
	m := make(map[int]int, len(WheelOrder))
	for pos, num := range WheelOrder {
		m[num] = pos
	}
	return m
}()

// WheelPosition devuelve la posición física de un número en la rueda.
// ok=false si el número no pertenece a la rueda (p.ej. un roll del Double).
func WheelPosition(number int) (int, bool) {
	pos, ok := wheelPosition[number]
	return pos, ok
}

// SectorOf devuelve el sector al que pertenece un número de la rueda.
func SectorOf(number int) (Sector, bool) {
	for sector, numbers := range SectorNumbers {
		for _, n := range numbers {
			if n == number {
				return sector, true
			}
		}
	}
	return "", false
}

// CircularDistance calcula la distancia circular entre dos posiciones
// físicas de la rueda: min(|Δ|, 37-|Δ|).
func CircularDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if alt := WheelSlots - d; alt < d {
		return alt
	}
	return d
}

// ValidateWheelLayout comprueba la consistencia de las tablas estáticas:
// la unión de los tres sectores debe ser exactamente los 37 números de la
// rueda, sin duplicados, y WheelOrder debe contener cada número una vez.
// Debe llamarse una vez en arranque; un error aquí es un bug de las tablas.
func ValidateWheelLayout() error {
	seen := make(map[int]Sector, WheelSlots)
	for sector, numbers := range SectorNumbers {
		for _, n := range numbers {
			if n < 0 || n > WheelMaxNumber {
				return fmt.Errorf("domain.ValidateWheelLayout: número %d fuera de rango en sector %s", n, sector)
			}
			if prev, dup := seen[n]; dup {
				return fmt.Errorf("domain.ValidateWheelLayout: número %d duplicado en sectores %s y %s", n, prev, sector)
			}
			seen[n] = sector
		}
	}
	if len(seen) != WheelSlots {
		return fmt.Errorf("domain.ValidateWheelLayout: los sectores cubren %d/%d números", len(seen), WheelSlots)
	}

	if len(WheelOrder) != WheelSlots {
		return fmt.Errorf("domain.ValidateWheelLayout: WheelOrder tiene %d posiciones, esperadas %d", len(WheelOrder), WheelSlots)
	}
	if len(wheelPosition) != WheelSlots {
		return fmt.Errorf("domain.ValidateWheelLayout: WheelOrder contiene números repetidos")
	}
	return nil
}
