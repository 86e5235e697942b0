package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adnavarro/rouletbot/internal/domain"
)

func TestValidateWheelLayout(t *testing.T) {
	assert.NoError(t, domain.ValidateWheelLayout())
}

func TestSectorCardinalities(t *testing.T) {
	assert.Len(t, domain.SectorNumbers[domain.SectorVoisins], 17)
	assert.Len(t, domain.SectorNumbers[domain.SectorTiers], 12)
	assert.Len(t, domain.SectorNumbers[domain.SectorOrphelins], 8)
}

func TestSectorOf(t *testing.T) {
	sector, ok := domain.SectorOf(0)
	require.True(t, ok)
	assert.Equal(t, domain.SectorVoisins, sector)

	sector, ok = domain.SectorOf(27)
	require.True(t, ok)
	assert.Equal(t, domain.SectorTiers, sector)

	sector, ok = domain.SectorOf(17)
	require.True(t, ok)
	assert.Equal(t, domain.SectorOrphelins, sector)

	_, ok = domain.SectorOf(99)
	assert.False(t, ok)
}

func TestWheelPosition(t *testing.T) {
	pos, ok := domain.WheelPosition(0)
	require.True(t, ok)
	assert.Equal(t, 0, pos)

	pos, ok = domain.WheelPosition(32)
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	pos, ok = domain.WheelPosition(26)
	require.True(t, ok)
	assert.Equal(t, 36, pos)

	_, ok = domain.WheelPosition(40)
	assert.False(t, ok)
}

func TestCircularDistance(t *testing.T) {
	assert.Equal(t, 0, domain.CircularDistance(5, 5))
	assert.Equal(t, 3, domain.CircularDistance(2, 5))
	// La distancia cruza el cero: 36 → 1 son 2 posiciones
	assert.Equal(t, 2, domain.CircularDistance(36, 1))
	assert.Equal(t, 18, domain.CircularDistance(0, 18))
	// Nunca supera la mitad de la rueda
	assert.Equal(t, 17, domain.CircularDistance(0, 20))
}
