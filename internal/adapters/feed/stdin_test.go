package feed_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adnavarro/rouletbot/internal/adapters/feed"
	"github.com/adnavarro/rouletbot/internal/domain"
)

func TestStdin_ParsesNumbersAndColors(t *testing.T) {
	input := strings.Join([]string{
		"# comentario",
		"3",
		"",
		"10",
		"0",
		"25, red",
	}, "\n")
	f := feed.NewStdin(strings.NewReader(input))
	ctx := context.Background()

	r, err := f.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Number)
	assert.Equal(t, domain.ColorRed, r.Color)

	r, err = f.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, r.Number)
	assert.Equal(t, domain.ColorBlack, r.Color)

	r, err = f.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Number)
	assert.Equal(t, domain.ColorWhite, r.Color)

	// Número de la rueda (fuera del Double) con color explícito
	r, err = f.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, r.Number)
	assert.Equal(t, domain.ColorRed, r.Color)

	_, err = f.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestStdin_SkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"abc",      // no numérico
		"99",       // fuera de rango
		"5, verde", // color desconocido
		"20",       // fuera del Double sin color explícito
		"7",        // válido
	}, "\n")
	f := feed.NewStdin(strings.NewReader(input))

	r, err := f.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, r.Number)
}

func TestStdin_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := feed.NewStdin(strings.NewReader("3\n"))
	_, err := f.Next(ctx)
	assert.Error(t, err)
}
