package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDateFromCellNumeric(t *testing.T) {
	t.Parallel()

	got, ok := DateFromCell("śr., 11/02/2026 - 14:42")
	require.True(t, ok)
	require.Equal(t, "śr., 11/02/2026 - 14:42", got, "cell text is preserved as-is")

	_, ok = DateFromCell("Referat Organizacyjny")
	require.False(t, ok)
}

func TestDateFromCellPolishMonth(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"10 lut 2026", "3 października 2026", "28 PAŹ 2026"} {
		got, ok := DateFromCell(text)
		require.True(t, ok, text)
		require.Equal(t, text, got)
	}
}

func TestDateFromCellRejectsLongText(t *testing.T) {
	t.Parallel()

	long := "Ogłoszenie z dnia 11/02/2026 " + strings.Repeat("bardzo ", 20) + "długie"
	_, ok := DateFromCell(long)
	require.False(t, ok)
}

func TestDateFromBlock(t *testing.T) {
	t.Parallel()

	text := "Obwieszczenie Burmistrza\nDodano: 10 lut 2026, 12:34 przez administratora"
	got, ok := DateFromBlock(text)
	require.True(t, ok)
	require.Equal(t, "10 lut 2026, 12:34", got)

	_, ok = DateFromBlock("Obwieszczenie bez daty")
	require.False(t, ok)
}
