package mrz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("empty input fails", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "\n\t\n"} {
			_, err := Normalize(raw)
			require.ErrorIs(t, err, ErrEmptyMrz)
		}
	})

	t.Run("input without legal characters normalizes to nothing", func(t *testing.T) {
		result, err := Normalize("hello world")
		require.NoError(t, err)
		require.Empty(t, result)
	})

	t.Run("prefix rewrite exposing a filler glyph", func(t *testing.T) {
		result, err := Normalize("PKK<UTOERIKSSON")
		require.NoError(t, err)
		require.Equal(t, "P<<<UTOERIKSSON", result)
	})

	t.Run("strips leading noise and whitespace", func(t *testing.T) {
		result, err := Normalize("xx12 " + "P<UTO ERIKSSON<<ANNA\r\n\n\nL898")
		require.NoError(t, err)
		require.Equal(t, "P<UTOERIKSSON<<ANNA\nL898", result)
	})

	t.Run("rewrites filler glyphs", func(t *testing.T) {
		result, err := Normalize("P<UTOANNA<K<K<«<c<")
		require.NoError(t, err)
		require.Equal(t, "P<UTOANNA<<<<<<<<<", result)
	})

	t.Run("rewrites misread passport prefix", func(t *testing.T) {
		result, err := Normalize("PKUTOERIKSSON")
		require.NoError(t, err)
		require.Equal(t, "P<UTOERIKSSON", result)

		result, err = Normalize("PCUTOERIKSSON")
		require.NoError(t, err)
		require.Equal(t, "P<UTOERIKSSON", result)
	})

	t.Run("drops characters outside the alphabet", func(t *testing.T) {
		result, err := Normalize("P<UTO.ERIK$SSON")
		require.NoError(t, err)
		require.Equal(t, "P<UTOERIKSSON", result)
	})
}

func TestReconstruct(t *testing.T) {
	t.Run("two lines are a passport", func(t *testing.T) {
		format, text, err := Reconstruct(td3Mrz)
		require.NoError(t, err)
		require.Equal(t, FormatPassport, format)
		require.Equal(t, td3Mrz, text)
	})

	t.Run("three lines are a TD1", func(t *testing.T) {
		format, text, err := Reconstruct(td1Mrz)
		require.NoError(t, err)
		require.Equal(t, FormatTD1, format)
		require.Equal(t, td1Mrz, text)
	})

	t.Run("long text is truncated", func(t *testing.T) {
		_, text, err := Reconstruct(td3Mrz + "<<<<")
		require.NoError(t, err)
		require.Equal(t, td3Mrz, text)

		_, text, err = Reconstruct(td1Mrz + "XYZ")
		require.NoError(t, err)
		require.Equal(t, td1Mrz, text)
	})

	t.Run("split passport lines are rejoined", func(t *testing.T) {
		all := td3Line1 + td3Line2
		split := strings.Join([]string{all[:20], all[20:40], all[40:60], all[60:80], all[80:]}, "\n")
		format, text, err := Reconstruct(split)
		require.NoError(t, err)
		require.Equal(t, FormatPassport, format)
		require.Equal(t, td3Mrz, text)
	})

	t.Run("short split passport is left alone", func(t *testing.T) {
		_, _, err := Reconstruct("P<UTO\nERIKSSON\n<<ANNA\nL898")
		require.ErrorIs(t, err, ErrInvalidLineCount)
	})

	t.Run("four lines are rejected", func(t *testing.T) {
		_, _, err := Reconstruct("I<UTO\nD231458907\n<<<<<\nERIKSSON")
		require.ErrorIs(t, err, ErrInvalidLineCount)
	})

	t.Run("unrecognized shapes are rejected", func(t *testing.T) {
		for _, text := range []string{"", "PUTOERIKSSON\nANNA", "X<UTO\nERIKSSON", "<<<\n<<<"} {
			_, _, err := Reconstruct(text)
			require.ErrorIs(t, err, ErrUnrecognizedMrzShape, text)
		}
	})
}

func TestCleanWithoutMrzStart(t *testing.T) {
	for _, raw := range []string{"hello world 123", "xyz", "12345"} {
		_, err := Clean(raw)
		require.ErrorIs(t, err, ErrUnrecognizedMrzShape, raw)
		require.Equal(t, "unrecognized_mrz_shape", KindOf(err))
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		td3Mrz,
		td1Mrz,
		td3Line1 + td3Line2,
		"P<UTOERIKSSON<<ANNA<K<K<MARIA<<<<<<<<<<<<<<<\n" + td3Line2,
		"PKK<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<\n" + td3Line2,
		"PCC<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<\n" + td3Line2,
	}
	for _, input := range inputs {
		once, err := Clean(input)
		require.NoError(t, err)
		twice, err := Clean(once)
		require.NoError(t, err)
		require.Equal(t, once, twice)
	}
}
