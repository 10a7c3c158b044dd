package mrz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	t.Run("parses YYMMDD", func(t *testing.T) {
		d := parseDate("740812")
		require.Equal(t, Date{Year: 74, Month: 8, Day: 12}, d)
		require.True(t, d.Valid())
		require.Equal(t, "740812", d.YYMMDD())
		require.Equal(t, "{12/8/74}", d.String())
	})

	t.Run("unreadable components are negative", func(t *testing.T) {
		d := parseDate("74O812")
		require.Equal(t, -1, d.Month)
		require.False(t, d.Valid())
	})

	t.Run("wrong length is invalid", func(t *testing.T) {
		require.False(t, parseDate("7408").Valid())
	})

	t.Run("calendar validation", func(t *testing.T) {
		require.False(t, parseDate("741301").Valid())
		require.False(t, parseDate("740431").Valid())
		require.False(t, parseDate("740800").Valid())
		require.True(t, parseDate("000229").Valid())
		require.True(t, parseDate("960229").Valid())
		require.False(t, parseDate("970229").Valid())
	})

	t.Run("birth dates are never in the future", func(t *testing.T) {
		birth, err := parseDate("740812").BirthTime()
		require.NoError(t, err)
		require.Equal(t, 1974, birth.Year())
		require.True(t, birth.Before(time.Now()))
	})

	t.Run("invalid dates have no time", func(t *testing.T) {
		_, err := parseDate("741301").BirthTime()
		require.Error(t, err)
		_, err = parseDate("741301").ExpiryTime()
		require.Error(t, err)
	})
}
