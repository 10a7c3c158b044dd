package mrz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeCheckDigit(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"L898902C3", 6},
		{"740812", 2},
		{"120415", 9},
		{"ZE184226B<<<<<", 1},
		{"D23145890", 7},
		{"<<<<<<", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, ComputeCheckDigit(tt.input))
		})
	}
}

func TestVerifyCheckDigit(t *testing.T) {
	t.Run("matching digit verifies", func(t *testing.T) {
		require.True(t, VerifyCheckDigit("740812", '2'))
	})

	t.Run("filler is read as zero", func(t *testing.T) {
		require.True(t, VerifyCheckDigit("<<<<<<<<<<<<<<", '<'))
		require.False(t, VerifyCheckDigit("740812", '<'))
	})

	t.Run("every stored digit but the computed one fails", func(t *testing.T) {
		computed := ComputeCheckDigit("L898902C3")
		for d := 0; d <= 9; d++ {
			require.Equal(t, d == computed, VerifyCheckDigit("L898902C3", byte('0'+d)), "digit %d", d)
		}
	})

	t.Run("single character mutation breaks the check", func(t *testing.T) {
		field := "L898902C3"
		stored := byte('0' + ComputeCheckDigit(field))
		for i := range field {
			mutated := []byte(field)
			if mutated[i] == 'X' {
				mutated[i] = 'Y'
			} else {
				mutated[i] = 'X'
			}
			if ComputeCheckDigit(string(mutated)) == ComputeCheckDigit(field) {
				continue
			}
			require.False(t, VerifyCheckDigit(string(mutated), stored), "position %d", i)
		}
	})
}
