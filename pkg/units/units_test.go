package units

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatWei(t *testing.T) {
	tests := []struct {
		name string
		in   *uint256.Int
		want string
	}{
		{name: "nil", in: nil, want: "0"},
		{name: "zero", in: uint256.NewInt(0), want: "0"},
		{name: "one unit", in: uint256.NewInt(1_000_000_000_000_000_000), want: "1"},
		{name: "fraction", in: uint256.NewInt(1_500_000_000_000_000_000), want: "1.5"},
		{name: "one wei", in: uint256.NewInt(1), want: "0.000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatWei(tt.in))
		})
	}
}

func TestParseEther(t *testing.T) {
	v, err := ParseEther("0.5")
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(500_000_000_000_000_000), v)

	v, err = ParseEther("10")
	require.NoError(t, err)
	assert.Equal(t, "10000000000000000000", v.Dec())

	_, err = ParseEther("-1")
	assert.Error(t, err)

	_, err = ParseEther("0.0000000000000000001")
	assert.Error(t, err)

	_, err = ParseEther("abc")
	assert.Error(t, err)
}

func TestToFloat(t *testing.T) {
	assert.Equal(t, 0.0, ToFloat(nil))
	assert.InDelta(t, 2.5, ToFloat(uint256.NewInt(2_500_000_000_000_000_000)), 1e-12)
}
