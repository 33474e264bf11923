// Package units converts between wei amounts and human readable decimal
// strings.
package units

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const Decimals = 18

// FormatWei renders v as a decimal with 18 fractional digits trimmed, e.g.
// 1500000000000000000 -> "1.5".
func FormatWei(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -Decimals).String()
}

// ParseEther parses a decimal unit string such as "0.5" into wei. More than
// 18 fractional digits or a negative value is rejected.
func ParseEther(s string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	wei := d.Shift(Decimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("amount %q has more than %d decimals", s, Decimals)
	}
	out, overflow := uint256.FromBig(wei.BigInt())
	if overflow {
		return nil, fmt.Errorf("amount %q overflows 256 bits", s)
	}
	return out, nil
}

// ToFloat converts wei to a float unit amount for gauges and logs. Precision
// loss is acceptable there.
func ToFloat(v *uint256.Int) float64 {
	if v == nil {
		return 0
	}
	return decimal.NewFromBigInt(v.ToBig(), -Decimals).InexactFloat64()
}
