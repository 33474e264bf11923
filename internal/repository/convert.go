package repository

import (
	"database/sql"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Amounts are stored as NUMERIC(78,0) and travel as decimal strings.
func numeric(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

func parseNumeric(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid numeric %q", s)
	}
	return v, nil
}

func nullAddress(a *common.Address) sql.NullString {
	if a == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: a.Hex(), Valid: true}
}

func parseNullAddress(s sql.NullString) (*common.Address, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	if !common.IsHexAddress(s.String) {
		return nil, errors.Errorf("invalid address %q", s.String)
	}
	addr := common.HexToAddress(s.String)
	return &addr, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
