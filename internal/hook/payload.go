package hook

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const wordSize = 32

var ErrMalformedPayload = errors.New("malformed hook payload")

var (
	addressType, _ = abi.NewType("address", "", nil)

	userArgs     = abi.Arguments{{Name: "user", Type: addressType}}
	referralArgs = abi.Arguments{{Name: "user", Type: addressType}, {Name: "referrer", Type: addressType}}
)

// Payload is the decoded hook data. A zero value means no identities.
type Payload struct {
	User     *common.Address
	Referrer *common.Address
}

func (p Payload) Empty() bool {
	return p.User == nil
}

// DecodePayload parses abi.encode(address) or abi.encode(address,address).
// An empty payload decodes to an empty Payload without error.
func DecodePayload(data []byte) (Payload, error) {
	var args abi.Arguments
	switch len(data) {
	case 0:
		return Payload{}, nil
	case wordSize:
		args = userArgs
	case 2 * wordSize:
		args = referralArgs
	default:
		return Payload{}, fmt.Errorf("%w: length %d", ErrMalformedPayload, len(data))
	}

	for off := 0; off < len(data); off += wordSize {
		for _, b := range data[off : off+wordSize-common.AddressLength] {
			if b != 0 {
				return Payload{}, fmt.Errorf("%w: dirty address padding in word %d", ErrMalformedPayload, off/wordSize)
			}
		}
	}

	values, err := args.Unpack(data)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var p Payload
	user, ok := values[0].(common.Address)
	if !ok {
		return Payload{}, fmt.Errorf("%w: unexpected user type %T", ErrMalformedPayload, values[0])
	}
	p.User = &user
	if len(values) > 1 {
		ref, ok := values[1].(common.Address)
		if !ok {
			return Payload{}, fmt.Errorf("%w: unexpected referrer type %T", ErrMalformedPayload, values[1])
		}
		p.Referrer = &ref
	}
	return p, nil
}

// EncodePayload builds the hook data the pool engine forwards. A nil
// referrer produces the single-identity form.
func EncodePayload(user common.Address, referrer *common.Address) ([]byte, error) {
	if referrer == nil {
		return userArgs.Pack(user)
	}
	return referralArgs.Pack(user, *referrer)
}
