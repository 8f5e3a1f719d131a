package contract

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/KSimonJNR/paystream/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// FieldPrime is the Starknet field modulus P = 2^251 + 17*2^192 + 1.
var FieldPrime = func() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 251)
	p.Add(p, new(big.Int).Lsh(big.NewInt(17), 192))
	return p.Add(p, big.NewInt(1))
}()

// ParseFelt parses a 0x-prefixed hex or a decimal field element.
// Leading zeros are allowed since addresses are usually zero padded.
func ParseFelt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &types.Error{
			Code:    types.ErrInvalidArgument,
			Message: "felt value is empty",
		}
	}

	base, digits := 10, s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, digits = 16, s[2:]
	}

	v, ok := new(big.Int).SetString(digits, base)
	if !ok || digits == "" || v.Sign() < 0 {
		return nil, &types.Error{
			Code:    types.ErrInvalidArgument,
			Message: fmt.Sprintf("invalid felt %q", s),
		}
	}
	if v.Cmp(FieldPrime) >= 0 {
		return nil, &types.Error{
			Code:    types.ErrInvalidArgument,
			Message: fmt.Sprintf("felt %q is not below the field prime", s),
		}
	}

	return v, nil
}

// FormatFelt returns the minimal 0x-hex form used on the Starknet JSON-RPC wire.
func FormatFelt(v *big.Int) string {
	if v == nil {
		return "0x0"
	}
	return hexutil.EncodeBig(v)
}

// ParseAddress parses a contract address felt.
func ParseAddress(s string) (*big.Int, error) {
	v, err := ParseFelt(s)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	return v, nil
}

// NormalizeAddress returns the minimal hex form of an address, so two
// spellings of the same address compare equal.
func NormalizeAddress(s string) (string, error) {
	v, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return FormatFelt(v), nil
}

var selectorMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

// Selector returns the entry point selector of a function name:
// keccak256(name) truncated to 250 bits.
func Selector(name string) *big.Int {
	h := new(big.Int).SetBytes(crypto.Keccak256([]byte(name)))
	return h.And(h, selectorMask)
}

// SelectorHex returns Selector(name) in wire form.
func SelectorHex(name string) string {
	return FormatFelt(Selector(name))
}
