// Package amount converts user entered decimal amounts into the fixed point
// integers and 128-bit limb pairs expected by Starknet u256 arguments.
package amount

import (
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/KSimonJNR/paystream/types"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const (
	// DefaultDecimals is the precision of ERC20 style tokens.
	DefaultDecimals = 18

	// MaxDecimals bounds the precision; ERC20 decimals() is a u8.
	MaxDecimals = 255
)

var (
	ErrEmptyInput = &types.Error{
		Code:    types.ErrEmptyInput,
		Message: "amount required",
	}
	ErrNotANumber = &types.Error{
		Code:    types.ErrNotANumber,
		Message: "amount is not a number",
	}
	ErrTooManyDecimals = &types.Error{
		Code:    types.ErrTooManyDecimals,
		Message: "too many decimal places",
	}
	ErrInvalidDecimals = &types.Error{
		Code:    types.ErrInvalidDecimals,
		Message: "invalid decimal precision",
	}
	ErrAmountOutOfRange = &types.Error{
		Code:    types.ErrAmountOutOfRange,
		Message: "amount does not fit in u256",
	}
)

var amountPattern = regexp.MustCompile(`^\d*(\.\d+)?$`)

// ParseAmount converts a decimal string into an integer scaled by 10^decimals.
// Fractional digits beyond decimals are rejected, never truncated.
func ParseAmount(input string, decimals int) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, &types.Error{
			Code:    types.ErrInvalidDecimals,
			Message: fmt.Sprintf("invalid decimal precision %d", decimals),
		}
	}

	s := strings.TrimSpace(input)
	if s == "" {
		return nil, ErrEmptyInput
	}

	if !amountPattern.MatchString(s) {
		return nil, &types.Error{
			Code:    types.ErrNotANumber,
			Message: fmt.Sprintf("amount %q is not a number", s),
		}
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if len(fracPart) > decimals {
		return nil, &types.Error{
			Code:    types.ErrTooManyDecimals,
			Message: fmt.Sprintf("too many decimal places: %d, at most %d allowed", len(fracPart), decimals),
		}
	}

	if intPart == "" {
		intPart = "0"
	}
	if fracPart != "" {
		intPart += "." + fracPart
	}

	dec, err := decimal.NewFromString(intPart)
	if err != nil {
		return nil, &types.Error{
			Code:    types.ErrNotANumber,
			Message: fmt.Sprintf("amount %q is not a number: %v", s, err),
		}
	}

	// exact: the fractional part has at most decimals digits
	return dec.Shift(int32(decimals)).BigInt(), nil
}

// ParseAmountDefault parses with DefaultDecimals.
func ParseAmountDefault(input string) (*big.Int, error) {
	return ParseAmount(input, DefaultDecimals)
}

// FormatAmount renders a scaled integer as a decimal string without trailing zeros.
func FormatAmount(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}

// U256 is the two limb representation of a 256-bit unsigned integer:
// value == Low + High * 2^128.
type U256 struct {
	Low  *big.Int
	High *big.Int
}

// ToTwoLimbs splits value into its low and high 128-bit limbs.
// Values outside [0, 2^256) are rejected rather than truncated.
func ToTwoLimbs(value *big.Int) (U256, error) {
	if value == nil || value.Sign() < 0 {
		return U256{}, ErrAmountOutOfRange
	}

	v, overflow := uint256.FromBig(value)
	if overflow {
		return U256{}, &types.Error{
			Code:    types.ErrAmountOutOfRange,
			Message: fmt.Sprintf("amount needs %d bits, u256 holds 256", value.BitLen()),
		}
	}

	low := &uint256.Int{v[0], v[1], 0, 0}
	high := new(uint256.Int).Rsh(v, 128)

	return U256{
		Low:  low.ToBig(),
		High: high.ToBig(),
	}, nil
}

// FromTwoLimbs recombines limbs returned by a contract.
func FromTwoLimbs(low, high *big.Int) (*big.Int, error) {
	if !isLimb(low) || !isLimb(high) {
		return nil, &types.Error{
			Code:    types.ErrAmountOutOfRange,
			Message: "u256 limbs must be in [0, 2^128)",
		}
	}

	v := new(big.Int).Lsh(high, 128)
	return v.Add(v, low), nil
}

func isLimb(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.BitLen() <= 128
}

// Big returns the recombined value.
func (u U256) Big() *big.Int {
	v, err := FromTwoLimbs(u.Low, u.High)
	if err != nil {
		return nil
	}
	return v
}

// Felts returns the limbs in calldata order.
func (u U256) Felts() []*big.Int {
	return []*big.Int{u.Low, u.High}
}

type u256JSON struct {
	Low  string `json:"low"`
	High string `json:"high"`
}

// MarshalJSON encodes the limbs as decimal strings.
func (u U256) MarshalJSON() ([]byte, error) {
	return json.Marshal(u256JSON{
		Low:  limbString(u.Low),
		High: limbString(u.High),
	})
}

func (u *U256) UnmarshalJSON(data []byte) error {
	var raw u256JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	low, ok := new(big.Int).SetString(raw.Low, 10)
	if !ok {
		return fmt.Errorf("invalid u256 low limb %q", raw.Low)
	}
	high, ok := new(big.Int).SetString(raw.High, 10)
	if !ok {
		return fmt.Errorf("invalid u256 high limb %q", raw.High)
	}
	if _, err := FromTwoLimbs(low, high); err != nil {
		return err
	}

	u.Low, u.High = low, high
	return nil
}

func limbString(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return x.String()
}
