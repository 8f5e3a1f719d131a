package contract

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/KSimonJNR/paystream/amount"
	"github.com/KSimonJNR/paystream/types"
)

// EncodeCalldata flattens positional arguments into felts following the
// input types of fn. A u256 takes two felts, low limb first.
//
// Accepted Go values are *big.Int, amount.U256, signed and unsigned ints,
// bool, and strings holding a 0x-hex or decimal integer.
func EncodeCalldata(fn *Function, args ...any) ([]*big.Int, error) {
	if len(args) != len(fn.Inputs) {
		return nil, &types.Error{
			Code:    types.ErrInvalidArgument,
			Message: fmt.Sprintf("%s takes %d arguments, got %d", fn.Name, len(fn.Inputs), len(args)),
		}
	}

	calldata := make([]*big.Int, 0, len(args)+1)
	for i, input := range fn.Inputs {
		felts, err := encodeArg(input, args[i])
		if err != nil {
			return nil, fmt.Errorf("%s: argument %s: %w", fn.Name, input.Name, err)
		}
		calldata = append(calldata, felts...)
	}

	return calldata, nil
}

func encodeArg(p Param, arg any) ([]*big.Int, error) {
	kind, bits := classify(p.Type)

	switch kind {
	case kindU256:
		if u, ok := arg.(amount.U256); ok {
			if u.Big() == nil {
				return nil, amount.ErrAmountOutOfRange
			}
			return u.Felts(), nil
		}
		v, err := toInteger(arg)
		if err != nil {
			return nil, err
		}
		u, err := amount.ToTwoLimbs(v)
		if err != nil {
			return nil, err
		}
		return u.Felts(), nil

	case kindFelt:
		v, err := toInteger(arg)
		if err != nil {
			return nil, err
		}
		if v.Cmp(FieldPrime) >= 0 {
			return nil, invalidArg("value %s is not below the field prime", v)
		}
		return []*big.Int{v}, nil

	case kindBool:
		if b, ok := arg.(bool); ok {
			if b {
				return []*big.Int{big.NewInt(1)}, nil
			}
			return []*big.Int{big.NewInt(0)}, nil
		}
		fallthrough

	case kindUint:
		v, err := toInteger(arg)
		if err != nil {
			return nil, err
		}
		if v.BitLen() > bits {
			return nil, invalidArg("value %s overflows %s", v, p.Type)
		}
		return []*big.Int{v}, nil
	}

	return nil, &types.Error{
		Code:    types.ErrUnsupportedType,
		Message: fmt.Sprintf("unsupported abi type %q", p.Type),
	}
}

// toInteger converts a Go value into a non-negative integer.
func toInteger(arg any) (*big.Int, error) {
	var v *big.Int

	switch a := arg.(type) {
	case *big.Int:
		if a == nil {
			return nil, invalidArg("nil integer")
		}
		v = new(big.Int).Set(a)
	case int:
		v = big.NewInt(int64(a))
	case int64:
		v = big.NewInt(a)
	case uint64:
		v = new(big.Int).SetUint64(a)
	case uint32:
		v = new(big.Int).SetUint64(uint64(a))
	case uint8:
		v = new(big.Int).SetUint64(uint64(a))
	case string:
		parsed, err := parseInteger(a)
		if err != nil {
			return nil, err
		}
		v = parsed
	default:
		return nil, invalidArg("cannot encode %T", arg)
	}

	if v.Sign() < 0 {
		return nil, invalidArg("negative value %s", v)
	}
	return v, nil
}

func parseInteger(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)

	base, digits := 10, s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, digits = 16, s[2:]
	}

	v, ok := new(big.Int).SetString(digits, base)
	if !ok || digits == "" || strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		return nil, invalidArg("invalid integer %q", s)
	}
	return v, nil
}

// DecodeOutputs turns returned felts into one integer per output,
// recombining u256 limbs.
func DecodeOutputs(fn *Function, felts []*big.Int) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(fn.Outputs))
	rest := felts

	for _, o := range fn.Outputs {
		kind, _ := classify(o.Type)

		switch kind {
		case kindU256:
			if len(rest) < 2 {
				return nil, shortResult(fn, len(felts))
			}
			v, err := amount.FromTwoLimbs(rest[0], rest[1])
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			rest = rest[2:]
		case kindFelt, kindBool, kindUint:
			if len(rest) < 1 {
				return nil, shortResult(fn, len(felts))
			}
			out = append(out, rest[0])
			rest = rest[1:]
		default:
			return nil, &types.Error{
				Code:    types.ErrUnsupportedType,
				Message: fmt.Sprintf("unsupported abi output type %q", o.Type),
			}
		}
	}

	return out, nil
}

func shortResult(fn *Function, n int) error {
	return &types.Error{
		Code:    types.ErrInvalidArgument,
		Message: fmt.Sprintf("%s returned %d felts, too few for its outputs", fn.Name, n),
	}
}

func invalidArg(format string, args ...any) error {
	return &types.Error{
		Code:    types.ErrInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}
