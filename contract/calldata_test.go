package contract

import (
	"math/big"
	"testing"

	"github.com/KSimonJNR/paystream/amount"
	"github.com/KSimonJNR/paystream/types"
	"github.com/stretchr/testify/require"
)

func feltStrings(felts []*big.Int) []string {
	out := make([]string, len(felts))
	for i, f := range felts {
		out[i] = FormatFelt(f)
	}
	return out
}

func paystreamFunction(t *testing.T, name string) *Function {
	t.Helper()
	abi, err := Builtin(ABIPaystream)
	require.NoError(t, err)
	fn, err := abi.Function(name)
	require.NoError(t, err)
	return fn
}

func TestEncodeCreateStream(t *testing.T) {
	fn := paystreamFunction(t, "create_stream")

	deposit, err := amount.ParseAmount("1.5", 18)
	require.NoError(t, err)
	limbs, err := amount.ToTwoLimbs(deposit)
	require.NoError(t, err)

	felts, err := EncodeCalldata(fn, "0x0123", limbs, uint64(1700000000), uint64(1700003600), "0x0456")
	require.NoError(t, err)

	require.Equal(t, []string{
		"0x123",
		"0x14d1120d7b160000", // 1.5e18
		"0x0",
		"0x6553f100",
		"0x6553ff10",
		"0x456",
	}, feltStrings(felts))
}

func TestEncodeU256Forms(t *testing.T) {
	fn := paystreamFunction(t, "cancel_stream")

	big128 := new(big.Int).Lsh(big.NewInt(1), 128)

	for _, arg := range []any{"340282366920938463463374607431768211456", "0x100000000000000000000000000000000", big128} {
		felts, err := EncodeCalldata(fn, arg)
		require.NoError(t, err)
		require.Equal(t, []string{"0x0", "0x1"}, feltStrings(felts))
	}

	felts, err := EncodeCalldata(fn, 7)
	require.NoError(t, err)
	require.Equal(t, []string{"0x7", "0x0"}, feltStrings(felts))
}

func TestEncodeCalldataErrors(t *testing.T) {
	create := paystreamFunction(t, "create_stream")
	cancel := paystreamFunction(t, "cancel_stream")

	over256 := new(big.Int).Lsh(big.NewInt(1), 256)

	type TC struct {
		name string
		fn   *Function
		args []any
		err  error
	}

	tcs := []TC{
		{name: "arity", fn: cancel, args: []any{"1", "2"}, err: &types.Error{Code: types.ErrInvalidArgument}},
		{name: "u256 overflow", fn: cancel, args: []any{over256}, err: amount.ErrAmountOutOfRange},
		{name: "negative", fn: cancel, args: []any{-1}, err: &types.Error{Code: types.ErrInvalidArgument}},
		{name: "garbage", fn: cancel, args: []any{"12abc"}, err: &types.Error{Code: types.ErrInvalidArgument}},
		{name: "wrong go type", fn: cancel, args: []any{1.5}, err: &types.Error{Code: types.ErrInvalidArgument}},
		{name: "bad limbs", fn: cancel, args: []any{amount.U256{Low: over256, High: big.NewInt(0)}}, err: amount.ErrAmountOutOfRange},
		{
			name: "u64 overflow",
			fn:   create,
			args: []any{"0x1", "1", "0x10000000000000000", uint64(2), "0x2"},
			err:  &types.Error{Code: types.ErrInvalidArgument},
		},
		{
			name: "address above prime",
			fn:   create,
			args: []any{FormatFelt(FieldPrime), "1", uint64(1), uint64(2), "0x2"},
			err:  &types.Error{Code: types.ErrInvalidArgument},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EncodeCalldata(tc.fn, tc.args...)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestEncodeUnsupportedType(t *testing.T) {
	fn := &Function{
		Name:   "batch",
		Inputs: []Param{{Name: "ids", Type: "core::array::Array::<core::felt252>"}},
	}
	_, err := EncodeCalldata(fn, "1")
	require.ErrorIs(t, err, &types.Error{Code: types.ErrUnsupportedType})
}

func TestEncodeBool(t *testing.T) {
	fn := &Function{
		Name:   "set_paused",
		Inputs: []Param{{Name: "paused", Type: TypeBool}},
	}

	felts, err := EncodeCalldata(fn, true)
	require.NoError(t, err)
	require.Equal(t, []string{"0x1"}, feltStrings(felts))

	felts, err = EncodeCalldata(fn, false)
	require.NoError(t, err)
	require.Equal(t, []string{"0x0"}, feltStrings(felts))

	_, err = EncodeCalldata(fn, 2)
	require.ErrorIs(t, err, &types.Error{Code: types.ErrInvalidArgument})
}

func TestDecodeOutputs(t *testing.T) {
	fn := paystreamFunction(t, "balance_of")

	out, err := DecodeOutputs(fn, []*big.Int{big.NewInt(5), big.NewInt(1)})
	require.NoError(t, err)
	require.Len(t, out, 1)

	want := new(big.Int).Lsh(big.NewInt(1), 128)
	want.Add(want, big.NewInt(5))
	require.Equal(t, 0, want.Cmp(out[0]))

	_, err = DecodeOutputs(fn, []*big.Int{big.NewInt(5)})
	require.ErrorIs(t, err, &types.Error{Code: types.ErrInvalidArgument})

	approve := &Function{Name: "approve", Outputs: []Param{{Type: TypeBool}}}
	out, err = DecodeOutputs(approve, []*big.Int{big.NewInt(1)})
	require.NoError(t, err)
	require.Equal(t, int64(1), out[0].Int64())
}
